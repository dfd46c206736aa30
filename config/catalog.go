package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"slotgate/models"
)

// DefaultHoursKey selects the catalog-wide business-hours entry.
const DefaultHoursKey = "default"

// FallbackHours applies when neither a resource-specific nor a default
// business-hours entry is configured.
var FallbackHours = models.BusinessHours{
	Days:  []string{"mon", "tue", "wed", "thu", "fri"},
	Start: "09:00",
	End:   "17:00",
}

// Catalog holds the resource identities and business-hours policies, loaded
// once at startup and read-only thereafter.
type Catalog struct {
	resources []models.ResourceIdentity
	hours     map[string]models.BusinessHours
	location  *time.Location
}

// NewCatalog builds a catalog from already-parsed entries. Tests use this
// directly; production goes through LoadCatalog.
func NewCatalog(resources []models.ResourceIdentity, hours map[string]models.BusinessHours, loc *time.Location) (*Catalog, error) {
	seen := make(map[string]bool, len(resources))
	for _, r := range resources {
		if r.ID == "" || r.DisplayName == "" {
			return nil, fmt.Errorf("resource entry must have id and displayName (got id=%q)", r.ID)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate resource id %q", r.ID)
		}
		seen[r.ID] = true
	}
	for key, h := range hours {
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("business hours for %q: %w", key, err)
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Catalog{resources: resources, hours: hours, location: loc}, nil
}

// LoadCatalog reads the resource and business-hours YAML files named by cfg.
func LoadCatalog(cfg *Config) (*Catalog, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var resources []models.ResourceIdentity
	if err := readYAML(cfg.ResourcesFile, &resources); err != nil {
		return nil, fmt.Errorf("failed to load resource catalog: %w", err)
	}

	hours := make(map[string]models.BusinessHours)
	if cfg.BusinessHoursFile != "" {
		if err := readYAML(cfg.BusinessHoursFile, &hours); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load business hours: %w", err)
			}
			// No hours file is fine; the fallback window applies.
			hours = map[string]models.BusinessHours{}
		}
	}

	return NewCatalog(resources, hours, loc)
}

func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

// Location returns the configured timezone.
func (c *Catalog) Location() *time.Location { return c.location }

// Resources returns all configured resource identities.
func (c *Catalog) Resources() []models.ResourceIdentity { return c.resources }

// ResourceByID looks up a resource by internal id.
func (c *Catalog) ResourceByID(id string) (models.ResourceIdentity, bool) {
	for _, r := range c.resources {
		if r.ID == id {
			return r, true
		}
	}
	return models.ResourceIdentity{}, false
}

// ResourceByCalendarRef looks up a resource by its calendar reference.
func (c *Catalog) ResourceByCalendarRef(ref string) (models.ResourceIdentity, bool) {
	for _, r := range c.resources {
		if r.CalendarRef == ref {
			return r, true
		}
	}
	return models.ResourceIdentity{}, false
}

// HoursFor returns the business hours for a resource: the resource-specific
// override, else the default entry, else the hardcoded fallback window.
func (c *Catalog) HoursFor(resourceID string) models.BusinessHours {
	if h, ok := c.hours[resourceID]; ok {
		return h
	}
	if h, ok := c.hours[DefaultHoursKey]; ok {
		return h
	}
	return FallbackHours
}
