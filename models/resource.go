package models

// ResourceIdentity is a bookable staff/resource record from the resource catalog.
// Loaded once at startup and read-only thereafter.
type ResourceIdentity struct {
	ID          string   `yaml:"id" json:"id"`
	DisplayName string   `yaml:"displayName" json:"displayName"`
	Aliases     []string `yaml:"aliases" json:"aliases,omitempty"`
	CalendarRef string   `yaml:"calendarRef" json:"-"`
}

// ResolvedResource is the public view returned by identity resolution:
// the internal id plus the canonical display name.
type ResolvedResource struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}
