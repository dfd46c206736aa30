// Package identity maps free-text staff names to canonical resource
// identities, with alias and fuzzy matching and explicit ambiguity detection.
package identity

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"slotgate/config"
	"slotgate/models"
	"slotgate/utils"
)

// Resolver resolves human-supplied names against the resource catalog.
type Resolver struct {
	catalog *config.Catalog
}

// NewResolver creates a resolver over the given catalog.
func NewResolver(catalog *config.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve maps a free-text name to exactly one resource, or fails with a
// graded resolution error:
//   - NotFound: nothing matched, try a different name.
//   - Ambiguous: several resources matched; Details lists the candidates.
//   - InternalIdUsed: the query is an internal id, not a public name.
func (r *Resolver) Resolve(query string) (*models.ResolvedResource, error) {
	nq := Normalize(query)
	if nq == "" {
		return nil, utils.Errf(utils.CodeMissingParam, "a staff name is required")
	}

	var matches []models.ResourceIdentity
	for _, res := range r.catalog.Resources() {
		if resourceMatches(nq, res) {
			matches = append(matches, res)
		}
	}

	switch len(matches) {
	case 0:
		// A caller presenting a private key rather than a public name gets a
		// distinct failure so it can correct course.
		for _, res := range r.catalog.Resources() {
			if nq == Normalize(res.ID) {
				return nil, utils.Errf(utils.CodeInternalIdUsed,
					"%q is an internal identifier, not a staff name", query)
			}
		}
		return nil, utils.Errf(utils.CodeNotFound, "no staff member matches %q", query)
	case 1:
		return &models.ResolvedResource{ID: matches[0].ID, DisplayName: matches[0].DisplayName}, nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.DisplayName
		}
		return nil, &utils.ServiceError{
			Code:    utils.CodeAmbiguous,
			Message: "name " + query + " matches multiple staff members",
			Details: names,
		}
	}
}

// ResolveSelector resolves a resource selector: an explicit calendar
// reference wins, otherwise the name is resolved through the catalog. The
// returned identity always carries a calendar reference.
func (r *Resolver) ResolveSelector(calendarRef, name string) (*models.ResourceIdentity, error) {
	if calendarRef != "" {
		if res, ok := r.catalog.ResourceByCalendarRef(calendarRef); ok {
			return &res, nil
		}
		// An opaque reference outside the catalog is still usable as-is.
		return &models.ResourceIdentity{CalendarRef: calendarRef}, nil
	}
	if name == "" {
		return nil, utils.Errf(utils.CodeMissingParam, "either calendarRef or staff is required")
	}
	resolved, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	res, ok := r.catalog.ResourceByID(resolved.ID)
	if !ok || res.CalendarRef == "" {
		return nil, utils.Errf(utils.CodeMissingCalendarRef,
			"staff member %q has no calendar reference configured", resolved.DisplayName)
	}
	return &res, nil
}

// resourceMatches checks the query against the display name and every alias.
// Matching order is exact, then substring, then edit distance <= 1.
func resourceMatches(nq string, res models.ResourceIdentity) bool {
	for _, name := range append([]string{res.DisplayName}, res.Aliases...) {
		nc := Normalize(name)
		if nc == "" {
			continue
		}
		if nq == nc {
			return true
		}
		if strings.Contains(nc, nq) || strings.Contains(nq, nc) {
			return true
		}
		if levenshtein.ComputeDistance(nq, nc) <= 1 {
			return true
		}
	}
	return false
}
