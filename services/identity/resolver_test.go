package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotgate/config"
	"slotgate/models"
	"slotgate/utils"
)

func testCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	catalog, err := config.NewCatalog([]models.ResourceIdentity{
		{ID: "res-1", DisplayName: "María García", Aliases: []string{"Maria", "Dr. García"}, CalendarRef: "cal-maria"},
		{ID: "res-2", DisplayName: "John Smith", Aliases: []string{"Johnny"}, CalendarRef: "cal-john"},
		{ID: "res-3", DisplayName: "Joan Smith", Aliases: []string{"Joanie"}, CalendarRef: "cal-joan"},
	}, nil, time.UTC)
	require.NoError(t, err)
	return catalog
}

func codeOf(t *testing.T, err error) utils.ErrorCode {
	t.Helper()
	var se *utils.ServiceError
	require.True(t, errors.As(err, &se), "expected a ServiceError, got %v", err)
	return se.Code
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "maria garcia", Normalize("  María   GARCÍA "))
	assert.Equal(t, "john smith", Normalize("John Smith"))
	assert.Equal(t, "", Normalize("   "))
}

func TestResolveExactDisplayName(t *testing.T) {
	r := NewResolver(testCatalog(t))

	got, err := r.Resolve("María García")
	require.NoError(t, err)
	assert.Equal(t, "res-1", got.ID)
	assert.Equal(t, "María García", got.DisplayName)
}

func TestResolveAlias(t *testing.T) {
	r := NewResolver(testCatalog(t))

	got, err := r.Resolve("Johnny")
	require.NoError(t, err)
	assert.Equal(t, "res-2", got.ID)
}

func TestResolveDiacriticInsensitive(t *testing.T) {
	r := NewResolver(testCatalog(t))

	got, err := r.Resolve("maria garcia")
	require.NoError(t, err)
	assert.Equal(t, "res-1", got.ID)
}

func TestResolveEditDistanceOne(t *testing.T) {
	r := NewResolver(testCatalog(t))

	// One letter off the alias "Johnny".
	got, err := r.Resolve("Jonnny")
	require.NoError(t, err)
	assert.Equal(t, "res-2", got.ID)
}

func TestResolveInternalIdUsed(t *testing.T) {
	r := NewResolver(testCatalog(t))

	_, err := r.Resolve("res-2")
	require.Error(t, err)
	assert.Equal(t, utils.CodeInternalIdUsed, codeOf(t, err))
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(testCatalog(t))

	_, err := r.Resolve("Zebediah Quartermaine")
	require.Error(t, err)
	assert.Equal(t, utils.CodeNotFound, codeOf(t, err))
}

func TestResolveAmbiguousListsCandidates(t *testing.T) {
	r := NewResolver(testCatalog(t))

	// "Smith" is a substring of two display names.
	_, err := r.Resolve("Smith")
	require.Error(t, err)

	var se *utils.ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, utils.CodeAmbiguous, se.Code)
	assert.ElementsMatch(t, []string{"John Smith", "Joan Smith"}, se.Details)
}

func TestResolveSelectorPrefersExplicitRef(t *testing.T) {
	r := NewResolver(testCatalog(t))

	res, err := r.ResolveSelector("cal-john", "María García")
	require.NoError(t, err)
	assert.Equal(t, "res-2", res.ID)

	// An opaque reference outside the catalog still resolves.
	res, err = r.ResolveSelector("external-ref", "")
	require.NoError(t, err)
	assert.Equal(t, "external-ref", res.CalendarRef)
	assert.Empty(t, res.ID)
}

func TestResolveSelectorRequiresSomething(t *testing.T) {
	r := NewResolver(testCatalog(t))

	_, err := r.ResolveSelector("", "")
	require.Error(t, err)
	assert.Equal(t, utils.CodeMissingParam, codeOf(t, err))
}
