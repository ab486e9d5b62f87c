package service

import (
	"context"
	"testing"

	"shortlink/pkg/auth"
	"shortlink/pkg/logging"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLinkService() (*LinkService, *fakeLinkStorage, *fakeLinkCache) {
	store := newFakeLinkStorage()
	linkCache := newFakeLinkCache()
	logger := logging.NewLogger(logging.LevelError)
	return NewLinkService(store, linkCache, logger), store, linkCache
}

func authedContext(userID uuid.UUID) context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{
		UserID: userID,
		Email:  "user@example.com",
	})
}

func strPtr(s string) *string { return &s }

func TestCreateGeneratesSlug(t *testing.T) {
	svc, _, _ := newTestLinkService()

	link, err := svc.Create(context.Background(), &CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)
	assert.Len(t, link.Slug, 6)
	assert.Equal(t, 0, link.VisitCount)
	assert.Equal(t, "https://example.com", link.OriginalURL)
	assert.Nil(t, link.UserID)
}

func TestCreateRejectsInvalidURL(t *testing.T) {
	svc, _, _ := newTestLinkService()

	tests := []string{
		"not a url",
		"example.com",      // no scheme
		"ftp://example.com", // scheme not allowed
		"https://",          // no host
		"",
	}
	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			_, err := svc.Create(context.Background(), &CreateLinkRequest{OriginalURL: raw})
			assert.ErrorIs(t, err, ErrInvalidURL)
		})
	}
}

func TestCreateCustomSlug(t *testing.T) {
	svc, _, _ := newTestLinkService()

	link, err := svc.Create(context.Background(), &CreateLinkRequest{
		OriginalURL: "https://example.com",
		CustomSlug:  strPtr("mylink"),
	})
	require.NoError(t, err)
	assert.Equal(t, "mylink", link.Slug)

	// Same slug again yields Conflict, never silent substitution.
	_, err = svc.Create(context.Background(), &CreateLinkRequest{
		OriginalURL: "https://example.org",
		CustomSlug:  strPtr("mylink"),
	})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestCreateRejectsInvalidCustomSlug(t *testing.T) {
	svc, _, _ := newTestLinkService()

	_, err := svc.Create(context.Background(), &CreateLinkRequest{
		OriginalURL: "https://example.com",
		CustomSlug:  strPtr("x!"),
	})
	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestCreateAttachesOwner(t *testing.T) {
	svc, _, _ := newTestLinkService()
	userID := uuid.New()

	link, err := svc.Create(authedContext(userID), &CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)
	require.NotNil(t, link.UserID)
	assert.Equal(t, userID, *link.UserID)
}

func TestResolveIncrementsVisitCount(t *testing.T) {
	svc, _, _ := newTestLinkService()

	created, err := svc.Create(context.Background(), &CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)

	resolved, err := svc.Resolve(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved.VisitCount)
	assert.Equal(t, "https://example.com", resolved.OriginalURL)

	resolved, err = svc.Resolve(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, resolved.VisitCount)
}

func TestResolveUnknownSlug(t *testing.T) {
	svc, _, _ := newTestLinkService()

	_, err := svc.Resolve(context.Background(), "nope99")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestResolveEmptySlug(t *testing.T) {
	svc, _, _ := newTestLinkService()

	_, err := svc.Resolve(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrMissingSlug)
}

func TestResolveForRedirectFillsCache(t *testing.T) {
	svc, store, linkCache := newTestLinkService()

	created, err := svc.Create(context.Background(), &CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)

	dest, err := svc.ResolveForRedirect(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", dest)
	assert.Equal(t, "https://example.com", linkCache.destinations[created.Slug])

	// Second resolution hits the cache; the visit still counts.
	dest, err = svc.ResolveForRedirect(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", dest)

	stored, err := store.GetBySlug(context.Background(), created.Slug)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.VisitCount)
}

func TestUpdateOwnership(t *testing.T) {
	svc, _, _ := newTestLinkService()
	owner := uuid.New()
	stranger := uuid.New()

	link, err := svc.Create(authedContext(owner), &CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)

	_, err = svc.Update(authedContext(stranger), link.ID, &UpdateLinkRequest{
		OriginalURL: strPtr("https://evil.example"),
	})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(authedContext(owner), link.ID, &UpdateLinkRequest{
		OriginalURL: strPtr("https://example.org"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", updated.OriginalURL)
}

func TestUpdateSlugConflict(t *testing.T) {
	svc, _, _ := newTestLinkService()

	first, err := svc.Create(context.Background(), &CreateLinkRequest{
		OriginalURL: "https://example.com",
		CustomSlug:  strPtr("taken1"),
	})
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), &CreateLinkRequest{
		OriginalURL: "https://example.org",
		CustomSlug:  strPtr("other1"),
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), second.ID, &UpdateLinkRequest{
		CustomSlug: strPtr("taken1"),
	})
	assert.ErrorIs(t, err, ErrSlugTaken)

	// Re-submitting a link's own slug is not a conflict.
	_, err = svc.Update(context.Background(), first.ID, &UpdateLinkRequest{
		CustomSlug: strPtr("taken1"),
	})
	assert.NoError(t, err)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	svc, _, linkCache := newTestLinkService()

	link, err := svc.Create(context.Background(), &CreateLinkRequest{
		OriginalURL: "https://example.com",
		CustomSlug:  strPtr("cached1"),
	})
	require.NoError(t, err)

	_, err = svc.ResolveForRedirect(context.Background(), "cached1")
	require.NoError(t, err)
	assert.Contains(t, linkCache.destinations, "cached1")

	_, err = svc.Update(context.Background(), link.ID, &UpdateLinkRequest{
		OriginalURL: strPtr("https://example.org"),
	})
	require.NoError(t, err)
	assert.NotContains(t, linkCache.destinations, "cached1")
}

func TestDetailsVisibility(t *testing.T) {
	svc, _, _ := newTestLinkService()
	owner := uuid.New()
	stranger := uuid.New()

	owned, err := svc.Create(authedContext(owner), &CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)
	anonymous, err := svc.Create(context.Background(), &CreateLinkRequest{OriginalURL: "https://example.org"})
	require.NoError(t, err)

	_, err = svc.Details(context.Background(), owned.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Details(authedContext(stranger), owned.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Details(authedContext(owner), owned.ID)
	require.NoError(t, err)
	assert.Equal(t, owned.ID, got.ID)

	// Anonymous links are visible to anyone.
	_, err = svc.Details(context.Background(), anonymous.ID)
	assert.NoError(t, err)

	_, err = svc.Details(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestClaim(t *testing.T) {
	svc, _, _ := newTestLinkService()
	first := uuid.New()
	second := uuid.New()

	link, err := svc.Create(context.Background(), &CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)

	claimed, err := svc.Claim(authedContext(first), link.ID)
	require.NoError(t, err)
	require.NotNil(t, claimed.UserID)
	assert.Equal(t, first, *claimed.UserID)

	// Ownership is permanent; a second claim conflicts even for the owner.
	_, err = svc.Claim(authedContext(second), link.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	_, err = svc.Claim(authedContext(first), link.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	_, err = svc.Claim(authedContext(first), uuid.New())
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestListMine(t *testing.T) {
	svc, _, _ := newTestLinkService()
	userID := uuid.New()

	_, err := svc.Create(authedContext(userID), &CreateLinkRequest{OriginalURL: "https://example.com"})
	require.NoError(t, err)
	_, err = svc.Create(authedContext(userID), &CreateLinkRequest{OriginalURL: "https://example.org"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), &CreateLinkRequest{OriginalURL: "https://example.net"})
	require.NoError(t, err)

	links, err := svc.ListMine(authedContext(userID))
	require.NoError(t, err)
	assert.Len(t, links, 2)

	_, err = svc.ListMine(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentity)
}
