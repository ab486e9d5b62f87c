package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"shortlink/pkg/auth"
	"shortlink/pkg/cache"
	"shortlink/pkg/logging"
	"shortlink/pkg/storage"

	"github.com/google/uuid"
)

// maxSlugAttempts bounds generation retries for random slugs. The original
// system gave up after a single retry; a bounded loop closes that gap while
// the unique constraint still backstops the check-then-insert race.
const maxSlugAttempts = 5

const redirectCacheTTL = 24 * time.Hour

type LinkService struct {
	storage storage.LinkStorage
	cache   cache.LinkCacheInterface
	logger  *logging.Logger
}

func NewLinkService(storage storage.LinkStorage, cache cache.LinkCacheInterface, logger *logging.Logger) *LinkService {
	return &LinkService{
		storage: storage,
		cache:   cache,
		logger:  logger,
	}
}

type CreateLinkRequest struct {
	OriginalURL string  `json:"originalUrl"`
	CustomSlug  *string `json:"customSlug,omitempty"`
}

type UpdateLinkRequest struct {
	OriginalURL *string `json:"originalUrl,omitempty"`
	CustomSlug  *string `json:"customSlug,omitempty"`
}

func (s *LinkService) validateURL(ctx context.Context, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		s.logger.LogURLValidation(ctx, false, "")
		return ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		s.logger.LogURLValidation(ctx, false, parsed.Scheme)
		return ErrInvalidURL
	}
	s.logger.LogURLValidation(ctx, true, parsed.Scheme)
	return nil
}

// allocateSlug picks the slug for a new link: the caller-supplied custom
// slug when present (Conflict if taken, never silent substitution),
// otherwise a fresh random candidate.
func (s *LinkService) allocateSlug(ctx context.Context, customSlug *string) (string, error) {
	if customSlug != nil && *customSlug != "" {
		if !ValidateSlug(*customSlug) {
			return "", ErrInvalidSlug
		}
		existing, err := s.storage.GetBySlug(ctx, *customSlug)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return "", ErrSlugTaken
		}
		return *customSlug, nil
	}

	for i := 0; i < maxSlugAttempts; i++ {
		candidate, err := GenerateSlug()
		if err != nil {
			return "", err
		}
		existing, err := s.storage.GetBySlug(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
	}
	return "", errors.New("could not allocate a unique slug")
}

// Create validates the destination, allocates a slug, and persists the new
// link. When the caller is authenticated the link is owned from the start;
// otherwise it stays anonymous and claimable.
func (s *LinkService) Create(ctx context.Context, req *CreateLinkRequest) (*storage.Link, error) {
	if err := s.validateURL(ctx, req.OriginalURL); err != nil {
		return nil, err
	}

	slug, err := s.allocateSlug(ctx, req.CustomSlug)
	if err != nil {
		return nil, err
	}

	link := &storage.Link{
		ID:          uuid.New(),
		OriginalURL: req.OriginalURL,
		Slug:        slug,
		VisitCount:  0,
	}
	if identity, ok := auth.IdentityFrom(ctx); ok {
		userID := identity.UserID
		link.UserID = &userID
	}

	if err := s.storage.Create(ctx, link); err != nil {
		if storage.IsUniqueViolation(err) {
			// Lost the check-then-insert race.
			s.logger.LogLinkOperation(ctx, "create", slug, false)
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	s.logger.LogLinkOperation(ctx, "create", slug, true)
	return link, nil
}

// Resolve looks up a slug and counts the visit in one atomic storage
// operation, so concurrent resolutions never under-count.
func (s *LinkService) Resolve(ctx context.Context, slug string) (*storage.Link, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, ErrMissingSlug
	}

	link, err := s.storage.ResolveAndCount(ctx, slug)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}

	s.logger.LogLinkOperation(ctx, "resolve", slug, true)
	return link, nil
}

// ResolveForRedirect serves the legacy server-side redirect. The destination
// comes from the Redis cache when possible; the visit still counts against
// the database with an atomic increment.
func (s *LinkService) ResolveForRedirect(ctx context.Context, slug string) (string, error) {
	if strings.TrimSpace(slug) == "" {
		return "", ErrMissingSlug
	}

	destination, hit, err := s.cache.GetDestination(ctx, slug)
	if err != nil {
		s.logger.Warn(ctx, "redirect cache unavailable", "error", err.Error())
		hit = false
	}

	if !hit {
		link, err := s.storage.GetBySlug(ctx, slug)
		if err != nil {
			return "", err
		}
		if link == nil {
			return "", ErrLinkNotFound
		}
		destination = link.OriginalURL
		if err := s.cache.SetDestination(ctx, slug, destination, redirectCacheTTL); err != nil {
			s.logger.Warn(ctx, "redirect cache write failed", "error", err.Error())
		}
	}

	if err := s.storage.IncrementVisits(ctx, slug); err != nil {
		return "", err
	}

	s.logger.LogLinkOperation(ctx, "redirect", slug, true)
	return destination, nil
}

// Details returns a link by ID. Owned links are only visible to their owner;
// anonymous links are visible to anyone.
func (s *LinkService) Details(ctx context.Context, id uuid.UUID) (*storage.Link, error) {
	link, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}

	if link.UserID != nil {
		identity, ok := auth.IdentityFrom(ctx)
		if !ok || identity.UserID != *link.UserID {
			return nil, ErrForbidden
		}
	}
	return link, nil
}

// Update replaces the destination and/or slug of an existing link. Anonymous
// links are updatable by any authenticated caller; owned links only by their
// owner.
func (s *LinkService) Update(ctx context.Context, id uuid.UUID, req *UpdateLinkRequest) (*storage.Link, error) {
	link, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}

	if link.UserID != nil {
		identity, ok := auth.IdentityFrom(ctx)
		if !ok || identity.UserID != *link.UserID {
			return nil, ErrForbidden
		}
	}

	oldSlug := link.Slug

	if req.OriginalURL != nil {
		if err := s.validateURL(ctx, *req.OriginalURL); err != nil {
			return nil, err
		}
		link.OriginalURL = *req.OriginalURL
	}

	if req.CustomSlug != nil && *req.CustomSlug != "" {
		if !ValidateSlug(*req.CustomSlug) {
			return nil, ErrInvalidSlug
		}
		existing, err := s.storage.GetBySlug(ctx, *req.CustomSlug)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrSlugTaken
		}
		link.Slug = *req.CustomSlug
	}

	if err := s.storage.Update(ctx, link); err != nil {
		if storage.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}

	// Drop any stale destination for both the old and new slug.
	if err := s.cache.Delete(ctx, oldSlug); err != nil {
		s.logger.Warn(ctx, "redirect cache invalidation failed", "error", err.Error())
	}
	if link.Slug != oldSlug {
		if err := s.cache.Delete(ctx, link.Slug); err != nil {
			s.logger.Warn(ctx, "redirect cache invalidation failed", "error", err.Error())
		}
	}

	s.logger.LogLinkOperation(ctx, "update", link.Slug, true)
	return link, nil
}

// ListMine returns the caller's links, newest first.
func (s *LinkService) ListMine(ctx context.Context) ([]*storage.Link, error) {
	identity, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, ErrNoIdentity
	}
	return s.storage.ListByUser(ctx, identity.UserID)
}

// Claim attaches the caller as owner of an anonymous link. Ownership is
// permanent: once set it never changes, so claiming an owned link is a
// Conflict even for the owner.
func (s *LinkService) Claim(ctx context.Context, id uuid.UUID) (*storage.Link, error) {
	identity, ok := auth.IdentityFrom(ctx)
	if !ok {
		return nil, ErrNoIdentity
	}

	link, err := s.storage.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}
	if link.UserID != nil {
		return nil, ErrAlreadyClaimed
	}

	userID := identity.UserID
	link.UserID = &userID
	if err := s.storage.Update(ctx, link); err != nil {
		return nil, err
	}

	s.logger.LogLinkOperation(ctx, "claim", link.Slug, true)
	return link, nil
}
