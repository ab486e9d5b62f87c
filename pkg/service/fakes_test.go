package service

import (
	"context"
	"sort"
	"time"

	"shortlink/pkg/storage"

	"github.com/google/uuid"
)

type fakeLinkStorage struct {
	links map[uuid.UUID]*storage.Link
}

func newFakeLinkStorage() *fakeLinkStorage {
	return &fakeLinkStorage{links: make(map[uuid.UUID]*storage.Link)}
}

func (f *fakeLinkStorage) Create(ctx context.Context, link *storage.Link) error {
	link.CreatedAt = time.Now()
	link.UpdatedAt = link.CreatedAt
	copied := *link
	f.links[link.ID] = &copied
	return nil
}

func (f *fakeLinkStorage) GetBySlug(ctx context.Context, slug string) (*storage.Link, error) {
	for _, link := range f.links {
		if link.Slug == slug {
			copied := *link
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeLinkStorage) GetByID(ctx context.Context, id uuid.UUID) (*storage.Link, error) {
	if link, ok := f.links[id]; ok {
		copied := *link
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeLinkStorage) ListByUser(ctx context.Context, userID uuid.UUID) ([]*storage.Link, error) {
	var links []*storage.Link
	for _, link := range f.links {
		if link.UserID != nil && *link.UserID == userID {
			copied := *link
			links = append(links, &copied)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		return links[i].CreatedAt.After(links[j].CreatedAt)
	})
	return links, nil
}

func (f *fakeLinkStorage) Update(ctx context.Context, link *storage.Link) error {
	link.UpdatedAt = time.Now()
	copied := *link
	f.links[link.ID] = &copied
	return nil
}

func (f *fakeLinkStorage) ResolveAndCount(ctx context.Context, slug string) (*storage.Link, error) {
	for _, link := range f.links {
		if link.Slug == slug {
			link.VisitCount++
			link.UpdatedAt = time.Now()
			copied := *link
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeLinkStorage) IncrementVisits(ctx context.Context, slug string) error {
	for _, link := range f.links {
		if link.Slug == slug {
			link.VisitCount++
		}
	}
	return nil
}

type fakeLinkCache struct {
	destinations map[string]string
}

func newFakeLinkCache() *fakeLinkCache {
	return &fakeLinkCache{destinations: make(map[string]string)}
}

func (f *fakeLinkCache) GetDestination(ctx context.Context, slug string) (string, bool, error) {
	dest, ok := f.destinations[slug]
	return dest, ok, nil
}

func (f *fakeLinkCache) SetDestination(ctx context.Context, slug string, destination string, ttl time.Duration) error {
	f.destinations[slug] = destination
	return nil
}

func (f *fakeLinkCache) Delete(ctx context.Context, slug string) error {
	delete(f.destinations, slug)
	return nil
}

type fakeUserStorage struct {
	users map[uuid.UUID]*storage.User
}

func newFakeUserStorage() *fakeUserStorage {
	return &fakeUserStorage{users: make(map[uuid.UUID]*storage.User)}
}

func (f *fakeUserStorage) Create(ctx context.Context, user *storage.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStorage) GetByEmail(ctx context.Context, email string) (*storage.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStorage) GetByID(ctx context.Context, id uuid.UUID) (*storage.User, error) {
	if user, ok := f.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}
