package store

import (
	"context"

	"github.com/garrycui/wellnest/internal/cache"
	"github.com/garrycui/wellnest/internal/db"
	"github.com/garrycui/wellnest/internal/model"
	"github.com/garrycui/wellnest/internal/tracing"
)

// tutorialQueries is the slice of the db layer the tutorial store needs.
type tutorialQueries interface {
	ListTutorials(ctx context.Context, params db.ListTutorialsParams) ([]model.Tutorial, string, error)
	GetTutorial(ctx context.Context, id string) (*model.Tutorial, error)
}

// TutorialStore serves the tutorial catalog through the registry caches.
// Tutorials change rarely, so their caches run on a long TTL and there are no
// mutation paths here.
type TutorialStore struct {
	q      tutorialQueries
	caches *Caches
}

// NewTutorialStore wires the tutorial store to the database and cache
// registry.
func NewTutorialStore(q *db.Queries, caches *Caches) *TutorialStore {
	return &TutorialStore{q: q, caches: caches}
}

// ListTutorialsParams selects one cursor page of the catalog.
type ListTutorialsParams struct {
	Cursor   string
	Search   string
	Category string
	Limit    int
}

// List returns one cursor-paginated catalog page, served from cache when
// fresh. Tutorials sort newest-first; the category filter rides in the
// user-scope key slot since the catalog is global.
func (s *TutorialStore) List(ctx context.Context, p ListTutorialsParams) (model.TutorialPage, error) {
	key := cache.CursorListingKey(cache.FamilyTutorial, "created_at", "desc", p.Cursor, p.Limit, p.Search, p.Category)
	return s.caches.TutorialList.GetOrSet(ctx, key, 0, func(ctx context.Context) (model.TutorialPage, error) {
		ctx, span := tracing.StartSpan(ctx, "tutorials.list")
		defer span.End()

		tutorials, next, err := s.q.ListTutorials(ctx, db.ListTutorialsParams{
			Cursor:   p.Cursor,
			Search:   p.Search,
			Category: p.Category,
			Limit:    p.Limit,
		})
		if err != nil {
			return model.TutorialPage{}, err
		}
		return model.TutorialPage{Tutorials: tutorials, NextCursor: next}, nil
	})
}

// Get returns one tutorial, served from cache when fresh.
func (s *TutorialStore) Get(ctx context.Context, id string) (*model.Tutorial, error) {
	key := cache.DetailKey(cache.FamilyTutorial, id)
	return s.caches.TutorialDetail.GetOrSet(ctx, key, 0, func(ctx context.Context) (*model.Tutorial, error) {
		return s.q.GetTutorial(ctx, id)
	})
}
