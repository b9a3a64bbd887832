package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/garrycui/wellnest/internal/cache"
	"github.com/garrycui/wellnest/internal/db"
	"github.com/garrycui/wellnest/internal/metrics"
	"github.com/garrycui/wellnest/internal/model"
	"github.com/garrycui/wellnest/internal/tracing"
)

// userQueries is the slice of the db layer the user store needs.
type userQueries interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateUserPreferences(ctx context.Context, userID string, prefs json.RawMessage) error
	GetLatestAssessment(ctx context.Context, userID, kind string) (*model.Assessment, error)
	SaveAssessment(ctx context.Context, params db.SaveAssessmentParams) (*model.Assessment, error)
}

// recommender is the slice of the assistant API client the user store needs.
type recommender interface {
	Recommend(ctx context.Context, user model.User, assessment *model.Assessment) ([]model.Recommendation, error)
}

// UserStore serves user profiles, assessments and personalized
// recommendations through the registry caches.
type UserStore struct {
	q      userQueries
	ai     recommender
	caches *Caches
}

// NewUserStore wires the user store to the database, recommendation client
// and cache registry.
func NewUserStore(q *db.Queries, ai recommender, caches *Caches) *UserStore {
	return &UserStore{q: q, ai: ai, caches: caches}
}

// GetUser returns a user profile, served from cache when fresh.
func (s *UserStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	key := cache.DetailKey(cache.FamilyUser, userID)
	return s.caches.UserDetail.GetOrSet(ctx, key, 0, func(ctx context.Context) (*model.User, error) {
		return s.q.GetUser(ctx, userID)
	})
}

// UpdatePreferences replaces the user's preferences document. It invalidates
// the profile entry and the recommendations view, whose inputs include the
// preferences, but deliberately leaves the sessions view alone: preference
// changes do not alter which sessions exist.
func (s *UserStore) UpdatePreferences(ctx context.Context, userID string, prefs json.RawMessage) error {
	if err := s.q.UpdateUserPreferences(ctx, userID, prefs); err != nil {
		return err
	}
	s.caches.UserDetail.Delete(cache.DetailKey(cache.FamilyUser, userID))
	metrics.CacheInvalidations.WithLabelValues(cache.FamilyUser, "detail").Inc()
	s.invalidateRecommendations(userID)
	return nil
}

// assessmentID composes the detail id for a user's latest assessment of one
// kind. Both parts are uuids/slugs, never containing the separator.
func assessmentID(userID, kind string) string {
	return userID + "/" + kind
}

// LatestAssessment returns the user's most recent assessment of the given
// kind (empty kind means any), served from cache when fresh.
func (s *UserStore) LatestAssessment(ctx context.Context, userID, kind string) (*model.Assessment, error) {
	key := cache.DetailKey(cache.FamilyAssessment, assessmentID(userID, kind))
	return s.caches.AssessmentDetail.GetOrSet(ctx, key, 0, func(ctx context.Context) (*model.Assessment, error) {
		return s.q.GetLatestAssessment(ctx, userID, kind)
	})
}

// SaveAssessment stores a completed assessment. The user's cached latest
// assessments and their recommendations view are now stale; their sessions
// are not.
func (s *UserStore) SaveAssessment(ctx context.Context, params db.SaveAssessmentParams) (*model.Assessment, error) {
	a, err := s.q.SaveAssessment(ctx, params)
	if err != nil {
		return nil, err
	}
	s.caches.AssessmentDetail.Delete(cache.DetailKey(cache.FamilyAssessment, assessmentID(params.UserID, params.Kind)))
	s.caches.AssessmentDetail.Delete(cache.DetailKey(cache.FamilyAssessment, assessmentID(params.UserID, "")))
	metrics.CacheInvalidations.WithLabelValues(cache.FamilyAssessment, "detail").Inc()
	s.invalidateRecommendations(params.UserID)
	return a, nil
}

// Recommendations returns personalized content suggestions, served from the
// per-user derived-view cache. The view is built from the profile and the
// latest assessment, so it is invalidated whenever either changes.
func (s *UserStore) Recommendations(ctx context.Context, userID string) ([]model.Recommendation, error) {
	key := cache.UserViewKey(userID, "recommendations")
	return s.caches.Recommendations.GetOrSet(ctx, key, 0, func(ctx context.Context) ([]model.Recommendation, error) {
		ctx, span := tracing.StartSpan(ctx, "users.recommendations")
		defer span.End()

		user, err := s.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		assessment, err := s.LatestAssessment(ctx, userID, "")
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
		return s.ai.Recommend(ctx, *user, assessment)
	})
}

func (s *UserStore) invalidateRecommendations(userID string) {
	s.caches.Recommendations.Delete(cache.UserViewKey(userID, "recommendations"))
	metrics.CacheInvalidations.WithLabelValues(cache.FamilyUserView, "recommendations").Inc()
}
