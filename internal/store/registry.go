// Package store is the data-access layer: each store wraps the database (and,
// for chat, the assistant API) behind the registry caches, so handlers read
// through the cache and mutations invalidate exactly the entries they made
// stale.
package store

import (
	"github.com/garrycui/wellnest/internal/cache"
	"github.com/garrycui/wellnest/internal/config"
	"github.com/garrycui/wellnest/internal/metrics"
	"github.com/garrycui/wellnest/internal/model"
)

// Caches bundles the per-family registry caches. It is built once at startup
// and handed to the stores; there are no package-level cache singletons, so
// tests can build as many independent registries as they like.
type Caches struct {
	// Forum listing pages and post details. Split because they hold
	// different value types and invalidate on different events.
	ForumList  *cache.TimedCache[model.PostPage]
	PostDetail *cache.TimedCache[*model.Post]

	TutorialList   *cache.TimedCache[model.TutorialPage]
	TutorialDetail *cache.TimedCache[*model.Tutorial]

	SessionDetail *cache.TimedCache[*model.ChatSession]

	// Response holds assistant replies keyed by normalized prompt. It is the
	// only bounded cache; callers Sweep it after writes.
	Response *cache.TimedCache[string]

	UserDetail       *cache.TimedCache[*model.User]
	AssessmentDetail *cache.TimedCache[*model.Assessment]

	// Per-user derived views.
	SessionList     *cache.TimedCache[[]model.ChatSession]
	Recommendations *cache.TimedCache[[]model.Recommendation]
}

// NewCaches builds the registry with TTLs and bounds from config.
func NewCaches(cfg *config.Config) *Caches {
	return &Caches{
		ForumList:  cache.New[model.PostPage](cache.FamilyForum, cfg.ForumCacheTTL),
		PostDetail: cache.New[*model.Post](cache.FamilyPost, cfg.PostCacheTTL),

		TutorialList:   cache.New[model.TutorialPage]("tutorial_list", cfg.TutorialCacheTTL),
		TutorialDetail: cache.New[*model.Tutorial]("tutorial_detail", cfg.TutorialCacheTTL),

		SessionDetail: cache.New[*model.ChatSession](cache.FamilySession, cfg.SessionCacheTTL),

		Response: cache.NewBounded[string](cache.FamilyResponse, cfg.ResponseCacheTTL,
			cfg.ResponseCacheMax, cfg.ResponseCacheEvict),

		UserDetail:       cache.New[*model.User](cache.FamilyUser, cfg.UserCacheTTL),
		AssessmentDetail: cache.New[*model.Assessment](cache.FamilyAssessment, cfg.AssessmentCacheTTL),

		SessionList:     cache.New[[]model.ChatSession]("session_list", cfg.UserViewCacheTTL),
		Recommendations: cache.New[[]model.Recommendation]("recommendations", cfg.UserViewCacheTTL),
	}
}

// Snapshots reports per-cache statistics for the metrics collector.
func (c *Caches) Snapshots() map[string]metrics.CacheSnapshot {
	out := make(map[string]metrics.CacheSnapshot, 10)
	add := func(name string, s cache.Stats) {
		out[name] = metrics.CacheSnapshot{
			Hits:      s.Hits,
			Misses:    s.Misses,
			Evictions: s.Evictions,
			Items:     s.Items,
		}
	}
	add(c.ForumList.Name(), c.ForumList.Stats())
	add(c.PostDetail.Name(), c.PostDetail.Stats())
	add(c.TutorialList.Name(), c.TutorialList.Stats())
	add(c.TutorialDetail.Name(), c.TutorialDetail.Stats())
	add(c.SessionDetail.Name(), c.SessionDetail.Stats())
	add(c.Response.Name(), c.Response.Stats())
	add(c.UserDetail.Name(), c.UserDetail.Stats())
	add(c.AssessmentDetail.Name(), c.AssessmentDetail.Stats())
	add(c.SessionList.Name(), c.SessionList.Stats())
	add(c.Recommendations.Name(), c.Recommendations.Stats())
	return out
}

// ClearAll empties every registry cache. Used by the admin endpoint.
func (c *Caches) ClearAll() {
	c.ForumList.Clear()
	c.PostDetail.Clear()
	c.TutorialList.Clear()
	c.TutorialDetail.Clear()
	c.SessionDetail.Clear()
	c.Response.Clear()
	c.UserDetail.Clear()
	c.AssessmentDetail.Clear()
	c.SessionList.Clear()
	c.Recommendations.Clear()
}
