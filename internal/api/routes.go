package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garrycui/wellnest/internal/api/handlers"
	"github.com/garrycui/wellnest/internal/cache"
	"github.com/garrycui/wellnest/internal/store"
)

// Stores bundles the data-access stores the router serves.
type Stores struct {
	Forum     *store.ForumStore
	Tutorials *store.TutorialStore
	Chat      *store.ChatStore
	Users     *store.UserStore
	Caches    *store.Caches

	// Payloads holds rendered JSON for the global catalog routes.
	Payloads *cache.PayloadCache
}

// NewRouter builds the API router. The hub must already be running for the
// event feed to deliver anything.
func NewRouter(s Stores, hub *handlers.Hub) *mux.Router {
	r := mux.NewRouter()

	// Forum
	r.HandleFunc("/api/posts", handlers.GetPosts(s.Forum)).Methods("GET")
	r.HandleFunc("/api/posts", handlers.CreatePost(s.Forum, hub)).Methods("POST")
	r.HandleFunc("/api/posts/{id}", handlers.GetPost(s.Forum)).Methods("GET")
	r.HandleFunc("/api/posts/{id}", handlers.UpdatePost(s.Forum)).Methods("PUT")
	r.HandleFunc("/api/posts/{id}", handlers.DeletePost(s.Forum)).Methods("DELETE")
	r.HandleFunc("/api/posts/{id}/like", handlers.TogglePostLike(s.Forum, hub)).Methods("POST")
	r.HandleFunc("/api/posts/{id}/comments", handlers.AddComment(s.Forum, hub)).Methods("POST")
	r.HandleFunc("/api/posts/{id}/comments/{commentID}/like", handlers.ToggleCommentLike(s.Forum)).Methods("POST")
	r.HandleFunc("/api/posts/{id}/comments/{commentID}/replies", handlers.AddReply(s.Forum)).Methods("POST")
	r.HandleFunc("/api/posts/{id}/comments/{commentID}/replies/{replyID}/like", handlers.ToggleReplyLike(s.Forum)).Methods("POST")

	// Tutorials. The catalog is global, so rendered pages are additionally
	// held in the payload cache.
	catalog := CachePayload(s.Payloads)
	r.Handle("/api/tutorials", catalog(handlers.GetTutorials(s.Tutorials))).Methods("GET")
	r.Handle("/api/tutorials/{id}", catalog(handlers.GetTutorial(s.Tutorials))).Methods("GET")

	// Chat
	r.HandleFunc("/api/chat/sessions", handlers.GetSessions(s.Chat)).Methods("GET")
	r.HandleFunc("/api/chat/sessions", handlers.CreateSession(s.Chat)).Methods("POST")
	r.HandleFunc("/api/chat/sessions/{id}", handlers.GetSession(s.Chat)).Methods("GET")
	r.HandleFunc("/api/chat/sessions/{id}/messages", handlers.SendMessage(s.Chat)).Methods("POST")

	// Profile, assessments, recommendations
	r.HandleFunc("/api/me", handlers.GetProfile(s.Users)).Methods("GET")
	r.HandleFunc("/api/me/preferences", handlers.UpdatePreferences(s.Users)).Methods("PUT")
	r.HandleFunc("/api/me/assessments", handlers.SaveAssessment(s.Users)).Methods("POST")
	r.HandleFunc("/api/me/assessments/latest", handlers.GetLatestAssessment(s.Users)).Methods("GET")
	r.HandleFunc("/api/me/recommendations", handlers.GetRecommendations(s.Users)).Methods("GET")

	// Event feed
	r.HandleFunc("/api/events", hub.ServeEvents).Methods("GET")

	// Cache administration
	cacheAdmin := handlers.NewCacheAdminHandler(s.Caches)
	r.HandleFunc("/api/admin/cache/invalidate", cacheAdmin.InvalidateCache).Methods("POST")
	r.HandleFunc("/api/admin/cache/stats", cacheAdmin.GetCacheStats).Methods("GET")

	// Operational endpoints
	r.HandleFunc("/healthz", handlers.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"SYSTEM_NOT_FOUND","message":"Route not found"}}`))
	})

	return r
}
