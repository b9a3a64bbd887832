package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/garrycui/wellnest/internal/apierr"
	"github.com/garrycui/wellnest/internal/db"
	"github.com/garrycui/wellnest/internal/middleware"
	"github.com/garrycui/wellnest/internal/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxTitleLength  = 200
	maxBodyLength   = 10000
)

var sanitizer = &middleware.SanitizeInput{}

// GetPosts lists forum posts.
// GET /api/posts?sort=created_at&dir=desc&page=1&q=search
func GetPosts(s *store.ForumStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sort := r.URL.Query().Get("sort")
		if sort == "" {
			sort = "created_at"
		}
		dir := r.URL.Query().Get("dir")
		if dir == "" {
			dir = "desc"
		}
		if err := sanitizer.ValidateSortParams(sort, dir); err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ForumInvalidParams(err.Error()))
			return
		}

		page := 1
		if pageStr := r.URL.Query().Get("page"); pageStr != "" {
			if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
				page = p
			}
		}
		pageSize := defaultPageSize
		if sizeStr := r.URL.Query().Get("page_size"); sizeStr != "" {
			if n, err := strconv.Atoi(sizeStr); err == nil && n > 0 && n <= maxPageSize {
				pageSize = n
			}
		}

		result, err := s.ListPosts(r.Context(), store.ListPostsParams{
			ViewerID:  viewerID(r),
			Sort:      sort,
			Direction: dir,
			Search:    r.URL.Query().Get("q"),
			Page:      page,
			PageSize:  pageSize,
		})
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// GetPost returns one post with its comment tree.
// GET /api/posts/{id}
func GetPost(s *store.ForumStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := s.GetPost(r.Context(), mux.Vars(r)["id"], viewerID(r))
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.PostNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.SystemDatabase(""))
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

type postRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CreatePost creates a forum post and announces it on the event feed.
// POST /api/posts
func CreatePost(s *store.ForumStore, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req postRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Title = sanitizer.SanitizeString(req.Title, maxTitleLength)
		req.Body = sanitizer.SanitizeString(req.Body, maxBodyLength)
		if req.Title == "" {
			apierr.WriteErrorWithContext(w, r, apierr.ValidationMissingField("title"))
			return
		}

		post, err := s.CreatePost(r.Context(), userID, req.Title, req.Body)
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ForumMutationFailed(""))
			return
		}
		hub.Broadcast("post_created", map[string]string{"post_id": post.ID})
		writeJSON(w, http.StatusCreated, post)
	}
}

// UpdatePost edits a post.
// PUT /api/posts/{id}
func UpdatePost(s *store.ForumStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}
		var req postRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Title = sanitizer.SanitizeString(req.Title, maxTitleLength)
		req.Body = sanitizer.SanitizeString(req.Body, maxBodyLength)

		err := s.UpdatePost(r.Context(), mux.Vars(r)["id"], req.Title, req.Body)
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.PostNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ForumMutationFailed(""))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// DeletePost removes a post.
// DELETE /api/posts/{id}
func DeletePost(s *store.ForumStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}
		err := s.DeletePost(r.Context(), mux.Vars(r)["id"])
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.PostNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ForumMutationFailed(""))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// TogglePostLike flips the caller's like on a post and returns the
// reconciled post state.
// POST /api/posts/{id}/like
func TogglePostLike(s *store.ForumStore, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		postID := mux.Vars(r)["id"]
		post, err := s.TogglePostLike(r.Context(), postID, userID)
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.PostNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ForumMutationFailed(""))
			return
		}
		hub.Broadcast("like_toggled", map[string]interface{}{"post_id": postID, "likes_count": post.LikesCount})
		writeJSON(w, http.StatusOK, post)
	}
}

type commentRequest struct {
	Body string `json:"body"`
}

// AddComment attaches a comment to a post.
// POST /api/posts/{id}/comments
func AddComment(s *store.ForumStore, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req commentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Body = sanitizer.SanitizeString(req.Body, maxBodyLength)
		if req.Body == "" {
			apierr.WriteErrorWithContext(w, r, apierr.ValidationMissingField("body"))
			return
		}

		postID := mux.Vars(r)["id"]
		comment, err := s.AddComment(r.Context(), postID, userID, req.Body)
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.PostNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ForumMutationFailed(""))
			return
		}
		hub.Broadcast("comment_added", map[string]string{"post_id": postID})
		writeJSON(w, http.StatusCreated, comment)
	}
}

// AddReply attaches a reply to a comment.
// POST /api/posts/{id}/comments/{commentID}/replies
func AddReply(s *store.ForumStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req commentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Body = sanitizer.SanitizeString(req.Body, maxBodyLength)
		if req.Body == "" {
			apierr.WriteErrorWithContext(w, r, apierr.ValidationMissingField("body"))
			return
		}

		vars := mux.Vars(r)
		reply, err := s.AddReply(r.Context(), vars["id"], vars["commentID"], userID, req.Body)
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.PostNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ForumMutationFailed(""))
			return
		}
		writeJSON(w, http.StatusCreated, reply)
	}
}

// ToggleCommentLike flips the caller's like on a comment.
// POST /api/posts/{id}/comments/{commentID}/like
func ToggleCommentLike(s *store.ForumStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		vars := mux.Vars(r)
		comment, err := s.ToggleCommentLike(r.Context(), vars["id"], vars["commentID"], userID)
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.PostNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ForumMutationFailed(""))
			return
		}
		writeJSON(w, http.StatusOK, comment)
	}
}

// ToggleReplyLike flips the caller's like on a reply.
// POST /api/posts/{id}/comments/{commentID}/replies/{replyID}/like
func ToggleReplyLike(s *store.ForumStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		vars := mux.Vars(r)
		reply, err := s.ToggleReplyLike(r.Context(), vars["id"], vars["commentID"], vars["replyID"], userID)
		if errors.Is(err, db.ErrNotFound) {
			apierr.WriteErrorWithContext(w, r, apierr.PostNotFound())
			return
		}
		if err != nil {
			apierr.WriteErrorWithContext(w, r, apierr.ForumMutationFailed(""))
			return
		}
		writeJSON(w, http.StatusOK, reply)
	}
}
