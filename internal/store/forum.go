package store

import (
	"context"

	"github.com/garrycui/wellnest/internal/cache"
	"github.com/garrycui/wellnest/internal/db"
	"github.com/garrycui/wellnest/internal/metrics"
	"github.com/garrycui/wellnest/internal/model"
	"github.com/garrycui/wellnest/internal/tracing"
)

// forumQueries is the slice of the db layer the forum store needs.
type forumQueries interface {
	ListPosts(ctx context.Context, params db.ListPostsParams) ([]model.Post, int, error)
	GetPost(ctx context.Context, postID, viewerID string) (*model.Post, error)
	CreatePost(ctx context.Context, params db.CreatePostParams) (*model.Post, error)
	UpdatePost(ctx context.Context, postID, title, body string) error
	DeletePost(ctx context.Context, postID string) error
	TogglePostLike(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, params db.AddCommentParams) (*model.Comment, error)
	AddReply(ctx context.Context, params db.AddReplyParams) (*model.Reply, error)
	ToggleCommentLike(ctx context.Context, commentID, userID string) (bool, error)
	ToggleReplyLike(ctx context.Context, replyID, userID string) (bool, error)
}

// ForumStore serves forum posts through the registry caches.
type ForumStore struct {
	q      forumQueries
	caches *Caches
}

// NewForumStore wires the forum store to the database and cache registry.
func NewForumStore(q *db.Queries, caches *Caches) *ForumStore {
	return &ForumStore{q: q, caches: caches}
}

// ListPostsParams selects one cached listing page.
type ListPostsParams struct {
	ViewerID  string
	Sort      string
	Direction string
	Search    string
	Page      int // 1-based
	PageSize  int
}

// ListPosts returns one listing page, served from cache when fresh.
func (s *ForumStore) ListPosts(ctx context.Context, p ListPostsParams) (model.PostPage, error) {
	key := cache.ListingKey(cache.FamilyForum, p.Sort, p.Direction, p.Page, p.PageSize, p.Search, p.ViewerID)
	return s.caches.ForumList.GetOrSet(ctx, key, 0, func(ctx context.Context) (model.PostPage, error) {
		ctx, span := tracing.StartSpan(ctx, "forum.list_posts")
		defer span.End()

		offset := (p.Page - 1) * p.PageSize
		posts, total, err := s.q.ListPosts(ctx, db.ListPostsParams{
			ViewerID:  p.ViewerID,
			Sort:      p.Sort,
			Direction: p.Direction,
			Search:    p.Search,
			Limit:     p.PageSize,
			Offset:    offset,
		})
		if err != nil {
			return model.PostPage{}, err
		}
		return model.PostPage{
			Posts:   posts,
			Page:    p.Page,
			HasMore: offset+len(posts) < total,
			Total:   total,
		}, nil
	})
}

// GetPost returns one post with its comment tree, served from cache when
// fresh.
func (s *ForumStore) GetPost(ctx context.Context, postID, viewerID string) (*model.Post, error) {
	key := cache.DetailKey(cache.FamilyPost, postID)
	return s.caches.PostDetail.GetOrSet(ctx, key, 0, func(ctx context.Context) (*model.Post, error) {
		ctx, span := tracing.StartSpan(ctx, "forum.get_post")
		defer span.End()
		return s.q.GetPost(ctx, postID, viewerID)
	})
}

// CreatePost inserts a post and invalidates the forum listings that no longer
// reflect the full set.
func (s *ForumStore) CreatePost(ctx context.Context, authorID, title, body string) (*model.Post, error) {
	post, err := s.q.CreatePost(ctx, db.CreatePostParams{AuthorID: authorID, Title: title, Body: body})
	if err != nil {
		return nil, err
	}
	s.invalidateListings()
	return post, nil
}

// UpdatePost edits a post and invalidates its detail entry plus the listings
// embedding its title.
func (s *ForumStore) UpdatePost(ctx context.Context, postID, title, body string) error {
	if err := s.q.UpdatePost(ctx, postID, title, body); err != nil {
		return err
	}
	s.invalidateDetail(postID)
	s.invalidateListings()
	return nil
}

// DeletePost removes a post and invalidates its detail entry and the
// listings.
func (s *ForumStore) DeletePost(ctx context.Context, postID string) error {
	if err := s.q.DeletePost(ctx, postID); err != nil {
		return err
	}
	s.invalidateDetail(postID)
	s.invalidateListings()
	return nil
}

// TogglePostLike flips the caller's like on a post using the optimistic
// protocol: the returned post reflects the reconciled state, and both the
// detail entry and the listings (which embed likes_count) are invalidated so
// later reads refetch authoritative data.
func (s *ForumStore) TogglePostLike(ctx context.Context, postID, userID string) (*model.Post, error) {
	post, err := s.GetPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	// Work on a copy so cached state is only touched through apply.
	result := *post
	current := ToggleState{Count: result.LikesCount, Active: result.IsLiked}

	_, toggleErr := ReconcileToggle(ctx, current, func(st ToggleState) {
		result.LikesCount = st.Count
		result.IsLiked = st.Active
	}, func(ctx context.Context) (bool, error) {
		return s.q.TogglePostLike(ctx, postID, userID)
	})

	s.invalidateDetail(postID)
	s.invalidateListings()

	if toggleErr != nil {
		return &result, toggleErr
	}
	return &result, nil
}

// AddComment attaches a comment to a post. Only the parent's detail entry is
// invalidated; comments are never cached on their own.
func (s *ForumStore) AddComment(ctx context.Context, postID, authorID, body string) (*model.Comment, error) {
	comment, err := s.q.AddComment(ctx, db.AddCommentParams{PostID: postID, AuthorID: authorID, Body: body})
	if err != nil {
		return nil, err
	}
	s.invalidateDetail(postID)
	return comment, nil
}

// AddReply attaches a reply to a comment, invalidating the parent post's
// detail entry.
func (s *ForumStore) AddReply(ctx context.Context, postID, commentID, authorID, body string) (*model.Reply, error) {
	reply, err := s.q.AddReply(ctx, db.AddReplyParams{CommentID: commentID, AuthorID: authorID, Body: body})
	if err != nil {
		return nil, err
	}
	s.invalidateDetail(postID)
	return reply, nil
}

// ToggleCommentLike flips the caller's like on a comment, applying the
// optimistic protocol to the nested object inside the parent post and
// invalidating the parent's detail entry.
func (s *ForumStore) ToggleCommentLike(ctx context.Context, postID, commentID, userID string) (*model.Comment, error) {
	post, err := s.GetPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	var found *model.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			found = &post.Comments[i]
			break
		}
	}
	if found == nil {
		return nil, db.ErrNotFound
	}

	result := *found
	current := ToggleState{Count: result.LikesCount, Active: result.IsLiked}

	_, toggleErr := ReconcileToggle(ctx, current, func(st ToggleState) {
		result.LikesCount = st.Count
		result.IsLiked = st.Active
	}, func(ctx context.Context) (bool, error) {
		return s.q.ToggleCommentLike(ctx, commentID, userID)
	})

	s.invalidateDetail(postID)

	if toggleErr != nil {
		return &result, toggleErr
	}
	return &result, nil
}

// ToggleReplyLike flips the caller's like on a reply, invalidating the parent
// post's detail entry.
func (s *ForumStore) ToggleReplyLike(ctx context.Context, postID, commentID, replyID, userID string) (*model.Reply, error) {
	post, err := s.GetPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	var found *model.Reply
	for i := range post.Comments {
		if post.Comments[i].ID != commentID {
			continue
		}
		for j := range post.Comments[i].Replies {
			if post.Comments[i].Replies[j].ID == replyID {
				found = &post.Comments[i].Replies[j]
				break
			}
		}
	}
	if found == nil {
		return nil, db.ErrNotFound
	}

	result := *found
	current := ToggleState{Count: result.LikesCount, Active: result.IsLiked}

	_, toggleErr := ReconcileToggle(ctx, current, func(st ToggleState) {
		result.LikesCount = st.Count
		result.IsLiked = st.Active
	}, func(ctx context.Context) (bool, error) {
		return s.q.ToggleReplyLike(ctx, replyID, userID)
	})

	s.invalidateDetail(postID)

	if toggleErr != nil {
		return &result, toggleErr
	}
	return &result, nil
}

func (s *ForumStore) invalidateListings() {
	s.caches.ForumList.DeletePrefix(cache.ListingPrefix(cache.FamilyForum))
	metrics.CacheInvalidations.WithLabelValues(cache.FamilyForum, "listing").Inc()
}

func (s *ForumStore) invalidateDetail(postID string) {
	s.caches.PostDetail.Delete(cache.DetailKey(cache.FamilyPost, postID))
	metrics.CacheInvalidations.WithLabelValues(cache.FamilyPost, "detail").Inc()
}
