package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garrycui/wellnest/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("db: not found")

// postSortColumns whitelists sortable columns so caller-provided sort fields
// can never reach the SQL string unchecked.
var postSortColumns = map[string]string{
	"created_at":     "p.created_at",
	"likes_count":    "p.likes_count",
	"comments_count": "p.comments_count",
}

// ListPostsParams selects one page of forum posts.
type ListPostsParams struct {
	ViewerID  string
	Sort      string // created_at, likes_count, comments_count
	Direction string // asc or desc
	Search    string
	Limit     int
	Offset    int
}

// ListPosts returns one page of posts plus the total matching count.
// IsLiked reflects the viewer passed in params.
func (q *Queries) ListPosts(ctx context.Context, params ListPostsParams) ([]model.Post, int, error) {
	col, ok := postSortColumns[params.Sort]
	if !ok {
		col = "p.created_at"
	}
	dir := "DESC"
	if params.Direction == "asc" {
		dir = "ASC"
	}
	if params.Limit <= 0 {
		params.Limit = 10
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.author_id, u.name, p.title, p.body,
		       p.likes_count, p.comments_count,
		       EXISTS(SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = $1) AS is_liked,
		       p.created_at, p.updated_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE ($2 = '' OR p.title ILIKE '%%' || $2 || '%%' OR p.body ILIKE '%%' || $2 || '%%')
		ORDER BY %s %s, p.id
		LIMIT $3 OFFSET $4`, col, dir)

	rows, err := q.db.QueryContext(ctx, query, params.ViewerID, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Body,
			&p.LikesCount, &p.CommentsCount, &p.IsLiked, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = q.db.QueryRowContext(ctx, `
		SELECT count(*) FROM posts p
		WHERE ($1 = '' OR p.title ILIKE '%' || $1 || '%' OR p.body ILIKE '%' || $1 || '%')`,
		params.Search).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// GetPost returns a post with its comments and replies.
func (q *Queries) GetPost(ctx context.Context, postID, viewerID string) (*model.Post, error) {
	var p model.Post
	err := q.db.QueryRowContext(ctx, `
		SELECT p.id, p.author_id, u.name, p.title, p.body,
		       p.likes_count, p.comments_count,
		       EXISTS(SELECT 1 FROM post_likes pl WHERE pl.post_id = p.id AND pl.user_id = $2) AS is_liked,
		       p.created_at, p.updated_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`, postID, viewerID).
		Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Body,
			&p.LikesCount, &p.CommentsCount, &p.IsLiked, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	comments, err := q.listComments(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	p.Comments = comments

	return &p, nil
}

func (q *Queries) listComments(ctx context.Context, postID, viewerID string) ([]model.Comment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.name, c.body, c.likes_count,
		       EXISTS(SELECT 1 FROM comment_likes cl WHERE cl.comment_id = c.id AND cl.user_id = $2) AS is_liked,
		       c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id`, postID, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	byID := make(map[string]int)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.Body,
			&c.LikesCount, &c.IsLiked, &c.CreatedAt); err != nil {
			return nil, err
		}
		byID[c.ID] = len(comments)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, nil
	}

	replyRows, err := q.db.QueryContext(ctx, `
		SELECT r.id, r.comment_id, r.author_id, u.name, r.body, r.likes_count,
		       EXISTS(SELECT 1 FROM reply_likes rl WHERE rl.reply_id = r.id AND rl.user_id = $2) AS is_liked,
		       r.created_at
		FROM replies r
		JOIN users u ON u.id = r.author_id
		JOIN comments c ON c.id = r.comment_id
		WHERE c.post_id = $1
		ORDER BY r.created_at, r.id`, postID, viewerID)
	if err != nil {
		return nil, err
	}
	defer replyRows.Close()

	for replyRows.Next() {
		var r model.Reply
		if err := replyRows.Scan(&r.ID, &r.CommentID, &r.AuthorID, &r.AuthorName, &r.Body,
			&r.LikesCount, &r.IsLiked, &r.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := byID[r.CommentID]; ok {
			comments[i].Replies = append(comments[i].Replies, r)
		}
	}
	if err := replyRows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

// CreatePostParams carries the fields of a new post.
type CreatePostParams struct {
	AuthorID string
	Title    string
	Body     string
}

// CreatePost inserts a post and returns it.
func (q *Queries) CreatePost(ctx context.Context, params CreatePostParams) (*model.Post, error) {
	var p model.Post
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO posts (author_id, title, body)
		VALUES ($1, $2, $3)
		RETURNING id, author_id, title, body, likes_count, comments_count, created_at, updated_at`,
		params.AuthorID, params.Title, params.Body).
		Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.LikesCount, &p.CommentsCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePost updates the title and body of a post.
func (q *Queries) UpdatePost(ctx context.Context, postID, title, body string) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE posts SET title = $2, body = $3, updated_at = now() WHERE id = $1`,
		postID, title, body)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post; likes, comments and replies cascade in the schema.
func (q *Queries) DeletePost(ctx context.Context, postID string) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	return err
}

// TogglePostLike flips the viewer's like on a post and returns the
// authoritative post-toggle state: true when the post is now liked.
func (q *Queries) TogglePostLike(ctx context.Context, postID, userID string) (bool, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING`, postID, userID)
	if err != nil {
		return false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	liked := inserted == 1
	if liked {
		_, err = tx.ExecContext(ctx, `
			UPDATE posts SET likes_count = likes_count + 1 WHERE id = $1`, postID)
	} else {
		if _, err = tx.ExecContext(ctx, `
			DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID); err == nil {
			_, err = tx.ExecContext(ctx, `
				UPDATE posts SET likes_count = GREATEST(0, likes_count - 1) WHERE id = $1`, postID)
		}
	}
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return liked, nil
}

// AddCommentParams carries the fields of a new comment.
type AddCommentParams struct {
	PostID   string
	AuthorID string
	Body     string
}

// AddComment inserts a comment and bumps the parent post's comment counter.
func (q *Queries) AddComment(ctx context.Context, params AddCommentParams) (*model.Comment, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var c model.Comment
	err = tx.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, author_id, body, likes_count, created_at`,
		params.PostID, params.AuthorID, params.Body).
		Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.LikesCount, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE posts SET comments_count = comments_count + 1 WHERE id = $1`, params.PostID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &c, nil
}

// AddReplyParams carries the fields of a new reply.
type AddReplyParams struct {
	CommentID string
	AuthorID  string
	Body      string
}

// AddReply inserts a reply under a comment.
func (q *Queries) AddReply(ctx context.Context, params AddReplyParams) (*model.Reply, error) {
	var r model.Reply
	err := q.db.QueryRowContext(ctx, `
		INSERT INTO replies (comment_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, comment_id, author_id, body, likes_count, created_at`,
		params.CommentID, params.AuthorID, params.Body).
		Scan(&r.ID, &r.CommentID, &r.AuthorID, &r.Body, &r.LikesCount, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ToggleCommentLike flips the viewer's like on a comment; same contract as
// TogglePostLike.
func (q *Queries) ToggleCommentLike(ctx context.Context, commentID, userID string) (bool, error) {
	return q.toggleChildLike(ctx, "comment_likes", "comment_id", "comments", commentID, userID)
}

// ToggleReplyLike flips the viewer's like on a reply.
func (q *Queries) ToggleReplyLike(ctx context.Context, replyID, userID string) (bool, error) {
	return q.toggleChildLike(ctx, "reply_likes", "reply_id", "replies", replyID, userID)
}

// toggleChildLike implements the shared like-toggle transaction for nested
// children. Table names come from the two callers above, never from input.
func (q *Queries) toggleChildLike(ctx context.Context, likeTable, idColumn, parentTable, id, userID string) (bool, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, user_id) VALUES ($1, $2)
		ON CONFLICT (%s, user_id) DO NOTHING`, likeTable, idColumn, idColumn), id, userID)
	if err != nil {
		return false, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	liked := inserted == 1
	if liked {
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			UPDATE %s SET likes_count = likes_count + 1 WHERE id = $1`, parentTable), id)
	} else {
		if _, err = tx.ExecContext(ctx, fmt.Sprintf(`
			DELETE FROM %s WHERE %s = $1 AND user_id = $2`, likeTable, idColumn), id, userID); err == nil {
			_, err = tx.ExecContext(ctx, fmt.Sprintf(`
				UPDATE %s SET likes_count = GREATEST(0, likes_count - 1) WHERE id = $1`, parentTable), id)
		}
	}
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return liked, nil
}
