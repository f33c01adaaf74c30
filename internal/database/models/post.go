package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/parleyhq/parley/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// PostModel handles database operations for posts and their comments.
type PostModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPost creates a new post model.
func NewPost(db *bun.DB, logger *zap.Logger) *PostModel {
	return &PostModel{
		db:     db,
		logger: logger.Named("db_post"),
	}
}

// CreatePost inserts a new post row.
func (r *PostModel) CreatePost(ctx context.Context, db bun.IDB, post *types.Post) error {
	if _, err := db.NewInsert().Model(post).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// GetPost retrieves a post by ID.
func (r *PostModel) GetPost(ctx context.Context, db bun.IDB, id int64) (*types.Post, error) {
	post := new(types.Post)
	err := db.NewSelect().
		Model(post).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// UpdateColumns persists the given columns of a post.
func (r *PostModel) UpdateColumns(ctx context.Context, db bun.IDB, post *types.Post, columns ...string) error {
	_, err := db.NewUpdate().
		Model(post).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// CountReplies counts the non-deleted replies of a topic from ground truth,
// bypassing the denormalized reply_count.
func (r *PostModel) CountReplies(ctx context.Context, db bun.IDB, topicID int64) (int64, error) {
	count, err := db.NewSelect().
		Model((*types.Post)(nil)).
		Where("topic_id = ?", topicID).
		Where("is_question = FALSE").
		Where("is_deleted = FALSE").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return int64(count), nil
}

// CreateComment inserts a comment and bumps the post's comment counter.
func (r *PostModel) CreateComment(ctx context.Context, db bun.IDB, post *types.Post, comment *types.Comment) error {
	if _, err := db.NewInsert().Model(comment).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return AtomicAdd(ctx, db, post, "comment_count", 1, &post.CommentCount)
}

// DeleteComment removes a comment and decrements the post's comment counter.
func (r *PostModel) DeleteComment(ctx context.Context, db bun.IDB, post *types.Post, comment *types.Comment) error {
	res, err := db.NewDelete().Model(comment).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil
	}
	return AtomicAdd(ctx, db, post, "comment_count", -1, &post.CommentCount)
}

// GetComments returns the comments of a post in chronological order.
func (r *PostModel) GetComments(ctx context.Context, db bun.IDB, postID int64) ([]*types.Comment, error) {
	var comments []*types.Comment
	err := db.NewSelect().
		Model(&comments).
		Where("post_id = ?", postID).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}
