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

// RevisionModel handles database operations for the post attic.
type RevisionModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewRevision creates a new revision model.
func NewRevision(db *bun.DB, logger *zap.Logger) *RevisionModel {
	return &RevisionModel{
		db:     db,
		logger: logger.Named("db_revision"),
	}
}

// CreateRevision stores a snapshot row.
func (r *RevisionModel) CreateRevision(ctx context.Context, db bun.IDB, revision *types.PostRevision) error {
	if _, err := db.NewInsert().Model(revision).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create revision: %w", err)
	}
	return nil
}

// GetRevision retrieves a revision that belongs to the given post.
func (r *RevisionModel) GetRevision(ctx context.Context, db bun.IDB, postID, revisionID int64) (*types.PostRevision, error) {
	revision := new(types.PostRevision)
	err := db.NewSelect().
		Model(revision).
		Where("id = ?", revisionID).
		Where("post_id = ?", postID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}
	return revision, nil
}

// GetRevisions returns the attic of a post, oldest snapshot first.
func (r *RevisionModel) GetRevisions(ctx context.Context, db bun.IDB, postID int64) ([]*types.PostRevision, error) {
	var revisions []*types.PostRevision
	err := db.NewSelect().
		Model(&revisions).
		Where("post_id = ?", postID).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get revisions: %w", err)
	}
	return revisions, nil
}
