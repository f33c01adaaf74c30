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

// TopicModel handles database operations for topics.
type TopicModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewTopic creates a new topic model.
func NewTopic(db *bun.DB, logger *zap.Logger) *TopicModel {
	return &TopicModel{
		db:     db,
		logger: logger.Named("db_topic"),
	}
}

// CreateTopic inserts a new topic row.
func (r *TopicModel) CreateTopic(ctx context.Context, db bun.IDB, topic *types.Topic) error {
	if _, err := db.NewInsert().Model(topic).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// GetTopic retrieves a topic by ID.
func (r *TopicModel) GetTopic(ctx context.Context, db bun.IDB, id int64) (*types.Topic, error) {
	topic := new(types.Topic)
	err := db.NewSelect().
		Model(topic).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return topic, nil
}

// UpdateColumns persists the given columns of a topic.
func (r *TopicModel) UpdateColumns(ctx context.Context, db bun.IDB, topic *types.Topic, columns ...string) error {
	_, err := db.NewUpdate().
		Model(topic).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update topic: %w", err)
	}
	return nil
}

// GetAllTopicIDs returns every topic ID; used by maintenance passes that
// resynchronize denormalized counters.
func (r *TopicModel) GetAllTopicIDs(ctx context.Context, db bun.IDB) ([]int64, error) {
	var ids []int64
	err := db.NewSelect().
		Model((*types.Topic)(nil)).
		Column("id").
		Order("id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic IDs: %w", err)
	}
	return ids, nil
}
