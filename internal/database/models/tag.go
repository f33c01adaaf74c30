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

// TagModel handles database operations for tags and topic bindings.
type TagModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewTag creates a new tag model.
func NewTag(db *bun.DB, logger *zap.Logger) *TagModel {
	return &TagModel{
		db:     db,
		logger: logger.Named("db_tag"),
	}
}

// GetOrCreateTag looks a tag up by (locale, name), creating it with a zero
// tagged count on first use.
func (r *TagModel) GetOrCreateTag(ctx context.Context, db bun.IDB, locale, name string) (*types.Tag, error) {
	tag := new(types.Tag)
	err := db.NewSelect().
		Model(tag).
		Where("locale = ?", locale).
		Where("name = ?", name).
		Scan(ctx)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	tag = &types.Tag{Locale: locale, Name: name}
	if _, err := db.NewInsert().Model(tag).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// GetTopicTags returns the tags currently bound to a topic, sorted by name.
func (r *TagModel) GetTopicTags(ctx context.Context, db bun.IDB, topicID int64) ([]*types.Tag, error) {
	var tags []*types.Tag
	err := db.NewSelect().
		Model(&tags).
		Join("JOIN topic_tags AS tt ON tt.tag_id = tag.id").
		Where("tt.topic_id = ?", topicID).
		Order("tag.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic tags: %w", err)
	}
	return tags, nil
}

// BindTag attaches a tag to a topic and bumps the tag's tagged counter.
func (r *TagModel) BindTag(ctx context.Context, db bun.IDB, topicID int64, tag *types.Tag) error {
	binding := &types.TopicTag{TopicID: topicID, TagID: tag.ID}
	if _, err := db.NewInsert().Model(binding).Exec(ctx); err != nil {
		return fmt.Errorf("failed to bind tag: %w", err)
	}
	return AtomicAdd(ctx, db, tag, "tagged", 1, &tag.Tagged)
}

// UnbindTag detaches a tag from a topic and decrements its tagged counter.
func (r *TagModel) UnbindTag(ctx context.Context, db bun.IDB, topicID int64, tag *types.Tag) error {
	_, err := db.NewDelete().
		Model((*types.TopicTag)(nil)).
		Where("topic_id = ?", topicID).
		Where("tag_id = ?", tag.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to unbind tag: %w", err)
	}
	return AtomicAdd(ctx, db, tag, "tagged", -1, &tag.Tagged)
}
