package models

import (
	"context"
	"fmt"
	"time"

	"github.com/parleyhq/parley/internal/database/types"
	"github.com/parleyhq/parley/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// MessageModel handles database operations for user notifications.
type MessageModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewMessage creates a new message model.
func NewMessage(db *bun.DB, logger *zap.Logger) *MessageModel {
	return &MessageModel{
		db:     db,
		logger: logger.Named("db_message"),
	}
}

// CreateMessage enqueues a notification for a user. Delivery and display
// are handled outside the engine.
func (r *MessageModel) CreateMessage(ctx context.Context, db bun.IDB, userID int64, text string, severity enum.MessageSeverity) error {
	message := &types.UserMessage{
		UserID:    userID,
		Text:      text,
		Severity:  severity,
		CreatedAt: time.Now(),
	}
	if _, err := db.NewInsert().Model(message).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create user message: %w", err)
	}
	return nil
}

// GetMessages returns a user's pending notifications, oldest first, and
// deletes them when drain is set.
func (r *MessageModel) GetMessages(ctx context.Context, db bun.IDB, userID int64, drain bool) ([]*types.UserMessage, error) {
	var messages []*types.UserMessage
	err := db.NewSelect().
		Model(&messages).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user messages: %w", err)
	}

	if drain && len(messages) > 0 {
		_, err := db.NewDelete().
			Model((*types.UserMessage)(nil)).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to drain user messages: %w", err)
		}
	}

	return messages, nil
}
