package models

import (
	"context"
	"fmt"

	"github.com/parleyhq/parley/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// BadgeModel handles database operations for badge awards.
type BadgeModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewBadge creates a new badge model.
func NewBadge(db *bun.DB, logger *zap.Logger) *BadgeModel {
	return &BadgeModel{
		db:     db,
		logger: logger.Named("db_badge"),
	}
}

// HasAward reports whether the user already holds the badge, regardless of
// payload.
func (r *BadgeModel) HasAward(ctx context.Context, db bun.IDB, userID int64, badge string) (bool, error) {
	exists, err := db.NewSelect().
		Model((*types.UserBadge)(nil)).
		Where("user_id = ?", userID).
		Where("badge = ?", badge).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check badge award: %w", err)
	}
	return exists, nil
}

// HasAwardWithPayload reports whether the exact (user, badge, payload)
// triple was already awarded.
func (r *BadgeModel) HasAwardWithPayload(ctx context.Context, db bun.IDB, userID int64, badge, payload string) (bool, error) {
	exists, err := db.NewSelect().
		Model((*types.UserBadge)(nil)).
		Where("user_id = ?", userID).
		Where("badge = ?", badge).
		Where("payload = ?", payload).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check badge award payload: %w", err)
	}
	return exists, nil
}

// CreateAward appends a new award row. Award rows are never mutated or
// deleted afterwards.
func (r *BadgeModel) CreateAward(ctx context.Context, db bun.IDB, award *types.UserBadge) error {
	if _, err := db.NewInsert().Model(award).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create badge award: %w", err)
	}
	return nil
}

// GetAwardedIdentifiers returns the badge identifier of every award the
// user holds, repeats included.
func (r *BadgeModel) GetAwardedIdentifiers(ctx context.Context, db bun.IDB, userID int64) ([]string, error) {
	var identifiers []string
	err := db.NewSelect().
		Model((*types.UserBadge)(nil)).
		Column("badge").
		Where("user_id = ?", userID).
		Scan(ctx, &identifiers)
	if err != nil {
		return nil, fmt.Errorf("failed to get badge identifiers: %w", err)
	}
	return identifiers, nil
}

// UpdateLevelCounters writes the recomputed per-level badge counters back
// to the user row and its in-process mirror.
func (r *BadgeModel) UpdateLevelCounters(ctx context.Context, db bun.IDB, user *types.User, bronze, silver, gold, platinum int64) error {
	user.BronzeBadges = bronze
	user.SilverBadges = silver
	user.GoldBadges = gold
	user.PlatinumBadges = platinum

	_, err := db.NewUpdate().
		Model(user).
		Column("bronze_badges", "silver_badges", "gold_badges", "platinum_badges").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update badge level counters: %w", err)
	}
	return nil
}
