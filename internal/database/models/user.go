package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a requested entity does not exist. The
// engine never retries on it; callers decide what a missing row means.
var ErrNotFound = errors.New("entity not found")

// UserModel handles database operations for users and their activity.
type UserModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUser creates a new user model.
func NewUser(db *bun.DB, logger *zap.Logger) *UserModel {
	return &UserModel{
		db:     db,
		logger: logger.Named("db_user"),
	}
}

// CreateUser inserts a new user with zeroed counters and a fresh UUID.
func (r *UserModel) CreateUser(ctx context.Context, db bun.IDB, user *types.User) error {
	if user.UUID == uuid.Nil {
		user.UUID = uuid.New()
	}
	user.IsActive = true

	if _, err := db.NewInsert().Model(user).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (r *UserModel) GetUser(ctx context.Context, db bun.IDB, id int64) (*types.User, error) {
	user := new(types.User)
	err := db.NewSelect().
		Model(user).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// TouchActivity bumps the user's activity counter for a locale, creating
// the activity row on first use. The counter itself goes through the
// atomic counter primitive.
func (r *UserModel) TouchActivity(ctx context.Context, db bun.IDB, user *types.User, locale string, points int64) error {
	now := time.Now()

	activity := new(types.UserActivity)
	err := db.NewSelect().
		Model(activity).
		Where("user_id = ?", user.ID).
		Where("locale = ?", locale).
		Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to get user activity: %w", err)
		}

		activity = &types.UserActivity{
			UserID:        user.ID,
			Locale:        locale,
			FirstActivity: now,
			LastActivity:  now,
		}
		if _, err := db.NewInsert().Model(activity).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create user activity: %w", err)
		}
	}

	if err := AtomicAdd(ctx, db, activity, "counter", points, &activity.Counter); err != nil {
		return err
	}

	_, err = db.NewUpdate().
		Model(activity).
		Set("last_activity = ?", now).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update user activity: %w", err)
	}

	return nil
}

// GetActivities returns all activity rows of a user, most active locale
// first.
func (r *UserModel) GetActivities(ctx context.Context, db bun.IDB, userID int64) ([]*types.UserActivity, error) {
	var activities []*types.UserActivity
	err := db.NewSelect().
		Model(&activities).
		Where("user_id = ?", userID).
		Order("counter DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user activities: %w", err)
	}
	return activities, nil
}
