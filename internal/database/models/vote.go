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

// VoteModel handles database operations for the vote ledger.
type VoteModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewVote creates a new vote model.
func NewVote(db *bun.DB, logger *zap.Logger) *VoteModel {
	return &VoteModel{
		db:     db,
		logger: logger.Named("db_vote"),
	}
}

// GetVote returns the stored vote of a user on a post, or nil if the user
// has no recorded opinion.
func (r *VoteModel) GetVote(ctx context.Context, db bun.IDB, userID, postID int64) (*types.Vote, error) {
	vote := new(types.Vote)
	err := db.NewSelect().
		Model(vote).
		Where("user_id = ?", userID).
		Where("post_id = ?", postID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return vote, nil
}

// CreateVote inserts a new ledger row.
func (r *VoteModel) CreateVote(ctx context.Context, db bun.IDB, vote *types.Vote) error {
	if _, err := db.NewInsert().Model(vote).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}

// UpdateVoteDelta switches the direction of an existing ledger row.
func (r *VoteModel) UpdateVoteDelta(ctx context.Context, db bun.IDB, vote *types.Vote, delta int64) error {
	vote.Delta = delta

	_, err := db.NewUpdate().
		Model(vote).
		Column("delta").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}
	return nil
}

// DeleteVote removes a ledger row; a retracted vote is never stored as a
// zero delta.
func (r *VoteModel) DeleteVote(ctx context.Context, db bun.IDB, vote *types.Vote) error {
	if _, err := db.NewDelete().Model(vote).WherePK().Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

// SumDeltas recomputes a post's vote total from the ledger ground truth.
func (r *VoteModel) SumDeltas(ctx context.Context, db bun.IDB, postID int64) (int64, error) {
	var total int64
	err := db.NewSelect().
		Model((*types.Vote)(nil)).
		ColumnExpr("COALESCE(SUM(delta), 0)").
		Where("post_id = ?", postID).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum vote deltas: %w", err)
	}
	return total, nil
}

// PullVotes populates the user's per-request vote cache for all the given
// posts with a single query. Posts the user never voted on are cached as
// zero so repeated lookups stay free.
func (r *VoteModel) PullVotes(ctx context.Context, db bun.IDB, user *types.User, postIDs []int64) error {
	toPull := make([]int64, 0, len(postIDs))
	for _, id := range postIDs {
		if _, ok := user.CachedVote(id); !ok {
			toPull = append(toPull, id)
		}
	}
	if len(toPull) == 0 {
		return nil
	}

	var votes []*types.Vote
	err := db.NewSelect().
		Model(&votes).
		Where("user_id = ?", user.ID).
		Where("post_id IN (?)", bun.In(toPull)).
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull votes: %w", err)
	}

	found := make(map[int64]int64, len(votes))
	for _, vote := range votes {
		found[vote.PostID] = vote.Delta
	}
	for _, id := range toPull {
		user.CacheVote(id, found[id])
	}

	return nil
}
