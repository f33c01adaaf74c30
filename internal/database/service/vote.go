package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/parleyhq/parley/internal/badges"
	"github.com/parleyhq/parley/internal/database/models"
	"github.com/parleyhq/parley/internal/database/types"
	"github.com/parleyhq/parley/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ErrInvalidDelta is returned when a vote delta outside {-1, 0, +1} is
// passed in; this is a contract violation, never coerced.
var ErrInvalidDelta = errors.New("vote delta must be -1, 0 or +1")

// Ranker receives hotness updates. Implemented by ranking.Leaderboard; nil
// disables the mirror.
type Ranker interface {
	SetHotness(ctx context.Context, topicID int64, hotness float64) error
	Remove(ctx context.Context, topicID int64) error
}

// VoteService owns the vote ledger: the one-vote-per-(user, post)
// invariant and the transitions between the none/up/down states, together
// with every counter and reputation effect a transition implies.
type VoteService struct {
	votes   *models.VoteModel
	topics  *models.TopicModel
	users   *models.UserModel
	badges  *BadgeService
	ranking Ranker
	logger  *zap.Logger
}

// NewVote creates a new vote service.
func NewVote(
	votes *models.VoteModel,
	topics *models.TopicModel,
	users *models.UserModel,
	badges *BadgeService,
	ranking Ranker,
	logger *zap.Logger,
) *VoteService {
	return &VoteService{
		votes:   votes,
		topics:  topics,
		users:   users,
		badges:  badges,
		ranking: ranking,
		logger:  logger.Named("vote_service"),
	}
}

// voteTransition describes what one ledger transition has to do.
type voteTransition struct {
	change    int64 // Delta applied to post.votes, new minus old
	createRow bool
	updateRow bool
	deleteRow bool
	noop      bool
}

// planVote maps an (old, new) delta pair onto the ledger state machine.
// Re-casting the same vote is an explicit idempotent no-op, as is
// retracting a vote that does not exist.
func planVote(old, next int64) voteTransition {
	if old == next {
		return voteTransition{noop: true}
	}

	t := voteTransition{change: next - old}
	switch {
	case next == 0:
		t.deleteRow = true
	case old == 0:
		t.createRow = true
	default:
		t.updateRow = true
	}
	return t
}

// SetVote casts, switches, or retracts (delta 0) a user's vote on a post.
//
// Self-votes are representable: the reputation policy suppresses the
// downvote penalty for self-targets rather than rejecting the vote, so
// that rule and the self-critic badge can work. Whether users should be
// allowed to vote on their own posts at all is a policy decision of the
// calling layer.
func (s *VoteService) SetVote(ctx context.Context, db bun.IDB, voter *types.User, post *types.Post, delta int64) error {
	if delta < -1 || delta > 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidDelta, delta)
	}

	vote, err := s.votes.GetVote(ctx, db, voter.ID, post.ID)
	if err != nil {
		return err
	}

	var old int64
	if vote != nil {
		old = vote.Delta
	}

	plan := planVote(old, delta)
	if plan.noop {
		voter.CacheVote(post.ID, delta)
		return nil
	}

	// Ledger row first, so the votes column never leads the ledger
	// within the transaction.
	switch {
	case plan.deleteRow:
		if err := s.votes.DeleteVote(ctx, db, vote); err != nil {
			return err
		}
	case plan.createRow:
		vote = &types.Vote{UserID: voter.ID, PostID: post.ID, Delta: delta}
		if err := s.votes.CreateVote(ctx, db, vote); err != nil {
			return err
		}
	case plan.updateRow:
		if err := s.votes.UpdateVoteDelta(ctx, db, vote, delta); err != nil {
			return err
		}
	}

	// One combined increment; reloaded because badge thresholds read the
	// fresh total below.
	if err := models.AtomicAddReload(ctx, db, post, "votes", plan.change); err != nil {
		return err
	}

	author := voter
	if post.AuthorID != voter.ID {
		if author, err = s.users.GetUser(ctx, db, post.AuthorID); err != nil {
			return err
		}
	}

	if old != 0 {
		if err := s.applyVoteEffects(ctx, db, voter, author, post, old, true); err != nil {
			return err
		}
	}
	if delta != 0 {
		if err := s.applyVoteEffects(ctx, db, voter, author, post, delta, false); err != nil {
			return err
		}
	}

	topic, err := s.topics.GetTopic(ctx, db, post.TopicID)
	if err != nil {
		return err
	}

	// The topic's votes column is a copy of the question post's, never an
	// independent ledger.
	if topic.QuestionPostID == post.ID {
		topic.Votes = post.Votes
		topic.Hotness = types.Hotness(topic.Votes, topic.Date)
		if err := s.topics.UpdateColumns(ctx, db, topic, "votes", "hotness"); err != nil {
			return err
		}

		if s.ranking != nil {
			if err := s.ranking.SetHotness(ctx, topic.ID, topic.Hotness); err != nil {
				s.logger.Warn("Failed to update hotness ranking",
					zap.Int64("topicID", topic.ID),
					zap.Error(err))
			}
		}
	}

	voter.CacheVote(post.ID, delta)

	if err := s.users.TouchActivity(ctx, db, voter, topic.Locale, 1); err != nil {
		return err
	}

	return s.badges.TryAward(ctx, db, &badges.Event{
		Kind:  enum.EventTypeVote,
		Actor: voter,
		Topic: topic,
		Post:  post,
		Delta: delta,
	})
}

// applyVoteEffects applies (or, with revert set, exactly reverses) the
// voter counter and reputation effects of a single vote delta.
func (s *VoteService) applyVoteEffects(
	ctx context.Context, db bun.IDB,
	voter, author *types.User, post *types.Post,
	delta int64, revert bool,
) error {
	sign := int64(1)
	if revert {
		sign = -1
	}

	if delta > 0 {
		if err := models.AtomicAdd(ctx, db, voter, "upvotes", sign, &voter.Upvotes); err != nil {
			return err
		}
		return models.AtomicAdd(ctx, db, author, "reputation", sign*upvoteGain(post), &author.Reputation)
	}

	if err := models.AtomicAdd(ctx, db, voter, "downvotes", sign, &voter.Downvotes); err != nil {
		return err
	}

	// Downvoting your own post never changes your reputation; the
	// penalty and the author's loss only apply across users.
	if voter.ID == author.ID {
		return nil
	}

	if err := models.AtomicAdd(ctx, db, author, "reputation", -sign*LoseOnDownvote, &author.Reputation); err != nil {
		return err
	}
	return models.AtomicAdd(ctx, db, voter, "reputation", -sign*DownvotePenalty, &voter.Reputation)
}

// GetVoteStatus returns the user's current vote delta on a post, serving
// from the per-request cache when possible.
func (s *VoteService) GetVoteStatus(ctx context.Context, db bun.IDB, user *types.User, postID int64) (int64, error) {
	if delta, ok := user.CachedVote(postID); ok {
		return delta, nil
	}

	vote, err := s.votes.GetVote(ctx, db, user.ID, postID)
	if err != nil {
		return 0, err
	}

	var delta int64
	if vote != nil {
		delta = vote.Delta
	}
	user.CacheVote(postID, delta)
	return delta, nil
}

// PullVotes batch-fills the user's vote cache for a page of posts.
func (s *VoteService) PullVotes(ctx context.Context, db bun.IDB, user *types.User, postIDs []int64) error {
	return s.votes.PullVotes(ctx, db, user, postIDs)
}
