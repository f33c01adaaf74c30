package service

import (
	"github.com/parleyhq/parley/internal/database/types"
)

// Reputation deltas applied by the engine. The reward/penalty policy is
// deliberately asymmetric: upvotes on replies are worth far more than
// question upvotes, and downvotes cost the voter as well as the author.
const (
	// GainOnUpvote is what a reply author earns per upvote.
	GainOnUpvote int64 = 10
	// GainOnQuestionUpvote is what a question author earns per upvote.
	GainOnQuestionUpvote int64 = 1
	// LoseOnDownvote is what an author pays per received downvote.
	LoseOnDownvote int64 = 2
	// DownvotePenalty is what the voter pays for casting a downvote.
	DownvotePenalty int64 = 1
	// GainOnAcceptedAnswer is what an author earns when their reply is
	// accepted as the answer.
	GainOnAcceptedAnswer int64 = 50
	// LoseOnLostAnswer is taken back when an accepted answer is revoked.
	// Keeping it equal to GainOnAcceptedAnswer stops users from farming
	// reputation by switching answers back and forth.
	LoseOnLostAnswer int64 = 50
)

// Reputation thresholds for privileged actions.
const (
	ReputationToUpvote             int64 = 15
	ReputationToDownvote           int64 = 100
	ReputationToAcceptOtherAnswers int64 = 1000
	ReputationToUnacceptAnswer     int64 = 2000
	ReputationToEditOtherPosts     int64 = 2000
	ReputationToAcceptOwnAnswers   int64 = 5000
	ReputationToModerate           int64 = 10000
)

// upvoteGain returns the author's reputation gain for an upvote on the
// given post.
func upvoteGain(post *types.Post) int64 {
	if post.IsQuestion {
		return GainOnQuestionUpvote
	}
	return GainOnUpvote
}

// IsModerator reports whether the user has moderation rights.
func IsModerator(user *types.User) bool {
	return user.IsAdmin || user.Reputation >= ReputationToModerate
}

// CanEdit reports whether the user may edit the given post.
func CanEdit(user *types.User, post *types.Post) bool {
	if user.IsAdmin || post.AuthorID == user.ID {
		return true
	}
	return user.Reputation >= ReputationToEditOtherPosts
}

// CanAcceptAnswer reports whether the user may accept the given post as
// the answer of its topic.
func CanAcceptAnswer(user *types.User, topic *types.Topic, post *types.Post) bool {
	if user.IsAdmin || topic.AuthorID == user.ID {
		return true
	}
	if post.AuthorID == user.ID {
		return user.Reputation >= ReputationToAcceptOwnAnswers
	}
	return user.Reputation >= ReputationToAcceptOtherAnswers
}

// CanUnacceptAnswer reports whether the user may revoke the accepted
// answer of the topic.
func CanUnacceptAnswer(user *types.User, topic *types.Topic) bool {
	if user.IsAdmin || topic.AuthorID == user.ID {
		return true
	}
	return user.Reputation >= ReputationToUnacceptAnswer
}
