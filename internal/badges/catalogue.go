package badges

import (
	"strconv"

	"github.com/parleyhq/parley/internal/database/types/enum"
)

// specialAnswer is the shared rule of the answer quality badges: the
// answer's author qualifies once the accepted answer collects enough
// votes, with the post ID as payload so each answer can earn the badge
// exactly once.
func specialAnswer(e *Event, votesRequired int64) *Award {
	if e.Post == nil || !e.Post.IsAnswer || e.Post.Votes < votesRequired {
		return nil
	}
	return &Award{
		UserID:  e.Post.AuthorID,
		Payload: strconv.FormatInt(e.Post.ID, 10),
	}
}

// Default builds the standard catalogue. It must be called once at process
// start; the resulting registry is shared read-only state.
func Default() *Registry {
	return NewRegistry(
		&Badge{
			Level:         enum.BadgeLevelBronze,
			Identifier:    "critic",
			Name:          "Critic",
			Description:   "First down vote",
			SingleAwarded: true,
			OnVote: func(e *Event) *Award {
				if e.Delta < 0 && e.Post != nil && e.Actor.ID != e.Post.AuthorID {
					return &Award{UserID: e.Actor.ID}
				}
				return nil
			},
		},
		&Badge{
			Level:         enum.BadgeLevelSilver,
			Identifier:    "self-critic",
			Name:          "Self-Critic",
			Description:   "First downvote on own reply or question",
			SingleAwarded: true,
			OnVote: func(e *Event) *Award {
				if e.Delta < 0 && e.Post != nil && e.Actor.ID == e.Post.AuthorID {
					return &Award{UserID: e.Actor.ID}
				}
				return nil
			},
		},
		&Badge{
			Level:         enum.BadgeLevelBronze,
			Identifier:    "editor",
			Name:          "Editor",
			Description:   "First edited post",
			SingleAwarded: true,
			OnEdit: func(e *Event) *Award {
				return &Award{UserID: e.Actor.ID}
			},
		},
		&Badge{
			Level:         enum.BadgeLevelBronze,
			Identifier:    "inquirer",
			Name:          "Inquirer",
			Description:   "First asked question",
			SingleAwarded: true,
			OnNewTopic: func(e *Event) *Award {
				return &Award{UserID: e.Actor.ID}
			},
		},
		&Badge{
			Level:         enum.BadgeLevelSilver,
			Identifier:    "troubleshooter",
			Name:          "Troubleshooter",
			Description:   "First answered question",
			SingleAwarded: true,
			OnAccept: func(e *Event) *Award {
				if e.Post == nil {
					return nil
				}
				return &Award{UserID: e.Post.AuthorID}
			},
		},
		&Badge{
			Level:       enum.BadgeLevelBronze,
			Identifier:  "nice-answer",
			Name:        "Nice Answer",
			Description: "Answer was upvoted 10 times",
			OnAccept:    func(e *Event) *Award { return specialAnswer(e, 10) },
			OnVote:      func(e *Event) *Award { return specialAnswer(e, 10) },
		},
		&Badge{
			Level:       enum.BadgeLevelSilver,
			Identifier:  "good-answer",
			Name:        "Good Answer",
			Description: "Answer was upvoted 25 times",
			OnAccept:    func(e *Event) *Award { return specialAnswer(e, 25) },
			OnVote:      func(e *Event) *Award { return specialAnswer(e, 25) },
		},
		&Badge{
			Level:       enum.BadgeLevelGold,
			Identifier:  "great-answer",
			Name:        "Great Answer",
			Description: "Answer was upvoted 75 times",
			OnAccept:    func(e *Event) *Award { return specialAnswer(e, 75) },
			OnVote:      func(e *Event) *Award { return specialAnswer(e, 75) },
		},
		&Badge{
			Level:       enum.BadgeLevelPlatinum,
			Identifier:  "unique-answer",
			Name:        "Unique Answer",
			Description: "Answer was upvoted 150 times",
			OnAccept:    func(e *Event) *Award { return specialAnswer(e, 150) },
			OnVote:      func(e *Event) *Award { return specialAnswer(e, 150) },
		},
		&Badge{
			Level:       enum.BadgeLevelGold,
			Identifier:  "reversal",
			Name:        "Reversal",
			Description: "Provided answer of +20 score to a question of -5 score",
			OnAccept:    reversal,
			OnVote:      reversal,
		},
		&Badge{
			Level:       enum.BadgeLevelSilver,
			Identifier:  "self-learner",
			Name:        "Self-Learner",
			Description: "Answered your own question with at least 3 upvotes",
			OnAccept:    selfLearner,
			OnVote:      selfLearner,
		},
	)
}

func reversal(e *Event) *Award {
	if e.Post == nil || e.Topic == nil {
		return nil
	}
	if !e.Post.IsAnswer || e.Post.Votes < 20 || e.Topic.Votes > -5 {
		return nil
	}
	return &Award{
		UserID:  e.Post.AuthorID,
		Payload: strconv.FormatInt(e.Post.ID, 10),
	}
}

func selfLearner(e *Event) *Award {
	if e.Post == nil || e.Topic == nil {
		return nil
	}
	if !e.Post.IsAnswer || e.Post.AuthorID != e.Topic.AuthorID || e.Post.Votes < 3 {
		return nil
	}
	return &Award{
		UserID:  e.Post.AuthorID,
		Payload: strconv.FormatInt(e.Post.ID, 10),
	}
}
