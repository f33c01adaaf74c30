package service

import (
	"testing"

	"github.com/parleyhq/parley/internal/database/types"
	"github.com/stretchr/testify/assert"
)

func TestUpvoteGain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, GainOnQuestionUpvote, upvoteGain(&types.Post{IsQuestion: true}))
	assert.Equal(t, GainOnUpvote, upvoteGain(&types.Post{}))
}

func TestIsModerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user types.User
		want bool
	}{
		{
			name: "admin moderates regardless of reputation",
			user: types.User{IsAdmin: true},
			want: true,
		},
		{
			name: "reputation at threshold",
			user: types.User{Reputation: ReputationToModerate},
			want: true,
		},
		{
			name: "reputation below threshold",
			user: types.User{Reputation: ReputationToModerate - 1},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsModerator(&tt.user))
		})
	}
}

func TestCanEdit(t *testing.T) {
	t.Parallel()

	post := &types.Post{AuthorID: 7}

	tests := []struct {
		name string
		user types.User
		want bool
	}{
		{
			name: "author edits own post",
			user: types.User{ID: 7},
			want: true,
		},
		{
			name: "admin edits anything",
			user: types.User{ID: 1, IsAdmin: true},
			want: true,
		},
		{
			name: "stranger below threshold",
			user: types.User{ID: 2, Reputation: ReputationToEditOtherPosts - 1},
			want: false,
		},
		{
			name: "stranger at threshold",
			user: types.User{ID: 2, Reputation: ReputationToEditOtherPosts},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanEdit(&tt.user, post))
		})
	}
}

func TestCanAcceptAnswer(t *testing.T) {
	t.Parallel()

	topic := &types.Topic{AuthorID: 7}
	ownAnswer := &types.Post{AuthorID: 2}
	otherAnswer := &types.Post{AuthorID: 9}

	tests := []struct {
		name string
		user types.User
		post *types.Post
		want bool
	}{
		{
			name: "topic author accepts freely",
			user: types.User{ID: 7},
			post: otherAnswer,
			want: true,
		},
		{
			name: "accepting own answer needs the higher threshold",
			user: types.User{ID: 2, Reputation: ReputationToAcceptOtherAnswers},
			post: ownAnswer,
			want: false,
		},
		{
			name: "own answer at own-answer threshold",
			user: types.User{ID: 2, Reputation: ReputationToAcceptOwnAnswers},
			post: ownAnswer,
			want: true,
		},
		{
			name: "someone else's answer at the lower threshold",
			user: types.User{ID: 2, Reputation: ReputationToAcceptOtherAnswers},
			post: otherAnswer,
			want: true,
		},
		{
			name: "stranger below every threshold",
			user: types.User{ID: 2, Reputation: 1},
			post: otherAnswer,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanAcceptAnswer(&tt.user, topic, tt.post))
		})
	}
}

func TestCanUnacceptAnswer(t *testing.T) {
	t.Parallel()

	topic := &types.Topic{AuthorID: 7}

	assert.True(t, CanUnacceptAnswer(&types.User{ID: 7}, topic))
	assert.True(t, CanUnacceptAnswer(&types.User{ID: 2, IsAdmin: true}, topic))
	assert.True(t, CanUnacceptAnswer(&types.User{ID: 2, Reputation: ReputationToUnacceptAnswer}, topic))
	assert.False(t, CanUnacceptAnswer(&types.User{ID: 2, Reputation: ReputationToUnacceptAnswer - 1}, topic))
}
