package service_test

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	"github.com/parleyhq/parley/internal/badges"
	"github.com/parleyhq/parley/internal/database/models"
	"github.com/parleyhq/parley/internal/database/service"
	"github.com/parleyhq/parley/internal/database/types"
	"github.com/parleyhq/parley/internal/database/types/enum"
	"github.com/parleyhq/parley/internal/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"go.uber.org/zap"
)

// engine wires the full service stack over an in-memory SQLite database
// so counter, ledger and reputation effects can be asserted against real
// storage instead of the in-process mirrors alone.
type engine struct {
	db     *bun.DB
	users  *models.UserModel
	topics *models.TopicModel
	posts  *models.PostModel
	votes  *models.VoteModel
	tags   *models.TagModel
	awards *models.BadgeModel

	badge *service.BadgeService
	vote  *service.VoteService
	post  *service.PostService
	topic *service.TopicService
}

func newEngine(t *testing.T) *engine {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqldb.Close() })

	// A single connection keeps every query on the same in-memory database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, model := range []any{
		(*types.User)(nil),
		(*types.UserMessage)(nil),
		(*types.UserActivity)(nil),
		(*types.Topic)(nil),
		(*types.Post)(nil),
		(*types.PostRevision)(nil),
		(*types.Comment)(nil),
		(*types.Vote)(nil),
		(*types.Tag)(nil),
		(*types.TopicTag)(nil),
		(*types.UserBadge)(nil),
	} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	logger := zap.NewNop()
	users := models.NewUser(db, logger)
	topics := models.NewTopic(db, logger)
	posts := models.NewPost(db, logger)
	votes := models.NewVote(db, logger)
	awards := models.NewBadge(db, logger)
	revisions := models.NewRevision(db, logger)
	tags := models.NewTag(db, logger)
	messages := models.NewMessage(db, logger)

	badgeSvc := service.NewBadge(badges.Default(), awards, users, messages, logger)
	postSvc := service.NewPost(posts, topics, tags, users, revisions, badgeSvc, nil, markup.Plain{}, logger)
	voteSvc := service.NewVote(votes, topics, users, badgeSvc, nil, logger)
	topicSvc := service.NewTopic(topics, posts, tags, users, votes, postSvc, badgeSvc, nil, logger)

	return &engine{
		db:     db,
		users:  users,
		topics: topics,
		posts:  posts,
		votes:  votes,
		tags:   tags,
		awards: awards,
		badge:  badgeSvc,
		vote:   voteSvc,
		post:   postSvc,
		topic:  topicSvc,
	}
}

func (e *engine) createUser(t *testing.T, username string, reputation int64) *types.User {
	t.Helper()

	user := &types.User{
		Username:   username,
		Email:      username + "@example.com",
		Reputation: reputation,
	}
	require.NoError(t, e.users.CreateUser(context.Background(), e.db, user))
	return user
}

func (e *engine) createTopic(t *testing.T, author *types.User) (*types.Topic, *types.Post) {
	t.Helper()
	ctx := context.Background()

	topic, err := e.topic.CreateTopic(ctx, e.db, "en", "How do I sort a slice?", "I tried bubble sort.", author)
	require.NoError(t, err)

	question, err := e.posts.GetPost(ctx, e.db, topic.QuestionPostID)
	require.NoError(t, err)
	return topic, question
}

func (e *engine) reputation(t *testing.T, userID int64) int64 {
	t.Helper()

	user, err := e.users.GetUser(context.Background(), e.db, userID)
	require.NoError(t, err)
	return user.Reputation
}

func (e *engine) countAwards(t *testing.T, userID int64, badge string) int {
	t.Helper()

	count, err := e.db.NewSelect().
		Model((*types.UserBadge)(nil)).
		Where("user_id = ?", userID).
		Where("badge = ?", badge).
		Count(context.Background())
	require.NoError(t, err)
	return count
}

func TestSetVote_CastAndRetractRoundTrip(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	answerer := e.createUser(t, "answerer", 0)
	voter := e.createUser(t, "voter", 100)

	topic, _ := e.createTopic(t, asker)
	reply, err := e.post.CreateReply(ctx, e.db, topic, answerer, "Use sort.Slice.")
	require.NoError(t, err)

	require.NoError(t, e.vote.SetVote(ctx, e.db, voter, reply, 1))
	assert.Equal(t, int64(1), reply.Votes)
	assert.Equal(t, int64(1), voter.Upvotes)
	assert.Equal(t, int64(10), e.reputation(t, answerer.ID))

	stored, err := e.users.GetUser(ctx, e.db, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Upvotes)

	// Retraction restores every effect and deletes the ledger row.
	require.NoError(t, e.vote.SetVote(ctx, e.db, voter, reply, 0))
	assert.Equal(t, int64(0), reply.Votes)
	assert.Equal(t, int64(0), voter.Upvotes)
	assert.Equal(t, int64(0), e.reputation(t, answerer.ID))
	assert.Equal(t, int64(100), e.reputation(t, voter.ID))

	row, err := e.votes.GetVote(ctx, e.db, voter.ID, reply.ID)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestSetVote_SwitchKeepsSingleLedgerRow(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	answerer := e.createUser(t, "answerer", 0)
	voter := e.createUser(t, "voter", 100)

	topic, _ := e.createTopic(t, asker)
	reply, err := e.post.CreateReply(ctx, e.db, topic, answerer, "Use sort.Slice.")
	require.NoError(t, err)

	require.NoError(t, e.vote.SetVote(ctx, e.db, voter, reply, 1))
	require.NoError(t, e.vote.SetVote(ctx, e.db, voter, reply, -1))

	// The stored total moves by new minus old, not by two separate votes.
	assert.Equal(t, int64(-1), reply.Votes)

	count, err := e.db.NewSelect().
		Model((*types.Vote)(nil)).
		Where("post_id = ?", reply.ID).
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	row, err := e.votes.GetVote(ctx, e.db, voter.ID, reply.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(-1), row.Delta)

	stored, err := e.users.GetUser(ctx, e.db, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.Upvotes)
	assert.Equal(t, int64(1), stored.Downvotes)
	assert.Equal(t, int64(99), stored.Reputation) // Voter pays for the downvote
	assert.Equal(t, int64(-2), e.reputation(t, answerer.ID))

	held, err := e.awards.HasAward(ctx, e.db, voter.ID, "critic")
	require.NoError(t, err)
	assert.True(t, held)
}

func TestSetVote_SelfDownvoteLeavesReputationAlone(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 200)
	topic, question := e.createTopic(t, asker)

	require.NoError(t, e.vote.SetVote(ctx, e.db, asker, question, -1))

	assert.Equal(t, int64(-1), question.Votes)
	assert.Equal(t, int64(1), asker.Downvotes)
	assert.Equal(t, int64(200), e.reputation(t, asker.ID))

	// The topic mirrors its question post's vote total.
	stored, err := e.topics.GetTopic(ctx, e.db, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), stored.Votes)

	selfCritic, err := e.awards.HasAward(ctx, e.db, asker.ID, "self-critic")
	require.NoError(t, err)
	assert.True(t, selfCritic)

	critic, err := e.awards.HasAward(ctx, e.db, asker.ID, "critic")
	require.NoError(t, err)
	assert.False(t, critic)
}

func TestSetVote_InvalidDelta(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	_, question := e.createTopic(t, asker)

	err := e.vote.SetVote(ctx, e.db, asker, question, 2)
	assert.ErrorIs(t, err, service.ErrInvalidDelta)
}

func TestAcceptAnswer_AcceptThenUnaccept(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	answerer := e.createUser(t, "answerer", 0)

	topic, _ := e.createTopic(t, asker)
	reply, err := e.post.CreateReply(ctx, e.db, topic, answerer, "Use sort.Slice.")
	require.NoError(t, err)

	require.NoError(t, e.topic.AcceptAnswer(ctx, e.db, topic, reply, asker))
	assert.Equal(t, reply.ID, topic.AnswerPostID)
	assert.Equal(t, answerer.ID, topic.AnswerAuthorID)
	assert.Equal(t, int64(50), e.reputation(t, answerer.ID))

	stored, err := e.posts.GetPost(ctx, e.db, reply.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsAnswer)

	// Revoking takes the reward back exactly.
	require.NoError(t, e.topic.AcceptAnswer(ctx, e.db, topic, nil, asker))
	assert.False(t, topic.IsAnswered())
	assert.Equal(t, int64(0), e.reputation(t, answerer.ID))

	stored, err = e.posts.GetPost(ctx, e.db, reply.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsAnswer)
}

func TestAcceptAnswer_SwitchRevokesPreviousReward(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	first := e.createUser(t, "first", 0)
	second := e.createUser(t, "second", 0)

	topic, _ := e.createTopic(t, asker)
	firstReply, err := e.post.CreateReply(ctx, e.db, topic, first, "Use a bubble sort.")
	require.NoError(t, err)
	secondReply, err := e.post.CreateReply(ctx, e.db, topic, second, "Use sort.Slice.")
	require.NoError(t, err)

	require.NoError(t, e.topic.AcceptAnswer(ctx, e.db, topic, firstReply, asker))
	require.NoError(t, e.topic.AcceptAnswer(ctx, e.db, topic, secondReply, asker))

	assert.Equal(t, int64(0), e.reputation(t, first.ID))
	assert.Equal(t, int64(50), e.reputation(t, second.ID))
	assert.Equal(t, secondReply.ID, topic.AnswerPostID)

	stored, err := e.posts.GetPost(ctx, e.db, firstReply.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsAnswer)

	// Re-accepting the current answer must not pay out again.
	require.NoError(t, e.topic.AcceptAnswer(ctx, e.db, topic, secondReply, asker))
	assert.Equal(t, int64(50), e.reputation(t, second.ID))
}

func TestAcceptAnswer_WrongTopic(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	answerer := e.createUser(t, "answerer", 0)

	topic, _ := e.createTopic(t, asker)
	other, _ := e.createTopic(t, asker)
	stray, err := e.post.CreateReply(ctx, e.db, other, answerer, "Wrong thread.")
	require.NoError(t, err)

	err = e.topic.AcceptAnswer(ctx, e.db, topic, stray, asker)
	assert.ErrorIs(t, err, service.ErrWrongTopic)
	assert.Equal(t, int64(0), e.reputation(t, answerer.ID))
}

func TestBadges_SingleAwardRecordedOnce(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	answerer := e.createUser(t, "answerer", 0)
	voter := e.createUser(t, "voter", 500)

	topic, _ := e.createTopic(t, asker)
	firstReply, err := e.post.CreateReply(ctx, e.db, topic, answerer, "One.")
	require.NoError(t, err)
	secondReply, err := e.post.CreateReply(ctx, e.db, topic, answerer, "Two.")
	require.NoError(t, err)

	// Both downvotes qualify for the critic badge; only the first one
	// may produce a row.
	require.NoError(t, e.vote.SetVote(ctx, e.db, voter, firstReply, -1))
	require.NoError(t, e.vote.SetVote(ctx, e.db, voter, secondReply, -1))

	assert.Equal(t, 1, e.countAwards(t, voter.ID, "critic"))

	stored, err := e.users.GetUser(ctx, e.db, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.BronzeBadges)
}

func TestBadges_RepeatablePayloadDedup(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	answerer := e.createUser(t, "answerer", 0)

	topic, _ := e.createTopic(t, asker)
	reply, err := e.post.CreateReply(ctx, e.db, topic, answerer, "Use sort.Slice.")
	require.NoError(t, err)

	reply.IsAnswer = true
	reply.Votes = 10
	event := &badges.Event{
		Kind:  enum.EventTypeVote,
		Actor: answerer,
		Topic: topic,
		Post:  reply,
		Delta: 1,
	}

	// The same qualifying post is awarded once no matter how often the
	// threshold is re-crossed.
	require.NoError(t, e.badge.TryAward(ctx, e.db, event))
	require.NoError(t, e.badge.TryAward(ctx, e.db, event))
	assert.Equal(t, 1, e.countAwards(t, answerer.ID, "nice-answer"))

	held, err := e.awards.HasAwardWithPayload(ctx, e.db, answerer.ID, "nice-answer",
		strconv.FormatInt(reply.ID, 10))
	require.NoError(t, err)
	assert.True(t, held)

	// A different qualifying post earns the badge again.
	other, err := e.post.CreateReply(ctx, e.db, topic, answerer, "Or slices.Sort.")
	require.NoError(t, err)
	other.IsAnswer = true
	other.Votes = 10

	require.NoError(t, e.badge.TryAward(ctx, e.db, &badges.Event{
		Kind:  enum.EventTypeVote,
		Actor: answerer,
		Topic: topic,
		Post:  other,
		Delta: 1,
	}))
	assert.Equal(t, 2, e.countAwards(t, answerer.ID, "nice-answer"))

	stored, err := e.users.GetUser(ctx, e.db, answerer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.BronzeBadges)
}

func TestDeleteTopic_CascadesAndRestores(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	answerer := e.createUser(t, "answerer", 0)

	topic, question := e.createTopic(t, asker)
	require.NoError(t, e.topic.BindTags(ctx, e.db, topic, []string{"go", "sorting"}))
	_, err := e.post.CreateReply(ctx, e.db, topic, answerer, "Use sort.Slice.")
	require.NoError(t, err)

	tags, err := e.tags.GetTopicTags(ctx, e.db, topic.ID)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	for _, tag := range tags {
		assert.Equal(t, int64(1), tag.Tagged)
	}

	require.NoError(t, e.topic.DeleteTopic(ctx, e.db, topic))

	stored, err := e.topics.GetTopic(ctx, e.db, topic.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted)

	deleted, err := e.posts.GetPost(ctx, e.db, question.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	tags, err = e.tags.GetTopicTags(ctx, e.db, topic.ID)
	require.NoError(t, err)
	for _, tag := range tags {
		assert.Equal(t, int64(0), tag.Tagged)
	}

	// Restoration reverses the cascade exactly.
	require.NoError(t, e.topic.RestoreTopic(ctx, e.db, topic))

	stored, err = e.topics.GetTopic(ctx, e.db, topic.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDeleted)

	tags, err = e.tags.GetTopicTags(ctx, e.db, topic.ID)
	require.NoError(t, err)
	for _, tag := range tags {
		assert.Equal(t, int64(1), tag.Tagged)
	}
}

func TestDeletePost_ReplyAdjustsReplyCount(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	answerer := e.createUser(t, "answerer", 0)

	topic, _ := e.createTopic(t, asker)
	reply, err := e.post.CreateReply(ctx, e.db, topic, answerer, "Use sort.Slice.")
	require.NoError(t, err)
	assert.Equal(t, int64(1), topic.ReplyCount)

	require.NoError(t, e.post.DeletePost(ctx, e.db, reply))

	stored, err := e.topics.GetTopic(ctx, e.db, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.ReplyCount)
	assert.False(t, stored.IsDeleted) // Deleting a reply never touches the topic

	// Double deletion must not decrement twice.
	require.NoError(t, e.post.DeletePost(ctx, e.db, reply))

	stored, err = e.topics.GetTopic(ctx, e.db, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.ReplyCount)

	require.NoError(t, e.post.RestorePost(ctx, e.db, reply))

	stored, err = e.topics.GetTopic(ctx, e.db, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ReplyCount)
}

func TestSyncCounts_RepairsDrift(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx := context.Background()

	asker := e.createUser(t, "asker", 0)
	voter := e.createUser(t, "voter", 100)

	topic, question := e.createTopic(t, asker)
	require.NoError(t, e.vote.SetVote(ctx, e.db, voter, question, 1))

	// Corrupt the denormalized columns behind the engine's back.
	question.Votes = 5
	require.NoError(t, e.posts.UpdateColumns(ctx, e.db, question, "votes"))
	topic.Votes = 9
	topic.ReplyCount = 4
	require.NoError(t, e.topics.UpdateColumns(ctx, e.db, topic, "votes", "reply_count"))

	require.NoError(t, e.topic.SyncCounts(ctx, e.db, topic))

	stored, err := e.topics.GetTopic(ctx, e.db, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Votes)
	assert.Equal(t, int64(0), stored.ReplyCount)

	repaired, err := e.posts.GetPost(ctx, e.db, question.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), repaired.Votes)
}
