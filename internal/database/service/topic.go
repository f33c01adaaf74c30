package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/parleyhq/parley/internal/badges"
	"github.com/parleyhq/parley/internal/database/models"
	"github.com/parleyhq/parley/internal/database/types"
	"github.com/parleyhq/parley/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// ErrWrongTopic is returned when a post from another topic is accepted as
// an answer.
var ErrWrongTopic = errors.New("post does not belong to the topic")

// TopicService handles topic creation, answer acceptance, tag binding and
// the denormalized counters hanging off a topic.
type TopicService struct {
	topics  *models.TopicModel
	posts   *models.PostModel
	tags    *models.TagModel
	users   *models.UserModel
	votes   *models.VoteModel
	post    *PostService
	badges  *BadgeService
	ranking Ranker
	logger  *zap.Logger
}

// NewTopic creates a new topic service.
func NewTopic(
	topics *models.TopicModel,
	posts *models.PostModel,
	tags *models.TagModel,
	users *models.UserModel,
	votes *models.VoteModel,
	post *PostService,
	badges *BadgeService,
	ranking Ranker,
	logger *zap.Logger,
) *TopicService {
	return &TopicService{
		topics:  topics,
		posts:   posts,
		tags:    tags,
		users:   users,
		votes:   votes,
		post:    post,
		badges:  badges,
		ranking: ranking,
		logger:  logger.Named("topic_service"),
	}
}

// CreateTopic opens a new topic with its question post.
func (s *TopicService) CreateTopic(ctx context.Context, db bun.IDB, locale, title, text string, author *types.User) (*types.Topic, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}

	now := time.Now()
	topic := &types.Topic{
		Locale:     tag.String(),
		Title:      title,
		AuthorID:   author.ID,
		Hotness:    types.Hotness(0, now),
		Date:       now,
		LastChange: now,
	}
	if err := s.topics.CreateTopic(ctx, db, topic); err != nil {
		return nil, err
	}

	question, err := s.post.createPost(ctx, db, topic, author, text, now, true)
	if err != nil {
		return nil, err
	}

	topic.QuestionPostID = question.ID
	if err := s.topics.UpdateColumns(ctx, db, topic, "question_post_id"); err != nil {
		return nil, err
	}

	if s.ranking != nil {
		if err := s.ranking.SetHotness(ctx, topic.ID, topic.Hotness); err != nil {
			s.logger.Warn("Failed to rank new topic",
				zap.Int64("topicID", topic.ID),
				zap.Error(err))
		}
	}

	err = s.badges.TryAward(ctx, db, &badges.Event{
		Kind:  enum.EventTypeNewTopic,
		Actor: author,
		Topic: topic,
		Post:  question,
	})
	if err != nil {
		return nil, err
	}
	return topic, nil
}

// AcceptAnswer marks a reply as the topic's answer, paying out the accept
// reward and taking back the previous answerer's reward if the answer
// changes. A nil post revokes the current answer. Re-accepting the current
// answer is a no-op.
func (s *TopicService) AcceptAnswer(ctx context.Context, db bun.IDB, topic *types.Topic, post *types.Post, actor *types.User) error {
	if post != nil && post.TopicID != topic.ID {
		return ErrWrongTopic
	}
	if post == nil && topic.AnswerPostID == 0 {
		return nil
	}
	if post != nil && topic.AnswerPostID == post.ID {
		return nil
	}

	if topic.AnswerPostID != 0 {
		previous, err := s.posts.GetPost(ctx, db, topic.AnswerPostID)
		if err != nil {
			return err
		}

		previous.IsAnswer = false
		if err := s.posts.UpdateColumns(ctx, db, previous, "is_answer"); err != nil {
			return err
		}

		previousAuthor, err := s.answerAuthor(ctx, db, previous.AuthorID, actor)
		if err != nil {
			return err
		}
		if err := models.AtomicAdd(ctx, db, previousAuthor, "reputation", -LoseOnLostAnswer, &previousAuthor.Reputation); err != nil {
			return err
		}
	}

	if post != nil {
		post.IsAnswer = true
		if err := s.posts.UpdateColumns(ctx, db, post, "is_answer"); err != nil {
			return err
		}

		author, err := s.answerAuthor(ctx, db, post.AuthorID, actor)
		if err != nil {
			return err
		}
		if err := models.AtomicAdd(ctx, db, author, "reputation", GainOnAcceptedAnswer, &author.Reputation); err != nil {
			return err
		}

		topic.AnswerPostID = post.ID
		topic.AnswerAuthorID = post.AuthorID
		topic.AnswerDate = post.Created
	} else {
		topic.AnswerPostID = 0
		topic.AnswerAuthorID = 0
		topic.AnswerDate = time.Time{}
	}
	err := s.topics.UpdateColumns(ctx, db, topic, "answer_post_id", "answer_author_id", "answer_date")
	if err != nil {
		return err
	}

	if actor == nil {
		if post != nil {
			if actor, err = s.users.GetUser(ctx, db, post.AuthorID); err != nil {
				return err
			}
		} else if actor, err = s.users.GetUser(ctx, db, topic.AuthorID); err != nil {
			return err
		}
	}

	return s.badges.TryAward(ctx, db, &badges.Event{
		Kind:  enum.EventTypeAccept,
		Actor: actor,
		Topic: topic,
		Post:  post,
	})
}

// answerAuthor resolves the author of an answer post, reusing the
// in-request actor when the IDs match so counter mirrors stay consistent.
func (s *TopicService) answerAuthor(ctx context.Context, db bun.IDB, authorID int64, actor *types.User) (*types.User, error) {
	if actor != nil && actor.ID == authorID {
		return actor, nil
	}
	return s.users.GetUser(ctx, db, authorID)
}

// BindTags rebinds the topic to the desired tag names, touching only the
// symmetric difference between the current and desired sets.
func (s *TopicService) BindTags(ctx context.Context, db bun.IDB, topic *types.Topic, names []string) error {
	current, err := s.tags.GetTopicTags(ctx, db, topic.ID)
	if err != nil {
		return err
	}

	currentNames := make([]string, len(current))
	currentByName := make(map[string]*types.Tag, len(current))
	for i, tag := range current {
		currentNames[i] = tag.Name
		currentByName[tag.Name] = tag
	}

	added, removed := tagDiff(currentNames, names)

	for _, name := range removed {
		if err := s.tags.UnbindTag(ctx, db, topic.ID, currentByName[name]); err != nil {
			return err
		}
	}

	for _, name := range added {
		tag, err := s.tags.GetOrCreateTag(ctx, db, topic.Locale, name)
		if err != nil {
			return err
		}
		if err := s.tags.BindTag(ctx, db, topic.ID, tag); err != nil {
			return err
		}
	}

	return nil
}

// tagDiff computes which tag names have to be bound and which released to
// move from current to desired. Unaffected tags are never touched.
func tagDiff(current, desired []string) (added, removed []string) {
	currentSet := make(map[string]struct{}, len(current))
	for _, name := range current {
		currentSet[name] = struct{}{}
	}
	desiredSet := make(map[string]struct{}, len(desired))
	for _, name := range desired {
		desiredSet[name] = struct{}{}
	}

	for name := range desiredSet {
		if _, ok := currentSet[name]; !ok {
			added = append(added, name)
		}
	}
	for name := range currentSet {
		if _, ok := desiredSet[name]; !ok {
			removed = append(removed, name)
		}
	}

	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// DeleteTopic soft-deletes a topic by deleting its question post; the
// cascade marks the topic and releases its tag counts.
func (s *TopicService) DeleteTopic(ctx context.Context, db bun.IDB, topic *types.Topic) error {
	question, err := s.posts.GetPost(ctx, db, topic.QuestionPostID)
	if err != nil {
		return err
	}
	return s.post.DeletePost(ctx, db, question)
}

// RestoreTopic restores a soft-deleted topic through its question post.
func (s *TopicService) RestoreTopic(ctx context.Context, db bun.IDB, topic *types.Topic) error {
	question, err := s.posts.GetPost(ctx, db, topic.QuestionPostID)
	if err != nil {
		return err
	}
	return s.post.RestorePost(ctx, db, question)
}

// SyncCounts resynchronizes a topic's denormalized columns from ground
// truth: the vote mirror from the question post, whose own total is
// recomputed from the ledger, and the reply count from the non-deleted
// replies.
func (s *TopicService) SyncCounts(ctx context.Context, db bun.IDB, topic *types.Topic) error {
	question, err := s.posts.GetPost(ctx, db, topic.QuestionPostID)
	if err != nil {
		return err
	}

	votes, err := s.votes.SumDeltas(ctx, db, question.ID)
	if err != nil {
		return err
	}
	if votes != question.Votes {
		question.Votes = votes
		if err := s.posts.UpdateColumns(ctx, db, question, "votes"); err != nil {
			return err
		}
	}

	replies, err := s.posts.CountReplies(ctx, db, topic.ID)
	if err != nil {
		return err
	}

	topic.Votes = question.Votes
	topic.ReplyCount = replies
	topic.Hotness = types.Hotness(topic.Votes, topic.Date)
	if err := s.topics.UpdateColumns(ctx, db, topic, "votes", "reply_count", "hotness"); err != nil {
		return err
	}

	if s.ranking != nil && !topic.IsDeleted {
		if err := s.ranking.SetHotness(ctx, topic.ID, topic.Hotness); err != nil {
			s.logger.Warn("Failed to update hotness ranking",
				zap.Int64("topicID", topic.ID),
				zap.Error(err))
		}
	}
	return nil
}
