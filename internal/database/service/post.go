package service

import (
	"context"
	"errors"
	"time"

	"github.com/parleyhq/parley/internal/badges"
	"github.com/parleyhq/parley/internal/database/models"
	"github.com/parleyhq/parley/internal/database/types"
	"github.com/parleyhq/parley/internal/database/types/enum"
	"github.com/parleyhq/parley/internal/markup"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ErrDeletedPost is returned when a mutation targets a soft-deleted post.
var ErrDeletedPost = errors.New("post is deleted")

// PostService handles reply creation, editing with revision history, soft
// deletion and restoration, and the counter cascades those imply.
type PostService struct {
	posts     *models.PostModel
	topics    *models.TopicModel
	tags      *models.TagModel
	users     *models.UserModel
	revisions *models.RevisionModel
	badges    *BadgeService
	ranking   Ranker
	renderer  markup.Renderer
	logger    *zap.Logger
}

// NewPost creates a new post service.
func NewPost(
	posts *models.PostModel,
	topics *models.TopicModel,
	tags *models.TagModel,
	users *models.UserModel,
	revisions *models.RevisionModel,
	badges *BadgeService,
	ranking Ranker,
	renderer markup.Renderer,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		posts:     posts,
		topics:    topics,
		tags:      tags,
		users:     users,
		revisions: revisions,
		badges:    badges,
		ranking:   ranking,
		renderer:  renderer,
		logger:    logger.Named("post_service"),
	}
}

// createPost inserts a post into its topic and bumps the author's
// activity. Question posts are created through the topic service.
func (s *PostService) createPost(
	ctx context.Context, db bun.IDB,
	topic *types.Topic, author *types.User,
	text string, at time.Time, isQuestion bool,
) (*types.Post, error) {
	post := &types.Post{
		TopicID:      topic.ID,
		AuthorID:     author.ID,
		Text:         text,
		RenderedText: s.renderer.Render(text),
		IsQuestion:   isQuestion,
		Created:      at,
		Updated:      at,
	}
	if err := s.posts.CreatePost(ctx, db, post); err != nil {
		return nil, err
	}

	topic.LastChange = at
	if err := s.topics.UpdateColumns(ctx, db, topic, "last_change"); err != nil {
		return nil, err
	}

	if err := s.users.TouchActivity(ctx, db, author, topic.Locale, 50); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateReply appends a reply to a topic and increments its reply count.
func (s *PostService) CreateReply(ctx context.Context, db bun.IDB, topic *types.Topic, author *types.User, text string) (*types.Post, error) {
	post, err := s.createPost(ctx, db, topic, author, text, time.Now(), false)
	if err != nil {
		return nil, err
	}

	if err := models.AtomicAdd(ctx, db, topic, "reply_count", 1, &topic.ReplyCount); err != nil {
		return nil, err
	}

	err = s.badges.TryAward(ctx, db, &badges.Event{
		Kind:  enum.EventTypeReply,
		Actor: author,
		Topic: topic,
		Post:  post,
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// EditPost replaces a post's text, archiving the prior text as a revision
// first. A nil editor means the author edited their own post; a zero time
// means now.
func (s *PostService) EditPost(ctx context.Context, db bun.IDB, post *types.Post, newText string, editor *types.User, at time.Time) error {
	var err error
	if editor == nil {
		if editor, err = s.users.GetUser(ctx, db, post.AuthorID); err != nil {
			return err
		}
	}
	if at.IsZero() {
		at = time.Now()
	}

	// Snapshot the current state before anything is overwritten. The
	// snapshot's editor is whoever produced the text being archived.
	snapshotEditor := post.EditorID
	if snapshotEditor == 0 {
		snapshotEditor = post.AuthorID
	}
	err = s.revisions.CreateRevision(ctx, db, &types.PostRevision{
		PostID:   post.ID,
		EditorID: snapshotEditor,
		Date:     post.Updated,
		Text:     post.Text,
	})
	if err != nil {
		return err
	}

	post.Text = newText
	post.RenderedText = s.renderer.Render(newText)
	post.EditorID = editor.ID
	post.Updated = at
	if err := s.posts.UpdateColumns(ctx, db, post, "text", "rendered_text", "editor_id", "updated"); err != nil {
		return err
	}

	if err := models.AtomicAdd(ctx, db, post, "edits", 1, &post.Edits); err != nil {
		return err
	}

	topic, err := s.topics.GetTopic(ctx, db, post.TopicID)
	if err != nil {
		return err
	}

	topic.LastChange = at
	columns := []string{"last_change"}
	if topic.QuestionPostID == post.ID {
		topic.Hotness = types.Hotness(topic.Votes, topic.Date)
		columns = append(columns, "hotness")
	}
	if err := s.topics.UpdateColumns(ctx, db, topic, columns...); err != nil {
		return err
	}

	if topic.QuestionPostID == post.ID && s.ranking != nil {
		if err := s.ranking.SetHotness(ctx, topic.ID, topic.Hotness); err != nil {
			s.logger.Warn("Failed to update hotness ranking",
				zap.Int64("topicID", topic.ID),
				zap.Error(err))
		}
	}

	if err := s.users.TouchActivity(ctx, db, editor, topic.Locale, 20); err != nil {
		return err
	}

	return s.badges.TryAward(ctx, db, &badges.Event{
		Kind:  enum.EventTypeEdit,
		Actor: editor,
		Topic: topic,
		Post:  post,
	})
}

// DeletePost soft-deletes a post. Deleting the question post marks the
// whole topic deleted and releases its tag counts; deleting a reply only
// decrements the reply count. Deleting an already-deleted post is a no-op.
func (s *PostService) DeletePost(ctx context.Context, db bun.IDB, post *types.Post) error {
	if post.IsDeleted {
		return nil
	}

	topic, err := s.topics.GetTopic(ctx, db, post.TopicID)
	if err != nil {
		return err
	}

	if topic.QuestionPostID == post.ID {
		topic.IsDeleted = true
		if err := s.topics.UpdateColumns(ctx, db, topic, "is_deleted"); err != nil {
			return err
		}

		tags, err := s.tags.GetTopicTags(ctx, db, topic.ID)
		if err != nil {
			return err
		}
		for _, tag := range tags {
			if err := models.AtomicAdd(ctx, db, tag, "tagged", -1, &tag.Tagged); err != nil {
				return err
			}
		}

		if s.ranking != nil {
			if err := s.ranking.Remove(ctx, topic.ID); err != nil {
				s.logger.Warn("Failed to remove topic from ranking",
					zap.Int64("topicID", topic.ID),
					zap.Error(err))
			}
		}
	} else {
		if err := models.AtomicAdd(ctx, db, topic, "reply_count", -1, &topic.ReplyCount); err != nil {
			return err
		}
	}

	post.IsDeleted = true
	return s.posts.UpdateColumns(ctx, db, post, "is_deleted")
}

// RestorePost reverses a soft deletion exactly. Restoring a post that is
// not deleted is a no-op.
func (s *PostService) RestorePost(ctx context.Context, db bun.IDB, post *types.Post) error {
	if !post.IsDeleted {
		return nil
	}

	topic, err := s.topics.GetTopic(ctx, db, post.TopicID)
	if err != nil {
		return err
	}

	if topic.QuestionPostID == post.ID {
		topic.IsDeleted = false
		if err := s.topics.UpdateColumns(ctx, db, topic, "is_deleted"); err != nil {
			return err
		}

		tags, err := s.tags.GetTopicTags(ctx, db, topic.ID)
		if err != nil {
			return err
		}
		for _, tag := range tags {
			if err := models.AtomicAdd(ctx, db, tag, "tagged", 1, &tag.Tagged); err != nil {
				return err
			}
		}

		if s.ranking != nil {
			if err := s.ranking.SetHotness(ctx, topic.ID, topic.Hotness); err != nil {
				s.logger.Warn("Failed to restore topic ranking",
					zap.Int64("topicID", topic.ID),
					zap.Error(err))
			}
		}
	} else {
		if err := models.AtomicAdd(ctx, db, topic, "reply_count", 1, &topic.ReplyCount); err != nil {
			return err
		}
	}

	post.IsDeleted = false
	return s.posts.UpdateColumns(ctx, db, post, "is_deleted")
}

// GetRevisions returns a post's attic, oldest snapshot first.
func (s *PostService) GetRevisions(ctx context.Context, db bun.IDB, postID int64) ([]*types.PostRevision, error) {
	return s.revisions.GetRevisions(ctx, db, postID)
}

// RestoreRevision makes an archived snapshot the post's current text
// again. The restore itself is an edit, so the replaced text enters the
// attic and remains reachable.
func (s *PostService) RestoreRevision(ctx context.Context, db bun.IDB, post *types.Post, revisionID int64) error {
	revision, err := s.revisions.GetRevision(ctx, db, post.ID, revisionID)
	if err != nil {
		return err
	}

	editor, err := s.users.GetUser(ctx, db, revision.EditorID)
	if err != nil {
		return err
	}
	return s.EditPost(ctx, db, post, revision.Text, editor, revision.Date)
}

// AddComment attaches a comment to a post and bumps its comment counter.
func (s *PostService) AddComment(ctx context.Context, db bun.IDB, post *types.Post, author *types.User, text string) (*types.Comment, error) {
	if post.IsDeleted {
		return nil, ErrDeletedPost
	}

	comment := &types.Comment{
		PostID:       post.ID,
		AuthorID:     author.ID,
		Text:         text,
		RenderedText: s.renderer.Render(text),
		Date:         time.Now(),
	}
	if err := s.posts.CreateComment(ctx, db, post, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment and keeps the post's counter in step.
func (s *PostService) DeleteComment(ctx context.Context, db bun.IDB, post *types.Post, comment *types.Comment) error {
	return s.posts.DeleteComment(ctx, db, post, comment)
}
