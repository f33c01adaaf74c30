package database

import (
	"github.com/parleyhq/parley/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	user     *models.UserModel
	topic    *models.TopicModel
	post     *models.PostModel
	vote     *models.VoteModel
	badge    *models.BadgeModel
	revision *models.RevisionModel
	tag      *models.TagModel
	message  *models.MessageModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		user:     models.NewUser(db, logger),
		topic:    models.NewTopic(db, logger),
		post:     models.NewPost(db, logger),
		vote:     models.NewVote(db, logger),
		badge:    models.NewBadge(db, logger),
		revision: models.NewRevision(db, logger),
		tag:      models.NewTag(db, logger),
		message:  models.NewMessage(db, logger),
	}
}

// User returns the user model repository.
func (r *Repository) User() *models.UserModel {
	return r.user
}

// Topic returns the topic model repository.
func (r *Repository) Topic() *models.TopicModel {
	return r.topic
}

// Post returns the post model repository.
func (r *Repository) Post() *models.PostModel {
	return r.post
}

// Vote returns the vote ledger repository.
func (r *Repository) Vote() *models.VoteModel {
	return r.vote
}

// Badge returns the badge award repository.
func (r *Repository) Badge() *models.BadgeModel {
	return r.badge
}

// Revision returns the post revision repository.
func (r *Repository) Revision() *models.RevisionModel {
	return r.revision
}

// Tag returns the tag model repository.
func (r *Repository) Tag() *models.TagModel {
	return r.tag
}

// Message returns the user message repository.
func (r *Repository) Message() *models.MessageModel {
	return r.message
}
