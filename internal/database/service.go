package database

import (
	"github.com/parleyhq/parley/internal/badges"
	"github.com/parleyhq/parley/internal/database/service"
	"github.com/parleyhq/parley/internal/markup"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	vote  *service.VoteService
	topic *service.TopicService
	post  *service.PostService
	badge *service.BadgeService
}

// NewService creates a new service instance with all services. The ranking
// parameter may be nil when no leaderboard is configured.
func NewService(repository *Repository, ranking service.Ranker, logger *zap.Logger) *Service {
	registry := badges.Default()
	renderer := markup.Plain{}

	badgeService := service.NewBadge(
		registry,
		repository.Badge(),
		repository.User(),
		repository.Message(),
		logger,
	)
	postService := service.NewPost(
		repository.Post(),
		repository.Topic(),
		repository.Tag(),
		repository.User(),
		repository.Revision(),
		badgeService,
		ranking,
		renderer,
		logger,
	)

	return &Service{
		vote: service.NewVote(
			repository.Vote(),
			repository.Topic(),
			repository.User(),
			badgeService,
			ranking,
			logger,
		),
		topic: service.NewTopic(
			repository.Topic(),
			repository.Post(),
			repository.Tag(),
			repository.User(),
			repository.Vote(),
			postService,
			badgeService,
			ranking,
			logger,
		),
		post:  postService,
		badge: badgeService,
	}
}

// Vote returns the vote service.
func (s *Service) Vote() *service.VoteService {
	return s.vote
}

// Topic returns the topic service.
func (s *Service) Topic() *service.TopicService {
	return s.topic
}

// Post returns the post service.
func (s *Service) Post() *service.PostService {
	return s.post
}

// Badge returns the badge award service.
func (s *Service) Badge() *service.BadgeService {
	return s.badge
}
