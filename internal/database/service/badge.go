package service

import (
	"context"
	"fmt"
	"time"

	"github.com/parleyhq/parley/internal/badges"
	"github.com/parleyhq/parley/internal/database/models"
	"github.com/parleyhq/parley/internal/database/types"
	"github.com/parleyhq/parley/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// BadgeService is the award engine: it evaluates every catalogued badge
// against a domain event and records qualifying awards at most once per
// (user, badge) for single-award badges, or once per (user, badge,
// payload) for repeatable ones.
type BadgeService struct {
	registry *badges.Registry
	model    *models.BadgeModel
	users    *models.UserModel
	messages *models.MessageModel
	logger   *zap.Logger
}

// NewBadge creates a new badge service around the read-only catalogue.
func NewBadge(
	registry *badges.Registry,
	model *models.BadgeModel,
	users *models.UserModel,
	messages *models.MessageModel,
	logger *zap.Logger,
) *BadgeService {
	return &BadgeService{
		registry: registry,
		model:    model,
		users:    users,
		messages: messages,
		logger:   logger.Named("badge_service"),
	}
}

// TryAward runs every badge callback registered for the event's kind and
// records the qualifying awards.
func (s *BadgeService) TryAward(ctx context.Context, db bun.IDB, event *badges.Event) error {
	for _, badge := range s.registry.All() {
		handler := badge.HandlerFor(event.Kind)
		if handler == nil {
			continue
		}

		award := handler(event)
		if award == nil {
			continue
		}

		if err := s.record(ctx, db, event, badge, award); err != nil {
			return fmt.Errorf("failed to award badge %q: %w", badge.Identifier, err)
		}
	}
	return nil
}

// record stores one award unless the recipient already earned it.
func (s *BadgeService) record(ctx context.Context, db bun.IDB, event *badges.Event, badge *badges.Badge, award *badges.Award) error {
	if badge.SingleAwarded {
		held, err := s.model.HasAward(ctx, db, award.UserID, badge.Identifier)
		if err != nil || held {
			return err
		}
	} else {
		held, err := s.model.HasAwardWithPayload(ctx, db, award.UserID, badge.Identifier, award.Payload)
		if err != nil || held {
			return err
		}
	}

	err := s.model.CreateAward(ctx, db, &types.UserBadge{
		UserID:  award.UserID,
		Badge:   badge.Identifier,
		Awarded: time.Now(),
		Payload: award.Payload,
	})
	if err != nil {
		return err
	}

	// The event actor is reused when they are the recipient, so counter
	// mirrors stay on the request's entity.
	recipient := event.Actor
	if recipient == nil || recipient.ID != award.UserID {
		if recipient, err = s.users.GetUser(ctx, db, award.UserID); err != nil {
			return err
		}
	}

	if err := s.recountLevels(ctx, db, recipient); err != nil {
		return err
	}

	s.logger.Debug("Awarded badge",
		zap.String("badge", badge.Identifier),
		zap.Int64("userID", award.UserID))

	// Inactive and banned users do not get notification messages.
	if !recipient.IsActive || recipient.IsBanned {
		return nil
	}
	return s.messages.CreateMessage(ctx, db, recipient.ID,
		fmt.Sprintf("You earned the %q badge", badge.Name),
		enum.MessageSeverityInfo)
}

// recountLevels recomputes the user's per-level badge counters from the
// full badge collection. Recounting instead of incrementing makes the
// counters self-correcting after badge removals or direct data repair.
func (s *BadgeService) recountLevels(ctx context.Context, db bun.IDB, user *types.User) error {
	identifiers, err := s.model.GetAwardedIdentifiers(ctx, db, user.ID)
	if err != nil {
		return err
	}

	bronze, silver, gold, platinum := CountLevels(s.registry, identifiers)
	return s.model.UpdateLevelCounters(ctx, db, user, bronze, silver, gold, platinum)
}

// CountLevels tallies badge level counts for a list of awarded
// identifiers. Identifiers missing from the catalogue are skipped, so the
// counters heal themselves if a badge is ever retired.
func CountLevels(registry *badges.Registry, identifiers []string) (bronze, silver, gold, platinum int64) {
	for _, identifier := range identifiers {
		badge := registry.Get(identifier)
		if badge == nil {
			continue
		}
		switch badge.Level {
		case enum.BadgeLevelBronze:
			bronze++
		case enum.BadgeLevelSilver:
			silver++
		case enum.BadgeLevelGold:
			gold++
		case enum.BadgeLevelPlatinum:
			platinum++
		}
	}
	return bronze, silver, gold, platinum
}
