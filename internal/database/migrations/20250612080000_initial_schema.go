package migrations

import (
	"context"
	"fmt"

	"github.com/parleyhq/parley/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
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
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table %T: %w", model, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		// Down migration - drop all tables
		models := []any{
			(*types.UserBadge)(nil),
			(*types.TopicTag)(nil),
			(*types.Tag)(nil),
			(*types.Vote)(nil),
			(*types.Comment)(nil),
			(*types.PostRevision)(nil),
			(*types.Post)(nil),
			(*types.Topic)(nil),
			(*types.UserActivity)(nil),
			(*types.UserMessage)(nil),
			(*types.User)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Cascade().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table %T: %w", model, err)
			}
		}

		return nil
	})
}
