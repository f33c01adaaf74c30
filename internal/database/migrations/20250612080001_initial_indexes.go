package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			-- Topic listing indexes
			CREATE INDEX IF NOT EXISTS idx_topics_locale_hotness
			ON topics (locale, hotness DESC)
			WHERE is_deleted = false;

			CREATE INDEX IF NOT EXISTS idx_topics_locale_last_change
			ON topics (locale, last_change DESC)
			WHERE is_deleted = false;

			CREATE INDEX IF NOT EXISTS idx_topics_question_post
			ON topics (question_post_id);

			-- Post indexes
			CREATE INDEX IF NOT EXISTS idx_posts_topic
			ON posts (topic_id, created ASC);

			CREATE INDEX IF NOT EXISTS idx_posts_author
			ON posts (author_id, created DESC);

			-- Vote ledger recount index
			CREATE INDEX IF NOT EXISTS idx_votes_post
			ON votes (post_id);

			-- Revision history index
			CREATE INDEX IF NOT EXISTS idx_post_revisions_post
			ON post_revisions (post_id, date DESC);

			-- Comment index
			CREATE INDEX IF NOT EXISTS idx_comments_post
			ON comments (post_id, date ASC);

			-- Tag lookup indexes
			CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_locale_name
			ON tags (locale, name);

			CREATE INDEX IF NOT EXISTS idx_topic_tags_tag
			ON topic_tags (tag_id);

			-- Badge dedup indexes
			CREATE UNIQUE INDEX IF NOT EXISTS idx_user_badges_single
			ON user_badges (user_id, badge)
			WHERE payload IS NULL;

			CREATE UNIQUE INDEX IF NOT EXISTS idx_user_badges_payload
			ON user_badges (user_id, badge, payload)
			WHERE payload IS NOT NULL;

			-- User lookup indexes
			CREATE UNIQUE INDEX IF NOT EXISTS idx_users_uuid
			ON users (uuid);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username
			ON users (username);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_user_activities_user_locale
			ON user_activities (user_id, locale);

			CREATE INDEX IF NOT EXISTS idx_user_messages_user
			ON user_messages (user_id, created_at DESC);
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			DROP INDEX IF EXISTS idx_user_messages_user;
			DROP INDEX IF EXISTS idx_user_activities_user_locale;
			DROP INDEX IF EXISTS idx_users_username;
			DROP INDEX IF EXISTS idx_users_uuid;
			DROP INDEX IF EXISTS idx_user_badges_payload;
			DROP INDEX IF EXISTS idx_user_badges_single;
			DROP INDEX IF EXISTS idx_topic_tags_tag;
			DROP INDEX IF EXISTS idx_tags_locale_name;
			DROP INDEX IF EXISTS idx_comments_post;
			DROP INDEX IF EXISTS idx_post_revisions_post;
			DROP INDEX IF EXISTS idx_votes_post;
			DROP INDEX IF EXISTS idx_posts_author;
			DROP INDEX IF EXISTS idx_posts_topic;
			DROP INDEX IF EXISTS idx_topics_question_post;
			DROP INDEX IF EXISTS idx_topics_locale_last_change;
			DROP INDEX IF EXISTS idx_topics_locale_hotness;
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop indexes: %w", err)
		}

		return nil
	})
}
