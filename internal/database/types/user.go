package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/database/types/enum"
)

// User represents a forum member together with the denormalized counters
// maintained by the scoring engine. The badge level counters are recomputed
// from the full badge collection on every award rather than incremented, so
// they self-heal after badge removals.
type User struct {
	ID         int64     `bun:",pk,autoincrement" json:"id"`
	UUID       uuid.UUID `bun:",notnull,type:uuid" json:"uuid"`
	Username   string    `bun:",notnull,unique"    json:"username"`
	Email      string    `bun:",notnull"           json:"email"`
	Reputation int64     `bun:",notnull"           json:"reputation"`
	Upvotes    int64     `bun:",notnull"           json:"upvotes"`   // Votes cast by this user, not received
	Downvotes  int64     `bun:",notnull"           json:"downvotes"` // Votes cast by this user, not received
	IsAdmin    bool      `bun:",notnull"           json:"isAdmin"`
	IsActive   bool      `bun:",notnull"           json:"isActive"`
	IsBanned   bool      `bun:",notnull"           json:"isBanned"`
	LastLogin  time.Time `bun:",nullzero"          json:"lastLogin"`

	// Badge counters per level, recounted after every award.
	BronzeBadges   int64 `bun:",notnull" json:"bronzeBadges"`
	SilverBadges   int64 `bun:",notnull" json:"silverBadges"`
	GoldBadges     int64 `bun:",notnull" json:"goldBadges"`
	PlatinumBadges int64 `bun:",notnull" json:"platinumBadges"`

	// voteCache holds the vote status of this user per post ID for the
	// duration of a request. Lazily populated, never persisted.
	voteCache map[int64]int64 `bun:"-" json:"-"`
}

// CachedVote returns the cached vote delta for a post and whether the cache
// holds an entry for it.
func (u *User) CachedVote(postID int64) (int64, bool) {
	delta, ok := u.voteCache[postID]
	return delta, ok
}

// CacheVote records the vote delta for a post in the per-request cache.
func (u *User) CacheVote(postID, delta int64) {
	if u.voteCache == nil {
		u.voteCache = make(map[int64]int64)
	}
	u.voteCache[postID] = delta
}

// UserMessage is a one-line notification for a user. The engine creates
// these rows; delivery and display belong to the surrounding layers.
type UserMessage struct {
	ID        int64                `bun:",pk,autoincrement" json:"id"`
	UserID    int64                `bun:",notnull"          json:"userId"`
	Text      string               `bun:",notnull"          json:"text"`
	Severity  enum.MessageSeverity `bun:",notnull"          json:"severity"`
	CreatedAt time.Time            `bun:",notnull"          json:"createdAt"`
}

// UserActivity tracks how active a user is in a locale. The counter is only
// ever changed through the atomic counter primitive.
type UserActivity struct {
	ID            int64     `bun:",pk,autoincrement" json:"id"`
	UserID        int64     `bun:",notnull"          json:"userId"`
	Locale        string    `bun:",notnull"          json:"locale"`
	Counter       int64     `bun:",notnull"          json:"counter"`
	FirstActivity time.Time `bun:",notnull"          json:"firstActivity"`
	LastActivity  time.Time `bun:",notnull"          json:"lastActivity"`
}
