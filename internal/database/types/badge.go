package types

import (
	"time"
)

// UserBadge records a single badge award. Rows are created, never mutated
// or destroyed. For repeatable badges the payload disambiguates repeat
// qualification, e.g. the ID of the post that earned the badge; for
// single-award badges it stays empty.
type UserBadge struct {
	ID      int64     `bun:",pk,autoincrement" json:"id"`
	UserID  int64     `bun:",notnull"          json:"userId"`
	Badge   string    `bun:",notnull"          json:"badge"` // Catalogue identifier
	Awarded time.Time `bun:",notnull"          json:"awarded"`
	Payload string    `bun:",nullzero"         json:"payload"`
}
