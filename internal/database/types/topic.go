package types

import (
	"time"
)

// Topic is a question thread: one question post, any number of replies and
// at most one accepted answer. Votes, reply count, deletion state and the
// answer columns are denormalized copies of post data and must be kept in
// sync by the engine whenever the underlying posts change.
type Topic struct {
	ID             int64     `bun:",pk,autoincrement" json:"id"`
	Locale         string    `bun:",notnull"          json:"locale"`
	Title          string    `bun:",notnull"          json:"title"`
	AuthorID       int64     `bun:",notnull"          json:"authorId"`
	QuestionPostID int64     `bun:",nullzero"         json:"questionPostId"`
	AnswerPostID   int64     `bun:",nullzero"         json:"answerPostId"`
	AnswerAuthorID int64     `bun:",nullzero"         json:"answerAuthorId"`
	AnswerDate     time.Time `bun:",nullzero"         json:"answerDate"`
	Votes          int64     `bun:",notnull"          json:"votes"`      // Mirror of the question post's votes
	ReplyCount     int64     `bun:",notnull"          json:"replyCount"` // Non-deleted replies only
	Hotness        float64   `bun:",notnull"          json:"hotness"`
	IsDeleted      bool      `bun:",notnull"          json:"isDeleted"` // Mirror of the question post's deletion state
	Date           time.Time `bun:",notnull"          json:"date"`
	LastChange     time.Time `bun:",notnull"          json:"lastChange"`
}

// IsAnswered reports whether an answer has been accepted.
func (t *Topic) IsAnswered() bool {
	return t.AnswerPostID != 0
}
