package types

import (
	"time"
)

// Post is a single question or reply inside a topic. Exactly one post per
// topic has IsQuestion set; at most one reply may have IsAnswer set.
type Post struct {
	ID           int64     `bun:",pk,autoincrement" json:"id"`
	TopicID      int64     `bun:",notnull"          json:"topicId"`
	AuthorID     int64     `bun:",notnull"          json:"authorId"`
	EditorID     int64     `bun:",nullzero"         json:"editorId"` // Last editor, zero if never edited
	Text         string    `bun:",notnull"          json:"text"`
	RenderedText string    `bun:",notnull"          json:"renderedText"`
	IsQuestion   bool      `bun:",notnull"          json:"isQuestion"`
	IsAnswer     bool      `bun:",notnull"          json:"isAnswer"`
	IsDeleted    bool      `bun:",notnull"          json:"isDeleted"`
	Votes        int64     `bun:",notnull"          json:"votes"` // Sum of stored vote deltas for this post
	Edits        int64     `bun:",notnull"          json:"edits"`
	CommentCount int64     `bun:",notnull"          json:"commentCount"`
	Created      time.Time `bun:",notnull"          json:"created"`
	Updated      time.Time `bun:",notnull"          json:"updated"`
}

// WasEdited reports whether the post text was changed after creation.
func (p *Post) WasEdited() bool {
	return p.EditorID != 0
}

// PostRevision is an immutable snapshot of a post's prior text, captured
// just before an edit is applied. The current state of the post is not
// itself a revision.
type PostRevision struct {
	ID       int64     `bun:",pk,autoincrement" json:"id"`
	PostID   int64     `bun:",notnull"          json:"postId"`
	EditorID int64     `bun:",notnull"          json:"editorId"`
	Date     time.Time `bun:",notnull"          json:"date"`
	Text     string    `bun:",notnull"          json:"text"`
}

// Comment is a short remark attached to a post. Comments do not take part
// in voting or reputation; the post's comment_count mirrors how many
// comments it currently has.
type Comment struct {
	ID           int64     `bun:",pk,autoincrement" json:"id"`
	PostID       int64     `bun:",notnull"          json:"postId"`
	AuthorID     int64     `bun:",notnull"          json:"authorId"`
	Text         string    `bun:",notnull"          json:"text"`
	RenderedText string    `bun:",notnull"          json:"renderedText"`
	Date         time.Time `bun:",notnull"          json:"date"`
}
