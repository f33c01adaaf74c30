package types

// Vote is one ledger row: a single user's opinion on a single post.
// Delta is +1 or -1; a retracted vote is deleted, never stored as zero.
type Vote struct {
	UserID int64 `bun:",pk"      json:"userId"`
	PostID int64 `bun:",pk"      json:"postId"`
	Delta  int64 `bun:",notnull" json:"delta"`
}
