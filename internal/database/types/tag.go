package types

// Tag labels topics within a locale. Tagged is a denormalized count of the
// non-deleted topics currently bound to the tag.
type Tag struct {
	ID     int64  `bun:",pk,autoincrement" json:"id"`
	Locale string `bun:",notnull"          json:"locale"`
	Name   string `bun:",notnull"          json:"name"`
	Tagged int64  `bun:",notnull"          json:"tagged"`
}

// TopicTag binds a tag to a topic.
type TopicTag struct {
	TopicID int64 `bun:",pk" json:"topicId"`
	TagID   int64 `bun:",pk" json:"tagId"`
}
