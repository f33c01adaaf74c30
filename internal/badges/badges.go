// Package badges defines the static badge catalogue: immutable badge
// records with optional per-event callbacks, collected into a read-only
// registry that is built once at process start.
package badges

import (
	"github.com/parleyhq/parley/internal/database/types"
	"github.com/parleyhq/parley/internal/database/types/enum"
)

// Event carries the actors and objects of a qualifying domain event to the
// badge callbacks.
type Event struct {
	Kind  enum.EventType
	Actor *types.User  // User who triggered the event
	Topic *types.Topic // Topic involved, if any
	Post  *types.Post  // Post involved; nil when an answer is revoked
	Delta int64        // Vote events only
}

// Award is a callback's positive answer: who qualifies, and for repeatable
// badges the payload that disambiguates this qualification from earlier
// ones.
type Award struct {
	UserID  int64
	Payload string
}

// Handler evaluates one badge rule against an event. A nil result means
// the event does not qualify.
type Handler func(e *Event) *Award

// Badge is one immutable catalogue entry. Handlers are optional; a badge
// only reacts to the event kinds it declares a handler for.
type Badge struct {
	Level         enum.BadgeLevel
	Identifier    string
	Name          string
	Description   string
	SingleAwarded bool

	OnVote     Handler
	OnAccept   Handler
	OnReply    Handler
	OnNewTopic Handler
	OnEdit     Handler
}

// HandlerFor returns the callback registered for the event kind, or nil.
func (b *Badge) HandlerFor(kind enum.EventType) Handler {
	switch kind {
	case enum.EventTypeVote:
		return b.OnVote
	case enum.EventTypeAccept:
		return b.OnAccept
	case enum.EventTypeReply:
		return b.OnReply
	case enum.EventTypeNewTopic:
		return b.OnNewTopic
	case enum.EventTypeEdit:
		return b.OnEdit
	default:
		return nil
	}
}

// Registry is the read-only badge catalogue handed to the award engine.
// It is never mutated after construction.
type Registry struct {
	list []*Badge
	byID map[string]*Badge
}

// NewRegistry builds a registry from the given badges.
func NewRegistry(badges ...*Badge) *Registry {
	byID := make(map[string]*Badge, len(badges))
	for _, badge := range badges {
		byID[badge.Identifier] = badge
	}
	return &Registry{list: badges, byID: byID}
}

// All returns the catalogue in definition order. Callers must not modify
// the returned slice.
func (r *Registry) All() []*Badge {
	return r.list
}

// Get looks a badge up by identifier.
func (r *Registry) Get(identifier string) *Badge {
	return r.byID[identifier]
}
