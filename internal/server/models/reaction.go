package models

import "time"

// Reaction is one of the fixed gallery reactions.
type Reaction string

const (
	ReactionLove  Reaction = "love"
	ReactionLaugh Reaction = "laugh"
	ReactionWow   Reaction = "wow"
)

// Reactions lists every supported reaction in display order.
var Reactions = []Reaction{ReactionLove, ReactionLaugh, ReactionWow}

// Valid reports whether r is one of Reactions.
func (r Reaction) Valid() bool {
	for _, known := range Reactions {
		if r == known {
			return true
		}
	}
	return false
}

// GalleryReaction records a guest's reaction to an approved photo. A guest
// holds at most one reaction per photo.
type GalleryReaction struct {
	ID        string    `json:"id"`
	GuestID   string    `json:"guest_id"`
	PhotoID   string    `json:"photo_id"`
	Reaction  Reaction  `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}
