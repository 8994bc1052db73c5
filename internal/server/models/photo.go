package models

import "time"

// GuestPhoto is a submitted image. PhotoURL points at the blob stored under
// StorageKey; the record and the blob exist together or not at all.
// IsApproved gates visibility in the public gallery.
type GuestPhoto struct {
	ID         string    `json:"id"`
	GuestID    string    `json:"guest_id"`
	PhotoURL   string    `json:"photo_url"`
	StorageKey string    `json:"-"`
	Caption    *string   `json:"caption"`
	Location   *string   `json:"location"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}
