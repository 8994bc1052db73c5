// Package models defines server-side data models persisted in the database.
package models

import "time"

// Guest is an invited person. Guests are created by the admin import and are
// never changed by the gallery itself.
type Guest struct {
	ID             string    `json:"id" yaml:"-"`
	Email          string    `json:"email" yaml:"email"`
	FirstName      string    `json:"first_name" yaml:"first_name"`
	LastName       string    `json:"last_name" yaml:"last_name"`
	HouseholdGroup *string   `json:"household_group,omitempty" yaml:"household_group,omitempty"`
	PlusOneAllowed bool      `json:"plus_one_allowed" yaml:"plus_one_allowed"`
	CreatedAt      time.Time `json:"created_at" yaml:"-"`
}

// DisplayName is the name shown next to a guest's photos.
func (g *Guest) DisplayName() string {
	switch {
	case g.FirstName != "" && g.LastName != "":
		return g.FirstName + " " + g.LastName
	case g.FirstName != "":
		return g.FirstName
	default:
		return g.LastName
	}
}
