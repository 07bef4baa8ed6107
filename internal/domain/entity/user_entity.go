package entity

import (
	"time"
)

// User is the aggregate root owning places.
// Places mirrors Place.Creator and is only mutated inside a transaction
// together with the place it references.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Image     string
	Places    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnsPlace reports whether placeID is in the user's back-references.
func (u *User) OwnsPlace(placeID string) bool {
	for _, id := range u.Places {
		if id == placeID {
			return true
		}
	}
	return false
}
