package profile

import (
	"time"

	"github.com/gofrs/uuid"
)

// Profile is the per-identity record backing the access gate and the
// checkout form prefill. The admin flag is only ever set out of band,
// never through the API.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Pin       string    `json:"pin"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactUpdate carries the fields a user may change on their own profile.
type ContactUpdate struct {
	FullName string
	Phone    string
	Address  string
	City     string
	Pin      string
}
