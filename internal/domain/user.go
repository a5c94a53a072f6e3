package domain

import "github.com/google/uuid"

// User is the authenticated actor. Identity itself lives with an external
// provider; this core only needs the id for trip ownership checks.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
