package models

import "github.com/google/uuid"

// Operator is the authenticated caller of an admin route.
type Operator struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}
