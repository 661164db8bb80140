package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is owned by the identity subsystem; the chat core only checks existence.
type User struct {
	Id        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
