package domain

import "time"

// AuthPayload is returned by login and registration.
type AuthPayload struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}
