package domain

import (
	"strconv"
	"time"
)

// User is the signed-in customer as returned by the auth login call.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// IDString returns the user id for URL paths and log fields.
func (u User) IDString() string {
	return strconv.Itoa(u.ID)
}

// Registration is the body sent to the auth register call.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Credentials is the body of customer and admin login calls.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Claims is the unverified payload of a session token. It is for display only.
type Claims struct {
	Subject   string
	Role      string
	ExpiresAt Timestamp
}

// Expired reports whether the token carried an expiry that has passed at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt.Time)
}
