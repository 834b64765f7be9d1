package models

import (
	"strings"
	"time"
)

type User struct {
	ID                string
	Email             string
	PasswordHash      string
	IsVerified        bool
	VerificationToken *string
	FirstName         string
	LastName          string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PublicUser is the externally visible projection of a User. It never
// carries the password hash or the pending verification token.
type PublicUser struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	FullName   string    `json:"fullName"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FullName joins first and last name, skipping empty parts.
func FullName(u *User) string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// Public projects u into its public form.
func Public(u *User) PublicUser {
	return PublicUser{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   FullName(u),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	PasswordHash *string
	IsVerified   *bool
	// ClearVerificationToken resets VerificationToken to NULL.
	ClearVerificationToken bool
	VerificationToken      *string
	FirstName              *string
	LastName               *string
}

// Apply copies the set fields of up onto u.
func (up UserUpdate) Apply(u *User) {
	if up.PasswordHash != nil {
		u.PasswordHash = *up.PasswordHash
	}
	if up.IsVerified != nil {
		u.IsVerified = *up.IsVerified
	}
	if up.ClearVerificationToken {
		u.VerificationToken = nil
	} else if up.VerificationToken != nil {
		v := *up.VerificationToken
		u.VerificationToken = &v
	}
	if up.FirstName != nil {
		u.FirstName = *up.FirstName
	}
	if up.LastName != nil {
		u.LastName = *up.LastName
	}
}
