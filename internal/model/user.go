// Package model defines the data structures used throughout the application.
// Structs here carry no behaviour beyond small helpers; validation lives in the
// service layer and persistence in the repository layer.
package model

import "time"

// User represents a registered account.
//
// PasswordHash carries the bcrypt hash and is tagged `json:"-"` so the hash can
// never leak through a response, no matter which handler serializes the struct.
//
// GitHubID is nil for accounts created through email registration. Accounts
// that signed in through GitHub get the numeric GitHub ID (UNIQUE in the DB).
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	GitHubID     *int64    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
