package model

import "time"

// Admin represents an inn staff account as stored in the `admins` table.
// There is a single role; every admin may use every registry operation.
// Accounts are provisioned by the seed command and only read at login.
//
// Fields:
//  ID           – UUID of the account.
//  Login        – unique login name.
//  PasswordHash – bcrypt hash of the password, never serialized.
//  CreatedAt    – timestamp of creation.
type Admin struct {
	ID           string    `json:"id"`         // admins.id
	Login        string    `json:"login"`      // admins.login
	PasswordHash string    `json:"-"`          // admins.password_hash
	CreatedAt    time.Time `json:"created_at"` // admins.created_at
}
