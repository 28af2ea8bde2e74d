// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;size:64" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner is the public projection of a User joined into post listings.
type Owner struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}
