// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account. Users are immutable after creation
// except for deletion, which cascades to their posts and votes.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	Posts     []Post    `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
}
