package models

import (
	"time"
)

// Post represents a user's post decorated with vote aggregates.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"type:text;not null" json:"content"`
	OwnerID uint   `gorm:"not null;index" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID" json:"-"`
	// LikeCount is not persisted; computed at query time from vote rows
	LikeCount int64 `gorm:"->;-:migration" json:"like_count"`
	// DislikeCount is not persisted; computed at query time from vote rows
	DislikeCount int64 `gorm:"->;-:migration" json:"dislike_count"`
	// Voted is the requesting user's own vote on this post (computed, nil when none)
	Voted     *VoteKind `gorm:"->;-:migration" json:"voted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
