package models

import (
	"strings"
)

// VoteKind is the three-valued vote state at the API boundary. Only LIKE and
// DISLIKE are ever stored; NEUTRAL is represented by the absence of a row.
type VoteKind string

const (
	VoteLike    VoteKind = "LIKE"
	VoteDislike VoteKind = "DISLIKE"
	VoteNeutral VoteKind = "NEUTRAL"
)

// ParseVoteKind maps a route segment (like|dislike|neutral, any case) to a
// VoteKind. The boolean reports whether the input was a known kind.
func ParseVoteKind(s string) (VoteKind, bool) {
	switch VoteKind(strings.ToUpper(s)) {
	case VoteLike:
		return VoteLike, true
	case VoteDislike:
		return VoteDislike, true
	case VoteNeutral:
		return VoteNeutral, true
	}
	return VoteNeutral, false
}

// Stored reports whether the kind corresponds to a persisted vote row.
func (k VoteKind) Stored() bool {
	return k == VoteLike || k == VoteDislike
}

// Vote is one user's vote on one post. The composite primary key enforces at
// most one row per (post, user) pair at the storage level, independent of any
// application-side locking.
type Vote struct {
	PostID uint     `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID uint     `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	Kind   VoteKind `gorm:"column:vote_type;type:varchar(16);not null" json:"vote_type"`

	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// VoteAggregate is the derived view of a post's votes for one viewer.
type VoteAggregate struct {
	LikeCount    int64     `json:"like_count"`
	DislikeCount int64     `json:"dislike_count"`
	ViewerVote   *VoteKind `json:"voted"`
}
