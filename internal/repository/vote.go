package repository

import (
	"context"
	"errors"

	"ripple/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteRepository is the single writer for vote rows. All vote transitions go
// through Set, which also enforces the post-exists and not-own-post
// preconditions inside the same transaction as the mutation.
type VoteRepository interface {
	Set(ctx context.Context, postID, userID uint, desired models.VoteKind) (models.VoteKind, error)
	Aggregate(ctx context.Context, postID, viewerID uint) (models.VoteAggregate, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Set applies the requested vote state and returns the state that now holds:
//
//	no vote   + LIKE/DISLIKE  -> vote recorded
//	same kind + same kind     -> vote removed (toggle off)
//	one kind  + other kind    -> vote replaced
//	any       + NEUTRAL       -> vote removed
//
// Re-clearing an absent vote is a no-op, not an error.
func (r *voteRepository) Set(ctx context.Context, postID, userID uint, desired models.VoteKind) (models.VoteKind, error) {
	result := models.VoteNeutral

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id", "owner_id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewUnavailableError("vote store unavailable", err)
		}
		if post.OwnerID == userID {
			return models.NewForbiddenError("You cannot vote on your own post")
		}

		q := tx
		if tx.Dialector.Name() == "postgres" {
			// Serialize concurrent votes on the same row; SQLite has a single
			// writer and rejects FOR UPDATE.
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var existing models.Vote
		err := q.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if !desired.Stored() {
				return nil
			}
			vote := models.Vote{PostID: postID, UserID: userID, Kind: desired}
			if err := tx.Create(&vote).Error; err != nil {
				// The composite primary key is the backstop when two inserts race.
				if isUniqueConstraintError(err) {
					return models.NewConflictError("Vote was recorded concurrently")
				}
				return models.NewUnavailableError("vote store unavailable", err)
			}
			result = desired
			return nil

		case err != nil:
			return models.NewUnavailableError("vote store unavailable", err)

		default:
			if !desired.Stored() || existing.Kind == desired {
				if err := tx.
					Where("post_id = ? AND user_id = ?", postID, userID).
					Delete(&models.Vote{}).Error; err != nil {
					return models.NewUnavailableError("vote store unavailable", err)
				}
				return nil
			}

			if err := tx.Model(&models.Vote{}).
				Where("post_id = ? AND user_id = ?", postID, userID).
				Update("vote_type", desired).Error; err != nil {
				return models.NewUnavailableError("vote store unavailable", err)
			}
			result = desired
			return nil
		}
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return models.VoteNeutral, appErr
		}
		return models.VoteNeutral, models.NewUnavailableError("vote store unavailable", err)
	}

	return result, nil
}

// Aggregate computes both counters and the viewer's vote in one statement.
// Any failure is returned to the caller; aggregates are never defaulted.
func (r *voteRepository) Aggregate(ctx context.Context, postID, viewerID uint) (models.VoteAggregate, error) {
	var row struct {
		LikeCount    int64
		DislikeCount int64
		Voted        *models.VoteKind
	}

	selectQuery := "(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id AND votes.vote_type = 'LIKE') as like_count, " +
		"(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id AND votes.vote_type = 'DISLIKE') as dislike_count, " +
		"(SELECT vote_type FROM votes WHERE votes.post_id = posts.id AND votes.user_id = ?) as voted"

	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Select(selectQuery, viewerID).
		Where("posts.id = ?", postID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.VoteAggregate{}, models.NewNotFoundError("Post", postID)
		}
		return models.VoteAggregate{}, models.NewUnavailableError("vote aggregation failed", err)
	}

	return models.VoteAggregate{
		LikeCount:    row.LikeCount,
		DislikeCount: row.DislikeCount,
		ViewerVote:   row.Voted,
	}, nil
}
