package repository

import (
	"context"
	"errors"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, query string, limit, offset int, viewerID uint) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyVoteDetails adds subqueries computing both counters and the viewer's own
// vote in the same query, so a post row can never be served with partial
// aggregates. A failed subquery fails the whole statement.
func (r *postRepository) applyVoteDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id AND votes.vote_type = 'LIKE') as like_count, " +
		"(SELECT COUNT(*) FROM votes WHERE votes.post_id = posts.id AND votes.vote_type = 'DISLIKE') as dislike_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", (SELECT vote_type FROM votes WHERE votes.post_id = posts.id AND votes.user_id = ?) as voted", viewerID)
	}

	return db.Select(selectQuery + ", NULL as voted")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyVoteDetails(r.db.WithContext(ctx), viewerID).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewUnavailableError("post lookup failed", err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, query string, limit, offset int, viewerID uint) ([]*models.Post, error) {
	var posts []*models.Post
	db := r.applyVoteDetails(r.db.WithContext(ctx), viewerID)
	if query != "" {
		db = db.Where("content LIKE ?", "%"+query+"%")
	}
	err := db.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewUnavailableError("post listing failed", err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"content":    post.Content,
			"updated_at": post.UpdatedAt,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

// Delete removes the post and its votes in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return models.NewInternalError(err)
	}
	return nil
}
