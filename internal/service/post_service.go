package service

import (
	"context"
	"time"

	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxContentLen    = 50000
	defaultListLimit = 10
	maxListLimit     = 100
)

// VoteNotifier is notified after a vote transition lands. Delivery is
// best-effort; failures never surface to the voter.
type VoteNotifier interface {
	NotifyVote(ctx context.Context, ownerID, postID, voterID uint, kind models.VoteKind)
}

type PostService struct {
	postRepo repository.PostRepository
	voteRepo repository.VoteRepository
	notifier VoteNotifier
}

type CreatePostInput struct {
	UserID  uint
	Content string
}

type ListPostsInput struct {
	Query    string
	Limit    int
	Offset   int
	ViewerID uint
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type VoteInput struct {
	UserID  uint
	PostID  uint
	Desired models.VoteKind
}

func NewPostService(
	postRepo repository.PostRepository,
	voteRepo repository.VoteRepository,
	notifier VoteNotifier,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		voteRepo: voteRepo,
		notifier: notifier,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	post := &models.Post{
		Content: in.Content,
		OwnerID: in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	observability.PostsCreatedTotal.Inc()
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	return s.postRepo.List(ctx, in.Query, limit, offset, in.ViewerID)
}

func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, viewerID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	post, err := s.ownedPost(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}

	post.Content = in.Content
	post.UpdatedAt = time.Now()
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, in.PostID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	if _, err := s.ownedPost(ctx, postID, userID); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, postID)
}

// Vote applies the requested vote transition and notifies the post owner.
func (s *PostService) Vote(ctx context.Context, in VoteInput) (models.VoteKind, error) {
	span, ctx := observability.NewSpan(ctx, "vote.set")
	span.AddAttributes(
		attribute.Int64("post.id", int64(in.PostID)),
		attribute.String("vote.kind", string(in.Desired)),
	)
	defer span.End()

	result, err := s.voteRepo.Set(ctx, in.PostID, in.UserID, in.Desired)
	if err != nil {
		span.SetError(err)
		observability.VotesTotal.WithLabelValues(string(in.Desired), "error").Inc()
		return models.VoteNeutral, err
	}
	observability.VotesTotal.WithLabelValues(string(in.Desired), "ok").Inc()

	if s.notifier != nil {
		if post, postErr := s.postRepo.GetByID(ctx, in.PostID, 0); postErr == nil {
			s.notifier.NotifyVote(ctx, post.OwnerID, in.PostID, in.UserID, result)
		}
	}

	return result, nil
}

// AggregateVotes exposes the aggregation engine for a single post.
func (s *PostService) AggregateVotes(ctx context.Context, postID, viewerID uint) (models.VoteAggregate, error) {
	return s.voteRepo.Aggregate(ctx, postID, viewerID)
}

// ownedPost loads a post and verifies ownership. Every mutating post
// operation goes through this single check.
func (s *PostService) ownedPost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.OwnerID != userID {
		return nil, models.NewForbiddenError("You do not own this post")
	}
	return post, nil
}
