package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, uint, uint) (*models.Post, error)
	listFn    func(context.Context, string, int, int, uint) ([]*models.Post, error)
	updateFn  func(context.Context, *models.Post) error
	deleteFn  func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, query string, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, query, limit, offset, viewerID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, _, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		listFn: func(_ context.Context, _ string, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// voteRepoStub is a stub for repository.VoteRepository.
type voteRepoStub struct {
	setFn       func(context.Context, uint, uint, models.VoteKind) (models.VoteKind, error)
	aggregateFn func(context.Context, uint, uint) (models.VoteAggregate, error)
}

func (s *voteRepoStub) Set(ctx context.Context, postID, userID uint, desired models.VoteKind) (models.VoteKind, error) {
	return s.setFn(ctx, postID, userID, desired)
}
func (s *voteRepoStub) Aggregate(ctx context.Context, postID, viewerID uint) (models.VoteAggregate, error) {
	return s.aggregateFn(ctx, postID, viewerID)
}

type notifierSpy struct {
	mu    sync.Mutex
	calls []models.VoteKind
}

func (n *notifierSpy) NotifyVote(_ context.Context, _, _, _ uint, kind models.VoteKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, kind)
}

func TestPostService_CreatePost(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectError string
	}{
		{"valid content", "hello", ""},
		{"empty content", "", "VALIDATION_ERROR"},
		{"content too long", strings.Repeat("x", maxContentLen+1), "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := noopPostRepo()
			var created *models.Post
			repo.createFn = func(_ context.Context, p *models.Post) error {
				p.ID = 1
				created = p
				return nil
			}
			svc := NewPostService(repo, &voteRepoStub{}, nil)

			post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: 7, Content: tt.content})
			if tt.expectError != "" {
				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.expectError, appErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(1), post.ID)
			require.NotNil(t, created)
			assert.Equal(t, uint(7), created.OwnerID)
		})
	}
}

func TestPostService_ListPosts_Bounds(t *testing.T) {
	repo := noopPostRepo()
	var gotLimit, gotOffset int
	repo.listFn = func(_ context.Context, _ string, limit, offset int, _ uint) ([]*models.Post, error) {
		gotLimit, gotOffset = limit, offset
		return nil, nil
	}
	svc := NewPostService(repo, &voteRepoStub{}, nil)

	_, err := svc.ListPosts(context.Background(), ListPostsInput{Limit: 0, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, defaultListLimit, gotLimit)
	assert.Equal(t, 0, gotOffset)

	_, err = svc.ListPosts(context.Background(), ListPostsInput{Limit: 5000, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, maxListLimit, gotLimit)
	assert.Equal(t, 3, gotOffset)
}

func TestPostService_UpdatePost_Ownership(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, OwnerID: 1, Content: "original"}, nil
	}
	svc := NewPostService(repo, &voteRepoStub{}, nil)

	t.Run("owner can update", func(t *testing.T) {
		var saved *models.Post
		repo.updateFn = func(_ context.Context, p *models.Post) error {
			saved = p
			return nil
		}
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 10, Content: "edited"})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "edited", saved.Content)
		assert.False(t, saved.UpdatedAt.IsZero())
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 2, PostID: 10, Content: "hijack"})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "FORBIDDEN", appErr.Code)
	})

	t.Run("empty content is rejected before any lookup", func(t *testing.T) {
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{UserID: 1, PostID: 10, Content: ""})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})
}

func TestPostService_DeletePost_Ownership(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, OwnerID: 1}, nil
	}
	deleted := false
	repo.deleteFn = func(_ context.Context, _ uint) error {
		deleted = true
		return nil
	}
	svc := NewPostService(repo, &voteRepoStub{}, nil)

	err := svc.DeletePost(context.Background(), 10, 2)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
	assert.False(t, deleted)

	require.NoError(t, svc.DeletePost(context.Background(), 10, 1))
	assert.True(t, deleted)
}

func TestPostService_Vote(t *testing.T) {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, OwnerID: 1}, nil
	}
	votes := &voteRepoStub{
		setFn: func(_ context.Context, _, _ uint, desired models.VoteKind) (models.VoteKind, error) {
			return desired, nil
		},
	}
	spy := &notifierSpy{}
	svc := NewPostService(repo, votes, spy)

	result, err := svc.Vote(context.Background(), VoteInput{UserID: 2, PostID: 10, Desired: models.VoteLike})
	require.NoError(t, err)
	assert.Equal(t, models.VoteLike, result)
	require.Len(t, spy.calls, 1)
	assert.Equal(t, models.VoteLike, spy.calls[0])
}

func TestPostService_Vote_ErrorPassedThrough(t *testing.T) {
	votes := &voteRepoStub{
		setFn: func(_ context.Context, _, _ uint, _ models.VoteKind) (models.VoteKind, error) {
			return models.VoteNeutral, models.NewForbiddenError("You cannot vote on your own post")
		},
	}
	spy := &notifierSpy{}
	svc := NewPostService(noopPostRepo(), votes, spy)

	_, err := svc.Vote(context.Background(), VoteInput{UserID: 1, PostID: 10, Desired: models.VoteLike})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
	assert.Empty(t, spy.calls)
}
