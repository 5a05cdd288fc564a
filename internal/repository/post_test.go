package repository

import (
	"context"
	"testing"
	"time"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")

	post := &models.Post{Content: "hello world", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetByID(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Content)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, int64(0), got.LikeCount)
	assert.Equal(t, int64(0), got.DislikeCount)
	assert.Nil(t, got.Voted)
}

func TestPostRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	_, err := repo.GetByID(context.Background(), 42, 0)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPostRepository_GetByID_VoteDecoration(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, owner.ID, "decorated")

	_, err := votes.Set(ctx, post.ID, alice.ID, models.VoteLike)
	require.NoError(t, err)
	_, err = votes.Set(ctx, post.ID, bob.ID, models.VoteDislike)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.LikeCount)
	assert.Equal(t, int64(1), got.DislikeCount)
	require.NotNil(t, got.Voted)
	assert.Equal(t, models.VoteLike, *got.Voted)

	// A viewer without a vote sees the same counts and a nil vote.
	got, err = repo.GetByID(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.LikeCount)
	assert.Equal(t, int64(1), got.DislikeCount)
	assert.Nil(t, got.Voted)
}

func TestPostRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")

	older := &models.Post{Content: "about gophers", OwnerID: owner.ID}
	require.NoError(t, db.Create(older).Error)
	require.NoError(t, db.Model(older).Update("created_at", time.Now().Add(-time.Hour)).Error)
	newer := createTestPost(t, db, owner.ID, "about ripples")

	t.Run("newest first", func(t *testing.T) {
		posts, err := repo.List(ctx, "", 10, 0, owner.ID)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, newer.ID, posts[0].ID)
		assert.Equal(t, older.ID, posts[1].ID)
	})

	t.Run("substring filter", func(t *testing.T) {
		posts, err := repo.List(ctx, "gopher", 10, 0, owner.ID)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, older.ID, posts[0].ID)
	})

	t.Run("no matches", func(t *testing.T) {
		posts, err := repo.List(ctx, "nothing here", 10, 0, owner.ID)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("offset and limit", func(t *testing.T) {
		posts, err := repo.List(ctx, "", 1, 0, owner.ID)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, newer.ID, posts[0].ID)

		posts, err = repo.List(ctx, "", 1, 1, owner.ID)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, older.ID, posts[0].ID)
	})
}

func TestPostRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	post := createTestPost(t, db, owner.ID, "before")

	post.Content = "after"
	post.UpdatedAt = time.Now().Add(time.Minute)
	require.NoError(t, repo.Update(ctx, post))

	got, err := repo.GetByID(ctx, post.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Content)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestPostRepository_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	err := repo.Update(context.Background(), &models.Post{ID: 404, Content: "x"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestPostRepository_Delete_CascadesVotes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner")
	voter := createTestUser(t, db, "voter")
	post := createTestPost(t, db, owner.ID, "doomed")

	_, err := votes.Set(ctx, post.ID, voter.ID, models.VoteLike)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err = repo.GetByID(ctx, post.ID, 0)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	var count int64
	require.NoError(t, db.Model(&models.Vote{}).Where("post_id = ?", post.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPostRepository_Delete_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)

	err := repo.Delete(context.Background(), 404)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
