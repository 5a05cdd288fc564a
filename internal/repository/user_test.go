package repository

import (
	"context"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "alice", Password: "hashed"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)
}

func TestUserRepository_Create_DuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "taken", Password: "x"}))

	err := repo.Create(ctx, &models.User{Username: "taken", Password: "y"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
}

func TestUserRepository_GetByUsername_Missing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.GetByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 404)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestUserRepository_Delete_Cascades(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	votes := NewVoteRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	alicePost := createTestPost(t, db, alice.ID, "alice writes")
	bobPost := createTestPost(t, db, bob.ID, "bob writes")

	// Alice votes on Bob's post, Bob votes on Alice's.
	_, err := votes.Set(ctx, bobPost.ID, alice.ID, models.VoteLike)
	require.NoError(t, err)
	_, err = votes.Set(ctx, alicePost.ID, bob.ID, models.VoteDislike)
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, alice.ID))

	// Alice, her posts, her cast votes, and votes on her posts are all gone.
	_, err = users.GetByID(ctx, alice.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	var postCount int64
	require.NoError(t, db.Model(&models.Post{}).Where("owner_id = ?", alice.ID).Count(&postCount).Error)
	assert.Zero(t, postCount)

	var voteCount int64
	require.NoError(t, db.Model(&models.Vote{}).Count(&voteCount).Error)
	assert.Zero(t, voteCount)

	// Bob's post survives.
	var bobPosts int64
	require.NoError(t, db.Model(&models.Post{}).Where("owner_id = ?", bob.ID).Count(&bobPosts).Error)
	assert.Equal(t, int64(1), bobPosts)
}

func TestUserRepository_Delete_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	err := repo.Delete(context.Background(), 404)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}
