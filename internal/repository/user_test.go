package repository

import (
	"context"
	"testing"

	"snapfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	t.Parallel()
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first := &models.User{Email: "dup@example.com", Name: "One", Password: "x", Status: models.DefaultStatus}
	require.NoError(t, repo.Create(ctx, first))

	second := &models.User{Email: "dup@example.com", Name: "Two", Password: "y", Status: models.DefaultStatus}
	err := repo.Create(ctx, second)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Status)
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "present@example.com")

	t.Run("Present", func(t *testing.T) {
		user, err := repo.GetByEmail(ctx, "present@example.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "present@example.com", user.Email)
	})

	t.Run("Absent Is Not An Error", func(t *testing.T) {
		user, err := repo.GetByEmail(ctx, "absent@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestUserRepositoryGetByIDWithPosts(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "author@example.com")
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Post{
			Title:    "Authored post",
			Content:  "Body",
			ImageURL: "images/p.png",
			UserID:   user.ID,
		}).Error)
	}

	got, err := repo.GetByIDWithPosts(ctx, user.ID, 2)
	require.NoError(t, err)
	assert.Len(t, got.Posts, 2)

	_, err = repo.GetByIDWithPosts(ctx, 9999, 10)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestUserRepositoryUpdate(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "update@example.com")
	user.Status = "Now shipping"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Now shipping", got.Status)
}
