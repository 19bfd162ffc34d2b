package service

import (
	"context"
	"errors"
	"testing"

	"snapfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, uint) (*models.Post, error)
	listFn    func(context.Context, int, int) ([]models.Post, error)
	countFn   func(context.Context) (int64, error)
	updateFn  func(context.Context, *models.Post) error
	deleteFn  func(context.Context, *models.Post) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, post *models.Post) error {
	return s.deleteFn(ctx, post)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		listFn:    func(_ context.Context, _, _ int) ([]models.Post, error) { return nil, nil },
		countFn:   func(_ context.Context) (int64, error) { return 0, nil },
		updateFn:  func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:  func(_ context.Context, _ *models.Post) error { return nil },
	}
}

// MockImageLifecycle is a mock of the ImageLifecycle interface.
type MockImageLifecycle struct {
	mock.Mock
}

func (m *MockImageLifecycle) Replace(oldPath, newPath string) {
	m.Called(oldPath, newPath)
}

func (m *MockImageLifecycle) Remove(path string) {
	m.Called(path)
}

func fieldNames(appErr *models.AppError) []string {
	names := make([]string, 0, len(appErr.Data))
	for _, f := range appErr.Data {
		names = append(names, f.Field)
	}
	return names
}

func TestCreatePostAggregatesFieldErrors(t *testing.T) {
	t.Parallel()
	svc := NewFeedService(noopPostRepo(), nil, nil, 2)

	_, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:  1,
		Title:   "abc",
		Content: "xyz",
	})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 422, appErr.Status)
	assert.ElementsMatch(t, []string{"title", "content", "image"}, fieldNames(appErr))
}

func TestCreatePostSuccess(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, post *models.Post) error {
		post.ID = 11
		post.User = models.User{ID: 1, Name: "Alice"}
		return nil
	}
	svc := NewFeedService(repo, nil, nil, 2)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{
		UserID:   1,
		Title:    "A valid title",
		Content:  "Some valid content",
		ImageURL: "images/abc-test.png",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(11), post.ID)
	assert.Equal(t, "Alice", post.User.Name)
}

func TestUpdatePostRequiresOwnership(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		return &models.Post{ID: 5, UserID: 1, Title: "Owned title", Content: "Owned content", ImageURL: "images/a.png"}, nil
	}
	images := new(MockImageLifecycle)
	svc := NewFeedService(repo, images, nil, 2)

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:  2,
		PostID:  5,
		Title:   "New valid title",
		Content: "New valid content",
	})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)
	images.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestUpdatePostReplacesOldArtifactExactlyOnce(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		return &models.Post{ID: 5, UserID: 1, Title: "Old title here", Content: "Old content here", ImageURL: "images/old.png"}, nil
	}
	images := new(MockImageLifecycle)
	images.On("Replace", "images/old.png", "images/new.png").Once()
	svc := NewFeedService(repo, images, nil, 2)

	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:   1,
		PostID:   5,
		Title:    "New valid title",
		Content:  "New valid content",
		ImageURL: "images/new.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "images/new.png", post.ImageURL)
	images.AssertExpectations(t)
}

func TestUpdatePostRequiresResolvedImage(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		return &models.Post{ID: 5, UserID: 1, Title: "Old title here", Content: "Old content here", ImageURL: "images/keep.png"}, nil
	}
	updated := false
	repo.updateFn = func(_ context.Context, _ *models.Post) error {
		updated = true
		return nil
	}
	images := new(MockImageLifecycle)
	svc := NewFeedService(repo, images, nil, 2)

	// No new upload and no carried-over path: the update must fail
	// rather than silently keep the stored image.
	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:  1,
		PostID:  5,
		Title:   "New valid title",
		Content: "New valid content",
	})

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 422, appErr.Status)
	assert.Equal(t, []string{"image"}, fieldNames(appErr))
	assert.False(t, updated)
	images.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestUpdatePostCarriedOverPathKeepsImage(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		return &models.Post{ID: 5, UserID: 1, Title: "Old title here", Content: "Old content here", ImageURL: "images/keep.png"}, nil
	}
	images := new(MockImageLifecycle)
	svc := NewFeedService(repo, images, nil, 2)

	post, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:   1,
		PostID:   5,
		Title:    "New valid title",
		Content:  "New valid content",
		ImageURL: "images/keep.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "images/keep.png", post.ImageURL)
	images.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestUpdatePostFailedUpdateKeepsOldArtifact(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		return &models.Post{ID: 5, UserID: 1, Title: "Old title here", Content: "Old content here", ImageURL: "images/old.png"}, nil
	}
	repo.updateFn = func(_ context.Context, _ *models.Post) error {
		return models.NewInternalError(errors.New("db down"))
	}
	images := new(MockImageLifecycle)
	svc := NewFeedService(repo, images, nil, 2)

	_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
		UserID:   1,
		PostID:   5,
		Title:    "New valid title",
		Content:  "New valid content",
		ImageURL: "images/new.png",
	})
	require.Error(t, err)
	images.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestDeletePost(t *testing.T) {
	t.Parallel()

	t.Run("Owner Deletes And Artifact Is Removed", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 5, UserID: 1, ImageURL: "images/gone.png"}, nil
		}
		images := new(MockImageLifecycle)
		images.On("Remove", "images/gone.png").Once()
		svc := NewFeedService(repo, images, nil, 2)

		require.NoError(t, svc.DeletePost(context.Background(), 1, 5))
		images.AssertExpectations(t)
	})

	t.Run("Non Owner Forbidden", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 5, UserID: 1, ImageURL: "images/gone.png"}, nil
		}
		images := new(MockImageLifecycle)
		svc := NewFeedService(repo, images, nil, 2)

		err := svc.DeletePost(context.Background(), 2, 5)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 403, appErr.Status)
		images.AssertNotCalled(t, "Remove", mock.Anything)
	})

	t.Run("Missing Post Is NotFound", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc := NewFeedService(repo, nil, nil, 2)

		err := svc.DeletePost(context.Background(), 1, 99)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 404, appErr.Status)
	})
}

func TestListPostsCoercesPage(t *testing.T) {
	t.Parallel()

	var gotOffset int
	repo := noopPostRepo()
	repo.listFn = func(_ context.Context, limit, offset int) ([]models.Post, error) {
		gotOffset = offset
		return []models.Post{}, nil
	}
	repo.countFn = func(_ context.Context) (int64, error) { return 7, nil }
	svc := NewFeedService(repo, nil, nil, 2)

	tests := []struct {
		name       string
		page       int
		wantOffset int
	}{
		{"Zero Page", 0, 0},
		{"Negative Page", -3, 0},
		{"First Page", 1, 0},
		{"Third Page", 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListPosts(context.Background(), tt.page)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOffset, gotOffset)
			assert.Equal(t, int64(7), page.TotalItems)
			assert.NotNil(t, page.Posts)
		})
	}
}
