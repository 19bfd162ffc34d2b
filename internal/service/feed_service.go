package service

import (
	"context"
	"strings"

	"snapfeed/internal/auth"
	"snapfeed/internal/cache"
	"snapfeed/internal/models"
	"snapfeed/internal/repository"
	"snapfeed/internal/validation"
)

const DefaultPageSize = 2

// FeedNotifier receives feed mutation events for live delivery.
// Implementations must not block.
type FeedNotifier interface {
	PostCreated(post *models.Post)
	PostUpdated(post *models.Post)
	PostDeleted(postID uint)
}

type CreatePostInput struct {
	UserID   uint
	Title    string
	Content  string
	ImageURL string
}

type UpdatePostInput struct {
	UserID   uint
	PostID   uint
	Title    string
	Content  string
	ImageURL string
}

// FeedPage is one window of the feed plus the total across all pages.
type FeedPage struct {
	Posts      []models.Post
	TotalItems int64
}

// FeedService implements the post feed: paginated listing and the full
// post mutation workflow including image artifact handover.
type FeedService struct {
	postRepo repository.PostRepository
	images   ImageLifecycle
	notifier FeedNotifier
	pageSize int
}

func NewFeedService(postRepo repository.PostRepository, images ImageLifecycle, notifier FeedNotifier, pageSize int) *FeedService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &FeedService{
		postRepo: postRepo,
		images:   images,
		notifier: notifier,
		pageSize: pageSize,
	}
}

// ListPosts returns one page of the feed, newest first. Page numbers
// below 1 are coerced to 1. TotalItems always reflects the whole feed,
// so a page past the end returns an empty window with the real total.
func (s *FeedService) ListPosts(ctx context.Context, page int) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.pageSize

	result := &FeedPage{}

	fetch := func() error {
		posts, err := s.postRepo.List(ctx, s.pageSize, offset)
		if err != nil {
			return err
		}
		total, err := s.postRepo.Count(ctx)
		if err != nil {
			return err
		}
		result.Posts = posts
		result.TotalItems = total
		return nil
	}

	if page == 1 {
		if err := cache.Aside(ctx, cache.FeedFirstPageKey(), result, cache.FeedPageTTL, fetch); err != nil {
			return nil, err
		}
	} else if err := fetch(); err != nil {
		return nil, err
	}

	if result.Posts == nil {
		result.Posts = []models.Post{}
	}
	return result, nil
}

// GetPost loads a single post with its creator. Readable without
// authentication.
func (s *FeedService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// CreatePost validates and stores a new post. The image artifact at
// in.ImageURL must already be saved; on validation failure the caller
// owns its cleanup.
func (s *FeedService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validatePostFields(in.Title, in.Content, in.ImageURL); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    strings.TrimSpace(in.Title),
		Content:  strings.TrimSpace(in.Content),
		ImageURL: in.ImageURL,
		UserID:   in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.PostCreated(post)
	}
	return post, nil
}

// UpdatePost replaces a post's fields after an ownership check. The
// input must carry a resolved image path: either a freshly stored upload
// or the post's current path carried over explicitly by the client. When
// the path changes the previous artifact is scheduled for removal only
// after the row update succeeds, so a failed update never destroys the
// image still referenced by storage.
func (s *FeedService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	identity := auth.Identity{UserID: in.UserID}
	if err := auth.RequireOwnership(identity, post.UserID); err != nil {
		return nil, err
	}

	if err := validatePostFields(in.Title, in.Content, in.ImageURL); err != nil {
		return nil, err
	}

	oldImage := post.ImageURL
	post.Title = strings.TrimSpace(in.Title)
	post.Content = strings.TrimSpace(in.Content)
	post.ImageURL = in.ImageURL

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if oldImage != post.ImageURL && s.images != nil {
		s.images.Replace(oldImage, post.ImageURL)
	}

	if s.notifier != nil {
		s.notifier.PostUpdated(post)
	}
	return post, nil
}

// DeletePost removes a post after an ownership check and schedules its
// image artifact for removal once the row is gone.
func (s *FeedService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	identity := auth.Identity{UserID: userID}
	if err := auth.RequireOwnership(identity, post.UserID); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, post); err != nil {
		return err
	}
	if s.images != nil {
		s.images.Remove(post.ImageURL)
	}

	if s.notifier != nil {
		s.notifier.PostDeleted(post.ID)
	}
	return nil
}

// validatePostFields aggregates every field problem into one error. An
// image path is required on create and update alike; a client keeping
// the current image carries its path over explicitly.
func validatePostFields(title, content, imageURL string) error {
	var fields []models.FieldError
	if err := validation.ValidateTitle(title); err != nil {
		fields = append(fields, models.FieldError{Field: "title", Message: err.Error()})
	}
	if err := validation.ValidateContent(content); err != nil {
		fields = append(fields, models.FieldError{Field: "content", Message: err.Error()})
	}
	if imageURL == "" {
		fields = append(fields, models.FieldError{Field: "image", Message: "an image is required"})
	}
	if len(fields) > 0 {
		return models.NewValidationError("Validation failed", fields...)
	}
	return nil
}
