package server

import (
	"mime/multipart"

	"snapfeed/internal/models"
	"snapfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /feed/posts?page=N
func (s *Server) GetPosts(c *fiber.Ctx) error {
	if _, err := s.requireIdentity(c); err != nil {
		return models.RespondWithError(c, err)
	}

	page, err := s.feedService.ListPosts(c.UserContext(), parsePage(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":    "Fetched posts successfully",
		"posts":      page.Posts,
		"totalItems": page.TotalItems,
	})
}

// GetPost handles GET /feed/post/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.feedService.GetPost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post fetched",
		"post":    post,
	})
}

// CreatePost handles POST /feed/posts (multipart: image, title, content)
func (s *Server) CreatePost(c *fiber.Ctx) error {
	identity, err := s.requireIdentity(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	title := c.FormValue("title")
	content := c.FormValue("content")

	imagePath := ""
	if file, ferr := c.FormFile("image"); ferr == nil && file != nil {
		imagePath, err = s.images.Save(file)
		if err != nil {
			return models.RespondWithError(c, err)
		}
	}

	post, err := s.feedService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   identity.UserID,
		Title:    title,
		Content:  content,
		ImageURL: imagePath,
	})
	if err != nil {
		// The artifact was saved before validation ran; reclaim it.
		s.images.Remove(imagePath)
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully",
		"post":    post,
		"creator": models.CreatorSummary{ID: post.User.ID, Name: post.User.Name},
	})
}

// UpdatePost handles PUT /feed/post/:id. Accepts a multipart form with
// an optional replacement image, or a JSON body carrying an image path
// already produced by the upload endpoint.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	identity, err := s.requireIdentity(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	input := service.UpdatePostInput{
		UserID: identity.UserID,
		PostID: id,
	}

	savedPath := ""
	if isMultipart(c) {
		input.Title = c.FormValue("title")
		input.Content = c.FormValue("content")
		input.ImageURL = c.FormValue("image")

		var file *multipart.FileHeader
		if file, err = c.FormFile("image"); err == nil && file != nil {
			savedPath, err = s.images.Save(file)
			if err != nil {
				return models.RespondWithError(c, err)
			}
			input.ImageURL = savedPath
		}
	} else {
		var req struct {
			Title   string `json:"title"`
			Content string `json:"content"`
			Image   string `json:"image"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
		}
		input.Title = req.Title
		input.Content = req.Content
		input.ImageURL = req.Image
	}

	post, err := s.feedService.UpdatePost(c.UserContext(), input)
	if err != nil {
		// Fresh upload that never made it into the record.
		s.images.Remove(savedPath)
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post updated",
		"post":    post,
	})
}

// DeletePost handles DELETE /feed/post/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	identity, err := s.requireIdentity(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.feedService.DeletePost(c.UserContext(), identity.UserID, id); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}
