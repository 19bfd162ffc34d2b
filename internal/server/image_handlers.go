package server

import (
	"snapfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadPostImage handles PUT /post-image. The client uploads the image
// first, then references the returned path from a GraphQL createPost or
// updatePost mutation. The old path may accompany the upload so the
// stale artifact is reclaimed.
func (s *Server) UploadPostImage(c *fiber.Ctx) error {
	if _, err := s.requireIdentity(c); err != nil {
		return models.RespondWithError(c, err)
	}

	file, err := c.FormFile("image")
	if err != nil || file == nil {
		return c.JSON(fiber.Map{"message": "No file provided"})
	}

	path, err := s.images.Save(file)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if oldPath := c.FormValue("oldPath"); oldPath != "" {
		s.images.Replace(oldPath, path)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "File stored",
		"filePath": path,
	})
}
