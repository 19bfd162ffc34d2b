package server

import (
	"strings"

	"snapfeed/internal/auth"
	"snapfeed/internal/middleware"
	"snapfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// identity returns the verified identity the gate attached, if any.
func (s *Server) identity(c *fiber.Ctx) (auth.Identity, bool) {
	id, ok := c.Locals(middleware.IdentityLocal).(auth.Identity)
	return id, ok
}

// requireIdentity enforces authentication at the handler boundary.
func (s *Server) requireIdentity(c *fiber.Ctx) (auth.Identity, error) {
	id, ok := s.identity(c)
	if !ok {
		return auth.Identity{}, models.NewUnauthenticatedError("Not authenticated")
	}
	return id, nil
}

// parseID extracts a route parameter as a positive uint. Callers hand
// the returned error to models.RespondWithError like any other failure.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + strings.ToUpper(param))
	}
	return uint(id), nil
}

// parsePage reads the page query parameter, defaulting to 1.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page
}

// isMultipart reports whether the request carries a multipart form body.
func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}
