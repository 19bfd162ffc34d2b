package middleware

import (
	"context"
	"strings"

	"snapfeed/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// IdentityLocal is the Fiber locals key under which the verified identity
// is stored for the duration of one request.
const IdentityLocal = "identity"

// AuthContext is the permissive auth gate. It runs on every inbound call
// before any business logic: a presented bearer credential is verified and
// the resulting identity attached to the request; absent, malformed or
// expired credentials degrade to an anonymous context. The gate never
// rejects — handlers and resolvers decide whether anonymous access is
// acceptable.
func AuthContext(tokens *auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		if header := c.Get(fiber.HeaderAuthorization); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = strings.TrimSpace(parts[1])
			}
		}
		// Browsers cannot set headers on websocket upgrades; those
		// clients pass the token as a query parameter instead.
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return c.Next()
		}

		identity, err := tokens.Verify(tokenString)
		if err != nil {
			// Invalid or expired tokens are treated as anonymous, not as
			// a gate failure; the authorization decision belongs to the
			// handler.
			return c.Next()
		}

		c.Locals(IdentityLocal, identity)
		ctx := auth.WithIdentity(c.UserContext(), identity)
		ctx = context.WithValue(ctx, UserIDKey, identity.UserID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}
