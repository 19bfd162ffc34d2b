package auth

import (
	"context"

	"snapfeed/internal/models"
)

// RequireAuthenticated returns the identity attached to the request
// context, or an Unauthenticated error for anonymous callers. The gate
// never rejects; this is where anonymous access actually fails.
func RequireAuthenticated(ctx context.Context) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return Identity{}, models.NewUnauthenticatedError("Not authenticated")
	}
	return id, nil
}

// RequireOwnership allows the operation iff the identity owns the
// resource. Evaluated fresh on every call; no session state.
func RequireOwnership(id Identity, ownerID uint) error {
	if id.UserID != ownerID {
		return models.NewForbiddenError("Not authorized")
	}
	return nil
}
