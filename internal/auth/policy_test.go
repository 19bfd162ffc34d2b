package auth

import (
	"context"
	"testing"

	"snapfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuthenticated(t *testing.T) {
	t.Parallel()

	t.Run("With Identity", func(t *testing.T) {
		ctx := WithIdentity(context.Background(), Identity{UserID: 7, Email: "a@b.com"})
		id, err := RequireAuthenticated(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint(7), id.UserID)
	})

	t.Run("Anonymous", func(t *testing.T) {
		_, err := RequireAuthenticated(context.Background())
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 401, appErr.Status)
	})
}

func TestRequireOwnership(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		userID  uint
		ownerID uint
		wantErr bool
	}{
		{"Owner", 5, 5, false},
		{"Different User", 5, 6, true},
		{"Zero Owner", 5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireOwnership(Identity{UserID: tt.userID}, tt.ownerID)
			if tt.wantErr {
				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, 403, appErr.Status)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
