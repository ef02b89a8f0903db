package users

import (
	"github.com/google/uuid"

	"github.com/feastly/feastly-backend/pkg/db/models"
	"github.com/feastly/feastly-backend/pkg/enums"
)

// Summary is the account shape returned to clients; the password hash never
// leaves the service layer.
type Summary struct {
	ID    uuid.UUID      `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Role  enums.UserRole `json:"role"`
}

// FromModel maps a stored user onto the client-facing summary.
func FromModel(user *models.User) Summary {
	return Summary{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}
