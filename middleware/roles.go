package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"p9e.in/prodtrack/config"
	"p9e.in/prodtrack/models"
)

// CurrentUser loads the full user record for the authenticated request.
func CurrentUser(r *http.Request) (*models.User, error) {
	raw := GetUserID(r)
	if raw == "" {
		return nil, models.PermissionError("missing authentication")
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return nil, models.PermissionError("invalid user id in token")
	}

	var user models.User
	if err := config.DB.First(&user, "id = ? AND is_active = ?", userID, true).Error; err != nil {
		return nil, models.NotFoundError("user %s not found", raw)
	}

	return &user, nil
}
