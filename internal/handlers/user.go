package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
	"github.com/inamit/colman-WebApplications/internal/handlers/render"
	"github.com/inamit/colman-WebApplications/internal/models"
)

type UserGetter interface {
	User(ctx context.Context, userID uuid.UUID) (models.User, error)
}

// handleUserMe serves the profile of the authenticated subject.
// Sits behind the auth middleware, so the subject id is in the context.
func handleUserMe(users UserGetter) http.Handler {
	type MeResponse struct {
		ID       string `json:"_id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		user, err := users.User(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found.", http.StatusNotFound)
			default:
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, MeResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			Email:    user.Email,
		})
	})
}
