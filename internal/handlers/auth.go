package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
	"github.com/inamit/colman-WebApplications/internal/handlers/render"
	"github.com/inamit/colman-WebApplications/internal/handlers/transport"
	"github.com/inamit/colman-WebApplications/internal/logger"
	"github.com/inamit/colman-WebApplications/internal/models"
)

// Auth service the handler needs. Typed errors only, the handler owns
// the translation to status codes.
type AuthService interface {
	Register(ctx context.Context, username string, email string, password string) (models.User, error)
	Login(ctx context.Context, username string, password string) (models.User, models.TokenPair, error)
	RefreshPair(ctx context.Context, refresh string) (models.User, models.TokenPair, error)
	Logout(ctx context.Context, refresh string) error
}

type AuthHandler struct {
	auth      AuthService
	transport transport.Transport
	logger    logger.Logger
}

func NewAuth(auth AuthService, t transport.Transport, l logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, transport: t, logger: l}
}

func (h *AuthHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.register)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)
	mux.HandleFunc("POST /refresh", h.refresh)

	return mux
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,min=2,max=50"`
		Password string `json:"password" validate:"required,min=8"`
		Email    string `json:"email" validate:"required,email"`
	}
	type RegisterSuccessResponse struct {
		ID       string `json:"_id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	user, err := h.auth.Register(r.Context(), data.Username, data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "User already exists", http.StatusBadRequest)
		default:
			h.logger.Error("registration failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, RegisterSuccessResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	user, pair, err := h.auth.Login(r.Context(), data.Username, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found.", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "wrong credentials. Please try again.", http.StatusBadRequest)
		default:
			h.logger.Error("login failed", "error", err.Error())
			render.ServiceError(w, "An error occurred while logging in.", http.StatusInternalServerError)
		}
		return
	}

	h.transport.WriteTokenPair(w, user.ID, pair)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	// The token is optional here: without the hardened policy logout is
	// purely a client-state operation
	refresh, _ := h.transport.ReadRefreshToken(r)

	if err := h.auth.Logout(r.Context(), refresh); err != nil {
		h.logger.Error("logout failed", "error", err.Error())
		render.ServiceError(w, "An error occurred while logging out.", http.StatusInternalServerError)
		return
	}

	h.transport.ClearTokens(w)
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	refresh, err := h.transport.ReadRefreshToken(r)
	if err != nil {
		render.ServiceError(w, "Invalid refresh token", http.StatusBadRequest)
		return
	}

	user, pair, err := h.auth.RefreshPair(r.Context(), refresh)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidToken):
			render.ServiceError(w, "Invalid refresh token", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found.", http.StatusNotFound)
		default:
			h.logger.Error("token refresh failed", "error", err.Error())
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.transport.WriteTokenPair(w, user.ID, pair)
}
