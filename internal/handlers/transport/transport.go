// Package transport decides how issued tokens travel to and from the
// client. The auth core only needs "deliver tokens" and "read the
// presented refresh token"; whether that happens through the response
// body or cookies is a deployment choice.
package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
	"github.com/inamit/colman-WebApplications/internal/handlers/render"
	"github.com/inamit/colman-WebApplications/internal/models"
)

type Transport interface {
	// WriteTokenPair delivers freshly issued tokens to the client and
	// writes the 200 response.
	WriteTokenPair(w http.ResponseWriter, userID uuid.UUID, pair models.TokenPair)

	// ReadRefreshToken extracts the refresh token the client presented
	ReadRefreshToken(r *http.Request) (string, error)

	// ClearTokens writes the logout response, removing whatever client
	// state this transport set.
	ClearTokens(w http.ResponseWriter)
}

const (
	// Transport names as they appear in configuration
	NameBody   = "body"
	NameCookie = "cookie"
)

// New returns the transport registered under name
func New(name string) (Transport, error) {
	switch name {
	case NameBody:
		return Body{}, nil
	case NameCookie:
		return Cookie{}, nil
	default:
		return nil, fmt.Errorf("unknown token transport %q", name)
	}
}

// Body delivers both tokens in the JSON response body and expects the
// refresh token back in a JSON request body.
type Body struct{}

type bodyTokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	UserID       uuid.UUID `json:"_id"`
}

func (Body) WriteTokenPair(w http.ResponseWriter, userID uuid.UUID, pair models.TokenPair) {
	render.JSON(w, bodyTokenResponse{
		AccessToken:  pair.Access.Value,
		RefreshToken: pair.Refresh.Value,
		UserID:       userID,
	})
}

func (Body) ReadRefreshToken(r *http.Request) (string, error) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: can't read refresh token from body", apperrors.ErrInvalidToken)
	}
	if body.RefreshToken == "" {
		return "", fmt.Errorf("%w: refresh token missing from body", apperrors.ErrInvalidToken)
	}

	return body.RefreshToken, nil
}

func (Body) ClearTokens(w http.ResponseWriter) {
	// Client-held tokens only, nothing to clear server side
	render.JSON(w, map[string]string{"message": "logged out successfully."})
}
