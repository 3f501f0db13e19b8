package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
	"github.com/inamit/colman-WebApplications/internal/handlers/render"
	"github.com/inamit/colman-WebApplications/internal/models"
)

const (
	refreshCookieName = "refreshtoken"
	authHeaderName    = "Authorization"
	authScheme        = "Bearer"
)

// Cookie keeps the refresh token in an httpOnly cookie the browser
// can't touch, and hands the access token over in the Authorization
// response header.
type Cookie struct{}

func (Cookie) WriteTokenPair(w http.ResponseWriter, userID uuid.UUID, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.Refresh.Value,
		Path:     "/",
		MaxAge:   int(time.Until(pair.Refresh.ExpiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set(authHeaderName, authScheme+" "+pair.Access.Value)

	render.JSON(w, map[string]any{"message": "logged in successfully.", "_id": userID})
}

func (Cookie) ReadRefreshToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		return "", fmt.Errorf("%w: refresh cookie missing", apperrors.ErrInvalidToken)
	}

	return cookie.Value, nil
}

func (Cookie) ClearTokens(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	render.JSON(w, map[string]string{"message": "logged out successfully."})
}
