package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
	"github.com/inamit/colman-WebApplications/internal/handlers"
	"github.com/inamit/colman-WebApplications/internal/handlers/render"
)

const (
	authHeaderName = "Authorization"
	authScheme     = "Bearer"
)

// accessParser verifies an access token and returns its subject.
// Verification is stateless so the gate never touches the database.
type accessParser interface {
	ParseAccess(access string) (uuid.UUID, error)
}

// NewAuth returns middleware that admits only requests carrying a valid
// access token, injecting the subject id into the request context.
func NewAuth(parser accessParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			userID, err := parser.ParseAccess(token)
			switch {
			case errors.Is(err, apperrors.ErrMissingSecret):
				// Misconfiguration, not the client's fault
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			case err != nil:
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := handlers.NewContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(authHeaderName)
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, authScheme) || token == "" {
		return "", false
	}

	return token, true
}
