package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
	"github.com/inamit/colman-WebApplications/internal/models"
)

func testPair() models.TokenPair {
	return models.TokenPair{
		Access:  models.IssuedToken{Value: "access-token", ExpiresAt: time.Now().Add(15 * time.Minute)},
		Refresh: models.IssuedToken{Value: "refresh-token", ExpiresAt: time.Now().Add(24 * time.Hour)},
	}
}

func Test_New(t *testing.T) {
	t.Run("known transports", func(t *testing.T) {
		body, err := New(NameBody)
		require.NoError(t, err)
		require.IsType(t, Body{}, body)

		cookie, err := New(NameCookie)
		require.NoError(t, err)
		require.IsType(t, Cookie{}, cookie)
	})

	t.Run("unknown transport", func(t *testing.T) {
		_, err := New("carrier-pigeon")
		require.Error(t, err)
	})
}

func Test_BodyTransport(t *testing.T) {
	userID := uuid.New()

	t.Run("write token pair", func(t *testing.T) {
		rec := httptest.NewRecorder()

		Body{}.WriteTokenPair(rec, userID, testPair())

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "access-token", body["accessToken"])
		assert.Equal(t, "refresh-token", body["refreshToken"])
		assert.Equal(t, userID.String(), body["_id"])
	})

	t.Run("read refresh token from body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{"refreshToken": "refresh-token"}`))

		got, err := Body{}.ReadRefreshToken(req)

		require.NoError(t, err)
		assert.Equal(t, "refresh-token", got)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"empty body", ``},
			{"empty field", `{"refreshToken": ""}`},
			{"no field", `{}`},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				req := httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(tc.body))

				_, err := Body{}.ReadRefreshToken(req)

				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
			})
		}
	})

	t.Run("clear writes logout message", func(t *testing.T) {
		rec := httptest.NewRecorder()

		Body{}.ClearTokens(rec)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message": "logged out successfully."}`, rec.Body.String())
	})
}

func Test_CookieTransport(t *testing.T) {
	userID := uuid.New()

	t.Run("write token pair", func(t *testing.T) {
		rec := httptest.NewRecorder()

		Cookie{}.WriteTokenPair(rec, userID, testPair())

		resp := rec.Result()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		header := resp.Header.Get("Authorization")
		assert.Equal(t, "Bearer access-token", header)

		require.Len(t, resp.Cookies(), 1)
		cookie := resp.Cookies()[0]
		assert.Equal(t, "refreshtoken", cookie.Name)
		assert.Equal(t, "refresh-token", cookie.Value)
		assert.True(t, cookie.HttpOnly, "refresh cookie should be HttpOnly")
		assert.Equal(t, "/", cookie.Path, "refresh cookie should be available on / path")
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite, "refresh cookie should be SameSite Strict")
		assert.InDelta(t, (24 * time.Hour).Seconds(), cookie.MaxAge, 1, "max age should be refresh TTL with 1 second delta")
	})

	t.Run("read refresh token from cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refreshtoken", Value: "refresh-token"})

		got, err := Cookie{}.ReadRefreshToken(req)

		require.NoError(t, err)
		assert.Equal(t, "refresh-token", got)
	})

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/refresh", nil)

		_, err := Cookie{}.ReadRefreshToken(req)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("clear expires the cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()

		Cookie{}.ClearTokens(rec)

		resp := rec.Result()
		require.Len(t, resp.Cookies(), 1)
		cookie := resp.Cookies()[0]
		assert.Equal(t, "refreshtoken", cookie.Name)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge, "expired cookie removes the token from the browser")
	})
}
