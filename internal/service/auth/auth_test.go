package auth

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
	"github.com/inamit/colman-WebApplications/internal/repository/postgres"
	"github.com/inamit/colman-WebApplications/internal/service/auth/tokencodec"
	"github.com/inamit/colman-WebApplications/internal/testutil"
)

func Test_Auth(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Begin new db transaction and create new AuthService
	// Rollback transaction when test stops
	withTx := func(dbpool *pgxpool.Pool, cfg Config, accessTTL time.Duration, refreshTTL time.Duration, t *testing.T, fn func(s *AuthService, refreshRepo *postgres.RefreshTokenRepo)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			userRepo := &postgres.UserRepo{DB: tx}
			refreshRepo := &postgres.RefreshTokenRepo{DB: tx}

			codec, err := tokencodec.New(tokencodec.Config{
				SecretKey:  "test-secret-key",
				AccessTTL:  accessTTL,
				RefreshTTL: refreshTTL,
			})
			require.NoError(t, err, "token codec should be created without errors")

			s, err := NewService(cfg, codec, userRepo, refreshRepo)
			require.NoError(t, err, "auth service couldn't be started")

			fn(s, refreshRepo)
		})
	}

	t.Run("new auth service defaults", func(t *testing.T) {
		codec, err := tokencodec.New(tokencodec.Config{SecretKey: "secret"})
		require.NoError(t, err)

		s, err := NewService(Config{}, codec, &postgres.UserRepo{DB: pg.Pool}, &postgres.RefreshTokenRepo{DB: pg.Pool})
		require.NoError(t, err, "auth service should be created without errors")

		require.Equal(t, BcryptHasher{}, s.hasher, "default hasher should be set to BcryptHasher")
		require.False(t, s.revokeOnLogout, "server-side revocation on logout is off by default")
	})

	t.Run("new auth service fails without deps", func(t *testing.T) {
		_, err := NewService(Config{}, nil, nil, nil)
		require.Error(t, err)
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("new user ok", func(t *testing.T) {
			withTx(pg.Pool, Config{}, 15*time.Minute, 24*time.Hour, t, func(s *AuthService, _ *postgres.RefreshTokenRepo) {
				user, err := s.Register(t.Context(), "Benli", "first@gmail.com", "password")

				require.NoError(t, err, "registering new user should be ok")
				require.Equal(t, "Benli", user.Username)
				require.Equal(t, "first@gmail.com", user.Email)
				require.NotEqual(t, "password", user.HashedPassword, "password must be stored hashed")
			})
		})

		t.Run("fail if user exists", func(t *testing.T) {
			withTx(pg.Pool, Config{}, 15*time.Minute, 24*time.Hour, t, func(s *AuthService, _ *postgres.RefreshTokenRepo) {
				_, err := s.Register(t.Context(), "Benli", "first@gmail.com", "password")
				require.NoError(t, err, "no error should happen if user not exists")

				_, err = s.Register(t.Context(), "Benli", "second@gmail.com", "other-pwd")

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("existing user ok", func(t *testing.T) {
			withTx(pg.Pool, Config{}, 15*time.Minute, 24*time.Hour, t, func(s *AuthService, refreshRepo *postgres.RefreshTokenRepo) {
				registered, err := s.Register(t.Context(), "Benli", "first@gmail.com", "password")
				require.NoError(t, err)

				user, pair, err := s.Login(t.Context(), "Benli", "password")

				require.NoError(t, err)
				require.Equal(t, registered.ID, user.ID)
				require.NotEmpty(t, pair.Access.Value, "access token should not be empty")
				require.NotEmpty(t, pair.Refresh.Value, "refresh token should not be empty")

				stored, err := refreshRepo.Contains(t.Context(), user.ID, pair.Refresh.Value)
				require.NoError(t, err)
				require.True(t, stored, "refresh token must be in the user's valid set after login")
			})
		})

		tests := []struct {
			name        string
			login       string
			password    string
			expectedErr error
		}{
			{
				name:        "login fail if wrong password",
				login:       "Benli",
				password:    "wrong",
				expectedErr: apperrors.ErrInvalidCredentials,
			},
			{
				name:        "login fail if user not exists",
				login:       "not-existed-user",
				password:    "password",
				expectedErr: apperrors.ErrUserNotFound,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				withTx(pg.Pool, Config{}, 15*time.Minute, 24*time.Hour, t, func(s *AuthService, _ *postgres.RefreshTokenRepo) {
					_, err := s.Register(t.Context(), "Benli", "first@gmail.com", "password")
					require.NoError(t, err)

					_, _, err = s.Login(t.Context(), tt.login, tt.password)

					require.Error(t, err)
					require.ErrorIs(t, err, tt.expectedErr)
				})
			})
		}
	})

	t.Run("RefreshPair", func(t *testing.T) {
		t.Run("refresh once ok", func(t *testing.T) {
			withTx(pg.Pool, Config{}, 15*time.Minute, 24*time.Hour, t, func(s *AuthService, refreshRepo *postgres.RefreshTokenRepo) {
				_, err := s.Register(t.Context(), "Benli", "first@gmail.com", "password")
				require.NoError(t, err)
				user, initialPair, err := s.Login(t.Context(), "Benli", "password")
				require.NoError(t, err)

				refreshed, newPair, err := s.RefreshPair(t.Context(), initialPair.Refresh.Value)

				require.NoError(t, err)
				require.Equal(t, user.ID, refreshed.ID)
				require.NotEqual(t, initialPair.Access.Value, newPair.Access.Value, "new access token should be different")
				require.NotEqual(t, initialPair.Refresh.Value, newPair.Refresh.Value, "new refresh token should be different")

				// The presented token is consumed, the new one takes its place
				gone, err := refreshRepo.Contains(t.Context(), user.ID, initialPair.Refresh.Value)
				require.NoError(t, err)
				require.False(t, gone, "used refresh token must leave the valid set")

				stored, err := refreshRepo.Contains(t.Context(), user.ID, newPair.Refresh.Value)
				require.NoError(t, err)
				require.True(t, stored, "rotated refresh token must be in the valid set")
			})
		})

		t.Run("replay wipes all sessions", func(t *testing.T) {
			withTx(pg.Pool, Config{}, 15*time.Minute, 24*time.Hour, t, func(s *AuthService, refreshRepo *postgres.RefreshTokenRepo) {
				_, err := s.Register(t.Context(), "Benli", "first@gmail.com", "password")
				require.NoError(t, err)
				user, initialPair, err := s.Login(t.Context(), "Benli", "password")
				require.NoError(t, err)

				// A second device logs in too
				_, otherPair, err := s.Login(t.Context(), "Benli", "password")
				require.NoError(t, err)

				// Use refresh token once - should work
				_, _, err = s.RefreshPair(t.Context(), initialPair.Refresh.Value)
				require.NoError(t, err)

				// Replaying the same token must fail and invalidate the whole family
				_, _, err = s.RefreshPair(t.Context(), initialPair.Refresh.Value)
				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrInvalidToken)

				stored, err := refreshRepo.Contains(t.Context(), user.ID, otherPair.Refresh.Value)
				require.NoError(t, err)
				require.False(t, stored, "replay must revoke every stored refresh token for the user")
			})
		})

		t.Run("fail if expired", func(t *testing.T) {
			withTx(pg.Pool, Config{}, 1*time.Second, 1*time.Second, t, func(s *AuthService, _ *postgres.RefreshTokenRepo) {
				_, err := s.Register(t.Context(), "Benli", "first@gmail.com", "password")
				require.NoError(t, err)
				_, initialPair, err := s.Login(t.Context(), "Benli", "password")
				require.NoError(t, err)

				// Move time forward to make sure refresh token is expired
				time.Sleep(time.Second)

				_, _, err = s.RefreshPair(t.Context(), initialPair.Refresh.Value)
				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrInvalidToken, "should return error if token expired")
			})
		})

		t.Run("fail if token missing", func(t *testing.T) {
			withTx(pg.Pool, Config{}, 15*time.Minute, 24*time.Hour, t, func(s *AuthService, _ *postgres.RefreshTokenRepo) {
				_, _, err := s.RefreshPair(t.Context(), "")
				require.ErrorIs(t, err, apperrors.ErrInvalidToken)
			})
		})
	})

	t.Run("Logout", func(t *testing.T) {
		t.Run("default policy keeps the store untouched", func(t *testing.T) {
			withTx(pg.Pool, Config{}, 15*time.Minute, 24*time.Hour, t, func(s *AuthService, refreshRepo *postgres.RefreshTokenRepo) {
				_, err := s.Register(t.Context(), "Benli", "first@gmail.com", "password")
				require.NoError(t, err)
				user, pair, err := s.Login(t.Context(), "Benli", "password")
				require.NoError(t, err)

				require.NoError(t, s.Logout(t.Context(), pair.Refresh.Value))

				stored, err := refreshRepo.Contains(t.Context(), user.ID, pair.Refresh.Value)
				require.NoError(t, err)
				require.True(t, stored, "default logout only clears client state")
			})
		})

		t.Run("hardened policy revokes the presented token", func(t *testing.T) {
			withTx(pg.Pool, Config{RevokeOnLogout: true}, 15*time.Minute, 24*time.Hour, t, func(s *AuthService, refreshRepo *postgres.RefreshTokenRepo) {
				_, err := s.Register(t.Context(), "Benli", "first@gmail.com", "password")
				require.NoError(t, err)
				user, pair, err := s.Login(t.Context(), "Benli", "password")
				require.NoError(t, err)

				require.NoError(t, s.Logout(t.Context(), pair.Refresh.Value))

				stored, err := refreshRepo.Contains(t.Context(), user.ID, pair.Refresh.Value)
				require.NoError(t, err)
				require.False(t, stored, "hardened logout removes the token server side")

				// And the logged-out token can't be used to refresh
				_, _, err = s.RefreshPair(t.Context(), pair.Refresh.Value)
				require.ErrorIs(t, err, apperrors.ErrInvalidToken)
			})
		})
	})
}
