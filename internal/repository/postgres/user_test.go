package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
	"github.com/inamit/colman-WebApplications/internal/testutil"
)

func Test_UserRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	t.Run("create user ok", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			user, err := repo.CreateUser(t.Context(), "Benli", "first@gmail.com", "hashed-password")

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, user.ID, "user id should be generated")
			assert.Equal(t, "Benli", user.Username)
			assert.Equal(t, "first@gmail.com", user.Email)
			assert.Equal(t, "hashed-password", user.HashedPassword)
			assert.False(t, user.CreatedAt.IsZero(), "created at should be set by the database")
		})
	})

	t.Run("create duplicate username fails", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			_, err := repo.CreateUser(t.Context(), "Benli", "first@gmail.com", "hashed-password")
			require.NoError(t, err)

			_, err = repo.CreateUser(t.Context(), "Benli", "second@gmail.com", "other-hash")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		})
	})

	t.Run("get user by username", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			created, err := repo.CreateUser(t.Context(), "Benli", "first@gmail.com", "hashed-password")
			require.NoError(t, err)

			got, err := repo.GetUserByUsername(t.Context(), "Benli")

			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, created.HashedPassword, got.HashedPassword)
		})
	})

	t.Run("get user by id", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			created, err := repo.CreateUser(t.Context(), "Benli", "first@gmail.com", "hashed-password")
			require.NoError(t, err)

			got, err := repo.GetUserByID(t.Context(), created.ID)

			require.NoError(t, err)
			assert.Equal(t, created.Username, got.Username)
		})
	})

	t.Run("not found errors", func(t *testing.T) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			repo := UserRepo{DB: tx}

			_, err := repo.GetUserByUsername(t.Context(), "nobody")
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

			_, err = repo.GetUserByID(t.Context(), uuid.New())
			assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		})
	})
}
