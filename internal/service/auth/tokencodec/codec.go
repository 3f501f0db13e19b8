package tokencodec

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/inamit/colman-WebApplications/internal/apperrors"
	"github.com/inamit/colman-WebApplications/internal/models"
)

const (
	defaultSigningMethod = "HS256"

	// Token lifetimes used when Config leaves them zero
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour

	nonceBytesLen = 16
)

type AccessTokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
}

// RefreshTokenClaims add a random nonce so two refresh tokens issued
// for the same subject in the same instant are textually distinct.
type RefreshTokenClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
	Nonce  string    `json:"nonce"`
}

// Codec with sensible defaults
type Config struct {
	// Secret key to sign token payloads
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set than default is used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Codec creates and verifies signed time-limited tokens. It is
// stateless: verification needs only the secret, never the database.
type Codec struct {
	// Secret key to sign token payloads
	key string

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func New(cfg Config) (*Codec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, DefaultAccessTTL)
	setDefaultDuration(&cfg.RefreshTTL, DefaultRefreshTTL)

	return &Codec{
		key:        cfg.SecretKey,
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// IssueAccess creates a signed access token for the subject
func (c *Codec) IssueAccess(userID uuid.UUID) (models.IssuedToken, error) {
	if c.key == "" {
		return models.IssuedToken{}, apperrors.ErrMissingSecret
	}

	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(c.accessTTL)

	token := jwt.NewWithClaims(
		c.alg,
		AccessTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: userID,
		},
	)
	signed, err := token.SignedString([]byte(c.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// IssueRefresh creates a signed refresh token carrying a fresh random nonce
func (c *Codec) IssueRefresh(userID uuid.UUID) (models.IssuedToken, error) {
	if c.key == "" {
		return models.IssuedToken{}, apperrors.ErrMissingSecret
	}

	b := make([]byte, nonceBytesLen)
	if _, err := rand.Read(b); err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while generating nonce. Err: %w", err)
	}

	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(c.refreshTTL)

	token := jwt.NewWithClaims(
		c.alg,
		RefreshTokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: userID,
			Nonce:  hex.EncodeToString(b),
		},
	)
	signed, err := token.SignedString([]byte(c.key))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// ParseAccess validates an access token and returns its subject
func (c *Codec) ParseAccess(access string) (uuid.UUID, error) {
	if c.key == "" {
		return uuid.Nil, apperrors.ErrMissingSecret
	}

	claims := &AccessTokenClaims{}
	if err := c.parse(access, claims); err != nil {
		return uuid.Nil, err
	}

	return claims.UserID, nil
}

// ParseRefresh validates a refresh token and returns its subject and nonce
func (c *Codec) ParseRefresh(refresh string) (userID uuid.UUID, nonce string, err error) {
	if c.key == "" {
		return uuid.Nil, "", apperrors.ErrMissingSecret
	}

	claims := &RefreshTokenClaims{}
	if err := c.parse(refresh, claims); err != nil {
		return uuid.Nil, "", err
	}

	return claims.UserID, claims.Nonce, nil
}

func (c *Codec) parse(tokenString string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(c.key), nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, err)
	}

	return nil
}
