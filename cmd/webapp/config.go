package main

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/inamit/colman-WebApplications/internal/handlers/transport"
	"github.com/inamit/colman-WebApplications/internal/logger"
	"github.com/inamit/colman-WebApplications/internal/service/auth/tokencodec"
)

const (
	defaultListenAddr     = "localhost:8000"
	defaultLoggingLevel   = logger.LevelInfo
	defaultEnvironment    = logger.EnvProduction
	defaultTokenTransport = transport.NameBody
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the webapp service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Optional redis address; when set refresh tokens are kept in redis
	// instead of postgres
	RedisAddr string

	// Secret key
	// Signing JWT tokens uses symmetric encryption, so this key is used for that purpose
	SecretKey string

	// Lifetimes of issued tokens
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// How tokens travel to the client: "body" or "cookie"
	TokenTransport string

	// Whether logout revokes the presented refresh token server side
	RevokeOnLogout bool

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:        defaultLoggingLevel,
		ListenAddr:      defaultListenAddr,
		Environment:     defaultEnvironment,
		AccessTokenTTL:  tokencodec.DefaultAccessTTL,
		RefreshTokenTTL: tokencodec.DefaultRefreshTTL,
		TokenTransport:  defaultTokenTransport,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}
	setDuration := func(o *time.Duration) func(value string) {
		return func(value string) {
			if d, err := time.ParseDuration(value); err == nil {
				*o = d
			}
		}
	}
	setBool := func(o *bool) func(value string) {
		return func(value string) {
			if b, err := strconv.ParseBool(value); err == nil {
				*o = b
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":       setString(&c.ListenAddr),
		"DATABASE_URI":      setString(&c.DatabaseDSN),
		"REDIS_ADDRESS":     setString(&c.RedisAddr),
		"SECRET_KEY":        setString(&c.SecretKey),
		"LOG_LEVEL":         setString(&c.LogLevel),
		"ENVIRONMENT":       setString(&c.Environment),
		"TOKEN_TRANSPORT":   setString(&c.TokenTransport),
		"ACCESS_TOKEN_TTL":  setDuration(&c.AccessTokenTTL),
		"REFRESH_TOKEN_TTL": setDuration(&c.RefreshTokenTTL),
		"REVOKE_ON_LOGOUT":  setBool(&c.RevokeOnLogout),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("webapp", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "Redis address for refresh token storage (optional)")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVarP(&c.TokenTransport, "transport", "t", c.TokenTransport, "Token transport (body, cookie)")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "Access token lifetime")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "Refresh token lifetime")
	fs.BoolVar(&c.RevokeOnLogout, "revoke-on-logout", c.RevokeOnLogout, "Revoke the presented refresh token on logout")

	return fs.Parse(args)
}

// Validate checks options the server can't run without
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return errors.New("secret key must be set")
	}
	if c.DatabaseDSN == "" {
		return errors.New("database DSN must be set")
	}
	return nil
}
