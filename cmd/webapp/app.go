package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inamit/colman-WebApplications/internal/db"
	"github.com/inamit/colman-WebApplications/internal/handlers"
	"github.com/inamit/colman-WebApplications/internal/handlers/middleware"
	"github.com/inamit/colman-WebApplications/internal/handlers/transport"
	"github.com/inamit/colman-WebApplications/internal/logger"
	"github.com/inamit/colman-WebApplications/internal/repository"
	"github.com/inamit/colman-WebApplications/internal/repository/postgres"
	redisrepo "github.com/inamit/colman-WebApplications/internal/repository/redis"
	"github.com/inamit/colman-WebApplications/internal/service/auth"
	"github.com/inamit/colman-WebApplications/internal/service/auth/tokencodec"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	userRepo := &postgres.UserRepo{DB: pool}

	var refreshRepo repository.RefreshTokenRepo = &postgres.RefreshTokenRepo{DB: pool}
	if c.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
		}
		refreshRepo = redisrepo.NewRefreshTokenRepo(client, c.RefreshTokenTTL)
	}

	// Initialize services
	codec, err := tokencodec.New(tokencodec.Config{
		SecretKey:  c.SecretKey,
		AccessTTL:  c.AccessTokenTTL,
		RefreshTTL: c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token codec. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{RevokeOnLogout: c.RevokeOnLogout}, codec, userRepo, refreshRepo)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	// Initialize handlers
	tokenTransport, err := transport.New(c.TokenTransport)
	if err != nil {
		return nil, err
	}
	authHandler := handlers.NewAuth(authService, tokenTransport, log)

	mux := handlers.NewRouter(
		authHandler,
		authService,
		middleware.NewAuth(codec),
		middleware.NewLogging(log),
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     log,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
