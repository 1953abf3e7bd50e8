package cmd

import (
	"context"
	"crypto/rand"
	"ctchen222/tictactoe-solo/internal/api/service"
	"ctchen222/tictactoe-solo/internal/config"
	"ctchen222/tictactoe-solo/internal/db"
	"ctchen222/tictactoe-solo/internal/logger"
	"ctchen222/tictactoe-solo/internal/notifier"
	"ctchen222/tictactoe-solo/internal/repository"
	"ctchen222/tictactoe-solo/internal/server"
	gameservice "ctchen222/tictactoe-solo/internal/service"
	"ctchen222/tictactoe-solo/internal/telemetry"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const updateBuffer = 8

func Serve() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		Long: heredoc.Doc(`serve runs the game server. Each POST /api/games starts
			a session and returns a token; the token authorises moves
			and resets on that session over HTTP and /ws.

			Configuration is read from the file given with --config,
			which must exist, and from environment variables (HTTP_ADDR,
			STORE, REDIS_CONNSTRING, JWT_SECRET, OTEL_EXPORTER_OTLP_ENDPOINT, ...).`),
		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger.Init(cfg.Log)
	gin.SetMode(gin.ReleaseMode)

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	broker := notifier.NewBroker(updateBuffer)
	var (
		gameRepo  repository.GameRepository
		publisher gameservice.Publisher = broker
	)
	if cfg.Store == config.StoreRedis {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Warn("Error closing redis client", "error", err)
			}
		}()

		relay := notifier.NewRedisRelay(rdb, broker)
		if err := relay.Start(ctx); err != nil {
			return err
		}
		gameRepo = repository.NewRedisGameRepository(rdb, cfg.Redis.TTL)
		publisher = relay
		slog.InfoContext(ctx, "Using redis game store", "redis.addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	} else {
		gameRepo = repository.NewMemoryGameRepository()
		slog.InfoContext(ctx, "Using in-memory game store")
	}

	secret, err := jwtSecret(cfg.Auth)
	if err != nil {
		return err
	}

	games := gameservice.NewGameService(gameRepo, publisher)
	tokens := service.NewTokenService(secret, cfg.Auth.TokenTTL)

	srv := server.NewServer(games, tokens, broker, cfg.WS)
	if err := srv.Run(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// jwtSecret falls back to a random per-process secret, which invalidates
// every token on restart.
func jwtSecret(cfg config.Auth) ([]byte, error) {
	if cfg.JWTSecret != "" {
		return []byte(cfg.JWTSecret), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate jwt secret: %w", err)
	}
	slog.Warn("JWT_SECRET is not set; using a random secret for this process")
	return secret, nil
}
