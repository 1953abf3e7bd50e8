package server

import (
	"context"
	"ctchen222/tictactoe-solo/internal/api/controller"
	"ctchen222/tictactoe-solo/internal/api/middleware"
	"ctchen222/tictactoe-solo/internal/api/response"
	apiservice "ctchen222/tictactoe-solo/internal/api/service"
	"ctchen222/tictactoe-solo/internal/config"
	"ctchen222/tictactoe-solo/internal/notifier"
	"ctchen222/tictactoe-solo/internal/service"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("server")

// Subscriber hands out per-game update streams.
type Subscriber interface {
	Subscribe(gameID string) (<-chan notifier.Update, func())
}

type Server struct {
	engine   *gin.Engine
	games    service.GameService
	tokens   apiservice.TokenService
	updates  Subscriber
	upgrader websocket.Upgrader
}

func NewServer(games service.GameService, tokens apiservice.TokenService, updates Subscriber, wsCfg config.WebSocket) *Server {
	s := &Server{
		engine:  gin.New(),
		games:   games,
		tokens:  tokens,
		updates: updates,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(wsCfg.AllowedOrigins),
		},
	}
	s.registerHandlers()
	return s
}

// Engine exposes the gin engine, mostly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler is the engine wrapped with OpenTelemetry HTTP instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.engine, "tictactoe.http")
}

func (s *Server) registerHandlers() {
	s.engine.Use(gin.Recovery(), requestLogger())

	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})

	games := controller.NewGameController(s.games, s.tokens)
	api := s.engine.Group("/api/games")
	api.POST("", games.Create)

	session := api.Group("/:id", middleware.RequireSession(s.tokens))
	session.GET("", games.Get)
	session.DELETE("", games.Delete)
	session.POST("/moves", games.PlaceMark)
	session.POST("/reset", games.Reset)

	s.engine.GET("/ws", s.handleWebSocket)
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "http server started", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("Server exiting")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.DebugContext(c.Request.Context(), "http request",
			"http.method", c.Request.Method,
			"http.route", c.FullPath(),
			"http.status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// checkOrigin allows requests without an Origin header, and otherwise only
// the listed origins. "*" allows any origin; an empty list falls back to
// the same-origin check.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
