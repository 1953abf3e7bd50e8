package server

import (
	"context"
	"ctchen222/tictactoe-solo/internal/api/response"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/notifier"
	"ctchen222/tictactoe-solo/internal/validator"
	"ctchen222/tictactoe-solo/pkg/proto"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// handleWebSocket attaches a connection to one game session. The session
// is named by the token query parameter.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.Path),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	gameID, err := s.tokens.Verify(c.Query("token"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid session token")
		response.ErrorResponse(c, http.StatusUnauthorized, "invalid session token")
		return
	}
	span.SetAttributes(attribute.String("game.id", gameID))

	// Subscribe before reading the snapshot so no transition falls in between.
	updates, unsubscribe := s.updates.Subscribe(gameID)
	snap, err := s.games.CurrentSnapshot(ctx, gameID)
	if err != nil {
		unsubscribe()
		span.RecordError(err)
		span.SetStatus(codes.Error, "Game not found")
		response.ErrorResponse(c, http.StatusNotFound, "game not found")
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		unsubscribe()
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	sess := &wsSession{
		server:  s,
		gameID:  gameID,
		conn:    conn,
		updates: updates,
		replies: make(chan *proto.ServerToClientMessage, 4),
	}
	if err := sess.write(proto.NewUpdateMessage(snap.State, snap.Revision)); err != nil {
		unsubscribe()
		conn.Close()
		span.RecordError(err)
		return
	}
	sess.sent = snap.Revision

	slog.InfoContext(ctx, "Player connected", "game.id", gameID)
	// Keep the trace, drop the request cancellation.
	sess.run(trace.ContextWithSpanContext(context.Background(), span.SpanContext()), unsubscribe)
}

type wsSession struct {
	server  *Server
	gameID  string
	conn    *websocket.Conn
	updates <-chan notifier.Update
	replies chan *proto.ServerToClientMessage
	// Revision of the newest state written; only writePump touches it
	// once it runs.
	sent int64
}

func (ws *wsSession) run(ctx context.Context, unsubscribe func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ws.writePump(ctx)
	}()

	ws.readPump(ctx)

	cancel()
	unsubscribe()
	<-done
	ws.conn.Close()
	slog.InfoContext(ctx, "Player disconnected", "game.id", ws.gameID)
}

// readPump applies client messages until the connection fails.
func (ws *wsSession) readPump(ctx context.Context) {
	ws.conn.SetReadLimit(maxMessageSize)
	_ = ws.conn.SetReadDeadline(time.Now().Add(pongWait))
	ws.conn.SetPongHandler(func(string) error {
		return ws.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := ws.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Player connection error", "game.id", ws.gameID, "error", err)
			}
			return
		}
		if reply := ws.handleMessage(ctx, raw); reply != nil {
			select {
			case ws.replies <- reply:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleMessage returns the direct reply to raw, if any. Successful
// transitions reach the client through the update stream instead.
func (ws *wsSession) handleMessage(ctx context.Context, raw []byte) *proto.ServerToClientMessage {
	ctx, span := tracer.Start(ctx, "server.handleMessage", trace.WithAttributes(
		attribute.String("game.id", ws.gameID),
	))
	defer span.End()

	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		span.RecordError(err)
		return proto.NewErrorMessage("bad_request", "malformed message")
	}
	if err := validator.Struct(&msg); err != nil {
		span.RecordError(err)
		return proto.NewErrorMessage("bad_request", err.Error())
	}
	span.SetAttributes(attribute.String("message.type", msg.Type))

	var err error
	switch msg.Type {
	case proto.TypeMove:
		_, err = ws.server.games.PlaceMark(ctx, ws.gameID, msg.Position[0], msg.Position[1])
	case proto.TypeReset:
		_, err = ws.server.games.Reset(ctx, ws.gameID)
	}
	if err == nil {
		return nil
	}

	var illegal *game.IllegalMoveError
	if errors.As(err, &illegal) {
		return proto.NewErrorMessage(string(illegal.Kind), illegal.Error())
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "Failed to handle message")
	return proto.NewErrorMessage("internal", err.Error())
}

// writePump is the connection's only writer.
func (ws *wsSession) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	// Unblocks readPump when a write fails.
	defer ws.conn.Close()

	for {
		var msg *proto.ServerToClientMessage
		select {
		case <-ctx.Done():
			_ = ws.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case update, ok := <-ws.updates:
			if !ok {
				return
			}
			if update.Revision <= ws.sent {
				continue
			}
			ws.sent = update.Revision
			msg = proto.NewUpdateMessage(update.State, update.Revision)
		case msg = <-ws.replies:
		case <-ticker.C:
			_ = ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		}

		if err := ws.write(msg); err != nil {
			slog.WarnContext(ctx, "error writing message to player", "game.id", ws.gameID, "error", err)
			return
		}
	}
}

func (ws *wsSession) write(msg *proto.ServerToClientMessage) error {
	_ = ws.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.conn.WriteJSON(msg)
}
