package middleware

import (
	"ctchen222/tictactoe-solo/internal/api/response"
	"ctchen222/tictactoe-solo/internal/api/service"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GameIDKey is the context key under which the authenticated game ID is stored.
const GameIDKey = "game.id"

// RequireSession checks the bearer token and that it was issued for the
// game named by the :id path parameter.
func RequireSession(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.AbortErrorResponse(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		gameID, err := tokens.Verify(token)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "Rejected session token", "error", err)
			response.AbortErrorResponse(c, http.StatusUnauthorized, "invalid session token")
			return
		}
		if id := c.Param("id"); id != "" && id != gameID {
			response.AbortErrorResponse(c, http.StatusUnauthorized, "token does not belong to this game")
			return
		}

		c.Set(GameIDKey, gameID)
		c.Next()
	}
}
