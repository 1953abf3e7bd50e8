package controller

import (
	"ctchen222/tictactoe-solo/internal/api/middleware"
	"ctchen222/tictactoe-solo/internal/api/models"
	"ctchen222/tictactoe-solo/internal/api/response"
	apiservice "ctchen222/tictactoe-solo/internal/api/service"
	"ctchen222/tictactoe-solo/internal/game"
	"ctchen222/tictactoe-solo/internal/repository"
	"ctchen222/tictactoe-solo/internal/service"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GameController handles game-session HTTP requests.
type GameController struct {
	games  service.GameService
	tokens apiservice.TokenService
}

// NewGameController creates a new GameController.
func NewGameController(games service.GameService, tokens apiservice.TokenService) *GameController {
	return &GameController{
		games:  games,
		tokens: tokens,
	}
}

// Create starts a session and hands out the token that controls it.
func (gc *GameController) Create(c *gin.Context) {
	ctx := c.Request.Context()

	id, state, err := gc.games.NewGame(ctx)
	if err != nil {
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := gc.tokens.Issue(id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to issue session token", "game.id", id, "error", err)
		if endErr := gc.games.EndGame(ctx, id); endErr != nil {
			slog.WarnContext(ctx, "Failed to drop orphaned game", "game.id", id, "error", endErr)
		}
		response.ErrorResponse(c, http.StatusInternalServerError, "failed to issue session token")
		return
	}

	response.SuccessResponseCode(c, http.StatusCreated, models.NewGameResponse{
		GameID: id,
		Token:  token,
		State:  models.NewGameStateResponse(state),
	})
}

// Get returns the session's current state.
func (gc *GameController) Get(c *gin.Context) {
	state, err := gc.games.CurrentState(c.Request.Context(), sessionID(c))
	if err != nil {
		gc.fail(c, err)
		return
	}
	response.SuccessResponse(c, models.NewGameStateResponse(state))
}

// PlaceMark handles the place-mark endpoint.
func (gc *GameController) PlaceMark(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	state, err := gc.games.PlaceMark(c.Request.Context(), sessionID(c), *req.Row, *req.Col)
	if err != nil {
		var illegal *game.IllegalMoveError
		if errors.As(err, &illegal) {
			response.IllegalMoveResponse(c, illegalMoveStatus(illegal.Kind), string(illegal.Kind), illegal.Error(),
				models.NewGameStateResponse(state))
			return
		}
		gc.fail(c, err)
		return
	}
	response.SuccessResponse(c, models.NewGameStateResponse(state))
}

// Reset handles the reset endpoint.
func (gc *GameController) Reset(c *gin.Context) {
	state, err := gc.games.Reset(c.Request.Context(), sessionID(c))
	if err != nil {
		gc.fail(c, err)
		return
	}
	response.SuccessResponse(c, models.NewGameStateResponse(state))
}

// Delete ends the session.
func (gc *GameController) Delete(c *gin.Context) {
	if err := gc.games.EndGame(c.Request.Context(), sessionID(c)); err != nil {
		gc.fail(c, err)
		return
	}
	response.SuccessResponse(c, gin.H{"message": "Game ended"})
}

// sessionID is the game the request's token was verified for.
func sessionID(c *gin.Context) string {
	return c.GetString(middleware.GameIDKey)
}

func (gc *GameController) fail(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrGameNotFound) {
		response.ErrorResponse(c, http.StatusNotFound, "game not found")
		return
	}
	response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
}

func illegalMoveStatus(kind game.IllegalMoveKind) int {
	if kind == game.OutOfRange {
		return http.StatusUnprocessableEntity
	}
	return http.StatusConflict
}
