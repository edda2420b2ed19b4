package controller

import (
	"errors"
	"net/http"

	"ctchen222/Gomoku/internal/api/models"
	"ctchen222/Gomoku/internal/api/response"
	"ctchen222/Gomoku/internal/api/service"
	"ctchen222/Gomoku/internal/game"
	"ctchen222/Gomoku/internal/i18n"
	"ctchen222/Gomoku/internal/repository"

	"github.com/gin-gonic/gin"
)

// GameController handles game-related HTTP requests.
type GameController struct {
	gameService service.GameService
}

// NewGameController creates a new GameController.
func NewGameController(gameService service.GameService) *GameController {
	return &GameController{
		gameService: gameService,
	}
}

// Register mounts the game endpoints on r.
func (gc *GameController) Register(r gin.IRouter) {
	games := r.Group("/games")
	games.POST("", gc.Create)
	games.GET("/:id", gc.Get)
	games.POST("/:id/moves", gc.Play)
	games.POST("/:id/reset", gc.Reset)
	games.DELETE("/:id", gc.Delete)
}

// Create handles the new game endpoint.
func (gc *GameController) Create(c *gin.Context) {
	g, err := gc.gameService.Create(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	response.CreatedResponse(c, render(c, g))
}

// Get handles the game state endpoint.
func (gc *GameController) Get(c *gin.Context) {
	g, err := gc.gameService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessResponse(c, render(c, g))
}

// Play handles the move endpoint.
func (gc *GameController) Play(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	g, err := gc.gameService.Play(c.Request.Context(), c.Param("id"), *req.Row, *req.Col)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessResponse(c, render(c, g))
}

// Reset handles the restart endpoint.
func (gc *GameController) Reset(c *gin.Context) {
	g, err := gc.gameService.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessResponse(c, render(c, g))
}

// Delete handles the discard endpoint.
func (gc *GameController) Delete(c *gin.Context) {
	if err := gc.gameService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	response.SuccessResponseContent(c, "game deleted")
}

func render(c *gin.Context, g models.Game) models.GameResponse {
	return models.NewGameResponse(g, i18n.Printer(i18n.ResolveTag(c.Request)))
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrIllegalMove):
		return http.StatusConflict
	case errors.Is(err, game.ErrOutOfBounds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	code := StatusFor(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		message = http.StatusText(code)
	}
	response.ErrorResponse(c, code, message)
}
