package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"ctchen222/Gomoku/internal/api/service"
	"ctchen222/Gomoku/internal/game"
	"ctchen222/Gomoku/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Extras  json.RawMessage `json:"extras"`
}

type gameView struct {
	ID                 string         `json:"id"`
	Board              [][]string     `json:"board"`
	Next               string         `json:"next"`
	Status             string         `json:"status"`
	Winner             string         `json:"winner"`
	Moves              int            `json:"moves"`
	LastMove           *game.Position `json:"lastMove"`
	CurrentPlayerLabel string         `json:"currentPlayerLabel"`
	Message            string         `json:"message"`
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := service.NewGameService(repository.NewMemoryGameRepository(0))
	NewGameController(svc).Register(r.Group("/api"))
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func decodeGame(t *testing.T, env envelope) gameView {
	t.Helper()
	var v gameView
	require.NoError(t, json.Unmarshal(env.Extras, &v))
	return v
}

func createGame(t *testing.T, r http.Handler) gameView {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/games", "")
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeGame(t, env)
}

func TestGameController_Create(t *testing.T) {
	r := setupRouter()

	w, env := do(t, r, http.MethodPost, "/api/games", "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.Code)

	g := decodeGame(t, env)
	assert.NotEmpty(t, g.ID)
	assert.Len(t, g.Board, game.DefaultBoardSize)
	assert.Equal(t, "black", g.Next)
	assert.Equal(t, "in_progress", g.Status)
	assert.Equal(t, "Black", g.CurrentPlayerLabel)
	assert.Equal(t, "Black to move", g.Message)
}

func TestGameController_PlayAndGet(t *testing.T) {
	r := setupRouter()
	g := createGame(t, r)

	w, env := do(t, r, http.MethodPost, "/api/games/"+g.ID+"/moves", `{"row":7,"col":7}`)
	require.Equal(t, http.StatusOK, w.Code)
	played := decodeGame(t, env)
	assert.Equal(t, "black", played.Board[7][7])
	assert.Equal(t, "white", played.Next)
	assert.Equal(t, &game.Position{Row: 7, Col: 7}, played.LastMove)

	w, env = do(t, r, http.MethodGet, "/api/games/"+g.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, played, decodeGame(t, env))
}

func TestGameController_Play_Errors(t *testing.T) {
	r := setupRouter()
	g := createGame(t, r)
	w, _ := do(t, r, http.MethodPost, "/api/games/"+g.ID+"/moves", `{"row":0,"col":0}`)
	require.Equal(t, http.StatusOK, w.Code)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{name: "occupied cell", path: "/api/games/" + g.ID + "/moves", body: `{"row":0,"col":0}`, wantCode: http.StatusConflict},
		{name: "out of bounds", path: "/api/games/" + g.ID + "/moves", body: `{"row":15,"col":0}`, wantCode: http.StatusBadRequest},
		{name: "negative coordinate", path: "/api/games/" + g.ID + "/moves", body: `{"row":-1,"col":3}`, wantCode: http.StatusBadRequest},
		{name: "missing col", path: "/api/games/" + g.ID + "/moves", body: `{"row":1}`, wantCode: http.StatusBadRequest},
		{name: "malformed body", path: "/api/games/" + g.ID + "/moves", body: `{"row":`, wantCode: http.StatusBadRequest},
		{name: "unknown game", path: "/api/games/unknown/moves", body: `{"row":1,"col":1}`, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestGameController_WinMessageLocalised(t *testing.T) {
	r := setupRouter()
	g := createGame(t, r)

	var env envelope
	for col := 0; col < 5; col++ {
		_, env = do(t, r, http.MethodPost, "/api/games/"+g.ID+"/moves", `{"row":7,"col":`+strconv.Itoa(col)+`}`)
		if col < 4 {
			do(t, r, http.MethodPost, "/api/games/"+g.ID+"/moves", `{"row":0,"col":`+strconv.Itoa(col)+`}`)
		}
	}
	won := decodeGame(t, env)
	assert.Equal(t, "win", won.Status)
	assert.Equal(t, "black", won.Winner)
	assert.Equal(t, "Black wins", won.Message)

	_, env = do(t, r, http.MethodGet, "/api/games/"+g.ID+"?lang=zh", "")
	assert.Equal(t, "黑棋获胜！", decodeGame(t, env).Message)

	_, env = do(t, r, http.MethodGet, "/api/games/"+g.ID, "", "Accept-Language", "zh-CN,zh;q=0.9")
	assert.Equal(t, "黑棋获胜！", decodeGame(t, env).Message)

	w, _ := do(t, r, http.MethodPost, "/api/games/"+g.ID+"/moves", `{"row":3,"col":3}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGameController_ResetAndDelete(t *testing.T) {
	r := setupRouter()
	g := createGame(t, r)
	do(t, r, http.MethodPost, "/api/games/"+g.ID+"/moves", `{"row":4,"col":4}`)

	w, env := do(t, r, http.MethodPost, "/api/games/"+g.ID+"/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	reset := decodeGame(t, env)
	assert.Equal(t, 0, reset.Moves)
	assert.Equal(t, "black", reset.Next)
	assert.Equal(t, "", reset.Board[4][4])

	w, _ = do(t, r, http.MethodDelete, "/api/games/"+g.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/games/"+g.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = do(t, r, http.MethodDelete, "/api/games/"+g.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{repository.ErrGameNotFound, http.StatusNotFound},
		{game.ErrCellOccupied, http.StatusConflict},
		{game.ErrGameOver, http.StatusConflict},
		{game.ErrOutOfBounds, http.StatusBadRequest},
		{game.ErrInvalidState, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}
