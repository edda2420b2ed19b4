package models

import (
	"ctchen222/Gomoku/internal/game"
	"ctchen222/Gomoku/internal/i18n"

	"golang.org/x/text/message"
)

// Game is a stored game session together with its ID.
type Game struct {
	ID    string
	State game.State
}

// MoveRequest defines the structure for a move request.
type MoveRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

// GameResponse is the JSON view of a game. Message and CurrentPlayerLabel
// are localised.
type GameResponse struct {
	ID                 string         `json:"id"`
	Size               int            `json:"size"`
	WinLength          int            `json:"winLength"`
	Board              game.Board     `json:"board"`
	Next               game.Stone     `json:"next"`
	Status             game.Status    `json:"status"`
	Winner             game.Stone     `json:"winner,omitempty"`
	Moves              int            `json:"moves"`
	LastMove           *game.Position `json:"lastMove,omitempty"`
	CurrentPlayerLabel string         `json:"currentPlayerLabel"`
	Message            string         `json:"message"`
}

// NewGameResponse renders g with labels from p.
func NewGameResponse(g Game, p *message.Printer) GameResponse {
	s := g.State
	return GameResponse{
		ID:                 g.ID,
		Size:               s.Size,
		WinLength:          s.WinLength,
		Board:              s.Board,
		Next:               s.Next,
		Status:             s.Status,
		Winner:             s.Winner,
		Moves:              s.Moves,
		LastMove:           s.LastMove,
		CurrentPlayerLabel: i18n.PlayerLabel(p, s.Next),
		Message:            StatusMessage(p, s),
	}
}

// StatusMessage is the result text once the game is over, otherwise whose turn it is.
func StatusMessage(p *message.Printer, s game.State) string {
	if s.Status.IsTerminal() {
		return i18n.ResultMessage(p, s)
	}
	return i18n.TurnMessage(p, s)
}
