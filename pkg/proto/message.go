package proto

import "ctchen222/Gomoku/internal/game"

// Client message types.
const (
	TypeMove  = "move"
	TypeReset = "reset"
	TypeState = "state"
)

// Server message types.
const (
	TypeUpdate = "update"
	TypeError  = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type     string `json:"type" validate:"required,oneof=move reset state"`
	Position []int  `json:"position,omitempty" validate:"required_if=Type move,omitempty,len=2"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type               string         `json:"type" validate:"required"`
	Reason             string         `json:"reason,omitempty"`
	GameID             string         `json:"gameId,omitempty"`
	Board              game.Board     `json:"board,omitempty"`
	Next               game.Stone     `json:"next,omitempty"`
	Status             game.Status    `json:"status,omitempty"`
	Winner             game.Stone     `json:"winner,omitempty"`
	Moves              int            `json:"moves,omitempty"`
	LastMove           *game.Position `json:"lastMove,omitempty"`
	Message            string         `json:"message,omitempty"`
	CurrentPlayerLabel string         `json:"currentPlayerLabel,omitempty"`
}
