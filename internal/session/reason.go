package session

import (
	"errors"

	"ctchen222/Gomoku/internal/game"
	"ctchen222/Gomoku/internal/repository"
)

// Reasons carried by error messages.
const (
	ReasonInvalidMessage = "invalid_message"
	ReasonGameNotFound   = "game_not_found"
	ReasonCellOccupied   = "cell_occupied"
	ReasonGameOver       = "game_over"
	ReasonOutOfBounds    = "out_of_bounds"
	ReasonInternal       = "internal_error"
)

// ReasonFor maps a service error to the reason sent to the client.
func ReasonFor(err error) string {
	switch {
	case errors.Is(err, repository.ErrGameNotFound):
		return ReasonGameNotFound
	case errors.Is(err, game.ErrCellOccupied):
		return ReasonCellOccupied
	case errors.Is(err, game.ErrGameOver):
		return ReasonGameOver
	case errors.Is(err, game.ErrOutOfBounds):
		return ReasonOutOfBounds
	default:
		return ReasonInternal
	}
}
