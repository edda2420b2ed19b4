package repository

//go:generate mockgen -destination=mocks/mock_game_repository.go -package=mocks ctchen222/Gomoku/internal/repository GameRepository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ctchen222/Gomoku/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.game")

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// GameRepository defines the interface for game data operations.
// Implementations store only the live session of each game.
type GameRepository interface {
	Create(ctx context.Context, id string, state game.State) error
	FindByID(ctx context.Context, id string) (game.State, error)
	Save(ctx context.Context, id string, state game.State) error
	Delete(ctx context.Context, id string) error
}

func gameKey(id string) string {
	return fmt.Sprintf("game:%s", id)
}

func encodeState(state game.State) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (game.State, error) {
	var state game.State
	if err := json.Unmarshal(data, &state); err != nil {
		return game.State{}, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return state, nil
}

func startSpan(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("game.id", id)))
}

// endSpan records err on span unless it is an expected lookup miss.
func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrGameNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
