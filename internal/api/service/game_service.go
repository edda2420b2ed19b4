package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ctchen222/Gomoku/internal/api/models"
	"ctchen222/Gomoku/internal/game"
	"ctchen222/Gomoku/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("service.game")

// GameService defines the interface for game-related business logic.
type GameService interface {
	Create(ctx context.Context) (models.Game, error)
	Get(ctx context.Context, id string) (models.Game, error)
	Play(ctx context.Context, id string, row, col int) (models.Game, error)
	Reset(ctx context.Context, id string) (models.Game, error)
	Delete(ctx context.Context, id string) error
}

// Option configures a GameService.
type Option func(*gameService)

// WithGameOptions sets the engine options every new game is created with.
func WithGameOptions(opts ...game.Option) Option {
	return func(s *gameService) { s.gameOpts = append(s.gameOpts, opts...) }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *gameService) { s.meterProvider = mp }
}

// WithIDGenerator overrides how new game IDs are made.
func WithIDGenerator(newID func() string) Option {
	return func(s *gameService) { s.newID = newID }
}

type gameService struct {
	gameRepo      repository.GameRepository
	gameOpts      []game.Option
	locks         *keyedMutex
	newID         func() string
	meterProvider metric.MeterProvider

	gamesCreated  metric.Int64Counter
	movesPlayed   metric.Int64Counter
	movesRejected metric.Int64Counter
	gamesFinished metric.Int64Counter
}

// NewGameService creates a new GameService on top of gameRepo.
func NewGameService(gameRepo repository.GameRepository, opts ...Option) GameService {
	s := &gameService{
		gameRepo:      gameRepo,
		locks:         newKeyedMutex(),
		newID:         uuid.NewString,
		meterProvider: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := s.meterProvider.Meter("service.game")
	s.gamesCreated = newCounter(meter, "gomoku.games.created", "Number of games created")
	s.movesPlayed = newCounter(meter, "gomoku.moves.played", "Number of accepted moves")
	s.movesRejected = newCounter(meter, "gomoku.moves.rejected", "Number of rejected moves")
	s.gamesFinished = newCounter(meter, "gomoku.games.finished", "Number of games that ended in a win or a draw")
	return s
}

func newCounter(meter metric.Meter, name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		slog.Error("Failed to create counter, metrics disabled for it", "metric.name", name, "error", err)
		return noop.Int64Counter{}
	}
	return counter
}

// Create starts a fresh game under a new ID.
func (s *gameService) Create(ctx context.Context) (models.Game, error) {
	ctx, span := tracer.Start(ctx, "GameService.Create")
	defer span.End()

	engine, err := game.NewEngine(s.gameOpts...)
	if err != nil {
		return models.Game{}, fail(span, fmt.Errorf("failed to create engine: %w", err))
	}

	g := models.Game{ID: s.newID(), State: engine.State()}
	span.SetAttributes(attribute.String("game.id", g.ID))

	if err := s.gameRepo.Create(ctx, g.ID, g.State); err != nil {
		return models.Game{}, fail(span, fmt.Errorf("failed to store new game: %w", err))
	}

	s.gamesCreated.Add(ctx, 1)
	slog.InfoContext(ctx, "Game created", "game.id", g.ID, "game.size", g.State.Size, "game.win_length", g.State.WinLength)
	return g, nil
}

// Get returns the stored state of a game.
func (s *gameService) Get(ctx context.Context, id string) (models.Game, error) {
	ctx, span := tracer.Start(ctx, "GameService.Get", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	state, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		return models.Game{}, fail(span, err)
	}
	return models.Game{ID: id, State: state}, nil
}

// Play applies a move for the player to move. A rejected move returns the
// unchanged game along with the engine's error.
func (s *gameService) Play(ctx context.Context, id string, row, col int) (models.Game, error) {
	ctx, span := tracer.Start(ctx, "GameService.Play", trace.WithAttributes(
		attribute.String("game.id", id),
		attribute.Int("move.row", row),
		attribute.Int("move.col", col),
	))
	defer span.End()

	unlock := s.locks.Lock(id)
	defer unlock()

	engine, err := s.load(ctx, id)
	if err != nil {
		return models.Game{}, fail(span, err)
	}

	mover := engine.CurrentPlayer()
	state, err := engine.Play(row, col)
	if err != nil {
		s.movesRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectReason(err))))
		slog.InfoContext(ctx, "Move rejected", "game.id", id, "move.row", row, "move.col", col, "error", err)
		span.RecordError(err)
		return models.Game{ID: id, State: state}, err
	}

	if err := s.gameRepo.Save(ctx, id, state); err != nil {
		return models.Game{}, fail(span, fmt.Errorf("failed to save move: %w", err))
	}

	s.movesPlayed.Add(ctx, 1, metric.WithAttributes(attribute.String("player", string(mover))))
	slog.DebugContext(ctx, "Move played", "game.id", id, "move.row", row, "move.col", col, "move.player", mover)

	if state.Status.IsTerminal() {
		s.gamesFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("result", resultLabel(state))))
		slog.InfoContext(ctx, "Game finished", "game.id", id, "game.status", state.Status, "game.winner", state.Winner, "game.moves", state.Moves)
	}
	return models.Game{ID: id, State: state}, nil
}

// Reset starts the game over with the same dimensions.
func (s *gameService) Reset(ctx context.Context, id string) (models.Game, error) {
	ctx, span := tracer.Start(ctx, "GameService.Reset", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	unlock := s.locks.Lock(id)
	defer unlock()

	engine, err := s.load(ctx, id)
	if err != nil {
		return models.Game{}, fail(span, err)
	}

	state := engine.Reset()
	if err := s.gameRepo.Save(ctx, id, state); err != nil {
		return models.Game{}, fail(span, fmt.Errorf("failed to save reset game: %w", err))
	}

	slog.InfoContext(ctx, "Game reset", "game.id", id)
	return models.Game{ID: id, State: state}, nil
}

// Delete discards a game.
func (s *gameService) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "GameService.Delete", trace.WithAttributes(attribute.String("game.id", id)))
	defer span.End()

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.gameRepo.Delete(ctx, id); err != nil {
		return fail(span, err)
	}

	slog.InfoContext(ctx, "Game deleted", "game.id", id)
	return nil
}

// load rehydrates the engine for a stored game.
func (s *gameService) load(ctx context.Context, id string) (*game.Engine, error) {
	state, err := s.gameRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	engine, err := game.Restore(state)
	if err != nil {
		slog.ErrorContext(ctx, "Stored game is corrupt", "game.id", id, "error", err)
		return nil, fmt.Errorf("failed to restore game %s: %w", id, err)
	}
	return engine, nil
}

func fail(span trace.Span, err error) error {
	if !errors.Is(err, repository.ErrGameNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, game.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, game.ErrCellOccupied):
		return "occupied"
	case errors.Is(err, game.ErrGameOver):
		return "game_over"
	default:
		return "other"
	}
}

func resultLabel(s game.State) string {
	if s.Status == game.StatusWin {
		return string(s.Winner)
	}
	return string(s.Status)
}
