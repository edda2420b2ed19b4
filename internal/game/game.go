package game

import (
	"errors"
	"fmt"
	"sync"
)

const (
	DefaultBoardSize = 15
	DefaultWinLength = 5
)

var (
	// ErrIllegalMove is the parent of every rejected-but-valid move attempt.
	ErrIllegalMove  = errors.New("illegal move")
	ErrCellOccupied = fmt.Errorf("%w: cell already occupied", ErrIllegalMove)
	ErrGameOver     = fmt.Errorf("%w: game already finished", ErrIllegalMove)

	ErrOutOfBounds    = errors.New("position out of bounds")
	ErrInvalidOptions = errors.New("invalid game options")
	ErrInvalidState   = errors.New("invalid game state")
)

// State is a read-only snapshot of a game. The board is a deep copy.
type State struct {
	Size      int       `json:"size"`
	WinLength int       `json:"winLength"`
	Board     Board     `json:"board"`
	Next      Stone     `json:"next"`
	Status    Status    `json:"status"`
	Winner    Stone     `json:"winner,omitempty"`
	Moves     int       `json:"moves"`
	LastMove  *Position `json:"lastMove,omitempty"`
}

// Message returns the terminal result text, or "" while the game is running.
func (s State) Message() string {
	switch s.Status {
	case StatusWin:
		return s.Winner.Label() + " wins"
	case StatusDraw:
		return "Draw"
	default:
		return ""
	}
}

// Option configures a new Engine.
type Option func(*Engine)

// WithSize sets the side length of the board.
func WithSize(n int) Option {
	return func(e *Engine) { e.size = n }
}

// WithWinLength sets how many stones in a row win.
func WithWinLength(k int) Option {
	return func(e *Engine) { e.winLength = k }
}

// Engine enforces the Gomoku rules and owns the authoritative game state.
// All methods are safe for concurrent use; Play is a single critical section.
type Engine struct {
	mu        sync.Mutex
	size      int
	winLength int

	board    Board
	current  Stone
	status   Status
	winner   Stone
	moves    int
	lastMove *Position
}

// NewEngine creates a fresh game: empty board, Black to move, in progress.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		size:      DefaultBoardSize,
		winLength: DefaultWinLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := validateDimensions(e.size, e.winLength); err != nil {
		return nil, err
	}
	e.reset()
	return e, nil
}

// Restore rebuilds an engine from a snapshot, rejecting snapshots that no
// legal sequence of moves could have produced.
func Restore(s State) (*Engine, error) {
	if err := validateDimensions(s.Size, s.WinLength); err != nil {
		return nil, err
	}
	if err := validateState(s); err != nil {
		return nil, err
	}

	e := &Engine{
		size:      s.Size,
		winLength: s.WinLength,
		board:     s.Board.Clone(),
		current:   s.Next,
		status:    s.Status,
		winner:    s.Winner,
		moves:     s.Moves,
	}
	if s.LastMove != nil {
		last := *s.LastMove
		e.lastMove = &last
	}
	return e, nil
}

// Play places the current player's stone at (row, col), then resolves a win,
// a draw, or passes the turn. A rejected move leaves the game untouched and
// returns the unchanged snapshot together with the error.
func (e *Engine) Play(row, col int) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.board.InBounds(row, col) {
		return e.snapshot(), fmt.Errorf("%w: (%d, %d) on %dx%d board", ErrOutOfBounds, row, col, e.size, e.size)
	}
	if e.status != StatusInProgress {
		return e.snapshot(), ErrGameOver
	}
	if e.board[row][col] != None {
		return e.snapshot(), ErrCellOccupied
	}

	e.board[row][col] = e.current
	e.moves++
	e.lastMove = &Position{Row: row, Col: col}

	switch {
	case e.board.wins(row, col, e.winLength):
		e.status = StatusWin
		e.winner = e.current
	case e.board.IsFull():
		e.status = StatusDraw
	default:
		e.current = e.current.Opponent()
	}

	return e.snapshot(), nil
}

// Reset discards the current game and starts a new one with the same dimensions.
func (e *Engine) Reset() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset()
	return e.snapshot()
}

// State returns a snapshot of the whole game.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Board returns a copy of the current board.
func (e *Engine) Board() Board {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.board.Clone()
}

// CurrentPlayer returns the player to move, or the last mover once the game is over.
func (e *Engine) CurrentPlayer() Stone {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Status returns whether the game is in progress, won, or drawn.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Winner returns the winning player, or None.
func (e *Engine) Winner() Stone {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.winner
}

// IsOver reports whether the game has ended in a win or a draw.
func (e *Engine) IsOver() bool {
	return e.Status().IsTerminal()
}

// Message returns "Black wins", "White wins", "Draw", or "" while in progress.
func (e *Engine) Message() string {
	return e.State().Message()
}

// Size returns the side length of the board.
func (e *Engine) Size() int { return e.size }

// WinLength returns how many stones in a row win.
func (e *Engine) WinLength() int { return e.winLength }

func (e *Engine) reset() {
	e.board = NewBoard(e.size)
	e.current = Black
	e.status = StatusInProgress
	e.winner = None
	e.moves = 0
	e.lastMove = nil
}

func (e *Engine) snapshot() State {
	s := State{
		Size:      e.size,
		WinLength: e.winLength,
		Board:     e.board.Clone(),
		Next:      e.current,
		Status:    e.status,
		Winner:    e.winner,
		Moves:     e.moves,
	}
	if e.lastMove != nil {
		last := *e.lastMove
		s.LastMove = &last
	}
	return s
}

func validateDimensions(size, winLength int) error {
	if size < 1 {
		return fmt.Errorf("%w: board size %d", ErrInvalidOptions, size)
	}
	if winLength < 1 || winLength > size {
		return fmt.Errorf("%w: win length %d on board size %d", ErrInvalidOptions, winLength, size)
	}
	return nil
}

func validateState(s State) error {
	if len(s.Board) != s.Size {
		return fmt.Errorf("%w: board has %d rows, want %d", ErrInvalidState, len(s.Board), s.Size)
	}
	for i, row := range s.Board {
		if len(row) != s.Size {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidState, i, len(row), s.Size)
		}
		for j, cell := range row {
			if cell != None && !cell.IsPlayer() {
				return fmt.Errorf("%w: unknown stone %q at (%d, %d)", ErrInvalidState, cell, i, j)
			}
		}
	}
	if !s.Next.IsPlayer() {
		return fmt.Errorf("%w: next player %q", ErrInvalidState, s.Next)
	}

	black, white := s.Board.Count(Black), s.Board.Count(White)
	if black+white != s.Moves {
		return fmt.Errorf("%w: %d stones but %d moves", ErrInvalidState, black+white, s.Moves)
	}

	// Black moves first, so after any prefix of moves black == white or black == white+1.
	// In progress Next is the player to move; once terminal it is the last mover.
	lastMoverBlack := black == white+1
	switch s.Status {
	case StatusInProgress:
		if s.Winner != None {
			return fmt.Errorf("%w: winner set while in progress", ErrInvalidState)
		}
		if (s.Next == Black && black != white) || (s.Next == White && black != white+1) {
			return fmt.Errorf("%w: %s to move with %d black and %d white stones", ErrInvalidState, s.Next, black, white)
		}
		if s.Board.IsFull() {
			return fmt.Errorf("%w: full board while in progress", ErrInvalidState)
		}
		if pos, ok := s.Board.firstLine(s.WinLength); ok {
			return fmt.Errorf("%w: line of %d through (%d, %d) while in progress", ErrInvalidState, s.WinLength, pos.Row, pos.Col)
		}
	case StatusWin, StatusDraw:
		if s.Moves == 0 {
			return fmt.Errorf("%w: terminal game without moves", ErrInvalidState)
		}
		if (s.Next == Black) != lastMoverBlack || (!lastMoverBlack && black != white) {
			return fmt.Errorf("%w: last mover %s with %d black and %d white stones", ErrInvalidState, s.Next, black, white)
		}
		if s.Status == StatusWin && s.Winner != s.Next {
			return fmt.Errorf("%w: winner %q is not the last mover %s", ErrInvalidState, s.Winner, s.Next)
		}
		if s.Status == StatusDraw && (s.Winner != None || !s.Board.IsFull()) {
			return fmt.Errorf("%w: draw on a board that is not full or has a winner", ErrInvalidState)
		}
		if _, ok := s.Board.firstLine(s.WinLength); ok && s.Status == StatusDraw {
			return fmt.Errorf("%w: draw on a board that holds a line of %d", ErrInvalidState, s.WinLength)
		}
	default:
		return fmt.Errorf("%w: status %q", ErrInvalidState, s.Status)
	}

	if s.LastMove != nil {
		last := *s.LastMove
		if !s.Board.InBounds(last.Row, last.Col) || s.Board[last.Row][last.Col] == None {
			return fmt.Errorf("%w: last move (%d, %d) does not hold a stone", ErrInvalidState, last.Row, last.Col)
		}
		if s.Status == StatusWin && s.Board[last.Row][last.Col] != s.Winner {
			return fmt.Errorf("%w: last move (%d, %d) is not the winner's stone", ErrInvalidState, last.Row, last.Col)
		}
		if s.Status == StatusWin && !s.Board.wins(last.Row, last.Col, s.WinLength) {
			return fmt.Errorf("%w: last move (%d, %d) does not complete a line", ErrInvalidState, last.Row, last.Col)
		}
	}
	return nil
}
