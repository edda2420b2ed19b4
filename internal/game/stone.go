package game

// Stone is the content of a board cell. Black and White double as the two players.
type Stone string

// Status is the lifecycle state of a game.
type Status string

const (
	None  Stone = ""
	Black Stone = "black"
	White Stone = "white"

	StatusInProgress Status = "in_progress"
	StatusWin        Status = "win"
	StatusDraw       Status = "draw"
)

// Opponent returns the other player. None has no opponent.
func (s Stone) Opponent() Stone {
	switch s {
	case Black:
		return White
	case White:
		return Black
	default:
		return None
	}
}

// IsPlayer reports whether s is one of the two player colours.
func (s Stone) IsPlayer() bool {
	return s == Black || s == White
}

// Label returns the English display name of the stone.
func (s Stone) Label() string {
	switch s {
	case Black:
		return "Black"
	case White:
		return "White"
	default:
		return ""
	}
}

// IsTerminal reports whether no further moves are accepted.
func (s Status) IsTerminal() bool {
	return s == StatusWin || s == StatusDraw
}

// Position is a board coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}
