package game

// Board is a square grid of stones indexed [row][col].
type Board [][]Stone

// NewBoard returns an empty size x size board.
func NewBoard(size int) Board {
	board := make(Board, size)
	for i := range board {
		board[i] = make([]Stone, size)
	}
	return board
}

// Size returns the side length of the board.
func (b Board) Size() int {
	return len(b)
}

// InBounds reports whether (row, col) lies on the board.
func (b Board) InBounds(row, col int) bool {
	return row >= 0 && row < len(b) && col >= 0 && col < len(b)
}

// IsFull reports whether no empty cell remains.
func (b Board) IsFull() bool {
	for _, row := range b {
		for _, cell := range row {
			if cell == None {
				return false
			}
		}
	}
	return true
}

// Count returns how many cells hold stone s.
func (b Board) Count(s Stone) int {
	n := 0
	for _, row := range b {
		for _, cell := range row {
			if cell == s {
				n++
			}
		}
	}
	return n
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	board := make(Board, len(b))
	for i := range b {
		board[i] = make([]Stone, len(b[i]))
		copy(board[i], b[i])
	}
	return board
}

// axes are the four lines through a cell: horizontal, vertical, main and anti diagonal.
var axes = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// lineLength counts contiguous stones of the colour at (row, col) along the
// axis (dr, dc), walking both directions. The placed stone itself counts as 1.
func (b Board) lineLength(row, col, dr, dc int) int {
	player := b[row][col]
	count := 1
	for _, sign := range [2]int{1, -1} {
		r, c := row+sign*dr, col+sign*dc
		for b.InBounds(r, c) && b[r][c] == player {
			count++
			r += sign * dr
			c += sign * dc
		}
	}
	return count
}

// wins reports whether the stone at (row, col) is part of a line of at
// least winLength stones. Overlines count.
func (b Board) wins(row, col, winLength int) bool {
	if b[row][col] == None {
		return false
	}
	for _, axis := range axes {
		if b.lineLength(row, col, axis[0], axis[1]) >= winLength {
			return true
		}
	}
	return false
}

// firstLine returns an occupied cell that is part of a line of at least
// winLength stones, scanning row by row.
func (b Board) firstLine(winLength int) (Position, bool) {
	for r, row := range b {
		for c, cell := range row {
			if cell != None && b.wins(r, c, winLength) {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}
