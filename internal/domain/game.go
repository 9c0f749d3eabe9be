package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Cell represents a board cell state. X and O double as the players.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other player; Empty for Empty.
func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// WinningLines holds the 8 index triples that win the game.
var WinningLines = [8][3]int{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Errors returned by domain operations. All of them match ErrInvalidMove.
var (
	ErrInvalidMove = errors.New("invalid move")
	ErrOutOfBounds = fmt.Errorf("%w: out of bounds", ErrInvalidMove)
	ErrOccupied    = fmt.Errorf("%w: cell occupied", ErrInvalidMove)
	ErrGameOver    = fmt.Errorf("%w: game over", ErrInvalidMove)
	ErrBadPlayer   = fmt.Errorf("%w: not a player", ErrInvalidMove)
	ErrWrongTurn   = fmt.Errorf("%w: wrong turn", ErrInvalidMove)
)

// Reset returns an empty board.
func Reset() Board {
	return Board{}
}

// ParseBoard reads 9 cells from s. X and O are marks; '.', '-', '_' and ' ' are empty.
func ParseBoard(s string) (Board, error) {
	var b Board
	if len(s) != len(b) {
		return b, fmt.Errorf("parse board %q: want %d cells, got %d", s, len(b), len(s))
	}
	for i, ch := range strings.ToUpper(s) {
		switch ch {
		case 'X':
			b[i] = X
		case 'O':
			b[i] = O
		case '.', '-', '_', ' ':
			b[i] = Empty
		default:
			return Board{}, fmt.Errorf("parse board %q: bad cell %q at %d", s, ch, i)
		}
	}
	return b, nil
}

func (b Board) String() string {
	var sb strings.Builder
	for _, c := range b {
		if c == Empty {
			sb.WriteByte('.')
			continue
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}

// Empties lists the empty cell indices in ascending order.
func (b Board) Empties() []int {
	out := make([]int, 0, len(b))
	for i, c := range b {
		if c == Empty {
			out = append(out, i)
		}
	}
	return out
}

// Full reports whether no cell is empty.
func (b Board) Full() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// CheckWin reports whether player holds any winning line.
func CheckWin(b Board, player Cell) bool {
	if player == Empty {
		return false
	}
	for _, ln := range WinningLines {
		if b[ln[0]] == player && b[ln[1]] == player && b[ln[2]] == player {
			return true
		}
	}
	return false
}

// IsDraw reports a full board with no winner. A full board with a line is a win.
func IsDraw(b Board) bool {
	return b.Full() && !CheckWin(b, X) && !CheckWin(b, O)
}

// ApplyMove places player at index and returns the resulting status.
// The board is left untouched when an error is returned.
func ApplyMove(b *Board, index int, player Cell) (Status, error) {
	if player != X && player != O {
		return StatusOf(*b), ErrBadPlayer
	}
	if index < 0 || index >= len(b) {
		return StatusOf(*b), ErrOutOfBounds
	}
	st := StatusOf(*b)
	if st.Terminal() {
		return st, ErrGameOver
	}
	if b[index] != Empty {
		return st, ErrOccupied
	}
	b[index] = player
	return StatusOf(*b), nil
}

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
	Board  Board
	Mode   Mode
	Turn   Cell
	Status Status
	Moves  int
}

// New returns a new game in the given mode with X to move.
func New(mode Mode) Game {
	return Game{Board: Reset(), Mode: mode, Turn: X}
}

// Over reports whether the game reached a terminal status.
func (g *Game) Over() bool { return g.Status.Terminal() }

// Winner returns the winning player, or Empty.
func (g *Game) Winner() Cell { return g.Status.Winner }

// Play plays the side to move at index (0..8).
func (g *Game) Play(index int) (Status, error) {
	return g.PlayAs(index, g.Turn)
}

// PlayAs plays player at index, rejecting moves out of turn.
func (g *Game) PlayAs(index int, player Cell) (Status, error) {
	if g.Over() {
		return g.Status, ErrGameOver
	}
	if player != g.Turn {
		return g.Status, ErrWrongTurn
	}
	st, err := ApplyMove(&g.Board, index, player)
	if err != nil {
		return g.Status, err
	}
	g.Moves++
	g.Status = st
	if !st.Terminal() {
		g.Turn = g.Turn.Opponent()
	}
	return st, nil
}

// Reset clears the board and keeps the mode.
func (g *Game) Reset() {
	*g = New(g.Mode)
}
