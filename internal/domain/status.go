package domain

import (
	"fmt"
	"strings"
)

// Outcome is the kind of a game status.
type Outcome uint8

const (
	InProgress Outcome = iota
	Won
	Draw
)

// Status is derived from a board. Winner is set only when Outcome is Won.
type Status struct {
	Outcome Outcome
	Winner  Cell
}

// StatusOf derives the status of b. Wins are checked before the draw.
func StatusOf(b Board) Status {
	switch {
	case CheckWin(b, X):
		return Status{Outcome: Won, Winner: X}
	case CheckWin(b, O):
		return Status{Outcome: Won, Winner: O}
	case b.Full():
		return Status{Outcome: Draw}
	default:
		return Status{Outcome: InProgress}
	}
}

// Terminal reports Won or Draw.
func (s Status) Terminal() bool { return s.Outcome != InProgress }

func (s Status) String() string {
	switch s.Outcome {
	case Won:
		return s.Winner.String() + " wins!"
	case Draw:
		return "Draw!"
	default:
		return "in progress"
	}
}

// Mode selects who plays O.
type Mode uint8

const (
	TwoPlayer Mode = iota
	RandomAI
	MinimaxAI
)

func (m Mode) String() string {
	switch m {
	case RandomAI:
		return "computer"
	case MinimaxAI:
		return "minimax"
	default:
		return "player"
	}
}

// AI reports whether the computer plays O in this mode.
func (m Mode) AI() bool { return m == RandomAI || m == MinimaxAI }

// ParseMode accepts the selector values player, computer and minimax plus a few aliases.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "player", "two-player", "twoplayer", "pvp":
		return TwoPlayer, nil
	case "computer", "random", "randomai":
		return RandomAI, nil
	case "minimax", "minimaxai", "optimal":
		return MinimaxAI, nil
	}
	return TwoPlayer, fmt.Errorf("unknown mode %q", s)
}
