// Package ai picks moves for the computer player.
package ai

import (
	"errors"
	"math/rand"

	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

// ErrNoStrategy is returned for modes where no computer plays.
var ErrNoStrategy = errors.New("no computer strategy for mode")

// Strategy picks a legal move. It reports false when the board has no empty cell.
// Implementations may mutate b while searching but must restore it before returning.
type Strategy interface {
	Choose(b *domain.Board) (int, bool)
}

// ForMode returns the strategy playing O in mode. rng feeds the random strategy.
func ForMode(mode domain.Mode, rng *rand.Rand) (Strategy, error) {
	switch mode {
	case domain.RandomAI:
		return NewRandom(rng), nil
	case domain.MinimaxAI:
		return NewMinimax(), nil
	default:
		return nil, ErrNoStrategy
	}
}

// ChooseMove dispatches to the strategy of mode.
func ChooseMove(b *domain.Board, mode domain.Mode, rng *rand.Rand) (int, bool, error) {
	s, err := ForMode(mode, rng)
	if err != nil {
		return 0, false, err
	}
	idx, ok := s.Choose(b)
	return idx, ok, nil
}
