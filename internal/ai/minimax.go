package ai

import (
	"math"

	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

// WinScore is the score of an immediate win; each ply of depth costs one point.
const WinScore = 10

// Minimax searches the whole remaining game tree. Side is the maximizing player.
type Minimax struct {
	Side domain.Cell
}

// NewMinimax returns a searcher playing O.
func NewMinimax() *Minimax {
	return &Minimax{Side: domain.O}
}

// Choose returns FindBestMove for b.
func (m *Minimax) Choose(b *domain.Board) (int, bool) {
	return m.FindBestMove(b)
}

func (m *Minimax) side() domain.Cell {
	if m.Side == domain.Empty {
		return domain.O
	}
	return m.Side
}

// FindBestMove tries every empty cell in index order and keeps the first one
// with the strictly greatest score. b is restored before returning.
func (m *Minimax) FindBestMove(b *domain.Board) (int, bool) {
	me := m.side()
	best, move, found := math.MinInt, 0, false
	for i := range b {
		if b[i] != domain.Empty {
			continue
		}
		score := m.probe(b, i, me, 0, false)
		if score > best {
			best, move, found = score, i, true
		}
	}
	return move, found
}

// Score evaluates b at depth with the maximizing side to move when maximizing is set.
func (m *Minimax) Score(b *domain.Board, depth int, maximizing bool) int {
	me := m.side()
	if domain.CheckWin(*b, me) {
		return WinScore - depth
	}
	if domain.CheckWin(*b, me.Opponent()) {
		return depth - WinScore
	}
	if b.Full() {
		return 0
	}

	if maximizing {
		best := math.MinInt
		for i := range b {
			if b[i] == domain.Empty {
				best = max(best, m.probe(b, i, me, depth+1, false))
			}
		}
		return best
	}
	best := math.MaxInt
	for i := range b {
		if b[i] == domain.Empty {
			best = min(best, m.probe(b, i, me.Opponent(), depth+1, true))
		}
	}
	return best
}

// probe places p at i, scores the child and clears the cell again.
func (m *Minimax) probe(b *domain.Board, i int, p domain.Cell, depth int, maximizing bool) int {
	b[i] = p
	defer func() { b[i] = domain.Empty }()
	return m.Score(b, depth, maximizing)
}
