package ai

import (
	"math/rand"
	"time"

	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

// Random picks uniformly among the empty cells.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a Random strategy. A nil rng is seeded from the clock.
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Random{rng: rng}
}

// Choose picks a random empty cell of b.
func (r *Random) Choose(b *domain.Board) (int, bool) {
	moves := b.Empties()
	if len(moves) == 0 {
		return 0, false
	}
	return moves[r.rng.Intn(len(moves))], true
}
