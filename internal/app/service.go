package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/jaminalder/tic-tac-toe-ai/internal/ai"
	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound    = errors.New("game not found")
	ErrNotYourTurn = errors.New("not your turn")
	ErrNotAPlayer  = errors.New("not a player")
)

// GameState is the in-memory state tracked per game.
type GameState struct {
	ID      string
	Game    domain.Game
	X       string
	O       string
	Round   int
	Pending bool // computer reply scheduled
	Created time.Time
	Updated time.Time
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Option configures a Service.
type Option func(*Service)

// WithRenderer sets the broadcast payload renderer.
func WithRenderer(renderer func(GameState) []byte) Option {
	return func(s *Service) { s.render = renderer }
}

// WithAIDelay delays the computer reply. Zero replies within the human's Play call.
func WithAIDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

// WithRand sets the randomness source of the random strategy.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// Service manages games and subscribers.
type Service struct {
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	delay  time.Duration
	rng    *rand.Rand
	log    *slog.Logger
}

func noRender(GameState) []byte { return nil }

// NewService creates a service. Without options nothing is rendered and the computer replies at once.
func NewService(opts ...Option) *Service {
	s := &Service{
		games: make(map[string]*GameState),
		subs:  make(map[string]map[*subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.render == nil {
		s.render = noRender
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = noRender
		return
	}
	s.render = renderer
}

// CreateGame creates and registers a new game. In AI modes the computer holds O.
func (s *Service) CreateGame(mode domain.Mode) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	gs := &GameState{ID: newGameID(), Game: domain.New(mode), Created: now, Updated: now}
	if mode.AI() {
		gs.O = ComputerSeat
	}
	s.games[gs.ID] = gs
	s.log.Info("game created", "game", gs.ID, "mode", mode)
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Join assigns a seat to the player if available; returns Empty for spectators.
// The empty id and ComputerSeat cannot join.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
	if playerID == "" || playerID == ComputerSeat {
		return domain.Empty, nil, ErrNotAPlayer
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return domain.Empty, nil, ErrNotFound
	}
	side := domain.Empty
	if gs.X == "" || gs.X == playerID {
		gs.X = playerID
		side = domain.X
	} else if gs.O == "" || gs.O == playerID {
		gs.O = playerID
		side = domain.O
	}
	gs.Updated = time.Now()
	cp := *gs
	return side, &cp, nil
}

// Play validates seat and turn, applies a move and broadcasts. In AI modes the
// computer answers before Play returns, or later when a delay is configured.
func (s *Service) Play(id, playerID string, index int) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	// Validate player is seated
	var seat domain.Cell
	switch {
	case playerID == "" || playerID == ComputerSeat:
		seat = domain.Empty
	case gs.X == playerID:
		seat = domain.X
	case gs.O == playerID:
		seat = domain.O
	}
	if seat == domain.Empty {
		s.mu.Unlock()
		return nil, ErrNotAPlayer
	}
	// Validate turn
	if !gs.Game.Over() && seat != gs.Game.Turn {
		s.mu.Unlock()
		return nil, ErrNotYourTurn
	}
	st, err := gs.Game.PlayAs(index, seat)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("play %d: %w", index, err)
	}
	gs.Updated = time.Now()
	s.log.Debug("move applied", "game", id, "player", seat, "cell", index, "status", st)

	reply := s.needsReplyLocked(gs)
	if reply && s.delay <= 0 {
		s.replyLocked(gs)
		reply = false
	}
	if reply {
		gs.Pending = true
		round := gs.Round
		time.AfterFunc(s.delay, func() { s.delayedReply(id, round) })
	}
	cp, subs, payload := s.snapshotLocked(gs)
	s.mu.Unlock()

	s.broadcast(id, subs, payload)
	return &cp, nil
}

// ChooseAIMove returns the computer's pick for the game without applying it.
func (s *Service) ChooseAIMove(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return 0, ErrNotFound
	}
	b := gs.Game.Board
	idx, ok, err := ai.ChooseMove(&b, gs.Game.Mode, s.rng)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, domain.ErrGameOver
	}
	return idx, nil
}

// Restart resets the board of a game and drops a pending computer reply.
func (s *Service) Restart(id string) (*GameState, error) {
	return s.reset(id, nil)
}

// SetMode switches the game mode and restarts it.
func (s *Service) SetMode(id string, mode domain.Mode) (*GameState, error) {
	return s.reset(id, &mode)
}

func (s *Service) reset(id string, mode *domain.Mode) (*GameState, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if mode != nil && *mode != gs.Game.Mode {
		gs.Game.Mode = *mode
		switch {
		case mode.AI():
			gs.O = ComputerSeat
		case gs.O == ComputerSeat:
			gs.O = ""
		}
	}
	gs.Game.Reset()
	gs.Round++
	gs.Pending = false
	gs.Updated = time.Now()
	s.log.Info("game restarted", "game", id, "mode", gs.Game.Mode, "round", gs.Round)
	cp, subs, payload := s.snapshotLocked(gs)
	s.mu.Unlock()

	s.broadcast(id, subs, payload)
	return &cp, nil
}

func (s *Service) needsReplyLocked(gs *GameState) bool {
	return gs.Game.Mode.AI() && !gs.Game.Over() && gs.Game.Turn == domain.O && gs.O == ComputerSeat
}

func (s *Service) replyLocked(gs *GameState) {
	idx, ok, err := ai.ChooseMove(&gs.Game.Board, gs.Game.Mode, s.rng)
	if err != nil || !ok {
		s.log.Warn("computer has no move", "game", gs.ID, "board", gs.Game.Board.String(), "err", err)
		return
	}
	st, err := gs.Game.PlayAs(idx, domain.O)
	if err != nil {
		s.log.Error("computer move rejected", "game", gs.ID, "cell", idx, "err", err)
		return
	}
	gs.Updated = time.Now()
	s.log.Debug("computer moved", "game", gs.ID, "mode", gs.Game.Mode, "cell", idx, "status", st)
}

func (s *Service) delayedReply(id string, round int) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok || gs.Round != round || !gs.Pending {
		s.mu.Unlock()
		return
	}
	gs.Pending = false
	if !s.needsReplyLocked(gs) {
		s.mu.Unlock()
		return
	}
	s.replyLocked(gs)
	cp, subs, payload := s.snapshotLocked(gs)
	s.mu.Unlock()

	s.broadcast(cp.ID, subs, payload)
}

func (s *Service) snapshotLocked(gs *GameState) (GameState, map[*subscriber]struct{}, []byte) {
	cp := *gs
	return cp, s.copySubsLocked(gs.ID), s.render(cp)
}

// broadcast fans out; slow subscribers are closed and dropped.
func (s *Service) broadcast(id string, subs map[*subscriber]struct{}, payload []byte) {
	var toDrop []*subscriber
	for sub := range subs {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			toDrop = append(toDrop, sub)
		}
	}
	if len(toDrop) > 0 {
		s.mu.Lock()
		for _, sub := range toDrop {
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
		}
		s.mu.Unlock()
	}
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
	out := make(map[*subscriber]struct{})
	if set, ok := s.subs[id]; ok {
		for k := range set {
			out[k] = struct{}{}
		}
	}
	return out
}
