package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/jaminalder/tic-tac-toe-ai/internal/app"
	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

// Session drives one terminal game through the service.
type Session struct {
	svc     *app.Service
	out     *termenv.Output
	palette Palette
	log     *slog.Logger
	id      string
	seats   map[domain.Cell]string
}

// NewSession creates a game in mode and seats the terminal user.
// In two-player mode the user holds both seats.
func NewSession(svc *app.Service, out *termenv.Output, mode domain.Mode, log *slog.Logger) (*Session, error) {
	gs, err := svc.CreateGame(mode)
	if err != nil {
		return nil, err
	}
	s := &Session{
		svc:     svc,
		out:     out,
		palette: DefaultPalette(out),
		log:     log,
		id:      gs.ID,
		seats:   map[domain.Cell]string{},
	}
	if err := s.seat(); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the service id of the game.
func (s *Session) ID() string { return s.id }

func (s *Session) seat() error {
	gs, ok := s.svc.Get(s.id)
	if !ok {
		return app.ErrNotFound
	}
	if s.seats[domain.X] == "" {
		s.seats[domain.X] = app.NewPlayerID()
	}
	if _, _, err := s.svc.Join(s.id, s.seats[domain.X]); err != nil {
		return err
	}
	delete(s.seats, domain.O)
	if !gs.Game.Mode.AI() {
		s.seats[domain.O] = app.NewPlayerID()
		if _, _, err := s.svc.Join(s.id, s.seats[domain.O]); err != nil {
			return err
		}
	}
	return nil
}

const help = "Enter a cell 1-9, r to restart, m <player|computer|minimax> to switch mode, q to quit."

// Run reads commands from in until q, EOF or ctx is done. A read blocked on in
// does not hold Run back once ctx is cancelled.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	s.println(help)
	s.show("")

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case line := <-lines:
			quit, err := s.handle(strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

func (s *Session) handle(line string) (bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, nil
	}
	switch fields[0] {
	case "q", "quit", "exit":
		return true, nil
	case "h", "help", "?":
		s.println(help)
	case "r", "restart":
		if _, err := s.svc.Restart(s.id); err != nil {
			return false, err
		}
		s.show("")
	case "m", "mode":
		if len(fields) < 2 {
			s.println("usage: m <player|computer|minimax>")
			return false, nil
		}
		m, err := domain.ParseMode(fields[1])
		if err != nil {
			s.println(err.Error())
			return false, nil
		}
		if _, err := s.svc.SetMode(s.id, m); err != nil {
			return false, err
		}
		if err := s.seat(); err != nil {
			return false, err
		}
		s.show("")
	default:
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			s.println("unknown command " + strconv.Quote(fields[0]) + ". " + help)
			return false, nil
		}
		return false, s.move(n - 1)
	}
	return false, nil
}

func (s *Session) move(index int) error {
	gs, ok := s.svc.Get(s.id)
	if !ok {
		return app.ErrNotFound
	}
	pid := s.seats[gs.Game.Turn]
	if pid == "" {
		pid = s.seats[domain.X]
	}
	_, err := s.svc.Play(s.id, pid, index)
	switch {
	case err == nil:
		s.show("")
	case errors.Is(err, domain.ErrInvalidMove), errors.Is(err, app.ErrNotYourTurn):
		s.log.Debug("move rejected", "game", s.id, "cell", index, "err", err)
		s.show(moveMessage(err))
	default:
		return err
	}
	return nil
}

func moveMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrOccupied):
		return "That cell is taken."
	case errors.Is(err, domain.ErrOutOfBounds):
		return "Pick a cell from 1 to 9."
	case errors.Is(err, domain.ErrGameOver):
		return "The game is over, r restarts."
	default:
		return "Wait for your turn."
	}
}

func (s *Session) show(note string) {
	gs, ok := s.svc.Get(s.id)
	if !ok {
		return
	}
	fmt.Fprintln(s.out)
	fmt.Fprint(s.out, RenderBoard(s.out, s.palette, gs.Game.Board))
	if note != "" {
		s.println(note)
	}
	if gs.Game.Over() {
		s.println(s.out.String(gs.Game.Status.String()).Bold().String())
		return
	}
	s.println(fmt.Sprintf("[%s] %s to move", gs.Game.Mode, gs.Game.Turn))
}

func (s *Session) println(msg string) {
	fmt.Fprintln(s.out, msg)
}
