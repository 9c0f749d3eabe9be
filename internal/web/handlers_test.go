package web

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jaminalder/tic-tac-toe-ai/internal/app"
	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
	t.Helper()
	s := app.NewService()
	h := NewServer(s, WithDefaultMode(domain.TwoPlayer))
	return s, h
}

func postForm(h http.Handler, path string, form url.Values, pid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if pid != "" {
		req.AddCookie(&http.Cookie{Name: "player_id", Value: pid})
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIndexPage(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<form") || !strings.Contains(body, "action=\"/game\"") {
		t.Fatalf("index should contain create form; got body: %q", body)
	}
	for _, v := range []string{`value="player" selected`, `value="computer"`, `value="minimax"`} {
		if !strings.Contains(body, v) {
			t.Fatalf("index should offer %s; got body: %q", v, body)
		}
	}
}

func TestCreateRedirectsToGame(t *testing.T) {
	svc, h := newTestServer(t)
	rr := postForm(h, "/game", url.Values{"mode": {"minimax"}}, "")
	if rr.Code != http.StatusSeeOther && rr.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}
	loc := rr.Result().Header.Get("Location")
	if !strings.HasPrefix(loc, "/game/") {
		t.Fatalf("expected redirect to /game/{id}, got %q", loc)
	}
	gs, ok := svc.Get(strings.TrimPrefix(loc, "/game/"))
	if !ok || gs.Game.Mode != domain.MinimaxAI {
		t.Fatalf("expected minimax game, got %+v", gs)
	}
}

func TestCreateRejectsUnknownMode(t *testing.T) {
	_, h := newTestServer(t)
	rr := postForm(h, "/game", url.Values{"mode": {"impossible"}}, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGamePageSetsCookieAndAutoClaims(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.TwoPlayer)

	req := httptest.NewRequest("GET", "/game/"+url.PathEscape(gs.ID), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var playerID string
	for _, c := range rr.Result().Cookies() {
		if c.Name == "player_id" {
			playerID = c.Value
			break
		}
	}
	if playerID == "" {
		t.Fatalf("expected player_id cookie to be set")
	}
	latest, ok := svc.Get(gs.ID)
	if !ok || latest.X != playerID {
		t.Fatalf("expected auto-claim X; have X=%q O=%q pid=%q", latest.X, latest.O, playerID)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "hx-ext=\"sse\"") || !strings.Contains(body, "/game/"+gs.ID+"/events") {
		t.Fatalf("expected SSE wiring in page; got body: %q", body)
	}
	if !strings.Contains(body, "X to move") {
		t.Fatalf("expected turn message; got body: %q", body)
	}
}

func TestGamePageUnknownID(t *testing.T) {
	_, h := newTestServer(t)
	req := httptest.NewRequest("GET", "/game/nope", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestJoinEndpointReturnsBoardFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.TwoPlayer)
	svc.Join(gs.ID, "p1")
	rr := postForm(h, "/game/"+gs.ID+"/join", url.Values{}, "p2")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "id=\"board\"") {
		t.Fatalf("expected board fragment, got %q", rr.Body.String())
	}
	latest, _ := svc.Get(gs.ID)
	if latest.O != "p2" {
		t.Fatalf("expected O seat for p2, got X=%q O=%q", latest.X, latest.O)
	}
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.TwoPlayer)
	svc.Join(gs.ID, "p1")
	svc.Join(gs.ID, "p2")

	rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"4"}}, "p1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "id=\"board\"") {
		t.Fatalf("expected board fragment, got %q", rr.Body.String())
	}
	latest, _ := svc.Get(gs.ID)
	if latest.Game.Moves != 1 || latest.Game.Board[4] != domain.X {
		t.Fatalf("expected move applied, board=%s", latest.Game.Board)
	}
}

func TestPlayEndpointReportsInvalidMoves(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.TwoPlayer)
	svc.Join(gs.ID, "p1")
	svc.Join(gs.ID, "p2")
	postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"0"}}, "p1")

	tests := []struct {
		pid, cell, want string
	}{
		{"p2", "0", "Cell is occupied"},
		{"p2", "9", "Out of bounds"},
		{"p2", "abc", "Out of bounds"},
		{"p1", "1", "Not your turn"},
		{"p3", "1", "You are a spectator"},
	}
	for _, tt := range tests {
		rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {tt.cell}}, tt.pid)
		if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), tt.want) {
			t.Fatalf("%s@%s: expected %q, got %d %q", tt.pid, tt.cell, tt.want, rr.Code, rr.Body.String())
		}
	}
	latest, _ := svc.Get(gs.ID)
	if latest.Game.Moves != 1 {
		t.Fatalf("invalid moves must not change state, moves=%d", latest.Game.Moves)
	}
}

func TestPlayAgainstMinimaxShowsReply(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.MinimaxAI)
	svc.Join(gs.ID, "p1")
	rr := postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"4"}}, "p1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `data-cell="0">O<`) {
		t.Fatalf("expected O in cell 0, got %q", rr.Body.String())
	}
}

func TestRestartAndModeEndpoints(t *testing.T) {
	svc, h := newTestServer(t)
	gs, _ := svc.CreateGame(domain.TwoPlayer)
	svc.Join(gs.ID, "p1")
	postForm(h, "/game/"+gs.ID+"/play", url.Values{"cell": {"0"}}, "p1")

	rr := postForm(h, "/game/"+gs.ID+"/restart", url.Values{}, "p1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	latest, _ := svc.Get(gs.ID)
	if latest.Game.Moves != 0 {
		t.Fatalf("expected reset board, moves=%d", latest.Game.Moves)
	}

	rr = postForm(h, "/game/"+gs.ID+"/mode", url.Values{"mode": {"computer"}}, "p1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	latest, _ = svc.Get(gs.ID)
	if latest.Game.Mode != domain.RandomAI || latest.O != app.ComputerSeat {
		t.Fatalf("expected random mode with computer seat, got %v %q", latest.Game.Mode, latest.O)
	}
	if rr = postForm(h, "/game/"+gs.ID+"/mode", url.Values{"mode": {"??"}}, "p1"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if rr = postForm(h, "/game/nope/restart", url.Values{}, "p1"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
	_, h := newTestServer(t)
	rrCreate := postForm(h, "/game", url.Values{}, "")
	loc := rrCreate.Result().Header.Get("Location")
	if loc == "" {
		t.Fatalf("missing redirect location")
	}
	req := httptest.NewRequest("GET", loc+"/events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	ct := rr.Result().Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/event-stream") {
		io.Copy(io.Discard, rr.Result().Body)
		t.Fatalf("expected text/event-stream, got %q", ct)
	}
}

func TestWriteEventPrefixesEveryLine(t *testing.T) {
	var buf bytes.Buffer
	writeEvent(&buf, "board", []byte("<div>\n<p>x</p>\n</div>"))
	want := "event: board\ndata: <div>\ndata: <p>x</p>\ndata: </div>\n\n"
	if buf.String() != want {
		t.Fatalf("expected %q, got %q", want, buf.String())
	}
}
