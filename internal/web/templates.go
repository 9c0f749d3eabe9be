package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/jaminalder/tic-tac-toe-ai/internal/app"
	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

type templates struct {
	base  *template.Template
	game  *template.Template
	board *template.Template
	index *template.Template
}

var modes = []domain.Mode{domain.TwoPlayer, domain.RandomAI, domain.MinimaxAI}

func funcs() template.FuncMap {
	return template.FuncMap{
		"iter": func(n int) []int {
			a := make([]int, n)
			for i := range a {
				a[i] = i
			}
			return a
		},
		"cellSymbol": func(c domain.Cell) string { return c.String() },
		"add":        func(a, b int) int { return a + b },
		"mul":        func(a, b int) int { return a * b },
		"modes":      func() []domain.Mode { return modes },
		"modeLabel":  modeLabel,
	}
}

func modeLabel(m domain.Mode) string {
	switch m {
	case domain.RandomAI:
		return "Player vs Computer (random)"
	case domain.MinimaxAI:
		return "Player vs Computer (minimax)"
	default:
		return "Player vs Player"
	}
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
	index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1>
<form action="/game" method="post">
  <select name="mode">
    {{range modes}}<option value="{{.}}"{{if eq . $.Default}} selected{{end}}>{{modeLabel .}}</option>{{end}}
  </select>
  <button>Create</button>
</form>`))
	game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>Tic-Tac-Toe</h1>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div sse-swap="board" hx-swap="outerHTML" hx-target="#board">{{.BoardHTML}}</div>
</div>`))
	board := template.Must(template.New("board").Funcs(funcs()).Parse(boardTemplate))
	return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
	var buf bytes.Buffer
	if name == "" {
		_ = t.Execute(&buf, data)
	} else {
		_ = t.ExecuteTemplate(&buf, name, data)
	}
	return buf.Bytes()
}

const boardTemplate = `<div id="board">
  <p class="mode">{{modeLabel .Mode}}</p>
  {{if .Error}}<div class="alert">{{.Error}}</div>{{end}}
  <p id="message">{{.Message}}</p>
  {{range $r := iter 3}}
  <div class="row">
    {{range $c := iter 3}}{{$i := add (mul $r 3) $c}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{$.ID}}/play">
        <input type="hidden" name="cell" value="{{$i}}">
        <button type="submit" data-cell="{{$i}}">{{cellSymbol (index $.Board $i)}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  <form hx-post="/game/{{.ID}}/mode" hx-target="#board" hx-swap="outerHTML" hx-trigger="change" method="post" action="/game/{{.ID}}/mode">
    <select name="mode">
      {{range modes}}<option value="{{.}}"{{if eq . $.Mode}} selected{{end}}>{{modeLabel .}}</option>{{end}}
    </select>
  </form>
  <form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{.ID}}/restart">
    <button type="submit" id="restartButton">Restart</button>
  </form>
</div>
`

type boardData struct {
	ID      string
	Board   domain.Board
	Mode    domain.Mode
	Message string
	Error   string
}

func newBoardData(gs app.GameState, errMsg string) boardData {
	d := boardData{ID: gs.ID, Board: gs.Game.Board, Mode: gs.Game.Mode, Error: errMsg}
	switch {
	case gs.Game.Over():
		d.Message = gs.Game.Status.String()
	case gs.Pending:
		d.Message = "Computer is thinking..."
	default:
		d.Message = gs.Game.Turn.String() + " to move"
	}
	return d
}

const playerCookie = "player_id"

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookie); err == nil && c.Value != "" && c.Value != app.ComputerSeat {
		return c.Value
	}
	v := app.NewPlayerID()
	http.SetCookie(w, &http.Cookie{Name: playerCookie, Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return v
}
