package web

import (
    "bytes"
    "html/template"
    "net/http"

    "github.com/google/uuid"
)

type templates struct {
    base  *template.Template
    game  *template.Template
    board *template.Template
    index *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "iter": func(n int) []int {
            a := make([]int, n)
            for i := range a {
                a[i] = i
            }
            return a
        },
        "add":  func(a, b int) int { return a + b },
        "mul":  func(a, b int) int { return a * b },
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Super Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
<style>
.meta-row{display:flex}.sub{margin:4px;padding:2px;border:1px solid #999}
.sub.forced{border-color:#2a7}.sub.won,.sub.drawn{opacity:.6}
.row{display:flex}.row form button{width:2em;height:2em}
.winner{width:6em;height:6em;font-size:4em;text-align:center}
</style>
</head><body>{{template "content" .}}</body></html>`))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Super Tic-Tac-Toe</h1>
<form action="/game" method="post"><button>Create</button></form>
<form action="/import" method="post"><input name="snapshot" placeholder="snapshot"><button>Import</button></form>`))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>Super Tic-Tac-Toe</h1>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events" hx-sse="connect:/game/{{.ID}}/events">
  <div hx-sse="swap:board">{{.BoardHTML}}</div>
</div>`))
    board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
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
  {{if .Error}}<div class="alert">{{.Error}}</div>{{end}}
  <div class="status">{{.OutcomeText}}</div>
  {{range $mr := iter 3}}
  <div class="meta-row">
    {{range $mc := iter 3}}{{with index $.SubBoards (add (mul $mr 3) $mc)}}
    <div class="sub {{.Status}}{{if .Forced}} forced{{end}}" data-sub="{{.Index}}">
      {{if .Winner}}<div class="winner">{{.Winner}}</div>
      {{else if eq .Status "drawn"}}<div class="winner">-</div>
      {{else}}{{$sb := .}}
      {{range $r := iter 3}}
      <div class="row">
        {{range $c := iter 3}}{{with index $sb.Cells (add (mul $r 3) $c)}}
        <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
          <input type="hidden" name="cell" value="{{.Cell}}">
          <button type="submit"{{if not .Playable}} disabled{{end}}>{{.Mark}}</button>
        </form>{{end}}{{end}}
      </div>
      {{end}}{{end}}
    </div>
    {{end}}{{end}}
  </div>
  {{end}}
  <div class="actions">
    {{if and .Turns .InProgress}}<form hx-post="/game/{{.ID}}/undo" hx-target="#board" hx-swap="outerHTML" method="post"><button>Undo</button></form>{{end}}
    {{if not .InProgress}}<form hx-post="/game/{{.ID}}/restart" hx-target="#board" hx-swap="outerHTML" method="post"><button>Play again</button></form>{{end}}
    <a href="/game/{{.ID}}/snapshot">Snapshot</a>
  </div>
</div>
`

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
    if c, err := r.Cookie(playerCookie); err == nil && c.Value != "" {
        return c.Value
    }
    // Generate UUIDv4 for player ID
    v := uuid.NewString()
    http.SetCookie(w, &http.Cookie{Name: playerCookie, Value: v, Path: "/"})
    return v
}

// playerID reads the cookie without setting one.
func playerID(r *http.Request) string {
    if c, err := r.Cookie(playerCookie); err == nil {
        return c.Value
    }
    return ""
}

const playerCookie = "player_id"
