package web

import (
    "bufio"
    "bytes"
    "encoding/json"
    "errors"
    "fmt"
    "html/template"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"
    "github.com/jaminalder/super-tic-tac-toe/internal/app"
    "github.com/jaminalder/super-tic-tac-toe/internal/domain"
    "go.uber.org/zap"
)

type handlers struct {
    svc       *app.Service
    tpl       *templates
    log       *zap.Logger
    heartbeat time.Duration
    upgrader  websocket.Upgrader
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
    return renderTemplate(h.tpl.board, "", newBoardView(gs, errMsg))
}

// errMessage turns a service or rules error into text for the player.
func errMessage(err error) string {
    switch {
    case errors.Is(err, app.ErrNotYourTurn), errors.Is(err, domain.ErrWrongTurn):
        return "Not your turn"
    case errors.Is(err, app.ErrNotAPlayer):
        return "You are a spectator"
    case errors.Is(err, app.ErrNothingToUndo):
        return "Nothing to undo"
    case errors.Is(err, app.ErrGameInProgress):
        return "Game is still in progress"
    case errors.Is(err, domain.ErrWrongSubBoard):
        return "You must play in the highlighted board"
    case errors.Is(err, domain.ErrSubBoardFinished):
        return "That board is finished"
    case errors.Is(err, domain.ErrCellOccupied):
        return "Cell is occupied"
    case errors.Is(err, domain.ErrInvalidCell):
        return "Out of bounds"
    case errors.Is(err, domain.ErrGameOver):
        return "Game is over"
    case errors.Is(err, domain.ErrDecode):
        return "Invalid snapshot"
    case errors.Is(err, errBadMessage):
        return "Unknown message"
    default:
        return "Invalid move"
    }
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.index, "", nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.CreateGame()
    if err != nil {
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) importGame(w http.ResponseWriter, r *http.Request) {
    _ = r.ParseForm()
    gs, err := h.svc.Import([]byte(r.Form.Get("snapshot")))
    if err != nil {
        h.log.Debug("import rejected", zap.Error(err))
        http.Error(w, errMessage(err), http.StatusBadRequest)
        return
    }
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    // ensure cookie and auto-claim seat
    pid := ensurePlayerCookie(w, r)
    _, _, _ = h.svc.Join(id, pid)

    gs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    data := struct {
        ID        string
        BoardHTML template.HTML
    }{ID: gs.ID, BoardHTML: template.HTML(h.renderBoard(*gs, ""))}

    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.game, "", data))
}

func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := ensurePlayerCookie(w, r)
    _, gs, err := h.svc.Join(id, pid)
    if err != nil || gs == nil {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    _, _ = w.Write(h.renderBoard(*gs, ""))
}

// change runs a board-changing service call and answers with the board
// fragment, carrying the error text on rejection.
func (h *handlers) change(w http.ResponseWriter, r *http.Request, fn func(id, pid string) (*app.GameState, error)) {
    id := chi.URLParam(r, "id")
    pid := ensurePlayerCookie(w, r)
    gs, err := fn(id, pid)
    var errMsg string
    if err != nil {
        if errors.Is(err, app.ErrNotFound) {
            http.NotFound(w, r)
            return
        }
        errMsg = errMessage(err)
        if g, ok := h.svc.Get(id); ok {
            gs = g
        }
    }
    if gs == nil {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    _, _ = w.Write(h.renderBoard(*gs, errMsg))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
    _ = r.ParseForm()
    cell, err := strconv.Atoi(r.Form.Get("cell"))
    if err != nil {
        cell = -1
    }
    h.change(w, r, func(id, pid string) (*app.GameState, error) { return h.svc.Play(id, pid, cell) })
}

func (h *handlers) undo(w http.ResponseWriter, r *http.Request) {
    h.change(w, r, h.svc.Undo)
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
    h.change(w, r, h.svc.Restart)
}

func (h *handlers) snapshot(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    text, _ := gs.Board.MarshalText()
    w.Header().Set("Content-Type", "text/plain; charset=utf-8")
    _, _ = w.Write(text)
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "application/json")
    _ = json.NewEncoder(w).Encode(newBoardView(*gs, ""))
}

// writeEvent writes one SSE event, prefixing every payload line.
func writeEvent(w io.Writer, event string, payload []byte) {
    _, _ = fmt.Fprintf(w, "event: %s\n", event)
    sc := bufio.NewScanner(bytes.NewReader(payload))
    sc.Buffer(make([]byte, 0, 64*1024), len(payload)+1)
    for sc.Scan() {
        _, _ = fmt.Fprintf(w, "data: %s\n", sc.Bytes())
    }
    _, _ = io.WriteString(w, "\n")
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        w.WriteHeader(http.StatusOK)
        return
    }
    defer unsub()
    ticker := time.NewTicker(h.heartbeat)
    defer ticker.Stop()
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case b, ok := <-ch:
            if !ok {
                return
            }
            writeEvent(w, "board", b)
            flusher.Flush()
        }
    }
}
