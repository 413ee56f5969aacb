package web

import (
    "context"
    "errors"
    "net/http"
    "sync"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"
    "github.com/jaminalder/super-tic-tac-toe/internal/app"
    "github.com/mitchellh/mapstructure"
    "go.uber.org/zap"
)

const writeWait = 10 * time.Second

var errBadMessage = errors.New("bad socket message")

// socketMessage is the envelope exchanged over the game socket.
type socketMessage struct {
    Type     string                 `json:"type"`
    Contents map[string]interface{} `json:"contents,omitempty"`
    State    *boardView             `json:"state,omitempty"`
    Error    string                 `json:"error,omitempty"`
}

type playContents struct {
    Cell *int `mapstructure:"cell"`
}

// socket serialises writes; gorilla connections allow one concurrent writer.
type socket struct {
    mu   sync.Mutex
    conn *websocket.Conn
}

func (s *socket) send(m socketMessage) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    _ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
    return s.conn.WriteJSON(m)
}

func (h *handlers) sendState(s *socket, id string) error {
    gs, ok := h.svc.Get(id)
    if !ok {
        return app.ErrNotFound
    }
    v := newBoardView(*gs, "")
    return s.send(socketMessage{Type: "state", State: &v})
}

// ws streams the game state as JSON and accepts moves from seated players.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    pid := playerID(r)
    conn, err := h.upgrader.Upgrade(w, r, nil)
    if err != nil {
        h.log.Warn("upgrade socket", zap.String("game", id), zap.Error(err))
        return
    }
    s := &socket{conn: conn}
    defer conn.Close()

    ctx, cancel := context.WithCancel(r.Context())
    defer cancel()
    updates, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        return
    }
    defer unsub()

    if err := h.sendState(s, id); err != nil {
        return
    }
    go func() {
        defer cancel()
        for {
            var m socketMessage
            if err := conn.ReadJSON(&m); err != nil {
                if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
                    h.log.Debug("socket closed", zap.String("game", id), zap.Error(err))
                }
                return
            }
            if err := h.handleSocketMessage(id, pid, m); err != nil {
                if s.send(socketMessage{Type: "error", Error: errMessage(err)}) != nil {
                    return
                }
            }
        }
    }()

    ticker := time.NewTicker(h.heartbeat)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
                return
            }
        case _, ok := <-updates:
            if !ok {
                return
            }
            if err := h.sendState(s, id); err != nil {
                return
            }
        }
    }
}

func (h *handlers) handleSocketMessage(id, pid string, m socketMessage) error {
    switch m.Type {
    case "play":
        var c playContents
        if err := mapstructure.Decode(m.Contents, &c); err != nil || c.Cell == nil {
            return errBadMessage
        }
        _, err := h.svc.Play(id, pid, *c.Cell)
        return err
    case "undo":
        _, err := h.svc.Undo(id, pid)
        return err
    case "restart":
        _, err := h.svc.Restart(id, pid)
        return err
    default:
        return errBadMessage
    }
}
