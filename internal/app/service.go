package app

import (
    "context"
    "errors"
    "io/fs"
    "sync"
    "time"

    "github.com/jaminalder/super-tic-tac-toe/internal/domain"
    "go.uber.org/zap"
)

// Errors exposed by the service layer.
var (
    ErrNotFound       = errors.New("game not found")
    ErrNotYourTurn    = errors.New("not your turn")
    ErrNotAPlayer     = errors.New("not a player")
    ErrNothingToUndo  = errors.New("nothing to undo")
    ErrGameInProgress = errors.New("game in progress")
)

// Spectator is the seat returned by Join once both players are seated.
const Spectator domain.Player = 0

// Store persists the current board of each game.
// Load must return an error matching fs.ErrNotExist for unknown games.
type Store interface {
    Save(ctx context.Context, id string, b domain.Board) error
    Load(ctx context.Context, id string) (domain.Board, error)
}

// GameState is a copy of one game as seen by callers.
type GameState struct {
    ID      string
    Board   domain.Board
    Turns   int // boards played since the seed; zero means nothing to undo
    X       string
    O       string
    Created time.Time
    Updated time.Time
}

// Seat returns the side held by playerID, or Spectator.
func (gs GameState) Seat(playerID string) domain.Player {
    switch {
    case playerID == "":
        return Spectator
    case gs.X == playerID:
        return domain.First
    case gs.O == playerID:
        return domain.Second
    default:
        return Spectator
    }
}

type game struct {
    GameState
    history *domain.History
}

func (g *game) snapshot() GameState {
    cp := g.GameState
    cp.Board = g.history.Current()
    cp.Turns = g.history.Len() - 1
    return cp
}

// subscriber guards its channel so a send never races with close.
type subscriber struct {
    mu     sync.Mutex
    ch     chan []byte
    closed bool
}

// send delivers payload without blocking. It returns false only when the
// subscriber is still open and its buffer is full.
func (s *subscriber) send(payload []byte) bool {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed {
        return true
    }
    select {
    case s.ch <- payload:
        return true
    default:
        return false
    }
}

func (s *subscriber) close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.closed {
        s.closed = true
        close(s.ch)
    }
}

// Service manages games and subscribers. Every game is owned by the service
// mutex, so moves against one game are applied one at a time and a late move
// is validated against the board current at that moment.
type Service struct {
    mu     sync.Mutex
    games  map[string]*game
    subs   map[string]map[*subscriber]struct{}
    render func(GameState) []byte
    store  Store
    log    *zap.Logger
    now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithStore persists every accepted change and resumes unknown games from st.
func WithStore(st Store) Option { return func(s *Service) { s.store = st } }

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
    return func(s *Service) {
        if l != nil {
            s.log = l
        }
    }
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService(opts ...Option) *Service { return NewServiceWithRenderer(nil, opts...) }

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte, opts ...Option) *Service {
    if renderer == nil {
        renderer = func(gs GameState) []byte { return nil }
    }
    s := &Service{
        games:  make(map[string]*game),
        subs:   make(map[string]map[*subscriber]struct{}),
        render: renderer,
        log:    zap.NewNop(),
        now:    time.Now,
    }
    for _, opt := range opts {
        opt(s)
    }
    return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(gs GameState) []byte { return nil }
        return
    }
    s.render = renderer
}

func (s *Service) newGameLocked(id string, h *domain.History) *game {
    now := s.now()
    g := &game{
        GameState: GameState{ID: id, Created: now, Updated: now},
        history:   h,
    }
    s.games[id] = g
    return g
}

// lookupLocked finds a game in memory or resumes it from the store.
func (s *Service) lookupLocked(id string) (*game, bool) {
    if g, ok := s.games[id]; ok {
        return g, true
    }
    if s.store == nil || !ValidID(id) {
        return nil, false
    }
    b, err := s.store.Load(context.Background(), id)
    if err != nil {
        if !errors.Is(err, fs.ErrNotExist) {
            s.log.Warn("resume game", zap.String("game", id), zap.Error(err))
        }
        return nil, false
    }
    s.log.Info("resumed game", zap.String("game", id))
    return s.newGameLocked(id, domain.NewHistoryFrom(b)), true
}

func (s *Service) persistLocked(g *game) {
    if s.store == nil {
        return
    }
    if err := s.store.Save(context.Background(), g.ID, g.history.Current()); err != nil {
        s.log.Error("save game", zap.String("game", g.ID), zap.Error(err))
    }
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
    return s.create(domain.NewHistory())
}

// Import registers a new game starting from a text snapshot.
func (s *Service) Import(snapshot []byte) (*GameState, error) {
    var b domain.Board
    if err := b.UnmarshalText(snapshot); err != nil {
        return nil, err
    }
    return s.create(domain.NewHistoryFrom(b))
}

func (s *Service) create(h *domain.History) (*GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    g := s.newGameLocked(newID(), h)
    s.persistLocked(g)
    s.log.Info("game created", zap.String("game", g.ID))
    cp := g.snapshot()
    return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    g, ok := s.lookupLocked(id)
    if !ok {
        return nil, false
    }
    cp := g.snapshot()
    return &cp, true
}

// History returns every board of the game, oldest first.
func (s *Service) History(id string) ([]domain.Board, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    g, ok := s.lookupLocked(id)
    if !ok {
        return nil, ErrNotFound
    }
    return g.history.Snapshots(), nil
}

// Join assigns a seat to the player if available; returns Spectator otherwise.
func (s *Service) Join(id, playerID string) (domain.Player, *GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    g, ok := s.lookupLocked(id)
    if !ok {
        return Spectator, nil, ErrNotFound
    }
    side := Spectator
    if g.X == "" || g.X == playerID {
        g.X = playerID
        side = domain.First
    } else if g.O == "" || g.O == playerID {
        g.O = playerID
        side = domain.Second
    }
    g.Updated = s.now()
    cp := g.snapshot()
    return side, &cp, nil
}

// Play validates seat and turn, applies a move at an absolute cell (0..80),
// persists, and broadcasts.
func (s *Service) Play(id, playerID string, cell int) (*GameState, error) {
    return s.mutate(id, playerID, func(g *game, seat domain.Player) error {
        if seat != g.history.Current().ToMove() {
            return ErrNotYourTurn
        }
        _, err := g.history.Play(domain.Move{Player: seat, Cell: cell})
        return err
    })
}

// Undo drops the last board of the game while it is still in progress.
// A decided game can only be restarted.
func (s *Service) Undo(id, playerID string) (*GameState, error) {
    return s.mutate(id, playerID, func(g *game, _ domain.Player) error {
        if !g.history.Current().Outcome().InProgress() {
            return domain.ErrGameOver
        }
        if !g.history.Undo() {
            return ErrNothingToUndo
        }
        return nil
    })
}

// Restart starts a fresh board once the current game is decided.
func (s *Service) Restart(id, playerID string) (*GameState, error) {
    return s.mutate(id, playerID, func(g *game, _ domain.Player) error {
        if g.history.Current().Outcome().InProgress() {
            return ErrGameInProgress
        }
        g.history = domain.NewHistory()
        return nil
    })
}

// mutate runs fn for a seated player under the lock, then fans out the result.
func (s *Service) mutate(id, playerID string, fn func(*game, domain.Player) error) (*GameState, error) {
    s.mu.Lock()
    g, ok := s.lookupLocked(id)
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    seat := g.Seat(playerID)
    if seat == Spectator {
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    }
    if err := fn(g, seat); err != nil {
        s.mu.Unlock()
        s.log.Debug("change rejected", zap.String("game", id), zap.Stringer("seat", seat), zap.Error(err))
        return nil, err
    }
    g.Updated = s.now()
    s.persistLocked(g)

    cp := g.snapshot()
    subs := s.copySubsLocked(id)
    payload := s.render(cp)
    s.mu.Unlock()

    if out := cp.Board.Outcome(); !out.InProgress() {
        s.log.Info("game decided", zap.String("game", id), zap.Stringer("status", out.Status), zap.Stringer("winner", out.Winner))
    }
    s.broadcast(id, subs, payload)
    return &cp, nil
}

// broadcast fans out payload; slow subscribers are closed and dropped.
func (s *Service) broadcast(id string, subs map[*subscriber]struct{}, payload []byte) {
    var toDrop []*subscriber
    for sub := range subs {
        if !sub.send(payload) {
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
        s.log.Debug("dropped slow subscribers", zap.String("game", id), zap.Int("count", len(toDrop)))
    }
}

// Subscribe registers a subscriber for an existing game. Returns a channel
// and an unsubscribe func; unknown games yield ErrNotFound.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.lookupLocked(id); !ok {
        return nil, nil, ErrNotFound
    }
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
    return sub.ch, unsub, nil
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
