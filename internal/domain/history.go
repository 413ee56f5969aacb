package domain

// History is the linear log of boards for one game. It always holds at least
// the initial board; the zero value is ready to use. A History is not safe for
// concurrent use.
type History struct {
    boards []Board
}

// NewHistory returns a history seeded with the empty board.
func NewHistory() *History { return NewHistoryFrom(NewBoard()) }

// NewHistoryFrom returns a history seeded with b.
func NewHistoryFrom(b Board) *History { return &History{boards: []Board{b}} }

func (h *History) seed() {
    if len(h.boards) == 0 {
        h.boards = append(h.boards, NewBoard())
    }
}

// Append pushes b as the new current board.
func (h *History) Append(b Board) {
    h.seed()
    h.boards = append(h.boards, b)
}

// Undo drops the current board unless it is the seed. It reports whether
// anything was removed. Undone boards cannot be recovered.
func (h *History) Undo() bool {
    if len(h.boards) <= 1 {
        return false
    }
    h.boards[len(h.boards)-1] = Board{}
    h.boards = h.boards[:len(h.boards)-1]
    return true
}

// Current returns the latest board.
func (h *History) Current() Board {
    h.seed()
    return h.boards[len(h.boards)-1]
}

// Len returns the number of boards, seed included.
func (h *History) Len() int {
    h.seed()
    return len(h.boards)
}

// Snapshots returns a copy of every board, oldest first.
func (h *History) Snapshots() []Board {
    h.seed()
    out := make([]Board, len(h.boards))
    copy(out, h.boards)
    return out
}

// Play applies m to the current board and appends the result. Unlike
// Board.Play it refuses moves once the game is decided.
func (h *History) Play(m Move) (Board, error) {
    cur := h.Current()
    if !cur.Outcome().InProgress() {
        if err := m.Validate(); err != nil {
            return cur, err
        }
        return cur, ErrGameOver
    }
    next, err := cur.Play(m)
    if err != nil {
        return cur, err
    }
    h.boards = append(h.boards, next)
    return next, nil
}
