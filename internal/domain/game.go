package domain

// Cells is the number of absolute cells on the board.
const Cells = 81

// ForcedMove tells the player to move where they must play. The zero value
// is Anywhere.
type ForcedMove struct {
    constrained bool
    index       uint8
}

// Anywhere lets the player to move pick any unfinished sub-board.
func Anywhere() ForcedMove { return ForcedMove{} }

// MustPlayIn restricts the next move to sub-board i.
func MustPlayIn(i int) ForcedMove {
    if i < 0 || i > 8 {
        panic("domain: sub-board index out of range")
    }
    return ForcedMove{constrained: true, index: uint8(i)}
}

// SubBoard returns the required sub-board, if any.
func (f ForcedMove) SubBoard() (int, bool) { return int(f.index), f.constrained }

// Allows reports whether sub-board i may be targeted under f.
func (f ForcedMove) Allows(i int) bool { return !f.constrained || int(f.index) == i }

// Move is one attempt to mark an absolute cell (subBoard*9 + cell).
type Move struct {
    Player Player
    Cell   int
}

// NewMove builds a move from a sub-board and a cell index within it.
func NewMove(p Player, subBoard, cell int) Move {
    return Move{Player: p, Cell: subBoard*9 + cell}
}

// SubBoard returns the index of the targeted sub-board.
func (m Move) SubBoard() int { return m.Cell / 9 }

// CellIndex returns the index of the targeted cell within its sub-board.
func (m Move) CellIndex() int { return m.Cell % 9 }

// Validate checks the structural bounds of m.
func (m Move) Validate() error {
    if m.Cell < 0 || m.Cell >= Cells || !m.Player.Valid() {
        return ErrInvalidCell
    }
    return nil
}

// Outcome is the state of the meta-board. Status Unfinished means the game is
// still in progress.
type Outcome struct {
    Status Status
    Winner Player
}

// InProgress reports whether moves may still be played.
func (o Outcome) InProgress() bool { return o.Status == Unfinished }

// Board is an immutable snapshot of a game. Boards are comparable with ==.
type Board struct {
    subBoards [9]SubBoard
    forced    ForcedMove
    toMove    Player
}

// NewBoard returns the empty initial board with First to move.
func NewBoard() Board { return Board{toMove: First} }

// SubBoards returns the nine sub-boards in row-major meta-grid order.
func (b Board) SubBoards() [9]SubBoard { return b.subBoards }

// FinishedFlags reports which sub-boards are terminal.
func (b Board) FinishedFlags() [9]bool {
    var out [9]bool
    for i, sb := range b.subBoards {
        out[i] = sb.Finished()
    }
    return out
}

// ForcedMove returns where the player to move must play.
func (b Board) ForcedMove() ForcedMove { return b.forced }

// ToMove returns the player whose turn it is.
func (b Board) ToMove() Player { return b.toMove }

// Outcome evaluates the meta-board. Drawn sub-boards never count toward a line.
func (b Board) Outcome() Outcome {
    if p, ok := scanLines(b.subBoards, SubBoard.Winner); ok {
        return Outcome{Status: Won, Winner: p}
    }
    for _, sb := range b.subBoards {
        if !sb.Finished() {
            return Outcome{Status: Unfinished}
        }
    }
    return Outcome{Status: Drawn}
}

// Play applies m and returns the resulting board. On error the receiver is
// returned unchanged. Play does not look at the outcome; callers stop once
// the game is decided (History.Play does this for them).
func (b Board) Play(m Move) (Board, error) {
    if err := m.Validate(); err != nil {
        return b, err
    }
    if m.Player != b.toMove {
        return b, ErrWrongTurn
    }
    sb := m.SubBoard()
    if !b.forced.Allows(sb) {
        return b, ErrWrongSubBoard
    }
    target := b.subBoards[sb]
    if target.Finished() {
        return b, ErrSubBoardFinished
    }
    cell := m.CellIndex()
    if target.cells[cell] != Empty {
        return b, ErrCellOccupied
    }

    next := b
    target.cells[cell] = MarkedBy(m.Player)
    next.subBoards[sb] = target.Evaluate()
    next.toMove = b.toMove.Other()
    // The landing cell picks the opponent's sub-board.
    if next.subBoards[cell].Finished() {
        next.forced = Anywhere()
    } else {
        next.forced = MustPlayIn(cell)
    }
    return next, nil
}

// Playable reports whether m would be accepted.
func (b Board) Playable(m Move) bool {
    _, err := b.Play(m)
    return err == nil
}
