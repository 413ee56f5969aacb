package domain

import "fmt"

// Status is the completion state of a sub-board or of the whole game.
type Status uint8

const (
    // Unfinished means play continues. For a game outcome it reads as "in progress".
    Unfinished Status = iota
    Won
    Drawn
)

func (s Status) String() string {
    switch s {
    case Unfinished:
        return "unfinished"
    case Won:
        return "won"
    case Drawn:
        return "drawn"
    default:
        return fmt.Sprintf("status(%d)", uint8(s))
    }
}

// SubBoard is one of the nine inner grids. Only an Unfinished sub-board
// carries cells; Won carries its winner and Drawn carries nothing.
type SubBoard struct {
    status Status
    winner Player
    cells  [9]Cell
}

// NewSubBoard returns an empty unfinished sub-board.
func NewSubBoard() SubBoard { return SubBoard{} }

// UnfinishedSubBoard returns an unfinished sub-board holding cells as given.
// The result is not evaluated.
func UnfinishedSubBoard(cells [9]Cell) SubBoard { return SubBoard{cells: cells} }

// WonSubBoard returns a sub-board decided in favour of p.
func WonSubBoard(p Player) SubBoard { return SubBoard{status: Won, winner: p} }

// DrawnSubBoard returns a sub-board decided without a winner.
func DrawnSubBoard() SubBoard { return SubBoard{status: Drawn} }

// Status returns whether s is unfinished, won or drawn.
func (s SubBoard) Status() Status { return s.status }

// Finished reports whether s is terminal.
func (s SubBoard) Finished() bool {
    switch s.status {
    case Unfinished:
        return false
    case Won, Drawn:
        return true
    default:
        panic("domain: unknown sub-board status")
    }
}

// Winner returns the player that won s, if any.
func (s SubBoard) Winner() (Player, bool) {
    switch s.status {
    case Won:
        return s.winner, true
    case Unfinished, Drawn:
        return 0, false
    default:
        panic("domain: unknown sub-board status")
    }
}

// Cells returns the nine cells of an unfinished sub-board, row-major.
// Terminal sub-boards report all cells empty.
func (s SubBoard) Cells() [9]Cell { return s.cells }

// Evaluate decides s from its cells. Terminal sub-boards are returned as is.
func (s SubBoard) Evaluate() SubBoard {
    switch s.status {
    case Won, Drawn:
        return s
    case Unfinished:
    default:
        panic("domain: unknown sub-board status")
    }
    if p, ok := scanLines(s.cells, Cell.Owner); ok {
        return WonSubBoard(p)
    }
    for _, c := range s.cells {
        if c == Empty {
            return s
        }
    }
    return DrawnSubBoard()
}

func (s SubBoard) String() string {
    switch s.status {
    case Won:
        return "won by " + s.winner.String()
    case Drawn:
        return "drawn"
    default:
        b := make([]byte, 9)
        for i, c := range s.cells {
            if p, ok := c.Owner(); ok {
                b[i] = p.String()[0]
            } else {
                b[i] = '.'
            }
        }
        return string(b)
    }
}
