package web

import (
    "github.com/jaminalder/super-tic-tac-toe/internal/app"
    "github.com/jaminalder/super-tic-tac-toe/internal/domain"
)

type cellView struct {
    Cell     int    `json:"cell"`
    Mark     string `json:"mark,omitempty"`
    Playable bool   `json:"playable"`
}

type subBoardView struct {
    Index  int         `json:"index"`
    Status string      `json:"status"`
    Winner string      `json:"winner,omitempty"`
    Forced bool        `json:"forced"`
    Cells  [9]cellView `json:"cells"`
}

// boardView is the board as drawn by templates and sent over the socket.
type boardView struct {
    ID         string          `json:"id"`
    SubBoards  [9]subBoardView `json:"subBoards"`
    Finished   [9]bool         `json:"finished"`
    ToMove     string          `json:"toMove"`
    Forced     *int            `json:"forced"`
    Status     string          `json:"status"`
    Winner     string          `json:"winner,omitempty"`
    InProgress bool            `json:"inProgress"`
    Turns      int             `json:"turns"`
    X          bool            `json:"x"`
    O          bool            `json:"o"`
    Snapshot   domain.Board    `json:"snapshot"`
    Error      string          `json:"error,omitempty"`
}

func newBoardView(gs app.GameState, errMsg string) boardView {
    b := gs.Board
    out := b.Outcome()
    v := boardView{
        ID:         gs.ID,
        Finished:   b.FinishedFlags(),
        ToMove:     b.ToMove().String(),
        Status:     out.Status.String(),
        Winner:     out.Winner.String(),
        InProgress: out.InProgress(),
        Turns:      gs.Turns,
        X:          gs.X != "",
        O:          gs.O != "",
        Snapshot:   b,
        Error:      errMsg,
    }
    forced := b.ForcedMove()
    if i, ok := forced.SubBoard(); ok {
        v.Forced = &i
    }
    for i, sb := range b.SubBoards() {
        sv := subBoardView{
            Index:  i,
            Status: sb.Status().String(),
            Forced: out.InProgress() && !sb.Finished() && forced.Allows(i),
        }
        if p, ok := sb.Winner(); ok {
            sv.Winner = p.String()
        }
        for c, cell := range sb.Cells() {
            abs := i*9 + c
            sv.Cells[c] = cellView{
                Cell:     abs,
                Mark:     cell.String(),
                Playable: out.InProgress() && b.Playable(domain.Move{Player: b.ToMove(), Cell: abs}),
            }
        }
        v.SubBoards[i] = sv
    }
    return v
}

// OutcomeText is the banner shown above the board.
func (v boardView) OutcomeText() string {
    switch {
    case v.InProgress:
        return v.ToMove + " to move"
    case v.Winner != "":
        return v.Winner + " wins"
    default:
        return "draw"
    }
}
