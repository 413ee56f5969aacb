package domain

import (
    "errors"
    "math/rand"
    "testing"
)

// helper to apply a sequence of absolute cells, alternating players from the board's turn
func playCells(t *testing.T, b Board, cells ...int) Board {
    t.Helper()
    for i, c := range cells {
        next, err := b.Play(Move{Player: b.ToMove(), Cell: c})
        if err != nil {
            t.Fatalf("move %d (cell %d) failed: %v", i, c, err)
        }
        b = next
    }
    return b
}

func TestNewBoardInitialState(t *testing.T) {
    b := NewBoard()
    if b.ToMove() != First {
        t.Fatalf("expected First to move, got %v", b.ToMove())
    }
    if _, ok := b.ForcedMove().SubBoard(); ok {
        t.Fatalf("expected no forced sub-board on empty board")
    }
    for i, sb := range b.SubBoards() {
        if sb.Status() != Unfinished || sb.Cells() != [9]Cell{} {
            t.Fatalf("expected empty sub-board %d, got %v", i, sb)
        }
    }
    if b.FinishedFlags() != [9]bool{} {
        t.Fatalf("expected no finished sub-boards")
    }
    if !b.Outcome().InProgress() {
        t.Fatalf("expected game in progress")
    }
}

func TestFirstMoveForcesOpponent(t *testing.T) {
    b, err := NewBoard().Play(NewMove(First, 0, 4))
    if err != nil {
        t.Fatalf("first move failed: %v", err)
    }
    if got := b.ForcedMove(); got != MustPlayIn(4) {
        t.Fatalf("expected MustPlayIn(4), got %+v", got)
    }
    if b.ToMove() != Second {
        t.Fatalf("expected Second to move, got %v", b.ToMove())
    }
    if got := b.SubBoards()[0].Cells()[4]; got != MarkedBy(First) {
        t.Fatalf("expected X in sub-board 0 cell 4, got %v", got)
    }
    if _, err := b.Play(Move{Player: Second, Cell: 9}); !errors.Is(err, ErrWrongSubBoard) {
        t.Fatalf("expected ErrWrongSubBoard, got %v", err)
    }
}

func TestPlayRejections(t *testing.T) {
    b := playCells(t, NewBoard(), 4) // X in sb0 c4, O forced to sb4
    cases := []struct {
        name string
        move Move
        want error
    }{
        {"wrong turn", Move{Player: First, Cell: 36}, ErrWrongTurn},
        {"wrong turn before wrong sub-board", Move{Player: First, Cell: 0}, ErrWrongTurn},
        {"wrong sub-board", Move{Player: Second, Cell: 0}, ErrWrongSubBoard},
        {"invalid cell low", Move{Player: Second, Cell: -1}, ErrInvalidCell},
        {"invalid cell high", Move{Player: Second, Cell: 81}, ErrInvalidCell},
        {"invalid player", Move{Player: 0, Cell: 36}, ErrInvalidCell},
    }
    for _, tc := range cases {
        got, err := b.Play(tc.move)
        if !errors.Is(err, tc.want) {
            t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
        }
        if got != b {
            t.Fatalf("%s: board changed on rejection", tc.name)
        }
    }

    // X: sb0 c4, O: sb4 c0 -> X forced to sb0, retry the occupied cell
    b = playCells(t, b, 36)
    if _, err := b.Play(Move{Player: First, Cell: 4}); !errors.Is(err, ErrCellOccupied) {
        t.Fatalf("expected ErrCellOccupied, got %v", err)
    }
}

func TestRejectionsMatchErrRejected(t *testing.T) {
    for _, err := range []error{ErrWrongTurn, ErrWrongSubBoard, ErrSubBoardFinished, ErrCellOccupied, ErrGameOver} {
        if !errors.Is(err, ErrRejected) {
            t.Fatalf("expected %v to match ErrRejected", err)
        }
    }
    if errors.Is(ErrInvalidCell, ErrRejected) {
        t.Fatalf("ErrInvalidCell must not be a rejection")
    }
}

func TestPlayDoesNotMutateInput(t *testing.T) {
    b := playCells(t, NewBoard(), 4, 36)
    before := b
    next, err := b.Play(Move{Player: First, Cell: 1})
    if err != nil {
        t.Fatalf("move failed: %v", err)
    }
    if b != before {
        t.Fatalf("input board mutated by accepted move")
    }
    if next == b {
        t.Fatalf("expected a new board")
    }
}

// winSubBoardZero has X take sub-board 0 along its top row.
func winSubBoardZero(t *testing.T) Board {
    t.Helper()
    return playCells(t, NewBoard(),
        0,  // X sb0 c0 -> O to sb0
        5,  // O sb0 c5 -> X to sb5
        50, // X sb5 c5 -> O to sb5
        45, // O sb5 c0 -> X to sb0
        1,  // X sb0 c1 -> O to sb1
        9,  // O sb1 c0 -> X to sb0
        2,  // X sb0 c2 wins sb0 -> O to sb2
    )
}

func TestWinningSubBoardAndForcedResolution(t *testing.T) {
    b := winSubBoardZero(t)
    sb := b.SubBoards()[0]
    if p, ok := sb.Winner(); !ok || p != First {
        t.Fatalf("expected sub-board 0 won by X, got %v", sb)
    }
    if !b.FinishedFlags()[0] {
        t.Fatalf("expected sub-board 0 flagged finished")
    }
    if got := b.ForcedMove(); got != MustPlayIn(2) {
        t.Fatalf("expected MustPlayIn(2), got %+v", got)
    }

    // O lands on c0, but sb0 is decided: X may play anywhere.
    b = playCells(t, b, 18)
    if got := b.ForcedMove(); got != Anywhere() {
        t.Fatalf("expected Anywhere, got %+v", got)
    }
    if _, err := b.Play(Move{Player: First, Cell: 3}); !errors.Is(err, ErrSubBoardFinished) {
        t.Fatalf("expected ErrSubBoardFinished, got %v", err)
    }
    if _, err := b.Play(Move{Player: First, Cell: 80}); err != nil {
        t.Fatalf("expected free choice after Anywhere, got %v", err)
    }
}

func TestSubBoardEvaluate(t *testing.T) {
    x, o := MarkedBy(First), MarkedBy(Second)
    for _, ln := range winLines {
        var cells [9]Cell
        for _, i := range ln {
            cells[i] = o
        }
        got := UnfinishedSubBoard(cells).Evaluate()
        if p, ok := got.Winner(); !ok || p != Second {
            t.Fatalf("expected O to win on line %v, got %v", ln, got)
        }
    }

    drawn := UnfinishedSubBoard([9]Cell{x, o, x, x, o, o, o, x, x}).Evaluate()
    if drawn.Status() != Drawn {
        t.Fatalf("expected drawn, got %v", drawn)
    }

    open := UnfinishedSubBoard([9]Cell{x, o, x, x, o, o, o, x, Empty})
    if got := open.Evaluate(); got != open {
        t.Fatalf("expected unfinished unchanged, got %v", got)
    }

    for _, sb := range []SubBoard{WonSubBoard(First), WonSubBoard(Second), DrawnSubBoard()} {
        if sb.Evaluate() != sb || sb.Evaluate().Evaluate() != sb {
            t.Fatalf("terminal sub-board %v changed on evaluate", sb)
        }
    }
}

func TestMetaBoardWin(t *testing.T) {
    x := MarkedBy(First)
    var b Board
    b.subBoards[0] = WonSubBoard(First)
    b.subBoards[1] = WonSubBoard(First)
    b.subBoards[2] = UnfinishedSubBoard([9]Cell{x, x})
    b.toMove = First
    b.forced = MustPlayIn(2)
    if !b.Outcome().InProgress() {
        t.Fatalf("expected in progress before the winning move")
    }

    b = playCells(t, b, 2*9+2)
    out := b.Outcome()
    if out.Status != Won || out.Winner != First {
        t.Fatalf("expected X to win the game, got %+v", out)
    }
    if b.Outcome() != out {
        t.Fatalf("outcome not stable under re-evaluation")
    }
}

func TestDrawnSubBoardNeverCompletesLine(t *testing.T) {
    var b Board
    b.subBoards[0] = WonSubBoard(First)
    b.subBoards[1] = DrawnSubBoard()
    b.subBoards[2] = WonSubBoard(First)
    b.toMove = First
    if !b.Outcome().InProgress() {
        t.Fatalf("expected in progress, got %+v", b.Outcome())
    }
}

func TestMetaBoardDraw(t *testing.T) {
    x, o := MarkedBy(First), MarkedBy(Second)
    var b Board
    // X O X / X O O / O X _
    for i, p := range []Player{First, Second, First, First, Second, Second, Second, First} {
        b.subBoards[i] = WonSubBoard(p)
    }
    b.subBoards[8] = UnfinishedSubBoard([9]Cell{x, o, x, x, o, o, o, x, Empty})
    b.toMove = First
    b.forced = MustPlayIn(8)

    b = playCells(t, b, 80)
    if b.SubBoards()[8].Status() != Drawn {
        t.Fatalf("expected last sub-board drawn, got %v", b.SubBoards()[8])
    }
    if got := b.ForcedMove(); got != Anywhere() {
        t.Fatalf("expected Anywhere after landing on a finished sub-board, got %+v", got)
    }
    if out := b.Outcome(); out.Status != Drawn {
        t.Fatalf("expected drawn game, got %+v", out)
    }
}

// randomGame plays legal random moves until the game is decided.
func randomGame(t *testing.T, seed int64) ([]Board, []Move) {
    t.Helper()
    rng := rand.New(rand.NewSource(seed))
    b := NewBoard()
    boards := []Board{b}
    var moves []Move
    for b.Outcome().InProgress() {
        var legal []Move
        for c := 0; c < Cells; c++ {
            m := Move{Player: b.ToMove(), Cell: c}
            if b.Playable(m) {
                legal = append(legal, m)
            }
        }
        if len(legal) == 0 {
            t.Fatalf("seed %d: no legal move on an unfinished board", seed)
        }
        m := legal[rng.Intn(len(legal))]
        next, err := b.Play(m)
        if err != nil {
            t.Fatalf("seed %d: legal move rejected: %v", seed, err)
        }
        b = next
        boards = append(boards, b)
        moves = append(moves, m)
    }
    return boards, moves
}

func TestRandomGamesKeepInvariants(t *testing.T) {
    for seed := int64(1); seed <= 50; seed++ {
        boards, moves := randomGame(t, seed)
        for i, m := range moves {
            prev, cur := boards[i], boards[i+1]
            if cur.ToMove() != prev.ToMove().Other() {
                t.Fatalf("seed %d move %d: turn did not alternate", seed, i)
            }
            landed := m.CellIndex()
            want := MustPlayIn(landed)
            if cur.SubBoards()[landed].Finished() {
                want = Anywhere()
            }
            if cur.ForcedMove() != want {
                t.Fatalf("seed %d move %d: forced %+v, want %+v", seed, i, cur.ForcedMove(), want)
            }
            for j, sb := range prev.SubBoards() {
                if sb.Finished() && cur.SubBoards()[j] != sb {
                    t.Fatalf("seed %d move %d: terminal sub-board %d reopened", seed, i, j)
                }
            }
            if first, again := cur.Outcome(), cur.Outcome(); first != again {
                t.Fatalf("seed %d move %d: outcome not stable", seed, i)
            }
        }
        if out := boards[len(boards)-1].Outcome(); out.InProgress() {
            t.Fatalf("seed %d: game ended in progress", seed)
        }
    }
}
