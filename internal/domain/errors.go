package domain

import (
    "errors"
    "fmt"
)

// ErrRejected matches every rejection returned for an otherwise well-formed
// move. The board is left untouched and the caller may try another move.
var ErrRejected = errors.New("move rejected")

// Rejection causes returned by Board.Play and History.Play.
var (
    ErrWrongTurn        = rejection("wrong turn")
    ErrWrongSubBoard    = rejection("wrong sub-board")
    ErrSubBoardFinished = rejection("sub-board finished")
    ErrCellOccupied     = rejection("cell occupied")
    ErrGameOver         = rejection("game over")
)

// ErrInvalidCell is returned for a move outside 0..80 or with no valid player.
// It signals a caller bug rather than a rejected move.
var ErrInvalidCell = errors.New("invalid cell")

// ErrDecode matches every *DecodeError.
var ErrDecode = errors.New("decode snapshot")

type rejectedError struct{ msg string }

func rejection(msg string) error { return &rejectedError{msg: msg} }

func (e *rejectedError) Error() string { return e.msg }

func (e *rejectedError) Is(target error) bool { return target == ErrRejected }

// DecodeError describes why a persisted board could not be restored.
type DecodeError struct {
    Offset int
    Reason string
}

func (e *DecodeError) Error() string {
    return fmt.Sprintf("decode snapshot: offset %d: %s", e.Offset, e.Reason)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
