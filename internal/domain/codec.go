package domain

import (
    "bytes"
    "encoding/base64"
    "fmt"

    "github.com/near/borsh-go"
)

// Snapshot layout, version 1: the header "STT" version, then the borsh
// encoding of wireBoard:
//
//    9 x sub-board: 0 + 9 cells | 1 + player | 2
//    forced move:   0 | 1 + index
//    player to move
const (
    snapshotMagic   = "STT"
    snapshotVersion = 1
    headerLen       = len(snapshotMagic) + 1

    tagUnfinished = 0
    tagWon        = 1
    tagDrawn      = 2

    tagAnywhere   = 0
    tagMustPlayIn = 1
)

var snapshotText = base64.RawURLEncoding

type wireSubBoard struct {
    Enum       borsh.Enum `borsh_enum:"true"`
    Unfinished [9]uint8
    Won        uint8
    Drawn      struct{}
}

type wireForcedMove struct {
    Enum       borsh.Enum `borsh_enum:"true"`
    Anywhere   struct{}
    MustPlayIn uint8
}

type wireBoard struct {
    SubBoards [9]wireSubBoard
    Forced    wireForcedMove
    ToMove    uint8
}

func toWire(b Board) wireBoard {
    var w wireBoard
    for i, sb := range b.subBoards {
        switch sb.status {
        case Unfinished:
            w.SubBoards[i].Enum = tagUnfinished
            for c, cell := range sb.cells {
                w.SubBoards[i].Unfinished[c] = uint8(cell)
            }
        case Won:
            w.SubBoards[i] = wireSubBoard{Enum: tagWon, Won: uint8(sb.winner)}
        case Drawn:
            w.SubBoards[i] = wireSubBoard{Enum: tagDrawn}
        default:
            panic("domain: unknown sub-board status")
        }
    }
    if i, ok := b.forced.SubBoard(); ok {
        w.Forced = wireForcedMove{Enum: tagMustPlayIn, MustPlayIn: uint8(i)}
    }
    w.ToMove = uint8(b.toMove)
    return w
}

// fromWire checks every value and the cross-field consistency rules.
func fromWire(w wireBoard) (Board, error) {
    fail := func(reason string) error { return &DecodeError{Offset: headerLen, Reason: reason} }
    var b Board
    for i, ws := range w.SubBoards {
        switch ws.Enum {
        case tagUnfinished:
            var cells [9]Cell
            for c, v := range ws.Unfinished {
                cell := Cell(v)
                if _, ok := cell.Owner(); !ok && cell != Empty {
                    return Board{}, fail(fmt.Sprintf("sub-board %d: invalid cell", i))
                }
                cells[c] = cell
            }
            sb := UnfinishedSubBoard(cells)
            if sb.Evaluate() != sb {
                return Board{}, fail(fmt.Sprintf("sub-board %d: unfinished sub-board is already decided", i))
            }
            b.subBoards[i] = sb
        case tagWon:
            p := Player(ws.Won)
            if !p.Valid() {
                return Board{}, fail(fmt.Sprintf("sub-board %d: invalid player", i))
            }
            b.subBoards[i] = WonSubBoard(p)
        case tagDrawn:
            b.subBoards[i] = DrawnSubBoard()
        default:
            return Board{}, fail(fmt.Sprintf("sub-board %d: invalid tag", i))
        }
    }
    switch w.Forced.Enum {
    case tagAnywhere:
    case tagMustPlayIn:
        i := int(w.Forced.MustPlayIn)
        if i > 8 {
            return Board{}, fail("forced sub-board out of range")
        }
        if b.subBoards[i].Finished() {
            return Board{}, fail("forced into a finished sub-board")
        }
        b.forced = MustPlayIn(i)
    default:
        return Board{}, fail("invalid forced-move tag")
    }
    b.toMove = Player(w.ToMove)
    if !b.toMove.Valid() {
        return Board{}, fail("invalid player to move")
    }
    return b, nil
}

// Encode returns the binary snapshot of b.
func Encode(b Board) ([]byte, error) {
    payload, err := borsh.Serialize(toWire(b))
    if err != nil {
        return nil, fmt.Errorf("encode snapshot: %w", err)
    }
    out := make([]byte, 0, headerLen+len(payload))
    out = append(out, snapshotMagic...)
    out = append(out, snapshotVersion)
    return append(out, payload...), nil
}

// deserialize runs the borsh decoder, which may panic on malformed enum tags.
func deserialize(payload []byte) (w wireBoard, err error) {
    defer func() {
        if r := recover(); r != nil {
            err = fmt.Errorf("%v", r)
        }
    }()
    err = borsh.Deserialize(&w, payload)
    return w, err
}

// Decode restores a board written by Encode. Inconsistent, corrupted or
// non-canonical input yields a *DecodeError.
func Decode(data []byte) (Board, error) {
    if len(data) < headerLen || string(data[:len(snapshotMagic)]) != snapshotMagic {
        return Board{}, &DecodeError{Offset: 0, Reason: "bad magic"}
    }
    if data[len(snapshotMagic)] != snapshotVersion {
        return Board{}, &DecodeError{Offset: len(snapshotMagic), Reason: "unsupported version"}
    }
    w, err := deserialize(data[headerLen:])
    if err != nil {
        return Board{}, &DecodeError{Offset: headerLen, Reason: err.Error()}
    }
    b, err := fromWire(w)
    if err != nil {
        return Board{}, err
    }
    // Trailing bytes and any other non-canonical input fail the re-encode.
    again, err := Encode(b)
    if err != nil || !bytes.Equal(again, data) {
        return Board{}, &DecodeError{Offset: headerLen, Reason: "non-canonical snapshot"}
    }
    return b, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (b Board) MarshalBinary() ([]byte, error) { return Encode(b) }

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (b *Board) UnmarshalBinary(data []byte) error {
    v, err := Decode(data)
    if err != nil {
        return err
    }
    *b = v
    return nil
}

// MarshalText encodes b as unpadded base64url of its binary snapshot.
func (b Board) MarshalText() ([]byte, error) {
    raw, err := Encode(b)
    if err != nil {
        return nil, err
    }
    out := make([]byte, snapshotText.EncodedLen(len(raw)))
    snapshotText.Encode(out, raw)
    return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Board) UnmarshalText(text []byte) error {
    raw := make([]byte, snapshotText.DecodedLen(len(text)))
    n, err := snapshotText.Decode(raw, text)
    if err != nil {
        return &DecodeError{Offset: 0, Reason: "invalid text encoding"}
    }
    return b.UnmarshalBinary(raw[:n])
}
