package domain

// Player identifies one of the two sides.
type Player uint8

const (
    First Player = iota + 1
    Second
)

// Valid reports whether p is First or Second.
func (p Player) Valid() bool { return p == First || p == Second }

// Other returns the opponent of p.
func (p Player) Other() Player {
    switch p {
    case First:
        return Second
    case Second:
        return First
    default:
        panic("domain: invalid player")
    }
}

func (p Player) String() string {
    switch p {
    case First:
        return "X"
    case Second:
        return "O"
    default:
        return ""
    }
}

// Cell is either Empty or marked by a player.
type Cell uint8

// Empty is the unmarked cell.
const Empty Cell = 0

// MarkedBy returns the cell holding p's mark.
func MarkedBy(p Player) Cell { return Cell(p) }

// Owner returns the player whose mark is in c.
func (c Cell) Owner() (Player, bool) {
    p := Player(c)
    return p, p.Valid()
}

func (c Cell) String() string { return Player(c).String() }
