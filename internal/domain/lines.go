package domain

// winLines is shared by the sub-board and the meta-board scan. Order matters
// only for which line is reported first.
var winLines = [8][3]int{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// scanLines returns the owner of the first complete line in slots.
func scanLines[T any](slots [9]T, owner func(T) (Player, bool)) (Player, bool) {
    for _, ln := range winLines {
        a, ok := owner(slots[ln[0]])
        if !ok {
            continue
        }
        b, okb := owner(slots[ln[1]])
        c, okc := owner(slots[ln[2]])
        if okb && okc && a == b && b == c {
            return a, true
        }
    }
    return 0, false
}
