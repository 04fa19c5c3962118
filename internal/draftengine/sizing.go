package draftengine

import "fmt"

// Sizing is the (rounds, pack size) pair derived from a player count, per
// the table in spec.md §4.1.
type Sizing struct {
	Rounds   int
	PackSize int
}

// SizingForPlayerCount returns the round/pack-size configuration for n
// players. Callers are expected to have already rejected n == 0 (spec.md's
// *empty-lobby* error) and n > 6 (unreachable given the fixed lobby
// capacity of 6, spec.md §4.2) before calling this — passing an
// out-of-table n here is a structural invariant violation, not a user
// error, so it panics rather than returning an error (spec.md §7).
func SizingForPlayerCount(n int) Sizing {
	switch {
	case n == 1:
		return Sizing{Rounds: 1, PackSize: 6}
	case n == 2:
		return Sizing{Rounds: 3, PackSize: 4}
	case n == 3, n == 4:
		return Sizing{Rounds: 3, PackSize: 6}
	case n == 5, n == 6:
		return Sizing{Rounds: 2, PackSize: 8}
	default:
		panic(fmt.Sprintf("draftengine: invalid player count %d for sizing table", n))
	}
}
