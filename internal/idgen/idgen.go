// Package idgen generates cryptographically random integer identifiers by
// rejection sampling against a container's existing key set, per the
// Identifier Policy in spec.md §3: lobby ids are 64-bit, player ids are
// 32-bit, and both must avoid leaking container size or being guessable by
// other players.
package idgen

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// maxAttempts bounds rejection sampling so a pathologically full container
// (which should never happen at game-relevant scale) fails loudly instead
// of looping forever.
const maxAttempts = 10000

// NewLobbyID returns a random uint64 not already present in existing.
func NewLobbyID(existing map[uint64]struct{}) (uint64, error) {
	for i := 0; i < maxAttempts; i++ {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("idgen: read random bytes: %w", err)
		}
		id := binary.BigEndian.Uint64(buf[:])
		if _, taken := existing[id]; !taken {
			return id, nil
		}
	}
	return 0, fmt.Errorf("idgen: exhausted %d attempts generating a lobby id", maxAttempts)
}

// NewPlayerID returns a random uint32 not already present in existing.
func NewPlayerID(existing map[uint32]struct{}) (uint32, error) {
	for i := 0; i < maxAttempts; i++ {
		var buf [4]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, fmt.Errorf("idgen: read random bytes: %w", err)
		}
		id := binary.BigEndian.Uint32(buf[:])
		if _, taken := existing[id]; !taken {
			return id, nil
		}
	}
	return 0, fmt.Errorf("idgen: exhausted %d attempts generating a player id", maxAttempts)
}

// NewPackID returns a random uint64 not already present in existing. Pack
// ids only need to be unique within a single DraftState, not
// cryptographically unguessable, but we reuse the same rejection-sampling
// shape for consistency.
func NewPackID(existing map[uint64]struct{}) (uint64, error) {
	return NewLobbyID(existing)
}
