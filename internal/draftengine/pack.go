package draftengine

import (
	"math/rand"

	"github.com/CharlesMicou/pkmn-draft/internal/corerr"
)

// GeneratePacks shuffles itemIDs uniformly and consumes the first
// numPacks*packSize of them, grouped into consecutive packs, per spec.md
// §4.1's "Pack generation". Every item id appears in at most one pack
// across the entire result.
//
// rng is an injected *rand.Rand rather than a package-global source so
// that (a) the Engine stays deterministic and I/O-free given a fixed seed,
// and (b) tests can assert the "same seed in, same packs out" property
// from spec.md §8 without going through crypto/rand. In production,
// internal/lobby calls this at lobby Start time with a *rand.Rand that
// internal/manager seeds from crypto/rand.
func GeneratePacks(rng *rand.Rand, itemIDs []ItemID, numPacks, packSize int) ([][]ItemID, error) {
	needed := numPacks * packSize
	if needed > len(itemIDs) {
		return nil, corerr.New(corerr.PackGenInsufficientItems,
			"need enough items to fill every pack")
	}

	shuffled := make([]ItemID, len(itemIDs))
	copy(shuffled, itemIDs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	packs := make([][]ItemID, numPacks)
	for i := 0; i < numPacks; i++ {
		pack := make([]ItemID, packSize)
		copy(pack, shuffled[i*packSize:(i+1)*packSize])
		packs[i] = pack
	}
	return packs, nil
}
