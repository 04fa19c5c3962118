package draftengine

import (
	"fmt"
	"sort"

	"github.com/CharlesMicou/pkmn-draft/internal/corerr"
)

// Engine is the draft state machine described in spec.md §4.1. All
// mutations happen inside a single method call; callers (internal/lobby)
// are responsible for serializing access — the Engine itself holds no
// lock.
type Engine struct {
	players      map[PlayerID]*PlayerState
	turnOrder    []PlayerID
	rounds       []Round
	currentRound int
	direction    bool // true = forward (turnOrder[i] -> turnOrder[i+1])
	nextPackID   PackID
}

// NewEngine constructs a draft state machine from N player ids, a
// precomputed sequence of packs (length numRounds*N, already partitioned
// into numRounds groups of N consecutive packs each — the layout
// GeneratePacks produces when called once per round, or a single call with
// numPacks = numRounds*N), and numRounds. Round 0 is dealt one pack per
// player immediately, matching packs[i] to turnOrder[i] (spec.md §4.1
// "Construction").
func NewEngine(turnOrder []PlayerID, packs [][]ItemID, numRounds int) (*Engine, error) {
	n := len(turnOrder)
	if n == 0 {
		return nil, corerr.New(corerr.EmptyLobby, "at least one player is required")
	}
	if numRounds <= 0 {
		return nil, fmt.Errorf("draftengine: numRounds must be positive, got %d", numRounds)
	}
	if len(packs) != numRounds*n {
		return nil, fmt.Errorf("draftengine: expected %d packs (numRounds*N), got %d", numRounds*n, len(packs))
	}

	e := &Engine{
		players:      make(map[PlayerID]*PlayerState, n),
		turnOrder:    append([]PlayerID(nil), turnOrder...),
		rounds:       make([]Round, numRounds),
		currentRound: 0,
		direction:    true,
		nextPackID:   1,
	}
	for _, pid := range turnOrder {
		e.players[pid] = &PlayerState{}
	}

	for r := 0; r < numRounds; r++ {
		roundPacks := packs[r*n : (r+1)*n]
		e.rounds[r] = Round{Packs: make(map[PackID]*Pack, n)}
		for i, items := range roundPacks {
			id := e.nextPackID
			e.nextPackID++
			cp := make([]ItemID, len(items))
			copy(cp, items)
			e.rounds[r].Packs[id] = &Pack{ID: id, Items: cp}
			if r == 0 {
				e.players[turnOrder[i]].Pending = append(e.players[turnOrder[i]].Pending, id)
			}
		}
	}

	return e, nil
}

// NumRounds returns the total configured round count.
func (e *Engine) NumRounds() int { return len(e.rounds) }

// CurrentRoundIdx returns the 0-based index of the in-progress round.
func (e *Engine) CurrentRoundIdx() int { return e.currentRound }

// Direction returns true if the current round passes packs forward
// (turnOrder[i] -> turnOrder[i+1]), false if backward.
func (e *Engine) Direction() bool { return e.direction }

// TurnOrder returns the configured player order (read-only; do not mutate
// the returned slice).
func (e *Engine) TurnOrder() []PlayerID { return e.turnOrder }

// Player returns the read-only state for a player, or false if unknown.
func (e *Engine) Player(id PlayerID) (PlayerState, bool) {
	p, ok := e.players[id]
	if !ok {
		return PlayerState{}, false
	}
	return *p, true
}

// PackContents returns the current contents of a pack within the current
// round, or false if no such pack exists there.
func (e *Engine) PackContents(packID PackID) ([]ItemID, bool) {
	pack, ok := e.rounds[e.currentRound].Packs[packID]
	if !ok {
		return nil, false
	}
	return append([]ItemID(nil), pack.Items...), true
}

// Pick implements spec.md §4.1's "Pick operation". On success it appends
// itemID to playerID's allocated list, shrinks the pack, and either
// re-queues the pack on the next player in turn order (current direction)
// or retires it if empty. On any error the draft state is left completely
// unchanged (spec.md §8 boundary: "draft state unchanged").
func (e *Engine) Pick(playerID PlayerID, itemID ItemID) error {
	player, ok := e.players[playerID]
	if !ok {
		return corerr.New(corerr.PlayerNotFound, fmt.Sprintf("player %d not in this draft", playerID))
	}
	if len(player.Pending) == 0 {
		return corerr.New(corerr.NoPacks, "player has no pending pack")
	}

	packID := player.Pending[0]
	round := &e.rounds[e.currentRound]
	pack, ok := round.Packs[packID]
	if !ok {
		panic(fmt.Sprintf("draftengine: pack %d pending for player %d missing from round %d", packID, playerID, e.currentRound))
	}

	idx := pack.indexOf(itemID)
	if idx < 0 {
		return corerr.New(corerr.ItemNotInPack, fmt.Sprintf("item %d not in head pack", itemID))
	}

	// All validation passed; now mutate.
	player.Pending = player.Pending[1:]
	player.Allocated = append(player.Allocated, itemID)
	pack.removeAt(idx)

	if len(pack.Items) > 0 {
		next := e.nextPlayerID(playerID)
		e.players[next].Pending = append(e.players[next].Pending, packID)
	}
	// Else: pack is retired in place (stays in round.Packs, empty).

	return nil
}

// nextPlayerID returns the player that follows playerID in turnOrder under
// the current direction (spec.md §4.1 step 5: "+1 in round 0, -1 in round
// 1, +1 in round 2, ..., modulo N").
func (e *Engine) nextPlayerID(playerID PlayerID) PlayerID {
	n := len(e.turnOrder)
	idx := -1
	for i, pid := range e.turnOrder {
		if pid == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		panic(fmt.Sprintf("draftengine: player %d not found in turnOrder", playerID))
	}
	if e.direction {
		idx = (idx + 1) % n
	} else {
		idx = (idx - 1 + n) % n
	}
	return e.turnOrder[idx]
}

// RoundIsDone reports whether every pack in the current round is empty.
func (e *Engine) RoundIsDone() bool {
	for _, pack := range e.rounds[e.currentRound].Packs {
		if len(pack.Items) > 0 {
			return false
		}
	}
	return true
}

// RoundsRemaining returns how many rounds remain after the current one.
func (e *Engine) RoundsRemaining() int {
	return len(e.rounds) - (e.currentRound + 1)
}

// DraftIsDone reports whether the round is done and no rounds remain.
func (e *Engine) DraftIsDone() bool {
	return e.RoundIsDone() && e.RoundsRemaining() == 0
}

// StartNextRound advances to the next round, flips direction, and deals
// one pack per player from that round's precomputed pack set (spec.md
// §4.1 "Round lifecycle"). It panics if called when no round remains or
// the current round is not done — callers (internal/lobby) are expected
// to have checked RoundIsDone/RoundsRemaining first, since this represents
// a programmer error, not a user-facing one.
func (e *Engine) StartNextRound() {
	if !e.RoundIsDone() {
		panic("draftengine: StartNextRound called before current round finished")
	}
	if e.RoundsRemaining() <= 0 {
		panic("draftengine: StartNextRound called with no rounds remaining")
	}

	e.currentRound++
	e.direction = !e.direction

	round := &e.rounds[e.currentRound]
	// Pack ids within a round's map have no inherent order; deal them out
	// in ascending pack-id order (assigned sequentially at construction,
	// so this reproduces the original per-round pack ordering) matched to
	// turnOrder position.
	ids := make([]PackID, 0, len(round.Packs))
	for id := range round.Packs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for i, id := range ids {
		pid := e.turnOrder[i]
		e.players[pid].Pending = append(e.players[pid].Pending, id)
	}
}
