// Package lobby wraps a single draftengine.Engine instance with the
// metadata described in spec.md §4.2: joined players, update listeners,
// per-round/per-pick deadlines, and the client-facing state projection.
// A Lobby has no lock of its own — every exported method is expected to
// run on the Lobby Manager's single-writer execution context
// (internal/manager), the same way draftengine.Engine expects serialized
// callers.
package lobby

import (
	"time"

	"github.com/CharlesMicou/pkmn-draft/internal/draftengine"
	"github.com/CharlesMicou/pkmn-draft/internal/itemdb"
)

// PlayerID and ItemID are re-exported from draftengine so lobby callers
// don't need to import it directly for these common types.
type PlayerID = draftengine.PlayerID
type ItemID = draftengine.ItemID

// Capacity is the fixed maximum number of joined players per lobby
// (spec.md §4.2).
const Capacity = 6

// Per-pick deadline constants (spec.md §4.2 "Deadline generation").
const (
	tItemSeconds  = 8.0
	tSlushSeconds = 2.0
)

// UpdateReply is delivered to a parked long-poll listener exactly once,
// either immediately (internal/manager.BlockForUpdate) or later from
// checkListeners.
type UpdateReply struct {
	State LobbyStateForPlayer
}

// listener is one parked long-poll reply, tagged with the fingerprint the
// client already had when it asked to be woken (spec.md §4.2 "Listeners").
type listener struct {
	fingerprint uint64
	reply       chan UpdateReply
}

// Deadline names an absolute instant the Lobby Manager should hand back to
// the Deadline Scheduler, together with the (round, pick) it belongs to
// (spec.md §9 "Deadline chaining").
type Deadline struct {
	Round int
	Pick  int
	At    time.Time
}

// Lobby is the entity from spec.md §3: capacity, optional draft state,
// joined players, listener lists, and per-(round,pick) deadlines.
type Lobby struct {
	ID      uint64
	SetName string
	set     itemdb.DraftSet

	joinOrder []PlayerID
	names     map[PlayerID]string

	engine   *draftengine.Engine
	packSize int // fixed for the whole draft once Start succeeds

	deadlines [][]time.Time // deadlines[round][pick]
	listeners map[PlayerID][]*listener
}

// New constructs an empty, unstarted lobby for the named item set.
func New(id uint64, setName string, set itemdb.DraftSet) *Lobby {
	return &Lobby{
		ID:        id,
		SetName:   setName,
		set:       set,
		names:     make(map[PlayerID]string),
		listeners: make(map[PlayerID][]*listener),
	}
}

// Started reports whether the draft has begun.
func (l *Lobby) Started() bool { return l.engine != nil }

// IsFinished reports whether the draft has started and completed
// (spec.md §4.2 "draft_is_finished").
func (l *Lobby) IsFinished() bool {
	return l.engine != nil && l.engine.DraftIsDone()
}

// JoinedCount returns how many players have joined so far.
func (l *Lobby) JoinedCount() int { return len(l.joinOrder) }
