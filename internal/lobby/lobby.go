package lobby

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/CharlesMicou/pkmn-draft/internal/corerr"
	"github.com/CharlesMicou/pkmn-draft/internal/draftengine"
	"github.com/CharlesMicou/pkmn-draft/internal/idgen"
)

// AddPlayer implements spec.md §4.2 "Admission". On success it returns the
// freshly generated player id. now is threaded through purely to build
// the immediately-flushed listener state snapshots (joining bumps every
// other player's fingerprint).
func (l *Lobby) AddPlayer(name string, now time.Time) (PlayerID, error) {
	if l.Started() {
		return 0, corerr.New(corerr.AlreadyStarted, "lobby already started")
	}
	for _, existing := range l.names {
		if existing == name {
			return 0, corerr.New(corerr.NameConflict, fmt.Sprintf("name %q already joined", name))
		}
	}
	if len(l.joinOrder) >= Capacity {
		return 0, corerr.New(corerr.LobbyFull, "lobby is full")
	}

	existing := make(map[PlayerID]struct{}, len(l.joinOrder))
	for pid := range l.names {
		existing[pid] = struct{}{}
	}
	pid, err := idgen.NewPlayerID(existing)
	if err != nil {
		return 0, fmt.Errorf("lobby: generate player id: %w", err)
	}

	l.joinOrder = append(l.joinOrder, pid)
	l.names[pid] = name
	l.listeners[pid] = nil
	l.checkListeners(now)
	return pid, nil
}

// Start implements spec.md §4.2 "Start". rng drives pack generation;
// production callers seed it from crypto/rand at call time (see
// internal/manager), keeping draftengine.GeneratePacks itself
// deterministic and I/O-free.
func (l *Lobby) Start(rng *rand.Rand, now time.Time) (*Deadline, error) {
	if l.Started() {
		return nil, corerr.New(corerr.AlreadyStarted, "lobby already started")
	}
	n := len(l.joinOrder)
	if n == 0 {
		return nil, corerr.New(corerr.EmptyLobby, "cannot start an empty lobby")
	}

	sizing := draftengine.SizingForPlayerCount(n)
	packs, err := draftengine.GeneratePacks(rng, l.set.ItemIDs(), sizing.Rounds*n, sizing.PackSize)
	if err != nil {
		return nil, err
	}
	engine, err := draftengine.NewEngine(l.joinOrder, packs, sizing.Rounds)
	if err != nil {
		return nil, err
	}

	l.engine = engine
	l.packSize = sizing.PackSize
	l.deadlines = make([][]time.Time, sizing.Rounds)
	l.generateRoundDeadlines(0, now)
	l.checkListeners(now)

	return &Deadline{Round: 0, Pick: 0, At: l.deadlines[0][0]}, nil
}

// MakePick implements spec.md §4.2 "Make-pick gateway". It returns a
// non-nil Deadline only when this pick caused a round turnover — the
// per-pick deadline chain for a round is otherwise driven entirely by
// EnforceDeadline firings, since every pick-index deadline for a round is
// generated up front at round start.
func (l *Lobby) MakePick(playerID PlayerID, itemID ItemID, now time.Time) (*Deadline, error) {
	if !l.Started() {
		return nil, corerr.New(corerr.NotStarted, "draft has not started")
	}
	if err := l.engine.Pick(playerID, itemID); err != nil {
		return nil, err
	}

	next := l.onRoundTurnover(now)
	l.checkListeners(now)
	return next, nil
}

// EnforceDeadline implements spec.md §4.2 "Enforce deadline". round and
// pick identify the deadline slot that fired; they may be stale (the
// draft may have advanced past them via manual picks), in which case this
// call degrades to a harmless no-op per spec.md §5 "Cancellation and
// timeouts".
func (l *Lobby) EnforceDeadline(round, pick int, now time.Time) (*Deadline, error) {
	if !l.Started() {
		return nil, corerr.New(corerr.NotStarted, "draft has not started")
	}

	threshold := l.packSize*round + pick + 1

	type victim struct {
		id     PlayerID
		itemID ItemID
	}

	// Snapshot the victim list before mutating anything: Pick() can
	// re-enqueue a pack onto another player still in this loop's
	// iteration set (spec.md §4.2 "snapshot-then-mutate pattern").
	// Iteration is in ascending player-id order for deterministic test
	// behavior under simultaneous auto-picks (spec.md §9).
	ids := append([]PlayerID(nil), l.joinOrder...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var victims []victim
	for _, pid := range ids {
		p, ok := l.engine.Player(pid)
		if !ok || len(p.Allocated) >= threshold || len(p.Pending) == 0 {
			continue
		}
		contents, ok := l.engine.PackContents(p.Pending[0])
		if !ok || len(contents) == 0 {
			continue
		}
		victims = append(victims, victim{id: pid, itemID: contents[0]})
	}

	for _, v := range victims {
		// Best-effort: the victim's head pack may have changed since the
		// snapshot (e.g. the player already picked manually). A failed
		// force-pick here is exactly the idempotent no-op spec.md §5
		// describes, not an error to surface.
		_ = l.engine.Pick(v.id, v.itemID)
	}

	next := l.afterEnforce(round, pick, now)
	l.checkListeners(now)
	return next, nil
}

// onRoundTurnover starts the next round (and generates its deadlines) if
// the draft engine just became round-done with rounds remaining. It
// returns the resulting (round, 0) deadline, or nil if no turnover
// happened or the draft is now finished.
func (l *Lobby) onRoundTurnover(now time.Time) *Deadline {
	if l.engine.DraftIsDone() {
		return nil
	}
	if !l.engine.RoundIsDone() {
		return nil
	}
	l.engine.StartNextRound()
	round := l.engine.CurrentRoundIdx()
	l.generateRoundDeadlines(round, now)
	return &Deadline{Round: round, Pick: 0, At: l.deadlines[round][0]}
}

// afterEnforce mirrors spec.md §4.2's "Then:" clause: finished -> no
// deadline; round turnover -> that round's (_, 0) deadline; otherwise the
// next pick-index deadline within the round named by the request.
func (l *Lobby) afterEnforce(round, pick int, now time.Time) *Deadline {
	if l.engine.DraftIsDone() {
		return nil
	}
	if l.engine.RoundIsDone() {
		if l.engine.RoundsRemaining() <= 0 {
			return nil
		}
		l.engine.StartNextRound()
		newRound := l.engine.CurrentRoundIdx()
		l.generateRoundDeadlines(newRound, now)
		return &Deadline{Round: newRound, Pick: 0, At: l.deadlines[newRound][0]}
	}

	nextPick := pick + 1
	if round < 0 || round >= len(l.deadlines) || nextPick >= len(l.deadlines[round]) {
		return nil
	}
	return &Deadline{Round: round, Pick: nextPick, At: l.deadlines[round][nextPick]}
}

// generateRoundDeadlines implements spec.md §4.2 "Deadline generation":
// deadline[i] = deadline[i-1] + T_slush + T_item*(P-i), deadline[-1] = now.
func (l *Lobby) generateRoundDeadlines(round int, now time.Time) {
	p := l.packSize
	ds := make([]time.Time, p)
	prev := now
	for i := 0; i < p; i++ {
		wait := time.Duration((tSlushSeconds + tItemSeconds*float64(p-i)) * float64(time.Second))
		ds[i] = prev.Add(wait)
		prev = ds[i]
	}
	l.deadlines[round] = ds
}

// DeadlineAt returns the generated deadline instant for (round, pick), or
// false if it hasn't been generated (round not reached yet, or out of
// range).
func (l *Lobby) DeadlineAt(round, pick int) (time.Time, bool) {
	if round < 0 || round >= len(l.deadlines) {
		return time.Time{}, false
	}
	ds := l.deadlines[round]
	if pick < 0 || pick >= len(ds) {
		return time.Time{}, false
	}
	return ds[pick], true
}
