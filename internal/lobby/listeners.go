package lobby

import "time"

// Fingerprint implements spec.md §4.2 "Game-state fingerprint". It is a
// single 64-bit integer that changes whenever any visible-to-player_id
// change occurs; see the bit-field layout comment at each branch. It does
// not only grow: a pick that empties the player's pending queue adds 1 but
// clears the 2^10 bit.
func (l *Lobby) Fingerprint(playerID PlayerID) uint64 {
	if !l.Started() {
		// num_players * 2^20
		return uint64(len(l.joinOrder)) << 20
	}
	p, ok := l.engine.Player(playerID)
	if !ok {
		return 0
	}
	// allocated_count + 2^10*(pending_nonempty?1:0) + 2^20*num_players
	fp := uint64(len(p.Allocated))
	if len(p.Pending) > 0 {
		fp |= 1 << 10
	}
	fp |= uint64(len(l.joinOrder)) << 20
	return fp
}

// AddListener implements spec.md §4.2 "Listeners". now is used only to
// build the immediately-flushed state snapshot, not to judge staleness.
func (l *Lobby) AddListener(playerID PlayerID, fingerprint uint64, reply chan UpdateReply, now time.Time) {
	_, known := l.names[playerID]
	current := l.Fingerprint(playerID)

	if !known || l.IsFinished() || fingerprint != current {
		l.flush(reply, playerID, now)
		return
	}
	l.listeners[playerID] = append(l.listeners[playerID], &listener{fingerprint: fingerprint, reply: reply})
}

// checkListeners implements spec.md §4.2 "check_listeners": called after
// every mutation, it flushes every parked listener whose stored
// fingerprint no longer matches the player's current one, or if the
// draft has finished, retaining the rest.
func (l *Lobby) checkListeners(now time.Time) {
	finished := l.IsFinished()
	for pid, parked := range l.listeners {
		if len(parked) == 0 {
			continue
		}
		fp := l.Fingerprint(pid)
		kept := parked[:0]
		for _, lst := range parked {
			if finished || lst.fingerprint != fp {
				l.flush(lst.reply, pid, now)
				continue
			}
			kept = append(kept, lst)
		}
		l.listeners[pid] = kept
	}
}

// flush sends one reply and forgets the channel. A full/closed/abandoned
// receiver is not an error (spec.md §5 "Cancellation and timeouts") —
// reply is expected to be buffered with capacity 1 by its creator, so the
// default case below only fires for an already-abandoned listener.
func (l *Lobby) flush(reply chan UpdateReply, playerID PlayerID, now time.Time) {
	select {
	case reply <- UpdateReply{State: l.StateForPlayer(playerID, now)}:
	default:
	}
}
