package lobby

import "time"

// PendingPick is one item currently available to pick, per spec.md §6
// "LobbyStateForPlayer projection".
type PendingPick struct {
	ItemID   ItemID
	Template string
	Stats    string
	Text     string
}

// AllocatedPick is one item a player has already picked.
type AllocatedPick struct {
	Template string
	Stats    string
	Text     string
}

// LobbyStateForPlayer is the client-facing snapshot returned to the
// presentation layer (spec.md §6).
type LobbyStateForPlayer struct {
	LobbyID  uint64
	PlayerID PlayerID

	JoiningPlayers []string // empty once started
	OpenSlots      int      // empty (0) once started

	PendingPicks   []PendingPick
	AllocatedPicks []AllocatedPick

	Fingerprint uint64
	Finished    bool

	SecondsToDeadline *float64 // nil if no deadline applies
	DraftOrder        []string // names; empty once finished

	CurrentRound int
	TotalRounds  int
	CurrentPick  int
	PackSize     int
}

// PlayerNames implements spec.md §4.2 "get_player_names".
func (l *Lobby) PlayerNames() map[PlayerID]string {
	out := make(map[PlayerID]string, len(l.names))
	for k, v := range l.names {
		out[k] = v
	}
	return out
}

// DraftOrderNames implements spec.md §4.2 "get_draft_order": turn_order
// mapped to names, reversed when direction is false, empty once finished.
func (l *Lobby) DraftOrderNames() []string {
	if !l.Started() || l.IsFinished() {
		return nil
	}
	order := l.engine.TurnOrder()
	names := make([]string, len(order))
	for i, pid := range order {
		names[i] = l.names[pid]
	}
	if !l.engine.Direction() {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}
	return names
}

// CurrentPackContentsForPlayer implements spec.md §4.2
// "get_current_pack_contents_for_player".
func (l *Lobby) CurrentPackContentsForPlayer(playerID PlayerID) []ItemID {
	if !l.Started() {
		return nil
	}
	p, ok := l.engine.Player(playerID)
	if !ok || len(p.Pending) == 0 {
		return nil
	}
	contents, _ := l.engine.PackContents(p.Pending[0])
	return contents
}

// NextDeadlineForPlayer implements spec.md §4.2
// "get_next_deadline_for_player": looked up by (current_round_idx,
// allocated_count mod pack_size). Per spec.md §9's open-question note,
// this is an advisory display value once a player has fallen behind the
// live pick index due to prior auto-picks, not an authoritative deadline.
func (l *Lobby) NextDeadlineForPlayer(playerID PlayerID) (time.Time, bool) {
	if !l.Started() || l.packSize == 0 {
		return time.Time{}, false
	}
	p, ok := l.engine.Player(playerID)
	if !ok {
		return time.Time{}, false
	}
	round := l.engine.CurrentRoundIdx()
	pick := len(p.Allocated) % l.packSize
	return l.DeadlineAt(round, pick)
}

// StateForPlayer implements spec.md §4.2 "compute_state".
func (l *Lobby) StateForPlayer(playerID PlayerID, now time.Time) LobbyStateForPlayer {
	state := LobbyStateForPlayer{
		LobbyID:     l.ID,
		PlayerID:    playerID,
		Fingerprint: l.Fingerprint(playerID),
		Finished:    l.IsFinished(),
		DraftOrder:  l.DraftOrderNames(),
		PackSize:    l.packSize,
	}

	if !l.Started() {
		for _, pid := range l.joinOrder {
			state.JoiningPlayers = append(state.JoiningPlayers, l.names[pid])
		}
		state.OpenSlots = Capacity - len(l.joinOrder)
		return state
	}

	state.TotalRounds = l.engine.NumRounds()
	state.CurrentRound = l.engine.CurrentRoundIdx()

	p, ok := l.engine.Player(playerID)
	if !ok {
		return state
	}

	state.CurrentPick = len(p.Allocated) % l.packSize
	for _, id := range p.Allocated {
		item := l.set.Items[id]
		state.AllocatedPicks = append(state.AllocatedPicks, AllocatedPick{
			Template: item.Template,
			Stats:    item.Stats,
			Text:     item.Text,
		})
	}
	for _, id := range l.CurrentPackContentsForPlayer(playerID) {
		item := l.set.Items[id]
		state.PendingPicks = append(state.PendingPicks, PendingPick{
			ItemID:   id,
			Template: item.Template,
			Stats:    item.Stats,
			Text:     item.Text,
		})
	}

	if d, ok := l.NextDeadlineForPlayer(playerID); ok {
		secs := d.Sub(now).Seconds()
		state.SecondsToDeadline = &secs
	}

	return state
}
