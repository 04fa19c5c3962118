package httpapi

import (
	"strconv"

	"github.com/CharlesMicou/pkmn-draft/internal/lobby"
)

// pendingPickView and allocatedPickView mirror lobby.PendingPick and
// lobby.AllocatedPick in JSON form (spec.md §6's "pending picks as
// (item_id, template, stats) ... raw plain-text picks"). Item ids are
// rendered as strings: they are opaque 64-bit values, and a uint64 can
// exceed the 2^53 integers a JSON number survives intact in a JavaScript
// client.
type pendingPickView struct {
	ItemID   string `json:"item_id"`
	Template string `json:"template"`
	Stats    string `json:"stats"`
	Text     string `json:"text"`
}

type allocatedPickView struct {
	Template string `json:"template"`
	Stats    string `json:"stats"`
	Text     string `json:"text"`
}

// lobbyStateView is the wire form of lobby.LobbyStateForPlayer (spec.md §6
// "LobbyStateForPlayer projection").
type lobbyStateView struct {
	LobbyID  string `json:"lobby_id"`
	PlayerID uint32 `json:"player_id"`

	JoiningPlayers []string `json:"joining_players"`
	OpenSlots      int      `json:"open_slots"`

	PendingPicks   []pendingPickView   `json:"pending_picks"`
	AllocatedPicks []allocatedPickView `json:"allocated_picks"`

	GameState uint64 `json:"game_state"`
	Finished  bool   `json:"draft_is_finished"`

	SecondsToDeadline *float64 `json:"seconds_to_deadline"`
	DraftOrder        []string `json:"draft_order"`

	CurrentRound int `json:"current_round"`
	TotalRounds  int `json:"total_rounds"`
	CurrentPick  int `json:"current_pick"`
	PackSize     int `json:"pack_size"`
}

func toLobbyStateView(s lobby.LobbyStateForPlayer) lobbyStateView {
	pending := make([]pendingPickView, 0, len(s.PendingPicks))
	for _, p := range s.PendingPicks {
		pending = append(pending, pendingPickView{
			ItemID:   strconv.FormatUint(p.ItemID, 10),
			Template: p.Template,
			Stats:    p.Stats,
			Text:     p.Text,
		})
	}
	allocated := make([]allocatedPickView, 0, len(s.AllocatedPicks))
	for _, a := range s.AllocatedPicks {
		allocated = append(allocated, allocatedPickView{
			Template: a.Template,
			Stats:    a.Stats,
			Text:     a.Text,
		})
	}

	view := lobbyStateView{
		LobbyID:        strconv.FormatUint(s.LobbyID, 10),
		PlayerID:       s.PlayerID,
		JoiningPlayers: s.JoiningPlayers,
		OpenSlots:      s.OpenSlots,
		PendingPicks:   pending,
		AllocatedPicks: allocated,
		GameState:      s.Fingerprint,
		Finished:       s.Finished,
		DraftOrder:     s.DraftOrder,
		CurrentRound:   s.CurrentRound,
		TotalRounds:    s.TotalRounds,
		CurrentPick:    s.CurrentPick,
		PackSize:       s.PackSize,
	}
	if s.SecondsToDeadline != nil {
		secs := *s.SecondsToDeadline
		view.SecondsToDeadline = &secs
	}
	return view
}
