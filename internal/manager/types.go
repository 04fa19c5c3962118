// Package manager implements the Lobby Manager from spec.md §4.4: the
// single-writer actor that owns every Lobby and the shared item
// Database, draining a request queue sequentially so no lobby-scoped
// state ever needs its own lock (spec.md §5 "Scheduling model").
package manager

import "github.com/CharlesMicou/pkmn-draft/internal/lobby"

type createLobbyRequest struct {
	setName string
	reply   chan createLobbyReply
}

type createLobbyReply struct {
	LobbyID uint64
	Err     error
}

type joinLobbyRequest struct {
	lobbyID uint64
	name    string
	reply   chan joinLobbyReply
}

type joinLobbyReply struct {
	PlayerID lobby.PlayerID
	Err      error
}

type startLobbyRequest struct {
	lobbyID uint64
	reply   chan startLobbyReply
}

type startLobbyReply struct {
	Err error
}

type getStateRequest struct {
	lobbyID  uint64
	playerID lobby.PlayerID
	reply    chan getStateReply
}

type getStateReply struct {
	State lobby.LobbyStateForPlayer
	Err   error
}

type makePickRequest struct {
	lobbyID  uint64
	playerID lobby.PlayerID
	itemID   lobby.ItemID
	reply    chan makePickReply
}

type makePickReply struct {
	Err error
}

// blockForUpdateRequest carries its own one-shot reply channel directly
// (spec.md §4.4 "BlockForUpdate must not block the manager"): the manager
// hands it to the target lobby as a listener and moves on; the eventual
// send happens later from inside some other request's check_listeners
// call, still on the manager's own goroutine.
type blockForUpdateRequest struct {
	lobbyID     uint64
	playerID    lobby.PlayerID
	fingerprint uint64
	reply       chan lobby.UpdateReply
}

// enforceDeadlineRequest is internal-only: it is never constructed by an
// external caller, only by the Deadline Scheduler re-entering the queue
// (spec.md §4.4). It carries no reply channel: nobody waits on its result.
type enforceDeadlineRequest struct {
	lobbyID uint64
	round   int
	pick    int
}
