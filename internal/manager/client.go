package manager

import (
	"context"

	"github.com/CharlesMicou/pkmn-draft/internal/lobby"
)

// CreateLobby implements spec.md §4.4's CreateLobby request.
func (m *Manager) CreateLobby(ctx context.Context, setName string) (uint64, error) {
	reply := make(chan createLobbyReply, 1)
	m.enqueue(ctx, &createLobbyRequest{setName: setName, reply: reply})
	select {
	case r := <-reply:
		return r.LobbyID, r.Err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// JoinLobby implements spec.md §4.4's JoinLobby request.
func (m *Manager) JoinLobby(ctx context.Context, lobbyID uint64, name string) (lobby.PlayerID, error) {
	reply := make(chan joinLobbyReply, 1)
	m.enqueue(ctx, &joinLobbyRequest{lobbyID: lobbyID, name: name, reply: reply})
	select {
	case r := <-reply:
		return r.PlayerID, r.Err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// StartLobby implements spec.md §4.4's StartLobby request.
func (m *Manager) StartLobby(ctx context.Context, lobbyID uint64) error {
	reply := make(chan startLobbyReply, 1)
	m.enqueue(ctx, &startLobbyRequest{lobbyID: lobbyID, reply: reply})
	select {
	case r := <-reply:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetLobbyState implements spec.md §4.4's GetLobbyState request.
func (m *Manager) GetLobbyState(ctx context.Context, lobbyID uint64, playerID lobby.PlayerID) (lobby.LobbyStateForPlayer, error) {
	reply := make(chan getStateReply, 1)
	m.enqueue(ctx, &getStateRequest{lobbyID: lobbyID, playerID: playerID, reply: reply})
	select {
	case r := <-reply:
		return r.State, r.Err
	case <-ctx.Done():
		return lobby.LobbyStateForPlayer{}, ctx.Err()
	}
}

// MakePick implements spec.md §4.4's MakePick request.
func (m *Manager) MakePick(ctx context.Context, lobbyID uint64, playerID lobby.PlayerID, itemID lobby.ItemID) error {
	reply := make(chan makePickReply, 1)
	m.enqueue(ctx, &makePickRequest{lobbyID: lobbyID, playerID: playerID, itemID: itemID, reply: reply})
	select {
	case r := <-reply:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BlockForUpdate implements spec.md §4.4's BlockForUpdate request: it
// parks a one-shot listener inside the target lobby and waits for either
// that listener to fire or ctx to be canceled (e.g. the client
// disconnected — spec.md §5 "Cancellation and timeouts").
func (m *Manager) BlockForUpdate(ctx context.Context, lobbyID uint64, playerID lobby.PlayerID, fingerprint uint64) (lobby.UpdateReply, error) {
	reply := make(chan lobby.UpdateReply, 1)
	m.enqueue(ctx, &blockForUpdateRequest{lobbyID: lobbyID, playerID: playerID, fingerprint: fingerprint, reply: reply})
	select {
	case r := <-reply:
		return r, nil
	case <-ctx.Done():
		return lobby.UpdateReply{}, ctx.Err()
	}
}
