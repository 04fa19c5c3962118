package manager

import (
	"context"

	"github.com/CharlesMicou/pkmn-draft/internal/corerr"
	"github.com/CharlesMicou/pkmn-draft/internal/idgen"
	"github.com/CharlesMicou/pkmn-draft/internal/lobby"
	"github.com/rs/zerolog/log"
)

// dispatch implements spec.md §4.4's request table. Every branch runs to
// completion on the manager's own goroutine.
func (m *Manager) dispatch(ctx context.Context, req any) {
	switch r := req.(type) {
	case *createLobbyRequest:
		m.handleCreateLobby(r)
	case *joinLobbyRequest:
		m.handleJoinLobby(r)
	case *startLobbyRequest:
		m.handleStartLobby(ctx, r)
	case *getStateRequest:
		m.handleGetState(r)
	case *makePickRequest:
		m.handleMakePick(ctx, r)
	case *blockForUpdateRequest:
		m.handleBlockForUpdate(r)
	case *enforceDeadlineRequest:
		m.handleEnforceDeadline(ctx, r)
	default:
		log.Error().Msgf("manager: unknown request type %T", req)
	}
}

func (m *Manager) handleCreateLobby(r *createLobbyRequest) {
	set, ok := m.db.Get(r.setName)
	if !ok {
		r.reply <- createLobbyReply{Err: corerr.New(corerr.SetUnknown, r.setName)}
		return
	}

	existing := make(map[uint64]struct{}, len(m.lobbies))
	for id := range m.lobbies {
		existing[id] = struct{}{}
	}
	id, err := idgen.NewLobbyID(existing)
	if err != nil {
		r.reply <- createLobbyReply{Err: err}
		return
	}

	m.lobbies[id] = lobby.New(id, r.setName, set)
	log.Info().Uint64("lobby_id", id).Str("set", r.setName).Msg("lobby created")
	r.reply <- createLobbyReply{LobbyID: id}
}

func (m *Manager) handleJoinLobby(r *joinLobbyRequest) {
	l, ok := m.lobbies[r.lobbyID]
	if !ok {
		r.reply <- joinLobbyReply{Err: corerr.New(corerr.LobbyNotFound, "")}
		return
	}
	pid, err := l.AddPlayer(r.name, m.clock.Now())
	r.reply <- joinLobbyReply{PlayerID: pid, Err: err}
}

func (m *Manager) handleStartLobby(ctx context.Context, r *startLobbyRequest) {
	l, ok := m.lobbies[r.lobbyID]
	if !ok {
		r.reply <- startLobbyReply{Err: corerr.New(corerr.LobbyNotFound, "")}
		return
	}

	rng, err := newCryptoSeededRand()
	if err != nil {
		r.reply <- startLobbyReply{Err: err}
		return
	}

	deadline, err := l.Start(rng, m.clock.Now())
	if err != nil {
		r.reply <- startLobbyReply{Err: err}
		return
	}

	m.scheduleDeadline(ctx, r.lobbyID, deadline)
	r.reply <- startLobbyReply{}
}

func (m *Manager) handleGetState(r *getStateRequest) {
	l, ok := m.lobbies[r.lobbyID]
	if !ok {
		r.reply <- getStateReply{Err: corerr.New(corerr.LobbyNotFound, "")}
		return
	}
	r.reply <- getStateReply{State: l.StateForPlayer(r.playerID, m.clock.Now())}
}

func (m *Manager) handleMakePick(ctx context.Context, r *makePickRequest) {
	l, ok := m.lobbies[r.lobbyID]
	if !ok {
		r.reply <- makePickReply{Err: corerr.New(corerr.LobbyNotFound, "")}
		return
	}

	deadline, err := l.MakePick(r.playerID, r.itemID, m.clock.Now())
	if err != nil {
		r.reply <- makePickReply{Err: err}
		return
	}

	m.scheduleDeadline(ctx, r.lobbyID, deadline)
	r.reply <- makePickReply{}
}

// handleBlockForUpdate parks the listener inside the lobby and returns
// immediately without replying synchronously, unless the lobby itself
// decides to flush right away (spec.md §4.4 "BlockForUpdate must not
// block the manager"). An unknown lobby id gets an empty UpdateReply at
// once.
func (m *Manager) handleBlockForUpdate(r *blockForUpdateRequest) {
	l, ok := m.lobbies[r.lobbyID]
	if !ok {
		select {
		case r.reply <- lobby.UpdateReply{}:
		default:
		}
		return
	}
	l.AddListener(r.playerID, r.fingerprint, r.reply, m.clock.Now())
}

func (m *Manager) handleEnforceDeadline(ctx context.Context, r *enforceDeadlineRequest) {
	l, ok := m.lobbies[r.lobbyID]
	if !ok {
		// The lobby may have been forgotten between scheduling and firing
		// in a deployment that ever evicts finished lobbies; nothing to do.
		return
	}

	deadline, err := l.EnforceDeadline(r.round, r.pick, m.clock.Now())
	if err != nil {
		log.Error().Err(err).Uint64("lobby_id", r.lobbyID).Msg("enforce deadline failed")
		return
	}
	m.scheduleDeadline(ctx, r.lobbyID, deadline)
}
