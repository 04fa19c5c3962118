package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode"

	"github.com/CharlesMicou/pkmn-draft/internal/lobby"
	"github.com/CharlesMicou/pkmn-draft/internal/manager"
	"github.com/rs/cors"
)

// maxNameLen and pollTimeout implement the name-validation and long-poll
// bound described in spec.md §6 and SPEC_FULL.md §12.3 respectively.
const (
	maxNameLen  = 20
	pollTimeout = 25 * time.Second
)

// NewHandler builds the HTTP front end for the route table in spec.md §6,
// wrapped in CORS the same way internal/cmd/server.go does for the
// teacher's service mux.
func NewHandler(mgr *manager.Manager) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /new_draft/{set}", handleNewDraft(mgr))
	mux.HandleFunc("POST /join_draft/{lobby}", handleJoinDraft(mgr))
	mux.HandleFunc("GET /draft/{lobby}/{player}", handleGetDraft(mgr))
	mux.HandleFunc("POST /draft/{lobby}/{player}", handlePostDraft(mgr))
	mux.HandleFunc("GET /health", handleHealth)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleNewDraft implements "GET /new_draft/{set}" -> CreateLobby{set}.
func handleNewDraft(mgr *manager.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setName := r.PathValue("set")
		id, err := mgr.CreateLobby(r.Context(), setName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			LobbyID string `json:"lobby_id"`
		}{LobbyID: strconv.FormatUint(id, 10)})
	}
}

// handleJoinDraft implements "POST /join_draft/{lobby}" (form: player_name)
// -> JoinLobby{lobby, player_name}.
func handleJoinDraft(mgr *manager.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbyID, err := parseLobbyID(r.PathValue("lobby"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := r.ParseForm(); err != nil {
			writeError(w, newBadRequest("malformed form body"))
			return
		}
		name := r.FormValue("player_name")
		if err := validatePlayerName(name); err != nil {
			writeError(w, err)
			return
		}

		playerID, err := mgr.JoinLobby(r.Context(), lobbyID, name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			LobbyID  string `json:"lobby_id"`
			PlayerID uint32 `json:"player_id"`
		}{LobbyID: strconv.FormatUint(lobbyID, 10), PlayerID: playerID})
	}
}

// handleGetDraft implements "GET /draft/{lobby}/{player}" -> GetLobbyState.
func handleGetDraft(mgr *manager.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbyID, playerID, err := parseLobbyAndPlayer(r)
		if err != nil {
			writeError(w, err)
			return
		}
		state, err := mgr.GetLobbyState(r.Context(), lobbyID, playerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLobbyStateView(state))
	}
}

// postDraftBody is the JSON body for "POST /draft/{lobby}/{player}" per
// spec.md §6: {command, lobby_id, player_id, pick_id, game_state}. The
// path values are authoritative; the body's lobby_id/player_id are accepted
// but not trusted over the path (a client mismatch is simply ignored, not
// an error, since the path already pins both).
type postDraftBody struct {
	Command   string `json:"command"`
	PickID    string `json:"pick_id"`
	GameState uint64 `json:"game_state"`
}

// handlePostDraft implements "POST /draft/{lobby}/{player}": command
// start_game -> StartLobby, command pick -> MakePick, command poll ->
// BlockForUpdate.
func handlePostDraft(mgr *manager.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lobbyID, playerID, err := parseLobbyAndPlayer(r)
		if err != nil {
			writeError(w, err)
			return
		}

		var body postDraftBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, newBadRequest("malformed JSON body"))
			return
		}

		switch body.Command {
		case "start_game":
			handleStartGame(w, r, mgr, lobbyID, playerID)
		case "pick":
			handlePick(w, r, mgr, lobbyID, playerID, body.PickID)
		case "poll":
			handlePoll(w, r, mgr, lobbyID, playerID, body.GameState)
		default:
			writeError(w, newBadRequest("unknown command "+body.Command))
		}
	}
}

func handleStartGame(w http.ResponseWriter, r *http.Request, mgr *manager.Manager, lobbyID uint64, playerID lobby.PlayerID) {
	if err := mgr.StartLobby(r.Context(), lobbyID); err != nil {
		writeError(w, err)
		return
	}
	state, err := mgr.GetLobbyState(r.Context(), lobbyID, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLobbyStateView(state))
}

func handlePick(w http.ResponseWriter, r *http.Request, mgr *manager.Manager, lobbyID uint64, playerID lobby.PlayerID, pickID string) {
	itemID, err := strconv.ParseUint(pickID, 10, 64)
	if err != nil {
		writeError(w, newBadRequest("pick_id is not a valid item id"))
		return
	}
	if err := mgr.MakePick(r.Context(), lobbyID, playerID, itemID); err != nil {
		writeError(w, err)
		return
	}
	state, err := mgr.GetLobbyState(r.Context(), lobbyID, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLobbyStateView(state))
}

// handlePoll implements the BlockForUpdate long-poll. It bounds the wait to
// pollTimeout so a client disconnect (or a draft that simply never changes)
// frees the handler goroutine; the listener's own lifetime inside the lobby
// has no such bound (spec.md §5 "no server-side timeout"), this is purely a
// transport-level concern.
func handlePoll(w http.ResponseWriter, r *http.Request, mgr *manager.Manager, lobbyID uint64, playerID lobby.PlayerID, fingerprint uint64) {
	ctx, cancel := context.WithTimeout(r.Context(), pollTimeout)
	defer cancel()

	reply, err := mgr.BlockForUpdate(ctx, lobbyID, playerID, fingerprint)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// No update arrived within the transport's wait bound; the
			// client will simply re-poll, per spec.md §5.
			state, stateErr := mgr.GetLobbyState(r.Context(), lobbyID, playerID)
			if stateErr != nil {
				writeError(w, stateErr)
				return
			}
			writeJSON(w, http.StatusOK, toLobbyStateView(state))
			return
		}
		// Context canceled: the client disconnected. Nothing to write.
		return
	}
	writeJSON(w, http.StatusOK, toLobbyStateView(reply.State))
}

func parseLobbyAndPlayer(r *http.Request) (uint64, lobby.PlayerID, error) {
	lobbyID, err := parseLobbyID(r.PathValue("lobby"))
	if err != nil {
		return 0, 0, err
	}
	playerID, err := parsePlayerID(r.PathValue("player"))
	if err != nil {
		return 0, 0, err
	}
	return lobbyID, playerID, nil
}

func parseLobbyID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, newBadRequest("malformed lobby id")
	}
	return id, nil
}

func parsePlayerID(s string) (lobby.PlayerID, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, newBadRequest("malformed player id")
	}
	return lobby.PlayerID(id), nil
}

// validatePlayerName implements spec.md §6's join_draft constraint: "name
// must be non-empty, ASCII, <=20 chars".
func validatePlayerName(name string) error {
	if name == "" {
		return newBadRequest("player name must not be empty")
	}
	if len(name) > maxNameLen {
		return newBadRequest("player name exceeds 20 characters")
	}
	for _, r := range name {
		if r > unicode.MaxASCII {
			return newBadRequest("player name must be ASCII")
		}
	}
	return nil
}
