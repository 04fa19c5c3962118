// Package httpapi is the thin HTTP front end described in spec.md §6's
// route table. It is explicitly named as an external collaborator in
// spec.md §1 ("Out of scope: the HTTP front-end") — this package exists so
// the repository is a complete, runnable server, but it holds no draft
// logic of its own: every handler below does nothing but translate a
// request into a manager.Manager call and project the reply as JSON.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CharlesMicou/pkmn-draft/internal/corerr"
	"github.com/rs/zerolog/log"
)

// errorResponse is the JSON body returned for any LobbyErrorMsg-shaped
// failure (spec.md §7: "a short human-readable string").
type errorResponse struct {
	Error string `json:"error"`
}

// badRequest is a transport-level validation failure that never reaches
// the core (e.g. a malformed path segment or an invalid player_name per
// spec.md §6) — distinct from corerr.CoreError, which is reserved for the
// error kinds spec.md §7 actually enumerates as produced by the core.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func newBadRequest(msg string) error { return badRequest{msg: msg} }

// statusForKind maps a corerr.Kind onto the HTTP status a REST client
// expects; spec.md itself only requires *some* short human-readable
// message, leaving the transport status code to the front end.
func statusForKind(kind corerr.Kind) int {
	switch kind {
	case corerr.LobbyNotFound, corerr.SetUnknown, corerr.PlayerNotFound:
		return http.StatusNotFound
	case corerr.AlreadyStarted, corerr.LobbyFull, corerr.NameConflict, corerr.NotStarted, corerr.NoPacks:
		return http.StatusConflict
	case corerr.EmptyLobby, corerr.ItemNotInPack:
		return http.StatusBadRequest
	case corerr.PackGenInsufficientItems:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs the cause (spec.md §7: "the manager logs the cause")
// and writes the mapped status plus a short JSON error body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var ce *corerr.CoreError
	var br badRequest
	switch {
	case errors.As(err, &ce):
		status = statusForKind(ce.Kind)
	case errors.As(err, &br):
		status = http.StatusBadRequest
	}
	log.Warn().Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("httpapi: failed to encode response body")
	}
}
