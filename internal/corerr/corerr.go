// Package corerr defines the error kinds produced by the draft core
// (spec.md §7). The core never panics on bad user input — every failure
// path here is a typed, returned error — and only panics on structural
// invariant violations, which indicate programmer error rather than user
// error.
package corerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error kinds enumerated in spec.md §7.
type Kind string

const (
	LobbyNotFound            Kind = "lobby-not-found"
	SetUnknown               Kind = "set-unknown"
	AlreadyStarted           Kind = "already-started"
	NotStarted               Kind = "not-started"
	LobbyFull                Kind = "lobby-full"
	NameConflict             Kind = "name-conflict"
	EmptyLobby               Kind = "empty-lobby"
	PlayerNotFound           Kind = "player-not-found"
	NoPacks                  Kind = "no-packs"
	ItemNotInPack            Kind = "item-not-in-pack"
	PackGenInsufficientItems Kind = "pack-gen-insufficient-items"
)

// CoreError is a short, human-readable error carrying one of the Kinds
// above. The Lobby Manager maps it 1:1 onto a LobbyErrorMsg reply.
type CoreError struct {
	Kind Kind
	msg  string
}

func (e *CoreError) Error() string {
	if e.msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// New builds a CoreError of the given kind with an optional detail message.
func New(kind Kind, detail string) *CoreError {
	return &CoreError{Kind: kind, msg: detail}
}

// Is reports whether err is a CoreError of the given kind, unwrapping
// through fmt.Errorf("%w", ...) chains the way the app layer wraps errors.
func Is(err error, kind Kind) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}
