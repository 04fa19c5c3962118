package manager

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mathrand "math/rand"

	"github.com/CharlesMicou/pkmn-draft/internal/itemdb"
	"github.com/CharlesMicou/pkmn-draft/internal/lobby"
	"github.com/CharlesMicou/pkmn-draft/internal/scheduler"
	"github.com/jonboulle/clockwork"
)

// Manager is the single-writer actor from spec.md §4.4. It exclusively
// owns the lobbies map and the shared item Database handle; every
// request is executed on the goroutine running Run, so a Lobby never
// needs a lock of its own (spec.md §4.4 "Invariant").
type Manager struct {
	db    *itemdb.Database
	sched *scheduler.Scheduler
	clock clockwork.Clock

	lobbies map[uint64]*lobby.Lobby

	requestCh chan any
}

// New constructs a Manager over the given (immutable, shared) item
// Database and Scheduler. Call Run in its own goroutine before issuing
// any request.
func New(db *itemdb.Database, sched *scheduler.Scheduler, clock clockwork.Clock) *Manager {
	return &Manager{
		db:        db,
		sched:     sched,
		clock:     clock,
		lobbies:   make(map[uint64]*lobby.Lobby),
		requestCh: make(chan any, 256),
	}
}

// Run drains the request queue sequentially until ctx is canceled. This
// is the manager's single execution context (spec.md §5 "Scheduling
// model") — no suspension occurs mid-mutation, since every dispatch call
// below runs to completion before the next request is dequeued.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-m.requestCh:
			m.dispatch(ctx, req)
		}
	}
}

// enqueue pushes a request onto the manager's queue, honoring ctx
// cancellation instead of blocking forever on a full queue (spec.md §5
// "Suspension points").
func (m *Manager) enqueue(ctx context.Context, req any) {
	select {
	case m.requestCh <- req:
	case <-ctx.Done():
	}
}

// newCryptoSeededRand seeds a *mathrand.Rand from crypto/rand. The
// Lobby Manager is the one I/O-capable context responsible for supplying
// true randomness into each Start call; draftengine.GeneratePacks itself
// stays pure and deterministic given whatever *rand.Rand it receives
// (spec.md §4.1 "No I/O, no concurrency primitives").
func newCryptoSeededRand() (*mathrand.Rand, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("manager: seed rng: %w", err)
	}
	seed := int64(binary.BigEndian.Uint64(buf[:]))
	return mathrand.New(mathrand.NewSource(seed)), nil
}

// scheduleDeadline hands a lobby's next deadline (if any) to the
// Scheduler, wrapping it in an enforceDeadlineRequest that re-enters this
// manager's own queue when it fires (spec.md §4.3).
func (m *Manager) scheduleDeadline(ctx context.Context, lobbyID uint64, d *lobby.Deadline) {
	if d == nil {
		return
	}
	round, pick := d.Round, d.Pick
	m.sched.Schedule(ctx, d.At, func(actionCtx context.Context) {
		m.enqueue(actionCtx, &enforceDeadlineRequest{lobbyID: lobbyID, round: round, pick: pick})
	})
}
