package draftengine

import (
	"math/rand"
	"testing"

	"github.com/CharlesMicou/pkmn-draft/internal/corerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemRange(n int) []ItemID {
	ids := make([]ItemID, n)
	for i := range ids {
		ids[i] = ItemID(i + 1)
	}
	return ids
}

func TestGeneratePacks_Deterministic(t *testing.T) {
	items := itemRange(24)

	packsA, err := GeneratePacks(rand.New(rand.NewSource(42)), items, 4, 6)
	require.NoError(t, err)
	packsB, err := GeneratePacks(rand.New(rand.NewSource(42)), items, 4, 6)
	require.NoError(t, err)

	assert.Equal(t, packsA, packsB, "same seed must yield identical packs")
}

func TestGeneratePacks_InsufficientItems(t *testing.T) {
	items := itemRange(10)
	_, err := GeneratePacks(rand.New(rand.NewSource(1)), items, 2, 6)
	require.Error(t, err)
	assert.True(t, corerr.Is(err, corerr.PackGenInsufficientItems))
}

func TestGeneratePacks_NoItemReusedAcrossPacks(t *testing.T) {
	items := itemRange(24)
	packs, err := GeneratePacks(rand.New(rand.NewSource(7)), items, 4, 6)
	require.NoError(t, err)

	seen := make(map[ItemID]bool)
	for _, pack := range packs {
		assert.Len(t, pack, 6)
		for _, id := range pack {
			assert.False(t, seen[id], "item %d appeared in more than one pack", id)
			seen[id] = true
		}
	}
}

func newTestEngine(t *testing.T, n, numRounds, packSize int) (*Engine, []PlayerID) {
	t.Helper()
	turnOrder := make([]PlayerID, n)
	for i := range turnOrder {
		turnOrder[i] = PlayerID(i + 1)
	}
	items := itemRange(numRounds * n * packSize)
	packs, err := GeneratePacks(rand.New(rand.NewSource(99)), items, numRounds*n, packSize)
	require.NoError(t, err)

	e, err := NewEngine(turnOrder, packs, numRounds)
	require.NoError(t, err)
	return e, turnOrder
}

func TestNewEngine_OnePackPerPlayerAtRoundStart(t *testing.T) {
	e, turnOrder := newTestEngine(t, 3, 3, 6)
	for _, pid := range turnOrder {
		p, ok := e.Player(pid)
		require.True(t, ok)
		assert.Len(t, p.Pending, 1)
		assert.Empty(t, p.Allocated)
	}
	assert.Equal(t, 0, e.CurrentRoundIdx())
	assert.True(t, e.Direction())
}

func TestPick_SinglePlayerDraft_Finishes(t *testing.T) {
	e, turnOrder := newTestEngine(t, 1, 1, 6)
	pid := turnOrder[0]

	for i := 0; i < 6; i++ {
		p, _ := e.Player(pid)
		require.Len(t, p.Pending, 1)
		contents, ok := e.PackContents(p.Pending[0])
		require.True(t, ok)
		require.NotEmpty(t, contents)

		require.NoError(t, e.Pick(pid, contents[0]))
	}

	assert.True(t, e.DraftIsDone())
	p, _ := e.Player(pid)
	assert.Len(t, p.Allocated, 6)
}

func TestPick_PassesPackToNextPlayer(t *testing.T) {
	e, turnOrder := newTestEngine(t, 3, 3, 6)
	a, b := turnOrder[0], turnOrder[1]

	pa, _ := e.Player(a)
	packID := pa.Pending[0]
	contents, _ := e.PackContents(packID)

	require.NoError(t, e.Pick(a, contents[0]))

	paAfter, _ := e.Player(a)
	assert.Empty(t, paAfter.Pending, "player a's queue is empty until a pack is passed back")

	pbAfter, _ := e.Player(b)
	require.Len(t, pbAfter.Pending, 2)
	assert.Equal(t, packID, pbAfter.Pending[1], "pack passes to the tail of b's queue (direction +1 in round 0)")

	remaining, _ := e.PackContents(packID)
	assert.Len(t, remaining, 5)
}

func TestPick_ItemNotInPack_StateUnchanged(t *testing.T) {
	e, turnOrder := newTestEngine(t, 2, 3, 4)
	pid := turnOrder[0]

	before, _ := e.Player(pid)
	err := e.Pick(pid, ItemID(999999))
	require.Error(t, err)
	assert.True(t, corerr.Is(err, corerr.ItemNotInPack))

	after, _ := e.Player(pid)
	assert.Equal(t, before, after, "failed pick must not mutate player state")
}

func TestPick_UnknownPlayer(t *testing.T) {
	e, _ := newTestEngine(t, 2, 3, 4)
	err := e.Pick(PlayerID(9999), ItemID(1))
	require.Error(t, err)
	assert.True(t, corerr.Is(err, corerr.PlayerNotFound))
}

func TestPick_NoPacks(t *testing.T) {
	// A single-player draft passes the (non-empty) pack back to the same
	// player each time, so draining it completely is a simple loop; once
	// the pack empties it is retired rather than re-enqueued, leaving the
	// player's pending queue empty.
	e, turnOrder := newTestEngine(t, 1, 1, 6)
	pid := turnOrder[0]

	for i := 0; i < 6; i++ {
		p, _ := e.Player(pid)
		contents, _ := e.PackContents(p.Pending[0])
		require.NoError(t, e.Pick(pid, contents[0]))
	}

	err := e.Pick(pid, ItemID(1))
	require.Error(t, err)
	assert.True(t, corerr.Is(err, corerr.NoPacks))
}

func TestSnakeDirection_TogglesEachRound(t *testing.T) {
	e, _ := newTestEngine(t, 6, 2, 8)
	assert.True(t, e.Direction())

	// Drive round 0 to completion: every player picks every item in the
	// pack currently in front of them, in turn, until all packs are empty.
	driveRoundToCompletion(t, e)
	assert.Equal(t, 1, e.CurrentRoundIdx())
	assert.False(t, e.Direction(), "direction flips forward -> backward across the round boundary")
	assert.False(t, e.RoundIsDone(), "round 1 is freshly dealt, not done")
}

// driveRoundToCompletion repeatedly picks the first available item from
// any player with a pending pack until the round is done.
func driveRoundToCompletion(t *testing.T, e *Engine) {
	t.Helper()
	for !e.RoundIsDone() {
		progressed := false
		for _, pid := range e.turnOrder {
			p, _ := e.Player(pid)
			if len(p.Pending) == 0 {
				continue
			}
			contents, ok := e.PackContents(p.Pending[0])
			if !ok || len(contents) == 0 {
				continue
			}
			require.NoError(t, e.Pick(pid, contents[0]))
			progressed = true
		}
		require.True(t, progressed, "round must make progress every sweep")
	}
	if e.RoundsRemaining() > 0 {
		e.StartNextRound()
	}
}

func TestSixPlayerDraft_BoundaryCounts(t *testing.T) {
	e, turnOrder := newTestEngine(t, 6, 2, 8)
	assert.Equal(t, 2, e.NumRounds())

	totalPicks := 0
	for !e.DraftIsDone() {
		for _, pid := range turnOrder {
			p, _ := e.Player(pid)
			if len(p.Pending) == 0 {
				continue
			}
			contents, _ := e.PackContents(p.Pending[0])
			if len(contents) == 0 {
				continue
			}
			require.NoError(t, e.Pick(pid, contents[0]))
			totalPicks++
		}
		if e.RoundIsDone() && e.RoundsRemaining() > 0 {
			e.StartNextRound()
		}
	}

	assert.Equal(t, 96, totalPicks)
}

func TestConservationInvariant(t *testing.T) {
	e, turnOrder := newTestEngine(t, 4, 3, 6)
	totalItems := 4 * 3 * 6

	for i := 0; i < 10; i++ {
		for _, pid := range turnOrder {
			p, _ := e.Player(pid)
			if len(p.Pending) == 0 {
				continue
			}
			contents, _ := e.PackContents(p.Pending[0])
			if len(contents) == 0 {
				continue
			}
			require.NoError(t, e.Pick(pid, contents[0]))
		}

		allocated := 0
		seen := make(map[ItemID]bool)
		for _, pid := range turnOrder {
			p, _ := e.Player(pid)
			for _, id := range p.Allocated {
				assert.False(t, seen[id], "item %d allocated to more than one player", id)
				seen[id] = true
			}
			allocated += len(p.Allocated)
		}

		packSum := 0
		for _, round := range e.rounds {
			for _, pack := range round.Packs {
				packSum += len(pack.Items)
			}
		}

		assert.Equal(t, totalItems, allocated+packSum)
	}
}
