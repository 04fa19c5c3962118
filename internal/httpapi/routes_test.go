package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/CharlesMicou/pkmn-draft/internal/itemdb"
	"github.com/CharlesMicou/pkmn-draft/internal/manager"
	"github.com/CharlesMicou/pkmn-draft/internal/scheduler"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T, setName string, n int) *itemdb.Database {
	t.Helper()
	items := make(map[uint64]itemdb.Item, n)
	for i := 0; i < n; i++ {
		id := uint64(i + 1)
		items[id] = itemdb.Item{ID: id, Template: "tmpl", Stats: "stats", Text: "text"}
	}
	return &itemdb.Database{Sets: map[string]itemdb.DraftSet{
		setName: {Name: setName, Items: items, ByName: map[string][]uint64{}},
	}}
}

func newTestServer(t *testing.T, db *itemdb.Database) (http.Handler, context.Context) {
	t.Helper()
	clock := clockwork.NewFakeClock()
	sched := scheduler.New(clock, 2)
	mgr := manager.New(db, sched, clock)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go sched.Run(ctx)
	go mgr.Run(ctx)

	return NewHandler(mgr), ctx
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func TestNewDraft_CreatesLobby(t *testing.T) {
	h, _ := newTestServer(t, testDB(t, "demo", 54))

	req := httptest.NewRequest(http.MethodGet, "/new_draft/demo", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		LobbyID string `json:"lobby_id"`
	}
	decodeJSON(t, rec, &body)
	assert.NotEmpty(t, body.LobbyID)
	_, err := strconv.ParseUint(body.LobbyID, 10, 64)
	require.NoError(t, err)
}

func TestNewDraft_UnknownSet(t *testing.T) {
	h, _ := newTestServer(t, testDB(t, "demo", 54))

	req := httptest.NewRequest(http.MethodGet, "/new_draft/nonexistent", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func createLobby(t *testing.T, h http.Handler, set string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/new_draft/"+set, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		LobbyID string `json:"lobby_id"`
	}
	decodeJSON(t, rec, &body)
	return body.LobbyID
}

func joinLobby(t *testing.T, h http.Handler, lobbyID, name string) uint32 {
	t.Helper()
	form := url.Values{"player_name": {name}}
	req := httptest.NewRequest(http.MethodPost, "/join_draft/"+lobbyID, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		PlayerID uint32 `json:"player_id"`
	}
	decodeJSON(t, rec, &body)
	return body.PlayerID
}

func TestJoinDraft_NameValidation(t *testing.T) {
	h, _ := newTestServer(t, testDB(t, "demo", 54))
	lobbyID := createLobby(t, h, "demo")

	cases := []struct {
		name       string
		playerName string
		wantStatus int
	}{
		{"empty", "", http.StatusBadRequest},
		{"too long", strings.Repeat("x", 21), http.StatusBadRequest},
		{"non-ascii", "Pokémon", http.StatusBadRequest},
		{"valid", "Ash", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := url.Values{"player_name": {tc.playerName}}
			req := httptest.NewRequest(http.MethodPost, "/join_draft/"+lobbyID, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestDraftLifecycle_StartAndPick(t *testing.T) {
	h, _ := newTestServer(t, testDB(t, "demo", 54))
	lobbyID := createLobby(t, h, "demo")
	a := joinLobby(t, h, lobbyID, "A")
	joinLobby(t, h, lobbyID, "B")
	joinLobby(t, h, lobbyID, "C")

	startBody := `{"command":"start_game"}`
	req := httptest.NewRequest(http.MethodPost, "/draft/"+lobbyID+"/"+strconv.FormatUint(uint64(a), 10), strings.NewReader(startBody))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var state lobbyStateView
	decodeJSON(t, rec, &state)
	require.Len(t, state.PendingPicks, 6)
	assert.Equal(t, 3, state.TotalRounds)

	itemID := state.PendingPicks[0].ItemID
	pickBody := `{"command":"pick","pick_id":"` + itemID + `"}`
	req = httptest.NewRequest(http.MethodPost, "/draft/"+lobbyID+"/"+strconv.FormatUint(uint64(a), 10), strings.NewReader(pickBody))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var afterPick lobbyStateView
	decodeJSON(t, rec, &afterPick)
	assert.Len(t, afterPick.AllocatedPicks, 1)
}

func TestGetDraft_UnknownLobby(t *testing.T) {
	h, _ := newTestServer(t, testDB(t, "demo", 54))

	req := httptest.NewRequest(http.MethodGet, "/draft/1234/5678", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPoll_WakesOnJoin(t *testing.T) {
	h, _ := newTestServer(t, testDB(t, "demo", 54))
	lobbyID := createLobby(t, h, "demo")
	a := joinLobby(t, h, lobbyID, "A")

	req := httptest.NewRequest(http.MethodGet, "/draft/"+lobbyID+"/"+strconv.FormatUint(uint64(a), 10), nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var state lobbyStateView
	decodeJSON(t, rec, &state)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		pollBody := `{"command":"poll","game_state":` + strconv.FormatUint(state.GameState, 10) + `}`
		pollReq := httptest.NewRequest(http.MethodPost, "/draft/"+lobbyID+"/"+strconv.FormatUint(uint64(a), 10), strings.NewReader(pollBody))
		pollRec := httptest.NewRecorder()
		h.ServeHTTP(pollRec, pollReq)
		done <- pollRec
	}()

	joinLobby(t, h, lobbyID, "B")

	pollRec := <-done
	require.Equal(t, http.StatusOK, pollRec.Code, pollRec.Body.String())
	var updated lobbyStateView
	decodeJSON(t, pollRec, &updated)
	assert.Len(t, updated.JoiningPlayers, 2)
}
