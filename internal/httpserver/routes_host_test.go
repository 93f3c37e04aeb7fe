package httpserver

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordleboard/internal/board"
	"github.com/robalobadob/wordleboard/internal/config"
	"github.com/robalobadob/wordleboard/internal/daily"
	"github.com/robalobadob/wordleboard/internal/host"
)

// testContext stands in for testing.T.Context (Go 1.24+): a context
// cancelled when the test finishes.
func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

var craneState = map[string]any{
	"rowIndex":    1,
	"boardState":  []string{"crane", "", "", "", "", ""},
	"evaluations": [][]string{{"absent", "present", "absent", "absent", "correct"}, nil, nil, nil, nil, nil},
	"dayOffset":   240,
}

func craneWire(t *testing.T, absent int) string {
	t.Helper()
	g, err := board.Encode(board.Snapshot{
		Attempts: []string{"crane", "", "", "", "", ""},
		Evaluations: [][]board.Outcome{
			{board.OutcomeAbsent, board.OutcomePresent, board.OutcomeAbsent, board.OutcomeAbsent, board.OutcomeCorrect},
			nil, nil, nil, nil, nil,
		},
		DayIndex: 240,
	}, board.Options{Absent: absent})
	require.NoError(t, err)
	return g.Wire()
}

func startSession(t *testing.T, s *testServer, page string) (*http.Response, map[string]any) {
	t.Helper()
	return s.postJSON(t, "/host/sessions", map[string]any{"page": page})
}

func TestHostSession_ProxyFlow(t *testing.T) {
	s := newTestServer(t, nil)

	res, out := startSession(t, s, "http://localhost:8000/?absent=blue")
	require.Equal(t, http.StatusOK, res.StatusCode)
	id := out["sessionId"].(string)
	assert.Equal(t, "dev", out["target"])
	assert.Equal(t, "proxy", out["mode"])
	assert.EqualValues(t, board.Blue, out["absentColor"])
	assert.Equal(t, false, out["inert"])
	assert.Equal(t, false, out["clearState"])

	s.waitSends(id)
	calls := s.vendor.list()
	require.Len(t, calls, 1)
	assert.Equal(t, "dev-key", calls[0].Key)
	assert.Equal(t, `{"characters":`+board.Banner().Wire()+`}`, calls[0].Body)

	res, out = s.postJSON(t, "/host/sessions/"+id+"/state", craneState)
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, true, out["rowComplete"])

	s.waitSends(id)
	calls = s.vendor.list()
	require.Len(t, calls, 2)
	assert.Equal(t, `{"characters":`+craneWire(t, board.Blue)+`}`, calls[1].Body)

	// same row index again: stored, nothing sent
	res, out = s.postJSON(t, "/host/sessions/"+id+"/state", craneState)
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, false, out["rowComplete"])
	s.waitSends(id)
	assert.Len(t, s.vendor.list(), 2)
}

func TestHostSession_ProdDomain(t *testing.T) {
	s := newTestServer(t, nil)

	_, out := startSession(t, s, "https://wordle.example.com/")
	assert.Equal(t, "prod", out["target"])
	assert.EqualValues(t, board.White, out["absentColor"])

	s.waitSends(out["sessionId"].(string))
	calls := s.vendor.list()
	require.Len(t, calls, 1)
	assert.Equal(t, "prod-key", calls[0].Key)
}

func TestHostSession_ForceOverrides(t *testing.T) {
	s := newTestServer(t, nil)

	_, out := startSession(t, s, "http://localhost:8000/?force_prod=1")
	assert.Equal(t, "prod", out["target"])

	_, out = startSession(t, s, "https://wordle.example.com/?force_dev=1")
	assert.Equal(t, "dev", out["target"])

	res, out := startSession(t, s, "http://localhost:8000/?force_dev=1&force_prod=1")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "conflicting_overrides", out["error"])
}

func TestHostSession_TimeTravel(t *testing.T) {
	s := newTestServer(t, nil)

	_, out := startSession(t, s, "http://localhost:8000/?timetravel=3")
	assert.Equal(t, true, out["clearState"])
	want := daily.Clock{OffsetDays: 3, Loc: time.UTC}
	assert.EqualValues(t, want.DayIndex(), out["dayIndex"])
	assert.Equal(t, want.DateKey(), out["gameDate"])

	_, out = startSession(t, s, "http://localhost:8000/?timetravel=soon")
	assert.Equal(t, true, out["clearState"])
	assert.EqualValues(t, daily.Clock{Loc: time.UTC}.DayIndex(), out["dayIndex"])
}

func TestHostSession_Inert(t *testing.T) {
	s := newTestServer(t, nil)

	res, out := s.postJSON(t, "/host/sessions", map[string]any{"page": "http://localhost:8000/", "hooked": false})
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, out["inert"])
	id := out["sessionId"].(string)
	assert.Nil(t, s.host.dispatcher(id))

	res, out = s.postJSON(t, "/host/sessions/"+id+"/state", craneState)
	require.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, true, out["inert"])
	assert.Equal(t, false, out["rowComplete"])
	assert.Empty(t, s.vendor.list())
}

func TestHostSession_BadInput(t *testing.T) {
	s := newTestServer(t, nil)

	res, out := s.postJSON(t, "/host/sessions", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "bad_json", out["error"])

	res, out = s.postJSON(t, "/host/sessions/nope/state", craneState)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "no_session", out["error"])
}

func TestHostSession_End(t *testing.T) {
	s := newTestServer(t, nil)

	_, out := startSession(t, s, "http://localhost:8000/")
	id := out["sessionId"].(string)
	s.waitSends(id)

	req, err := http.NewRequest(http.MethodDelete, s.ts.URL+"/host/sessions/"+id, nil)
	require.NoError(t, err)
	res, err := s.ts.Client().Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = s.postJSON(t, "/host/sessions/"+id+"/state", craneState)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Nil(t, s.host.dispatcher(id))
}

func TestHostSession_DirectMode(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Board.DispatchMode = config.ModeDirect })

	_, out := startSession(t, s, "http://localhost:8000/?absent=black")
	assert.Equal(t, "direct", out["mode"])
	assert.EqualValues(t, board.Black, out["absentColor"])
	id := out["sessionId"].(string)
	s.waitSends(id)

	_, out = s.postJSON(t, "/host/sessions/"+id+"/state", craneState)
	assert.Equal(t, true, out["rowComplete"])
	s.waitSends(id)

	calls := s.vendor.list()
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, "/subscriptions/dev-sub/message", c.Path)
		assert.True(t, strings.HasPrefix(c.Body, `{"characters": `), c.Body)
	}
	assert.Equal(t, `{"characters": `+craneWire(t, board.Black)+`}`, calls[1].Body)
}

func TestHostSession_ClearStateResetsResumedRows(t *testing.T) {
	s := newTestServer(t, nil)

	_, out := s.postJSON(t, "/host/sessions", map[string]any{"page": "http://localhost:8000/?nocache=1", "rowIndex": 3})
	assert.Equal(t, true, out["clearState"])
	id := out["sessionId"].(string)

	sess, err := s.deps.Hosts.Get(testContext(t), id)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.RowIndex())
}

func TestHostSession_StoreCount(t *testing.T) {
	hosts := host.NewMemoryStore()
	srv := New(testConfig(), Deps{Hosts: hosts})
	h := srv.host

	_, err := h.start(testContext(t), startReq{Page: "http://localhost/", Hooked: new(bool)})
	require.NoError(t, err)
	assert.Equal(t, 1, hosts.Len())
}
