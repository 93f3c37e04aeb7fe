// internal/httpserver/routes_host.go
//
// HTTP routes for the host game feed.
// Exposes endpoints under /host:
//   - POST   /host/sessions            → start a session for a loaded game page
//   - POST   /host/sessions/{id}/state → report board state after an evaluated row
//   - DELETE /host/sessions/{id}       → end a session
//   - GET    /host/ws?sessionId=       → websocket carrying the same state reports
//
// A session resolves its board target, absent color and clock once, from the
// page URL, then shows the title screen. Every completed row re-encodes the
// board and sends it; requests return before the send finishes.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordleboard/internal/board"
	"github.com/robalobadob/wordleboard/internal/credentials"
	"github.com/robalobadob/wordleboard/internal/dispatch"
	"github.com/robalobadob/wordleboard/internal/host"
	"github.com/robalobadob/wordleboard/internal/signals"
)

// hostServer wraps dependencies for /host endpoints.
type hostServer struct {
	srv         *Server
	mode        dispatch.Mode
	dispatchers map[string]*dispatch.Dispatcher   // keyed by session ID
	draining    map[*dispatch.Dispatcher]struct{} // ended sessions with sends in flight
	mu          sync.Mutex                        // guards dispatchers and draining
}

// mountHost registers all /host routes.
func (s *Server) mountHost(r chi.Router) *hostServer {
	mode, err := dispatch.ParseMode(s.cfg.Board.DispatchMode)
	if err != nil {
		// config.Validate rejects this at startup; default keeps tests short.
		mode = dispatch.ModeProxy
	}
	hs := &hostServer{
		srv:         s,
		mode:        mode,
		dispatchers: make(map[string]*dispatch.Dispatcher),
		draining:    make(map[*dispatch.Dispatcher]struct{}),
	}
	r.Route("/host", func(r chi.Router) {
		r.Post("/sessions", hs.handleStart)
		r.Post("/sessions/{id}/state", hs.handleState)
		r.Delete("/sessions/{id}", hs.handleEnd)
		r.Get("/ws", hs.handleWS)
	})
	return hs
}

// -----------------------------------------------------------------------------
// POST /host/sessions

// startReq is the payload sent by the adapter once the page has loaded.
type startReq struct {
	Page     string `json:"page"`     // location.href of the game page
	Hooked   *bool  `json:"hooked"`   // game component and evaluateRow found (default true)
	RowIndex int    `json:"rowIndex"` // rows already played (resumed game)
}

// startRes is returned by POST /host/sessions.
type startRes struct {
	SessionID   string `json:"sessionId"`
	Target      string `json:"target"`
	Mode        string `json:"mode"`
	AbsentColor int    `json:"absentColor"`
	ClearState  bool   `json:"clearState"`
	DayIndex    int    `json:"dayIndex"`
	GameDate    string `json:"gameDate"`
	Inert       bool   `json:"inert"`
}

func (h *hostServer) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Page == "" {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := h.start(r.Context(), req)
	switch {
	case errors.Is(err, signals.ErrConflictingOverrides):
		writeError(w, http.StatusBadRequest, "conflicting_overrides")
		return
	case err != nil:
		log.Error().Err(err).Msg("host: start session")
		writeError(w, http.StatusBadRequest, "bad_page")
		return
	}
	writeJSON(w, http.StatusOK, startRes{
		SessionID:   sess.ID,
		Target:      string(sess.Target),
		Mode:        string(h.mode),
		AbsentColor: sess.Options.Absent,
		ClearState:  sess.Signals.ClearState(),
		DayIndex:    sess.Clock.DayIndex(),
		GameDate:    sess.Clock.DateKey(),
		Inert:       sess.Inert(),
	})
}

// start resolves per-session settings, registers the session and, unless
// the page could not be hooked, shows the title screen.
func (h *hostServer) start(ctx context.Context, req startReq) (*host.Session, error) {
	sig, err := signals.Parse(req.Page)
	if err != nil {
		return nil, err
	}
	target, err := signals.ResolveTarget(sig, h.srv.cfg.Board.DevDomain)
	if err != nil {
		return nil, err
	}

	absent, known := signals.ResolveColor(sig)
	switch {
	case sig.Absent != "" && !known:
		log.Warn().Str("absent", sig.Absent).Strs("valid", paletteNames()).Msg("host: unknown absent color, defaulting to white")
	case known:
		log.Info().Str("absent", sig.Absent).Msg("host: using custom absent color")
	}

	clock := sig.Clock(h.srv.cfg.Board.Location)
	if clock.OffsetDays != 0 {
		log.Info().Int("days", clock.OffsetDays).Str("gameDate", clock.DateKey()).Msg("host: time travel mode")
	}

	sess := host.NewSession(uuid.NewString(), sig, target,
		board.Options{Absent: absent, Yesterday: sig.Yesterday}, clock, req.RowIndex)
	if sig.ClearState() {
		log.Info().Str("session", sess.ID).Msg("host: clearing game state")
		sess.Reset()
	}
	if err := h.srv.deps.Hosts.Save(ctx, sess); err != nil {
		return nil, err
	}

	if req.Hooked != nil && !*req.Hooked {
		log.Warn().Str("session", sess.ID).Msg("host: game component or hook missing; session is inert")
		sess.MarkInert()
		return sess, nil
	}

	d, err := h.newDispatcher(target)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.dispatchers[sess.ID] = d
	h.mu.Unlock()

	sess.Subscribe(func() { d.Update(sess.Snapshot(), sess.Options) })

	log.Info().Str("session", sess.ID).Str("target", string(target)).Str("mode", string(h.mode)).Msg("host: session started")
	d.SendBanner()
	return sess, nil
}

func (h *hostServer) newDispatcher(target signals.Target) (*dispatch.Dispatcher, error) {
	cfg := dispatch.Config{Mode: h.mode}
	switch h.mode {
	case dispatch.ModeProxy:
		cfg.ProxyURL = h.srv.ProxyEndpoint()
		cfg.HTTP = h.srv.deps.HTTP
	case dispatch.ModeDirect:
		cfg.Vendor = h.srv.deps.Direct
		cfg.Credentials = credentials.NewCache(h.srv.deps.Credentials)
	}
	return dispatch.New(cfg, target)
}

// -----------------------------------------------------------------------------
// POST /host/sessions/{id}/state

// stateRes is returned for every state report.
type stateRes struct {
	RowComplete bool `json:"rowComplete"`
	Inert       bool `json:"inert,omitempty"`
}

func (h *hostServer) handleState(w http.ResponseWriter, r *http.Request) {
	sess, err := h.srv.deps.Hosts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "no_session")
		return
	}
	var st host.State
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	writeJSON(w, http.StatusAccepted, h.report(sess, st))
}

func (h *hostServer) report(sess *host.Session, st host.State) stateRes {
	if sess.Inert() {
		return stateRes{Inert: true}
	}
	return stateRes{RowComplete: sess.Update(st)}
}

// -----------------------------------------------------------------------------
// DELETE /host/sessions/{id}

func (h *hostServer) handleEnd(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = h.srv.deps.Hosts.Delete(r.Context(), id)

	// sends already issued are left to land; closeAll still sees them
	h.mu.Lock()
	d := h.dispatchers[id]
	delete(h.dispatchers, id)
	if d != nil {
		h.draining[d] = struct{}{}
	}
	h.mu.Unlock()
	if d != nil {
		go func() {
			d.Wait()
			h.mu.Lock()
			delete(h.draining, d)
			h.mu.Unlock()
		}()
	}
	w.WriteHeader(http.StatusNoContent)
}

// dispatcher returns the session's dispatcher, if it has one.
func (h *hostServer) dispatcher(id string) *dispatch.Dispatcher {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dispatchers[id]
}

// closeAll waits for in-flight sends of every session, ended ones included.
// Once ctx is done the remaining sends are cancelled.
func (h *hostServer) closeAll(ctx context.Context) {
	h.mu.Lock()
	all := make([]*dispatch.Dispatcher, 0, len(h.dispatchers)+len(h.draining))
	for _, d := range h.dispatchers {
		all = append(all, d)
	}
	for d := range h.draining {
		all = append(all, d)
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, d := range all {
			d.Wait()
		}
		close(done)
	}()
	select {
	case <-done:
		return
	case <-ctx.Done():
		log.Warn().Int("dispatchers", len(all)).Msg("host: shutdown timeout, cancelling board sends")
	}
	for _, d := range all {
		d.Close()
	}
	<-done
}

func paletteNames() []string {
	names := make([]string, 0, len(board.Palette))
	for n := range board.Palette {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
