// internal/httpserver/proxy.go
//
// Barebones "take ?characters=... and hit the Vestaboard API" relay.
//   GET /vestaboard.php?characters=[[...],...][&is_dev=1]
//
// Flow:
//   1. No characters param, or anything other than digits, commas and
//      brackets → empty response, nothing sent.
//   2. Load credentials (per request) and pick dev/prod by is_dev presence.
//   3. Any empty credential field → diagnostic text, nothing sent.
//   4. POST to the vendor and echo back whatever it returned.

package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordleboard/internal/board"
	"github.com/robalobadob/wordleboard/internal/credentials"
	"github.com/robalobadob/wordleboard/internal/signals"
	"github.com/robalobadob/wordleboard/internal/vestaboard"
)

const credentialsMissingMsg = "Credentials file not found? See credentials.json.example file for reference."

func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	q := r.URL.Query()
	if !q.Has("characters") {
		return
	}
	characters := q.Get("characters")
	if !board.ValidWire(characters) {
		log.Debug().Int("len", len(characters)).Msg("proxy: rejected characters")
		return
	}

	creds, err := s.deps.Credentials.Load(r.Context())
	if errors.Is(err, credentials.ErrNotFound) {
		log.Warn().Err(err).Msg("proxy: credentials missing")
		_, _ = io.WriteString(w, credentialsMissingMsg)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("proxy: credentials unreadable")
		_, _ = io.WriteString(w, "Credentials file unreadable? See credentials.json.example file for reference.")
		return
	}

	target := signals.TargetProd
	label := "production / real hardware"
	if q.Has("is_dev") {
		target = signals.TargetDev
		label = "dev / virtual device"
	}
	set := creds.For(target)
	if missing := set.Missing(); len(missing) > 0 {
		log.Warn().Str("target", string(target)).Strs("missing", missing).Msg("proxy: incomplete credentials")
		_, _ = io.WriteString(w, strings.Join(missing, "\n")+"\n")
		return
	}

	log.Info().Str("target", string(target)).Str("board", label).Msg("proxy: posting to vestaboard")
	body, err := s.deps.Proxy.Post(r.Context(), set, vestaboard.CompactBody(characters))
	var se *vestaboard.StatusError
	switch {
	case errors.As(err, &se):
		log.Warn().Int("status", se.Code).Str("body", body).Msg("proxy: vendor rejected message")
		w.WriteHeader(se.Code)
	case err != nil:
		log.Error().Err(err).Msg("proxy: vendor request failed")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "Vestaboard request failed.")
		return
	}
	_, _ = io.WriteString(w, body)
}
