// internal/httpserver/server.go
//
// HTTP server wiring for the Wordleboard service.
// Responsibilities:
//   - Router + middleware (CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", adapter script, credentials template.
//   - Proxy endpoint: GET /vestaboard.php?characters=...[&is_dev=1].
//   - Host feed: /host/sessions (HTTP) and /host/ws (websocket), mounted by mountHost.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled so the host page can post state.
//   - Run serves until ctx is done, then shuts down and waits for in-flight board sends.
//     HTTP_SHUTDOWN_TIMEOUT bounds both; sends still running after it are cancelled.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordleboard/assets"
	"github.com/robalobadob/wordleboard/internal/config"
	"github.com/robalobadob/wordleboard/internal/credentials"
	"github.com/robalobadob/wordleboard/internal/host"
	"github.com/robalobadob/wordleboard/internal/vestaboard"
)

// ProxyPath is the fixed same-origin relay path.
const ProxyPath = "/vestaboard.php"

// Deps are the collaborators the server is built from.
type Deps struct {
	Hosts       host.Store
	Credentials credentials.Loader // read per proxy request; cached per session in direct mode
	Proxy       *vestaboard.Client // outbound leg of the proxy endpoint
	Direct      *vestaboard.Client // direct-mode sessions
	HTTP        *http.Client       // proxy-mode sessions calling the endpoint
}

// Server bundles router, config, and collaborators.
type Server struct {
	r    *chi.Mux
	cfg  config.Config
	deps Deps
	host *hostServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, deps Deps) *Server {
	if deps.Hosts == nil {
		deps.Hosts = host.NewMemoryStore()
	}
	if deps.Proxy == nil {
		deps.Proxy = vestaboard.New(cfg.Vestaboard.APIURL, cfg.Vestaboard.ProxyTimeout)
	}
	if deps.Direct == nil {
		deps.Direct = vestaboard.New(cfg.Vestaboard.APIURL, cfg.Vestaboard.DirectTimeout)
	}
	if deps.Credentials == nil {
		deps.Credentials = credentials.NewLoader(cfg.Vestaboard.CredentialsSource, nil)
	}
	s := &Server{r: chi.NewRouter(), cfg: cfg, deps: deps}

	// --- middleware ---
	s.r.Use(chimw.RequestID)             // add X-Request-ID
	s.r.Use(chimw.RealIP)                // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)             // recover from panics
	s.r.Use(cors(cfg.HTTP.ClientOrigin)) // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordleboard",
			"endpoints": []string{"/health", "GET " + ProxyPath, "POST /host/sessions", "GET /host/ws", "/wordleboard.js"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.deps.Hosts.Len()})
	})

	// --- static ---
	s.r.Get("/wordleboard.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write(assets.AdapterScript())
	})
	s.r.Get("/credentials.json.example", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(assets.CredentialsExample())
	})

	// --- proxy endpoint (bounded by the vendor client timeout) ---
	s.r.With(chimw.Timeout(10 * time.Second)).Get(ProxyPath, s.handleProxy)
	s.r.With(chimw.Timeout(10 * time.Second)).Get("/vestaboard", s.handleProxy)

	// --- host feed ---
	s.host = s.mountHost(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// ProxyEndpoint is the absolute URL sessions use in proxy mode.
func (s *Server) ProxyEndpoint() string {
	u, err := url.Parse(s.cfg.HTTP.PublicOrigin)
	if err != nil {
		return ProxyPath
	}
	return u.JoinPath(ProxyPath).String()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.r }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("http server starting")
		err := srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		log.Info().Msg("http server shutting down")
		_ = srv.Shutdown(shutdownCtx)
		s.host.closeAll(shutdownCtx)
		return nil
	})
	return g.Wait()
}

// ----------------------------- middleware ----------------------------------

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode string) {
	writeJSON(w, code, map[string]string{"error": errCode})
}
