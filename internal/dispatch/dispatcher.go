// internal/dispatch/dispatcher.go
//
// Delivers grids to a board for one host session.
// Responsibilities:
//   - Hold the session's resolved target (dev|prod) and transport (proxy|direct).
//   - Serialize grids to the wire form and send them without blocking the caller.
//   - Lazily load credentials for direct mode (at most once per success).
//   - Log every outgoing call and, when it lands, the raw response body.
//
// Session state:
//   Uninitialized → TargetResolved → (CredentialsPending → CredentialsLoaded)? → Ready
//
// Notes:
//   - Sends are issued in call order but may complete in any order; the
//     board keeps whichever full-grid write lands last.
//   - Failures (network, credentials, vendor status) are logged and dropped.
//     Nothing is retried.

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordleboard/internal/board"
	"github.com/robalobadob/wordleboard/internal/credentials"
	"github.com/robalobadob/wordleboard/internal/signals"
	"github.com/robalobadob/wordleboard/internal/vestaboard"
)

// Mode is the transport used to reach the board.
type Mode string

const (
	// ModeProxy relays through a same-origin endpoint that holds the secrets.
	ModeProxy Mode = "proxy"
	// ModeDirect calls the vendor API with credentials held by the session.
	ModeDirect Mode = "direct"
)

// ParseMode validates a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeProxy, ModeDirect:
		return Mode(s), nil
	}
	return "", fmt.Errorf("dispatch: unknown mode %q", s)
}

// State is the session lifecycle stage.
type State int32

const (
	Uninitialized State = iota
	TargetResolved
	CredentialsPending
	CredentialsLoaded
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case TargetResolved:
		return "target_resolved"
	case CredentialsPending:
		return "credentials_pending"
	case CredentialsLoaded:
		return "credentials_loaded"
	case Ready:
		return "ready"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Result is reported once per send after it completes.
type Result struct {
	Seq  uint64
	Kind string // "banner" | "grid"
	Body string
	Err  error
}

// Config wires a Dispatcher's transport.
type Config struct {
	Mode Mode

	// ProxyURL is the absolute proxy endpoint (proxy mode).
	ProxyURL string
	// HTTP is used for proxy calls; nil means http.DefaultClient.
	HTTP *http.Client

	// Vendor and Credentials are required in direct mode.
	Vendor      *vestaboard.Client
	Credentials *credentials.Cache

	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
	// OnResult, if set, observes every completed send.
	OnResult func(Result)
}

// Dispatcher sends grids for one session. It is safe for concurrent use.
type Dispatcher struct {
	cfg    Config
	target signals.Target
	log    zerolog.Logger

	state atomic.Int32
	seq   atomic.Uint64
	wg    sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

var ErrMisconfigured = errors.New("dispatch: misconfigured")

// New returns a Dispatcher bound to target.
func New(cfg Config, target signals.Target) (*Dispatcher, error) {
	switch cfg.Mode {
	case ModeProxy:
		if cfg.ProxyURL == "" {
			return nil, fmt.Errorf("%w: proxy mode needs an endpoint", ErrMisconfigured)
		}
	case ModeDirect:
		if cfg.Vendor == nil || cfg.Credentials == nil {
			return nil, fmt.Errorf("%w: direct mode needs a vendor client and credentials", ErrMisconfigured)
		}
	default:
		return nil, fmt.Errorf("%w: mode %q", ErrMisconfigured, cfg.Mode)
	}
	if target != signals.TargetDev && target != signals.TargetProd {
		return nil, fmt.Errorf("%w: target %q", ErrMisconfigured, target)
	}

	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		cfg:    cfg,
		target: target,
		log:    logger.With().Str("target", string(target)).Str("mode", string(cfg.Mode)).Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
	d.state.Store(int32(TargetResolved))
	if cfg.Mode == ModeProxy || cfg.Credentials.Loaded() {
		d.state.Store(int32(Ready))
	}
	return d, nil
}

// Target returns the session's target.
func (d *Dispatcher) Target() signals.Target { return d.target }

// Mode returns the session's transport.
func (d *Dispatcher) Mode() Mode { return d.cfg.Mode }

// State returns the current lifecycle stage.
func (d *Dispatcher) State() State { return State(d.state.Load()) }

// SendBanner shows the title screen.
func (d *Dispatcher) SendBanner() {
	d.log.Info().Msg("displaying title screen")
	d.send("banner", board.Banner().Wire())
}

// SendGrid sends g.
func (d *Dispatcher) SendGrid(g board.Grid) {
	d.send("grid", g.Wire())
}

// Update encodes s and sends it. Encoding errors are logged and nothing is sent.
func (d *Dispatcher) Update(s board.Snapshot, opts board.Options) {
	g, err := board.Encode(s, opts)
	if err != nil {
		d.log.Error().Err(err).Int("day", s.DayIndex).Msg("encode board")
		return
	}
	d.SendGrid(g)
}

// Wait blocks until all sends issued so far have completed.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Close cancels in-flight sends and waits for them to return.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}

func (d *Dispatcher) send(kind, characters string) {
	seq := d.seq.Add(1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		var body string
		var err error
		if d.cfg.Mode == ModeProxy {
			body, err = d.viaProxy(seq, characters)
		} else {
			body, err = d.direct(seq, characters)
		}
		ev := d.log.Info()
		if err != nil {
			ev = d.log.Error().Err(err)
		}
		ev.Uint64("seq", seq).Str("kind", kind).Str("body", body).Msg("board response")
		if d.cfg.OnResult != nil {
			d.cfg.OnResult(Result{Seq: seq, Kind: kind, Body: body, Err: err})
		}
	}()
}

// ProxyURL builds the proxy request URL for a wire string.
func ProxyURL(endpoint, characters string, dev bool) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("characters", characters)
	if dev {
		q.Set("is_dev", "1")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (d *Dispatcher) viaProxy(seq uint64, characters string) (string, error) {
	target, err := ProxyURL(d.cfg.ProxyURL, characters, d.target.IsDev())
	if err != nil {
		return "", fmt.Errorf("dispatch: proxy url: %w", err)
	}
	d.log.Info().Uint64("seq", seq).Str("url", target).Msg("calling endpoint")

	req, err := http.NewRequestWithContext(d.ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Cache-Control", "no-store")

	client := d.cfg.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("dispatch: endpoint: %w", err)
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("dispatch: endpoint body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return string(b), fmt.Errorf("dispatch: endpoint status %d", res.StatusCode)
	}
	return string(b), nil
}

func (d *Dispatcher) direct(seq uint64, characters string) (string, error) {
	body := vestaboard.MessageBody(characters)
	d.log.Info().Uint64("seq", seq).Str("body", body).Msg("calling vestaboard api")

	if !d.cfg.Credentials.Loaded() {
		d.state.CompareAndSwap(int32(TargetResolved), int32(CredentialsPending))
		d.log.Debug().Msg("fetching credentials")
	}
	creds, err := d.cfg.Credentials.Get(d.ctx)
	if err != nil {
		d.state.CompareAndSwap(int32(CredentialsPending), int32(TargetResolved))
		return "", fmt.Errorf("dispatch: credentials (see credentials.json.example): %w", err)
	}
	if d.state.CompareAndSwap(int32(CredentialsPending), int32(CredentialsLoaded)) {
		d.log.Info().Msg("fetched credentials")
	}
	d.state.CompareAndSwap(int32(CredentialsLoaded), int32(Ready))
	d.state.CompareAndSwap(int32(TargetResolved), int32(Ready))

	return d.cfg.Vendor.Post(d.ctx, creds.For(d.target), body)
}
