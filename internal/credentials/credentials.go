// internal/credentials/credentials.go
//
// Vestaboard API credentials.
//
// File contract (credentials.json, never commit it):
//   {
//     "dev":  {"api_key": "...", "api_secret": "...", "subscription_id": "..."},
//     "prod": {"api_key": "...", "api_secret": "...", "subscription_id": "..."}
//   }
//
// Sources:
//   - a file path (read on every Load).
//   - an http(s) URL (fetched on every Load, e.g. a same-origin static file).
// Cache wraps a Loader so a session fetches at most once after a success.

package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"sync/atomic"

	"github.com/robalobadob/wordleboard/internal/signals"
)

var (
	ErrNotFound     = errors.New("credentials: not found")
	ErrMissingField = errors.New("credentials: missing field")
)

// Set is one credential triple for a single board.
type Set struct {
	APIKey         string `json:"api_key"`
	APISecret      string `json:"api_secret"`
	SubscriptionID string `json:"subscription_id"`
}

// Missing lists a human readable line for every empty field.
func (s Set) Missing() []string {
	var out []string
	if s.APIKey == "" {
		out = append(out, "No API key?")
	}
	if s.APISecret == "" {
		out = append(out, "No API secret?")
	}
	if s.SubscriptionID == "" {
		out = append(out, "No subscription ID?")
	}
	return out
}

// Validate returns ErrMissingField if any field is empty.
func (s Set) Validate() error {
	if m := s.Missing(); len(m) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(m, " "))
	}
	return nil
}

// Credentials holds both credential sets, keyed by target in the file.
type Credentials struct {
	Dev  Set `json:"dev"`
	Prod Set `json:"prod"`
}

// For returns the set for t.
func (c Credentials) For(t signals.Target) Set {
	if t.IsDev() {
		return c.Dev
	}
	return c.Prod
}

// Parse decodes the credentials file contract.
func Parse(b []byte) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, fmt.Errorf("credentials: decode: %w", err)
	}
	return c, nil
}

// Loader fetches credentials from some source.
type Loader interface {
	Load(ctx context.Context) (Credentials, error)
}

// NewLoader picks an HTTP loader for http(s) URLs and a file loader otherwise.
func NewLoader(source string, client *http.Client) Loader {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return HTTPLoader{URL: source, Client: client}
	}
	return FileLoader{Path: source}
}

// FileLoader reads a credentials file from disk.
type FileLoader struct {
	Path string
}

// Load reads and decodes the file. A missing file is ErrNotFound.
func (l FileLoader) Load(ctx context.Context) (Credentials, error) {
	b, err := os.ReadFile(l.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return Credentials{}, fmt.Errorf("%w: %s", ErrNotFound, l.Path)
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials: read %s: %w", l.Path, err)
	}
	return Parse(b)
}

// HTTPLoader fetches a credentials file over HTTP.
type HTTPLoader struct {
	URL    string
	Client *http.Client
}

// Load GETs and decodes the file. 404 is ErrNotFound; other non-2xx are errors.
func (l HTTPLoader) Load(ctx context.Context) (Credentials, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Set("Cache-Control", "no-store")
	res, err := client.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials: fetch %s: %w", l.URL, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return Credentials{}, fmt.Errorf("%w: %s", ErrNotFound, l.URL)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Credentials{}, fmt.Errorf("credentials: fetch %s: status %d", l.URL, res.StatusCode)
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return Credentials{}, fmt.Errorf("credentials: read body: %w", err)
	}
	return Parse(b)
}

// Cache loads credentials lazily and keeps the first successful result.
//
// There is no lock around the load: two callers racing before the first
// load completes may both fetch. The stored value is set exactly once.
type Cache struct {
	loader Loader
	creds  atomic.Pointer[Credentials]
}

// NewCache wraps l.
func NewCache(l Loader) *Cache {
	return &Cache{loader: l}
}

// Loaded reports whether credentials are cached.
func (c *Cache) Loaded() bool { return c.creds.Load() != nil }

// Get returns cached credentials, loading them on first use.
// Failed loads are not cached; the next Get tries again.
func (c *Cache) Get(ctx context.Context) (Credentials, error) {
	if cur := c.creds.Load(); cur != nil {
		return *cur, nil
	}
	loaded, err := c.loader.Load(ctx)
	if err != nil {
		return Credentials{}, err
	}
	c.creds.CompareAndSwap(nil, &loaded)
	return *c.creds.Load(), nil
}
