package credentials

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordleboard/internal/signals"
)

const sample = `{
  "dev":  {"api_key": "dk", "api_secret": "ds", "subscription_id": "dsub"},
  "prod": {"api_key": "pk", "api_secret": "ps", "subscription_id": ""}
}`

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestFileLoader(t *testing.T) {
	c, err := FileLoader{Path: writeFile(t, sample)}.Load(context.Background())
	require.NoError(t, err)

	dev := c.For(signals.TargetDev)
	assert.Equal(t, Set{APIKey: "dk", APISecret: "ds", SubscriptionID: "dsub"}, dev)
	assert.NoError(t, dev.Validate())

	prod := c.For(signals.TargetProd)
	assert.Equal(t, []string{"No subscription ID?"}, prod.Missing())
	assert.ErrorIs(t, prod.Validate(), ErrMissingField)
}

func TestFileLoader_Missing(t *testing.T) {
	_, err := FileLoader{Path: filepath.Join(t.TempDir(), "nope.json")}.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileLoader_Malformed(t *testing.T) {
	_, err := FileLoader{Path: writeFile(t, "{not json")}.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestHTTPLoader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/credentials.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sample))
	}))
	defer ts.Close()

	l := NewLoader(ts.URL+"/credentials.json", ts.Client())
	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pk", c.Prod.APIKey)

	_, err = NewLoader(ts.URL+"/missing.json", ts.Client()).Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewLoader_File(t *testing.T) {
	assert.IsType(t, FileLoader{}, NewLoader("credentials.json", nil))
}

type countingLoader struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (l *countingLoader) Load(ctx context.Context) (Credentials, error) {
	l.calls.Add(1)
	if l.fail.Load() {
		return Credentials{}, ErrNotFound
	}
	return Parse([]byte(sample))
}

func TestCache_LoadsOnce(t *testing.T) {
	l := &countingLoader{}
	c := NewCache(l)
	assert.False(t, c.Loaded())

	for i := 0; i < 3; i++ {
		got, err := c.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "dk", got.Dev.APIKey)
	}
	assert.True(t, c.Loaded())
	assert.EqualValues(t, 1, l.calls.Load())
}

func TestCache_RetriesAfterFailure(t *testing.T) {
	l := &countingLoader{}
	l.fail.Store(true)
	c := NewCache(l)

	_, err := c.Get(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, c.Loaded())

	l.fail.Store(false)
	_, err = c.Get(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, l.calls.Load())
}

func TestCache_ConcurrentFirstUse(t *testing.T) {
	l := &countingLoader{}
	c := NewCache(l)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Get(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Duplicate fetches are allowed before the first load lands.
	assert.GreaterOrEqual(t, l.calls.Load(), int32(1))
	assert.LessOrEqual(t, l.calls.Load(), int32(8))
	assert.True(t, c.Loaded())
}
