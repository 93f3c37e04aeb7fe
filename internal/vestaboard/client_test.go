package vestaboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordleboard/internal/credentials"
)

var testSet = credentials.Set{APIKey: "key", APISecret: "secret", SubscriptionID: "sub-1"}

func TestBodies(t *testing.T) {
	assert.Equal(t, `{"characters": [[1,2],[3]]}`, MessageBody("[[1,2],[3]]"))
	assert.Equal(t, `{"characters":[[1,2],[3]]}`, CompactBody("[[1,2],[3]]"))
}

func TestPost(t *testing.T) {
	var gotPath, gotKey, gotSecret, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Vestaboard-Api-Key")
		gotSecret = r.Header.Get("X-Vestaboard-Api-Secret")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"message":{"id":"m1"}}`))
	}))
	defer ts.Close()

	c := New(ts.URL+"/", time.Second)
	body, err := c.Post(context.Background(), testSet, MessageBody("[[0]]"))
	require.NoError(t, err)

	assert.Equal(t, `{"message":{"id":"m1"}}`, body)
	assert.Equal(t, "/subscriptions/sub-1/message", gotPath)
	assert.Equal(t, "key", gotKey)
	assert.Equal(t, "secret", gotSecret)
	assert.Equal(t, `{"characters": [[0]]}`, gotBody)
}

func TestPost_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad creds", http.StatusUnauthorized)
	}))
	defer ts.Close()

	body, err := New(ts.URL, time.Second).Post(context.Background(), testSet, "{}")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Contains(t, body, "bad creds")
}

func TestPost_MissingCredentials(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	defer ts.Close()

	_, err := New(ts.URL, time.Second).Post(context.Background(), credentials.Set{APIKey: "k"}, "{}")
	require.ErrorIs(t, err, credentials.ErrMissingField)
	assert.False(t, called)
}

func TestNew_DefaultBaseURL(t *testing.T) {
	assert.Equal(t, "https://platform.vestaboard.com/subscriptions/x/message", New("", 0).MessageURL("x"))
}
