package backend

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	opts.HTTPClient = srv.Client()
	return NewClient(opts)
}

func TestGenerate_PostsQuery(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Hi there"}`))
	}, Options{})

	text, err := c.Generate(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hi there", text)
	assert.Equal(t, map[string]any{"query": "Hello"}, got)
}

func TestGenerate_SendsTopKWhenConfigured(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}, Options{TopK: 3})

	_, err := c.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, float64(3), got["top_k"])
}

func TestGenerate_CustomEndpoint(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}, Options{Endpoint: "api/generate"})

	text, err := c.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestGenerate_EmptyObjectHasNoAnswer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}, Options{})

	text, err := c.Generate(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestGenerate_NonOKStatusFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"bad"}`))
	}, Options{})

	_, err := c.Generate(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, IsRequestFailure(err))

	var rf *RequestFailure
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "status", rf.Op)
	assert.Equal(t, http.StatusUnprocessableEntity, rf.Status)
	assert.Contains(t, err.Error(), "422")
}

func TestGenerate_MalformedBodyFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}, Options{})

	_, err := c.Generate(context.Background(), "q")
	var rf *RequestFailure
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "decode", rf.Op)
}

func TestGenerate_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := NewClient(Options{BaseURL: "http://" + addr})
	_, err = c.Generate(context.Background(), "q")
	var rf *RequestFailure
	require.ErrorAs(t, err, &rf)
	assert.Equal(t, "send", rf.Op)
	assert.Zero(t, rf.Status)
}

func TestGenerate_CanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response":"late"}`))
	}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, "q")
	require.Error(t, err)
	assert.True(t, IsRequestFailure(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClient_URL(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://localhost:8000/"})
	assert.Equal(t, "http://localhost:8000/generate", c.URL())
}

func TestDecodeReply(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "string", body: `{"response":"R"}`, want: "R"},
		{name: "missing", body: `{"other":1}`, want: ""},
		{name: "empty string", body: `{"response":""}`, want: ""},
		{name: "null field", body: `{"response":null}`, want: ""},
		{name: "false", body: `{"response":false}`, want: ""},
		{name: "zero", body: `{"response":0}`, want: ""},
		{name: "true", body: `{"response":true}`, want: "true"},
		{name: "number", body: `{"response":42}`, want: "42"},
		{name: "object", body: `{"response":{"a":1}}`, want: `{"a":1}`},
		{name: "array", body: `{"response":[1,2]}`, want: `[1,2]`},
		{name: "empty array", body: `{"response":[]}`, want: `[]`},
		{name: "array body", body: `[1,2]`, want: ""},
		{name: "string body", body: `"hello"`, want: ""},
		{name: "null body", body: `null`, wantErr: true},
		{name: "not json", body: `nope`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeReply([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
