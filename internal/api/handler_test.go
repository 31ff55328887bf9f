package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonkalabs/notetoken/internal/content"
)

const testNpub = "npub1sjcvg64knxkrt6ev52rywzu9uzqakgy8ehhk8yezxmpewsthst6sw3jqcw"

func newTestServer(t *testing.T, maxTextBytes int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	New(content.New(), content.DefaultOptions(), false, maxTextBytes).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postTokenize(t *testing.T, srv *httptest.Server, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/v1/tokenize", "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func decodeTokens(t *testing.T, raw json.RawMessage) []content.Span {
	t.Helper()
	var spans []content.Span
	require.NoError(t, json.Unmarshal(raw, &spans))
	return spans
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTokenize(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	resp, out := postTokenize(t, srv, map[string]any{
		"text": "gm #nostr https://example.com/a.png",
		"tags": [][]string{{"t", "nostr"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	spans := decodeTokens(t, out["tokens"])
	require.Len(t, spans, 4)
	assert.Equal(t, content.Hashtag, spans[1].Kind)
	assert.Equal(t, content.Link, spans[3].Kind)
	assert.Equal(t, "image", spans[3].Metadata[content.MetaMediaKind])
}

func TestTokenizeOptionsAndKinds(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	resp, out := postTokenize(t, srv, map[string]any{
		"text":    "hi " + testNpub + " #zap",
		"kinds":   []string{"nip19", "hashtag"},
		"options": map[string]any{"includeBareProtocolReferences": true, "restrictTagsToAnnotations": false},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	spans := decodeTokens(t, out["tokens"])
	require.Len(t, spans, 2)
	assert.Equal(t, content.ProtocolEntity, spans[0].Kind)
	assert.Equal(t, content.Hashtag, spans[1].Kind)
}

func TestTokenizeEmptyText(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	resp, out := postTokenize(t, srv, map[string]any{"text": ""})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(out["tokens"]))
}

func TestTokenizeRejectsUnknownKind(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	resp, out := postTokenize(t, srv, map[string]any{"text": "x", "kinds": []string{"url", "bogus"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(out["error"]), "bogus")
}

func TestTokenizeRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	resp, err := http.Post(srv.URL+"/v1/tokenize", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTokenizeRejectsLargeText(t *testing.T) {
	srv := newTestServer(t, 16)
	resp, _ := postTokenize(t, srv, map[string]any{"text": strings.Repeat("a", 17)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestListKinds(t *testing.T) {
	srv := newTestServer(t, 1<<20)
	resp, err := http.Get(srv.URL + "/v1/kinds")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		Kinds []struct {
			Name     string `json:"name"`
			Priority int    `json:"priority"`
		} `json:"kinds"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Kinds, len(content.Kinds()))
	assert.Equal(t, "url", out.Kinds[1].Name)
	assert.Equal(t, 15, out.Kinds[1].Priority)
}
