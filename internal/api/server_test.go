package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mmberrors "github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/errors"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/pipeline"
	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/store"
)

const worldJSON = `{
  "name": "Midgaard",
  "rooms": [
    {"id": 1, "name": "Temple", "exits": {"east": 2}},
    {"id": 2, "name": "Square", "exits": {"west": 1, "south": 3}},
    {"id": 3, "name": "Market", "exits": {"north": 2}}
  ]
}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, store.NewMemoryStore(), nil)
	srv := httptest.NewServer(NewServer(runner, pipeline.DefaultOptions(), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postWorld(t *testing.T, srv *httptest.Server, query, contentType, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/layouts"+query, contentType, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestCreateAndFetchLayout(t *testing.T) {
	srv := newTestServer(t)

	resp, out := postWorld(t, srv, "", "application/json", worldJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", out)
	id, _ := out["id"].(string)
	require.NoError(t, mmberrors.ValidateLayoutID(id))
	assert.Equal(t, "Midgaard", out["name"])
	assert.Equal(t, false, out["out_of_steps"])
	steps := int(out["steps"].(float64))
	assert.Positive(t, steps)
	report := out["report"].(map[string]any)
	assert.Equal(t, float64(2), report["normal"])

	resp, body := get(t, srv.URL+"/v1/layouts/"+id)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, id, doc["id"])
	assert.Len(t, doc["snapshots"], steps)

	resp, body = get(t, srv.URL+"/v1/layouts")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), id)
}

func TestSnapshotRendering(t *testing.T) {
	srv := newTestServer(t)
	_, out := postWorld(t, srv, "", "application/json", worldJSON)
	id := out["id"].(string)
	base := srv.URL + "/v1/layouts/" + id + "/snapshots/"

	tests := []struct {
		file, ctype, prefix string
	}{
		{"0.svg", "image/svg+xml", "<svg"},
		{"last.svg", "image/svg+xml", "<svg"},
		{"last.png", "image/png", "\x89PNG"},
		{"last.txt", "text/plain; charset=utf-8", "Midgaard"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			resp, body := get(t, base+tt.file)
			require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
			assert.Equal(t, tt.ctype, resp.Header.Get("Content-Type"))
			assert.True(t, bytes.HasPrefix(body, []byte(tt.prefix)), "body starts with %q", body[:min(len(body), 16)])
		})
	}
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t)
	_, out := postWorld(t, srv, "", "application/json", worldJSON)
	id := out["id"].(string)

	tests := []struct {
		name   string
		url    string
		status int
		code   string
	}{
		{"bad id", "/v1/layouts/not-a-uuid", http.StatusBadRequest, "INVALID_ID"},
		{"missing layout", "/v1/layouts/4f9c2d1e-0000-4000-8000-000000000000", http.StatusNotFound, "LAYOUT_NOT_FOUND"},
		{"step out of range", "/v1/layouts/" + id + "/snapshots/9999.svg", http.StatusBadRequest, "INVALID_STEP"},
		{"bad step", "/v1/layouts/" + id + "/snapshots/abc.svg", http.StatusBadRequest, "INVALID_STEP"},
		{"bad format", "/v1/layouts/" + id + "/snapshots/0.bmp", http.StatusBadRequest, "INVALID_FORMAT"},
		{"no format", "/v1/layouts/" + id + "/snapshots/0", http.StatusBadRequest, "INVALID_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.url)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, string(body), `"code":"`+tt.code+`"`)
		})
	}
}

func TestCreateLayoutRejectsInvalidWorlds(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name, query, body string
		code              string
	}{
		{"malformed", "", `{"rooms": [`, "INVALID_WORLD"},
		{"unknown field", "", `{"rooms": [], "zones": []}`, "INVALID_WORLD"},
		{"dangling", "", `{"rooms": [{"id": 1, "exits": {"east": 2}}]}`, "DANGLING_EXIT"},
		{"duplicate", "", `{"rooms": [{"id": 1}, {"id": 1}]}`, "DUPLICATE_ROOM"},
		{"bad max_steps", "?max_steps=zero", worldJSON, "INVALID_INPUT"},
		{"bad switch", "?fix_obstacles=maybe", worldJSON, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, out := postWorld(t, srv, tt.query, "application/json", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			errBody := out["error"].(map[string]any)
			assert.Equal(t, tt.code, errBody["code"])
		})
	}
}

func TestCreateLayoutOptions(t *testing.T) {
	srv := newTestServer(t)

	resp, out := postWorld(t, srv, "?max_steps=1", "application/json", worldJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, out["out_of_steps"])
	assert.Equal(t, float64(1), out["steps"])

	dangling := `{"name": "x", "rooms": [{"id": 1, "exits": {"east": 2, "west": 9}}, {"id": 2}]}`
	resp, out = postWorld(t, srv, "?sanitize=true", "application/json", dangling)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", out)

	yamlWorld := "name: Hall\nrooms:\n  - id: 1\n    exits: {e: 2}\n  - id: 2\n"
	resp, out = postWorld(t, srv, "", "application/yaml", yamlWorld)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", out)
	assert.Equal(t, "Hall", out["name"])
}

func TestDeleteLayout(t *testing.T) {
	srv := newTestServer(t)
	_, out := postWorld(t, srv, "", "application/json", worldJSON)
	id := out["id"].(string)

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/layouts/"+id, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/v1/layouts/"+id)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParseSnapshotFile(t *testing.T) {
	step, f, err := parseSnapshotFile("12.graph.svg")
	require.NoError(t, err)
	assert.Equal(t, 12, step)
	assert.Equal(t, "graph", string(f))

	step, _, err = parseSnapshotFile("last.txt")
	require.NoError(t, err)
	assert.Equal(t, -1, step)

	_, _, err = parseSnapshotFile("-1.svg")
	assert.True(t, mmberrors.Is(err, mmberrors.ErrCodeInvalidStep))
}
