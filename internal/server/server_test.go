package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

func testServer() *Server {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(pipeline.NewRunner(nil, nil, logger), logger)
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

const smallGraph = `{
	"nodes": [{"id": "a"}, {"id": "b"}, {"id": "c"}],
	"edges": [{"source": "a", "target": "b"}, {"source": "b", "target": "c"}]
}`

func TestHealthz(t *testing.T) {
	router := testServer().Router()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want %q", body["status"], "ok")
	}
}

func TestLayoutEndpoint(t *testing.T) {
	router := testServer().Router()
	rec := postJSON(t, router, "/api/layout",
		`{"graph": `+smallGraph+`, "options": {"algorithm": "circular", "radius": 100}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}

	var resp layoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.RunID == "" {
		t.Error("run_id should be set")
	}
	if resp.GraphHash == "" {
		t.Error("graph_hash should be set")
	}
	if resp.Stats.NodeCount != 3 || resp.Stats.EdgeCount != 2 {
		t.Errorf("stats = %d nodes / %d edges, want 3 / 2", resp.Stats.NodeCount, resp.Stats.EdgeCount)
	}
	for _, n := range resp.Graph.Nodes {
		if !n.HasPosition {
			t.Errorf("node %s has no position", n.ID)
		}
	}
}

func TestLayoutEndpointRejectsBadInput(t *testing.T) {
	router := testServer().Router()

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{`, want: http.StatusBadRequest},
		{name: "missing graph", body: `{"options": {}}`, want: http.StatusBadRequest},
		{name: "duplicate node", body: `{"graph": {"nodes": [{"id": "a"}, {"id": "a"}]}}`, want: http.StatusBadRequest},
		{name: "unknown endpoint", body: `{"graph": {"nodes": [{"id": "a"}], "edges": [{"source": "a", "target": "zz"}]}}`, want: http.StatusBadRequest},
		{name: "unknown algorithm", body: `{"graph": ` + smallGraph + `, "options": {"algorithm": "magnetic"}}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/api/layout", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Error == "" {
				t.Error("error message should be set")
			}
		})
	}
}

func TestStreamEndpointEmitsTicks(t *testing.T) {
	router := testServer().Router()
	rec := postJSON(t, router, "/api/layout/stream",
		`{"graph": `+smallGraph+`, "options": {"max_iteration": 5, "min_movement": 1e-12}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/x-ndjson" {
		t.Errorf("content type = %q, want application/x-ndjson", got)
	}

	scanner := bufio.NewScanner(bytes.NewReader(rec.Body.Bytes()))
	tick := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		tick++
		var msg layout.TickMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			t.Fatalf("decode line %d: %v", tick, err)
		}
		if msg.Type != "tick" {
			t.Errorf("line %d: type = %q, want %q", tick, msg.Type, "tick")
		}
		if msg.CurrentTick != tick {
			t.Errorf("line %d: currentTick = %d, want %d", tick, msg.CurrentTick, tick)
		}
		if msg.TotalTicks != 5 {
			t.Errorf("line %d: totalTicks = %d, want 5", tick, msg.TotalTicks)
		}
	}
	if tick != 5 {
		t.Errorf("received %d tick lines, want 5", tick)
	}
}

func TestStreamEndpointRejectsNonForce(t *testing.T) {
	router := testServer().Router()
	rec := postJSON(t, router, "/api/layout/stream",
		`{"graph": `+smallGraph+`, "options": {"algorithm": "circular"}}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusUnprocessableEntity, rec.Body)
	}
}
