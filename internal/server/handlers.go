package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/layout/force"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// layoutRequest is the body of both layout endpoints.
type layoutRequest struct {
	Graph   json.RawMessage  `json:"graph"`
	Options pipeline.Options `json:"options"`
}

// layoutResponse is the synchronous endpoint's reply.
type layoutResponse struct {
	RunID     string       `json:"run_id"`
	GraphHash string       `json:"graph_hash"`
	Cached    bool         `json:"cached"`
	Stats     statsPayload `json:"stats"`
	Graph     *graph.Graph `json:"graph"`
}

type statsPayload struct {
	NodeCount    int     `json:"node_count"`
	EdgeCount    int     `json:"edge_count"`
	LayoutMillis float64 `json:"layout_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLayout runs the full pipeline over the posted graph and returns the
// positioned result as one JSON document.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, g, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}

	result, err := s.runner.ExecuteGraph(r.Context(), g, req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, layoutResponse{
		RunID:     result.RunID,
		GraphHash: result.GraphHash,
		Cached:    result.CacheInfo.LayoutHit,
		Stats: statsPayload{
			NodeCount:    result.Stats.NodeCount,
			EdgeCount:    result.Stats.EdgeCount,
			LayoutMillis: float64(result.Stats.LayoutTime) / float64(time.Millisecond),
		},
		Graph: result.Graph,
	})
}

// handleLayoutStream runs the force simulation in offloaded mode and writes
// one NDJSON tick message per step, so clients can animate intermediate
// positions. Only the force algorithm is iterative; other algorithms are
// rejected.
func (s *Server) handleLayoutStream(w http.ResponseWriter, r *http.Request) {
	req, g, ok := s.decodeRequest(w, r)
	if !ok {
		return
	}
	if req.Options.Algorithm != "" && req.Options.Algorithm != pipeline.AlgorithmForce {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported,
			"streaming requires the force algorithm, got %q", req.Options.Algorithm))
		return
	}
	req.Options.Algorithm = pipeline.AlgorithmForce
	if err := req.Options.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, err)
		return
	}

	msgs := make(chan layout.TickMessage, 16)
	engine := force.New(append(pipeline.ForceEngineOptions(req.Options), force.WithOffload(true))...)
	engine.SetEnvironment(layout.ExecutionEnvironment{Messages: msgs})
	defer engine.Destroy()

	if err := engine.Init(g); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	done := make(chan error, 1)
	go func() {
		defer close(msgs)
		done <- engine.Execute()
	}()

	enc := json.NewEncoder(w)
	for msg := range msgs {
		if err := enc.Encode(msg); err != nil {
			// Client went away; stop the simulation and drain.
			engine.Stop()
			for range msgs {
			}
			break
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	if err := <-done; err != nil {
		s.logger.Warn("streamed layout failed", "err", err)
	}
}

// decodeRequest parses and validates the request body. On failure it writes
// the error response and returns ok=false.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (layoutRequest, *graph.Graph, bool) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body"))
		return req, nil, false
	}
	if len(req.Graph) == 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidGraph, "request is missing a graph"))
		return req, nil, false
	}

	g, err := graph.UnmarshalGraph(req.Graph)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse graph")
		}
		s.writeError(w, err)
		return req, nil, false
	}
	return req, g, true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidGraph, errors.ErrCodeDuplicateNode, errors.ErrCodeUnknownEndpoint,
		errors.ErrCodeInvalidOption, errors.ErrCodeInvalidOrdering, errors.ErrCodeInvalidAlgorithm,
		errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		status = http.StatusUnprocessableEntity
	}
	s.logger.Warn("request failed", "status", status, "err", err)
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
