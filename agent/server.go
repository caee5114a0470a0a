// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package agent

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/luxfi/netproof/logging"
	"github.com/luxfi/netproof/proof"
)

// Server exposes an Agent's RPC surface over HTTP+JSON via gorilla/mux,
// the concrete transport spec §6 names ("JSON-encoded messages over
// HTTP+QUIC; stable field names"), adapted from the mux router style of
// Generativebots-ocx-backend-go-svc's internal/api/server.go.
type Server struct {
	agent *Agent
	log   logging.Logger
}

// NewServer wires an Agent into a mux.Router-backed Server.
func NewServer(a *Agent, log logging.Logger) *Server {
	if log == nil {
		log = logging.NoOp()
	}
	return &Server{agent: a, log: log}
}

// Router builds the mux.Router exposing exactly the routes of spec §6.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/handshake", s.handleHandshake).Methods(http.MethodPost)
	r.HandleFunc("/runs", s.handleStartRun).Methods(http.MethodPost)
	r.HandleFunc("/runs/{id}", s.handleRunStatus).Methods(http.MethodGet)
	r.HandleFunc("/runs/{id}/stop", s.handleStopRun).Methods(http.MethodPost)
	r.HandleFunc("/runs/{id}/results", s.handleGetResults).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/probe", s.handleProbe).Methods(http.MethodGet)
	r.HandleFunc("/api/proofs", s.handleProofs).Methods(http.MethodGet)
	r.HandleFunc("/api/proofs/{kind}", s.handleProofs).Methods(http.MethodGet)
	r.HandleFunc("/api/logs", s.handleLogs).Methods(http.MethodGet)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHandshake(w http.ResponseWriter, r *http.Request) {
	var req HandshakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	compatible, missing, caps := s.agent.Handshake(req.ProtocolVersion, req.RequiredCapabilities)
	writeJSON(w, http.StatusOK, HandshakeResponse{
		AgentID:             s.agent.ID(),
		Compatible:          compatible,
		MissingCapabilities: missing,
		Capabilities:        caps,
	})
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var req StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, StartRunResponse{Error: err.Error()})
		return
	}

	if err := s.agent.StartRun(req.RunID, req.Scenario, req.AgentRole, req.PeerAgents); err != nil {
		writeJSON(w, http.StatusConflict, StartRunResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, StartRunResponse{Success: true})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	state, progress, err := s.agent.StatusPoll(runID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, RunStatusResponse{Status: state, Progress: progress})
}

func (s *Server) handleStopRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	completed, err := s.agent.StopRun(runID, 5*time.Second)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, StopRunResponse{AttemptsCompleted: completed})
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	results, err := s.agent.GetResults(runID)
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, ErrUnknownRun) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, GetResultsResponse{Results: results})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	run := s.agent.CurrentRun()
	resp := ProbeResponse{
		AgentID:  s.agent.ID(),
		ListenV4: s.agent.Observer().ListenAddress(proof.IPv4),
		ListenV6: s.agent.Observer().ListenAddress(proof.IPv6),
	}
	if run != nil {
		resp.RunState = run.State
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProofs(w http.ResponseWriter, r *http.Request) {
	// Best-effort snapshot (spec §4.1: "best-effort snapshot for
	// monitoring, none fatal"); the agent itself does not hold proofs,
	// those are composed by the orchestrator, so this reports an empty
	// set rather than erroring.
	writeJSON(w, http.StatusOK, map[string]any{"proofs": []any{}})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"logs": []any{}})
}
