// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package agentclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/netproof/agent"
)

func TestHandshakeRoundTrip(t *testing.T) {
	srv := httptest.NewServer(agent.NewServer(
		agent.New("agent-1", 1, []string{"quic"}, nil),
		nil,
	).Router())
	defer srv.Close()

	c := New(srv.URL, DefaultDeadlines())
	resp, err := c.Handshake(context.Background(), agent.HandshakeRequest{
		OrchestratorID:  "orch-1",
		ProtocolVersion: 1,
	})
	require.NoError(t, err)
	require.True(t, resp.Compatible)
	require.Equal(t, "agent-1", resp.AgentID)
}

func TestHandshakeDeadlineExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, Deadlines{Handshake: time.Millisecond})
	_, err := c.Handshake(context.Background(), agent.HandshakeRequest{ProtocolVersion: 1})
	require.Error(t, err)
}

func TestStartRunReturnsServerError(t *testing.T) {
	a := agent.New("agent-1", 1, nil, nil)
	srv := httptest.NewServer(agent.NewServer(a, nil).Router())
	defer srv.Close()

	c := New(srv.URL, DefaultDeadlines())
	_, err := c.StartRun(context.Background(), agent.StartRunRequest{
		RunID: "run-1",
	})
	require.Error(t, err)
}
