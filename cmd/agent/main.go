// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command agent runs a single netproof test node: it exposes the RPC
// surface spec §6 names (handshake, run lifecycle, results, monitoring)
// over HTTP+JSON behind gorilla/mux, so an orchestrator can drive it
// through agentclient.
package main

import (
	"flag"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/luxfi/netproof/agent"
	"github.com/luxfi/netproof/logging"
)

func main() {
	listen := flag.String("listen", ":8081", "address to listen on")
	id := flag.String("id", "", "this agent's stable identity (required)")
	protocolVersion := flag.Int("protocol-version", 1, "RPC protocol version this agent speaks")
	capabilities := flag.String("capabilities", "quic,hole_punch", "comma-separated capability tags")
	flag.Parse()

	log := logging.New("agent")

	if *id == "" {
		log.Error("missing required flag -id")
		return
	}

	var caps []string
	for _, c := range strings.Split(*capabilities, ",") {
		if c = strings.TrimSpace(c); c != "" {
			caps = append(caps, c)
		}
	}

	a := agent.New(*id, *protocolVersion, caps, log.With(zap.String("agent_id", *id)))

	srv := agent.NewServer(a, log)
	log.Info("agent listening", zap.String("listen", *listen), zap.String("agent_id", *id))
	if err := http.ListenAndServe(*listen, srv.Router()); err != nil {
		log.Error("agent server exited", zap.Error(err))
	}
}
