package server

import (
	"io"
	"log"
	"os"

	"github.com/L3n44nd/OnlineChatServer/pkg/protocol"
)

var (
	errorLog = log.New(os.Stderr, "ERROR: ", log.LstdFlags)
	debugLog = log.New(io.Discard, "DEBUG: ", log.LstdFlags)
)

// EnableDebugLogging turns on the debug logger (per-frame traces)
func (s *Server) EnableDebugLogging() {
	debugLog.SetOutput(os.Stderr)
}

// logInbound traces one received command on the debug logger. Long payloads
// are truncated to keep the trace readable.
func logInbound(c *client, code protocol.CommandCode, payload string) {
	const maxSummary = 48
	if len(payload) > maxSummary {
		payload = payload[:maxSummary] + "..."
	}
	debugLog.Printf("[from: #%d]: %s %s", c.id, code, payload)
}

// logOutbound traces one sent response.
func logOutbound(c *client, code protocol.ResponseCode) {
	debugLog.Printf("[to: #%d]: %s", c.id, code)
}
