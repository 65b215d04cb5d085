package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"inboxeval/internal/agent"
)

// AgentScript decides the reply for one recorded invocation.
type AgentScript func(req agent.Request) (agent.Response, int)

// AgentServer is an in-memory scripted agent endpoint.
type AgentServer struct {
	BaseURL string
	Close   func()

	mu       sync.Mutex
	requests []agent.Request
}

// Requests returns a copy of the invocations received so far.
func (s *AgentServer) Requests() []agent.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]agent.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// StartAgentServer launches a scripted agent endpoint. A nil script echoes a
// fixed respond decision for every invocation.
func StartAgentServer(t *testing.T, script AgentScript) *AgentServer {
	t.Helper()
	if script == nil {
		script = func(agent.Request) (agent.Response, int) {
			return agent.Response{ClassificationDecision: "respond"}, http.StatusOK
		}
	}
	server := &AgentServer{}
	httpServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req agent.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		server.mu.Lock()
		server.requests = append(server.requests, req)
		server.mu.Unlock()

		resp, status := script(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 200 && status < 300 {
			if err := json.NewEncoder(w).Encode(resp); err != nil {
				t.Errorf("encode agent response: %v", err)
			}
		}
	}))
	server.BaseURL = httpServer.URL
	server.Close = httpServer.Close
	t.Cleanup(httpServer.Close)
	return server
}
