package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// TokenEnvVar names the environment variable carrying the optional bearer
// token sent to HTTP agent endpoints.
const TokenEnvVar = "INBOXEVAL_AGENT_TOKEN"

const errorBodyLimit = 512

// HTTPDoer abstracts the HTTP client used by HTTPCaller.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPCaller invokes an agent variant exposed as an HTTP endpoint.
type HTTPCaller struct {
	Endpoint string
	Token    string
	Client   HTTPDoer
}

// NewHTTPCaller constructs a caller for the given invocation endpoint. An
// empty token falls back to INBOXEVAL_AGENT_TOKEN; a missing variable leaves
// requests unauthenticated.
func NewHTTPCaller(endpoint, token string, client HTTPDoer) (*HTTPCaller, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("agent endpoint is required")
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("agent endpoint %q must be an http(s) URL", endpoint)
	}
	if token == "" {
		token = strings.TrimSpace(os.Getenv(TokenEnvVar))
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPCaller{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Token:    token,
		Client:   client,
	}, nil
}

// Invoke posts the invocation payload and decodes the agent's reply.
func (c *HTTPCaller) Invoke(ctx context.Context, request Request) (Response, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("agent returned status %d: %s", resp.StatusCode, excerptBody(resp.Body))
	}

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	return response, nil
}

// excerptBody reads a bounded prefix of an error body for diagnostics.
func excerptBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, errorBodyLimit))
	excerpt := strings.TrimSpace(string(data))
	if excerpt == "" {
		return "(empty body)"
	}
	return excerpt
}
