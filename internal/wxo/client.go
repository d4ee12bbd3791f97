package wxo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	listTimeout   = 30 * time.Second
	submitTimeout = 30 * time.Second
	statusTimeout = 10 * time.Second

	// DefaultPollInterval is the wait between status queries.
	DefaultPollInterval = 2 * time.Second
)

// TokenSource yields a valid bearer token for the platform.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the watsonx Orchestrate HTTP API. All public operations
// return a Result envelope; they never return a Go error.
type Client struct {
	BaseURL string
	Tokens  TokenSource
	HTTP    *http.Client

	now   func() time.Time
	sleep func(time.Duration)
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Tokens:  tokens,
		HTTP:    &http.Client{},
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// FromEnv builds a client from WXO_INSTANCE.
func FromEnv(tokens TokenSource) (*Client, error) {
	base := os.Getenv("WXO_INSTANCE")
	if base == "" {
		return nil, &ConfigError{Reason: "WXO_INSTANCE environment variable must be set"}
	}
	return NewClient(base, tokens), nil
}

// ListAgents fetches all agents. Descriptions are truncated to 100 runes.
func (c *Client) ListAgents(ctx context.Context) Result {
	raw, err := c.doJSON(ctx, http.MethodGet, "/v1/orchestrate/agents", nil, listTimeout)
	if err != nil {
		return Failed("", err)
	}
	var agents []struct {
		Name        string `json:"name"`
		ID          string `json:"id"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &agents); err != nil {
		return Failed("", &TransportError{Err: err})
	}
	out := make([]AgentSummary, 0, len(agents))
	for _, a := range agents {
		out = append(out, AgentSummary{Name: a.Name, ID: a.ID, Description: truncate(a.Description, 100)})
	}
	return Result{Success: true, AgentCount: len(out), Agents: out}
}

// ResolveAgent maps an agent reference to its identifier. A UUID-shaped
// reference is returned as-is with no network call; anything else is looked up
// by exact name in the full agent list. Resolution is never cached, so every
// by-name call re-fetches the list.
func (c *Client) ResolveAgent(ctx context.Context, ref string) (string, error) {
	if isAgentID(ref) {
		return ref, nil
	}
	raw, err := c.doJSON(ctx, http.MethodGet, "/v1/orchestrate/agents", nil, listTimeout)
	if err != nil {
		return "", err
	}
	var agents []struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(raw, &agents); err != nil {
		return "", &TransportError{Err: err}
	}
	for _, a := range agents {
		if a.Name == ref {
			return a.ID, nil
		}
	}
	return "", &NotFoundError{Name: ref}
}

// Shape check only: 36 characters, four hyphens. Non-hex input that happens to
// match falls through to the platform, same as the upstream client.
func isAgentID(s string) bool {
	return len(s) == 36 && strings.Count(s, "-") == 4
}

// Trigger submits a message to an agent. With wait it blocks on the
// completions endpoint for up to timeout; without it the run is started
// asynchronously and the run handle is returned.
func (c *Client) Trigger(ctx context.Context, agent, input string, wait bool, timeout time.Duration) Result {
	if wait {
		return c.TriggerSync(ctx, agent, input, timeout)
	}
	return c.TriggerAsync(ctx, agent, input)
}

// TriggerSync resolves the agent and issues one blocking chat/completions
// request. An empty choices list is still a completed result with an empty
// response string.
func (c *Client) TriggerSync(ctx context.Context, agent, input string, timeout time.Duration) Result {
	id, err := c.ResolveAgent(ctx, agent)
	if err != nil {
		return Failed(agent, err)
	}
	payload := map[string]any{
		"messages": []map[string]string{{"role": "user", "content": input}},
		"stream":   false,
	}
	raw, err := c.doJSON(ctx, http.MethodPost, "/v1/orchestrate/"+id+"/chat/completions", payload, timeout)
	if err != nil {
		return Failed(agent, err)
	}
	reply := gjson.GetBytes(raw, "choices.0.message.content").String()
	return Completed(agent, reply, raw)
}

// TriggerAsync resolves the agent and starts a run without waiting for it.
func (c *Client) TriggerAsync(ctx context.Context, agent, input string) Result {
	id, err := c.ResolveAgent(ctx, agent)
	if err != nil {
		return Failed(agent, err)
	}
	payload := map[string]any{
		"message":  map[string]string{"role": "user", "content": input},
		"agent_id": id,
	}
	raw, err := c.doJSON(ctx, http.MethodPost, "/v1/orchestrate/runs", payload, submitTimeout)
	if err != nil {
		return Failed(agent, err)
	}
	var h RunHandle
	if err := json.Unmarshal(raw, &h); err != nil {
		return Failed(agent, &TransportError{Err: err})
	}
	return Started(agent, h)
}

// RunStatus issues a single status query for a run.
func (c *Client) RunStatus(ctx context.Context, runID string) Result {
	raw, err := c.doJSON(ctx, http.MethodGet, "/v1/orchestrate/runs/"+runID, nil, statusTimeout)
	if err != nil {
		r := Failed("", err)
		r.RunID = runID
		return r
	}
	return Result{Success: true, RunID: runID, Data: raw}
}

// PollStatus queries a run until it reaches a terminal status or the deadline
// passes. The first query always happens, even with timeout <= 0: the elapsed
// check runs before every query except the first. Polling is strictly
// sequential; the loop sleeps interval between queries.
func (c *Client) PollStatus(ctx context.Context, runID string, timeout, interval time.Duration) Result {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	start := c.now()
	for i := 0; ; i++ {
		if i > 0 && c.now().Sub(start) >= timeout {
			return TimedOut(runID, timeout)
		}
		raw, err := c.doJSON(ctx, http.MethodGet, "/v1/orchestrate/runs/"+runID, nil, statusTimeout)
		if err != nil {
			r := Failed("", err)
			r.RunID = runID
			return r
		}
		switch gjson.GetBytes(raw, "status").String() {
		case "completed":
			r := Completed("", gjson.GetBytes(raw, "output.text").String(), raw)
			r.RunID = runID
			return r
		case "failed":
			msg := gjson.GetBytes(raw, "error").String()
			if msg == "" {
				msg = "agent run failed"
			}
			return Result{
				Success:    false,
				Status:     StatusFailed,
				RunID:      runID,
				Error:      msg,
				FullOutput: raw,
			}
		}
		c.sleep(interval)
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, timeout time.Duration) (json.RawMessage, error) {
	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if res.StatusCode/100 != 2 {
		return nil, &TransportError{StatusCode: res.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
