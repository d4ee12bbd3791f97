package wxo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (t staticToken) Token(ctx context.Context) (string, error) { return string(t), nil }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, staticToken("test-token"))
	return c, srv
}

// fakeClock makes polling deterministic: sleeping advances the clock.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time        { return f.t }
func (f *fakeClock) sleep(d time.Duration) { f.t = f.t.Add(d) }

func TestResolveAgentIDFastPath(t *testing.T) {
	var listCalls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&listCalls, 1)
		w.Write([]byte(`[]`))
	}))

	id := "11111111-1111-1111-1111-111111111111"
	got, err := c.ResolveAgent(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Zero(t, atomic.LoadInt32(&listCalls), "UUID-shaped reference must not hit the network")
}

func TestResolveAgentByName(t *testing.T) {
	var listCalls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&listCalls, 1)
		assert.Equal(t, "/v1/orchestrate/agents", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"name":"Bob","id":"11111111-1111-1111-1111-111111111111"}]`))
	}))

	got, err := c.ResolveAgent(context.Background(), "Bob")
	require.NoError(t, err)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", got)
	assert.EqualValues(t, 1, atomic.LoadInt32(&listCalls))
}

func TestResolveAgentNotFound(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"Bob","id":"11111111-1111-1111-1111-111111111111"}]`))
	}))

	_, err := c.ResolveAgent(context.Background(), "bob")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf, "name matching is case-sensitive")
	assert.Equal(t, "bob", nf.Name)
}

func TestTriggerSync(t *testing.T) {
	agentID := "22222222-2222-2222-2222-222222222222"
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orchestrate/"+agentID+"/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello back"}}]}`))
	}))

	res := c.TriggerSync(context.Background(), agentID, "hello", 30*time.Second)
	assert.True(t, res.Success)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, "hello back", res.Response)
	assert.NotEmpty(t, res.FullOutput)
}

// An empty choices list is deliberately a success with an empty response
// string; this pins the upstream leniency.
func TestTriggerSyncEmptyChoices(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))

	res := c.TriggerSync(context.Background(), "22222222-2222-2222-2222-222222222222", "hi", time.Minute)
	assert.True(t, res.Success)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, "", res.Response)
}

func TestTriggerSyncHTTPError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"bad token"}`))
	}))

	res := c.TriggerSync(context.Background(), "22222222-2222-2222-2222-222222222222", "hi", time.Minute)
	assert.False(t, res.Success)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, res.Body, "bad token")
	assert.NotEmpty(t, res.Error)
}

func TestTriggerAsync(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orchestrate/runs", r.URL.Path)
		w.Write([]byte(`{"run_id":"r1","thread_id":"t1"}`))
	}))

	res := c.TriggerAsync(context.Background(), "22222222-2222-2222-2222-222222222222", "go")
	assert.True(t, res.Success)
	assert.Equal(t, StatusStarted, res.Status)
	assert.Equal(t, "r1", res.RunID)
	assert.Equal(t, "t1", res.ThreadID)
	assert.Empty(t, res.TaskID)
}

func TestPollStatusCompletedFirstQuery(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v1/orchestrate/runs/r1", r.URL.Path)
		w.Write([]byte(`{"status":"completed","output":{"text":"done"}}`))
	}))

	// timeout <= 0 must still allow the first query
	res := c.PollStatus(context.Background(), "r1", 0, time.Second)
	assert.True(t, res.Success)
	assert.Equal(t, StatusCompleted, res.Status)
	assert.Equal(t, "done", res.Response)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestPollStatusFailedRun(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"failed","error":"model exploded"}`))
	}))

	res := c.PollStatus(context.Background(), "r1", time.Minute, time.Second)
	assert.False(t, res.Success)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "model exploded", res.Error)
}

func TestPollStatusTimeout(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"status":"running"}`))
	}))

	clk := &fakeClock{t: time.Unix(1000, 0)}
	c.now = clk.now
	c.sleep = clk.sleep

	// Queries land at t=0 and t=2; the t=4 elapsed check fails before a third.
	res := c.PollStatus(context.Background(), "r1", 3*time.Second, 2*time.Second)
	assert.False(t, res.Success)
	assert.Equal(t, StatusTimeout, res.Status)
	assert.Equal(t, "r1", res.RunID)
	assert.Contains(t, res.Error, "3 seconds")
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestListAgents(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"Bob","id":"b-1","description":"helper"},{"name":"Eve","id":"e-1"}]`))
	}))

	res := c.ListAgents(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, 2, res.AgentCount)
	assert.Equal(t, "Bob", res.Agents[0].Name)
	assert.Equal(t, "helper", res.Agents[0].Description)
}

func TestRunStatus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"running","agent":{"name":"Bob"}}`))
	}))

	res := c.RunStatus(context.Background(), "r9")
	assert.True(t, res.Success)
	assert.Equal(t, "r9", res.RunID)
	assert.JSONEq(t, `{"status":"running","agent":{"name":"Bob"}}`, string(res.Data))
}

func TestRunStatusHTTPError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"no such run"}`))
	}))

	res := c.RunStatus(context.Background(), "missing")
	assert.False(t, res.Success)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "missing", res.RunID)
}

func TestResultSuccessMatchesStatus(t *testing.T) {
	completed := Completed("Bob", "", nil)
	started := Started("Bob", RunHandle{RunID: "r1"})
	failed := Failed("Bob", &NotFoundError{Name: "Bob"})
	timedOut := TimedOut("r1", 5*time.Second)

	assert.True(t, completed.Success)
	assert.True(t, started.Success)
	assert.False(t, failed.Success)
	assert.False(t, timedOut.Success)
	assert.NotEmpty(t, failed.Error)
	assert.NotEmpty(t, timedOut.Error)
}

func TestIsAgentID(t *testing.T) {
	assert.True(t, isAgentID("11111111-1111-1111-1111-111111111111"))
	assert.False(t, isAgentID("Bob"))
	assert.False(t, isAgentID("11111111-1111-1111-1111-11111111111"))  // 35 chars
	assert.False(t, isAgentID("1111111111111-1111-1111-111111111111")) // three hyphens
}
