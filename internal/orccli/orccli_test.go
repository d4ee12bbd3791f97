package orccli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTable = `                 Agents
┏━━━━━━┳━━━━━━━━━━┳━━━━━━━━━━━━━━┳━━━━━━━━┓
┃ Name ┃ Display  ┃ Description  ┃ LLM    ┃
┡━━━━━━╇━━━━━━━━━━╇━━━━━━━━━━━━━━╇━━━━━━━━┩
│ Bob  │ SuperBob │ does things  │ granite │
│ Eve  │ E        │              │        │
└──────┴──────────┴──────────────┴────────┘
`

func TestParseAgentTable(t *testing.T) {
	agents := ParseAgentTable(sampleTable)
	require.Len(t, agents, 2)

	assert.Equal(t, "Bob", agents[0].Name)
	assert.Equal(t, "SuperBob", agents[0].DisplayName)
	assert.Equal(t, "does things", agents[0].Description)
	assert.Equal(t, "granite", agents[0].LLM)

	// missing trailing cells decode as empty strings
	assert.Equal(t, "Eve", agents[1].Name)
	assert.Equal(t, "E", agents[1].DisplayName)
	assert.Empty(t, agents[1].Description)
	assert.Empty(t, agents[1].LLM)
}

func TestParseAgentTableNoDataRows(t *testing.T) {
	out := "┏━━┓\n┃ Name ┃\n┡━━┩\n└──┘\n"
	assert.Empty(t, ParseAgentTable(out))
}

func TestParseAgentTableIgnoresPreamble(t *testing.T) {
	// rows before the header separator are never parsed, even with delimiters
	out := "│ not │ data │\n┡━━┩\n│ Real │ row │\n└──┘\n"
	agents := ParseAgentTable(out)
	require.Len(t, agents, 1)
	assert.Equal(t, "Real", agents[0].Name)
}

func TestListAgents(t *testing.T) {
	w := New()
	w.run = func(ctx context.Context, bin string, args ...string) (string, string, error) {
		assert.Equal(t, "orchestrate", bin)
		assert.Equal(t, []string{"agents", "list"}, args)
		return sampleTable, "", nil
	}

	res := w.ListAgents(context.Background())
	require.True(t, res.Success)
	assert.Equal(t, 2, res.AgentCount)
}

func TestListAgentsCommandError(t *testing.T) {
	w := New()
	w.run = func(ctx context.Context, bin string, args ...string) (string, string, error) {
		return "", "not logged in\n", errors.New("exit status 1")
	}

	res := w.ListAgents(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "not logged in", res.Error)
}

func TestExportAgent(t *testing.T) {
	w := New()
	w.run = func(ctx context.Context, bin string, args ...string) (string, string, error) {
		assert.Equal(t, []string{"agents", "export", "-n", "Bob", "-o", "/tmp/bob.zip"}, args)
		return "exported\n", "", nil
	}

	res := w.ExportAgent(context.Background(), "Bob", "/tmp/bob.zip")
	require.True(t, res.Success)
	assert.Equal(t, "Bob", res.AgentName)
	assert.Equal(t, "/tmp/bob.zip", res.OutputPath)
	assert.Equal(t, "exported", res.Message)
}
