// Package orccli obtains agent listings and export artifacts by shelling out
// to the orchestrate CLI instead of calling the HTTP API. It exists for
// contexts where the HTTP path does not carry a valid session; it is a
// fallback with weaker guarantees, since it parses the tool's human-readable
// table output.
package orccli

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"superbob/internal/wxo"
)

const commandTimeout = 30 * time.Second

// Wrapper invokes the orchestrate CLI binary.
type Wrapper struct {
	Bin string

	// run is swappable for tests.
	run func(ctx context.Context, bin string, args ...string) (stdout, stderr string, err error)
}

func New() *Wrapper {
	return &Wrapper{Bin: "orchestrate", run: runCommand}
}

// ListAgents runs `orchestrate agents list` and parses its table output.
func (w *Wrapper) ListAgents(ctx context.Context) wxo.Result {
	stdout, stderr, err := w.run(ctx, w.Bin, "agents", "list")
	if err != nil {
		return commandFailed(stderr, err)
	}
	agents := ParseAgentTable(stdout)
	return wxo.Result{Success: true, AgentCount: len(agents), Agents: agents}
}

// ExportAgent runs `orchestrate agents export -n NAME -o PATH`.
func (w *Wrapper) ExportAgent(ctx context.Context, name, outPath string) wxo.Result {
	stdout, stderr, err := w.run(ctx, w.Bin, "agents", "export", "-n", name, "-o", outPath)
	if err != nil {
		r := commandFailed(stderr, err)
		r.AgentName = name
		return r
	}
	return wxo.Result{
		Success:    true,
		AgentName:  name,
		OutputPath: outPath,
		Message:    strings.TrimSpace(stdout),
	}
}

// ParseAgentTable extracts agent rows from the CLI's box-drawing table. Rows
// before the header separator and the footer border are skipped; cells are
// split on the vertical bar with no escaping, so delimiter-like characters
// inside a cell mis-split; missing trailing columns decode as empty strings.
// The column order (name, display name, description, llm) is positional and
// best effort, not a contract the external tool guarantees.
func ParseAgentTable(out string) []wxo.AgentSummary {
	var agents []wxo.AgentSummary
	inData := false
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if strings.HasPrefix(line, "┡") {
			inData = true
			continue
		}
		if strings.HasPrefix(line, "└") {
			break
		}
		if !inData || !strings.Contains(line, "│") {
			continue
		}
		var parts []string
		for _, p := range strings.Split(line, "│") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		row := wxo.AgentSummary{Name: parts[0]}
		if len(parts) > 1 {
			row.DisplayName = parts[1]
		}
		if len(parts) > 2 {
			row.Description = parts[2]
		}
		if len(parts) > 3 {
			row.LLM = parts[3]
		}
		agents = append(agents, row)
	}
	return agents
}

func commandFailed(stderr string, err error) wxo.Result {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = err.Error()
	}
	return wxo.Failed("", errors.New(msg))
}

func runCommand(ctx context.Context, bin string, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
