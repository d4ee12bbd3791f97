package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"superbob/internal/wxo"
)

const defaultTriggerTimeout = 60 * time.Second

// Triggerer is the slice of the platform client the tools need.
type Triggerer interface {
	ListAgents(ctx context.Context) wxo.Result
	Trigger(ctx context.Context, agent, input string, wait bool, timeout time.Duration) wxo.Result
	RunStatus(ctx context.Context, runID string) wxo.Result
}

// RegisterWXO adds the agent trigger tools to the registry.
func RegisterWXO(r *Registry, client Triggerer) {
	r.Register(Definition{
		Name:        "trigger_wxo_agent",
		DisplayName: "Trigger WXO Agent",
		Description: "Trigger a watsonx Orchestrate agent by name and send it a message. Returns the agent's response. Use this to delegate tasks to specialized agents in your watsonx Orchestrate environment.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"agent_name":{"type":"string"},"user_input":{"type":"string"},"wait_for_response":{"type":"boolean","default":true},"timeout":{"type":"integer","default":60}},"required":["agent_name","user_input"]}`),
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				AgentName       string `json:"agent_name"`
				UserInput       string `json:"user_input"`
				WaitForResponse *bool  `json:"wait_for_response"`
				Timeout         int    `json:"timeout"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.AgentName == "" || in.UserInput == "" {
				return nil, fmt.Errorf("missing agent_name or user_input")
			}
			wait := in.WaitForResponse == nil || *in.WaitForResponse
			timeout := defaultTriggerTimeout
			if in.Timeout > 0 {
				timeout = time.Duration(in.Timeout) * time.Second
			}
			return client.Trigger(ctx, in.AgentName, in.UserInput, wait, timeout), nil
		},
	})

	r.Register(Definition{
		Name:        "list_wxo_agents",
		DisplayName: "List WXO Agents",
		Description: "List all available agents in your watsonx Orchestrate environment. Returns agent names, descriptions, and capabilities.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			return client.ListAgents(ctx), nil
		},
	})

	r.Register(Definition{
		Name:        "get_wxo_agent_status",
		DisplayName: "Get WXO Agent Run Status",
		Description: "Check the status of a running agent by its run ID. Use this to monitor long-running agent tasks.",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"run_id":{"type":"string"}},"required":["run_id"]}`),
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				RunID string `json:"run_id"`
			}
			if err := json.Unmarshal(args, &in); err != nil || in.RunID == "" {
				return nil, fmt.Errorf("missing run_id")
			}
			return client.RunStatus(ctx, in.RunID), nil
		},
	})
}
