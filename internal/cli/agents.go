package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"superbob/internal/creds"
	"superbob/internal/journal"
	"superbob/internal/orccli"
	"superbob/internal/wxo"
)

func listCmd() *cobra.Command {
	var viaCLI bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if viaCLI {
				return printResult(orccli.New().ListAgents(cmd.Context()))
			}
			client, err := newClient()
			if err != nil {
				return printResult(wxo.Failed("", err))
			}
			return printResult(client.ListAgents(cmd.Context()))
		},
	}
	cmd.Flags().BoolVar(&viaCLI, "via-cli", false, "list by parsing 'orchestrate agents list' output instead of the HTTP API")
	return cmd
}

func triggerCmd() *cobra.Command {
	var noWait bool
	var timeout int
	cmd := &cobra.Command{
		Use:   "trigger <agent_name> <message>",
		Short: "Send a message to an agent and print the result envelope",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, message := args[0], args[1]
			ctx := cmd.Context()

			client, err := newClient()
			if err != nil {
				return printResult(wxo.Failed(agent, err))
			}

			mode, initial := "sync", "running"
			if noWait {
				mode, initial = "async", wxo.StatusStarted
			}
			j, entryID := startJournal(ctx, journal.Entry{
				Agent:  agent,
				Env:    environmentName(),
				Mode:   mode,
				Status: initial,
			})

			res := client.Trigger(ctx, agent, message, !noWait, time.Duration(timeout)*time.Second)

			if j != nil {
				defer j.Close()
				rb, _ := json.Marshal(res)
				if err := j.Finish(ctx, entryID, res.Status, res.RunID, rb); err != nil {
					slog.Warn("journal finish failed", "error", err)
				}
			}
			return printResult(res)
		},
	}
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "start the run without waiting for a reply")
	cmd.Flags().IntVar(&timeout, "timeout", 120, "seconds to wait for a synchronous reply")
	return cmd
}

func statusCmd() *cobra.Command {
	var wait bool
	var timeout, interval int
	cmd := &cobra.Command{
		Use:   "status <run_id>",
		Short: "Query a run's status, optionally polling until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				res := wxo.Failed("", err)
				res.RunID = args[0]
				return printResult(res)
			}
			if wait {
				return printResult(client.PollStatus(cmd.Context(), args[0],
					time.Duration(timeout)*time.Second, time.Duration(interval)*time.Second))
			}
			return printResult(client.RunStatus(cmd.Context(), args[0]))
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "poll until the run completes, fails or the timeout passes")
	cmd.Flags().IntVar(&timeout, "timeout", 60, "polling deadline in seconds (with --wait)")
	cmd.Flags().IntVar(&interval, "interval", 2, "seconds between polls (with --wait)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <agent_name> <output_path>",
		Short: "Export an agent definition via the orchestrate CLI",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(orccli.New().ExportAgent(cmd.Context(), args[0], args[1]))
		},
	}
	return cmd
}

// startJournal opens the journal and records the submission when a DSN is
// configured. Journal trouble is logged and otherwise ignored; it never
// affects the trigger result.
func startJournal(ctx context.Context, e journal.Entry) (*journal.Journal, string) {
	if rf.DSN == "" {
		return nil, ""
	}
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	j, err := journal.Open(openCtx, rf.DSN)
	if err != nil {
		slog.Warn("trigger journal unavailable", "error", err)
		return nil, ""
	}
	id, err := j.Start(ctx, e)
	if err != nil {
		slog.Warn("journal submission failed", "error", err)
		j.Close()
		return nil, ""
	}
	return j, id
}

func environmentName() string {
	if env := os.Getenv("WXO_ENVIRONMENT"); env != "" {
		return env
	}
	return creds.DefaultEnvironment
}
