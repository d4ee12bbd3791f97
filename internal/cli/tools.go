package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"superbob/internal/tools"
)

func toolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and call a running tools server",
	}
	cmd.AddCommand(toolsListCmd())
	cmd.AddCommand(toolsCallCmd())
	return cmd
}

func toolsListCmd() *cobra.Command {
	var server string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch tools/list from a tools server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := tools.NewClient(server).ToolsList(cmd.Context())
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(defs, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080/tools", "tools server endpoint")
	return cmd
}

func toolsCallCmd() *cobra.Command {
	var server, argsJSON string
	cmd := &cobra.Command{
		Use:   "call <tool_name>",
		Short: "Invoke one tool on a tools server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if argsJSON == "" {
				argsJSON = "{}"
			}
			if !json.Valid([]byte(argsJSON)) {
				return fmt.Errorf("--args must be a JSON object")
			}
			raw, err := tools.NewClient(server).CallTool(cmd.Context(), args[0], json.RawMessage(argsJSON))
			if err != nil {
				return err
			}
			var pretty any
			if err := json.Unmarshal(raw, &pretty); err == nil {
				if b, err := json.MarshalIndent(pretty, "", "  "); err == nil {
					fmt.Println(string(b))
					return nil
				}
			}
			fmt.Println(string(raw))
			return nil
		},
	}
	cmd.Flags().StringVar(&server, "server", "http://localhost:8080/tools", "tools server endpoint")
	cmd.Flags().StringVar(&argsJSON, "args", "{}", "tool arguments as a JSON object")
	return cmd
}
