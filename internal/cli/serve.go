package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"superbob/internal/tools"
	"superbob/internal/wxo"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agent tools over JSON-RPC (tools/list, tools/call)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				if p := os.Getenv("PORT"); p != "" {
					addr = ":" + p
				} else {
					addr = ":8080"
				}
			}

			client, err := newClient()
			if err != nil {
				return err
			}
			reg := tools.NewRegistry()
			tools.RegisterWXO(reg, client)

			mux := http.NewServeMux()
			mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
			mux.Handle("/tools", tools.NewServer(reg))

			fmt.Fprintln(os.Stderr, "listening on", addr)
			return http.ListenAndServe(addr, mux)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen addr (default :8080, or :$PORT)")
	return cmd
}

// interface check: the platform client backs the registered tools
var _ tools.Triggerer = (*wxo.Client)(nil)
