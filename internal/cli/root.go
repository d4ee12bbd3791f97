package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"superbob/internal/creds"
	"superbob/internal/wxo"
)

type rootFlags struct {
	DSN     string
	Verbose bool
}

var rf rootFlags

func Execute() error {
	// Same opportunistic .env loading the agent host does; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "superbob",
		Short: "Trigger and inspect watsonx Orchestrate agents",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(rf.Verbose)
		},
	}

	rootCmd.PersistentFlags().StringVar(&rf.DSN, "dsn", os.Getenv("DATABASE_URL"), "PostgreSQL DSN for the trigger journal (defaults to DATABASE_URL, optional)")
	rootCmd.PersistentFlags().BoolVarP(&rf.Verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(triggerCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(dbCmd())

	return rootCmd.Execute()
}

// Diagnostics go to stderr; stdout carries only the JSON result envelope.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		TimeFormat: time.Kitchen,
		Level:      level,
	})
	slog.SetDefault(slog.New(handler))
}

// newClient wires the credential manager into a platform client.
func newClient() (*wxo.Client, error) {
	mgr, err := creds.FromEnv()
	if err != nil {
		return nil, err
	}
	return wxo.FromEnv(mgr)
}

// printResult writes the envelope to stdout. Operation failures still exit 0;
// only usage errors use a non-zero exit code.
func printResult(res wxo.Result) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
