package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"superbob/internal/creds"
	"superbob/internal/tools"
	"superbob/internal/wxo"
)

// superbob-server is the standalone tools endpoint: it exposes the agent
// trigger tools over a minimal JSON-RPC surface for a chat-style agent host.
//
// Endpoints:
// - GET  /healthz
// - POST /tools  (initialize, tools/list, tools/call)
func main() {
	var addr string
	flag.StringVar(&addr, "addr", "", "listen address (default :$PORT or :8080)")
	flag.Parse()

	_ = godotenv.Load()

	if addr == "" {
		if p := os.Getenv("PORT"); p != "" {
			addr = ":" + p
		} else {
			addr = ":8080"
		}
	}

	mgr, err := creds.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	client, err := wxo.FromEnv(mgr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	reg := tools.NewRegistry()
	tools.RegisterWXO(reg, client)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/tools", tools.NewServer(reg))

	fmt.Fprintln(os.Stderr, "listening on", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
