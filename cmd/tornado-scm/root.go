package main

import (
	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tornado-scm",
		Short: "Smart caching manager for Tornado tool commands",
		Long: `tornado-scm runs the Tornado command API. Tool executions are resolved
through a content-addressed cache with TTL expiry and LRU eviction.

Common usage:
  tornado-scm serve --config tornado.yaml       # Start the API
  tornado-scm key nmap_scan.sim '{"target":"10.0.0.1"}'
  tornado-scm token alice pentester --ttl 1h    # Mint a bearer token`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newKeyCmd(), newTokenCmd())
	return root
}
