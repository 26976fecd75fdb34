package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cjrt007/Tornado.Ai/cache"
)

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <toolId> [params-json]",
		Short: "Print the cache key for a tool id and parameters",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var params any
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
					return fmt.Errorf("parse params: %w", err)
				}
			}
			key, err := cache.KeyFor(args[0], params)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
}
