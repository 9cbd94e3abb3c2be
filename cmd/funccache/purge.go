package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/funccache/cache"
)

func newPurgeCmd(a *app) *cobra.Command {
	var (
		id  identityFlags
		all bool
	)
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete cached results",
		Long: `Delete the key pair of the configured cache, or with --all every pair
the cache instance owns. For per-function variants --all removes the pairs
of every function; without it --func selects one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), func(c *cache.Cache) error {
				var (
					n   int64
					err error
				)
				if all {
					n, err = c.PurgeAll(cmd.Context())
				} else {
					n, err = c.Purge(cmd.Context(), id.identity())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d keys\n", n)
				return nil
			})
		},
	}
	id.register(cmd)
	cmd.Flags().BoolVar(&all, "all", false, "purge every key pair of the cache instance")
	return cmd
}
