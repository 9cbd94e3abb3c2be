package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/funccache/cache"
	"github.com/jonwraymond/funccache/keyslot"
)

func newKeysCmd(a *app) *cobra.Command {
	var id identityFlags
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Print the key pair and cluster slots of a cache",
		Long: `Print the index and values keys used by the configured cache, their
Redis Cluster hash slots and the SCAN pattern covering every pair.

Per-function variants need --func (and --code when the function identity
carries a code payload).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), func(c *cache.Cache) error {
				pair, err := c.Pair(id.identity())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "index:   %s (slot %d)\n", pair.Index, keyslot.Slot(pair.Index))
				fmt.Fprintf(out, "values:  %s (slot %d)\n", pair.Values, keyslot.Slot(pair.Values))
				fmt.Fprintf(out, "pattern: %s\n", c.Pattern())
				fmt.Fprintf(out, "same slot: %t\n", keyslot.SameSlot(pair.Keys()...))
				return nil
			})
		},
	}
	id.register(cmd)
	return cmd
}
