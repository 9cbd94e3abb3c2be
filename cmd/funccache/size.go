package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/funccache/cache"
)

func newSizeCmd(a *app) *cobra.Command {
	var id identityFlags
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Print the number of cached results in a key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), func(c *cache.Cache) error {
				n, err := c.Size(cmd.Context(), id.identity())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), n)
				return nil
			})
		},
	}
	id.register(cmd)
	return cmd
}
