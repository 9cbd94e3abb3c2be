package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/funccache/cache"
)

func newFingerprintCmd(a *app) *cobra.Command {
	var (
		id     identityFlags
		args   string
		kwargs string
	)
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the result member for a call",
		Long: `Print the hex digest under which a call's result is stored.

Arguments are given as JSON: --args takes an array of positional arguments
and --kwargs an object of keyword arguments. Numbers are kept as written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fn := id.identity()
			if fn == nil {
				return errors.New("funccache: --func is required")
			}
			var positional []any
			if err := decodeJSON(args, &positional); err != nil {
				return fmt.Errorf("--args: %w", err)
			}
			var keyword map[string]any
			if err := decodeJSON(kwargs, &keyword); err != nil {
				return fmt.Errorf("--kwargs: %w", err)
			}
			return a.run(cmd.Context(), func(c *cache.Cache) error {
				member, err := c.Fingerprint(*fn, positional, keyword)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(member))
				return nil
			})
		},
	}
	id.register(cmd)
	cmd.Flags().StringVar(&args, "args", "", "positional arguments as a JSON array")
	cmd.Flags().StringVar(&kwargs, "kwargs", "", "keyword arguments as a JSON object")
	return cmd
}

func decodeJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	return dec.Decode(v)
}
