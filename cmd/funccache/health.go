package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/funccache/cache"
	"github.com/jonwraymond/funccache/health"
)

func newAggregator(a *app, timeout time.Duration) *health.Aggregator {
	agg := health.NewAggregator(health.AggregatorConfig{Timeout: timeout})
	agg.Register("redis", health.NewStoreChecker(a.client, health.StoreCheckerConfig{}))
	agg.Register("circuit", health.NewBreakerChecker(a.breaker))
	return agg
}

func newHealthCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the Redis deployment and print a JSON report",
		Long: `Ping Redis, load the get and put scripts and print the result as JSON.
The command fails when the overall status is unhealthy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), func(*cache.Cache) error {
				results := newAggregator(a, timeout).CheckAll(cmd.Context())
				resp := health.NewResponse(results)

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(resp); err != nil {
					return err
				}
				if status := health.OverallStatus(results); status == health.StatusUnhealthy {
					return fmt.Errorf("funccache: %s", status)
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per-check timeout")
	return cmd
}
