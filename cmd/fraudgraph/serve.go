package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/fraudgraph/cmd/fraudgraph/internal"
	"github.com/zero-day-ai/fraudgraph/internal/api"
	"github.com/zero-day-ai/fraudgraph/internal/observability"
)

var serveAddress string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API. The graph must be reachable and healthy before the
server starts listening. SIGINT or SIGTERM drains in-flight requests for up
to api.shutdown_timeout, then closes the driver.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "Listen address (overrides api.address)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	if status := rt.client.Health(ctx); !status.IsHealthy() {
		return internal.NewCLIError(internal.ExitDatabaseError,
			fmt.Sprintf("graph is %s: %s", status.State, status.Message))
	}

	apiCfg := rt.cfg.API
	if serveAddress != "" {
		apiCfg.Address = serveAddress
	}

	opts := []api.Option{
		api.WithLogger(rt.logger),
		api.WithEngine(rt.engine()),
		api.WithMeter(rt.metrics.Meter(observability.MeterAPI)),
	}
	if rt.metrics.Enabled() {
		opts = append(opts, api.WithMetricsHandler(rt.cfg.Metrics.Path, rt.metrics.Handler()))
	}

	srv, err := api.New(apiCfg, rt.exec, rt.client, opts...)
	if err != nil {
		return err
	}

	rt.logger.InfoContext(ctx, "starting fraudgraph", "address", apiCfg.Address,
		"raw_queries", apiCfg.AllowRawQueries, "metrics", rt.metrics.Enabled())
	return srv.ListenAndServe(ctx)
}
