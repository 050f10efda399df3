package main

import (
	"context"
	"fmt"

	"github.com/chemsource/sourcing/v1/httpapi"
	"github.com/chemsource/sourcing/v1/logger"
	"github.com/chemsource/sourcing/v1/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the metrics server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	app := fx.New(c.options(true,
		fx.Supply(c.cfg.HTTP),
		fx.Provide(
			func(l *logger.LoggerClient) httpapi.Logger { return l },
			func(m *metrics.Metrics) httpapi.Metrics { return m },
		),
		httpapi.FXModule,
	))

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	var exitCode int
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		exitCode = sig.ExitCode
	}

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.StopTimeout())
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		return err
	}
	if exitCode != 0 {
		return fmt.Errorf("server exited with code %d", exitCode)
	}
	return nil
}
