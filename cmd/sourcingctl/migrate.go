package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chemsource/sourcing/v1/buylist"
	"github.com/chemsource/sourcing/v1/config"
	"github.com/chemsource/sourcing/v1/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func (c *cli) migrateCommand() *cobra.Command {
	var (
		dryRun   bool
		lock     bool
		backup   bool
		deadline time.Duration
	)
	cmd := &cobra.Command{
		Use:   "migrate-buylists",
		Short: "Rewrite legacy buy lists into the company-scoped shape",
		Long: `Scans the buy-list namespace and rewrites every legacy record into the
current shape. Each new record is written before its legacy original is
deleted, so an interrupted run is finished by running it again.

Records without a company name, contact number or email are left in place
and reported for manual review. The run prints a JSON summary and exits
non-zero when any record failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := c.cfg.Migration
			flags := cmd.Flags()
			if flags.Changed("lock") {
				m.Lock = lock
			}
			if flags.Changed("backup") {
				m.Backup = backup
			}
			if flags.Changed("deadline") {
				m.Deadline = deadline
			}
			summary, err := c.migrate(cmd.Context(), m, dryRun)
			if werr := writeJSON(cmd.OutOrStdout(), summary); werr != nil {
				return werr
			}
			if err != nil {
				return err
			}
			if n := len(summary.Failed); n > 0 {
				return fmt.Errorf("%d buy lists failed to migrate", n)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	flags.BoolVar(&lock, "lock", false, "hold the Redis migration lock for the run")
	flags.BoolVar(&backup, "backup", false, "write a MinIO snapshot of the namespace before writing")
	flags.DurationVar(&deadline, "deadline", 0, "stop issuing writes after this long, e.g. 10m")
	return cmd
}

func (c *cli) migrate(ctx context.Context, m config.Migration, dryRun bool) (buylist.Summary, error) {
	if m.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Deadline)
		defer cancel()
	}

	var migrator *buylist.Migrator
	opts := []fx.Option{
		fx.Provide(func(r *metrics.Metrics) buylist.Recorder { return r }),
		fx.Populate(&migrator),
	}
	if m.Lock && !dryRun {
		opts = append(opts, c.redisOption())
	}
	if m.Backup && !dryRun {
		opts = append(opts, c.minioOption())
	}

	stop, err := c.start(ctx, opts...)
	if err != nil {
		return buylist.Summary{DryRun: dryRun}, err
	}
	defer stop()

	summary, err := migrator.Run(ctx, buylist.Options{
		DryRun:  dryRun,
		LockKey: m.LockKey,
		LockTTL: m.LockTTL,
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return summary, fmt.Errorf("migration deadline of %s reached, rerun to continue: %w", m.Deadline, err)
	}
	return summary, err
}
