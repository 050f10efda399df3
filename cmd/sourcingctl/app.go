package main

import (
	"context"

	"github.com/chemsource/sourcing/v1/buylist"
	"github.com/chemsource/sourcing/v1/config"
	"github.com/chemsource/sourcing/v1/logger"
	"github.com/chemsource/sourcing/v1/metrics"
	"github.com/chemsource/sourcing/v1/minio"
	"github.com/chemsource/sourcing/v1/qdrant"
	"github.com/chemsource/sourcing/v1/redis"
	"github.com/chemsource/sourcing/v1/sourcing"
	"github.com/chemsource/sourcing/v1/tracer"
	"github.com/chemsource/sourcing/v1/vectordb"
	"github.com/chemsource/sourcing/v1/vectordb/memory"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// options assembles the application graph shared by every command. The
// metrics server only runs for long-lived commands.
func (c *cli) options(serving bool, extra ...fx.Option) fx.Option {
	cfg := c.cfg
	if !serving {
		cfg.Metrics.Address = ""
	}

	fxLogger := fx.NopLogger
	if serving {
		fxLogger = fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap}
		})
	}

	return fx.Options(
		fxLogger,
		fx.Supply(cfg.Logger, cfg.Sourcing, cfg.Tracer, cfg.Metrics),
		logger.FXModule,
		tracer.FXModule,
		metrics.FXModule,
		fx.Provide(
			func(l *logger.LoggerClient) sourcing.Logger { return l },
			func(l *logger.LoggerClient) tracer.Logger { return l },
			func(l *logger.LoggerClient) metrics.Logger { return l },
			func(t *tracer.Tracer) sourcing.Tracer { return t },
		),
		c.storeOption(cfg),
		fx.Decorate(func(s vectordb.Store, m *metrics.Metrics) vectordb.Store {
			return vectordb.Observed(s, m)
		}),
		sourcing.FXModule,
		buylist.FXModule,
		fx.Options(extra...),
	)
}

func (c *cli) storeOption(cfg config.Config) fx.Option {
	if c.seeded != nil {
		store := c.seeded
		return fx.Provide(func() vectordb.Store { return store })
	}
	if cfg.Store == config.StoreMemory {
		return fx.Provide(func() vectordb.Store { return memory.NewStore() })
	}
	qcfg := cfg.Qdrant
	return fx.Options(
		fx.Supply(&qcfg),
		fx.Provide(func(l *logger.LoggerClient) qdrant.Logger { return l }),
		qdrant.FXModule,
	)
}

func (c *cli) redisOption() fx.Option {
	return fx.Options(
		fx.Supply(c.cfg.Redis),
		fx.Provide(func(l *logger.LoggerClient) redis.Logger { return l }),
		redis.FXModule,
		fx.Provide(func(l redis.Locker) buylist.Locker { return l }),
	)
}

func (c *cli) minioOption() fx.Option {
	return fx.Options(
		fx.Supply(c.cfg.Minio),
		fx.Provide(func(l *logger.LoggerClient) minio.Logger { return l }),
		minio.FXModule,
		fx.Provide(func(w minio.SnapshotWriter) buylist.Snapshotter { return w }),
	)
}

// start builds and starts a one-shot application. The returned stop runs
// the shutdown hooks even when ctx is already done.
func (c *cli) start(ctx context.Context, extra ...fx.Option) (stop func(), err error) {
	app := fx.New(c.options(false, extra...))

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, err
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.StopTimeout())
		defer cancel()
		_ = app.Stop(stopCtx)
	}, nil
}

// withService runs fn against a started sourcing.Service.
func (c *cli) withService(ctx context.Context, fn func(*sourcing.Service) error) error {
	var svc *sourcing.Service
	stop, err := c.start(ctx, fx.Populate(&svc))
	if err != nil {
		return err
	}
	defer stop()
	return fn(svc)
}
