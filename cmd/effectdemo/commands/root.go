// Package commands implements the effectdemo command line.
package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/on-the-ground/effect_ive_engine/effects/config"
	"github.com/on-the-ground/effect_ive_engine/effects/log"
	"github.com/on-the-ground/effect_ive_engine/internal/app"
)

type rootOptions struct {
	logLevel   string
	database   string
	sqlitePath string

	registry *prometheus.Registry
	appCtx   *app.App
	cancel   context.CancelFunc
}

func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the command tree. Configuration comes from the
// environment; flags that are set override it.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "effectdemo",
		Short:        "Run effect programs against in-process infrastructure",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.start(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.stop()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&opts.database, "db", "", "database backend: memdb or sqlite")
	flags.StringVar(&opts.sqlitePath, "sqlite-path", "", "sqlite file used by --db sqlite")

	root.AddCommand(runCmd(opts), tagsCmd(opts), scenariosCmd())
	return root
}

func (o *rootOptions) start(cmd *cobra.Command) error {
	cfg, err := config.LoadEnv()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		if cfg.LogLevel, err = log.ParseLogLevel(o.logLevel); err != nil {
			return err
		}
	}
	if flags.Changed("db") {
		cfg.DatabaseBackend = o.database
	}
	if flags.Changed("sqlite-path") {
		cfg.SQLitePath = o.sqlitePath
	}

	logger, err := log.NewZapLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	o.registry = prometheus.NewRegistry()
	o.appCtx, err = app.New(ctx, cfg, logger, o.registry)
	if err != nil {
		cancel()
		return err
	}
	o.cancel = cancel
	logger.Debug("command started", zap.String("command", cmd.Name()))
	return nil
}

func (o *rootOptions) stop() error {
	if o.appCtx == nil {
		return nil
	}
	err := o.appCtx.Close()
	log.Sync(o.appCtx.Logger)
	o.cancel()
	o.appCtx = nil
	return err
}
