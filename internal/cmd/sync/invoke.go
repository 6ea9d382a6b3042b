package sync

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/turbolytics/curator/internal/config"
	"github.com/turbolytics/curator/internal/syncer"
)

func newInvokeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Invokes one full synchronization. Entities are fetched from the source and upserted into the catalog.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := config.NewCuratorFromFile(configPath)
			if err != nil {
				return err
			}

			logger, err := newLogger(c.Global.Logger.Level)
			if err != nil {
				return err
			}
			defer logger.Sync()
			l := logger.Named("curator.sync.invoke")

			l.Info("starting sync!",
				zap.String("name", c.Sync.Name),
				zap.String("source", c.Sync.Source.Host))

			s, err := config.InitializeSyncer(c, l)
			if err != nil {
				return err
			}

			if c.Sync.StatusAddr != "" {
				srv := syncer.NewServer(l.Named("server"), s)
				go srv.Start(ctx, c.Sync.StatusAddr)
			}

			report, err := s.Run(ctx)
			if err != nil {
				return err
			}

			l.Info("sync complete", zap.Any("report", report))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.MarkFlagRequired("config")

	return cmd
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
