package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cnc-capture/capture/internal/config"
	"github.com/cnc-capture/capture/internal/store"
	"github.com/cnc-capture/capture/pkg/log"
)

// seedCmd loads the demo fixtures: one operator, one machine and one open
// job. Safe to run repeatedly, existing rows are left untouched.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the db with demo data",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			zap.S().Fatalw("reading configuration", "error", err)
		}

		logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
		if err != nil {
			logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}

		logger := log.InitLog(logLvl)
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		defer zap.S().Info("Db seeded")

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := s.InitialMigration(); err != nil {
			zap.S().Fatalw("running initial migration", "error", err)
		}

		if err := s.Seed(); err != nil {
			zap.S().Fatalw("seeding demo data", "error", err)
		}

		return nil
	},
}
