package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-crud-api/internal/config"
	"github.com/BuzzLyutic/task-crud-api/internal/logger"
)

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := openStorage(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	if err := store.migrate(cmd.Context()); err != nil {
		return err
	}
	log.Info("Schema is up to date", zap.String("driver", cfg.StorageDriver))
	return nil
}
