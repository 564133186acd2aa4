package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chstore "grocery-forecast-lab/internal/storage/clickhouse"
	"grocery-forecast-lab/internal/storage/migrations"
	pgstore "grocery-forecast-lab/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply PostgreSQL and ClickHouse migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if cfg.PostgresDSN == "" {
			return fmt.Errorf("--postgres-dsn is required")
		}

		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		applied, err := migrations.RunPostgresMigrations(ctx, pool)
		if err != nil {
			return err
		}
		logger.Info("postgres migrations applied", zap.Strings("versions", applied))

		if cfg.ClickhouseDSN == "" {
			logger.Info("no clickhouse DSN, skipping clickhouse migrations")
			return nil
		}

		if err := chstore.EnsureDatabase(ctx, cfg.ClickhouseDSN); err != nil {
			return err
		}
		conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("connect to clickhouse: %w", err)
		}
		defer conn.Close()

		applied, err = migrations.ApplyClickhouse(ctx, conn)
		if err != nil {
			return err
		}
		logger.Info("clickhouse migrations applied", zap.Strings("versions", applied))
		return nil
	},
}
