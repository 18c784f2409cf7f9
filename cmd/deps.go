package cmd

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	redisad "trustwatch/internal/adapters/redis"
	"trustwatch/internal/adapters/sink"
	"trustwatch/internal/adapters/trustpilot"
	"trustwatch/internal/app"
	mysqlrepo "trustwatch/internal/storage/mysql"
)

// openDB connects, pings and makes sure the schema exists. Every subcommand
// goes through here so a first run against an empty database just works.
func openDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := mysqlrepo.EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	log.Info().Msg("database connection ok")
	return db, nil
}

func buildRunner(db *sql.DB) *app.Runner {
	repo := mysqlrepo.New(db)
	client := trustpilot.New(cfg.SourceBase, cfg.SourceDelay)
	syncSvc := app.NewSyncService(client, repo, log.Logger, app.SyncOptions{
		BatchSize:  cfg.BatchSize,
		MaxPages:   cfg.MaxPages,
		Languages:  cfg.Languages,
		DateFilter: cfg.DateFilter,
	})
	reports := app.NewReportService(repo, log.Logger)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	snk := sink.NewJSON(cfg.ReportsDir, log.Logger)
	return app.NewRunner(syncSvc, reports, repo, snk, cache, log.Logger, cfg.SinkDelay)
}
