package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpserver "trustwatch/internal/adapters/http_server"
	"trustwatch/internal/adapters/observability"
	redisad "trustwatch/internal/adapters/redis"
	"trustwatch/internal/app"
	mysqlrepo "trustwatch/internal/storage/mysql"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		observability.Serve()

		repo := mysqlrepo.New(db)
		cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		reports := app.NewReportService(repo, log.Logger)
		q := app.NewQueryService(repo, reports, cache, cfg.CacheTTL)

		srv := httpserver.New()
		reg := observability.InitRegistry()
		srv.Mount("/metrics", observability.MetricsHandler(reg))
		srv.MountHandlers(&httpserver.Handlers{Q: q})

		httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutCtx)
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
