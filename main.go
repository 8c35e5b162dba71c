package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaidimu/backoffice-search/api"
	"github.com/asaidimu/backoffice-search/backoffice"
	"github.com/asaidimu/backoffice-search/backoffice/collective"
	"github.com/asaidimu/backoffice-search/backoffice/offers"
	"github.com/asaidimu/backoffice-search/config"
	"github.com/asaidimu/backoffice-search/core/events"
	"github.com/asaidimu/backoffice-search/sqlgen"
	"github.com/asaidimu/backoffice-search/sqlstore"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Backoffice search stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, logger.Named("store"))
	if err != nil {
		return err
	}
	defer store.Close()
	if store.Dialect().Name != sqlgen.SQLite.Name && cfg.Database.MaxOpenConns > 0 {
		store.DB().SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	location, err := cfg.Search.Location()
	if err != nil {
		return err
	}

	emitter, err := events.NewEmitter()
	if err != nil {
		return err
	}
	emitter.Subscribe(events.SearchExecuteFailed, func(_ context.Context, ev events.SearchEvent) error {
		logger.Warn("Search failed", zap.String("resource", ev.Resource), zap.String("request_id", ev.RequestID), zap.Stringp("error", ev.Error))
		return nil
	})
	emitter.Subscribe(events.SearchExecuteSuccess, func(_ context.Context, ev events.SearchEvent) error {
		logger.Debug("Search executed", zap.String("resource", ev.Resource), zap.String("request_id", ev.RequestID), zap.Int64p("duration_ms", ev.Duration))
		return nil
	})

	opts := []backoffice.Option{
		backoffice.WithLogger(logger.Named("search")),
		backoffice.WithEmitter(emitter),
		backoffice.WithLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		backoffice.WithLocation(location),
	}
	registry := backoffice.NewRegistry()
	for _, resource := range []backoffice.Resource{
		offers.NewResource(func() time.Time { return time.Now().In(location) }),
		collective.NewResource(),
	} {
		service, err := backoffice.NewSearchService(resource, store, opts...)
		if err != nil {
			return err
		}
		if cfg.Database.Migrate {
			if err := service.Migrate(ctx); err != nil {
				return err
			}
		}
		registry.Register(service)
	}

	gin.SetMode(cfg.Server.Mode)
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           api.NewRouter(registry, logger.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("Backoffice search listening", zap.String("address", server.Addr), zap.Strings("resources", registry.Resources()))
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
