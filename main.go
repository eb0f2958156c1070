package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ddhiman-alt/nearpaws/internal/api"
	"github.com/ddhiman-alt/nearpaws/internal/api/handlers"
	"github.com/ddhiman-alt/nearpaws/internal/api/middleware"
	"github.com/ddhiman-alt/nearpaws/internal/cache"
	"github.com/ddhiman-alt/nearpaws/internal/config"
	"github.com/ddhiman-alt/nearpaws/internal/db"
	"github.com/ddhiman-alt/nearpaws/internal/email"
	"github.com/ddhiman-alt/nearpaws/internal/logging"
	"github.com/ddhiman-alt/nearpaws/internal/notify"
	"github.com/ddhiman-alt/nearpaws/internal/seed"
	"github.com/ddhiman-alt/nearpaws/internal/services"
	"github.com/ddhiman-alt/nearpaws/internal/store"
	"github.com/ddhiman-alt/nearpaws/internal/store/mongostore"
	"github.com/ddhiman-alt/nearpaws/internal/tasks"
)

const (
	modeAPI  = "api"
	modeBG   = "bg"
	modeAll  = "all"
	modeSeed = "seed"

	shutdownTimeout = 15 * time.Second
)

var runMode = flag.String("m", modeAll, "Run mode: 'api', 'bg' (background tasks), 'all' (default), 'seed' (reset demo data)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*runMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	switch cfg.RunMode {
	case modeAPI, modeBG, modeAll, modeSeed:
	default:
		return fmt.Errorf("invalid run mode: %s", cfg.RunMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			logger.Error("error disconnecting from MongoDB", logging.Err(err))
		}
	}()

	if err := db.EnsureIndexes(ctx, mongoDb); err != nil {
		// Nearby searches fall back to the plain listing without the 2dsphere index.
		logger.Warn("failed to ensure indexes", logging.Err(err))
	}
	stores := mongostore.New(mongoDb)

	if cfg.RunMode == modeSeed {
		return runSeed(ctx, cfg, stores, logger)
	}

	rdb, err := cache.ConnectRedis(ctx, cache.Options(cfg), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.DisconnectRedis(rdb, logger); err != nil {
			logger.Error("error disconnecting from Redis", logging.Err(err))
		}
	}()

	taskClient := tasks.NewClient(cfg)
	defer taskClient.Close()

	bus := notify.NewBus(logger)
	bus.Subscribe(notify.NewEmailNotifier(stores.Users, taskClient).Handle)
	bus.Subscribe(notify.NewRedisPublisher(rdb, cfg.NotifyChannel).Handle)

	svc := api.Services{
		Pets:      services.NewPetService(stores.Pets, logger),
		Adoptions: services.NewAdoptionService(stores.Pets, stores.Adoptions, bus, logger),
		Users:     services.NewUserService(stores.Users, logger),
	}

	var wg sync.WaitGroup
	// Buffered so the service API never blocks on a second request.
	shutdownChan := make(chan struct{}, 1)
	serveErrs := make(chan error, 3)

	serviceSrv := &http.Server{
		Addr:              ":" + cfg.ServiceApiPort,
		Handler:           api.SetupServiceRouter(mockEmailReader(rdb), shutdownChan, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	listen(&wg, serviceSrv, "service API", serveErrs, logger)

	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server

	logger.Info("starting application", "mode", cfg.RunMode)

	if cfg.RunMode == modeAPI || cfg.RunMode == modeAll {
		rateLimiter := middleware.NewRateLimiterMiddleware(cfg, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			rateLimiter.Run(ctx)
		}()

		mainApiSrv = &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           api.SetupRouter(cfg, svc, rateLimiter, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		listen(&wg, mainApiSrv, "main API", serveErrs, logger)
	}

	if cfg.RunMode == modeBG || cfg.RunMode == modeAll {
		processor := tasks.NewTaskProcessor(cfg, buildEmailSender(cfg, rdb, logger))
		var mux *asynq.ServeMux
		backgroundTaskSrv, mux = tasks.SetupServer(cfg, processor)
		if err := backgroundTaskSrv.Start(mux); err != nil {
			return fmt.Errorf("failed to start background task server: %w", err)
		}
		logger.Info("background task server started")
	}

	select {
	case <-ctx.Done():
		logger.Info("received signal, shutting down gracefully")
	case <-shutdownChan:
		logger.Info("shutdown requested via service API, shutting down gracefully")
	case err := <-serveErrs:
		logger.Error("server failed, shutting down", logging.Err(err))
	}
	stop()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := serviceSrv.Shutdown(ctxShutdown); err != nil {
		logger.Error("service API shutdown error", logging.Err(err))
	}
	if mainApiSrv != nil {
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			logger.Error("main API shutdown error", logging.Err(err))
		}
	}
	if backgroundTaskSrv != nil {
		backgroundTaskSrv.Shutdown()
		logger.Info("background task server stopped")
	}

	wg.Wait()
	logger.Info("server gracefully stopped")
	return nil
}

// listen serves srv until it is shut down. Any other error is reported on errs.
func listen(wg *sync.WaitGroup, srv *http.Server, name string, errs chan<- error, logger *slog.Logger) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info(name+" listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("%s: %w", name, err)
			return
		}
		logger.Info(name + " stopped")
	}()
}

// mockEmailReader keeps a nil client from becoming a non-nil interface.
func mockEmailReader(rdb *redis.Client) handlers.MockEmailReader {
	if rdb == nil {
		return nil
	}
	return rdb
}

// buildEmailSender picks the primary sender and optionally tees every message
// into the LOG_EMAILS file.
func buildEmailSender(cfg *config.Config, rdb *redis.Client, logger *slog.Logger) email.Sender {
	var primary email.Sender
	if cfg.MockServices {
		logger.Info("MOCK_SERVICES enabled: using Redis email sender")
		primary = email.NewRedisSender(rdb, cfg.SmtpFromAddress)
	} else {
		primary = email.NewSMTPSender(cfg)
	}

	composite := email.NewCompositeEmailSender(primary)

	if cfg.LogEmailsPath != "" {
		fileSender, err := email.NewFileEmailSender(cfg.LogEmailsPath)
		if err != nil {
			logger.Warn("failed to initialize file email sender, proceeding without it",
				"path", cfg.LogEmailsPath, logging.Err(err))
		} else {
			composite.AddSender(fileSender)
			logger.Info("file email logger enabled", "path", cfg.LogEmailsPath)
		}
	}
	return composite
}

func runSeed(ctx context.Context, cfg *config.Config, stores store.Stores, logger *slog.Logger) error {
	res, err := seed.NewSeeder(stores, cfg.JwtSecret, cfg.JwtTTL, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	fmt.Printf("Seeded %d pets for %s\n", len(res.Pets), res.User.Email)
	fmt.Printf("Bearer token:\n%s\n", res.Token)
	return nil
}
