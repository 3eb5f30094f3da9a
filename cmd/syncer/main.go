package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"meeting_sync/internal/config"
	"meeting_sync/internal/httpapi"
	"meeting_sync/internal/identity"
	"meeting_sync/internal/normalizer"
	"meeting_sync/internal/publisher"
	"meeting_sync/internal/resilience"
	"meeting_sync/internal/scheduler"
	"meeting_sync/internal/service"
	"meeting_sync/internal/source"
	"meeting_sync/internal/source/teams"
	"meeting_sync/internal/source/zoom"
	"meeting_sync/internal/storage/memory"
	"meeting_sync/internal/storage/postgres"
	rediscache "meeting_sync/internal/storage/redis"
	"meeting_sync/internal/worker"
)

const (
	modeAll       = "all"
	modeAPI       = "api"
	modeWorker    = "worker"
	modeScheduler = "scheduler"
)

type meetingStore interface {
	service.MeetingStore
	scheduler.MeetingLister
}

// stores is the storage backend selected by database.driver.
type stores struct {
	meetings    meetingStore
	runs        service.SyncRunStore
	stats       service.StatsStore
	credentials source.CredentialStore
	users       identity.Directory
	sessions    interface {
		normalizer.SessionStore
		identity.CorrelationStore
	}
	records   normalizer.Stores
	txManager service.TransactionManager
	pool      resilience.Pool
	shutdown  func() error
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	mode := flag.String("mode", modeAll, "components to run: all, api, worker or scheduler")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = setupLogger(cfg.LogLevel)

	if err := run(*mode, cfg, logger); err != nil {
		logger.Error("syncer stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(mode string, cfg *config.Config, logger *slog.Logger) error {
	switch mode {
	case modeAll, modeAPI, modeWorker, modeScheduler:
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	st, err := openStores(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.shutdown()

	var reportCache service.ReportCache
	if cfg.Redis.Enabled() {
		rc, err := rediscache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer rc.Close()
		reportCache = rediscache.New(rc, cfg.Health.CacheTTL)
		logger.Info("connected to redis", "addr", cfg.Redis.Addr)
	}

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:              cfg.RabbitMQ.URL,
		Exchange:         cfg.RabbitMQ.Exchange,
		RoutingKey:       cfg.RabbitMQ.RoutingKey,
		QueueName:        cfg.RabbitMQ.QueueName,
		EventsRoutingKey: cfg.RabbitMQ.EventsRoutingKey,
		EventsQueueName:  cfg.RabbitMQ.EventsQueueName,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	defer rabbitMQ.Close()

	apiPolicy := policy(cfg.Retry)
	sources := []service.Source{
		zoom.New(platformConfig(cfg.Platforms.Zoom, apiPolicy), logger),
		teams.New(platformConfig(cfg.Platforms.Teams, apiPolicy), logger),
	}

	resolver := identity.NewResolver(st.users, st.sessions, identity.Config{
		ScoreThreshold: cfg.Identity.ScoreThreshold,
		CacheTTL:       cfg.Identity.CacheTTL,
	}, logger)

	guard := resilience.NewStorageGuard(st.pool, policy(cfg.StorageRetry), logger)
	pipeline := normalizer.New(resolver, st.records, guard, normalizer.Config{
		LateAfter:       cfg.Sync.LateAfter,
		LeftEarlyBefore: cfg.Sync.LeftEarlyBefore,
		MinPresence:     cfg.Sync.MinPresence,
	}, logger)

	syncService := service.NewSyncService(
		st.meetings,
		st.runs,
		source.NewCredentialResolver(st.credentials),
		sources,
		pipeline,
		st.txManager,
		guard,
		rabbitMQ,
		reportCache,
		logger,
		cfg.Sync,
	)
	health := service.NewHealthChecker(st.meetings, st.runs, st.stats, reportCache, logger, cfg.Health)
	recovery := service.NewRecoveryManager(st.meetings, health, syncService, pipeline, resolver, reportCache, logger)

	logger.Info("starting meeting syncer",
		"mode", mode,
		"driver", cfg.Database.Driver,
		"interval", cfg.Sync.Interval,
		"workers", cfg.Sync.Workers,
	)

	g, gctx := errgroup.WithContext(ctx)

	if mode == modeAll || mode == modeAPI {
		checks := map[string]httpapi.Check{"database": st.pool.PingContext}
		app := httpapi.NewServer(httpapi.Deps{
			Syncer:   syncService,
			Health:   health,
			Recovery: recovery,
			Queue:    rabbitMQ,
			Checks:   checks,
		}, logger).App(httpapi.Config{MetricsPath: cfg.HTTP.MetricsPath})

		g.Go(func() error {
			logger.Info("http server listening", "addr", cfg.HTTP.Addr)
			return app.Listen(cfg.HTTP.Addr)
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		})
	}

	if mode == modeAll || mode == modeWorker {
		w := worker.New(rabbitMQ, syncService, cfg.Sync.Workers, logger)
		g.Go(func() error {
			return ignoreCanceled(w.Run(gctx))
		})
	}

	if mode == modeAll || mode == modeScheduler {
		sched := scheduler.NewScheduler(st.meetings, rabbitMQ, cfg.Sync, logger)
		g.Go(func() error {
			return ignoreCanceled(sched.Start(gctx))
		})
	}

	return g.Wait()
}

func openStores(cfg config.DatabaseConfig, logger *slog.Logger) (*stores, error) {
	if cfg.Driver == "memory" {
		db := memory.NewDB()
		logger.Warn("using in-memory storage; state is lost on exit")
		sessions := memory.NewSessionStore(db)
		return &stores{
			meetings:    memory.NewMeetingStore(db),
			runs:        memory.NewSyncRunStore(db),
			stats:       memory.NewStatsStore(db),
			credentials: memory.NewCredentialStore(db),
			users:       memory.NewUserStore(db),
			sessions:    sessions,
			records: normalizer.Stores{
				Attendance: memory.NewAttendanceStore(db),
				Sessions:   sessions,
				Chat:       memory.NewChatStore(db),
				Recordings: memory.NewRecordingStore(db),
				Files:      memory.NewFileStore(db),
			},
			txManager: memory.NewTransactionManager(),
			pool:      db,
			shutdown:  func() error { return nil },
		}, nil
	}

	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	pool := postgres.NewPool(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	logger.Info("connected to database")

	sessions := postgres.NewSessionStore(db)
	return &stores{
		meetings:    postgres.NewMeetingStore(db),
		runs:        postgres.NewSyncRunStore(db),
		stats:       postgres.NewStatsStore(db),
		credentials: postgres.NewCredentialStore(db),
		users:       postgres.NewUserStore(db),
		sessions:    sessions,
		records: normalizer.Stores{
			Attendance: postgres.NewAttendanceStore(db),
			Sessions:   sessions,
			Chat:       postgres.NewChatStore(db),
			Recordings: postgres.NewRecordingStore(db),
			Files:      postgres.NewFileStore(db),
		},
		txManager: postgres.NewTransactionManager(db),
		pool:      pool,
		shutdown:  db.Close,
	}, nil
}

func policy(rc config.RetryConfig) resilience.Policy {
	return resilience.Policy{
		MaxAttempts:   rc.MaxAttempts,
		BaseDelay:     rc.InitialBackoff,
		MaxDelay:      rc.MaxBackoff,
		BackoffFactor: rc.Multiplier,
	}
}

func platformConfig(pc config.PlatformConfig, retry resilience.Policy) source.Config {
	return source.Config{
		BaseURL:  pc.BaseURL,
		TokenURL: pc.TokenURL,
		PageSize: pc.PageSize,
		MaxPages: pc.MaxPages,
		Timeout:  pc.Timeout,
		Retry:    retry,
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
