// Package server assembles the Click Store: storage, services and the HTTP
// API, and runs them until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/clickstore/internal/logging"
	"github.com/dmitrijs2005/clickstore/internal/server/config"
	"github.com/dmitrijs2005/clickstore/internal/server/httpapi"
	"github.com/dmitrijs2005/clickstore/internal/server/receipt"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clickstore/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/clickstore/internal/server/services"
	_ "modernc.org/sqlite"
)

// MemoryDSN selects the in-process store instead of PostgreSQL.
const MemoryDSN = "memory"

const limiterIdle = 10 * time.Minute

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *services.SessionService
	limiter  *httpapi.RateLimiter
	handler  http.Handler
	closers  []func() error
	flush    func() error
}

func newLogger(backend string) (logging.Logger, func() error, error) {
	if backend == "zap" {
		z, err := logging.NewProductionZapLogger()
		if err != nil {
			return nil, nil, fmt.Errorf("zap init error: %w", err)
		}
		return z, z.Sync, nil
	}
	return logging.NewJSONSlogLogger(os.Stdout, slog.LevelInfo), nil, nil
}

// openStorage returns the pool and the repository manager for c.
func openStorage(ctx context.Context, c *config.Config, logger logging.Logger) (*sql.DB, repomanager.RepositoryManager, []func() error, error) {
	if c.DSN() == MemoryDSN {
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return nil, nil, nil, fmt.Errorf("db init error: %w", err)
		}
		if c.RedisURL != "" {
			logger.Warn(ctx, "redis sessions ignored in memory mode")
		}
		logger.Warn(ctx, "using in-memory store, data is lost on exit")
		return db, repomanager.NewMemoryRepositoryManager(), []func() error{db.Close}, nil
	}

	db, err := sql.Open("pgx", c.DSN())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db init error: %w", err)
	}
	db.SetMaxOpenConns(c.DBMaxOpenConns)
	db.SetMaxIdleConns(c.DBMaxIdleConns)
	closers := []func() error{db.Close}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	var rm repomanager.RepositoryManager = repomanager.NewPostgresRepositoryManager()

	if c.RedisURL != "" {
		client, err := sessions.NewRedisClient(ctx, c.RedisURL)
		if err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("redis init error: %w", err)
		}
		closers = append(closers, client.Close)
		rm = repomanager.NewRedisSessionManager(sessions.NewRedisRepository(client))
		logger.Info(ctx, "sessions stored in redis")
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		for _, fn := range closers {
			_ = fn()
		}
		return nil, nil, nil, fmt.Errorf("migrations error: %w", err)
	}

	return db, rm, closers, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, syncLog, err := newLogger(c.LogBackend)
	if err != nil {
		return nil, err
	}

	db, rm, closers, err := openStorage(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	// Left as a nil interface when disabled; the receipt service checks for nil.
	var archive receipt.Archiver
	if c.ReceiptArchiveEnabled() {
		a, err := receipt.NewS3Archive(ctx, receipt.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			for _, fn := range closers {
				_ = fn()
			}
			return nil, fmt.Errorf("receipt archive init error: %w", err)
		}
		archive = a
		logger.Info(ctx, "receipt archive enabled", "bucket", c.S3Bucket)
	}

	us := services.NewUserService(db, rm)
	ss := services.NewSessionService(db, rm, c.SecretKey, c.SessionTTL, c.SessionMaxAge)
	cs := services.NewCartService(db, rm, c.SecretKey)
	rs := services.NewReceiptService(cs, receipt.NewPDFRenderer(), archive, logger)

	limiter := httpapi.NewRateLimiter(c.LoginRate, c.LoginBurst, limiterIdle, logger)

	handler := httpapi.NewRouter(httpapi.Options{
		Users:        us,
		Sessions:     ss,
		Cart:         cs,
		Receipts:     rs,
		DB:           db,
		Logger:       logger,
		Metrics:      httpapi.NewMetrics(),
		Limiter:      limiter,
		APIKey:       c.APIKey,
		CookieSecure: c.CookieSecure,
		CORSOrigins:  c.CORSAllowedOrigins,
	})

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		sessions: ss,
		limiter:  limiter,
		handler:  handler,
		closers:  closers,
		flush:    syncLog,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.handler, app.logger, app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a signal arrives, then releases the
// database pool and other resources.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.SessionSweepInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.sessions.RunSweeper(ctx, app.config.SessionSweepInterval, app.logger)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.limiter.RunCleanup(ctx, limiterIdle)
	}()

	wg.Wait()

	app.close(context.Background())
}

func (app *App) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(ctx, "closing resource", "error", err)
		}
	}
	app.logger.Info(ctx, "App stopped")
	if app.flush != nil {
		_ = app.flush()
	}
}
