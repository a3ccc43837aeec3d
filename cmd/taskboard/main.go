package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Joseda-hg/taskboard/internal/auth"
	"github.com/Joseda-hg/taskboard/internal/config"
	"github.com/Joseda-hg/taskboard/internal/db"
	"github.com/Joseda-hg/taskboard/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	dbPathFlag := flag.String("db", "", "sqlite db path")
	portFlag := flag.Int("port", 0, "http server port")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "taskboard",
	})

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		logger.Fatal("resolve config path", "err", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("load config", "path", cfgPath, "err", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		logger.Fatal("read environment", "err", err)
	}

	if *dbPathFlag != "" {
		cfg.Database.Path = *dbPathFlag
	}
	if cfg.Database.Driver == config.DriverSQLite && cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(filepath.Dir(cfgPath), "taskboard.db")
	}
	if *portFlag != 0 {
		cfg.Server.Port = *portFlag
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", "err", err)
	}

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warn("unknown log level, using info", "level", cfg.LogLevel)
	}
	if cfg.Auth.Secret == "" {
		logger.Warn("JWT_SECRET is not set; login and protected routes will fail")
	}

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("open database", "driver", cfg.Database.Driver, "err", err)
	}
	defer store.Close()

	server, err := web.NewServer(store, auth.NewTokens(cfg.Auth.Secret), web.Options{
		APIPrefix:     cfg.Server.APIPrefix,
		SecureCookies: cfg.Production(),
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("build server", "err", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", "addr", "http://localhost"+httpServer.Addr, "env", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "err", err)
			store.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func openStore(cfg config.Database) (*db.Store, error) {
	dialect, err := db.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if dialect == db.DialectSQLite {
		if err := config.EnsureDir(cfg.Path); err != nil {
			return nil, err
		}
	}

	sqlDB, err := db.Open(dialect, cfg.DSN())
	if err != nil {
		return nil, err
	}
	store := db.NewStore(sqlDB, dialect)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
