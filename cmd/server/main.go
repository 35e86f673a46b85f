package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chronik/internal/config"
	"chronik/internal/handler"
	"chronik/internal/kv"
	"chronik/internal/logger"
	"chronik/internal/middleware"
	"chronik/internal/prefs"
	"chronik/internal/service"
	"chronik/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configFile := flag.String("config", "", "config file path (e.g. etc/config-dev.yaml)")
	flag.Parse()

	cfg := config.Load(*configFile)
	logFile := logger.Init(cfg.Log)
	defer logFile.Close()

	middleware.JWTSecret = []byte(cfg.Auth.JWTSecret)
	middleware.TokenTTL = cfg.Auth.TokenTTL

	backend, err := kv.Open(cfg)
	if err != nil {
		logger.Error("storage.open_failed", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}
	defer backend.Close()

	p, err := prefs.Open(cfg.Prefs.File)
	if err != nil {
		logger.Error("prefs.open_failed", "file", cfg.Prefs.File, "err", err)
		os.Exit(1)
	}

	st := store.New(backend, store.Options{
		Namespace:    cfg.Storage.Namespace,
		WriteTimeout: cfg.Storage.WriteTimeout,
		Registerer:   prometheus.DefaultRegisterer,
	})
	// the API answers "loading" until this finishes
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Storage.LoadTimeout)
		defer cancel()
		// slots that failed to load stay at their defaults and are logged
		_ = st.Load(ctx)
	}()

	r := handler.NewRouter(handler.Deps{
		Journal:      service.NewJournal(st),
		Gate:         service.NewGate(p, cfg.Auth.DefaultPIN),
		Prefs:        p,
		AllowOrigins: cfg.Server.AllowOrigins,
		Metrics:      promhttp.Handler(),
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Info("server.start", "addr", cfg.Addr(), "driver", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server.failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("server.shutdown_failed", "err", err)
	}
	if err := st.Close(ctx); err != nil {
		logger.Warn("store.flush_failed", "err", err)
	}
	logger.Info("server.stopped")
}
