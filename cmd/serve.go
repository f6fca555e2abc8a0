package cmd

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"robotctl/internal/acceptor"
	"robotctl/internal/admin"
	"robotctl/internal/config"
	"robotctl/internal/logging"
	"robotctl/internal/registry"
)

// metricsPushInterval is how often the dashboard websocket feed receives a
// metrics snapshot between session lifecycle events.
const metricsPushInterval = 5 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags(), cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, syncLog, err := logging.New(logging.Options{FilePath: cfg.LogPath, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer syncLog()

	store := config.NewStore(cfg)
	reg := registry.NewRegistry(&registry.Metrics{})
	hub := admin.NewHub()

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddr, err)
	}

	accept := acceptor.New(listener, store.SessionConfig, reg, hub, log)

	adminHandler := admin.NewHandler(reg, store, hub, log)
	adminServer := &http.Server{Addr: cfg.AdminAddr, Handler: adminHandler.Mux()}

	acceptDone := make(chan error, 1)
	go func() {
		log.Infow("robot protocol listening", "addr", cfg.ListenAddr)
		acceptDone <- accept.Serve()
	}()

	adminDone := make(chan error, 1)
	go func() {
		log.Infow("admin surface listening", "addr", cfg.AdminAddr)
		err := adminServer.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		adminDone <- err
	}()

	metricsTicker := time.NewTicker(metricsPushInterval)
	defer metricsTicker.Stop()
	metricsStop := make(chan struct{})
	defer close(metricsStop)
	go func() {
		for {
			select {
			case <-metricsTicker.C:
				hub.PublishMetrics(reg.Metrics().Snapshot())
			case <-metricsStop:
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutting down")
	case err := <-acceptDone:
		if err != nil {
			log.Errorw("robot protocol listener failed", "err", err)
		}
	case err := <-adminDone:
		if err != nil {
			log.Errorw("admin surface failed", "err", err)
		}
	}

	_ = accept.Close()
	_ = adminServer.Close()
	return nil
}
