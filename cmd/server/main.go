package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/jeongseonghan/bandmodem/internal/channel"
	"github.com/jeongseonghan/bandmodem/internal/config"
	"github.com/jeongseonghan/bandmodem/internal/modem"
	"github.com/jeongseonghan/bandmodem/internal/server"
)

func main() {
	addr := flag.String("addr", "", "Server address (overrides the config file)")
	configPath := flag.StringP("config", "c", "", "YAML config file")
	verbose := flag.BoolP("verbose", "v", false, "Log every pipeline stage")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "bandmodem"})

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			logger.Fatal("load config", "err", err)
		}
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *verbose || cfg.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	mc, err := cfg.ModemConfig()
	if err != nil {
		logger.Fatal("modem config", "err", err)
	}
	var opts []modem.Option
	if logger.GetLevel() <= log.DebugLevel {
		opts = append(opts, modem.WithObserver(modem.LogObserver(logger)))
	}
	m, err := modem.New(mc, opts...)
	if err != nil {
		logger.Fatal("create modem", "err", err)
	}

	var ch channel.Channel = channel.Loopback{}
	if cfg.Channel.URL != "" {
		ch = channel.NewWSChannel(cfg.Channel.URL, cfg.Channel.Compress)
		logger.Info("using remote channel", "url", cfg.Channel.URL, "compress", cfg.Channel.Compress)
	}

	handlers := server.NewHandlers(m, ch, cfg.Channel.Timeout, logger)
	srv := server.NewServer(cfg.Server.Addr, handlers, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
