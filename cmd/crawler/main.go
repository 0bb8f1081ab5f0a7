package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/adrg/xdg"
	"go.uber.org/zap"

	"imgcrawl/internal/crawler"
	"imgcrawl/internal/downloader"
	"imgcrawl/internal/models"
	"imgcrawl/internal/requester"
	"imgcrawl/internal/service"
	"imgcrawl/internal/storage"
)

func parseConfig() models.Config {
	var cfg models.Config
	flag.StringVar(&cfg.PageURL, "url", models.DefaultPageURL, "page to collect images from")
	flag.StringVar(&cfg.DestDir, "dest", filepath.Join(xdg.UserDirs.Pictures, "imgcrawl"), "directory to save images to")
	flag.IntVar(&cfg.MaxInFlight, "max-inflight", models.DefaultMaxInFlight, "maximum number of simultaneous downloads")
	flag.IntVar(&cfg.WriteWorkers, "write-workers", models.DefaultWriteWorkers, "number of goroutines writing to disk")
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", models.DefaultRequestTimeout, "timeout of a single request")
	flag.DurationVar(&cfg.GlobalTimeout, "timeout", models.DefaultGlobalTimeout, "timeout of the whole crawl")
	flag.BoolVar(&cfg.Debug, "debug", false, "verbose logging")
	flag.Parse()
	if flag.NArg() > 0 {
		cfg.PageURL = flag.Arg(0)
	}
	return cfg
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg := parseConfig()

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("can't init logger: %s", err)
	}
	slog := logger.Sugar()
	slog.Infof("init logger")

	if err := cfg.Validate(); err != nil {
		slog.Errorf("config error: %s", err)
		_ = logger.Sync()
		os.Exit(2)
	}
	slog.Infow("read config", "config", cfg)
	slog.Debugw("process id", "id", os.Getpid())

	code := run(cfg, slog)
	_ = logger.Sync()
	os.Exit(code)
}

func run(cfg models.Config, slog *zap.SugaredLogger) int {
	r, err := requester.NewRequester(cfg.RequestTimeout, nil, slog)
	if err != nil {
		slog.Errorf("requester initialize error: %s", err)
		return 1
	}
	st, err := storage.NewStorage(cfg.DestDir, cfg.WriteWorkers, slog)
	if err != nil {
		slog.Errorf("storage initialize error: %s", err)
		return 1
	}
	defer st.Close()
	d, err := downloader.NewDownloader(r, st, slog)
	if err != nil {
		slog.Errorf("downloader initialize error: %s", err)
		return 1
	}
	srv, err := service.NewService(cfg, r, d, slog)
	if err != nil {
		slog.Errorf("service initialize error: %s", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)                                       //Создаем канал для приема сигналов
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGUSR1) //SIGUSR1 - печать прогресса
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case s := <-sigCh:
				succeeded, failed := srv.Progress()
				if s == syscall.SIGUSR1 {
					slog.Infow("SIGUSR1", "succeeded", succeeded, "failed", failed)
					continue
				}
				slog.Infow("signal received, canceling crawl", "signal", s.String(), "succeeded", succeeded, "failed", failed)
				cancel()
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	report, err := srv.Run(ctx)
	if err != nil {
		if errors.Is(err, crawler.ErrNoContent) {
			fmt.Fprintf(os.Stderr, "Error: no image found: %s\n", err)
		}
		slog.Errorf("crawl failed: %s", err)
		return 1
	}
	if err := service.WriteSummary(os.Stdout, report); err != nil {
		slog.Errorf("can't write summary: %s", err)
		return 1
	}
	if err := report.Err(); err != nil {
		slog.Warnf("some images were not downloaded: %s", err)
	}
	return 0
}
