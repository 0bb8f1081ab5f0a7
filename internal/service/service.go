package service

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"imgcrawl/internal/crawler"
	"imgcrawl/internal/domain"
	"imgcrawl/internal/models"
)

type Service struct {
	config    models.Config
	crawler   domain.Crawler
	succeeded atomic.Int64
	failed    atomic.Int64
	slog      *zap.SugaredLogger
}

func NewService(cfg models.Config, f domain.Fetcher, d domain.Downloader, slog *zap.SugaredLogger) (*Service, error) {
	if slog == nil {
		slog = zap.NewNop().Sugar()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Service{config: cfg, slog: slog}
	cr, err := crawler.NewCrawler(f, d, cfg.MaxInFlight, slog, crawler.WithObserver(s.processResult))
	if err != nil {
		return nil, err
	}
	s.crawler = cr
	return s, nil
}

//Run - обход страницы с общим таймаутом
func (s *Service) Run(ctx context.Context) (*models.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.GlobalTimeout)
	defer cancel()
	return s.crawler.Crawl(ctx, s.config.PageURL)
}

//Progress - сколько результатов уже получено
func (s *Service) Progress() (succeeded, failed int64) {
	return s.succeeded.Load(), s.failed.Load()
}

func (s *Service) processResult(res models.DownloadResult) {
	if !res.OK() {
		n := s.failed.Inc()
		s.slog.Warnf("crawler result return err: [%d] %s: %s", n, res.Target(), res.Reason())
		return
	}
	n := s.succeeded.Inc()
	s.slog.Infof("crawler result: [%d] [url: %s] saved to %s (%s)", n, res.URI, res.Dest, humanize.Bytes(uint64(res.Bytes)))
}

//WriteSummary печатает итог обхода: сколько загружено и что не удалось
func WriteSummary(w io.Writer, r *models.Report) error {
	ok, failed := r.Succeeded(), r.Failed()
	if _, err := fmt.Fprintf(w, "page: %s\n", r.PageURL); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "downloaded: %d (%s)\n", len(ok), humanize.Bytes(uint64(r.TotalBytes()))); err != nil {
		return err
	}
	for _, res := range ok {
		if _, err := fmt.Fprintf(w, "  + %s -> %s\n", res.URI, res.Dest); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "failed: %d (%d unresolvable)\n", len(failed), len(r.ResolutionFailures())); err != nil {
		return err
	}
	for _, res := range failed {
		if _, err := fmt.Fprintf(w, "  - %s: %s\n", res.Target(), res.Reason()); err != nil {
			return err
		}
	}
	return nil
}
