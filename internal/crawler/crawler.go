package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"imgcrawl/internal/domain"
	"imgcrawl/internal/models"
	"imgcrawl/internal/page"
	"imgcrawl/internal/resolver"
)

var (
	errIncorrectMaxInFlight = errors.New("incorrect max in-flight value, should be > 0")
	errNilFetcher           = errors.New("nil fetcher")
	errNilDownloader        = errors.New("nil downloader")

	//ErrNoContent - страницу получить не удалось, обход прерывается
	ErrNoContent = errors.New("no content retrieved")
)

//ParseFunc - разбор тела страницы
type ParseFunc func(raw io.Reader, slog *zap.SugaredLogger) (domain.Page, error)

type Option func(*crawler)

//WithObserver - fn получает каждый результат сразу, вызывается из одной рутины
func WithObserver(fn func(models.DownloadResult)) Option {
	return func(c *crawler) {
		c.observe = fn
	}
}

func WithParser(parse ParseFunc) Option {
	return func(c *crawler) {
		c.parse = parse
	}
}

type crawler struct {
	f           domain.Fetcher
	d           domain.Downloader
	maxInFlight int
	parse       ParseFunc
	observe     func(models.DownloadResult)
	slog        *zap.SugaredLogger
}

func NewCrawler(f domain.Fetcher, d domain.Downloader, maxInFlight int, slog *zap.SugaredLogger, opts ...Option) (*crawler, error) {
	if slog == nil {
		slog = zap.NewNop().Sugar()
	}
	if maxInFlight < 1 {
		return nil, errIncorrectMaxInFlight
	}
	if f == nil {
		return nil, errNilFetcher
	}
	if d == nil {
		return nil, errNilDownloader
	}
	c := &crawler{
		f:           f,
		d:           d,
		maxInFlight: maxInFlight,
		parse:       page.Parse,
		observe:     func(models.DownloadResult) {},
		slog:        slog,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

//Crawl - загрузка страницы и всех её картинок, не больше maxInFlight одновременно.
//Ошибки отдельных картинок попадают в отчет, ошибкой возвращается только отказ страницы
func (c *crawler) Crawl(ctx context.Context, pageURL string) (*models.Report, error) {
	base, err := resolver.ParseBase(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoContent, err)
	}

	//Загружаем саму страницу
	c.slog.Infow("fetching page", "url", pageURL)
	p, err := c.f.Fetch(ctx, pageURL)
	if err != nil {
		c.slog.Errorf("can't get page: %s", err)
		return nil, fmt.Errorf("%w: %w", ErrNoContent, err)
	}
	if p.Empty() {
		c.slog.Errorw("no image found, page is empty or absent", "url", pageURL, "status", p.Status)
		return nil, fmt.Errorf("%w: status %d, %d bytes", ErrNoContent, p.Status, len(p.Raw))
	}

	//Разбираем HTML
	pg, err := c.parse(p.Reader(), c.slog)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoContent, err)
	}
	c.slog.Debugw("page parsed", "title", pg.GetTitle())

	report := &models.Report{PageURL: pageURL}
	results := make(chan models.DownloadResult)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for res := range results {
			report.Add(res)
			c.observe(res)
		}
	}()

	gauge := &inFlightGauge{}
	g := new(errgroup.Group)
	g.SetLimit(c.maxInFlight)

	i := 0
	for ref := range pg.ImageSources() {
		idx := i
		i++
		uri, err := resolver.Resolve(base, ref)
		if err != nil {
			c.slog.Warnf("can't resolve reference: %s", err)
			results <- models.DownloadResult{Index: idx, Reference: ref, Stage: models.StageResolve, Err: err}
			continue
		}
		if ctx.Err() != nil {
			results <- models.DownloadResult{Index: idx, Reference: ref, URI: uri, Stage: models.StageCanceled, Err: ctx.Err()}
			continue
		}
		//Go блокируется, пока занято maxInFlight слотов
		g.Go(func() error {
			res := gauge.track(func() models.DownloadResult {
				return c.d.Download(ctx, uri)
			})
			res.Index = idx
			res.Reference = ref
			results <- res
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-collected

	report.Sort()
	report.PeakInFlight = gauge.peak.Load()
	c.slog.Infow("crawl done",
		"url", pageURL,
		"succeeded", len(report.Succeeded()),
		"failed", len(report.Failed()),
		"peak_in_flight", report.PeakInFlight,
	)
	return report, nil
}

//inFlightGauge - счетчик одновременных загрузок одного обхода
type inFlightGauge struct {
	current atomic.Int64
	peak    atomic.Int64
}

func (g *inFlightGauge) track(download func() models.DownloadResult) models.DownloadResult {
	n := g.current.Inc()
	defer g.current.Dec()
	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	return download()
}
