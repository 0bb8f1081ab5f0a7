package downloader

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"imgcrawl/internal/domain"
	"imgcrawl/internal/models"
)

var (
	errNilFetcher = errors.New("nil fetcher")
	errNilSink    = errors.New("nil sink")

	//ErrAbsent - ресурс ответил статусом, отличным от 200
	ErrAbsent = errors.New("resource absent")
)

//NamingError - из URI нельзя получить имя файла
type NamingError struct {
	URI    string
	Reason string
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("name %s: %s", e.URI, e.Reason)
}

type downloader struct {
	f    domain.Fetcher
	sink domain.Sink
	slog *zap.SugaredLogger
}

func NewDownloader(f domain.Fetcher, sink domain.Sink, slog *zap.SugaredLogger) (*downloader, error) {
	if slog == nil {
		slog = zap.NewNop().Sugar()
	}
	if f == nil {
		return nil, errNilFetcher
	}
	if sink == nil {
		return nil, errNilSink
	}
	return &downloader{f: f, sink: sink, slog: slog}, nil
}

//Download - ошибки не возвращаются, любой исход описан в результате
func (d *downloader) Download(ctx context.Context, uri string) models.DownloadResult {
	res := models.DownloadResult{URI: uri}
	d.slog.Infow("downloading", "uri", uri)

	p, err := d.f.Fetch(ctx, uri)
	if err != nil {
		return fail(res, models.StageFetch, err)
	}
	if p.Absent() {
		return fail(res, models.StageFetch, fmt.Errorf("%w: status %d", ErrAbsent, p.Status))
	}

	name, err := FileName(uri)
	if err != nil {
		return fail(res, models.StageName, err)
	}

	//Запись блокирующая, поэтому уходит в пул записи хранилища
	dest, err := d.sink.Write(ctx, name, p.Raw)
	if err != nil {
		return fail(res, models.StageWrite, err)
	}
	res.Dest = dest
	res.Bytes = int64(len(p.Raw))
	return res
}

func fail(res models.DownloadResult, stage models.Stage, err error) models.DownloadResult {
	res.Stage = stage
	res.Err = err
	return res
}

//FileName - имя файла по последнему сегменту пути, query в имя не попадает
func FileName(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", &NamingError{URI: uri, Reason: err.Error()}
	}
	escaped := u.EscapedPath()
	seg := escaped[strings.LastIndex(escaped, "/")+1:]
	if seg == "" {
		return "", &NamingError{URI: uri, Reason: "path has no last segment"}
	}
	name, err := url.PathUnescape(seg)
	if err != nil {
		return "", &NamingError{URI: uri, Reason: err.Error()}
	}
	if name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return "", &NamingError{URI: uri, Reason: fmt.Sprintf("unsafe file name %q", name)}
	}
	return name, nil
}
