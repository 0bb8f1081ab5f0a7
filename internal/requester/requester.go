package requester

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"imgcrawl/internal/models"
)

const userAgent = "imgcrawl/1.0"

var (
	errIncorrectTimeout = errors.New("incorrect timeout value, should be > 0")
)

//FetchError - до сервера не удалось достучаться (DNS, соединение, таймаут, TLS)
type FetchError struct {
	URI string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s", e.URI, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type requester struct {
	cl   *http.Client
	slog *zap.SugaredLogger
}

//NewRequester - nil transport означает http.DefaultTransport
func NewRequester(timeout time.Duration, transport http.RoundTripper, slog *zap.SugaredLogger) (*requester, error) {
	if slog == nil {
		slog = zap.NewNop().Sugar()
	}
	if timeout <= 0 {
		return nil, errIncorrectTimeout
	}
	return &requester{
		cl: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		slog: slog,
	}, nil
}

//Fetch - статус не 200 это PayloadAbsent, а не ошибка. *FetchError только для сбоев транспорта
func (r *requester) Fetch(ctx context.Context, uri string) (*models.Payload, error) {
	select {
	case <-ctx.Done():
		return nil, &FetchError{URI: uri, Err: ctx.Err()}
	default:
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		r.slog.Debugf("can't create http.Request: %s", err)
		return nil, &FetchError{URI: uri, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.cl.Do(req)
	if err != nil {
		r.slog.Debugf("http transport error: %s", err)
		return nil, &FetchError{URI: uri, Err: err}
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK {
		r.slog.Debugw("resource absent", "uri", uri, "status", resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		return &models.Payload{Kind: models.PayloadAbsent, Status: resp.StatusCode, ContentType: contentType}, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		r.slog.Debugf("can't read body: %s", err)
		return nil, &FetchError{URI: uri, Err: err}
	}

	p := &models.Payload{
		Kind:        models.PayloadBinary,
		Status:      resp.StatusCode,
		ContentType: contentType,
		Raw:         raw,
	}
	if isText(contentType) {
		p.Kind = models.PayloadText
		p.Text = r.decode(raw, contentType)
	}
	return p, nil
}

//Кодировка берется из заголовка, BOM или meta
func (r *requester) decode(raw []byte, contentType string) string {
	rd, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		r.slog.Debugf("unknown charset, keeping bytes as is: %s", err)
		return string(raw)
	}
	text, err := io.ReadAll(rd)
	if err != nil {
		r.slog.Debugf("can't decode body: %s", err)
		return string(raw)
	}
	return string(text)
}

//Без Content-Type считаем application/octet-stream
func isText(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.HasPrefix(mediaType, "text/")
}
