package page

import (
	"errors"
	"io"
	"iter"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"imgcrawl/internal/domain"
)

var (
	errNilReader = errors.New("nil page body")
)

type page struct {
	doc  *goquery.Document
	slog *zap.SugaredLogger
}

func NewPage(raw io.Reader, slog *zap.SugaredLogger) (*page, error) {
	if slog == nil {
		slog = zap.NewNop().Sugar()
	}
	if raw == nil {
		return nil, errNilReader
	}
	doc, err := goquery.NewDocumentFromReader(raw)
	if err != nil {
		slog.Debugf("can't be parsed: %s", err)
		return nil, err
	}
	return &page{doc: doc, slog: slog}, nil
}

func (p *page) GetTitle() string {
	return p.doc.Find("title").First().Text()
}

//ImageSources - ленивый обход тегов img, прерванный обход дальше документ не читает
func (p *page) ImageSources() iter.Seq[string] {
	return func(yield func(string) bool) {
		imgs := p.doc.Find("img")
		for i := 0; i < imgs.Length(); i++ {
			src, ok := imgs.Eq(i).Attr("src")
			if !ok {
				p.slog.Debugw("img without src", "index", i)
			}
			if !yield(src) {
				return
			}
		}
	}
}

//Parse - NewPage за интерфейсом domain.Page
func Parse(raw io.Reader, slog *zap.SugaredLogger) (domain.Page, error) {
	p, err := NewPage(raw, slog)
	if err != nil {
		return nil, err
	}
	return p, nil
}
