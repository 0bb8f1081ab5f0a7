package domain

import (
	"context"
	"iter"

	"imgcrawl/internal/models"
)

//Page - разобранная HTML страница
type Page interface {
	GetTitle() string
	//ImageSources - src всех img по порядку, без атрибута - пустая строка
	ImageSources() iter.Seq[string]
}

//Fetcher - один GET запрос с классификацией ответа
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (*models.Payload, error)
}

//Sink - запись файла в хранилище
type Sink interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

//Downloader - загрузка одного ресурса в хранилище
type Downloader interface {
	Download(ctx context.Context, uri string) models.DownloadResult
}

//Crawler - интерфейс (контракт) краулера
type Crawler interface {
	Crawl(ctx context.Context, pageURL string) (*models.Report, error)
}
