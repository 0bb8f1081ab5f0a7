package models

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"
)

type Stage string

const (
	StageResolve  Stage = "resolve"
	StageFetch    Stage = "fetch"
	StageName     Stage = "name"
	StageWrite    Stage = "write"
	StageCanceled Stage = "canceled"
)

//DownloadResult - итог обработки одной ссылки на изображение
type DownloadResult struct {
	//Index - позиция ссылки в порядке извлечения
	Index     int
	Reference string
	URI       string
	Dest      string
	Bytes     int64
	Stage     Stage
	Err       error
}

func (r DownloadResult) OK() bool {
	return r.Err == nil
}

//Reason - "<этап>: <причина>", для успеха пусто
func (r DownloadResult) Reason() string {
	if r.Err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", r.Stage, r.Err)
}

//Report - сводка по одному обходу страницы
type Report struct {
	PageURL      string
	Results      []DownloadResult
	PeakInFlight int64
}

func (r *Report) Add(res DownloadResult) {
	r.Results = append(r.Results, res)
}

//Sort восстанавливает порядок извлечения, загрузки завершаются в произвольном порядке
func (r *Report) Sort() {
	sort.SliceStable(r.Results, func(i, j int) bool {
		return r.Results[i].Index < r.Results[j].Index
	})
}

func (r *Report) Succeeded() []DownloadResult {
	return r.filter(func(res DownloadResult) bool { return res.OK() })
}

func (r *Report) Failed() []DownloadResult {
	return r.filter(func(res DownloadResult) bool { return !res.OK() })
}

//Attempted - сколько ссылок действительно ушло в загрузку
func (r *Report) Attempted() int {
	return len(r.filter(func(res DownloadResult) bool {
		return res.Stage != StageResolve && res.Stage != StageCanceled
	}))
}

func (r *Report) ResolutionFailures() []DownloadResult {
	return r.filter(func(res DownloadResult) bool { return res.Stage == StageResolve })
}

func (r *Report) TotalBytes() int64 {
	var n int64
	for _, res := range r.Succeeded() {
		n += res.Bytes
	}
	return n
}

//Err объединяет все ошибки по отдельным изображениям
func (r *Report) Err() error {
	var err error
	for _, res := range r.Failed() {
		err = multierr.Append(err, fmt.Errorf("%s: %w", res.Target(), res.Err))
	}
	return err
}

func (r *Report) filter(keep func(DownloadResult) bool) []DownloadResult {
	var out []DownloadResult
	for _, res := range r.Results {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

//Target - URI или исходная ссылка в кавычках, если разрешить её не удалось
func (r DownloadResult) Target() string {
	if r.URI != "" {
		return r.URI
	}
	return fmt.Sprintf("%q", r.Reference)
}
