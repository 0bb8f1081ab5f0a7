package models

import (
	"errors"
	"net/url"
	"time"
)

var (
	errIncorrectPageURL     = errors.New("incorrect page url, should be absolute")
	errIncorrectDestDir     = errors.New("incorrect destination dir, should not be empty")
	errIncorrectMaxInFlight = errors.New("incorrect max in-flight value, should be > 0")
	errIncorrectWorkers     = errors.New("incorrect write workers value, should be > 0")
	errIncorrectTimeout     = errors.New("incorrect timeout value, should be > 0")
)

const (
	DefaultPageURL        = "http://www.formation-python.com/"
	DefaultMaxInFlight    = 4
	DefaultWriteWorkers   = 2
	DefaultRequestTimeout = 10 * time.Second
	DefaultGlobalTimeout  = 2 * time.Minute
)

//Config - структура для конфигурации одного обхода страницы
type Config struct {
	PageURL        string
	DestDir        string
	MaxInFlight    int
	WriteWorkers   int
	RequestTimeout time.Duration
	GlobalTimeout  time.Duration
	Debug          bool
}

//Validate проверяет конфигурацию до запуска обхода
func (c Config) Validate() error {
	u, err := url.Parse(c.PageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errIncorrectPageURL
	}
	if c.DestDir == "" {
		return errIncorrectDestDir
	}
	if c.MaxInFlight < 1 {
		return errIncorrectMaxInFlight
	}
	if c.WriteWorkers < 1 {
		return errIncorrectWorkers
	}
	if c.RequestTimeout <= 0 || c.GlobalTimeout <= 0 {
		return errIncorrectTimeout
	}
	return nil
}
