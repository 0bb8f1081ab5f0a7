package models

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func validConfig() Config {
	return Config{
		PageURL:        DefaultPageURL,
		DestDir:        "images",
		MaxInFlight:    DefaultMaxInFlight,
		WriteWorkers:   DefaultWriteWorkers,
		RequestTimeout: DefaultRequestTimeout,
		GlobalTimeout:  DefaultGlobalTimeout,
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"relative url", func(c *Config) { c.PageURL = "/index.html" }, errIncorrectPageURL},
		{"empty dest", func(c *Config) { c.DestDir = "" }, errIncorrectDestDir},
		{"no concurrency", func(c *Config) { c.MaxInFlight = 0 }, errIncorrectMaxInFlight},
		{"no writers", func(c *Config) { c.WriteWorkers = 0 }, errIncorrectWorkers},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, errIncorrectTimeout},
		{"negative global timeout", func(c *Config) { c.GlobalTimeout = -time.Second }, errIncorrectTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestReport(t *testing.T) {
	errResolve := errors.New("empty reference")
	errFetch := errors.New("resource absent")
	r := &Report{PageURL: "http://x/"}
	r.Add(DownloadResult{Index: 2, URI: "http://x/b.png", Stage: StageFetch, Err: errFetch})
	r.Add(DownloadResult{Index: 0, URI: "http://x/a.png", Dest: "/d/a.png", Bytes: 10})
	r.Add(DownloadResult{Index: 1, Reference: "", Stage: StageResolve, Err: errResolve})
	r.Add(DownloadResult{Index: 3, URI: "http://x/c.png", Dest: "/d/c.png", Bytes: 5})
	r.Add(DownloadResult{Index: 4, URI: "http://x/d.png", Stage: StageCanceled, Err: context.Canceled})
	r.Sort()

	for i, res := range r.Results {
		assert.Equal(t, i, res.Index)
	}
	assert.Len(t, r.Succeeded(), 2)
	assert.Len(t, r.Failed(), 3)
	assert.Len(t, r.ResolutionFailures(), 1)
	assert.Equal(t, 3, r.Attempted())
	assert.EqualValues(t, 15, r.TotalBytes())

	err := r.Err()
	assert.Len(t, multierr.Errors(err), 3)
	assert.ErrorIs(t, err, errFetch)
	assert.ErrorIs(t, err, errResolve)
	assert.Contains(t, err.Error(), `"": empty reference`)
	assert.Contains(t, err.Error(), "http://x/b.png: resource absent")
}

func TestReport_NoFailures(t *testing.T) {
	r := &Report{}
	r.Add(DownloadResult{URI: "http://x/a.png"})
	assert.NoError(t, r.Err())
	assert.Empty(t, r.Results[0].Reason())
}

func TestPayload(t *testing.T) {
	var nilPayload *Payload
	assert.True(t, nilPayload.Absent())
	assert.True(t, (&Payload{Kind: PayloadAbsent, Status: 404}).Empty())
	assert.True(t, (&Payload{Kind: PayloadBinary}).Empty())
	assert.False(t, (&Payload{Kind: PayloadBinary, Raw: []byte("x")}).Empty())
	assert.Equal(t, "text", PayloadText.String())
	assert.Equal(t, "binary", PayloadBinary.String())
	assert.Equal(t, "absent", PayloadAbsent.String())
}
