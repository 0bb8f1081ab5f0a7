package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

var (
	errIncorrectWorkers = errors.New("incorrect workers value, should be > 0")
	errEmptyDir         = errors.New("destination dir should not be empty")
	ErrClosed           = errors.New("storage is closed")
	ErrBadName          = errors.New("name must be a single path element")
)

//WriteError - ошибка записи файла на диск
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %s", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

type writeJob struct {
	path string
	data []byte
	done chan error
}

type Storage struct {
	dir       string
	jobs      chan writeJob
	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	slog      *zap.SugaredLogger
}

//NewStorage - создает каталог и запускает workers рутин записи, остановка через Close
func NewStorage(dir string, workers int, slog *zap.SugaredLogger) (*Storage, error) {
	if slog == nil {
		slog = zap.NewNop().Sugar()
	}
	if dir == "" {
		return nil, errEmptyDir
	}
	if workers < 1 {
		return nil, errIncorrectWorkers
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &WriteError{Path: dir, Err: err}
	}
	s := &Storage{
		dir:  dir,
		jobs: make(chan writeJob),
		quit: make(chan struct{}),
		slog: slog,
	}
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker(i)
	}
	slog.Debugw("storage started", "dir", dir, "workers", workers)
	return s, nil
}

func (s *Storage) Dir() string {
	return s.dir
}

//Write - передает запись в пул и ждет ее завершения.
//Взятая рутиной запись доводится до конца, даже если ctx уже отменен
func (s *Storage) Write(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", &WriteError{Path: name, Err: ErrBadName}
	}
	path := filepath.Join(s.dir, name)
	job := writeJob{path: path, data: data, done: make(chan error, 1)}

	select {
	case s.jobs <- job:
	case <-s.quit:
		return "", &WriteError{Path: path, Err: ErrClosed}
	case <-ctx.Done():
		return "", &WriteError{Path: path, Err: ctx.Err()}
	}

	select {
	case err := <-job.done:
		if err != nil {
			return "", &WriteError{Path: path, Err: err}
		}
		return path, nil
	case <-ctx.Done():
		return "", &WriteError{Path: path, Err: ctx.Err()}
	}
}

func (s *Storage) Close() error {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
	s.wg.Wait()
	return nil
}

func (s *Storage) worker(id int) {
	defer s.wg.Done()
	for {
		select {
		case <-s.quit:
			return
		case job := <-s.jobs:
			err := writeFile(job.path, job.data)
			if err != nil {
				s.slog.Debugw("write failed", "worker", id, "path", job.path, "err", err)
			} else {
				s.slog.Debugw("written", "worker", id, "path", job.path, "size", humanize.Bytes(uint64(len(job.data))))
			}
			job.done <- err
		}
	}
}

//Пишем во временный файл и переименовываем, недописанный файл не виден
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
