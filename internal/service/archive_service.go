package service

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/politrack/politrack-api/internal/models"
	appErrors "github.com/politrack/politrack-api/pkg/errors"
	"github.com/politrack/politrack-api/pkg/jobs"
)

type snapshotExporter interface {
	Export(ctx context.Context) (*models.Snapshot, error)
	Filename() string
}

type archiveStorage interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
	List() ([]string, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ArchiveService writes exported snapshots to local disk, on demand and on a
// fixed interval. Old archives past the retention window are pruned after
// each write.
type ArchiveService struct {
	backup    snapshotExporter
	storage   archiveStorage
	logger    *zap.Logger
	interval  time.Duration
	retention time.Duration

	queue  *jobs.Queue
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewArchiveService constructs ArchiveService. A zero interval disables the
// periodic loop; ArchiveNow still works.
func NewArchiveService(backup snapshotExporter, storage archiveStorage, interval, retention time.Duration, logger *zap.Logger) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ArchiveService{
		backup:    backup,
		storage:   storage,
		logger:    logger,
		interval:  interval,
		retention: retention,
	}
	s.queue = jobs.NewQueue("snapshot-archive", s.runArchiveJob, jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 2,
		RetryDelay: 30 * time.Second,
		Logger:     logger,
	})
	return s
}

// Start launches the archive worker and, when an interval is configured, the
// periodic trigger.
func (s *ArchiveService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.queue.Start(ctx)

	if s.interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job := jobs.Job{ID: uuid.NewString(), Type: "periodic"}
				if err := s.queue.Enqueue(job); err != nil {
					s.logger.Warn("periodic archive enqueue failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts the periodic trigger and drains the worker.
func (s *ArchiveService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.queue.Stop()
}

// ArchiveNow exports a snapshot and writes it to disk immediately, returning
// the stored filename.
func (s *ArchiveService) ArchiveNow(ctx context.Context) (string, error) {
	return s.archive(ctx)
}

// List returns stored archive filenames, newest first.
func (s *ArchiveService) List(ctx context.Context) ([]string, error) {
	return s.storage.List()
}

// Read returns the raw contents of one stored archive.
func (s *ArchiveService) Read(ctx context.Context, filename string) ([]byte, error) {
	if err := validArchiveName(filename); err != nil {
		return nil, err
	}
	data, err := s.storage.Read(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archive not found")
		}
		return nil, err
	}
	return data, nil
}

// Delete removes one stored archive.
func (s *ArchiveService) Delete(ctx context.Context, filename string) error {
	if err := validArchiveName(filename); err != nil {
		return err
	}
	return s.storage.Delete(filename)
}

// validArchiveName rejects names that would escape the archive directory.
func validArchiveName(filename string) error {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return appErrors.Clone(appErrors.ErrValidation, "invalid archive name")
	}
	return nil
}

func (s *ArchiveService) runArchiveJob(ctx context.Context, job jobs.Job) error {
	_, err := s.archive(ctx)
	return err
}

func (s *ArchiveService) archive(ctx context.Context) (string, error) {
	snapshot, err := s.backup.Export(ctx)
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	filename, err := s.storage.Save(s.backup.Filename(), raw)
	if err != nil {
		return "", err
	}
	s.logger.Info("snapshot archived", zap.String("file", filename), zap.Int("bytes", len(raw)))

	if s.retention > 0 {
		deleted, err := s.storage.CleanupOlderThan(s.retention)
		if err != nil {
			s.logger.Warn("archive retention cleanup failed", zap.Error(err))
		} else if len(deleted) > 0 {
			s.logger.Info("old archives pruned", zap.Int("count", len(deleted)))
		}
	}
	return filename, nil
}
