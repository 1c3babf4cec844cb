package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/client"
	"github.com/dmitrijs2005/beiwe-client/internal/client/filequeue"
	"github.com/dmitrijs2005/beiwe-client/internal/client/urls"
	"github.com/dmitrijs2005/beiwe-client/internal/common"
	"github.com/dmitrijs2005/beiwe-client/internal/logging"
)

const (
	// DefaultUploadCeiling bounds one whole batch.
	DefaultUploadCeiling = time.Hour

	// ChunkSize is the unit files are streamed in; the batch deadline is
	// re-checked after each one.
	ChunkSize = 64 * 1024
)

// FileQueue is the set of files waiting for upload.
type FileQueue interface {
	List() ([]filequeue.Item, error)
	Open(name string) (io.ReadCloser, int64, error)
	Delete(name string) error
}

// UploadStore is the persistence UploadService needs.
type UploadStore interface {
	IsRegistered(ctx context.Context) (bool, error)
	AppendDebugLog(ctx context.Context, msg string) error
	RecordCrash(ctx context.Context, msg string) (string, error)
}

// UploadService uploads queued files one batch at a time. Concurrent
// RunBatch calls queue up behind each other; none is dropped and two
// batches never overlap.
type UploadService struct {
	mu sync.Mutex

	factory   *client.Factory
	codec     *client.Codec
	urls      *urls.Resolver
	queue     FileQueue
	store     UploadStore
	log       logging.Logger
	ceiling   time.Duration
	chunkSize int
	now       func() time.Time
}

// UploadOption customizes an UploadService.
type UploadOption func(*UploadService)

// WithUploadCeiling overrides DefaultUploadCeiling.
func WithUploadCeiling(d time.Duration) UploadOption {
	return func(s *UploadService) { s.ceiling = d }
}

// WithClock replaces time.Now for deadline checks.
func WithClock(now func() time.Time) UploadOption {
	return func(s *UploadService) { s.now = now }
}

// WithChunkSize overrides ChunkSize.
func WithChunkSize(n int) UploadOption {
	return func(s *UploadService) { s.chunkSize = n }
}

func NewUploadService(
	factory *client.Factory,
	codec *client.Codec,
	resolver *urls.Resolver,
	queue FileQueue,
	store UploadStore,
	log logging.Logger,
	opts ...UploadOption,
) *UploadService {
	s := &UploadService{
		factory:   factory,
		codec:     codec,
		urls:      resolver,
		queue:     queue,
		store:     store,
		log:       log.With("component", "upload"),
		ceiling:   DefaultUploadCeiling,
		chunkSize: ChunkSize,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RunBatch uploads every file queued at the moment it starts. A file is
// deleted after the server answers 200 for it; any other outcome leaves it
// for the next batch. When the batch outlives its ceiling it stops, records
// the event in the debug and crash logs, and returns ErrBatchDeadline.
func (s *UploadService) RunBatch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	registered, err := s.store.IsRegistered(ctx)
	if err != nil {
		return fmt.Errorf("read registration state: %w", err)
	}
	if !registered {
		return common.ErrNotRegistered
	}

	deadline := s.now().Add(s.ceiling)

	url, err := s.urls.Resolve(ctx, urls.PathUpload)
	if err == nil {
		err = client.ValidateURL(url)
	}
	if err != nil {
		s.recordCrash(ctx, fmt.Sprintf("upload url: %v", err))
		return err
	}

	items, err := s.queue.List()
	if err != nil {
		return fmt.Errorf("list upload queue: %w", err)
	}
	s.log.Info(ctx, "uploading", "files", len(items))

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.now().After(deadline) {
			return s.stop(ctx)
		}

		code, err := s.uploadFile(ctx, url, it.Name, deadline)
		switch {
		case errors.Is(err, client.ErrUploadAborted):
			s.log.Warn(ctx, "upload aborted at deadline", "file", it.Name, "code", client.CodeUploadAborted)
			return s.stop(ctx)
		case err != nil:
			s.log.Warn(ctx, "upload failed", "file", it.Name, "code", client.ResponseCode(err, 0), "error", err)
		case code == http.StatusOK:
			if err := s.queue.Delete(it.Name); err != nil {
				s.log.Error(ctx, "failed to delete uploaded file", "file", it.Name, "error", err)
			}
		default:
			s.log.Warn(ctx, "upload rejected", "file", it.Name, "code", code)
		}

		if s.now().After(deadline) {
			return s.stop(ctx)
		}
	}

	s.log.Info(ctx, "upload batch done")
	return nil
}

// uploadFile streams one file. It returns ErrUploadAborted when the
// deadline passes mid-file.
func (s *UploadService) uploadFile(ctx context.Context, url, name string, deadline time.Time) (int, error) {
	rc, size, err := s.queue.Open(name)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	block, err := s.codec.Block(ctx, "")
	if err != nil {
		return 0, err
	}
	head := block + client.MakeParameter("file_name", name) + "file="

	conn, err := s.factory.OpenSized(ctx, url, int64(len(head))+size)
	if err != nil {
		return 0, err
	}
	defer conn.Disconnect()

	switch err := s.streamBody(conn, head, rc, name, deadline); {
	case err == nil, errors.Is(err, client.ErrEarlyResponse):
	case errors.Is(err, client.ErrUploadAborted):
		conn.Disconnect()
		return client.CodeUploadAborted, err
	default:
		return 0, err
	}

	code, err := conn.StatusCode()
	if err != nil {
		return 0, err
	}
	s.log.Debug(ctx, "finished attempt to upload", "file", name, "code", code)
	return code, nil
}

// streamBody writes head and then the file in chunks, checking the batch
// deadline between chunks.
func (s *UploadService) streamBody(conn *client.Connection, head string, rc io.Reader, name string, deadline time.Time) error {
	if _, err := conn.WriteString(head); err != nil {
		return err
	}

	buf := make([]byte, s.chunkSize)
	for {
		n, rerr := io.ReadFull(rc, buf)
		if n > 0 {
			if _, err := conn.Write(buf[:n]); err != nil {
				return err
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("read %s: %w", name, rerr)
		}
		if s.now().After(deadline) {
			return client.ErrUploadAborted
		}
	}
}

func (s *UploadService) stop(ctx context.Context) error {
	s.log.Warn(ctx, "shutting down upload due to time limit", "ceiling", s.ceiling)
	msg := fmt.Sprintf("upload time limit of %s reached, there are likely files still on the device that have not been uploaded.", s.ceiling)
	if err := s.store.AppendDebugLog(ctx, msg); err != nil {
		s.log.Error(ctx, "failed to write debug log", "error", err)
	}
	s.recordCrash(ctx, fmt.Sprintf("upload took longer than %s", s.ceiling))
	return client.ErrBatchDeadline
}

func (s *UploadService) recordCrash(ctx context.Context, msg string) {
	if _, err := s.store.RecordCrash(ctx, msg); err != nil {
		s.log.Error(ctx, "failed to record crash event", "error", err)
	}
}
