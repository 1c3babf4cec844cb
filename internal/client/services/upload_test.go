package services

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/client"
	"github.com/dmitrijs2005/beiwe-client/internal/client/filequeue"
	"github.com/dmitrijs2005/beiwe-client/internal/client/urls"
	"github.com/dmitrijs2005/beiwe-client/internal/common"
	"github.com/dmitrijs2005/beiwe-client/internal/cryptox"
	"github.com/dmitrijs2005/beiwe-client/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQueue(t *testing.T, files map[string]string) *filequeue.Queue {
	t.Helper()
	q, err := filequeue.New(t.TempDir())
	require.NoError(t, err)
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(q.Dir(), name), []byte(content), 0o600))
	}
	return q
}

func queued(t *testing.T, q *filequeue.Queue) []string {
	t.Helper()
	items, err := q.List()
	require.NoError(t, err)
	var names []string
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}

func newUploader(h *harness, q FileQueue, opts ...UploadOption) *UploadService {
	return NewUploadService(h.factory, h.codec, h.resolver, q, h.st, h.log, opts...)
}

func TestRunBatch_DeletesOnSuccessKeepsOnTimeout(t *testing.T) {
	h := newHarness(t, 200*time.Millisecond)
	h.registerDevice(t)
	h.srv.reply(urls.PathUpload, func(w http.ResponseWriter, req recorded) {
		if req.param("file_name") == "b.csv" {
			time.Sleep(time.Second)
		}
		w.WriteHeader(http.StatusOK)
	})
	q := newQueue(t, map[string]string{"a.csv": "hello", "b.csv": "slow!", "c.csv": "after"})

	err := newUploader(h, q).RunBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"b.csv"}, queued(t, q))

	reqs := h.srv.seen()
	require.Len(t, reqs, 3)
	block := client.SecurityParameters("abc123", cryptox.SafeHash("newpass1"), h.device.HashedAndroidID())
	assert.Equal(t, block+"file_name=a.csv&file=hello", reqs[0].body)
	assert.Equal(t, "c.csv", reqs[2].param("file_name"))
}

func TestRunBatch_RejectedFileKept(t *testing.T) {
	h := newHarness(t, time.Second)
	h.registerDevice(t)
	h.srv.reply(urls.PathUpload, func(w http.ResponseWriter, req recorded) {
		if req.param("file_name") == "bad.csv" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	q := newQueue(t, map[string]string{"bad.csv": "x", "good.csv": "y"})

	require.NoError(t, newUploader(h, q).RunBatch(context.Background()))
	assert.Equal(t, []string{"bad.csv"}, queued(t, q))
}

func TestRunBatch_EarlyRejectionKeepsServerStatus(t *testing.T) {
	h := newHarness(t, time.Second)
	h.registerDevice(t)
	h.srv.answerEarly(urls.PathUpload, http.StatusForbidden)
	q := newQueue(t, map[string]string{"big.csv": strings.Repeat("x", 8<<20)})

	var buf bytes.Buffer
	up := NewUploadService(h.factory, h.codec, h.resolver, q, h.st, logging.New(&buf, "debug"))
	require.NoError(t, up.RunBatch(context.Background()))

	assert.Equal(t, []string{"big.csv"}, queued(t, q))
	assert.Contains(t, buf.String(), "upload rejected")
	assert.Contains(t, buf.String(), "code=403")
	assert.NotContains(t, buf.String(), "code=502")
}

func TestRunBatch_LargeFileStreamedInChunks(t *testing.T) {
	h := newHarness(t, time.Second)
	h.registerDevice(t)
	payload := strings.Repeat("0123456789", 20_000)
	q := newQueue(t, map[string]string{"big.csv": payload})

	require.NoError(t, newUploader(h, q).RunBatch(context.Background()))
	assert.Empty(t, queued(t, q))

	reqs := h.srv.seen()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasSuffix(reqs[0].body, "file="+payload))
}

func TestRunBatch_NotRegistered(t *testing.T) {
	h := newHarness(t, time.Second)
	q := newQueue(t, map[string]string{"a.csv": "hello"})

	err := newUploader(h, q).RunBatch(context.Background())
	require.ErrorIs(t, err, common.ErrNotRegistered)
	assert.Empty(t, h.srv.seen())
	assert.Equal(t, []string{"a.csv"}, queued(t, q))
}

func TestRunBatch_DeadlineInPast(t *testing.T) {
	h := newHarness(t, time.Second)
	h.registerDevice(t)
	q := newQueue(t, map[string]string{"a.csv": "1", "b.csv": "2"})
	ctx := context.Background()

	err := newUploader(h, q, WithUploadCeiling(-time.Minute)).RunBatch(ctx)
	require.ErrorIs(t, err, client.ErrBatchDeadline)
	assert.Equal(t, client.CodeUploadAborted, client.ResponseCode(err, 0))

	assert.Empty(t, h.srv.seen())
	assert.Equal(t, []string{"a.csv", "b.csv"}, queued(t, q))

	lines, err := h.st.DebugLog(ctx, 0)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0].Message, "upload time limit")

	crashes, err := h.st.Crashes(ctx)
	require.NoError(t, err)
	assert.Len(t, crashes, 1)
}

func TestRunBatch_AbortsMidFile(t *testing.T) {
	h := newHarness(t, time.Second)
	h.registerDevice(t)
	q := newQueue(t, map[string]string{"a.csv": strings.Repeat("x", 64), "b.csv": "y"})

	// Calls: deadline, pre-file check, first chunk; the second chunk is late.
	start := time.Now()
	var calls atomic.Int32
	clock := func() time.Time {
		if calls.Add(1) <= 3 {
			return start
		}
		return start.Add(2 * time.Hour)
	}

	err := newUploader(h, q, WithClock(clock), WithChunkSize(4)).RunBatch(context.Background())
	require.ErrorIs(t, err, client.ErrBatchDeadline)

	assert.Equal(t, []string{"a.csv", "b.csv"}, queued(t, q))
	for _, r := range h.srv.seen() {
		assert.NotEqual(t, "b.csv", r.param("file_name"), "batch must stop after an aborted file")
	}
}

func TestRunBatch_SingleFlight(t *testing.T) {
	h := newHarness(t, time.Second)
	h.registerDevice(t)
	var perFile sync.Map
	h.srv.reply(urls.PathUpload, func(w http.ResponseWriter, req recorded) {
		n, _ := perFile.LoadOrStore(req.param("file_name"), new(atomic.Int32))
		n.(*atomic.Int32).Add(1)
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	files := map[string]string{}
	for _, n := range []string{"1.csv", "2.csv", "3.csv", "4.csv", "5.csv"} {
		files[n] = "data-" + n
	}
	q := newQueue(t, files)
	up := newUploader(h, q)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, up.RunBatch(context.Background()))
		}()
	}
	wg.Wait()

	assert.Empty(t, queued(t, q))
	for name := range files {
		n, ok := perFile.Load(name)
		require.True(t, ok, name)
		assert.EqualValues(t, 1, n.(*atomic.Int32).Load(), name)
	}
	h.srv.mu.Lock()
	assert.Equal(t, 1, h.srv.maxInFlight)
	h.srv.mu.Unlock()
}

func TestRunBatch_MalformedUploadURL(t *testing.T) {
	h := newHarness(t, time.Second)
	h.registerDevice(t)
	ctx := context.Background()
	require.NoError(t, h.st.SetServerURL(ctx, "bad host"))
	q := newQueue(t, map[string]string{"a.csv": "1"})

	err := newUploader(h, q).RunBatch(ctx)
	require.ErrorIs(t, err, client.ErrMalformedURL)
	assert.Equal(t, []string{"a.csv"}, queued(t, q))

	crashes, err := h.st.Crashes(ctx)
	require.NoError(t, err)
	assert.Len(t, crashes, 1)
}
