package worker

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPool_SubmitAndWait(t *testing.T) {
	pool := NewPool(testLogger())
	defer pool.Shutdown(time.Second)

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		pool.Submit(func(ctx context.Context) {
			count.Add(1)
		})
	}

	pool.Wait()
	assert.EqualValues(t, 10, count.Load())
}

func TestPool_ShutdownCancelsContext(t *testing.T) {
	pool := NewPool(testLogger())

	cancelled := make(chan struct{})
	pool.Submit(func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	})

	pool.Shutdown(time.Second)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled on shutdown")
	}
}

func TestPool_ShutdownTimeout(t *testing.T) {
	pool := NewPool(testLogger())

	release := make(chan struct{})
	pool.Submit(func(ctx context.Context) {
		<-release
	})

	start := time.Now()
	pool.Shutdown(50 * time.Millisecond)
	assert.Less(t, time.Since(start), time.Second)

	close(release)
	pool.Wait()
}
