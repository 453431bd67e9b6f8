package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRecomputer struct {
	calls atomic.Int64
	err   error
}

func (f *fakeRecomputer) RecomputeAnnouncement(ctx context.Context) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return "announcement", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_Ticks(t *testing.T) {
	rec := &fakeRecomputer{}
	s := New(rec, 20*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 110*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	if rec.calls.Load() < 3 {
		t.Fatalf("expected at least 3 ticks, got %d", rec.calls.Load())
	}
}

func TestScheduler_KeepsTickingAfterError(t *testing.T) {
	rec := &fakeRecomputer{err: errors.New("db down")}
	s := New(rec, 20*time.Millisecond, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 70*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	if rec.calls.Load() < 2 {
		t.Fatalf("expected ticks to continue after an error, got %d", rec.calls.Load())
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := New(&fakeRecomputer{}, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}
