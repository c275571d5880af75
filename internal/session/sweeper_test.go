package session

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestSweeperRunStopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(0, nil)
	sw := NewSweeper(s, 24*time.Hour, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}

func TestSweeperRemovesStaleSessions(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(0, nil)
	s.Append("stale", RoleUser, "hello", nil)
	s.mu.Lock()
	s.sessions["stale"].lastActivity = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	sw := NewSweeper(s, 30*time.Minute, 5*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		if !s.Info("stale").Exists {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if s.Info("stale").Exists {
		t.Error("stale session survived sweeper run")
	}
}
