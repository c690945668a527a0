package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return ctx.Err()
}

func TestRun_BoundedIterations(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := New(Config{
		Interval:      15 * time.Second,
		Now:           clock.Now,
		Sleep:         clock.Sleep,
		MaxIterations: 3,
	})

	var starts []time.Time
	err := s.Run(context.Background(), func(ctx context.Context) {
		starts = append(starts, clock.Now())
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(starts) != 3 {
		t.Fatalf("iterations = %d, want 3", len(starts))
	}
	if len(clock.sleeps) != 2 {
		t.Errorf("sleeps = %d, want 2 (no sleep after the last iteration)", len(clock.sleeps))
	}
	for i, d := range clock.sleeps {
		if d != 15*time.Second {
			t.Errorf("sleep[%d] = %v, want 15s", i, d)
		}
	}
	if got := starts[2].Sub(starts[0]); got != 30*time.Second {
		t.Errorf("span = %v, want 30s", got)
	}
}

func TestRun_NoCatchUpAfterOverrun(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := New(Config{Interval: 10 * time.Second, Now: clock.Now, Sleep: clock.Sleep, MaxIterations: 2})

	err := s.Run(context.Background(), func(ctx context.Context) {
		clock.now = clock.now.Add(25 * time.Second)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(clock.sleeps) != 1 || clock.sleeps[0] != 10*time.Second {
		t.Errorf("sleeps = %v, want one full 10s sleep", clock.sleeps)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := &fakeClock{now: time.Unix(0, 0)}
	s := New(Config{Interval: time.Second, Now: clock.Now, Sleep: clock.Sleep})

	n := 0
	err := s.Run(ctx, func(ctx context.Context) {
		n++
		if n == 2 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if n != 2 {
		t.Errorf("iterations = %d, want 2", n)
	}
}

func TestSleep_ReturnsEarlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep did not return early")
	}
}

func TestSleep_Elapses(t *testing.T) {
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Errorf("err = %v", err)
	}
}
