package fanout_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/osprey/internal/app/system/fanout"
)

func TestGather_PreservesOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	got, err := fanout.Gather(context.Background(), time.Second, items, func(ctx context.Context, n int) (int, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * 10, nil
	})
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for i, n := range items {
		if got[i] != n*10 {
			t.Errorf("got[%d] = %d, want %d", i, got[i], n*10)
		}
	}
}

func TestGather_FailsOnAnyError(t *testing.T) {
	boom := errors.New("boom")
	_, err := fanout.Gather(context.Background(), time.Second, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestGather_Timeout(t *testing.T) {
	_, err := fanout.Gather(context.Background(), 20*time.Millisecond, []int{1}, func(ctx context.Context, n int) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGather_Empty(t *testing.T) {
	got, err := fanout.Gather(context.Background(), time.Second, []int{}, func(ctx context.Context, n int) (int, error) {
		return n, nil
	})
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v, %v", got, err)
	}
}

func TestAny_HitCancelsSiblings(t *testing.T) {
	var cancelled atomic.Int32
	hit, err := fanout.Any(context.Background(), time.Second, []int{0, 1, 2}, func(ctx context.Context, n int) (bool, error) {
		if n == 0 {
			return true, nil
		}
		select {
		case <-ctx.Done():
			cancelled.Add(1)
			return false, ctx.Err()
		case <-time.After(500 * time.Millisecond):
			return false, nil
		}
	})
	if err != nil {
		t.Fatalf("Any: %v", err)
	}
	if !hit {
		t.Fatal("expected hit")
	}
	if cancelled.Load() != 2 {
		t.Errorf("expected 2 cancelled siblings, got %d", cancelled.Load())
	}
}

func TestAny_NoHit(t *testing.T) {
	hit, err := fanout.Any(context.Background(), time.Second, []string{"a", "b"}, func(ctx context.Context, s string) (bool, error) {
		return false, nil
	})
	if err != nil || hit {
		t.Fatalf("expected (false, nil), got (%v, %v)", hit, err)
	}
}

func TestAny_ErrorWithoutHit(t *testing.T) {
	boom := errors.New("boom")
	hit, err := fanout.Any(context.Background(), time.Second, []int{1, 2}, func(ctx context.Context, n int) (bool, error) {
		if n == 2 {
			return false, boom
		}
		return false, nil
	})
	if hit || !errors.Is(err, boom) {
		t.Fatalf("expected (false, boom), got (%v, %v)", hit, err)
	}
}

func TestAny_HitWinsOverError(t *testing.T) {
	hit, err := fanout.Any(context.Background(), time.Second, []int{1, 2}, func(ctx context.Context, n int) (bool, error) {
		if n == 2 {
			return false, errors.New("boom")
		}
		return true, nil
	})
	if err != nil || !hit {
		t.Fatalf("expected (true, nil), got (%v, %v)", hit, err)
	}
}
