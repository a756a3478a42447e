package parallel

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dd0wney/cluso-netplan/pkg/logging"
)

func TestWorkerPoolBasicOperations(t *testing.T) {
	pool, err := NewWorkerPool(4, nil)
	if err != nil {
		t.Fatalf("NewWorkerPool: %v", err)
	}

	executed := false
	if !pool.Submit(func() { executed = true }) {
		t.Error("Task submission failed")
	}
	pool.Close()

	if !executed {
		t.Error("Task was not executed")
	}
}

func TestWorkerPoolDefaultsToGOMAXPROCS(t *testing.T) {
	pool, err := NewWorkerPool(0, nil)
	if err != nil {
		t.Fatalf("NewWorkerPool: %v", err)
	}
	defer pool.Close()

	if pool.Workers() < 1 {
		t.Errorf("Workers() = %d, want at least 1", pool.Workers())
	}
}

func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool, err := NewWorkerPool(10, nil)
	if err != nil {
		t.Fatalf("NewWorkerPool: %v", err)
	}

	const numTasks = 100
	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < numTasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Submit(func() { atomic.AddInt64(&counter, 1) })
		}()
	}
	wg.Wait()
	pool.Close()

	if counter != numTasks {
		t.Errorf("Expected counter %d, got %d", numTasks, counter)
	}
}

func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool, err := NewWorkerPool(2, nil)
	if err != nil {
		t.Fatalf("NewWorkerPool: %v", err)
	}
	pool.Close()
	pool.Close()

	if pool.Submit(func() {}) {
		t.Error("Submit after Close should return false")
	}
}

func TestWorkerPoolRecoversPanics(t *testing.T) {
	var buf bytes.Buffer
	pool, err := NewWorkerPool(1, logging.NewJSONLogger(&buf, logging.DebugLevel))
	if err != nil {
		t.Fatalf("NewWorkerPool: %v", err)
	}

	ran := false
	pool.Submit(func() { panic("boom") })
	pool.Submit(func() { ran = true })
	pool.Close()

	if !ran {
		t.Error("worker stopped after a panicking task")
	}
	if !strings.Contains(buf.String(), "worker task panicked") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestMapPreservesOrder(t *testing.T) {
	in := []int{5, 3, 8, 1, 9, 2}
	out, err := Map(context.Background(), 3, nil, in, func(n int) (int, error) {
		return n * n, nil
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	for i, n := range in {
		if out[i] != n*n {
			t.Errorf("out[%d] = %d, want %d", i, out[i], n*n)
		}
	}
}

func TestMapEmpty(t *testing.T) {
	out, err := Map(context.Background(), 4, nil, []string(nil), func(s string) (int, error) {
		return len(s), nil
	})
	if err != nil || len(out) != 0 {
		t.Errorf("Map(empty) = %v, %v", out, err)
	}
}

func TestMapReturnsError(t *testing.T) {
	errOdd := errors.New("odd")
	_, err := Map(context.Background(), 2, nil, []int{2, 4, 5, 6}, func(n int) (int, error) {
		if n%2 == 1 {
			return 0, errOdd
		}
		return n, nil
	})
	if !errors.Is(err, errOdd) {
		t.Errorf("err = %v, want %v", err, errOdd)
	}
}

func TestMapReportsPanics(t *testing.T) {
	out, err := Map(context.Background(), 2, nil, []int{1, 2, 3}, func(n int) (int, error) {
		if n == 2 {
			panic("bad input")
		}
		return n * 10, nil
	})
	if err == nil {
		t.Fatalf("Expected an error for the panicking task, got results %v", out)
	}
	if !strings.Contains(err.Error(), "task 1 panicked") || !strings.Contains(err.Error(), "bad input") {
		t.Errorf("Unexpected error %q", err)
	}
	if out != nil {
		t.Errorf("Expected no results alongside the error, got %v", out)
	}
}

func TestMapCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	_, err := Map(ctx, 2, nil, []int{1, 2, 3}, func(n int) (int, error) {
		atomic.AddInt64(&calls, 1)
		return n, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("fn called %d times after cancellation", calls)
	}
}
