package analyzer

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewWorkerPool(t *testing.T) {
	pool := NewWorkerPool(4)
	if pool == nil {
		t.Fatal("Expected non-nil worker pool")
	}
	if pool.Workers() != 4 {
		t.Errorf("Expected 4 workers, got %d", pool.Workers())
	}
}

func TestNewWorkerPool_ZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool.Workers() <= 0 {
		t.Errorf("Expected a positive default worker count, got %d", pool.Workers())
	}
}

func TestWorkerPool_Submit(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Close()

	var counter int
	var mu sync.Mutex

	for i := 0; i < 5; i++ {
		if !pool.Submit(func() {
			mu.Lock()
			counter++
			mu.Unlock()
		}) {
			t.Fatal("Expected Submit to accept the job")
		}
	}

	pool.Wait()

	if counter != 5 {
		t.Errorf("Expected counter to be 5, got %d", counter)
	}
}

func TestWorkerPool_AnalyzesPhotosInOrder(t *testing.T) {
	a := newTestAnalyzer(t)
	pool := NewWorkerPool(3)
	pool.Start()
	defer pool.Close()

	greens := []byte{0, 60, 120, 180, 240, 200, 100}
	scores := make([]int, len(greens))

	for i, g := range greens {
		i, g := i, g
		pool.Submit(func() {
			result, err := a.Analyze(uniformBuffer(8, 8, 0, g, 0), DefaultOptions())
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			scores[i] = result.Metrics.HealthScore
		})
	}

	pool.Wait()

	for i, g := range greens {
		want := 0
		if g > 50 {
			want = int(float64(g)*100/255 + 0.5)
		}
		if scores[i] != want {
			t.Errorf("Photo %d (g=%d): expected score %d, got %d", i, g, want, scores[i])
		}
	}
}

func TestWorkerPool_StartOnce(t *testing.T) {
	pool := NewWorkerPool(2)

	pool.Start()
	pool.Start()
	defer pool.Close()

	var executed atomic.Bool
	pool.Submit(func() {
		executed.Store(true)
	})

	pool.Wait()

	if !executed.Load() {
		t.Error("Expected job to be executed")
	}
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Close()
	pool.Close()

	if pool.Submit(func() {}) {
		t.Error("Expected Submit to reject jobs after Close")
	}
	if stats := pool.GetStats(); stats.TotalJobs != 0 {
		t.Errorf("Expected rejected job not to be counted, got %d", stats.TotalJobs)
	}
}

func TestWorkerPool_RecoversFromPanic(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	defer pool.Close()

	var ran atomic.Int32
	pool.Submit(func() { panic("bad photo") })
	pool.Submit(func() { ran.Add(1) })

	pool.Wait()

	if ran.Load() != 1 {
		t.Error("Expected the worker to keep running after a panic")
	}
	stats := pool.GetStats()
	if stats.CompletedJobs != 2 {
		t.Errorf("Expected 2 completed jobs, got %d", stats.CompletedJobs)
	}
}

func TestWorkerPool_Stats(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Close()

	const numJobs = 20

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = pool.GetStats()
			}
		}()
	}

	for i := 0; i < numJobs; i++ {
		pool.Submit(func() {
			for j := 0; j < 1000; j++ {
				_ = j * j
			}
		})
	}

	wg.Wait()
	pool.Wait()

	stats := pool.GetStats()
	if stats.TotalJobs != numJobs {
		t.Errorf("Expected %d total jobs, got %d", numJobs, stats.TotalJobs)
	}
	if stats.CompletedJobs != numJobs {
		t.Errorf("Expected %d completed jobs, got %d", numJobs, stats.CompletedJobs)
	}
	if stats.ActiveWorkers != 0 {
		t.Errorf("Expected 0 active workers after completion, got %d", stats.ActiveWorkers)
	}
}
