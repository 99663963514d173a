package driver_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/norumander/wow-server-sim/internal/driver"
)

func TestDriverInvokesCallbacksInOrderWithSequentialTicks(t *testing.T) {
	d := driver.New(driver.Config{TickRateHz: 1000})

	var seenTicks []uint64
	var order []int
	d.Register(func(tick uint64) {
		seenTicks = append(seenTicks, tick)
		order = append(order, 1)
	})
	d.Register(func(tick uint64) {
		order = append(order, 2)
	})
	d.Start()

	done := make(chan struct{})
	go func() {
		d.Run()
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	d.Stop()
	<-done

	if len(seenTicks) < 2 {
		t.Fatalf("expected multiple ticks to run, got %d", len(seenTicks))
	}
	for i, tk := range seenTicks {
		if tk != uint64(i) {
			t.Fatalf("expected sequential zero-indexed ticks, got %v", seenTicks)
		}
	}
	if len(order) < 4 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected callbacks invoked in registration order, got %v", order)
	}
}

func TestDriverStopIsIdempotent(t *testing.T) {
	d := driver.New(driver.DefaultConfig())
	d.Start()
	go d.Run()
	time.Sleep(5 * time.Millisecond)
	d.Stop()
	d.Stop()
	d.Wait()
}

func TestDriverWithoutStartNeverRuns(t *testing.T) {
	d := driver.New(driver.DefaultConfig())
	var called atomic.Bool
	d.Register(func(uint64) { called.Store(true) })
	d.Run()
	if called.Load() {
		t.Fatalf("expected Run to no-op without Start")
	}
}
