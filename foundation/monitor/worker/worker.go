// Package worker implements the polling loop that drives the sync monitor.
package worker

import (
	"sync"
	"time"

	"github.com/abumaher/syncwatch/foundation/monitor/state"
)

// defaultPollInterval represents the interval of time between two polling
// cycles when no interval is configured.
const defaultPollInterval = 30 * time.Second

// Worker manages the polling workflow for the sync monitor.
type Worker struct {
	state     *state.State
	wg        sync.WaitGroup
	ticker    *time.Ticker
	shut      chan struct{}
	evHandler state.EventHandler
}

// Run creates a Worker, registers the Worker with the state package, and
// starts up the background polling operation. An initial cycle runs before
// the background goroutine starts so the first status is available
// immediately.
func Run(st *state.State, interval time.Duration, evHandler state.EventHandler) {
	if interval <= 0 {
		interval = defaultPollInterval
	}

	w := Worker{
		state:     st,
		ticker:    time.NewTicker(interval),
		shut:      make(chan struct{}),
		evHandler: evHandler,
	}

	// Register this Worker with the state package.
	st.Worker = &w

	// Poll every node once before starting any support G's.
	w.Sync()

	// Don't return until the polling G is up and running.
	hasStarted := make(chan bool)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.pollOperations()
	}()

	<-hasStarted
}

// Shutdown terminates the goroutine performing work. Any in-flight cycle,
// including its registry write, completes before Shutdown returns.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.ticker.Stop()
	close(w.shut)
	w.wg.Wait()
}

// pollOperations runs polling cycles until shutdown is signaled.
func (w *Worker) pollOperations() {
	w.evHandler("worker: pollOperations: G started")
	defer w.evHandler("worker: pollOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			w.Sync()
		case <-w.shut:
			w.evHandler("worker: pollOperations: received shut signal")
			return
		}
	}
}
