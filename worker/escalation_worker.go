// Package worker runs the background passes: the periodic escalation sweep
// and the pre-deadline reminder pass.
package worker

import (
	"log"
	"sync/atomic"
	"time"

	"cmfs/service"
)

// EscalationWorker runs the escalation sweep on a fixed interval. At most one
// sweep runs at a time: if a tick fires while the previous sweep is still
// going, that tick is skipped.
type EscalationWorker struct {
	escalations *service.EscalationService
	interval    time.Duration
	stopChan    chan struct{}
	running     atomic.Bool
}

// NewEscalationWorker creates a new escalation worker
func NewEscalationWorker(escalations *service.EscalationService, interval time.Duration) *EscalationWorker {
	return &EscalationWorker{
		escalations: escalations,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start launches the worker goroutine. A first sweep runs immediately so a
// restart catches up on overdue complaints without waiting a full interval.
func (w *EscalationWorker) Start() {
	log.Printf("[WORKER] Escalation worker started (interval: %s)", w.interval)
	go w.run()
}

// Stop signals the worker to exit. A sweep already in flight finishes.
func (w *EscalationWorker) Stop() {
	close(w.stopChan)
	log.Println("[WORKER] Escalation worker stopped")
}

func (w *EscalationWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Catch up on overdue complaints right away.
	w.RunOnce()

	for {
		select {
		case <-ticker.C:
			w.RunOnce()
		case <-w.stopChan:
			return
		}
	}
}

// RunOnce executes one sweep unless another is already in progress, in which
// case it reports false without sweeping.
func (w *EscalationWorker) RunOnce() bool {
	if !w.running.CompareAndSwap(false, true) {
		log.Println("[WORKER] Skipping sweep: previous sweep still running")
		return false
	}
	defer w.running.Store(false)

	started := time.Now()
	result, err := w.escalations.Sweep(time.Now().UTC())
	if err != nil {
		log.Printf("[WORKER] Sweep aborted: %v", err)
		return true
	}
	log.Printf("[WORKER] Sweep done in %s: checked=%d escalated=%d failed=%d errors=%d",
		time.Since(started).Round(time.Millisecond),
		result.TotalChecked, result.Escalated, result.Failed, len(result.Errors))
	return true
}
