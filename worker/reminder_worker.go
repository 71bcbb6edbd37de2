package worker

import (
	"log"
	"time"

	"cmfs/service"
)

// ReminderWorker periodically notifies officers of complaints whose
// escalation deadline is approaching.
type ReminderWorker struct {
	escalations *service.EscalationService
	interval    time.Duration
	window      time.Duration
	stopChan    chan struct{}
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(escalations *service.EscalationService, interval, window time.Duration) *ReminderWorker {
	return &ReminderWorker{
		escalations: escalations,
		interval:    interval,
		window:      window,
		stopChan:    make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *ReminderWorker) Start() {
	log.Printf("[WORKER] Reminder worker started (interval: %s, window: %s)", w.interval, w.window)
	go w.run()
}

// Stop signals the worker to exit.
func (w *ReminderWorker) Stop() {
	close(w.stopChan)
	log.Println("[WORKER] Reminder worker stopped")
}

func (w *ReminderWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

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

// RunOnce executes one reminder pass.
func (w *ReminderWorker) RunOnce() {
	sent, err := w.escalations.SendReminders(time.Now().UTC(), w.window)
	if err != nil {
		log.Printf("[WORKER] Reminder pass failed: %v", err)
		return
	}
	if sent > 0 {
		log.Printf("[WORKER] Sent %d deadline reminders", sent)
	}
}
