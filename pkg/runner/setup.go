package runner

import (
	"context"
	"sync"
	"time"

	"github.com/coneno/logger"

	"github.com/cfstudy/checklist-backend/pkg/db"
)

const pingTimeout = 10 * time.Second

// SyncStatus is what the clients show in their sync indicator: which backend
// the service writes to, whether it answered the last probe, and when it was
// last reached.
type SyncStatus struct {
	Backend    string `json:"backend"`
	Healthy    bool   `json:"healthy"`
	LastSyncAt int64  `json:"lastSyncAt"`
	LastError  string `json:"lastError,omitempty"`
}

type Runner struct {
	store              db.ParticipantStore
	timerEventCooldown int64 // how often the timer event should be performed

	mu     sync.RWMutex
	status SyncStatus
}

func NewRunner(store db.ParticipantStore, timerEventCooldown int64) *Runner {
	return &Runner{
		store:              store,
		timerEventCooldown: timerEventCooldown,
		status: SyncStatus{
			Backend: store.BackendName(),
		},
	}
}

func (s *Runner) Run() {
	s.CheckStoreConnection()
	go s.startTimerThread()
}

func (s *Runner) startTimerThread() {
	// TODO: turn of gracefully
	for {
		delay := s.timerEventCooldown
		<-time.After(time.Duration(delay) * time.Second)
		s.CheckStoreConnection()
	}
}

// CheckStoreConnection probes the participant store and records the result.
func (s *Runner) CheckStoreConnection() {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	err := s.store.Ping(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		logger.Error.Printf("store connection check failed: %v", err)
		s.status.Healthy = false
		s.status.LastError = err.Error()
		return
	}
	s.status.Healthy = true
	s.status.LastSyncAt = time.Now().Unix()
	s.status.LastError = ""
}

func (s *Runner) Status() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}
