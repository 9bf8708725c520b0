package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/wordmaster/pkg/models"
)

// Константы для настроек синхронизации по умолчанию
const (
	DefaultSyncIntervalMinutes = 5
	DefaultBatchTimeout        = 60 * time.Second
)

// BatchSyncer runs one pass over all pending sessions
type BatchSyncer interface {
	SyncAllPendingSessions(ctx context.Context, userID string) models.SyncSummary
}

// Scheduler triggers batch syncs on a fixed interval and on network
// reconnect events
type Scheduler struct {
	scheduler *gocron.Scheduler
	syncer    BatchSyncer
	userID    string
	online    chan struct{}
	done      chan struct{}
}

// New creates a new scheduler instance
func New(syncer BatchSyncer, userID string) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		syncer:    syncer,
		userID:    userID,
		online:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Start begins running the periodic sync and the reconnect listener
func (s *Scheduler) Start() {
	interval := DefaultSyncIntervalMinutes
	if intervalStr := os.Getenv("SYNC_INTERVAL_MINUTES"); intervalStr != "" {
		if m, err := strconv.Atoi(intervalStr); err == nil && m > 0 {
			interval = m
		}
	}

	s.scheduler.Every(interval).Minutes().Do(s.runBatch)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()

	go func() {
		for {
			select {
			case <-s.online:
				log.Printf("Network back online, running sync")
				s.runBatch()
			case <-s.done:
				return
			}
		}
	}()
}

// NotifyOnline signals a network-reconnect event. Safe to call from any
// goroutine; coalesces while a run is already queued.
func (s *Scheduler) NotifyOnline() {
	select {
	case s.online <- struct{}{}:
	default:
	}
}

// Stop terminates the periodic job and the reconnect listener
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	close(s.done)
}

func (s *Scheduler) runBatch() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultBatchTimeout)
	defer cancel()

	summary := s.syncer.SyncAllPendingSessions(ctx, s.userID)
	if summary.Synced > 0 || summary.Failed > 0 || summary.Conflicts > 0 {
		log.Printf("Batch sync done: %d synced, %d failed, %d conflicts",
			summary.Synced, summary.Failed, summary.Conflicts)
	}
}
