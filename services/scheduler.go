// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// SnapshotScheduler runs global snapshots at fixed instants, e.g. right before a release wave.
type SnapshotScheduler struct {
	sched     gocron.Scheduler
	clock     clockwork.Clock
	snapshots *SnapshotService
	logger    *slog.Logger
}

func NewSnapshotScheduler(snapshots *SnapshotService, clock clockwork.Clock, logger *slog.Logger) (*SnapshotScheduler, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &SnapshotScheduler{sched: sched, clock: clock, snapshots: snapshots, logger: logger}, nil
}

// Schedule adds a one-time snapshot job per instant still in the future and returns how many
// were added. Jobs are labelled scheduled-<n> by their position in times.
func (s *SnapshotScheduler) Schedule(times []time.Time) (int, error) {
	now := s.clock.Now()
	added := 0
	for i, at := range times {
		label := fmt.Sprintf("scheduled-%d", i+1)
		if !at.After(now) {
			s.logger.Warn("[Scheduler] Skipping snapshot in the past", "label", label, "at", at)
			continue
		}
		_, err := s.sched.NewJob(
			gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
			gocron.NewTask(func() {
				run, err := s.snapshots.TakeGlobalSnapshot(context.Background(), label)
				if err != nil {
					s.logger.Error("[Scheduler] Snapshot failed", "label", label, "err", err)
					return
				}
				s.logger.Info("[Scheduler] Snapshot taken", "label", label, "entrants", run.EntrantCount)
			}),
			gocron.WithName(label),
		)
		if err != nil {
			return added, fmt.Errorf("failed to schedule %s: %w", label, err)
		}
		added++
	}
	return added, nil
}

func (s *SnapshotScheduler) Pending() int {
	return len(s.sched.Jobs())
}

func (s *SnapshotScheduler) Start() {
	s.sched.Start()
}

func (s *SnapshotScheduler) Shutdown() error {
	return s.sched.Shutdown()
}
