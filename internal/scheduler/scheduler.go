package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/example/hwnotify/internal/dispatcher"
)

// Scheduler invokes the dispatcher once per minute. Slot matching is exact to
// the minute, so a skipped tick silently misses that minute's slots; there is
// no catch-up.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	dispatcher *dispatcher.Dispatcher
	log        *zap.Logger
}

// New creates a scheduler bound to the reference time zone so gocron's clock
// agrees with the dispatcher's.
func New(d *dispatcher.Dispatcher, loc *time.Location, log *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler:  gocron.NewScheduler(loc),
		dispatcher: d,
		log:        log,
	}
}

// Start begins running the dispatch job in a non-blocking manner.
func (s *Scheduler) Start(ctx context.Context) error {
	// SingletonMode is a second overlap guard on top of the dispatcher's own.
	_, err := s.scheduler.Every(1).Minute().SingletonMode().Do(func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates the scheduled job.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.dispatcher.RunCycle(ctx); err != nil {
		if errors.Is(err, dispatcher.ErrCycleInProgress) {
			s.log.Warn("previous dispatch cycle still running, tick dropped")
			return
		}
		s.log.Error("dispatch cycle failed", zap.Error(err))
	}
}
