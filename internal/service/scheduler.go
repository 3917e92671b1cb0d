package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
)

// Job runs one cycle under the retry policy
type Job interface {
	Run(ctx context.Context, state domain.RetryState) (domain.RetryState, domain.CycleOutcome)
}

// DailyScheduler fires the job at fixed times of day
type DailyScheduler struct {
	job   Job
	times []time.Duration // Offsets from midnight
	loc   *time.Location

	pollInterval time.Duration
	now          func() time.Time

	state domain.RetryState
	fired map[int]string // Slot index -> day it last fired

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDailyScheduler creates a new scheduler
func NewDailyScheduler(job Job, times []time.Duration, loc *time.Location) *DailyScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &DailyScheduler{
		job:          job,
		times:        times,
		loc:          loc,
		pollInterval: 10 * time.Second,
		now:          time.Now,
		fired:        make(map[int]string),
	}
}

// Start starts the scheduler. Times already past today wait for tomorrow.
func (s *DailyScheduler) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.prime(s.now())

	s.wg.Add(1)
	go s.loop()

	log.Printf("[Scheduler] Started with %d daily slots, poll interval %v", len(s.times), s.pollInterval)
}

// Stop stops the scheduler and waits for a running cycle to return
func (s *DailyScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	log.Println("[Scheduler] Stopped")
}

// Wait blocks until the scheduler loop exits
func (s *DailyScheduler) Wait() {
	s.wg.Wait()
}

func (s *DailyScheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(s.now())
		case <-s.ctx.Done():
			return
		}
	}
}

// prime marks slots already past as fired for today
func (s *DailyScheduler) prime(now time.Time) {
	s.dueSlots(now)
}

// tick runs the job once if any slot became due. Slots missed together
// (e.g. after a suspend) collapse into one run.
func (s *DailyScheduler) tick(now time.Time) bool {
	due := s.dueSlots(now)
	if len(due) == 0 {
		return false
	}

	log.Printf("[Scheduler] Slot %s due", formatOffset(s.times[due[len(due)-1]]))
	s.runJob()
	return true
}

// dueSlots returns the slots that reached their time today and have not
// fired yet, and marks them fired
func (s *DailyScheduler) dueSlots(now time.Time) []int {
	now = now.In(s.loc)
	day := now.Format(domain.DateLayout)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	var due []int
	for i, offset := range s.times {
		if s.fired[i] == day {
			continue
		}
		if !now.Before(midnight.Add(offset)) {
			s.fired[i] = day
			due = append(due, i)
		}
	}
	return due
}

// runJob repeats the job while it reports a retriable failure. The cooldown
// is spent inside the job.
func (s *DailyScheduler) runJob() {
	for {
		var outcome domain.CycleOutcome
		s.state, outcome = s.job.Run(s.ctx, s.state)
		log.Printf("[Scheduler] Cycle finished: %s (retry count %d)", outcome.Kind, s.state.Count)

		if outcome.Kind != domain.OutcomeRetriable || s.ctx.Err() != nil {
			return
		}
	}
}

func formatOffset(d time.Duration) string {
	return time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("15:04")
}
