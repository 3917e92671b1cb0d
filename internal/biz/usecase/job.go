package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/repo"
)

// CycleRunner runs one analysis cycle
type CycleRunner interface {
	RunCycle(ctx context.Context) (*CycleReport, error)
}

// JobConfig configures the failure policy
type JobConfig struct {
	OperatorID string // Notified on failure, empty to disable
	RetryLimit int
	Cooldown   time.Duration
}

// DefaultJobConfig is the standard failure policy
var DefaultJobConfig = JobConfig{
	RetryLimit: 3,
	Cooldown:   30 * time.Second,
}

// JobRunner wraps a cycle with failure notification and retry escalation
type JobRunner struct {
	cycle    CycleRunner
	notifier repo.RelayRepo
	config   JobConfig
	wait     func(ctx context.Context, d time.Duration) error
}

// NewJobRunner creates a new job runner
func NewJobRunner(cycle CycleRunner, notifier repo.RelayRepo, config JobConfig) *JobRunner {
	return &JobRunner{
		cycle:    cycle,
		notifier: notifier,
		config:   config,
		wait:     sleepContext,
	}
}

// Run executes one cycle and returns the updated retry state.
// Past the retry limit the error is absorbed (FatalSuppressed) without a
// cooldown; below it the runner cools down and reports RetriableFailure.
func (r *JobRunner) Run(ctx context.Context, state domain.RetryState) (domain.RetryState, domain.CycleOutcome) {
	_, err := r.cycle.RunCycle(ctx)
	if err == nil {
		return state.Reset(), domain.Success()
	}

	state = state.Next()
	log.Printf("[Job] Cycle failed (attempt %d): %v", state.Count, err)

	r.notify(ctx, fmt.Sprintf("分析失败，请手动分析（第%d次）", state.Count))
	r.notify(ctx, err.Error())

	if state.Exceeded(r.config.RetryLimit) {
		r.notify(ctx, fmt.Sprintf("!!! 重试超过%d次，停止任务 !!!", r.config.RetryLimit))
		log.Printf("[Job] Retry limit %d exceeded, giving up", r.config.RetryLimit)
		return state, domain.FatalSuppressed(err)
	}

	if werr := r.wait(ctx, r.config.Cooldown); werr != nil {
		log.Printf("[Job] Cooldown interrupted: %v", werr)
	}
	return state, domain.RetriableFailure(err)
}

func (r *JobRunner) notify(ctx context.Context, text string) {
	if r.config.OperatorID == "" || r.notifier == nil {
		return
	}
	if err := r.notifier.SendText(context.WithoutCancel(ctx), []string{r.config.OperatorID}, text); err != nil {
		log.Printf("[Job] Failed to notify operator: %v", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
