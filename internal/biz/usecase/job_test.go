package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Chen-DaYi/WeChatAnalysis/internal/biz/domain"
)

type mockCycle struct {
	errs  []error // returned in order; nil means success
	calls int
}

func (m *mockCycle) RunCycle(ctx context.Context) (*CycleReport, error) {
	m.calls++
	if m.calls <= len(m.errs) && m.errs[m.calls-1] != nil {
		return nil, m.errs[m.calls-1]
	}
	return &CycleReport{}, nil
}

func newTestRunner(cycle CycleRunner, notifier *mockRelayRepo, operator string) (*JobRunner, *[]time.Duration) {
	runner := NewJobRunner(cycle, notifier, JobConfig{
		OperatorID: operator,
		RetryLimit: 3,
		Cooldown:   30 * time.Second,
	})
	var waits []time.Duration
	runner.wait = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return runner, &waits
}

func TestJobRunner_Success(t *testing.T) {
	notifier := &mockRelayRepo{}
	runner, waits := newTestRunner(&mockCycle{}, notifier, "operator")

	state, outcome := runner.Run(context.Background(), domain.RetryState{Count: 2})

	if outcome.Kind != domain.OutcomeSuccess {
		t.Errorf("Expected success, got %s", outcome.Kind)
	}
	if state.Count != 0 {
		t.Errorf("Expected count reset to 0, got %d", state.Count)
	}
	if len(notifier.sent) != 0 || len(*waits) != 0 {
		t.Error("Expected no notifications or cooldown on success")
	}
}

func TestJobRunner_EscalatesAfterLimit(t *testing.T) {
	boom := errors.New("boom")
	cycle := &mockCycle{errs: []error{boom, boom, boom, boom}}
	notifier := &mockRelayRepo{}
	runner, waits := newTestRunner(cycle, notifier, "operator")

	state := domain.RetryState{}
	var outcome domain.CycleOutcome
	for i := 0; i < 3; i++ {
		state, outcome = runner.Run(context.Background(), state)
		if outcome.Kind != domain.OutcomeRetriable {
			t.Fatalf("Run %d: expected retriable failure, got %s", i+1, outcome.Kind)
		}
		if !errors.Is(outcome.Err, boom) {
			t.Errorf("Run %d: expected original error, got %v", i+1, outcome.Err)
		}
	}
	if state.Count != 3 {
		t.Fatalf("Expected count 3, got %d", state.Count)
	}
	if len(*waits) != 3 {
		t.Errorf("Expected 3 cooldowns, got %d", len(*waits))
	}
	if len(notifier.sent) != 6 {
		t.Fatalf("Expected 6 operator messages, got %d", len(notifier.sent))
	}
	if notifier.sent[4].text != "分析失败，请手动分析（第3次）" || notifier.sent[5].text != "boom" {
		t.Errorf("Unexpected third notice: %q / %q", notifier.sent[4].text, notifier.sent[5].text)
	}

	state, outcome = runner.Run(context.Background(), state)
	if outcome.Kind != domain.OutcomeSuppressed {
		t.Fatalf("Expected suppressed failure, got %s", outcome.Kind)
	}
	if outcome.Failed() {
		t.Error("Expected suppressed outcome not to be reported as failed")
	}
	if state.Count != 4 {
		t.Errorf("Expected count 4, got %d", state.Count)
	}
	if len(*waits) != 3 {
		t.Error("Expected no cooldown once the limit is exceeded")
	}
	last := notifier.sent[len(notifier.sent)-1]
	if last.text != "!!! 重试超过3次，停止任务 !!!" {
		t.Errorf("Expected stop notice, got %q", last.text)
	}
	if last.targets[0] != "operator" {
		t.Errorf("Expected notice to operator, got %v", last.targets)
	}
}

func TestJobRunner_SuccessResetsStreak(t *testing.T) {
	boom := errors.New("boom")
	cycle := &mockCycle{errs: []error{boom, boom, nil, boom}}
	runner, _ := newTestRunner(cycle, &mockRelayRepo{}, "operator")

	state := domain.RetryState{}
	for i := 0; i < 4; i++ {
		state, _ = runner.Run(context.Background(), state)
	}
	if state.Count != 1 {
		t.Errorf("Expected count 1 after reset, got %d", state.Count)
	}
}

func TestJobRunner_NoOperator(t *testing.T) {
	cycle := &mockCycle{errs: []error{errors.New("boom")}}
	notifier := &mockRelayRepo{}
	runner, _ := newTestRunner(cycle, notifier, "")

	state, outcome := runner.Run(context.Background(), domain.RetryState{})
	if outcome.Kind != domain.OutcomeRetriable {
		t.Errorf("Expected retriable failure, got %s", outcome.Kind)
	}
	if state.Count != 1 {
		t.Errorf("Expected count 1, got %d", state.Count)
	}
	if len(notifier.sent) != 0 {
		t.Error("Expected no notifications without an operator")
	}
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if err := sleepContext(context.Background(), 0); err != nil {
		t.Errorf("Expected nil for zero duration, got %v", err)
	}
}
