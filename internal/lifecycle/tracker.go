package lifecycle

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"spendlens/internal/domain"
)

// Snapshot is a consistent, copy-on-read view of the tracker.
type Snapshot struct {
	Status     domain.LifecycleStatus    `json:"status"`
	Loading    bool                      `json:"loading"`
	StepIndex  int                       `json:"step_index"`
	StepLabel  string                    `json:"step_label"`
	TotalSteps int                       `json:"total_steps"`
	Error      string                    `json:"error,omitempty"`
	ErrorKind  string                    `json:"-"`
	Token      uint64                    `json:"token"`
	StartedAt  *time.Time                `json:"started_at,omitempty"`
	FinishedAt *time.Time                `json:"finished_at,omitempty"`
	Analysis   *domain.FinancialAnalysis `json:"analysis,omitempty"`
}

// Run is one request admitted by Begin. Its context is cancelled when the
// run is superseded or finished.
type Run struct {
	Token uint64
	ctx   context.Context
}

// Context returns the run's context.
func (r *Run) Context() context.Context {
	return r.ctx
}

// Tracker owns the lifecycle of the single in-flight analysis. A new Begin
// supersedes the previous run; results carrying a stale token are dropped.
type Tracker struct {
	steps    []string
	interval time.Duration
	log      *zap.Logger

	mu         sync.Mutex
	status     domain.LifecycleStatus
	step       int
	token      uint64
	cancel     context.CancelFunc
	stopTicker chan struct{}
	err        error
	analysis   *domain.FinancialAnalysis
	startedAt  time.Time
	finishedAt time.Time
}

// NewTracker creates an idle Tracker. Empty steps or a non-positive interval
// fall back to the defaults.
func NewTracker(steps []string, interval time.Duration, log *zap.Logger) *Tracker {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	if interval <= 0 {
		interval = DefaultStepInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		steps:    slices.Clone(steps),
		interval: interval,
		log:      log,
		status:   domain.StatusIdle,
	}
}

// Begin enters Loading with a fresh token from any state. The previous run,
// if still in flight, is cancelled.
func (t *Tracker) Begin(parent context.Context) *Run {
	ctx, cancel := context.WithCancel(parent)
	stop := make(chan struct{})

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status == domain.StatusLoading {
		t.log.Info("lifecycle.Tracker: superseding in-flight run", zap.Uint64("token", t.token))
	}
	t.finishRunLocked()

	t.token++
	t.status = domain.StatusLoading
	t.step = 0
	t.err = nil
	t.analysis = nil
	t.startedAt = time.Now()
	t.finishedAt = time.Time{}
	t.cancel = cancel
	t.stopTicker = stop

	go t.tick(t.token, stop)
	return &Run{Token: t.token, ctx: ctx}
}

// Complete records a successful result and rewinds the step indicator. It
// returns false and changes nothing when token is not the latest run or the
// run already finished.
func (t *Tracker) Complete(token uint64, analysis *domain.FinancialAnalysis) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.currentLocked(token) {
		t.log.Info("lifecycle.Tracker: discarding stale result", zap.Uint64("token", token), zap.Uint64("latest", t.token))
		return false
	}
	t.status = domain.StatusSuccess
	t.step = 0
	t.analysis = analysis.Clone()
	t.finishedAt = time.Now()
	t.finishRunLocked()
	return true
}

// Fail records a failed result, subject to the same token check as Complete.
// The step indicator is rewound; the error is kept until the next Begin.
func (t *Tracker) Fail(token uint64, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.currentLocked(token) {
		t.log.Info("lifecycle.Tracker: discarding stale failure", zap.Uint64("token", token), zap.Uint64("latest", t.token))
		return false
	}
	t.status = domain.StatusFailed
	t.step = 0
	t.err = err
	t.finishedAt = time.Now()
	t.finishRunLocked()
	return true
}

// Snapshot returns the current state. The analysis is present only in
// Success and is a copy.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		Status:     t.status,
		Loading:    t.status == domain.StatusLoading,
		StepIndex:  t.step,
		StepLabel:  t.steps[t.step],
		TotalSteps: len(t.steps),
		Token:      t.token,
	}
	if !t.startedAt.IsZero() {
		started := t.startedAt
		s.StartedAt = &started
	}
	if !t.finishedAt.IsZero() {
		finished := t.finishedAt
		s.FinishedAt = &finished
	}
	switch t.status {
	case domain.StatusSuccess:
		s.Analysis = t.analysis.Clone()
	case domain.StatusFailed:
		s.Error = domain.UserMessage(t.err)
		s.ErrorKind = domain.ErrorKind(t.err)
	}
	return s
}

// Steps returns the progress labels.
func (t *Tracker) Steps() []string {
	return slices.Clone(t.steps)
}

func (t *Tracker) currentLocked(token uint64) bool {
	return token == t.token && t.status == domain.StatusLoading
}

// finishRunLocked stops the ticker and releases the run context.
func (t *Tracker) finishRunLocked() {
	if t.stopTicker != nil {
		close(t.stopTicker)
		t.stopTicker = nil
	}
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// tick advances the step once per interval until the last step, or until
// the run finishes or is superseded.
func (t *Tracker) tick(token uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if token != t.token || t.status != domain.StatusLoading {
				t.mu.Unlock()
				return
			}
			if t.step < len(t.steps)-1 {
				t.step++
			}
			last := t.step == len(t.steps)-1
			t.mu.Unlock()
			if last {
				return
			}
		}
	}
}
