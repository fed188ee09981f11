package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/metrics"
)

var (
	// initialWait is used for the first confirmation attempt of every step.
	initialWait = entity.WaitOptions{
		Confirmations:   1,
		PollingInterval: time.Second,
		Timeout:         60 * time.Second,
	}

	// retryWait is the relaxed schedule for the single retry that follows a
	// transient finality error.
	retryWait = entity.WaitOptions{
		Confirmations:   1,
		PollingInterval: 2 * time.Second,
		Timeout:         30 * time.Second,
	}
)

const transientRetryDelay = 2 * time.Second

// StepSpec is one unit of work in a multi-transaction flow. Submit sends the
// transaction and returns its hash; confirmation is handled by the machine.
type StepSpec struct {
	Name   string
	Submit func(ctx context.Context) (string, error)
}

// StepMachine drives an ordered sequence of transaction steps and keeps their
// statuses consistent: at most one step is ever loading, and a user rejection
// rewinds the whole sequence to idle instead of recording a failure.
type StepMachine struct {
	mu         sync.Mutex
	kind       entity.MutationKind
	steps      []entity.TransactionStep
	writer     port.ContractWriter
	logger     *zap.Logger
	retryDelay time.Duration
	onChange   func(steps []entity.TransactionStep)
}

func NewStepMachine(kind entity.MutationKind, stepCount int, writer port.ContractWriter, logger *zap.Logger) *StepMachine {
	m := &StepMachine{
		kind:       kind,
		steps:      make([]entity.TransactionStep, stepCount),
		writer:     writer,
		logger:     logger.Named("StepMachine").With(zap.String("mutation", string(kind))),
		retryDelay: transientRetryDelay,
	}
	m.resetLocked()
	return m
}

// OnChange registers a callback invoked with a snapshot after every status
// transition. Must be set before Run.
func (m *StepMachine) OnChange(fn func(steps []entity.TransactionStep)) {
	m.onChange = fn
}

// Snapshot returns a copy of the current step states.
func (m *StepMachine) Snapshot() []entity.TransactionStep {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *StepMachine) snapshotLocked() []entity.TransactionStep {
	out := make([]entity.TransactionStep, len(m.steps))
	copy(out, m.steps)
	return out
}

// Reset rewinds every step to idle and clears hashes and errors. Safe to call
// any number of times.
func (m *StepMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	m.notifyLocked()
}

func (m *StepMachine) resetLocked() {
	for i := range m.steps {
		m.steps[i] = entity.TransactionStep{Index: i + 1, Status: entity.StepIdle}
	}
}

func (m *StepMachine) notifyLocked() {
	if m.onChange != nil {
		m.onChange(m.snapshotLocked())
	}
}

func (m *StepMachine) setStatus(i int, status entity.StepStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[i].Status = status
	m.notifyLocked()
}

func (m *StepMachine) setTxHash(i int, hash string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps[i].TxHash = hash
	m.notifyLocked()
}

// Run executes the given specs in order. On success every step ends in the
// success state. On failure the sequence stops at the failing step; the
// returned error carries the taxonomy sentinel matching its cause.
func (m *StepMachine) Run(ctx context.Context, specs []StepSpec) error {
	if len(specs) != len(m.steps) {
		return fmt.Errorf("step machine built for %d steps, got %d specs", len(m.steps), len(specs))
	}

	for i, spec := range specs {
		m.setStatus(i, entity.StepLoading)

		hash, err := spec.Submit(ctx)
		if err != nil {
			return m.fail(i, spec.Name, err)
		}
		m.setTxHash(i, hash)

		if err := m.awaitWithRetry(ctx, spec.Name, hash); err != nil {
			return m.fail(i, spec.Name, err)
		}

		m.setStatus(i, entity.StepSuccess)
		m.logger.Info("step confirmed",
			zap.String("step", spec.Name),
			zap.String("txHash", hash),
		)
	}
	return nil
}

// awaitWithRetry waits for the transaction to confirm. A transient finality
// error gets exactly one retry on the relaxed schedule; a second failure is
// terminal.
func (m *StepMachine) awaitWithRetry(ctx context.Context, name, hash string) error {
	err := m.writer.AwaitConfirmation(ctx, hash, initialWait)
	if err == nil {
		return nil
	}
	if entity.ClassifyError(err) != entity.KindTransientFinality {
		return err
	}

	m.logger.Warn("transaction not yet finalized, retrying once",
		zap.String("step", name),
		zap.String("txHash", hash),
		zap.Error(err),
	)

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", entity.ErrTransactionFailed, ctx.Err())
	case <-time.After(m.retryDelay):
	}

	if err := m.writer.AwaitConfirmation(ctx, hash, retryWait); err != nil {
		return fmt.Errorf("%w: confirmation retry exhausted: %v", entity.ErrTransactionFailed, err)
	}
	return nil
}

// fail records the outcome of a failed step. User rejections rewind the whole
// sequence to idle and surface as ErrUserRejected; anything else marks the
// failing step and propagates.
func (m *StepMachine) fail(i int, name string, err error) error {
	if entity.ClassifyError(err) == entity.KindUserRejected {
		m.Reset()
		m.logger.Info("flow cancelled by signer", zap.String("step", name))
		if errors.Is(err, entity.ErrUserRejected) {
			return err
		}
		return fmt.Errorf("%w: %v", entity.ErrUserRejected, err)
	}

	m.mu.Lock()
	m.steps[i].Status = entity.StepError
	m.steps[i].Error = err.Error()
	m.notifyLocked()
	m.mu.Unlock()

	metrics.StepFailuresTotal.WithLabelValues(string(m.kind), name).Inc()
	m.logger.Error("step failed",
		zap.String("step", name),
		zap.Error(err),
	)
	return err
}
