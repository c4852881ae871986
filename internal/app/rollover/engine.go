// Package rollover resets the yearly payment state of the current cohort
// once per designated month.
package rollover

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/roster/internal/app/models"
)

// Store is the part of the student store the engine mutates
type Store interface {
	ListByYear(ctx context.Context, year int) ([]models.Student, error)
	ResetAnnualPayments(ctx context.Context, id string) error
}

// Config controls when the rollover fires
type Config struct {
	Month    time.Month
	Interval time.Duration
	Location *time.Location
	// ResetTimeout bounds each record reset. Resets are detached from
	// the engine's cancellation so a shutdown does not abort a pass.
	ResetTimeout time.Duration
}

const defaultResetTimeout = 10 * time.Second

// Result summarizes one tick
type Result struct {
	Year      int
	Applied   bool
	Reset     int
	Failed    int
	FailedIDs []string
}

// Engine runs the periodic rollover check
type Engine struct {
	store  Store
	guard  Guard
	cfg    Config
	now    func() time.Time
	logger zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a rollover engine. A nil guard means a MemoryGuard.
func NewEngine(store Store, guard Guard, cfg Config, logger zerolog.Logger) *Engine {
	if guard == nil {
		guard = NewMemoryGuard()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = defaultResetTimeout
	}
	if cfg.Month < time.January || cfg.Month > time.December {
		cfg.Month = time.September
	}
	return &Engine{
		store:  store,
		guard:  guard,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// Start launches the background ticker. Calling Start twice is a no-op.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.run(ctx, e.done)
	e.logger.Info().
		Str("month", e.cfg.Month.String()).
		Dur("interval", e.cfg.Interval).
		Str("timezone", e.cfg.Location.String()).
		Msg("Rollover engine started")
}

// Stop cancels the ticker and waits for an in-flight tick to finish
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.cancel, e.done = nil, nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	e.logger.Info().Msg("Rollover engine stopped")
}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.Tick(ctx); err != nil {
				e.logger.Error().Err(err).Msg("Rollover check failed, retrying next tick")
			}
		}
	}
}

// Tick performs one rollover check against the current time
func (e *Engine) Tick(ctx context.Context) (Result, error) {
	now := e.now().In(e.cfg.Location)
	result := Result{Year: now.Year()}

	if now.Month() != e.cfg.Month {
		return result, nil
	}

	applied, err := e.guard.Applied(ctx, result.Year)
	if err != nil {
		return result, fmt.Errorf("failed to read rollover guard: %w", err)
	}
	if applied {
		return result, nil
	}

	cohort, err := e.store.ListByYear(ctx, result.Year)
	if err != nil {
		return result, fmt.Errorf("failed to list cohort %d: %w", result.Year, err)
	}

	claimed, err := e.guard.MarkApplied(ctx, result.Year)
	if err != nil {
		return result, fmt.Errorf("failed to record rollover: %w", err)
	}
	if !claimed {
		e.logger.Info().Int("year", result.Year).Msg("Rollover already applied elsewhere")
		return result, nil
	}
	result.Applied = true

	resetCtx := context.WithoutCancel(ctx)
	for _, student := range cohort {
		if err := e.resetOne(resetCtx, student.ID); err != nil {
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, student.ID)
			e.logger.Error().Err(err).Str("studentID", student.ID).Int("year", result.Year).Msg("Failed to reset student payments")
			continue
		}
		result.Reset++
	}

	// nothing was reset: give the period back so the next check retries it
	if result.Failed > 0 && result.Reset == 0 {
		if err := e.guard.Release(resetCtx, result.Year); err != nil {
			return result, fmt.Errorf("failed to release rollover guard: %w", err)
		}
		result.Applied = false
		e.logger.Warn().Int("year", result.Year).Int("failed", result.Failed).Msg("Rollover failed for every record, retrying next tick")
		return result, nil
	}

	e.logger.Info().
		Int("year", result.Year).
		Int("reset", result.Reset).
		Int("failed", result.Failed).
		Strs("failedIDs", result.FailedIDs).
		Msg("Annual rollover applied")
	return result, nil
}

func (e *Engine) resetOne(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ResetTimeout)
	defer cancel()
	return e.store.ResetAnnualPayments(ctx, id)
}
