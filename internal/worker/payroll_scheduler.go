package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
)

// PayrollFacade exposes the subset of application functionality required by the scheduler.
type PayrollFacade interface {
	ActiveTenants(ctx context.Context) ([]string, error)
	GeneratePayrolls(ctx context.Context, tenantID string, period model.Period) (*model.PayrollBatch, error)
}

// PayrollScheduler periodically generates the current period's payrolls for
// every tenant with active employees, spreading tenants over a worker pool.
type PayrollScheduler struct {
	facade   PayrollFacade
	interval time.Duration
	workers  int
	logger   *zap.Logger
	now      func() time.Time

	jobs   chan string
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPayrollScheduler constructs the scheduler. A non-positive interval disables it.
func NewPayrollScheduler(facade PayrollFacade, interval time.Duration, workers int, logger *zap.Logger) *PayrollScheduler {
	if workers <= 0 {
		workers = 1
	}
	return &PayrollScheduler{
		facade:   facade,
		interval: interval,
		workers:  workers,
		logger:   logger,
		now:      time.Now,
	}
}

// Enabled reports whether a schedule interval is configured.
func (s *PayrollScheduler) Enabled() bool {
	return s.interval > 0
}

// Start launches the dispatcher and workers. It is a no-op when disabled or already running.
func (s *PayrollScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.Enabled() || s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.jobs = make(chan string, s.workers)

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx)
	s.logger.Info("payroll scheduler started", zap.Duration("interval", s.interval), zap.Int("workers", s.workers))
}

// Stop cancels processing and waits for all workers to finish.
func (s *PayrollScheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *PayrollScheduler) dispatch(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.jobs)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchAndDispatch(ctx)
		}
	}
}

func (s *PayrollScheduler) fetchAndDispatch(ctx context.Context) {
	tenants, err := s.facade.ActiveTenants(ctx)
	if err != nil {
		s.logger.Error("list tenants for payroll generation failed", zap.Error(err))
		return
	}
	for _, tenant := range tenants {
		select {
		case <-ctx.Done():
			return
		case s.jobs <- tenant:
		}
	}
}

func (s *PayrollScheduler) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case tenant, ok := <-s.jobs:
			if !ok {
				return
			}
			s.generate(ctx, tenant)
		}
	}
}

func (s *PayrollScheduler) generate(ctx context.Context, tenant string) {
	period := model.PeriodOf(s.now())
	batch, err := s.facade.GeneratePayrolls(ctx, tenant, period)
	var batchErr *domainErrors.BatchError
	switch {
	case err == nil:
	case errors.As(err, &batchErr):
		s.logger.Warn("payroll generation partially failed",
			zap.String("tenant", tenant),
			zap.String("period", period.String()),
			zap.Int("failed", len(batchErr.Failures)))
	default:
		s.logger.Error("payroll generation failed",
			zap.String("tenant", tenant),
			zap.String("period", period.String()),
			zap.Error(err))
		return
	}
	if batch != nil && len(batch.Created) > 0 {
		s.logger.Info("scheduled payrolls generated",
			zap.String("tenant", tenant),
			zap.String("period", period.String()),
			zap.Int("created", len(batch.Created)))
	}
}
