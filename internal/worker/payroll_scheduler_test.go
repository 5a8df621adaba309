package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
	testhelpers "github.com/polkiloo/erpcore/internal/test"
)

func waitForCalls(t *testing.T, facade *testhelpers.SchedulerFacadeStub, n int) []testhelpers.GenerateCall {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		facade.Lock()
		if len(facade.Calls) >= n {
			calls := append([]testhelpers.GenerateCall(nil), facade.Calls...)
			facade.Unlock()
			return calls
		}
		facade.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected at least %d generate calls", n)
	return nil
}

func TestPayrollSchedulerGeneratesCurrentPeriodPerTenant(t *testing.T) {
	facade := &testhelpers.SchedulerFacadeStub{Tenants: []string{"acme", "globex"}}
	s := NewPayrollScheduler(facade, 10*time.Millisecond, 2, zap.NewNop())
	s.now = func() time.Time { return time.Date(2024, time.May, 17, 9, 0, 0, 0, time.UTC) }

	s.Start(context.Background())
	calls := waitForCalls(t, facade, 2)
	s.Stop()

	seen := map[string]bool{}
	for _, c := range calls {
		if c.Period != (model.Period{Year: 2024, Month: 5}) {
			t.Fatalf("unexpected period %v", c.Period)
		}
		seen[c.TenantID] = true
	}
	if !seen["acme"] || !seen["globex"] {
		t.Fatalf("expected both tenants, got %v", calls)
	}
}

func TestPayrollSchedulerContinuesAfterFailures(t *testing.T) {
	facade := &testhelpers.SchedulerFacadeStub{
		Tenants: []string{"acme"},
		GenerateFn: func(_ context.Context, _ string, period model.Period) (*model.PayrollBatch, error) {
			return &model.PayrollBatch{Period: period, Failed: 1}, &domainErrors.BatchError{
				Failures: []domainErrors.BatchFailure{{Key: 3, Err: errors.New("boom")}},
			}
		},
	}
	s := NewPayrollScheduler(facade, 5*time.Millisecond, 1, zap.NewNop())

	s.Start(context.Background())
	waitForCalls(t, facade, 2)
	s.Stop()
}

func TestPayrollSchedulerSkipsTickOnTenantError(t *testing.T) {
	facade := &testhelpers.SchedulerFacadeStub{TenantsErr: errors.New("db down")}
	s := NewPayrollScheduler(facade, 5*time.Millisecond, 1, zap.NewNop())

	s.Start(context.Background())
	deadline := time.Now().Add(time.Second)
	for facade.ListCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	if facade.ListCount() < 2 {
		t.Fatalf("expected repeated tenant listing, got %d", facade.ListCount())
	}
	facade.Lock()
	defer facade.Unlock()
	if len(facade.Calls) != 0 {
		t.Fatalf("expected no generation, got %v", facade.Calls)
	}
}

func TestPayrollSchedulerDisabledWithoutInterval(t *testing.T) {
	facade := &testhelpers.SchedulerFacadeStub{Tenants: []string{"acme"}}
	s := NewPayrollScheduler(facade, 0, 0, zap.NewNop())
	if s.Enabled() {
		t.Fatal("expected scheduler to be disabled")
	}
	if s.workers != 1 {
		t.Fatalf("expected default worker count, got %d", s.workers)
	}

	s.Start(context.Background())
	s.Stop()
	if facade.ListCount() != 0 {
		t.Fatalf("expected no tenant listing, got %d", facade.ListCount())
	}
}

func TestPayrollSchedulerStopsOnContextCancel(t *testing.T) {
	facade := &testhelpers.SchedulerFacadeStub{Tenants: []string{"acme"}}
	s := NewPayrollScheduler(facade, time.Hour, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
