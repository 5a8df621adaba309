package test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/polkiloo/erpcore/internal/domain/model"
	pkgAuth "github.com/polkiloo/erpcore/internal/pkg/auth"
)

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn        func(context.Context, pkgAuth.Principal, model.CreateOrderInput) (*model.Order, error)
	OrderFn         func(context.Context, string, int64) (*model.Order, error)
	OrdersFn        func(context.Context, string, model.OrderFilter) ([]model.Order, int64, error)
	SearchFn        func(context.Context, string, string, int) ([]model.Order, error)
	StatsFn         func(context.Context, string) (*model.OrderStats, error)
	UpdateStatusFn  func(context.Context, string, int64, model.OrderStatus) (*model.Order, error)
	UpdatePaymentFn func(context.Context, string, int64, model.PaymentStatus) (*model.Order, error)
	CancelFn        func(context.Context, string, int64, string) (*model.Order, error)
}

// CreateOrder delegates to provided function or echoes the input as an order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, p pkgAuth.Principal, in model.CreateOrderInput) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, p, in)
	}
	return &model.Order{ID: 1, TenantID: p.TenantID, CustomerID: in.CustomerID, Status: model.OrderStatusPending}, nil
}

// Order returns a pending order with the requested id.
func (s OrderFacadeStub) Order(ctx context.Context, tenantID string, id int64) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, tenantID, id)
	}
	return &model.Order{ID: id, TenantID: tenantID, Status: model.OrderStatusPending}, nil
}

// Orders returns a single order page.
func (s OrderFacadeStub) Orders(ctx context.Context, tenantID string, filter model.OrderFilter) ([]model.Order, int64, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, tenantID, filter)
	}
	return []model.Order{{ID: 1, TenantID: tenantID}}, 1, nil
}

// SearchOrders returns no matches unless overridden.
func (s OrderFacadeStub) SearchOrders(ctx context.Context, tenantID, query string, limit int) ([]model.Order, error) {
	if s.SearchFn != nil {
		return s.SearchFn(ctx, tenantID, query, limit)
	}
	return []model.Order{}, nil
}

// OrderStats returns empty stats unless overridden.
func (s OrderFacadeStub) OrderStats(ctx context.Context, tenantID string) (*model.OrderStats, error) {
	if s.StatsFn != nil {
		return s.StatsFn(ctx, tenantID)
	}
	return &model.OrderStats{}, nil
}

// UpdateOrderStatus echoes the target status.
func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, tenantID string, id int64, status model.OrderStatus) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, tenantID, id, status)
	}
	return &model.Order{ID: id, TenantID: tenantID, Status: status}, nil
}

// UpdatePaymentStatus echoes the target payment status.
func (s OrderFacadeStub) UpdatePaymentStatus(ctx context.Context, tenantID string, id int64, status model.PaymentStatus) (*model.Order, error) {
	if s.UpdatePaymentFn != nil {
		return s.UpdatePaymentFn(ctx, tenantID, id, status)
	}
	return &model.Order{ID: id, TenantID: tenantID, PaymentStatus: status}, nil
}

// CancelOrder returns a cancelled order.
func (s OrderFacadeStub) CancelOrder(ctx context.Context, tenantID string, id int64, reason string) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, tenantID, id, reason)
	}
	return &model.Order{ID: id, TenantID: tenantID, Status: model.OrderStatusCancelled}, nil
}

// PayrollFacadeStub simulates payroll operations.
type PayrollFacadeStub struct {
	CreateFn   func(context.Context, string, model.CreatePayrollInput) (*model.Payroll, error)
	PayrollFn  func(context.Context, string, int64) (*model.Payroll, error)
	PayrollsFn func(context.Context, string, model.PayrollFilter) ([]model.Payroll, int64, error)
	UpdateFn   func(context.Context, string, int64, model.PayrollPatch) (*model.Payroll, error)
	DeleteFn   func(context.Context, string, int64) error
	ProcessFn  func(context.Context, pkgAuth.Principal, int64) (*model.Payroll, error)
	PayFn      func(context.Context, string, int64) (*model.Payroll, error)
	GenerateFn func(context.Context, string, model.Period) (*model.PayrollBatch, error)
	StatsFn    func(context.Context, string, int, int) (*model.PayrollStats, error)
}

// CreatePayroll returns a pending payroll for the requested employee.
func (s PayrollFacadeStub) CreatePayroll(ctx context.Context, tenantID string, in model.CreatePayrollInput) (*model.Payroll, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, tenantID, in)
	}
	return &model.Payroll{ID: 1, TenantID: tenantID, EmployeeID: in.EmployeeID, Status: model.PayrollStatusPending}, nil
}

// Payroll returns a pending payroll with the requested id.
func (s PayrollFacadeStub) Payroll(ctx context.Context, tenantID string, id int64) (*model.Payroll, error) {
	if s.PayrollFn != nil {
		return s.PayrollFn(ctx, tenantID, id)
	}
	return &model.Payroll{ID: id, TenantID: tenantID, Status: model.PayrollStatusPending}, nil
}

// Payrolls returns an empty page unless overridden.
func (s PayrollFacadeStub) Payrolls(ctx context.Context, tenantID string, filter model.PayrollFilter) ([]model.Payroll, int64, error) {
	if s.PayrollsFn != nil {
		return s.PayrollsFn(ctx, tenantID, filter)
	}
	return nil, 0, nil
}

// UpdatePayroll returns the payroll unchanged.
func (s PayrollFacadeStub) UpdatePayroll(ctx context.Context, tenantID string, id int64, patch model.PayrollPatch) (*model.Payroll, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, tenantID, id, patch)
	}
	return &model.Payroll{ID: id, TenantID: tenantID, Status: model.PayrollStatusPending}, nil
}

// DeletePayroll succeeds unless overridden.
func (s PayrollFacadeStub) DeletePayroll(ctx context.Context, tenantID string, id int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, tenantID, id)
	}
	return nil
}

// ProcessPayroll marks the payroll processed by the caller.
func (s PayrollFacadeStub) ProcessPayroll(ctx context.Context, p pkgAuth.Principal, id int64) (*model.Payroll, error) {
	if s.ProcessFn != nil {
		return s.ProcessFn(ctx, p, id)
	}
	by := p.UserID
	return &model.Payroll{ID: id, TenantID: p.TenantID, Status: model.PayrollStatusProcessed, ProcessedBy: &by}, nil
}

// PayPayroll marks the payroll paid.
func (s PayrollFacadeStub) PayPayroll(ctx context.Context, tenantID string, id int64) (*model.Payroll, error) {
	if s.PayFn != nil {
		return s.PayFn(ctx, tenantID, id)
	}
	return &model.Payroll{ID: id, TenantID: tenantID, Status: model.PayrollStatusPaid}, nil
}

// GeneratePayrolls returns an empty batch for the period.
func (s PayrollFacadeStub) GeneratePayrolls(ctx context.Context, tenantID string, period model.Period) (*model.PayrollBatch, error) {
	if s.GenerateFn != nil {
		return s.GenerateFn(ctx, tenantID, period)
	}
	return &model.PayrollBatch{Period: period}, nil
}

// PayrollStats returns empty stats for the requested period.
func (s PayrollFacadeStub) PayrollStats(ctx context.Context, tenantID string, year, month int) (*model.PayrollStats, error) {
	if s.StatsFn != nil {
		return s.StatsFn(ctx, tenantID, year, month)
	}
	return &model.PayrollStats{Period: model.Period{Year: year, Month: month}}, nil
}

// ERPFacadeStub aggregates facade dependencies for HTTP layer tests.
type ERPFacadeStub struct {
	TokenParserStub
	OrderFacadeStub
	PayrollFacadeStub
	HealthErr error
}

// HealthCheck returns HealthErr.
func (s ERPFacadeStub) HealthCheck(context.Context) error {
	return s.HealthErr
}

// GenerateCall stores information about GeneratePayrolls invocations.
type GenerateCall struct {
	TenantID string
	Period   model.Period
}

// SchedulerFacadeStub mimics scheduler interactions with the ERP facade.
type SchedulerFacadeStub struct {
	Tenants    []string
	TenantsErr error
	GenerateFn func(context.Context, string, model.Period) (*model.PayrollBatch, error)
	Calls      []GenerateCall
	mu         sync.Mutex
	listCount  int32
}

// Lock exposes internal mutex for external synchronization.
func (s *SchedulerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *SchedulerFacadeStub) Unlock() { s.mu.Unlock() }

// ListCount reports how many times tenants were listed.
func (s *SchedulerFacadeStub) ListCount() int {
	return int(atomic.LoadInt32(&s.listCount))
}

// ActiveTenants returns the configured tenants.
func (s *SchedulerFacadeStub) ActiveTenants(context.Context) ([]string, error) {
	atomic.AddInt32(&s.listCount, 1)
	if s.TenantsErr != nil {
		return nil, s.TenantsErr
	}
	return s.Tenants, nil
}

// GeneratePayrolls records generation requests.
func (s *SchedulerFacadeStub) GeneratePayrolls(ctx context.Context, tenantID string, period model.Period) (*model.PayrollBatch, error) {
	s.mu.Lock()
	s.Calls = append(s.Calls, GenerateCall{TenantID: tenantID, Period: period})
	s.mu.Unlock()
	if s.GenerateFn != nil {
		return s.GenerateFn(ctx, tenantID, period)
	}
	return &model.PayrollBatch{Period: period}, nil
}
