package app

import (
	"context"

	"github.com/polkiloo/erpcore/internal/domain/model"
	pkgAuth "github.com/polkiloo/erpcore/internal/pkg/auth"
	"github.com/polkiloo/erpcore/internal/usecase"
)

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ERPFacade is the single entry point of transports into the business rules.
type ERPFacade struct {
	orders   *usecase.OrderUseCase
	payrolls *usecase.PayrollUseCase
	tokens   pkgAuth.Strategy
	health   HealthChecker
}

func NewERPFacade(orders *usecase.OrderUseCase, payrolls *usecase.PayrollUseCase, tokens pkgAuth.Strategy, health HealthChecker) *ERPFacade {
	return &ERPFacade{orders: orders, payrolls: payrolls, tokens: tokens, health: health}
}

func (f *ERPFacade) ParseToken(token string) (pkgAuth.Principal, error) {
	return f.tokens.ParseToken(token)
}

func (f *ERPFacade) IssueToken(p pkgAuth.Principal) (string, error) {
	return f.tokens.IssueToken(p)
}

func (f *ERPFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

func (f *ERPFacade) CreateOrder(ctx context.Context, p pkgAuth.Principal, in model.CreateOrderInput) (*model.Order, error) {
	return f.orders.Create(ctx, p.TenantID, p.UserID, in)
}

func (f *ERPFacade) Order(ctx context.Context, tenantID string, id int64) (*model.Order, error) {
	return f.orders.Get(ctx, tenantID, id)
}

func (f *ERPFacade) Orders(ctx context.Context, tenantID string, filter model.OrderFilter) ([]model.Order, int64, error) {
	return f.orders.List(ctx, tenantID, filter)
}

func (f *ERPFacade) SearchOrders(ctx context.Context, tenantID, query string, limit int) ([]model.Order, error) {
	return f.orders.Search(ctx, tenantID, query, limit)
}

func (f *ERPFacade) OrderStats(ctx context.Context, tenantID string) (*model.OrderStats, error) {
	return f.orders.Stats(ctx, tenantID)
}

func (f *ERPFacade) UpdateOrderStatus(ctx context.Context, tenantID string, id int64, status model.OrderStatus) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, tenantID, id, status)
}

func (f *ERPFacade) UpdatePaymentStatus(ctx context.Context, tenantID string, id int64, status model.PaymentStatus) (*model.Order, error) {
	return f.orders.UpdatePaymentStatus(ctx, tenantID, id, status)
}

func (f *ERPFacade) CancelOrder(ctx context.Context, tenantID string, id int64, reason string) (*model.Order, error) {
	return f.orders.Cancel(ctx, tenantID, id, reason)
}

func (f *ERPFacade) CreatePayroll(ctx context.Context, tenantID string, in model.CreatePayrollInput) (*model.Payroll, error) {
	return f.payrolls.Create(ctx, tenantID, in)
}

func (f *ERPFacade) Payroll(ctx context.Context, tenantID string, id int64) (*model.Payroll, error) {
	return f.payrolls.Get(ctx, tenantID, id)
}

func (f *ERPFacade) Payrolls(ctx context.Context, tenantID string, filter model.PayrollFilter) ([]model.Payroll, int64, error) {
	return f.payrolls.List(ctx, tenantID, filter)
}

func (f *ERPFacade) UpdatePayroll(ctx context.Context, tenantID string, id int64, patch model.PayrollPatch) (*model.Payroll, error) {
	return f.payrolls.Update(ctx, tenantID, id, patch)
}

func (f *ERPFacade) DeletePayroll(ctx context.Context, tenantID string, id int64) error {
	return f.payrolls.Delete(ctx, tenantID, id)
}

func (f *ERPFacade) ProcessPayroll(ctx context.Context, p pkgAuth.Principal, id int64) (*model.Payroll, error) {
	return f.payrolls.Process(ctx, p.TenantID, id, p.UserID)
}

func (f *ERPFacade) PayPayroll(ctx context.Context, tenantID string, id int64) (*model.Payroll, error) {
	return f.payrolls.MarkPaid(ctx, tenantID, id)
}

func (f *ERPFacade) GeneratePayrolls(ctx context.Context, tenantID string, period model.Period) (*model.PayrollBatch, error) {
	return f.payrolls.GenerateForPeriod(ctx, tenantID, period)
}

func (f *ERPFacade) PayrollStats(ctx context.Context, tenantID string, year, month int) (*model.PayrollStats, error) {
	return f.payrolls.Stats(ctx, tenantID, year, month)
}

func (f *ERPFacade) ActiveTenants(ctx context.Context) ([]string, error) {
	return f.payrolls.ActiveTenants(ctx)
}
