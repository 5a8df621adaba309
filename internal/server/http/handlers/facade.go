package handlers

import (
	"context"

	"github.com/polkiloo/erpcore/internal/domain/model"
	pkgAuth "github.com/polkiloo/erpcore/internal/pkg/auth"
)

// TokenParser resolves bearer tokens into principals.
type TokenParser interface {
	ParseToken(token string) (pkgAuth.Principal, error)
}

// HealthFacade reports readiness of backing services.
type HealthFacade interface {
	HealthCheck(ctx context.Context) error
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, p pkgAuth.Principal, in model.CreateOrderInput) (*model.Order, error)
	Order(ctx context.Context, tenantID string, id int64) (*model.Order, error)
	Orders(ctx context.Context, tenantID string, filter model.OrderFilter) ([]model.Order, int64, error)
	SearchOrders(ctx context.Context, tenantID, query string, limit int) ([]model.Order, error)
	OrderStats(ctx context.Context, tenantID string) (*model.OrderStats, error)
	UpdateOrderStatus(ctx context.Context, tenantID string, id int64, status model.OrderStatus) (*model.Order, error)
	UpdatePaymentStatus(ctx context.Context, tenantID string, id int64, status model.PaymentStatus) (*model.Order, error)
	CancelOrder(ctx context.Context, tenantID string, id int64, reason string) (*model.Order, error)
}

// PayrollFacade encapsulates payroll operations exposed via HTTP.
type PayrollFacade interface {
	CreatePayroll(ctx context.Context, tenantID string, in model.CreatePayrollInput) (*model.Payroll, error)
	Payroll(ctx context.Context, tenantID string, id int64) (*model.Payroll, error)
	Payrolls(ctx context.Context, tenantID string, filter model.PayrollFilter) ([]model.Payroll, int64, error)
	UpdatePayroll(ctx context.Context, tenantID string, id int64, patch model.PayrollPatch) (*model.Payroll, error)
	DeletePayroll(ctx context.Context, tenantID string, id int64) error
	ProcessPayroll(ctx context.Context, p pkgAuth.Principal, id int64) (*model.Payroll, error)
	PayPayroll(ctx context.Context, tenantID string, id int64) (*model.Payroll, error)
	GeneratePayrolls(ctx context.Context, tenantID string, period model.Period) (*model.PayrollBatch, error)
	PayrollStats(ctx context.Context, tenantID string, year, month int) (*model.PayrollStats, error)
}

// ERPFacade aggregates the full set of operations used across handlers.
type ERPFacade interface {
	TokenParser
	HealthFacade
	OrderFacade
	PayrollFacade
}
