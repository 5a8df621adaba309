package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/polkiloo/erpcore/internal/config"
	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
	pkgAuth "github.com/polkiloo/erpcore/internal/pkg/auth"
	"github.com/polkiloo/erpcore/internal/telemetry"
	testhelpers "github.com/polkiloo/erpcore/internal/test"
	"github.com/polkiloo/erpcore/internal/usecase"
)

type healthStub struct{ err error }

func (h healthStub) HealthCheck(context.Context) error { return h.err }

var acme = pkgAuth.Principal{TenantID: "acme", UserID: 42}

func newFacade(health HealthChecker) (*ERPFacade, *testhelpers.Store) {
	store := testhelpers.NewStore()
	deps := usecase.Deps{
		Store:   store,
		Events:  &testhelpers.EventRecorder{},
		Cache:   testhelpers.NewMemoryCache(),
		Metrics: telemetry.NewMetrics(prometheus.NewRegistry()),
		Logger:  zap.NewNop(),
		Config:  &config.Config{Business: config.DefaultBusinessRules(), StatsCacheTTL: time.Minute},
	}
	tokens := pkgAuth.NewHMACStrategy("secret", pkgAuth.Options{})
	facade := NewERPFacade(usecase.NewOrderUseCase(deps), usecase.NewPayrollUseCase(deps), tokens, health)
	return facade, store
}

func TestERPFacadeTokens(t *testing.T) {
	facade, _ := newFacade(healthStub{})
	token, err := facade.IssueToken(acme)
	if err != nil {
		t.Fatalf("issue token returned error: %v", err)
	}
	got, err := facade.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token returned error: %v", err)
	}
	if got != acme {
		t.Fatalf("unexpected principal %+v", got)
	}
}

func TestERPFacadeHealth(t *testing.T) {
	facade, _ := newFacade(healthStub{err: errors.New("down")})
	if err := facade.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health error")
	}
}

func TestERPFacadeOrderFlow(t *testing.T) {
	facade, store := newFacade(healthStub{})
	store.CustomersRepo.Add(model.Customer{ID: 1, TenantID: "acme", Name: "Globex", IsActive: true})
	store.ProductsRepo.Add(model.Product{ID: 10, TenantID: "acme", Name: "Widget", Price: decimal.NewFromInt(25), Stock: 4, IsActive: true})
	store.OrdersRepo.TotalsVal = model.OrderTotals{Count: 1, Revenue: decimal.NewFromInt(75)}
	ctx := context.Background()

	order, err := facade.CreateOrder(ctx, acme, model.CreateOrderInput{
		CustomerID: 1,
		Items:      []model.OrderItemInput{{ProductID: 10, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create order returned error: %v", err)
	}
	if order.CreatedBy != acme.UserID {
		t.Fatalf("expected creator %d, got %d", acme.UserID, order.CreatedBy)
	}
	if store.ProductsRepo.Stock(10) != 1 {
		t.Fatalf("expected stock 1, got %d", store.ProductsRepo.Stock(10))
	}

	if _, err := facade.Order(ctx, testhelpers.RandomTenant(), order.ID); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for other tenant, got %v", err)
	}

	if _, err := facade.UpdateOrderStatus(ctx, "acme", order.ID, model.OrderStatusConfirmed); err != nil {
		t.Fatalf("update status returned error: %v", err)
	}
	if _, err := facade.UpdatePaymentStatus(ctx, "acme", order.ID, model.PaymentStatusPaid); err != nil {
		t.Fatalf("update payment returned error: %v", err)
	}

	cancelled, err := facade.CancelOrder(ctx, "acme", order.ID, "customer request")
	if err != nil {
		t.Fatalf("cancel returned error: %v", err)
	}
	if cancelled.Status != model.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if store.ProductsRepo.Stock(10) != 4 {
		t.Fatalf("expected stock restored to 4, got %d", store.ProductsRepo.Stock(10))
	}

	orders, total, err := facade.Orders(ctx, "acme", model.OrderFilter{})
	if err != nil || total != 1 || len(orders) != 1 {
		t.Fatalf("unexpected list result %v %d %v", orders, total, err)
	}
	found, err := facade.SearchOrders(ctx, "acme", order.OrderNumber, 10)
	if err != nil || len(found) != 1 {
		t.Fatalf("unexpected search result %v %v", found, err)
	}
	stats, err := facade.OrderStats(ctx, "acme")
	if err != nil || stats.TotalOrders != 1 {
		t.Fatalf("unexpected stats %+v %v", stats, err)
	}
}

func TestERPFacadePayrollFlow(t *testing.T) {
	facade, store := newFacade(healthStub{})
	store.EmployeesRepo.Add(model.Employee{ID: 1, TenantID: "acme", FirstName: "Ada", BaseSalary: decimal.NewFromInt(10000), Status: model.EmployeeStatusActive})
	ctx := context.Background()

	tenants, err := facade.ActiveTenants(ctx)
	if err != nil || len(tenants) != 1 || tenants[0] != "acme" {
		t.Fatalf("unexpected tenants %v %v", tenants, err)
	}

	batch, err := facade.GeneratePayrolls(ctx, "acme", model.Period{Year: 2024, Month: 5})
	if err != nil {
		t.Fatalf("generate returned error: %v", err)
	}
	if len(batch.Created) != 1 {
		t.Fatalf("expected one payroll, got %d", len(batch.Created))
	}
	id := batch.Created[0].ID

	notes := "adjusted"
	if _, err := facade.UpdatePayroll(ctx, "acme", id, model.PayrollPatch{Notes: &notes}); err != nil {
		t.Fatalf("update returned error: %v", err)
	}
	processed, err := facade.ProcessPayroll(ctx, acme, id)
	if err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if processed.ProcessedBy == nil || *processed.ProcessedBy != acme.UserID {
		t.Fatalf("expected processed by %d", acme.UserID)
	}
	if err := facade.DeletePayroll(ctx, "acme", id); !errors.Is(err, domainErrors.ErrImmutable) {
		t.Fatalf("expected immutable error, got %v", err)
	}
	paid, err := facade.PayPayroll(ctx, "acme", id)
	if err != nil || paid.Status != model.PayrollStatusPaid {
		t.Fatalf("unexpected pay result %+v %v", paid, err)
	}

	got, err := facade.Payroll(ctx, "acme", id)
	if err != nil || got.Notes != notes {
		t.Fatalf("unexpected payroll %+v %v", got, err)
	}
	list, total, err := facade.Payrolls(ctx, "acme", model.PayrollFilter{})
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("unexpected list %v %d %v", list, total, err)
	}
	stats, err := facade.PayrollStats(ctx, "acme", 2024, 5)
	if err != nil || stats.Count != 1 {
		t.Fatalf("unexpected stats %+v %v", stats, err)
	}

	created, err := facade.CreatePayroll(ctx, "acme", model.CreatePayrollInput{EmployeeID: 1, Period: "2024-06"})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if err := facade.DeletePayroll(ctx, "acme", created.ID); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
}
