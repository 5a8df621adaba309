package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
)

var (
	orderCols = []string{"id", "tenant_id", "order_number", "customer_id", "subtotal", "tax_rate", "tax_amount",
		"discount_amount", "total", "status", "payment_method", "payment_status", "notes", "expected_delivery",
		"created_by", "created_at", "updated_at", "name", "email", "item_count"}
	itemCols = []string{"id", "order_id", "product_id", "quantity", "unit_price", "discount", "total", "name", "sku", "price"}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func orderRow(rows *pgxmockv3.Rows, id int64, number string, status model.OrderStatus, at time.Time) *pgxmockv3.Rows {
	return rows.AddRow(id, "t1", number, int64(5), dec("100"), dec("10"), dec("10"), dec("5"), dec("105"),
		status, "card", model.PaymentStatusPending, "", nil, int64(9), at, at, "Acme", "a@acme.io", 2)
}

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	now := time.Now()

	order := &model.Order{
		TenantID: "t1", OrderNumber: "ORD-20240101-0001", CustomerID: 5,
		Subtotal: dec("100"), Total: dec("100"), Status: model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending, CreatedBy: 9,
		Items: []model.OrderItem{
			{ProductID: 1, Quantity: 2, UnitPrice: dec("25"), Total: dec("50")},
			{ProductID: 2, Quantity: 1, UnitPrice: dec("50"), Total: dec("50")},
		},
	}

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("t1", "ORD-20240101-0001", int64(5), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg(),
			pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), model.OrderStatusPending, "", model.PaymentStatusPending, "",
			pgxmockv3.AnyArg(), int64(9)).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(77), now, now))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(int64(77), int64(1), 2, pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg()).
		WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery("INSERT INTO order_items").
		WithArgs(int64(77), int64(2), 1, pgxmockv3.AnyArg(), pgxmockv3.AnyArg(), pgxmockv3.AnyArg()).
		WillReturnRows(pgxmockv3.NewRows([]string{"id"}).AddRow(int64(2)))

	created, err := repo.Create(context.Background(), order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 77 || created.ItemCount != 2 || created.Items[1].ID != 2 || created.Items[0].OrderID != 77 {
		t.Fatalf("unexpected created order %+v", created)
	}
	if order.ID != 0 {
		t.Fatal("input order must not be mutated")
	}

	mock.ExpectQuery("INSERT INTO orders").WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(context.Background(), order); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO orders").
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(78), now, now))
	mock.ExpectQuery("INSERT INTO order_items").WillReturnError(errors.New("fk"))
	if _, err := repo.Create(context.Background(), order); err == nil {
		t.Fatal("expected item insert error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetByID(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	now := time.Now()

	mock.ExpectQuery(q("WHERE o.tenant_id=$1 AND o.id=$2")).WithArgs("t1", int64(1)).
		WillReturnRows(orderRow(pgxmockv3.NewRows(orderCols), 1, "ORD-1", model.OrderStatusPending, now))
	mock.ExpectQuery("FROM order_items i JOIN products p").WithArgs(int64(1)).WillReturnRows(
		pgxmockv3.NewRows(itemCols).
			AddRow(int64(1), int64(1), int64(10), 2, dec("25"), dec("0"), dec("50"), "Bolt", "B-1", dec("25")).
			AddRow(int64(2), int64(1), int64(11), 1, dec("50"), dec("0"), dec("50"), "Nut", "N-1", dec("50")))

	order, err := repo.GetByID(context.Background(), "t1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Customer == nil || order.Customer.ID != 5 || order.Customer.Name != "Acme" {
		t.Fatalf("expected customer summary, got %+v", order.Customer)
	}
	if order.ItemCount != 2 || order.Items[1].Product.SKU != "N-1" || order.Items[0].Product.ID != 10 {
		t.Fatalf("unexpected items %+v", order.Items)
	}

	mock.ExpectQuery(q("WHERE o.tenant_id=$1 AND o.id=$2")).WithArgs("t1", int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(context.Background(), "t1", 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery(q("WHERE o.tenant_id=$1 AND o.id=$2")).WithArgs("t1", int64(3)).
		WillReturnRows(orderRow(pgxmockv3.NewRows(orderCols), 3, "ORD-3", model.OrderStatusPending, now))
	mock.ExpectQuery("FROM order_items i JOIN products p").WithArgs(int64(3)).WillReturnError(errors.New("items"))
	if _, err := repo.GetByID(context.Background(), "t1", 3); err == nil {
		t.Fatal("expected items error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryList(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	now := time.Now()
	from := now.Add(-time.Hour)

	filter := model.OrderFilter{
		Status:     model.OrderStatusPending,
		CustomerID: 5,
		From:       &from,
		Page:       model.Page{Number: 2, Size: 10},
	}
	mock.ExpectQuery(q("SELECT COUNT(*) FROM orders o WHERE o.tenant_id=$1 AND o.status=$2 AND o.customer_id=$3 AND o.created_at >= $4")).
		WithArgs("t1", model.OrderStatusPending, int64(5), from).
		WillReturnRows(pgxmockv3.NewRows([]string{"count"}).AddRow(int64(11)))
	mock.ExpectQuery(q("ORDER BY o.created_at DESC, o.id DESC LIMIT $5 OFFSET $6")).
		WithArgs("t1", model.OrderStatusPending, int64(5), from, 10, 10).
		WillReturnRows(orderRow(pgxmockv3.NewRows(orderCols), 11, "ORD-11", model.OrderStatusPending, now))

	orders, total, err := repo.List(context.Background(), "t1", filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 11 || len(orders) != 1 || orders[0].ItemCount != 2 {
		t.Fatalf("unexpected list %d %+v", total, orders)
	}

	mock.ExpectQuery(q("SELECT COUNT(*) FROM orders o WHERE o.tenant_id=$1")).WithArgs("t1").WillReturnError(errors.New("count"))
	if _, _, err := repo.List(context.Background(), "t1", model.OrderFilter{}); err == nil {
		t.Fatal("expected count error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositorySearch(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	now := time.Now()

	mock.ExpectQuery("ILIKE").WithArgs("t1", `%50\%\_off%`, 5).
		WillReturnRows(orderRow(pgxmockv3.NewRows(orderCols), 1, "ORD-1", model.OrderStatusPending, now))
	orders, err := repo.Search(context.Background(), "t1", "50%_off", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 || orders[0].Customer.Name != "Acme" {
		t.Fatalf("unexpected orders %+v", orders)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryLatestNumber(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()

	mock.ExpectQuery(`SELECT order_number FROM orders\s+WHERE tenant_id=\$1 AND starts_with\(order_number, \$2\)\s+AND substring\(order_number FROM char_length\(\$2\) \+ 1\) ~ '\^\[0-9\]\{1,18\}\$'`).
		WithArgs("t1", "ORD-20240101-").
		WillReturnRows(pgxmockv3.NewRows([]string{"order_number"}).AddRow("ORD-20240101-0007"))
	number, err := repo.LatestNumber(context.Background(), "t1", "ORD-20240101-")
	if err != nil || number != "ORD-20240101-0007" {
		t.Fatalf("unexpected latest %q %v", number, err)
	}

	mock.ExpectQuery("SELECT order_number FROM orders").WithArgs("t1", "ORD-20240102-").WillReturnError(pgx.ErrNoRows)
	number, err = repo.LatestNumber(context.Background(), "t1", "ORD-20240102-")
	if err != nil || number != "" {
		t.Fatalf("expected empty number, got %q %v", number, err)
	}

	mock.ExpectQuery("SELECT order_number FROM orders").WillReturnError(errors.New("boom"))
	if _, err := repo.LatestNumber(context.Background(), "t1", "X-"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGetForUpdate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id, tenant_id, order_number, status, notes FROM orders\s+WHERE tenant_id=\$1 AND id=\$2 FOR UPDATE`).
		WithArgs("t1", int64(4)).
		WillReturnRows(pgxmockv3.NewRows([]string{"id", "tenant_id", "order_number", "status", "notes"}).
			AddRow(int64(4), "t1", "ORD-20240101-0004", model.OrderStatusConfirmed, "gift"))
	order, err := repo.GetForUpdate(ctx, "t1", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != model.OrderStatusConfirmed || order.Notes != "gift" || order.OrderNumber != "ORD-20240101-0004" {
		t.Fatalf("unexpected order %+v", order)
	}

	mock.ExpectQuery("FOR UPDATE").WithArgs("t1", int64(5)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetForUpdate(ctx, "t1", 5); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryStatusUpdates(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	ctx := context.Background()

	mock.ExpectExec(`UPDATE orders SET status=\$4, notes=\$5, updated_at=NOW\(\) WHERE tenant_id=\$1 AND id=\$2 AND status=\$3`).
		WithArgs("t1", int64(1), model.OrderStatusPending, model.OrderStatusCancelled, "late\nreason").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdateStatus(ctx, "t1", 1, model.OrderStatusPending, model.OrderStatusCancelled, "late\nreason"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status=").
		WithArgs("t1", int64(2), model.OrderStatusPending, model.OrderStatusConfirmed, "").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM orders").WithArgs("t1", int64(2)).WillReturnError(pgx.ErrNoRows)
	if err := repo.UpdateStatus(ctx, "t1", 2, model.OrderStatusPending, model.OrderStatusConfirmed, ""); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET status=").
		WithArgs("t1", int64(3), model.OrderStatusPending, model.OrderStatusConfirmed, "").
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	mock.ExpectQuery("SELECT status FROM orders").WithArgs("t1", int64(3)).
		WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusCancelled))
	err := repo.UpdateStatus(ctx, "t1", 3, model.OrderStatusPending, model.OrderStatusConfirmed, "")
	var transition *domainErrors.TransitionError
	if !errors.As(err, &transition) || transition.From != string(model.OrderStatusCancelled) {
		t.Fatalf("expected transition error from CANCELLED, got %v", err)
	}

	mock.ExpectExec("UPDATE orders SET payment_status=").WithArgs("t1", int64(1), model.PaymentStatusPaid).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.UpdatePaymentStatus(ctx, "t1", 1, model.PaymentStatusPaid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectExec("UPDATE orders SET payment_status=").WillReturnError(errors.New("boom"))
	if err := repo.UpdatePaymentStatus(ctx, "t1", 1, model.PaymentStatusPaid); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryAggregates(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Orders()
	ctx := context.Background()

	mock.ExpectQuery(q("SELECT COUNT(*), COALESCE(SUM(total), 0) FROM orders")).WithArgs("t1").
		WillReturnRows(pgxmockv3.NewRows([]string{"count", "sum"}).AddRow(int64(4), dec("400")))
	totals, err := repo.Totals(ctx, "t1")
	if err != nil || totals.Count != 4 || !totals.Revenue.Equal(dec("400")) {
		t.Fatalf("unexpected totals %+v %v", totals, err)
	}

	mock.ExpectQuery("SELECT status, COUNT").WithArgs("t1").
		WillReturnRows(pgxmockv3.NewRows([]string{"status", "count"}).AddRow("CANCELLED", int64(1)).AddRow("PENDING", int64(3)))
	byStatus, err := repo.CountByStatus(ctx, "t1")
	if err != nil || len(byStatus) != 2 || byStatus[1].Count != 3 {
		t.Fatalf("unexpected status counts %+v %v", byStatus, err)
	}

	mock.ExpectQuery("SELECT payment_status, COUNT").WithArgs("t1").
		WillReturnRows(pgxmockv3.NewRows([]string{"payment_status", "count"}).AddRow("PAID", int64(4)))
	byPayment, err := repo.CountByPaymentStatus(ctx, "t1")
	if err != nil || len(byPayment) != 1 || byPayment[0].Key != "PAID" {
		t.Fatalf("unexpected payment counts %+v %v", byPayment, err)
	}

	mock.ExpectQuery("GROUP BY customer_id").WithArgs("t1", 10).
		WillReturnRows(pgxmockv3.NewRows([]string{"customer_id", "count", "sum"}).AddRow(int64(5), int64(3), dec("300")))
	customers, err := repo.TopCustomers(ctx, "t1", 10)
	if err != nil || len(customers) != 1 || customers[0].OrderCount != 3 {
		t.Fatalf("unexpected top customers %+v %v", customers, err)
	}

	mock.ExpectQuery("GROUP BY i.product_id").WithArgs("t1", 10).
		WillReturnRows(pgxmockv3.NewRows([]string{"product_id", "units", "sum"}).AddRow(int64(10), int64(12), dec("300")))
	products, err := repo.TopProducts(ctx, "t1", 10)
	if err != nil || len(products) != 1 || products[0].Units != 12 {
		t.Fatalf("unexpected top products %+v %v", products, err)
	}

	mock.ExpectQuery("SELECT status, COUNT").WillReturnError(errors.New("boom"))
	if _, err := repo.CountByStatus(ctx, "t1"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
