package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
)

var (
	customerCols = []string{"id", "tenant_id", "name", "email", "phone", "is_active"}
	productCols  = []string{"id", "tenant_id", "name", "sku", "price", "stock", "is_active"}
)

func TestCustomerRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Customers()
	ctx := context.Background()

	mock.ExpectQuery("FROM customers WHERE tenant_id=").WithArgs("t1", int64(1)).WillReturnRows(
		pgxmockv3.NewRows(customerCols).AddRow(int64(1), "t1", "Acme", "a@acme.io", "", true))
	c, err := repo.GetByID(ctx, "t1", 1)
	if err != nil || c.Name != "Acme" || !c.IsActive {
		t.Fatalf("unexpected result %+v %v", c, err)
	}

	mock.ExpectQuery("FROM customers WHERE tenant_id=").WithArgs("t1", int64(2)).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByID(ctx, "t1", 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM customers WHERE tenant_id=").WithArgs("t1", []int64{1, 2}).WillReturnRows(
		pgxmockv3.NewRows(customerCols).
			AddRow(int64(1), "t1", "Acme", "", "", true).
			AddRow(int64(2), "t1", "Globex", "", "", false))
	list, err := repo.ListByIDs(ctx, "t1", []int64{1, 2})
	if err != nil || len(list) != 2 {
		t.Fatalf("unexpected list %+v %v", list, err)
	}

	if list, err := repo.ListByIDs(ctx, "t1", nil); err != nil || list != nil {
		t.Fatalf("expected no query for empty ids, got %+v %v", list, err)
	}

	mock.ExpectQuery("FROM customers WHERE tenant_id=").WithArgs("t1", []int64{3}).WillReturnError(errors.New("boom"))
	if _, err := repo.ListByIDs(ctx, "t1", []int64{3}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestProductRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := storage.Products()
	ctx := context.Background()

	mock.ExpectQuery("FROM products WHERE tenant_id=").WithArgs("t1", []int64{10, 11}).WillReturnRows(
		pgxmockv3.NewRows(productCols).
			AddRow(int64(10), "t1", "Bolt", "B-1", decimal.RequireFromString("2.50"), 100, true).
			AddRow(int64(11), "t1", "Nut", "N-1", decimal.RequireFromString("0.75"), 3, true))
	products, err := repo.ListByIDs(ctx, "t1", []int64{10, 11})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 || products[1].Stock != 3 || !products[0].Price.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected products %+v", products)
	}

	mock.ExpectQuery("FROM products WHERE tenant_id=").WithArgs("t1", []int64{12}).WillReturnRows(
		pgxmockv3.NewRows(productCols).AddRow("bad", "t1", "x", "x", decimal.Zero, 1, true))
	if _, err := repo.ListByIDs(ctx, "t1", []int64{12}); err == nil {
		t.Fatal("expected scan error")
	}

	mock.ExpectExec(q("UPDATE products SET stock = stock - $3")).WithArgs("t1", int64(10), 5).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	ok, err := repo.DecrementStock(ctx, "t1", 10, 5)
	if err != nil || !ok {
		t.Fatalf("expected decrement, got %v %v", ok, err)
	}

	mock.ExpectExec(q("UPDATE products SET stock = stock - $3")).WithArgs("t1", int64(11), 5).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 0))
	ok, err = repo.DecrementStock(ctx, "t1", 11, 5)
	if err != nil || ok {
		t.Fatalf("expected guarded decrement to report false, got %v %v", ok, err)
	}

	mock.ExpectExec(q("UPDATE products SET stock = stock - $3")).WithArgs("t1", int64(11), 1).
		WillReturnError(errors.New("boom"))
	if _, err := repo.DecrementStock(ctx, "t1", 11, 1); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectExec(q("UPDATE products SET stock = stock + $3")).WithArgs("t1", int64(10), 7).
		WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	if err := repo.IncrementStock(ctx, "t1", 10, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
