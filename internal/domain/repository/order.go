package repository

import (
	"context"

	"github.com/polkiloo/erpcore/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	// Create inserts the order row and all of its items.
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, tenantID string, id int64) (*model.Order, error)
	List(ctx context.Context, tenantID string, filter model.OrderFilter) ([]model.Order, int64, error)
	Search(ctx context.Context, tenantID, query string, limit int) ([]model.Order, error)
	// LatestNumber returns the order number under prefix with the highest all-digit
	// suffix or "" when none. Numbers with any other suffix are ignored.
	LatestNumber(ctx context.Context, tenantID, prefix string) (string, error)
	ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	// GetForUpdate loads the order header and locks the row until the transaction ends.
	GetForUpdate(ctx context.Context, tenantID string, id int64) (*model.Order, error)
	// UpdateStatus moves the order from one status to another. An order no longer
	// in from yields a TransitionError.
	UpdateStatus(ctx context.Context, tenantID string, id int64, from, to model.OrderStatus, notes string) error
	UpdatePaymentStatus(ctx context.Context, tenantID string, id int64, status model.PaymentStatus) error

	Totals(ctx context.Context, tenantID string) (model.OrderTotals, error)
	CountByStatus(ctx context.Context, tenantID string) ([]model.GroupCount, error)
	CountByPaymentStatus(ctx context.Context, tenantID string) ([]model.GroupCount, error)
	TopCustomers(ctx context.Context, tenantID string, limit int) ([]model.TopCustomer, error)
	TopProducts(ctx context.Context, tenantID string, limit int) ([]model.TopProduct, error)
}
