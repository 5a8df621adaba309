package repository

import (
	"context"

	"github.com/polkiloo/erpcore/internal/domain/model"
)

// CustomerRepository reads customers scoped to a tenant.
type CustomerRepository interface {
	GetByID(ctx context.Context, tenantID string, id int64) (*model.Customer, error)
	ListByIDs(ctx context.Context, tenantID string, ids []int64) ([]model.Customer, error)
}

// ProductRepository reads products and adjusts their stock.
type ProductRepository interface {
	ListByIDs(ctx context.Context, tenantID string, ids []int64) ([]model.Product, error)
	// DecrementStock reduces stock only while enough remains and reports whether it did.
	DecrementStock(ctx context.Context, tenantID string, productID int64, qty int) (bool, error)
	IncrementStock(ctx context.Context, tenantID string, productID int64, qty int) error
}
