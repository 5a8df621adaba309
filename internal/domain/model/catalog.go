package model

import "github.com/shopspring/decimal"

// Customer is a buyer referenced by orders.
type Customer struct {
	ID       int64
	TenantID string
	Name     string
	Email    string
	Phone    string
	IsActive bool
}

// CustomerSummary is the customer projection attached to orders.
type CustomerSummary struct {
	ID    int64
	Name  string
	Email string
}

// Product is a stocked catalog entry.
type Product struct {
	ID       int64
	TenantID string
	Name     string
	SKU      string
	Price    decimal.Decimal
	Stock    int
	IsActive bool
}

// ProductSummary is the product projection attached to order items.
type ProductSummary struct {
	ID    int64
	Name  string
	SKU   string
	Price decimal.Decimal
}

// Summary projects product fields exposed on order items.
func (p Product) Summary() *ProductSummary {
	return &ProductSummary{ID: p.ID, Name: p.Name, SKU: p.SKU, Price: p.Price}
}
