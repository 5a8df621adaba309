package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus describes fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid reports whether status is a known value.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderSequenceDigits bounds the numeric suffix that counts towards a day's sequence.
const OrderSequenceDigits = 18

// OrderSequence returns the numeric suffix of number under dayPrefix.
// Numbers whose suffix is not made of decimal digits only are not part of the sequence.
func OrderSequence(dayPrefix, number string) (int64, bool) {
	suffix, ok := strings.CutPrefix(number, dayPrefix)
	if !ok || suffix == "" || len(suffix) > OrderSequenceDigits {
		return 0, false
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// PaymentStatus describes settlement state of an order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPartial  PaymentStatus = "PARTIAL"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Valid reports whether status is a known value.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// Order is a customer purchase with its line items.
type Order struct {
	ID               int64
	TenantID         string
	OrderNumber      string
	CustomerID       int64
	Items            []OrderItem
	ItemCount        int
	Subtotal         decimal.Decimal
	TaxRate          decimal.Decimal
	TaxAmount        decimal.Decimal
	DiscountAmount   decimal.Decimal
	Total            decimal.Decimal
	Status           OrderStatus
	PaymentMethod    string
	PaymentStatus    PaymentStatus
	Notes            string
	ExpectedDelivery *time.Time
	CreatedBy        int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Customer         *CustomerSummary
}

// OrderItem is a single product line of an order.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	Product   *ProductSummary
}

// OrderItemInput is a requested line of a new order.
type OrderItemInput struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// CreateOrderInput carries a validated order request.
type CreateOrderInput struct {
	CustomerID       int64
	OrderNumber      string
	Items            []OrderItemInput
	TaxRate          decimal.Decimal
	TaxAmount        decimal.Decimal
	DiscountAmount   decimal.Decimal
	PaymentMethod    string
	PaymentStatus    PaymentStatus
	Notes            string
	ExpectedDelivery *time.Time
	IdempotencyKey   string
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	CustomerID    int64
	From          *time.Time
	To            *time.Time
	Page          Page
}
