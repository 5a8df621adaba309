package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/erpcore/internal/domain/model"
)

// OrderItemRequest is a requested order line.
type OrderItemRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// CreateOrderRequest describes POST /orders payload.
type CreateOrderRequest struct {
	CustomerID       int64              `json:"customer_id"`
	OrderNumber      string             `json:"order_number"`
	Items            []OrderItemRequest `json:"items"`
	TaxRate          decimal.Decimal    `json:"tax_rate"`
	TaxAmount        decimal.Decimal    `json:"tax_amount"`
	DiscountAmount   decimal.Decimal    `json:"discount_amount"`
	PaymentMethod    string             `json:"payment_method"`
	PaymentStatus    string             `json:"payment_status"`
	Notes            string             `json:"notes"`
	ExpectedDelivery *time.Time         `json:"expected_delivery"`
}

// Input converts the request into the use case input.
func (r CreateOrderRequest) Input(idempotencyKey string) model.CreateOrderInput {
	items := make([]model.OrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, model.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
		})
	}
	return model.CreateOrderInput{
		CustomerID:       r.CustomerID,
		OrderNumber:      r.OrderNumber,
		Items:            items,
		TaxRate:          r.TaxRate,
		TaxAmount:        r.TaxAmount,
		DiscountAmount:   r.DiscountAmount,
		PaymentMethod:    r.PaymentMethod,
		PaymentStatus:    model.PaymentStatus(r.PaymentStatus),
		Notes:            r.Notes,
		ExpectedDelivery: r.ExpectedDelivery,
		IdempotencyKey:   idempotencyKey,
	}
}

// OrderStatusRequest describes PATCH /orders/:id/status payload.
type OrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PaymentStatusRequest describes PATCH /orders/:id/payment-status payload.
type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// CancelOrderRequest describes POST /orders/:id/cancel payload.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// ProductSummaryResponse is the product attached to an order line.
type ProductSummaryResponse struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	SKU   string          `json:"sku"`
	Price decimal.Decimal `json:"price"`
}

// OrderItemResponse is an order line.
type OrderItemResponse struct {
	ID        int64                   `json:"id"`
	ProductID int64                   `json:"product_id"`
	Quantity  int                     `json:"quantity"`
	UnitPrice decimal.Decimal         `json:"unit_price"`
	Discount  decimal.Decimal         `json:"discount"`
	Total     decimal.Decimal         `json:"total"`
	Product   *ProductSummaryResponse `json:"product,omitempty"`
}

// CustomerSummaryResponse is the customer attached to an order.
type CustomerSummaryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// OrderResponse represents an order.
type OrderResponse struct {
	ID               int64                    `json:"id"`
	OrderNumber      string                   `json:"order_number"`
	CustomerID       int64                    `json:"customer_id"`
	Customer         *CustomerSummaryResponse `json:"customer,omitempty"`
	Items            []OrderItemResponse      `json:"items,omitempty"`
	ItemCount        int                      `json:"item_count"`
	Subtotal         decimal.Decimal          `json:"subtotal"`
	TaxRate          decimal.Decimal          `json:"tax_rate"`
	TaxAmount        decimal.Decimal          `json:"tax_amount"`
	DiscountAmount   decimal.Decimal          `json:"discount_amount"`
	Total            decimal.Decimal          `json:"total"`
	Status           string                   `json:"status"`
	PaymentMethod    string                   `json:"payment_method,omitempty"`
	PaymentStatus    string                   `json:"payment_status"`
	Notes            string                   `json:"notes,omitempty"`
	ExpectedDelivery *time.Time               `json:"expected_delivery,omitempty"`
	CreatedBy        int64                    `json:"created_by"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// NewOrderResponse converts an order.
func NewOrderResponse(o model.Order) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		CustomerID:       o.CustomerID,
		ItemCount:        o.ItemCount,
		Subtotal:         o.Subtotal,
		TaxRate:          o.TaxRate,
		TaxAmount:        o.TaxAmount,
		DiscountAmount:   o.DiscountAmount,
		Total:            o.Total,
		Status:           string(o.Status),
		PaymentMethod:    o.PaymentMethod,
		PaymentStatus:    string(o.PaymentStatus),
		Notes:            o.Notes,
		ExpectedDelivery: o.ExpectedDelivery,
		CreatedBy:        o.CreatedBy,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	if o.Customer != nil {
		resp.Customer = &CustomerSummaryResponse{ID: o.Customer.ID, Name: o.Customer.Name, Email: o.Customer.Email}
	}
	for _, item := range o.Items {
		line := OrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Total:     item.Total,
		}
		if item.Product != nil {
			line.Product = &ProductSummaryResponse{ID: item.Product.ID, Name: item.Product.Name, SKU: item.Product.SKU, Price: item.Product.Price}
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

// NewOrderResponses converts a slice of orders, never returning nil.
func NewOrderResponses(orders []model.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}

// TopCustomerResponse ranks a customer by revenue.
type TopCustomerResponse struct {
	CustomerID int64           `json:"customer_id"`
	Name       string          `json:"name"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TopProductResponse ranks a product by revenue.
type TopProductResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Units     int64           `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// OrderStatsResponse is the order dashboard.
type OrderStatsResponse struct {
	TotalOrders       int64                 `json:"total_orders"`
	TotalRevenue      decimal.Decimal       `json:"total_revenue"`
	AverageOrderValue decimal.Decimal       `json:"average_order_value"`
	ByStatus          []BreakdownResponse   `json:"by_status"`
	ByPaymentStatus   []BreakdownResponse   `json:"by_payment_status"`
	TopCustomers      []TopCustomerResponse `json:"top_customers"`
	TopProducts       []TopProductResponse  `json:"top_products"`
}

// NewOrderStatsResponse converts order stats.
func NewOrderStatsResponse(s model.OrderStats) OrderStatsResponse {
	resp := OrderStatsResponse{
		TotalOrders:       s.TotalOrders,
		TotalRevenue:      s.TotalRevenue,
		AverageOrderValue: s.AverageOrderValue,
		ByStatus:          breakdowns(s.ByStatus),
		ByPaymentStatus:   breakdowns(s.ByPaymentStatus),
		TopCustomers:      make([]TopCustomerResponse, 0, len(s.TopCustomers)),
		TopProducts:       make([]TopProductResponse, 0, len(s.TopProducts)),
	}
	for _, c := range s.TopCustomers {
		resp.TopCustomers = append(resp.TopCustomers, TopCustomerResponse(c))
	}
	for _, p := range s.TopProducts {
		resp.TopProducts = append(resp.TopProducts, TopProductResponse(p))
	}
	return resp
}

func breakdowns(in []model.Breakdown) []BreakdownResponse {
	out := make([]BreakdownResponse, 0, len(in))
	for _, b := range in {
		out = append(out, BreakdownResponse(b))
	}
	return out
}
