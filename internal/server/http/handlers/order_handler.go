package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/erpcore/internal/domain/model"
	"github.com/polkiloo/erpcore/internal/server/http/dto"
)

const idempotencyHeader = "Idempotency-Key"

// OrderHandler manages order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/v1/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed order payload")
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), CurrentPrincipal(c), req.Input(c.GetHeader(idempotencyHeader)))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, dto.NewOrderResponse(*order))
}

// Get handles GET /api/v1/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.facade.Order(c.Request.Context(), CurrentPrincipal(c).TenantID, id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewOrderResponse(*order))
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	customerID, ok := queryInt64(c, "customer_id")
	if !ok {
		return
	}
	filter := model.OrderFilter{
		Status:        model.OrderStatus(c.Query("status")),
		PaymentStatus: model.PaymentStatus(c.Query("payment_status")),
		CustomerID:    customerID,
		Page:          page,
	}
	if filter.From, ok = queryTime(c, "from"); !ok {
		return
	}
	if filter.To, ok = queryTime(c, "to"); !ok {
		return
	}

	orders, total, err := h.facade.Orders(c.Request.Context(), CurrentPrincipal(c).TenantID, filter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.PageResponse[dto.OrderResponse]{
		Items:    dto.NewOrderResponses(orders),
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	})
}

// Search handles GET /api/v1/orders/search.
func (h *OrderHandler) Search(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	orders, err := h.facade.SearchOrders(c.Request.Context(), CurrentPrincipal(c).TenantID, c.Query("q"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewOrderResponses(orders))
}

// Stats handles GET /api/v1/orders/stats.
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.facade.OrderStats(c.Request.Context(), CurrentPrincipal(c).TenantID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewOrderStatsResponse(*stats))
}

// UpdateStatus handles PATCH /api/v1/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	order, err := h.facade.UpdateOrderStatus(c.Request.Context(), CurrentPrincipal(c).TenantID, id, model.OrderStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewOrderResponse(*order))
}

// UpdatePaymentStatus handles PATCH /api/v1/orders/:id/payment-status.
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.PaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payment_status is required")
		return
	}
	order, err := h.facade.UpdatePaymentStatus(c.Request.Context(), CurrentPrincipal(c).TenantID, id, model.PaymentStatus(req.PaymentStatus))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewOrderResponse(*order))
}

// Cancel handles POST /api/v1/orders/:id/cancel. The body is optional.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CancelOrderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, "malformed cancel payload")
			return
		}
	}
	order, err := h.facade.CancelOrder(c.Request.Context(), CurrentPrincipal(c).TenantID, id, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewOrderResponse(*order))
}

func queryTime(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	badRequest(c, "invalid "+key)
	return nil, false
}
