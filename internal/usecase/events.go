package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/polkiloo/erpcore/internal/broker"
	"github.com/polkiloo/erpcore/internal/cache"
	"github.com/polkiloo/erpcore/internal/domain/model"
)

const (
	EventOrderCreated              = "order.created"
	EventOrderStatusChanged        = "order.status_changed"
	EventOrderCancelled            = "order.cancelled"
	EventOrderPaymentStatusChanged = "order.payment_status_changed"
	EventPayrollCreated            = "payroll.created"
	EventPayrollUpdated            = "payroll.updated"
	EventPayrollProcessed          = "payroll.processed"
	EventPayrollPaid               = "payroll.paid"
	EventPayrollGenerated          = "payroll.generated"
)

type orderEvent struct {
	OrderID       int64               `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    int64               `json:"customer_id"`
	Status        model.OrderStatus   `json:"status"`
	PreviousState model.OrderStatus   `json:"previous_status,omitempty"`
	PaymentStatus model.PaymentStatus `json:"payment_status"`
	Total         decimal.Decimal     `json:"total"`
	ActorID       int64               `json:"actor_id,omitempty"`
}

func newOrderEvent(o *model.Order, previous model.OrderStatus) orderEvent {
	return orderEvent{
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerID:    o.CustomerID,
		Status:        o.Status,
		PreviousState: previous,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		ActorID:       o.CreatedBy,
	}
}

type payrollEvent struct {
	PayrollID  int64               `json:"payroll_id"`
	EmployeeID int64               `json:"employee_id"`
	Period     string              `json:"period"`
	Status     model.PayrollStatus `json:"status"`
	NetSalary  decimal.Decimal     `json:"net_salary"`
}

func newPayrollEvent(p *model.Payroll) payrollEvent {
	return payrollEvent{
		PayrollID:  p.ID,
		EmployeeID: p.EmployeeID,
		Period:     p.Period.String(),
		Status:     p.Status,
		NetSalary:  p.NetSalary,
	}
}

type payrollBatchEvent struct {
	Period  string `json:"period"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// notifier publishes events after commit and keeps the stats cache coherent.
// Neither concern may fail the business operation.
type notifier struct {
	events broker.Publisher
	cache  cache.Cache
	logger *zap.Logger
}

func (n notifier) publish(ctx context.Context, eventType, tenantID string, id int64, payload any) {
	if err := n.events.Publish(ctx, eventType, tenantID, strconv.FormatInt(id, 10), payload); err != nil {
		n.logger.Warn("publish event failed",
			zap.String("type", eventType),
			zap.String("tenant", tenantID),
			zap.Int64("id", id),
			zap.Error(err))
	}
}

func (n notifier) invalidate(ctx context.Context, keys ...string) {
	if err := n.cache.Delete(ctx, keys...); err != nil {
		n.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// cached loads key into dst. It reports false on miss or on any cache failure.
func (n notifier) cached(ctx context.Context, key string, dst any) bool {
	raw, err := n.cache.Get(ctx, key)
	if err != nil {
		n.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		n.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (n notifier) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		n.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := n.cache.Set(ctx, key, string(raw), ttl); err != nil {
		n.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
