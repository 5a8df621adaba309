package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/erpcore/internal/broker"
	"github.com/polkiloo/erpcore/internal/cache"
	"github.com/polkiloo/erpcore/internal/config"
	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
	"github.com/polkiloo/erpcore/internal/domain/repository"
	"github.com/polkiloo/erpcore/internal/telemetry"
)

const (
	topRankingSize       = 10
	orderNumberAttempts  = 3
	idempotencyKeyTTL    = 24 * time.Hour
	minSearchQueryLength = 2
)

// Deps are the collaborators shared by order and payroll use cases.
type Deps struct {
	fx.In

	Store   repository.Store
	Events  broker.Publisher
	Cache   cache.Cache
	Metrics *telemetry.Metrics
	Logger  *zap.Logger
	Config  *config.Config
}

// OrderUseCase encapsulates order fulfillment rules.
type OrderUseCase struct {
	store    repository.Store
	notify   notifier
	cache    cache.Cache
	metrics  *telemetry.Metrics
	logger   *zap.Logger
	rules    config.BusinessRules
	statsTTL time.Duration
	now      func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(d Deps) *OrderUseCase {
	logger := d.Logger.Named("orders")
	return &OrderUseCase{
		store:    d.Store,
		notify:   notifier{events: d.Events, cache: d.Cache, logger: logger},
		cache:    d.Cache,
		metrics:  d.Metrics,
		logger:   logger,
		rules:    d.Config.Business,
		statsTTL: d.Config.StatsCacheTTL,
		now:      time.Now,
	}
}

// Create validates customer and stock, then persists the order, its items and
// the stock decrements in one transaction.
func (u *OrderUseCase) Create(ctx context.Context, tenantID string, actorID int64, in model.CreateOrderInput) (order *model.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderUseCase.Create")
	defer func() { telemetry.EndSpan(span, err) }()

	if err := ValidateOrderInput(in); err != nil {
		return nil, err
	}

	idemKey := ""
	if key := strings.TrimSpace(in.IdempotencyKey); key != "" {
		idemKey = u.cache.Key("idempotency", tenantID, key)
		if replayed := u.replay(ctx, tenantID, idemKey); replayed != nil {
			return replayed, nil
		}
	}

	customer, err := u.store.Customers().GetByID(ctx, tenantID, in.CustomerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, fmt.Errorf("customer %d: %w", in.CustomerID, domainErrors.ErrNotFound)
		}
		return nil, err
	}
	if !customer.IsActive {
		return nil, fmt.Errorf("customer %d: %w", in.CustomerID, domainErrors.ErrInactive)
	}

	products, err := u.store.Products().ListByIDs(ctx, tenantID, distinctProductIDs(in.Items))
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	if violations := stockViolations(in.Items, byID); len(violations) > 0 {
		u.metrics.StockRejections.Inc()
		return nil, &domainErrors.StockError{Violations: violations}
	}

	draft := u.buildOrder(tenantID, actorID, in, byID)

	number := strings.TrimSpace(in.OrderNumber)
	var created *model.Order
	for attempt := 1; attempt <= orderNumberAttempts; attempt++ {
		created, err = u.persist(ctx, draft, number)
		if err == nil || number != "" || !errors.Is(err, domainErrors.ErrAlreadyExists) {
			break
		}
		u.logger.Warn("order number collision, retrying", zap.String("tenant", tenantID), zap.Int("attempt", attempt))
	}
	if err != nil {
		if errors.Is(err, domainErrors.ErrStockValidation) {
			u.metrics.StockRejections.Inc()
		}
		return nil, err
	}

	order, err = u.store.Orders().GetByID(ctx, tenantID, created.ID)
	if err != nil {
		return nil, fmt.Errorf("reload order %d: %w", created.ID, err)
	}

	u.metrics.OrdersCreated.Inc()
	u.logger.Info("order created",
		zap.String("tenant", tenantID),
		zap.Int64("order_id", order.ID),
		zap.String("number", order.OrderNumber),
		zap.Int64("actor", actorID))
	u.notify.publish(ctx, EventOrderCreated, tenantID, order.ID, newOrderEvent(order, ""))
	u.notify.invalidate(ctx, u.statsKey(tenantID))
	if idemKey != "" {
		if err := u.cache.Set(ctx, idemKey, strconv.FormatInt(order.ID, 10), idempotencyKeyTTL); err != nil {
			u.logger.Warn("store idempotency key failed", zap.Error(err))
		}
	}
	return order, nil
}

func (u *OrderUseCase) replay(ctx context.Context, tenantID, key string) *model.Order {
	raw, err := u.cache.Get(ctx, key)
	if err != nil {
		u.logger.Warn("idempotency lookup failed", zap.Error(err))
		return nil
	}
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	order, err := u.store.Orders().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil
	}
	u.logger.Info("order replayed from idempotency key", zap.String("tenant", tenantID), zap.Int64("order_id", id))
	return order
}

func (u *OrderUseCase) persist(ctx context.Context, draft model.Order, number string) (*model.Order, error) {
	var created *model.Order
	err := u.store.WithinTransaction(ctx, func(f repository.Factory) error {
		if number == "" {
			day := u.now()
			latest, err := f.Orders().LatestNumber(ctx, draft.TenantID, OrderNumberPrefix(u.rules.OrderNumberPrefix, day))
			if err != nil {
				return fmt.Errorf("latest order number: %w", err)
			}
			number = NextOrderNumber(u.rules.OrderNumberPrefix, day, latest)
		}
		draft.OrderNumber = number

		var drained []string
		for _, line := range groupQuantities(draft.Items) {
			ok, err := f.Products().DecrementStock(ctx, draft.TenantID, line.ProductID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock of product %d: %w", line.ProductID, err)
			}
			if !ok {
				drained = append(drained, fmt.Sprintf("insufficient stock for product %d", line.ProductID))
			}
		}
		if len(drained) > 0 {
			return &domainErrors.StockError{Violations: drained}
		}

		var err error
		created, err = f.Orders().Create(ctx, &draft)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (u *OrderUseCase) buildOrder(tenantID string, actorID int64, in model.CreateOrderInput, products map[int64]model.Product) model.Order {
	order := model.Order{
		TenantID:         tenantID,
		CustomerID:       in.CustomerID,
		TaxRate:          in.TaxRate,
		DiscountAmount:   in.DiscountAmount.Round(2),
		Status:           model.OrderStatusPending,
		PaymentMethod:    in.PaymentMethod,
		PaymentStatus:    in.PaymentStatus,
		Notes:            in.Notes,
		ExpectedDelivery: in.ExpectedDelivery,
		CreatedBy:        actorID,
		Subtotal:         decimal.Zero,
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = model.PaymentStatusPending
	}

	for _, item := range in.Items {
		price := item.UnitPrice
		if price.IsZero() {
			price = products[item.ProductID].Price
		}
		line := model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: price,
			Discount:  item.Discount,
			Total:     ItemTotal(item.Quantity, price, item.Discount),
			Product:   products[item.ProductID].Summary(),
		}
		order.Items = append(order.Items, line)
		order.Subtotal = order.Subtotal.Add(line.Total)
	}
	order.ItemCount = len(order.Items)

	if in.TaxRate.IsPositive() {
		order.TaxAmount = percentOf(order.Subtotal, in.TaxRate)
	} else {
		order.TaxAmount = in.TaxAmount.Round(2)
	}
	order.Total = order.Subtotal.Add(order.TaxAmount).Sub(order.DiscountAmount)
	return order
}

func distinctProductIDs(items []model.OrderItemInput) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// stockViolations lists every product that is missing, inactive or short of the
// total quantity requested across all lines.
func stockViolations(items []model.OrderItemInput, products map[int64]model.Product) []string {
	requested := make(map[int64]int, len(items))
	for _, item := range items {
		requested[item.ProductID] += item.Quantity
	}

	var violations []string
	for _, id := range distinctProductIDs(items) {
		p, ok := products[id]
		switch {
		case !ok:
			violations = append(violations, fmt.Sprintf("product %d not found", id))
		case !p.IsActive:
			violations = append(violations, fmt.Sprintf("product %s (%d) is inactive", p.Name, id))
		case p.Stock < requested[id]:
			violations = append(violations, fmt.Sprintf("insufficient stock for %s (%d): requested %d, available %d",
				p.Name, id, requested[id], p.Stock))
		}
	}
	return violations
}

// groupQuantities sums quantities per product, ordered by product id.
func groupQuantities(items []model.OrderItem) []model.OrderItem {
	sums := make(map[int64]int, len(items))
	for _, item := range items {
		sums[item.ProductID] += item.Quantity
	}
	out := make([]model.OrderItem, 0, len(sums))
	for id, qty := range sums {
		out = append(out, model.OrderItem{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Get returns a single order with its items.
func (u *OrderUseCase) Get(ctx context.Context, tenantID string, id int64) (*model.Order, error) {
	return u.store.Orders().GetByID(ctx, tenantID, id)
}

// List returns a page of orders and the total number matching filter.
func (u *OrderUseCase) List(ctx context.Context, tenantID string, filter model.OrderFilter) ([]model.Order, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domainErrors.Invalid("unknown order status %q", filter.Status)
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return nil, 0, domainErrors.Invalid("unknown payment status %q", filter.PaymentStatus)
	}
	filter.Page = filter.Page.Normalize()
	return u.store.Orders().List(ctx, tenantID, filter)
}

// UpdateStatus moves an order along its lifecycle. Cancellation restores stock
// through the same transaction as Cancel.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, tenantID string, id int64, status model.OrderStatus) (order *model.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderUseCase.UpdateStatus")
	defer func() { telemetry.EndSpan(span, err) }()

	if !status.Valid() {
		return nil, domainErrors.Invalid("unknown order status %q", status)
	}
	if status == model.OrderStatusCancelled {
		return u.cancel(ctx, tenantID, id, "", func(from model.OrderStatus) bool {
			return from.CanTransition(model.OrderStatusCancelled)
		})
	}

	current, err := u.store.Orders().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransition(status) {
		return nil, &domainErrors.TransitionError{Entity: "order", From: string(current.Status), To: string(status)}
	}
	if err := u.store.Orders().UpdateStatus(ctx, tenantID, id, current.Status, status, current.Notes); err != nil {
		return nil, err
	}

	order, err = u.store.Orders().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	u.metrics.OrderTransitions.WithLabelValues(string(current.Status), string(status)).Inc()
	u.logger.Info("order status changed",
		zap.String("tenant", tenantID),
		zap.Int64("order_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)))
	u.notify.publish(ctx, EventOrderStatusChanged, tenantID, id, newOrderEvent(order, current.Status))
	u.notify.invalidate(ctx, u.statsKey(tenantID))
	return order, nil
}

// Cancel cancels any non-terminal order, restoring stock and appending reason to notes.
func (u *OrderUseCase) Cancel(ctx context.Context, tenantID string, id int64, reason string) (order *model.Order, err error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderUseCase.Cancel")
	defer func() { telemetry.EndSpan(span, err) }()

	return u.cancel(ctx, tenantID, id, reason, func(from model.OrderStatus) bool {
		return !from.Terminal()
	})
}

func (u *OrderUseCase) cancel(ctx context.Context, tenantID string, id int64, reason string, allowed func(model.OrderStatus) bool) (*model.Order, error) {
	var previous model.OrderStatus
	err := u.store.WithinTransaction(ctx, func(f repository.Factory) error {
		current, err := f.Orders().GetForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if !allowed(current.Status) {
			return &domainErrors.TransitionError{Entity: "order", From: string(current.Status), To: string(model.OrderStatusCancelled)}
		}
		previous = current.Status

		if err := restoreStock(ctx, f, tenantID, id); err != nil {
			return err
		}
		return f.Orders().UpdateStatus(ctx, tenantID, id, current.Status, model.OrderStatusCancelled, appendNote(current.Notes, reason))
	})
	if err != nil {
		return nil, err
	}

	order, err := u.store.Orders().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	u.metrics.OrdersCancelled.Inc()
	u.metrics.OrderTransitions.WithLabelValues(string(previous), string(model.OrderStatusCancelled)).Inc()
	u.logger.Info("order cancelled",
		zap.String("tenant", tenantID),
		zap.Int64("order_id", id),
		zap.String("from", string(previous)))
	u.notify.publish(ctx, EventOrderCancelled, tenantID, id, newOrderEvent(order, previous))
	u.notify.invalidate(ctx, u.statsKey(tenantID))
	return order, nil
}

// restoreStock issues one increment per distinct product of the order.
func restoreStock(ctx context.Context, f repository.Factory, tenantID string, orderID int64) error {
	items, err := f.Orders().ListItems(ctx, orderID)
	if err != nil {
		return fmt.Errorf("list items of order %d: %w", orderID, err)
	}
	for _, line := range groupQuantities(items) {
		if err := f.Products().IncrementStock(ctx, tenantID, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("restore stock of product %d: %w", line.ProductID, err)
		}
	}
	return nil
}

func appendNote(notes, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return notes
	}
	if notes == "" {
		return reason
	}
	return notes + "\n" + reason
}

// UpdatePaymentStatus changes settlement state of a non-terminal order.
func (u *OrderUseCase) UpdatePaymentStatus(ctx context.Context, tenantID string, id int64, status model.PaymentStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, domainErrors.Invalid("unknown payment status %q", status)
	}
	current, err := u.store.Orders().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("order %d is %s: %w", id, current.Status, domainErrors.ErrImmutable)
	}
	if err := u.store.Orders().UpdatePaymentStatus(ctx, tenantID, id, status); err != nil {
		return nil, err
	}
	order, err := u.store.Orders().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	u.logger.Info("order payment status changed",
		zap.String("tenant", tenantID),
		zap.Int64("order_id", id),
		zap.String("payment_status", string(status)))
	u.notify.publish(ctx, EventOrderPaymentStatusChanged, tenantID, id, newOrderEvent(order, ""))
	u.notify.invalidate(ctx, u.statsKey(tenantID))
	return order, nil
}

// Stats runs the independent aggregates in parallel and resolves names of the
// top customers and products with one bulk lookup each.
func (u *OrderUseCase) Stats(ctx context.Context, tenantID string) (*model.OrderStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "OrderUseCase.Stats")
	defer span.End()

	key := u.statsKey(tenantID)
	var stats model.OrderStats
	if u.notify.cached(ctx, key, &stats) {
		return &stats, nil
	}

	var (
		totals       model.OrderTotals
		byStatus     []model.GroupCount
		byPayment    []model.GroupCount
		topCustomers []model.TopCustomer
		topProducts  []model.TopProduct
	)
	orders := u.store.Orders()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { totals, err = orders.Totals(gctx, tenantID); return })
	g.Go(func() (err error) { byStatus, err = orders.CountByStatus(gctx, tenantID); return })
	g.Go(func() (err error) { byPayment, err = orders.CountByPaymentStatus(gctx, tenantID); return })
	g.Go(func() (err error) { topCustomers, err = orders.TopCustomers(gctx, tenantID, topRankingSize); return })
	g.Go(func() (err error) { topProducts, err = orders.TopProducts(gctx, tenantID, topRankingSize); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}

	if err := u.resolveNames(ctx, tenantID, topCustomers, topProducts); err != nil {
		return nil, err
	}

	stats = model.OrderStats{
		TotalOrders:       totals.Count,
		TotalRevenue:      totals.Revenue,
		AverageOrderValue: decimal.Zero,
		ByStatus:          model.Breakdowns(byStatus, totals.Count),
		ByPaymentStatus:   model.Breakdowns(byPayment, totals.Count),
		TopCustomers:      topCustomers,
		TopProducts:       topProducts,
	}
	if totals.Count > 0 {
		stats.AverageOrderValue = totals.Revenue.Div(decimal.NewFromInt(totals.Count)).Round(2)
	}
	u.notify.store(ctx, key, stats, u.statsTTL)
	return &stats, nil
}

func (u *OrderUseCase) resolveNames(ctx context.Context, tenantID string, customers []model.TopCustomer, products []model.TopProduct) error {
	customerIDs := make([]int64, 0, len(customers))
	for _, c := range customers {
		customerIDs = append(customerIDs, c.CustomerID)
	}
	productIDs := make([]int64, 0, len(products))
	for _, p := range products {
		productIDs = append(productIDs, p.ProductID)
	}

	var (
		customerRows []model.Customer
		productRows  []model.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customerRows, err = u.store.Customers().ListByIDs(gctx, tenantID, customerIDs)
		return
	})
	g.Go(func() (err error) {
		productRows, err = u.store.Products().ListByIDs(gctx, tenantID, productIDs)
		return
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("resolve ranking names: %w", err)
	}

	customerNames := make(map[int64]string, len(customerRows))
	for _, c := range customerRows {
		customerNames[c.ID] = c.Name
	}
	for i := range customers {
		customers[i].Name = customerNames[customers[i].CustomerID]
	}

	productByID := make(map[int64]model.Product, len(productRows))
	for _, p := range productRows {
		productByID[p.ID] = p
	}
	for i := range products {
		p := productByID[products[i].ProductID]
		products[i].Name = p.Name
		products[i].SKU = p.SKU
	}
	return nil
}

// Search matches order number or customer name, newest first. Queries shorter
// than two characters return nothing without touching storage.
func (u *OrderUseCase) Search(ctx context.Context, tenantID, query string, limit int) ([]model.Order, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minSearchQueryLength {
		return []model.Order{}, nil
	}
	if limit <= 0 {
		limit = u.rules.Search.DefaultLimit
	}
	if limit > u.rules.Search.MaxLimit {
		limit = u.rules.Search.MaxLimit
	}
	orders, err := u.store.Orders().Search(ctx, tenantID, query, limit)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (u *OrderUseCase) statsKey(tenantID string) string {
	return u.cache.Key("stats", "orders", tenantID)
}
