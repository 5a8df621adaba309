package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
)

type orderRepository struct {
	db querier
}

type rowScanner interface {
	Scan(dest ...any) error
}

const orderSelect = `SELECT o.id, o.tenant_id, o.order_number, o.customer_id, o.subtotal, o.tax_rate, o.tax_amount,
       o.discount_amount, o.total, o.status, o.payment_method, o.payment_status, o.notes, o.expected_delivery,
       o.created_by, o.created_at, o.updated_at, c.name, c.email,
       (SELECT COUNT(*) FROM order_items i WHERE i.order_id = o.id)
FROM orders o JOIN customers c ON c.id = o.customer_id`

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o        model.Order
		customer model.CustomerSummary
	)
	err := row.Scan(&o.ID, &o.TenantID, &o.OrderNumber, &o.CustomerID, &o.Subtotal, &o.TaxRate, &o.TaxAmount,
		&o.DiscountAmount, &o.Total, &o.Status, &o.PaymentMethod, &o.PaymentStatus, &o.Notes, &o.ExpectedDelivery,
		&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &customer.Name, &customer.Email, &o.ItemCount)
	if err != nil {
		return nil, err
	}
	customer.ID = o.CustomerID
	o.Customer = &customer
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	const insertOrder = `INSERT INTO orders (tenant_id, order_number, customer_id, subtotal, tax_rate, tax_amount,
                   discount_amount, total, status, payment_method, payment_status, notes, expected_delivery, created_by)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
                   RETURNING id, created_at, updated_at`
	const insertItem = `INSERT INTO order_items (order_id, product_id, quantity, unit_price, discount, total)
                   VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	created := *order
	err := r.db.QueryRow(ctx, insertOrder,
		order.TenantID, order.OrderNumber, order.CustomerID, order.Subtotal, order.TaxRate, order.TaxAmount,
		order.DiscountAmount, order.Total, order.Status, order.PaymentMethod, order.PaymentStatus, order.Notes,
		order.ExpectedDelivery, order.CreatedBy,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	created.Items = make([]model.OrderItem, len(order.Items))
	for i, item := range order.Items {
		item.OrderID = created.ID
		if err := r.db.QueryRow(ctx, insertItem,
			item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Discount, item.Total,
		).Scan(&item.ID); err != nil {
			return nil, fmt.Errorf("insert item %d: %w", i, err)
		}
		created.Items[i] = item
	}
	created.ItemCount = len(created.Items)
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, tenantID string, id int64) (*model.Order, error) {
	const query = orderSelect + ` WHERE o.tenant_id=$1 AND o.id=$2`
	order, err := scanOrder(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, mapError(err)
	}
	items, err := r.ListItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.ItemCount = len(items)
	return order, nil
}

func (r *orderRepository) ListItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	const query = `SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price, i.discount, i.total,
       p.name, p.sku, p.price
FROM order_items i JOIN products p ON p.id = i.product_id
WHERE i.order_id=$1 ORDER BY i.id`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OrderItem
	for rows.Next() {
		var (
			it      model.OrderItem
			product model.ProductSummary
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Discount, &it.Total,
			&product.Name, &product.SKU, &product.Price); err != nil {
			return nil, err
		}
		product.ID = it.ProductID
		it.Product = &product
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) List(ctx context.Context, tenantID string, filter model.OrderFilter) ([]model.Order, int64, error) {
	where := []string{"o.tenant_id=$1"}
	args := []any{tenantID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("o.status=$%d", filter.Status)
	}
	if filter.PaymentStatus != "" {
		add("o.payment_status=$%d", filter.PaymentStatus)
	}
	if filter.CustomerID != 0 {
		add("o.customer_id=$%d", filter.CustomerID)
	}
	if filter.From != nil {
		add("o.created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("o.created_at < $%d", *filter.To)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders o WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	query := fmt.Sprintf(`%s WHERE %s ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d`,
		orderSelect, cond, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *orderRepository) Search(ctx context.Context, tenantID, query string, limit int) ([]model.Order, error) {
	const stmt = orderSelect + ` WHERE o.tenant_id=$1 AND (o.order_number ILIKE $2 OR c.name ILIKE $2)
ORDER BY o.created_at DESC, o.id DESC LIMIT $3`
	pattern := "%" + likeEscaper.Replace(query) + "%"
	rows, err := r.db.Query(ctx, stmt, tenantID, pattern, limit)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) LatestNumber(ctx context.Context, tenantID, prefix string) (string, error) {
	const query = `SELECT order_number FROM orders
                   WHERE tenant_id=$1 AND starts_with(order_number, $2)
                     AND substring(order_number FROM char_length($2) + 1) ~ '^[0-9]{1,18}$'
                   ORDER BY CAST(substring(order_number FROM char_length($2) + 1) AS BIGINT) DESC LIMIT 1`
	var number string
	err := r.db.QueryRow(ctx, query, tenantID, prefix).Scan(&number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return number, nil
}

func (r *orderRepository) GetForUpdate(ctx context.Context, tenantID string, id int64) (*model.Order, error) {
	const query = `SELECT id, tenant_id, order_number, status, notes FROM orders
                   WHERE tenant_id=$1 AND id=$2 FOR UPDATE`
	var o model.Order
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&o.ID, &o.TenantID, &o.OrderNumber, &o.Status, &o.Notes)
	if err != nil {
		return nil, mapError(err)
	}
	return &o, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, tenantID string, id int64, from, to model.OrderStatus, notes string) error {
	const query = `UPDATE orders SET status=$4, notes=$5, updated_at=NOW() WHERE tenant_id=$1 AND id=$2 AND status=$3`
	tag, err := r.db.Exec(ctx, query, tenantID, id, from, to, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	const current = `SELECT status FROM orders WHERE tenant_id=$1 AND id=$2`
	var actual model.OrderStatus
	if err := r.db.QueryRow(ctx, current, tenantID, id).Scan(&actual); err != nil {
		return mapError(err)
	}
	return &domainErrors.TransitionError{Entity: "order", From: string(actual), To: string(to)}
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, tenantID string, id int64, status model.PaymentStatus) error {
	const query = `UPDATE orders SET payment_status=$3, updated_at=NOW() WHERE tenant_id=$1 AND id=$2`
	tag, err := r.db.Exec(ctx, query, tenantID, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) Totals(ctx context.Context, tenantID string) (model.OrderTotals, error) {
	const query = `SELECT COUNT(*), COALESCE(SUM(total), 0) FROM orders WHERE tenant_id=$1`
	var totals model.OrderTotals
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&totals.Count, &totals.Revenue); err != nil {
		return model.OrderTotals{}, err
	}
	return totals, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context, tenantID string) ([]model.GroupCount, error) {
	const query = `SELECT status, COUNT(*) FROM orders WHERE tenant_id=$1 GROUP BY status ORDER BY status`
	return queryGroupCounts(ctx, r.db, query, tenantID)
}

func (r *orderRepository) CountByPaymentStatus(ctx context.Context, tenantID string) ([]model.GroupCount, error) {
	const query = `SELECT payment_status, COUNT(*) FROM orders WHERE tenant_id=$1 GROUP BY payment_status ORDER BY payment_status`
	return queryGroupCounts(ctx, r.db, query, tenantID)
}

func (r *orderRepository) TopCustomers(ctx context.Context, tenantID string, limit int) ([]model.TopCustomer, error) {
	const query = `SELECT customer_id, COUNT(*), SUM(total) FROM orders WHERE tenant_id=$1
                   GROUP BY customer_id ORDER BY SUM(total) DESC, customer_id LIMIT $2`
	rows, err := r.db.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TopCustomer
	for rows.Next() {
		var c model.TopCustomer
		if err := rows.Scan(&c.CustomerID, &c.OrderCount, &c.Revenue); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) TopProducts(ctx context.Context, tenantID string, limit int) ([]model.TopProduct, error) {
	const query = `SELECT i.product_id, SUM(i.quantity), SUM(i.total)
                   FROM order_items i JOIN orders o ON o.id = i.order_id
                   WHERE o.tenant_id=$1
                   GROUP BY i.product_id ORDER BY SUM(i.total) DESC, i.product_id LIMIT $2`
	rows, err := r.db.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TopProduct
	for rows.Next() {
		var p model.TopProduct
		if err := rows.Scan(&p.ProductID, &p.Units, &p.Revenue); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func queryGroupCounts(ctx context.Context, db querier, query string, args ...any) ([]model.GroupCount, error) {
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.GroupCount
	for rows.Next() {
		var g model.GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
