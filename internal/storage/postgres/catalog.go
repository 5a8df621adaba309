package postgres

import (
	"context"

	"github.com/polkiloo/erpcore/internal/domain/model"
)

type customerRepository struct {
	db querier
}

type productRepository struct {
	db querier
}

const customerColumns = `id, tenant_id, name, email, phone, is_active`

func (r *customerRepository) GetByID(ctx context.Context, tenantID string, id int64) (*model.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id=$1 AND id=$2`
	var c model.Customer
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.IsActive)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

func (r *customerRepository) ListByIDs(ctx context.Context, tenantID string, ids []int64) ([]model.Customer, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id=$1 AND id = ANY($2)`
	rows, err := r.db.Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.IsActive); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

const productColumns = `id, tenant_id, name, sku, price, stock, is_active`

func (r *productRepository) ListByIDs(ctx context.Context, tenantID string, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + productColumns + ` FROM products WHERE tenant_id=$1 AND id = ANY($2)`
	rows, err := r.db.Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.SKU, &p.Price, &p.Stock, &p.IsActive); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, tenantID string, productID int64, qty int) (bool, error) {
	const query = `UPDATE products SET stock = stock - $3
                   WHERE tenant_id=$1 AND id=$2 AND is_active AND stock >= $3`
	tag, err := r.db.Exec(ctx, query, tenantID, productID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *productRepository) IncrementStock(ctx context.Context, tenantID string, productID int64, qty int) error {
	const query = `UPDATE products SET stock = stock + $3 WHERE tenant_id=$1 AND id=$2`
	_, err := r.db.Exec(ctx, query, tenantID, productID, qty)
	return err
}
