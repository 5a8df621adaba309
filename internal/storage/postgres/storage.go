package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/repository"
)

// querier is the statement surface shared by the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *zap.Logger
}

var _ repository.Store = (*Storage)(nil)

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *zap.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) Customers() repository.CustomerRepository {
	return &customerRepository{db: s.pool}
}

func (s *Storage) Products() repository.ProductRepository {
	return &productRepository{db: s.pool}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{db: s.pool}
}

func (s *Storage) Employees() repository.EmployeeRepository {
	return &employeeRepository{db: s.pool}
}

func (s *Storage) Payrolls() repository.PayrollRepository {
	return &payrollRepository{db: s.pool}
}

// txFactory hands out repositories bound to a single transaction.
type txFactory struct {
	tx pgx.Tx
}

func (f txFactory) Customers() repository.CustomerRepository {
	return &customerRepository{db: f.tx}
}

func (f txFactory) Products() repository.ProductRepository {
	return &productRepository{db: f.tx}
}

func (f txFactory) Orders() repository.OrderRepository {
	return &orderRepository{db: f.tx}
}

func (f txFactory) Employees() repository.EmployeeRepository {
	return &employeeRepository{db: f.tx}
}

func (f txFactory) Payrolls() repository.PayrollRepository {
	return &payrollRepository{db: f.tx}
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
            id BIGSERIAL PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            name TEXT NOT NULL,
            email TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE TABLE IF NOT EXISTS products (
            id BIGSERIAL PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            name TEXT NOT NULL,
            sku TEXT NOT NULL,
            price NUMERIC(14,2) NOT NULL DEFAULT 0,
            stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            order_number TEXT NOT NULL,
            customer_id BIGINT NOT NULL REFERENCES customers(id),
            subtotal NUMERIC(14,2) NOT NULL,
            tax_rate NUMERIC(5,2) NOT NULL DEFAULT 0,
            tax_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
            discount_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
            total NUMERIC(14,2) NOT NULL,
            status TEXT NOT NULL,
            payment_method TEXT NOT NULL DEFAULT '',
            payment_status TEXT NOT NULL,
            notes TEXT NOT NULL DEFAULT '',
            expected_delivery TIMESTAMPTZ,
            created_by BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (tenant_id, order_number)
        )`,
	`CREATE TABLE IF NOT EXISTS order_items (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            product_id BIGINT NOT NULL REFERENCES products(id),
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            unit_price NUMERIC(14,2) NOT NULL,
            discount NUMERIC(5,2) NOT NULL DEFAULT 0,
            total NUMERIC(14,2) NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS employees (
            id BIGSERIAL PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL DEFAULT '',
            department TEXT NOT NULL DEFAULT '',
            base_salary NUMERIC(14,2) NOT NULL DEFAULT 0,
            status TEXT NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS payrolls (
            id BIGSERIAL PRIMARY KEY,
            tenant_id TEXT NOT NULL,
            employee_id BIGINT NOT NULL REFERENCES employees(id),
            period TEXT NOT NULL,
            year INTEGER NOT NULL,
            month INTEGER NOT NULL,
            basic_salary NUMERIC(14,2) NOT NULL,
            overtime_pay NUMERIC(14,2) NOT NULL DEFAULT 0,
            bonuses NUMERIC(14,2) NOT NULL DEFAULT 0,
            allowances NUMERIC(14,2) NOT NULL DEFAULT 0,
            taxes NUMERIC(14,2) NOT NULL DEFAULT 0,
            social_security NUMERIC(14,2) NOT NULL DEFAULT 0,
            health_insurance NUMERIC(14,2) NOT NULL DEFAULT 0,
            other_deductions NUMERIC(14,2) NOT NULL DEFAULT 0,
            gross_salary NUMERIC(14,2) NOT NULL,
            total_deductions NUMERIC(14,2) NOT NULL,
            net_salary NUMERIC(14,2) NOT NULL,
            status TEXT NOT NULL,
            notes TEXT NOT NULL DEFAULT '',
            processed_at TIMESTAMPTZ,
            processed_by BIGINT,
            paid_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (tenant_id, employee_id, period)
        )`,
	`CREATE INDEX IF NOT EXISTS idx_orders_tenant_created ON orders(tenant_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payrolls_tenant_period ON payrolls(tenant_id, year, month)`,
}

func (s *Storage) initSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// WithinTransaction runs fn with repositories bound to one transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(repository.Factory) error) error {
	return s.withinTx(ctx, func(tx pgx.Tx) error {
		return fn(txFactory{tx: tx})
	})
}

func (s *Storage) withinTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.logger.Warn("rollback failed", zap.Error(rbErr))
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *zap.Logger {
	return s.logger
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domainErrors.ErrAlreadyExists
	}
	return err
}
