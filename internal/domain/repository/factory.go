package repository

import "context"

// Factory describes access to different domain repositories.
type Factory interface {
	Customers() CustomerRepository
	Products() ProductRepository
	Orders() OrderRepository
	Employees() EmployeeRepository
	Payrolls() PayrollRepository
}

// Transactor runs fn against repositories sharing one all-or-nothing transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(Factory) error) error
}

// Store is the full data access handle injected into use cases.
type Store interface {
	Factory
	Transactor
}
