package repository

import (
	"context"
	"time"

	"github.com/polkiloo/erpcore/internal/domain/model"
)

// EmployeeRepository reads payroll subjects.
type EmployeeRepository interface {
	GetByID(ctx context.Context, tenantID string, id int64) (*model.Employee, error)
	ListByStatus(ctx context.Context, tenantID string, status model.EmployeeStatus) ([]model.Employee, error)
	// TenantsWithStatus lists tenants having at least one employee in status.
	TenantsWithStatus(ctx context.Context, status model.EmployeeStatus) ([]string, error)
}

// PayrollRepository describes persistence operations with payrolls.
type PayrollRepository interface {
	Create(ctx context.Context, payroll *model.Payroll) (*model.Payroll, error)
	GetByID(ctx context.Context, tenantID string, id int64) (*model.Payroll, error)
	Exists(ctx context.Context, tenantID string, employeeID int64, period model.Period) (bool, error)
	EmployeeIDsForPeriod(ctx context.Context, tenantID string, period model.Period) ([]int64, error)
	List(ctx context.Context, tenantID string, filter model.PayrollFilter) ([]model.Payroll, int64, error)
	// Update rewrites amounts and notes of a pending payroll.
	Update(ctx context.Context, payroll *model.Payroll) (*model.Payroll, error)
	// Transition moves a payroll from one status to another and stamps at.
	Transition(ctx context.Context, tenantID string, id int64, from, to model.PayrollStatus, actor *int64, at time.Time) (*model.Payroll, error)
	Delete(ctx context.Context, tenantID string, id int64) error

	Totals(ctx context.Context, tenantID string, period model.Period) (model.PayrollTotals, error)
	CountByStatus(ctx context.Context, tenantID string, period model.Period) ([]model.GroupCount, error)
	SumsByEmployee(ctx context.Context, tenantID string, period model.Period) ([]model.EmployeePayrollSum, error)
}
