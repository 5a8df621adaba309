package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
)

type employeeRepository struct {
	db querier
}

type payrollRepository struct {
	db querier
}

const employeeColumns = `id, tenant_id, first_name, last_name, department, base_salary, status`

func scanEmployee(row rowScanner) (*model.Employee, error) {
	var e model.Employee
	if err := row.Scan(&e.ID, &e.TenantID, &e.FirstName, &e.LastName, &e.Department, &e.BaseSalary, &e.Status); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, tenantID string, id int64) (*model.Employee, error) {
	const query = `SELECT ` + employeeColumns + ` FROM employees WHERE tenant_id=$1 AND id=$2`
	e, err := scanEmployee(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, mapError(err)
	}
	return e, nil
}

func (r *employeeRepository) ListByStatus(ctx context.Context, tenantID string, status model.EmployeeStatus) ([]model.Employee, error) {
	const query = `SELECT ` + employeeColumns + ` FROM employees WHERE tenant_id=$1 AND status=$2 ORDER BY id`
	rows, err := r.db.Query(ctx, query, tenantID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *employeeRepository) TenantsWithStatus(ctx context.Context, status model.EmployeeStatus) ([]string, error) {
	const query = `SELECT DISTINCT tenant_id FROM employees WHERE status=$1 ORDER BY tenant_id`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var tenant string
		if err := rows.Scan(&tenant); err != nil {
			return nil, err
		}
		result = append(result, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

const payrollSelect = `SELECT p.id, p.tenant_id, p.employee_id, p.year, p.month,
       p.basic_salary, p.overtime_pay, p.bonuses, p.allowances,
       p.taxes, p.social_security, p.health_insurance, p.other_deductions,
       p.gross_salary, p.total_deductions, p.net_salary, p.status, p.notes,
       p.processed_at, p.processed_by, p.paid_at, p.created_at, p.updated_at,
       e.first_name, e.last_name, e.department
FROM payrolls p JOIN employees e ON e.id = p.employee_id`

func scanPayroll(row rowScanner) (*model.Payroll, error) {
	var (
		p                   model.Payroll
		first, last, depart string
	)
	err := row.Scan(&p.ID, &p.TenantID, &p.EmployeeID, &p.Period.Year, &p.Period.Month,
		&p.BasicSalary, &p.OvertimePay, &p.Bonuses, &p.Allowances,
		&p.Taxes, &p.SocialSecurity, &p.HealthInsurance, &p.OtherDeductions,
		&p.GrossSalary, &p.TotalDeductions, &p.NetSalary, &p.Status, &p.Notes,
		&p.ProcessedAt, &p.ProcessedBy, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
		&first, &last, &depart)
	if err != nil {
		return nil, err
	}
	p.Employee = &model.EmployeeSummary{
		ID:         p.EmployeeID,
		Name:       model.Employee{FirstName: first, LastName: last}.FullName(),
		Department: depart,
	}
	return &p, nil
}

func (r *payrollRepository) Create(ctx context.Context, payroll *model.Payroll) (*model.Payroll, error) {
	const query = `INSERT INTO payrolls (tenant_id, employee_id, period, year, month,
                   basic_salary, overtime_pay, bonuses, allowances,
                   taxes, social_security, health_insurance, other_deductions,
                   gross_salary, total_deductions, net_salary, status, notes)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
                   RETURNING id, created_at, updated_at`
	created := *payroll
	err := r.db.QueryRow(ctx, query,
		payroll.TenantID, payroll.EmployeeID, payroll.Period.String(), payroll.Period.Year, payroll.Period.Month,
		payroll.BasicSalary, payroll.OvertimePay, payroll.Bonuses, payroll.Allowances,
		payroll.Taxes, payroll.SocialSecurity, payroll.HealthInsurance, payroll.OtherDeductions,
		payroll.GrossSalary, payroll.TotalDeductions, payroll.NetSalary, payroll.Status, payroll.Notes,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &created, nil
}

func (r *payrollRepository) GetByID(ctx context.Context, tenantID string, id int64) (*model.Payroll, error) {
	const query = payrollSelect + ` WHERE p.tenant_id=$1 AND p.id=$2`
	p, err := scanPayroll(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

func (r *payrollRepository) Exists(ctx context.Context, tenantID string, employeeID int64, period model.Period) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM payrolls WHERE tenant_id=$1 AND employee_id=$2 AND period=$3)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, tenantID, employeeID, period.String()).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *payrollRepository) EmployeeIDsForPeriod(ctx context.Context, tenantID string, period model.Period) ([]int64, error) {
	const query = `SELECT employee_id FROM payrolls WHERE tenant_id=$1 AND period=$2`
	rows, err := r.db.Query(ctx, query, tenantID, period.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *payrollRepository) List(ctx context.Context, tenantID string, filter model.PayrollFilter) ([]model.Payroll, int64, error) {
	where := []string{"p.tenant_id=$1"}
	args := []any{tenantID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if filter.EmployeeID != 0 {
		add("p.employee_id=$%d", filter.EmployeeID)
	}
	if filter.Period != "" {
		add("p.period=$%d", filter.Period)
	}
	if filter.Status != "" {
		add("p.status=$%d", filter.Status)
	}
	if filter.Department != "" {
		add("e.department=$%d", filter.Department)
	}
	cond := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM payrolls p JOIN employees e ON e.id = p.employee_id WHERE ` + cond
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	query := fmt.Sprintf(`%s WHERE %s ORDER BY p.year DESC, p.month DESC, p.id DESC LIMIT $%d OFFSET $%d`,
		payrollSelect, cond, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, page.Size, page.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []model.Payroll
	for rows.Next() {
		p, err := scanPayroll(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *payrollRepository) Update(ctx context.Context, payroll *model.Payroll) (*model.Payroll, error) {
	const query = `UPDATE payrolls SET basic_salary=$3, overtime_pay=$4, bonuses=$5, allowances=$6,
                   taxes=$7, social_security=$8, health_insurance=$9, other_deductions=$10,
                   gross_salary=$11, total_deductions=$12, net_salary=$13, notes=$14, updated_at=NOW()
                   WHERE tenant_id=$1 AND id=$2 AND status='PENDING'
                   RETURNING updated_at`
	updated := *payroll
	err := r.db.QueryRow(ctx, query, payroll.TenantID, payroll.ID,
		payroll.BasicSalary, payroll.OvertimePay, payroll.Bonuses, payroll.Allowances,
		payroll.Taxes, payroll.SocialSecurity, payroll.HealthInsurance, payroll.OtherDeductions,
		payroll.GrossSalary, payroll.TotalDeductions, payroll.NetSalary, payroll.Notes,
	).Scan(&updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrImmutable
		}
		return nil, err
	}
	return &updated, nil
}

func (r *payrollRepository) Transition(ctx context.Context, tenantID string, id int64, from, to model.PayrollStatus, actor *int64, at time.Time) (*model.Payroll, error) {
	var query string
	args := []any{tenantID, id, from, to, at}
	switch to {
	case model.PayrollStatusProcessed:
		query = `UPDATE payrolls SET status=$4, processed_at=$5, processed_by=$6, updated_at=NOW()
                 WHERE tenant_id=$1 AND id=$2 AND status=$3`
		args = append(args, actor)
	case model.PayrollStatusPaid:
		query = `UPDATE payrolls SET status=$4, paid_at=$5, updated_at=NOW()
                 WHERE tenant_id=$1 AND id=$2 AND status=$3`
	default:
		return nil, &domainErrors.TransitionError{Entity: "payroll", From: string(from), To: string(to)}
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, &domainErrors.TransitionError{Entity: "payroll", From: string(from), To: string(to)}
	}
	return r.GetByID(ctx, tenantID, id)
}

func (r *payrollRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	const query = `DELETE FROM payrolls WHERE tenant_id=$1 AND id=$2 AND status='PENDING'`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrImmutable
	}
	return nil
}

func (r *payrollRepository) Totals(ctx context.Context, tenantID string, period model.Period) (model.PayrollTotals, error) {
	const query = `SELECT COUNT(*), COALESCE(SUM(gross_salary), 0), COALESCE(SUM(net_salary), 0),
                   COALESCE(SUM(total_deductions), 0)
                   FROM payrolls WHERE tenant_id=$1 AND year=$2 AND month=$3`
	var t model.PayrollTotals
	err := r.db.QueryRow(ctx, query, tenantID, period.Year, period.Month).
		Scan(&t.Count, &t.GrossSalary, &t.NetSalary, &t.TotalDeductions)
	if err != nil {
		return model.PayrollTotals{}, err
	}
	return t, nil
}

func (r *payrollRepository) CountByStatus(ctx context.Context, tenantID string, period model.Period) ([]model.GroupCount, error) {
	const query = `SELECT status, COUNT(*) FROM payrolls WHERE tenant_id=$1 AND year=$2 AND month=$3
                   GROUP BY status ORDER BY status`
	return queryGroupCounts(ctx, r.db, query, tenantID, period.Year, period.Month)
}

func (r *payrollRepository) SumsByEmployee(ctx context.Context, tenantID string, period model.Period) ([]model.EmployeePayrollSum, error) {
	const query = `SELECT p.employee_id, e.department, COUNT(*), SUM(p.gross_salary), SUM(p.net_salary)
                   FROM payrolls p JOIN employees e ON e.id = p.employee_id
                   WHERE p.tenant_id=$1 AND p.year=$2 AND p.month=$3
                   GROUP BY p.employee_id, e.department ORDER BY p.employee_id`
	rows, err := r.db.Query(ctx, query, tenantID, period.Year, period.Month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.EmployeePayrollSum
	for rows.Next() {
		var s model.EmployeePayrollSum
		if err := rows.Scan(&s.EmployeeID, &s.Department, &s.Count, &s.GrossSalary, &s.NetSalary); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
