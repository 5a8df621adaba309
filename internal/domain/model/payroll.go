package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollStatus describes payroll lifecycle.
type PayrollStatus string

const (
	PayrollStatusPending   PayrollStatus = "PENDING"
	PayrollStatusProcessed PayrollStatus = "PROCESSED"
	PayrollStatusPaid      PayrollStatus = "PAID"
)

// Valid reports whether status is a known value.
func (s PayrollStatus) Valid() bool {
	switch s {
	case PayrollStatusPending, PayrollStatusProcessed, PayrollStatusPaid:
		return true
	}
	return false
}

// EmployeeStatus describes employment state.
type EmployeeStatus string

const (
	EmployeeStatusActive     EmployeeStatus = "ACTIVE"
	EmployeeStatusInactive   EmployeeStatus = "INACTIVE"
	EmployeeStatusOnLeave    EmployeeStatus = "ON_LEAVE"
	EmployeeStatusTerminated EmployeeStatus = "TERMINATED"
)

// Employee is a payroll subject.
type Employee struct {
	ID         int64
	TenantID   string
	FirstName  string
	LastName   string
	Department string
	BaseSalary decimal.Decimal
	Status     EmployeeStatus
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// SalaryInputs are the eight stored components payroll totals derive from.
type SalaryInputs struct {
	BasicSalary     decimal.Decimal
	OvertimePay     decimal.Decimal
	Bonuses         decimal.Decimal
	Allowances      decimal.Decimal
	Taxes           decimal.Decimal
	SocialSecurity  decimal.Decimal
	HealthInsurance decimal.Decimal
	OtherDeductions decimal.Decimal
}

// Gross sums earnings.
func (in SalaryInputs) Gross() decimal.Decimal {
	return in.BasicSalary.Add(in.OvertimePay).Add(in.Bonuses).Add(in.Allowances)
}

// Deductions sums withholdings.
func (in SalaryInputs) Deductions() decimal.Decimal {
	return in.Taxes.Add(in.SocialSecurity).Add(in.HealthInsurance).Add(in.OtherDeductions)
}

// Payroll is a monthly salary statement of one employee.
type Payroll struct {
	ID         int64
	TenantID   string
	EmployeeID int64
	Period     Period
	SalaryInputs
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	Status          PayrollStatus
	Notes           string
	ProcessedAt     *time.Time
	ProcessedBy     *int64
	PaidAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Employee        *EmployeeSummary
}

// Recompute derives gross, deductions and net from the stored inputs.
func (p *Payroll) Recompute() {
	p.GrossSalary = p.SalaryInputs.Gross()
	p.TotalDeductions = p.SalaryInputs.Deductions()
	p.NetSalary = p.GrossSalary.Sub(p.TotalDeductions)
}

// Editable reports whether payroll fields may still change.
func (p *Payroll) Editable() bool {
	return p.Status == PayrollStatusPending
}

// EmployeeSummary is the employee projection attached to payrolls.
type EmployeeSummary struct {
	ID         int64
	Name       string
	Department string
}

// CreatePayrollInput carries a new payroll request.
type CreatePayrollInput struct {
	EmployeeID int64
	Period     string
	SalaryInputs
	Notes string
}

// PayrollPatch holds optional updates. Nil fields are left untouched.
type PayrollPatch struct {
	BasicSalary     *decimal.Decimal
	OvertimePay     *decimal.Decimal
	Bonuses         *decimal.Decimal
	Allowances      *decimal.Decimal
	Taxes           *decimal.Decimal
	SocialSecurity  *decimal.Decimal
	HealthInsurance *decimal.Decimal
	OtherDeductions *decimal.Decimal
	Notes           *string
}

// TouchesAmounts reports whether any salary or deduction input is set.
func (p PayrollPatch) TouchesAmounts() bool {
	for _, v := range p.amounts() {
		if v != nil {
			return true
		}
	}
	return false
}

// ApplyTo merges set amounts into inputs.
func (p PayrollPatch) ApplyTo(in *SalaryInputs) {
	targets := []*decimal.Decimal{
		&in.BasicSalary, &in.OvertimePay, &in.Bonuses, &in.Allowances,
		&in.Taxes, &in.SocialSecurity, &in.HealthInsurance, &in.OtherDeductions,
	}
	for i, v := range p.amounts() {
		if v != nil {
			*targets[i] = *v
		}
	}
}

func (p PayrollPatch) amounts() []*decimal.Decimal {
	return []*decimal.Decimal{
		p.BasicSalary, p.OvertimePay, p.Bonuses, p.Allowances,
		p.Taxes, p.SocialSecurity, p.HealthInsurance, p.OtherDeductions,
	}
}

// PayrollFilter narrows payroll listings.
type PayrollFilter struct {
	EmployeeID int64
	Period     string
	Status     PayrollStatus
	Department string
	Page       Page
}

// PayrollRates are percentages of basic salary used by batch generation.
type PayrollRates struct {
	Tax             decimal.Decimal
	SocialSecurity  decimal.Decimal
	HealthInsurance decimal.Decimal
}

// PayrollBatch is the outcome of generating payrolls for a period.
type PayrollBatch struct {
	Period  Period
	Created []Payroll
	Skipped int
	Failed  int
}
