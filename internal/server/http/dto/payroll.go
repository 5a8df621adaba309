package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/erpcore/internal/domain/model"
)

// CreatePayrollRequest describes POST /payrolls payload.
type CreatePayrollRequest struct {
	EmployeeID      int64           `json:"employee_id" binding:"required"`
	Period          string          `json:"period" binding:"required"`
	BasicSalary     decimal.Decimal `json:"basic_salary"`
	OvertimePay     decimal.Decimal `json:"overtime_pay"`
	Bonuses         decimal.Decimal `json:"bonuses"`
	Allowances      decimal.Decimal `json:"allowances"`
	Taxes           decimal.Decimal `json:"taxes"`
	SocialSecurity  decimal.Decimal `json:"social_security"`
	HealthInsurance decimal.Decimal `json:"health_insurance"`
	OtherDeductions decimal.Decimal `json:"other_deductions"`
	Notes           string          `json:"notes"`
}

// Input converts the request into the use case input.
func (r CreatePayrollRequest) Input() model.CreatePayrollInput {
	return model.CreatePayrollInput{
		EmployeeID: r.EmployeeID,
		Period:     r.Period,
		SalaryInputs: model.SalaryInputs{
			BasicSalary:     r.BasicSalary,
			OvertimePay:     r.OvertimePay,
			Bonuses:         r.Bonuses,
			Allowances:      r.Allowances,
			Taxes:           r.Taxes,
			SocialSecurity:  r.SocialSecurity,
			HealthInsurance: r.HealthInsurance,
			OtherDeductions: r.OtherDeductions,
		},
		Notes: r.Notes,
	}
}

// UpdatePayrollRequest describes PATCH /payrolls/:id payload. Absent fields are left untouched.
type UpdatePayrollRequest struct {
	BasicSalary     *decimal.Decimal `json:"basic_salary"`
	OvertimePay     *decimal.Decimal `json:"overtime_pay"`
	Bonuses         *decimal.Decimal `json:"bonuses"`
	Allowances      *decimal.Decimal `json:"allowances"`
	Taxes           *decimal.Decimal `json:"taxes"`
	SocialSecurity  *decimal.Decimal `json:"social_security"`
	HealthInsurance *decimal.Decimal `json:"health_insurance"`
	OtherDeductions *decimal.Decimal `json:"other_deductions"`
	Notes           *string          `json:"notes"`
}

// Patch converts the request into a payroll patch.
func (r UpdatePayrollRequest) Patch() model.PayrollPatch {
	return model.PayrollPatch(r)
}

// GeneratePayrollsRequest describes POST /payrolls/generate payload.
type GeneratePayrollsRequest struct {
	Period string `json:"period" binding:"required"`
}

// EmployeeSummaryResponse is the employee attached to a payroll.
type EmployeeSummaryResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

// PayrollResponse represents a payroll.
type PayrollResponse struct {
	ID              int64                    `json:"id"`
	EmployeeID      int64                    `json:"employee_id"`
	Employee        *EmployeeSummaryResponse `json:"employee,omitempty"`
	Period          string                   `json:"period"`
	Year            int                      `json:"year"`
	Month           int                      `json:"month"`
	BasicSalary     decimal.Decimal          `json:"basic_salary"`
	OvertimePay     decimal.Decimal          `json:"overtime_pay"`
	Bonuses         decimal.Decimal          `json:"bonuses"`
	Allowances      decimal.Decimal          `json:"allowances"`
	GrossSalary     decimal.Decimal          `json:"gross_salary"`
	Taxes           decimal.Decimal          `json:"taxes"`
	SocialSecurity  decimal.Decimal          `json:"social_security"`
	HealthInsurance decimal.Decimal          `json:"health_insurance"`
	OtherDeductions decimal.Decimal          `json:"other_deductions"`
	TotalDeductions decimal.Decimal          `json:"total_deductions"`
	NetSalary       decimal.Decimal          `json:"net_salary"`
	Status          string                   `json:"status"`
	Notes           string                   `json:"notes,omitempty"`
	ProcessedAt     *time.Time               `json:"processed_at,omitempty"`
	ProcessedBy     *int64                   `json:"processed_by,omitempty"`
	PaidAt          *time.Time               `json:"paid_at,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// NewPayrollResponse converts a payroll.
func NewPayrollResponse(p model.Payroll) PayrollResponse {
	resp := PayrollResponse{
		ID:              p.ID,
		EmployeeID:      p.EmployeeID,
		Period:          p.Period.String(),
		Year:            p.Period.Year,
		Month:           p.Period.Month,
		BasicSalary:     p.BasicSalary,
		OvertimePay:     p.OvertimePay,
		Bonuses:         p.Bonuses,
		Allowances:      p.Allowances,
		GrossSalary:     p.GrossSalary,
		Taxes:           p.Taxes,
		SocialSecurity:  p.SocialSecurity,
		HealthInsurance: p.HealthInsurance,
		OtherDeductions: p.OtherDeductions,
		TotalDeductions: p.TotalDeductions,
		NetSalary:       p.NetSalary,
		Status:          string(p.Status),
		Notes:           p.Notes,
		ProcessedAt:     p.ProcessedAt,
		ProcessedBy:     p.ProcessedBy,
		PaidAt:          p.PaidAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Employee != nil {
		resp.Employee = &EmployeeSummaryResponse{ID: p.Employee.ID, Name: p.Employee.Name, Department: p.Employee.Department}
	}
	return resp
}

// NewPayrollResponses converts a slice of payrolls, never returning nil.
func NewPayrollResponses(payrolls []model.Payroll) []PayrollResponse {
	out := make([]PayrollResponse, 0, len(payrolls))
	for _, p := range payrolls {
		out = append(out, NewPayrollResponse(p))
	}
	return out
}

// PayrollBatchResponse is the outcome of batch generation.
type PayrollBatchResponse struct {
	Period  string            `json:"period"`
	Created []PayrollResponse `json:"created"`
	Skipped int               `json:"skipped"`
	Failed  int               `json:"failed"`
}

// NewPayrollBatchResponse converts a batch.
func NewPayrollBatchResponse(b model.PayrollBatch) PayrollBatchResponse {
	return PayrollBatchResponse{
		Period:  b.Period.String(),
		Created: NewPayrollResponses(b.Created),
		Skipped: b.Skipped,
		Failed:  b.Failed,
	}
}

// EmployeePayrollResponse is a per employee payroll sum.
type EmployeePayrollResponse struct {
	EmployeeID  int64           `json:"employee_id"`
	Department  string          `json:"department,omitempty"`
	Count       int64           `json:"count"`
	GrossSalary decimal.Decimal `json:"gross_salary"`
	NetSalary   decimal.Decimal `json:"net_salary"`
}

// PayrollStatsResponse is the payroll dashboard of a period.
type PayrollStatsResponse struct {
	Period          string                    `json:"period"`
	TotalPayrolls   int64                     `json:"total_payrolls"`
	TotalGross      decimal.Decimal           `json:"total_gross"`
	TotalNet        decimal.Decimal           `json:"total_net"`
	TotalDeductions decimal.Decimal           `json:"total_deductions"`
	ByStatus        []BreakdownResponse       `json:"by_status"`
	ByEmployee      []EmployeePayrollResponse `json:"by_employee"`
}

// NewPayrollStatsResponse converts payroll stats.
func NewPayrollStatsResponse(s model.PayrollStats) PayrollStatsResponse {
	resp := PayrollStatsResponse{
		Period:          s.Period.String(),
		TotalPayrolls:   s.Count,
		TotalGross:      s.GrossSalary,
		TotalNet:        s.NetSalary,
		TotalDeductions: s.TotalDeductions,
		ByStatus:        make([]BreakdownResponse, 0, len(s.ByStatus)),
		ByEmployee:      make([]EmployeePayrollResponse, 0, len(s.ByEmployee)),
	}
	for _, g := range s.ByStatus {
		resp.ByStatus = append(resp.ByStatus, BreakdownResponse{Key: g.Key, Count: g.Count})
	}
	for _, e := range s.ByEmployee {
		resp.ByEmployee = append(resp.ByEmployee, EmployeePayrollResponse(e))
	}
	return resp
}
