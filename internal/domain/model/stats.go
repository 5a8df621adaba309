package model

import "github.com/shopspring/decimal"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is a 1-based pagination window.
type Page struct {
	Number int
	Size   int
}

// Normalize applies defaults and bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.Size
}

// GroupCount is a row of a grouped count.
type GroupCount struct {
	Key   string
	Count int64
}

// Breakdown is a grouped count with its share of the total.
type Breakdown struct {
	Key        string
	Count      int64
	Percentage float64
}

// OrderTotals aggregates order count and revenue.
type OrderTotals struct {
	Count   int64
	Revenue decimal.Decimal
}

// TopCustomer ranks customers by revenue.
type TopCustomer struct {
	CustomerID int64
	Name       string
	OrderCount int64
	Revenue    decimal.Decimal
}

// TopProduct ranks products by revenue.
type TopProduct struct {
	ProductID int64
	Name      string
	SKU       string
	Units     int64
	Revenue   decimal.Decimal
}

// OrderStats is the tenant order dashboard report.
type OrderStats struct {
	TotalOrders       int64
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
	ByStatus          []Breakdown
	ByPaymentStatus   []Breakdown
	TopCustomers      []TopCustomer
	TopProducts       []TopProduct
}

// PayrollTotals aggregates payroll amounts of a period.
type PayrollTotals struct {
	Count           int64
	GrossSalary     decimal.Decimal
	NetSalary       decimal.Decimal
	TotalDeductions decimal.Decimal
}

// EmployeePayrollSum is a per employee and department payroll sum.
type EmployeePayrollSum struct {
	EmployeeID  int64
	Department  string
	Count       int64
	GrossSalary decimal.Decimal
	NetSalary   decimal.Decimal
}

// PayrollStats is the tenant payroll dashboard report.
type PayrollStats struct {
	Period Period
	PayrollTotals
	ByStatus   []GroupCount
	ByEmployee []EmployeePayrollSum
}

// Breakdowns turns grouped counts into percentage shares of total.
func Breakdowns(groups []GroupCount, total int64) []Breakdown {
	out := make([]Breakdown, 0, len(groups))
	for _, g := range groups {
		b := Breakdown{Key: g.Key, Count: g.Count}
		if total > 0 {
			b.Percentage = decimal.NewFromInt(g.Count * 100).
				Div(decimal.NewFromInt(total)).
				Round(2).
				InexactFloat64()
		}
		out = append(out, b)
	}
	return out
}
