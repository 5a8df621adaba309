package usecase

import (
	"strings"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
)

const maxOrderNumberLength = 64

var hundred = decimal.NewFromInt(100)

// ValidateOrderInput checks request shape before any lookup.
func ValidateOrderInput(in model.CreateOrderInput) error {
	if in.CustomerID <= 0 {
		return domainErrors.Invalid("customer id is required")
	}
	if len(in.Items) == 0 {
		return domainErrors.Invalid("order must contain at least one item")
	}
	if n := strings.TrimSpace(in.OrderNumber); len(n) > maxOrderNumberLength {
		return domainErrors.Invalid("order number longer than %d characters", maxOrderNumberLength)
	}
	for i, item := range in.Items {
		if item.ProductID <= 0 {
			return domainErrors.Invalid("item %d: product id is required", i+1)
		}
		if item.Quantity <= 0 {
			return domainErrors.Invalid("item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return domainErrors.Invalid("item %d: unit price must not be negative", i+1)
		}
		if item.Discount.IsNegative() || item.Discount.GreaterThan(hundred) {
			return domainErrors.Invalid("item %d: discount must be between 0 and 100", i+1)
		}
	}
	if in.TaxRate.IsNegative() || in.TaxAmount.IsNegative() || in.DiscountAmount.IsNegative() {
		return domainErrors.Invalid("tax and discount must not be negative")
	}
	if in.PaymentStatus != "" && !in.PaymentStatus.Valid() {
		return domainErrors.Invalid("unknown payment status %q", in.PaymentStatus)
	}
	return nil
}

// ValidateSalaryInputs rejects negative amounts.
func ValidateSalaryInputs(in model.SalaryInputs) error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"basic salary", in.BasicSalary},
		{"overtime pay", in.OvertimePay},
		{"bonuses", in.Bonuses},
		{"allowances", in.Allowances},
		{"taxes", in.Taxes},
		{"social security", in.SocialSecurity},
		{"health insurance", in.HealthInsurance},
		{"other deductions", in.OtherDeductions},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return domainErrors.Invalid("%s must not be negative", f.name)
		}
	}
	return nil
}

// ItemTotal is quantity * unitPrice * (1 - discount/100), rounded to cents.
func ItemTotal(quantity int, unitPrice, discount decimal.Decimal) decimal.Decimal {
	factor := hundred.Sub(discount).Div(hundred)
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(factor).Round(2)
}

// percentOf returns amount * rate / 100 rounded to cents.
func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(2)
}
