package usecase

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
)

func TestItemTotal(t *testing.T) {
	cases := []struct {
		qty      int
		price    string
		discount string
		want     string
	}{
		{2, "100", "0", "200"},
		{2, "100", "10", "180"},
		{3, "19.99", "15", "50.97"},
		{1, "10", "100", "0"},
		{7, "0.333", "0", "2.33"},
	}
	for _, tc := range cases {
		got := ItemTotal(tc.qty, decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.discount))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("ItemTotal(%d, %s, %s) = %s, want %s", tc.qty, tc.price, tc.discount, got, tc.want)
		}
	}
}

func TestNextOrderNumber(t *testing.T) {
	day := time.Date(2024, time.May, 1, 23, 59, 0, 0, time.UTC)
	cases := []struct {
		latest string
		want   string
	}{
		{"", "ORD-20240501-0001"},
		{"ORD-20240501-0001", "ORD-20240501-0002"},
		{"ORD-20240501-0999", "ORD-20240501-1000"},
		{"ORD-20240501-9999", "ORD-20240501-10000"},
		{"ORD-20240430-0042", "ORD-20240501-0001"},
		{"ORD-20240501-custom", "ORD-20240501-0001"},
		{"ORD-20240501-00002", "ORD-20240501-0003"},
		{"ORD-20240501-+5", "ORD-20240501-0001"},
	}
	for _, tc := range cases {
		if got := NextOrderNumber("ORD", day, tc.latest); got != tc.want {
			t.Fatalf("NextOrderNumber(%q) = %s, want %s", tc.latest, got, tc.want)
		}
	}
	if got := OrderNumberPrefix("SO", day); got != "SO-20240501-" {
		t.Fatalf("unexpected prefix %s", got)
	}
}

func TestValidateOrderInput(t *testing.T) {
	valid := model.CreateOrderInput{
		CustomerID: 1,
		Items:      []model.OrderItemInput{{ProductID: 1, Quantity: 1}},
	}
	if err := ValidateOrderInput(valid); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*model.CreateOrderInput)
	}{
		{"no customer", func(in *model.CreateOrderInput) { in.CustomerID = 0 }},
		{"no items", func(in *model.CreateOrderInput) { in.Items = nil }},
		{"long number", func(in *model.CreateOrderInput) { in.OrderNumber = strings.Repeat("9", 65) }},
		{"no product", func(in *model.CreateOrderInput) { in.Items[0].ProductID = 0 }},
		{"zero quantity", func(in *model.CreateOrderInput) { in.Items[0].Quantity = 0 }},
		{"negative price", func(in *model.CreateOrderInput) { in.Items[0].UnitPrice = decimal.NewFromInt(-1) }},
		{"discount over 100", func(in *model.CreateOrderInput) { in.Items[0].Discount = decimal.NewFromInt(101) }},
		{"negative tax", func(in *model.CreateOrderInput) { in.TaxAmount = decimal.NewFromInt(-1) }},
		{"negative order discount", func(in *model.CreateOrderInput) { in.DiscountAmount = decimal.NewFromInt(-1) }},
		{"payment status", func(in *model.CreateOrderInput) { in.PaymentStatus = "IOU" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			in.Items = append([]model.OrderItemInput(nil), valid.Items...)
			tc.mutate(&in)
			if err := ValidateOrderInput(in); !errors.Is(err, domainErrors.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestValidateSalaryInputs(t *testing.T) {
	if err := ValidateSalaryInputs(model.SalaryInputs{}); err != nil {
		t.Fatalf("expected zero inputs to be valid, got %v", err)
	}
	err := ValidateSalaryInputs(model.SalaryInputs{OtherDeductions: decimal.NewFromInt(-1)})
	if !errors.Is(err, domainErrors.ErrInvalidInput) || !strings.Contains(err.Error(), "other deductions") {
		t.Fatalf("expected other deductions to be rejected, got %v", err)
	}
}
