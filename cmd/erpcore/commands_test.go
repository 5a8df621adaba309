package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/erpcore/internal/domain/model"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{{"serve"}, {"payroll", "generate"}, {"token"}} {
		cmd, _, err := root.Find(path)
		if err != nil {
			t.Fatalf("find %v: %v", path, err)
		}
		if cmd.Name() != path[len(path)-1] {
			t.Fatalf("expected %q, got %q", path[len(path)-1], cmd.Name())
		}
	}
}

func TestPayrollGenerateRejectsBadPeriod(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"payroll", "generate", "--tenant", "acme", "--period", "2024-13"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "month") {
		t.Fatalf("expected period error, got %v", err)
	}
}

func TestTokenRequiresTenant(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"token", "--user", "1"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected missing tenant error")
	}
}

func TestPrintBatch(t *testing.T) {
	var out bytes.Buffer
	printBatch(&out, &model.PayrollBatch{
		Period:  model.Period{Year: 2024, Month: 5},
		Created: []model.Payroll{{ID: 3, EmployeeID: 1, NetSalary: decimal.NewFromInt(8200)}},
		Skipped: 2,
	})
	want := "period 2024-05: created 1, skipped 2, failed 0\n  payroll 3 employee 1 net 8200.00\n"
	if out.String() != want {
		t.Fatalf("unexpected output %q", out.String())
	}
}
