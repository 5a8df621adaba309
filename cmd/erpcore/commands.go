package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/polkiloo/erpcore/internal/app"
	"github.com/polkiloo/erpcore/internal/config"
	"github.com/polkiloo/erpcore/internal/di"
	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
	pkgAuth "github.com/polkiloo/erpcore/internal/pkg/auth"
)

// Service flags (--address, --database, ...) are parsed by the config
// loader, so commands let unknown flags through.
var passthrough = cobra.FParseErrWhitelist{UnknownFlags: true}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:                "erpcore",
		Short:              "Multi-tenant order fulfillment and payroll service",
		SilenceUsage:       true,
		FParseErrWhitelist: passthrough,
		RunE:               serve,
	}
	root.AddCommand(newServeCmd(), newPayrollCmd(), newTokenCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:                "serve",
		Short:              "Run the HTTP API and the payroll scheduler",
		FParseErrWhitelist: passthrough,
		RunE:               serve,
	}
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	fxApp := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		di.Module(),
	)
	return run(ctx, fxApp)
}

func newPayrollCmd() *cobra.Command {
	payroll := &cobra.Command{
		Use:   "payroll",
		Short: "Payroll maintenance commands",
	}

	var tenant, period string
	generate := &cobra.Command{
		Use:                "generate",
		Short:              "Generate payrolls for every active employee of a tenant",
		Example:            "  erpcore payroll generate --tenant acme --period 2024-05",
		FParseErrWhitelist: passthrough,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := model.ParsePeriod(period)
			if err != nil {
				return err
			}
			return withFacade(cmd.Context(), func(ctx context.Context, facade *app.ERPFacade) error {
				batch, err := facade.GeneratePayrolls(ctx, tenant, p)
				var batchErr *domainErrors.BatchError
				if err != nil && !(errors.As(err, &batchErr) && batch != nil) {
					return err
				}
				printBatch(cmd.OutOrStdout(), batch)
				return err
			})
		},
	}
	generate.Flags().StringVar(&tenant, "tenant", "", "Tenant to generate payrolls for")
	generate.Flags().StringVar(&period, "period", "", "Payroll period, YYYY-MM")
	_ = generate.MarkFlagRequired("tenant")
	_ = generate.MarkFlagRequired("period")

	payroll.AddCommand(generate)
	return payroll
}

func newTokenCmd() *cobra.Command {
	var tenant string
	var user int64
	cmd := &cobra.Command{
		Use:                "token",
		Short:              "Issue a bearer token for a tenant user",
		FParseErrWhitelist: passthrough,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var strategy pkgAuth.Strategy
			fxApp := fx.New(
				fx.NopLogger,
				config.Module,
				pkgAuth.Module,
				fx.Populate(&strategy),
			)
			if err := fxApp.Err(); err != nil {
				return err
			}
			token, err := strategy.IssueToken(pkgAuth.Principal{TenantID: tenant, UserID: user})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant id carried by the token")
	cmd.Flags().Int64Var(&user, "user", 0, "User id carried by the token")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func withFacade(ctx context.Context, fn func(context.Context, *app.ERPFacade) error) error {
	var facade *app.ERPFacade
	fxApp := fx.New(
		fx.NopLogger,
		fx.Provide(func() context.Context { return ctx }),
		di.Core(),
		fx.Populate(&facade),
	)
	if err := fxApp.Err(); err != nil {
		return err
	}
	return once(ctx, fxApp, func(ctx context.Context) error { return fn(ctx, facade) })
}

func printBatch(w io.Writer, batch *model.PayrollBatch) {
	fmt.Fprintf(w, "period %s: created %d, skipped %d, failed %d\n",
		batch.Period, len(batch.Created), batch.Skipped, batch.Failed)
	for _, p := range batch.Created {
		fmt.Fprintf(w, "  payroll %d employee %d net %s\n", p.ID, p.EmployeeID, p.NetSalary.StringFixed(2))
	}
}
