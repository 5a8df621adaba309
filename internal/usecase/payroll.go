package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/polkiloo/erpcore/internal/cache"
	"github.com/polkiloo/erpcore/internal/config"
	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
	"github.com/polkiloo/erpcore/internal/domain/repository"
	"github.com/polkiloo/erpcore/internal/telemetry"
)

// PayrollUseCase encapsulates payroll computation and lifecycle rules.
type PayrollUseCase struct {
	store    repository.Store
	notify   notifier
	cache    cache.Cache
	metrics  *telemetry.Metrics
	logger   *zap.Logger
	rates    model.PayrollRates
	statsTTL time.Duration
	now      func() time.Time
}

// NewPayrollUseCase constructs PayrollUseCase.
func NewPayrollUseCase(d Deps) *PayrollUseCase {
	logger := d.Logger.Named("payroll")
	return &PayrollUseCase{
		store:    d.Store,
		notify:   notifier{events: d.Events, cache: d.Cache, logger: logger},
		cache:    d.Cache,
		metrics:  d.Metrics,
		logger:   logger,
		rates:    RatesFromRules(d.Config.Business.Payroll),
		statsTTL: d.Config.StatsCacheTTL,
		now:      time.Now,
	}
}

// RatesFromRules converts configured percentages.
func RatesFromRules(r config.PayrollRules) model.PayrollRates {
	return model.PayrollRates{
		Tax:             decimal.NewFromFloat(r.TaxRate),
		SocialSecurity:  decimal.NewFromFloat(r.SocialSecurityRate),
		HealthInsurance: decimal.NewFromFloat(r.HealthInsuranceRate),
	}
}

// Create stores a PENDING payroll with derived totals.
func (u *PayrollUseCase) Create(ctx context.Context, tenantID string, in model.CreatePayrollInput) (payroll *model.Payroll, err error) {
	ctx, span := telemetry.StartSpan(ctx, "PayrollUseCase.Create")
	defer func() { telemetry.EndSpan(span, err) }()

	period, err := model.ParsePeriod(in.Period)
	if err != nil {
		return nil, domainErrors.Invalid("%v", err)
	}
	if err := ValidateSalaryInputs(in.SalaryInputs); err != nil {
		return nil, err
	}

	employee, err := u.store.Employees().GetByID(ctx, tenantID, in.EmployeeID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, fmt.Errorf("employee %d: %w", in.EmployeeID, domainErrors.ErrNotFound)
		}
		return nil, err
	}
	exists, err := u.store.Payrolls().Exists(ctx, tenantID, in.EmployeeID, period)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("payroll for employee %d and period %s: %w", in.EmployeeID, period, domainErrors.ErrAlreadyExists)
	}

	draft := &model.Payroll{
		TenantID:     tenantID,
		EmployeeID:   in.EmployeeID,
		Period:       period,
		SalaryInputs: in.SalaryInputs,
		Status:       model.PayrollStatusPending,
		Notes:        in.Notes,
	}
	draft.Recompute()

	payroll, err = u.store.Payrolls().Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	payroll.Employee = employeeSummary(employee)

	u.metrics.PayrollsCreated.Inc()
	u.logger.Info("payroll created",
		zap.String("tenant", tenantID),
		zap.Int64("payroll_id", payroll.ID),
		zap.Int64("employee_id", payroll.EmployeeID),
		zap.String("period", period.String()))
	u.notify.publish(ctx, EventPayrollCreated, tenantID, payroll.ID, newPayrollEvent(payroll))
	u.notify.invalidate(ctx, u.statsKey(tenantID, period))
	return payroll, nil
}

func employeeSummary(e *model.Employee) *model.EmployeeSummary {
	return &model.EmployeeSummary{ID: e.ID, Name: e.FullName(), Department: e.Department}
}

// Update applies patch to a PENDING payroll. Touching any amount recomputes
// all derived totals from the merged inputs.
func (u *PayrollUseCase) Update(ctx context.Context, tenantID string, id int64, patch model.PayrollPatch) (payroll *model.Payroll, err error) {
	ctx, span := telemetry.StartSpan(ctx, "PayrollUseCase.Update")
	defer func() { telemetry.EndSpan(span, err) }()

	current, err := u.store.Payrolls().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !current.Editable() {
		return nil, fmt.Errorf("payroll %d is %s: %w", id, current.Status, domainErrors.ErrImmutable)
	}

	if patch.TouchesAmounts() {
		merged := current.SalaryInputs
		patch.ApplyTo(&merged)
		if err := ValidateSalaryInputs(merged); err != nil {
			return nil, err
		}
		current.SalaryInputs = merged
		current.Recompute()
	}
	if patch.Notes != nil {
		current.Notes = *patch.Notes
	}

	payroll, err = u.store.Payrolls().Update(ctx, current)
	if err != nil {
		if errors.Is(err, domainErrors.ErrImmutable) {
			return nil, fmt.Errorf("payroll %d: %w", id, err)
		}
		return nil, err
	}

	u.logger.Info("payroll updated", zap.String("tenant", tenantID), zap.Int64("payroll_id", id))
	u.notify.publish(ctx, EventPayrollUpdated, tenantID, id, newPayrollEvent(payroll))
	u.notify.invalidate(ctx, u.statsKey(tenantID, payroll.Period))
	return payroll, nil
}

// Process moves a PENDING payroll to PROCESSED, stamping time and actor.
func (u *PayrollUseCase) Process(ctx context.Context, tenantID string, id, processedBy int64) (payroll *model.Payroll, err error) {
	ctx, span := telemetry.StartSpan(ctx, "PayrollUseCase.Process")
	defer func() { telemetry.EndSpan(span, err) }()

	payroll, err = u.transition(ctx, tenantID, id, model.PayrollStatusPending, model.PayrollStatusProcessed, &processedBy)
	if err != nil {
		return nil, err
	}
	u.metrics.PayrollsProcessed.Inc()
	u.logger.Info("payroll processed",
		zap.String("tenant", tenantID),
		zap.Int64("payroll_id", id),
		zap.Int64("actor", processedBy))
	u.notify.publish(ctx, EventPayrollProcessed, tenantID, id, newPayrollEvent(payroll))
	return payroll, nil
}

// MarkPaid moves a PROCESSED payroll to PAID.
func (u *PayrollUseCase) MarkPaid(ctx context.Context, tenantID string, id int64) (*model.Payroll, error) {
	payroll, err := u.transition(ctx, tenantID, id, model.PayrollStatusProcessed, model.PayrollStatusPaid, nil)
	if err != nil {
		return nil, err
	}
	u.logger.Info("payroll paid", zap.String("tenant", tenantID), zap.Int64("payroll_id", id))
	u.notify.publish(ctx, EventPayrollPaid, tenantID, id, newPayrollEvent(payroll))
	return payroll, nil
}

func (u *PayrollUseCase) transition(ctx context.Context, tenantID string, id int64, from, to model.PayrollStatus, actor *int64) (*model.Payroll, error) {
	current, err := u.store.Payrolls().GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if current.Status != from {
		return nil, &domainErrors.TransitionError{Entity: "payroll", From: string(current.Status), To: string(to)}
	}
	payroll, err := u.store.Payrolls().Transition(ctx, tenantID, id, from, to, actor, u.now().UTC())
	if err != nil {
		return nil, err
	}
	u.notify.invalidate(ctx, u.statsKey(tenantID, payroll.Period))
	return payroll, nil
}

// Delete removes a PENDING payroll.
func (u *PayrollUseCase) Delete(ctx context.Context, tenantID string, id int64) error {
	current, err := u.store.Payrolls().GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !current.Editable() {
		return fmt.Errorf("payroll %d is %s: %w", id, current.Status, domainErrors.ErrImmutable)
	}
	if err := u.store.Payrolls().Delete(ctx, tenantID, id); err != nil {
		return err
	}
	u.logger.Info("payroll deleted", zap.String("tenant", tenantID), zap.Int64("payroll_id", id))
	u.notify.invalidate(ctx, u.statsKey(tenantID, current.Period))
	return nil
}

// Get returns a payroll.
func (u *PayrollUseCase) Get(ctx context.Context, tenantID string, id int64) (*model.Payroll, error) {
	return u.store.Payrolls().GetByID(ctx, tenantID, id)
}

// List returns a page of payrolls and the total number matching filter.
func (u *PayrollUseCase) List(ctx context.Context, tenantID string, filter model.PayrollFilter) ([]model.Payroll, int64, error) {
	if filter.Period != "" {
		period, err := model.ParsePeriod(filter.Period)
		if err != nil {
			return nil, 0, domainErrors.Invalid("%v", err)
		}
		filter.Period = period.String()
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domainErrors.Invalid("unknown payroll status %q", filter.Status)
	}
	filter.Page = filter.Page.Normalize()
	return u.store.Payrolls().List(ctx, tenantID, filter)
}

// GenerateForPeriod creates a PENDING payroll for every ACTIVE employee that has
// none in period. Each payroll is committed on its own; failures do not stop the
// batch and are returned as a *BatchError next to the batch result.
func (u *PayrollUseCase) GenerateForPeriod(ctx context.Context, tenantID string, period model.Period) (batch *model.PayrollBatch, err error) {
	ctx, span := telemetry.StartSpan(ctx, "PayrollUseCase.GenerateForPeriod")
	defer func() { telemetry.EndSpan(span, err) }()

	if period.Month < 1 || period.Month > 12 {
		return nil, domainErrors.Invalid("month must be 1-12")
	}
	started := u.now()
	defer func() { u.metrics.PayrollGeneration.Observe(time.Since(started).Seconds()) }()

	employees, err := u.store.Employees().ListByStatus(ctx, tenantID, model.EmployeeStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	existingIDs, err := u.store.Payrolls().EmployeeIDsForPeriod(ctx, tenantID, period)
	if err != nil {
		return nil, fmt.Errorf("list existing payrolls: %w", err)
	}
	existing := make(map[int64]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = struct{}{}
	}

	batch = &model.PayrollBatch{Period: period, Created: []model.Payroll{}}
	var failures []domainErrors.BatchFailure
	for i := range employees {
		employee := &employees[i]
		if _, ok := existing[employee.ID]; ok {
			batch.Skipped++
			continue
		}
		created, err := u.store.Payrolls().Create(ctx, u.generated(tenantID, employee, period))
		if err != nil {
			if errors.Is(err, domainErrors.ErrAlreadyExists) {
				batch.Skipped++
				continue
			}
			u.logger.Error("generate payroll failed",
				zap.String("tenant", tenantID),
				zap.Int64("employee_id", employee.ID),
				zap.Error(err))
			failures = append(failures, domainErrors.BatchFailure{Key: employee.ID, Err: err})
			continue
		}
		created.Employee = employeeSummary(employee)
		batch.Created = append(batch.Created, *created)
	}
	batch.Failed = len(failures)

	u.metrics.PayrollsCreated.Add(float64(len(batch.Created)))
	u.logger.Info("payroll batch generated",
		zap.String("tenant", tenantID),
		zap.String("period", period.String()),
		zap.Int("created", len(batch.Created)),
		zap.Int("skipped", batch.Skipped),
		zap.Int("failed", batch.Failed))
	u.notify.publish(ctx, EventPayrollGenerated, tenantID, int64(len(batch.Created)), payrollBatchEvent{
		Period:  period.String(),
		Created: len(batch.Created),
		Skipped: batch.Skipped,
		Failed:  batch.Failed,
	})
	if len(batch.Created) > 0 {
		u.notify.invalidate(ctx, u.statsKey(tenantID, period))
	}

	if len(failures) > 0 {
		return batch, &domainErrors.BatchError{Failures: failures}
	}
	return batch, nil
}

// ActiveTenants lists tenants that have at least one ACTIVE employee.
func (u *PayrollUseCase) ActiveTenants(ctx context.Context) ([]string, error) {
	return u.store.Employees().TenantsWithStatus(ctx, model.EmployeeStatusActive)
}

// generated synthesizes a payroll from base salary and the fixed deduction rates.
func (u *PayrollUseCase) generated(tenantID string, e *model.Employee, period model.Period) *model.Payroll {
	basic := e.BaseSalary
	p := &model.Payroll{
		TenantID:   tenantID,
		EmployeeID: e.ID,
		Period:     period,
		SalaryInputs: model.SalaryInputs{
			BasicSalary:     basic,
			OvertimePay:     decimal.Zero,
			Bonuses:         decimal.Zero,
			Allowances:      decimal.Zero,
			Taxes:           percentOf(basic, u.rates.Tax),
			SocialSecurity:  percentOf(basic, u.rates.SocialSecurity),
			HealthInsurance: percentOf(basic, u.rates.HealthInsurance),
			OtherDeductions: decimal.Zero,
		},
		Status: model.PayrollStatusPending,
	}
	p.Recompute()
	return p
}

// Stats aggregates a period in parallel. Zero year or month default to the current date.
func (u *PayrollUseCase) Stats(ctx context.Context, tenantID string, year, month int) (*model.PayrollStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "PayrollUseCase.Stats")
	defer span.End()

	current := model.PeriodOf(u.now())
	period := model.Period{Year: year, Month: month}
	if period.Year == 0 {
		period.Year = current.Year
	}
	if period.Month == 0 {
		period.Month = current.Month
	}
	if period.Month < 1 || period.Month > 12 {
		return nil, domainErrors.Invalid("month must be 1-12")
	}

	key := u.statsKey(tenantID, period)
	var stats model.PayrollStats
	if u.notify.cached(ctx, key, &stats) {
		return &stats, nil
	}

	var (
		totals     model.PayrollTotals
		byStatus   []model.GroupCount
		byEmployee []model.EmployeePayrollSum
	)
	payrolls := u.store.Payrolls()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { totals, err = payrolls.Totals(gctx, tenantID, period); return })
	g.Go(func() (err error) { byStatus, err = payrolls.CountByStatus(gctx, tenantID, period); return })
	g.Go(func() (err error) { byEmployee, err = payrolls.SumsByEmployee(gctx, tenantID, period); return })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("payroll stats: %w", err)
	}

	stats = model.PayrollStats{
		Period:        period,
		PayrollTotals: totals,
		ByStatus:      byStatus,
		ByEmployee:    byEmployee,
	}
	u.notify.store(ctx, key, stats, u.statsTTL)
	return &stats, nil
}

func (u *PayrollUseCase) statsKey(tenantID string, period model.Period) string {
	return u.cache.Key("stats", "payrolls", tenantID, period.String())
}
