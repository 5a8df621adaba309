package test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
	"github.com/polkiloo/erpcore/internal/domain/repository"
)

// Store is an in-memory repository.Store. Transactions snapshot product
// stock, orders and payrolls and restore them when fn fails.
type Store struct {
	CustomersRepo *CustomerRepositoryStub
	ProductsRepo  *ProductRepositoryStub
	OrdersRepo    *OrderRepositoryStub
	EmployeesRepo *EmployeeRepositoryStub
	PayrollsRepo  *PayrollRepositoryStub

	TxCalls int
	TxErr   error
}

var _ repository.Store = (*Store)(nil)

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		CustomersRepo: &CustomerRepositoryStub{Customers: map[int64]*model.Customer{}},
		ProductsRepo:  &ProductRepositoryStub{Products: map[int64]*model.Product{}},
		OrdersRepo:    &OrderRepositoryStub{Orders: map[int64]*model.Order{}},
		EmployeesRepo: &EmployeeRepositoryStub{Employees: map[int64]*model.Employee{}},
		PayrollsRepo:  &PayrollRepositoryStub{Payrolls: map[int64]*model.Payroll{}},
	}
}

func (s *Store) Customers() repository.CustomerRepository { return s.CustomersRepo }
func (s *Store) Products() repository.ProductRepository   { return s.ProductsRepo }
func (s *Store) Orders() repository.OrderRepository       { return s.OrdersRepo }
func (s *Store) Employees() repository.EmployeeRepository { return s.EmployeesRepo }
func (s *Store) Payrolls() repository.PayrollRepository   { return s.PayrollsRepo }

// WithinTransaction runs fn and rolls the in-memory state back when it fails.
func (s *Store) WithinTransaction(ctx context.Context, fn func(repository.Factory) error) error {
	s.TxCalls++
	if s.TxErr != nil {
		return s.TxErr
	}
	stock := s.ProductsRepo.snapshot()
	orders, nextOrder := s.OrdersRepo.snapshot()
	payrolls, nextPayroll := s.PayrollsRepo.snapshot()
	if err := fn(s); err != nil {
		s.ProductsRepo.restore(stock)
		s.OrdersRepo.restore(orders, nextOrder)
		s.PayrollsRepo.restore(payrolls, nextPayroll)
		return err
	}
	return nil
}

// CustomerRepositoryStub keeps customers in memory and counts lookups.
type CustomerRepositoryStub struct {
	mu             sync.Mutex
	Customers      map[int64]*model.Customer
	GetByIDCalls   int
	ListByIDsCalls int
	Err            error
}

// Add stores customer.
func (s *CustomerRepositoryStub) Add(c model.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Customers[c.ID] = &c
}

func (s *CustomerRepositoryStub) GetByID(_ context.Context, tenantID string, id int64) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetByIDCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	c, ok := s.Customers[id]
	if !ok || c.TenantID != tenantID {
		return nil, domainErrors.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *CustomerRepositoryStub) ListByIDs(_ context.Context, tenantID string, ids []int64) ([]model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListByIDsCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Customer
	for _, id := range ids {
		if c, ok := s.Customers[id]; ok && c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// StockCall records a stock adjustment.
type StockCall struct {
	ProductID int64
	Quantity  int
}

// ProductRepositoryStub keeps products in memory and records stock changes.
type ProductRepositoryStub struct {
	mu             sync.Mutex
	Products       map[int64]*model.Product
	ListByIDsCalls int
	Decrements     []StockCall
	Increments     []StockCall
	DecrementFn    func(productID int64, qty int) (bool, error)
	Err            error
}

// Add stores product.
func (s *ProductRepositoryStub) Add(p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Products[p.ID] = &p
}

// Stock returns current stock of product.
func (s *ProductRepositoryStub) Stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Products[id]; ok {
		return p.Stock
	}
	return 0
}

func (s *ProductRepositoryStub) ListByIDs(_ context.Context, tenantID string, ids []int64) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListByIDsCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Product
	for _, id := range ids {
		if p, ok := s.Products[id]; ok && p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *ProductRepositoryStub) DecrementStock(_ context.Context, tenantID string, productID int64, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Decrements = append(s.Decrements, StockCall{ProductID: productID, Quantity: qty})
	if s.DecrementFn != nil {
		return s.DecrementFn(productID, qty)
	}
	p, ok := s.Products[productID]
	if !ok || p.TenantID != tenantID || !p.IsActive || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (s *ProductRepositoryStub) IncrementStock(_ context.Context, tenantID string, productID int64, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Increments = append(s.Increments, StockCall{ProductID: productID, Quantity: qty})
	if s.Err != nil {
		return s.Err
	}
	if p, ok := s.Products[productID]; ok && p.TenantID == tenantID {
		p.Stock += qty
	}
	return nil
}

func (s *ProductRepositoryStub) snapshot() map[int64]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]int, len(s.Products))
	for id, p := range s.Products {
		out[id] = p.Stock
	}
	return out
}

func (s *ProductRepositoryStub) restore(stock map[int64]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, qty := range stock {
		if p, ok := s.Products[id]; ok {
			p.Stock = qty
		}
	}
}

// StatusUpdate records an order status write.
type StatusUpdate struct {
	OrderID int64
	Status  model.OrderStatus
	Notes   string
}

// OrderRepositoryStub keeps orders in memory. Aggregates return the configured values.
type OrderRepositoryStub struct {
	mu       sync.Mutex
	Orders   map[int64]*model.Order
	NextID   int64
	CreateFn func(*model.Order) (*model.Order, error)

	SearchCalls      int
	StatusUpdates    []StatusUpdate
	AggregateCalls   int
	TotalsVal        model.OrderTotals
	ByStatus         []model.GroupCount
	ByPaymentStatus  []model.GroupCount
	TopCustomersVal  []model.TopCustomer
	TopProductsVal   []model.TopProduct
	AggregateErr     error
	UpdateStatusErr  error
	LatestNumberErr  error
	LatestNumberHook func(prefix string) string
	LockCalls        int

	// BeforeStatusUpdate runs under the stub lock ahead of each guarded status write.
	BeforeStatusUpdate func(o *model.Order)
}

func (s *OrderRepositoryStub) Create(_ context.Context, order *model.Order) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateFn != nil {
		return s.CreateFn(order)
	}
	for _, existing := range s.Orders {
		if existing.TenantID == order.TenantID && existing.OrderNumber == order.OrderNumber {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	s.NextID++
	created := *order
	created.ID = s.NextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	created.Items = make([]model.OrderItem, len(order.Items))
	for i, item := range order.Items {
		item.ID = created.ID*100 + int64(i+1)
		item.OrderID = created.ID
		created.Items[i] = item
	}
	created.ItemCount = len(created.Items)
	s.Orders[created.ID] = &created
	out := created
	return &out, nil
}

func (s *OrderRepositoryStub) GetByID(_ context.Context, tenantID string, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, domainErrors.ErrNotFound
	}
	out := *o
	out.Items = append([]model.OrderItem(nil), o.Items...)
	return &out, nil
}

func (s *OrderRepositoryStub) List(_ context.Context, tenantID string, filter model.OrderFilter) ([]model.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.sortedLocked() {
		if o.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.CustomerID != 0 && o.CustomerID != filter.CustomerID {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (s *OrderRepositoryStub) Search(_ context.Context, tenantID, query string, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SearchCalls++
	var out []model.Order
	for _, o := range s.sortedLocked() {
		if o.TenantID == tenantID && strings.Contains(strings.ToLower(o.OrderNumber), strings.ToLower(query)) {
			out = append(out, *o)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *OrderRepositoryStub) LatestNumber(_ context.Context, tenantID, prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LatestNumberErr != nil {
		return "", s.LatestNumberErr
	}
	if s.LatestNumberHook != nil {
		return s.LatestNumberHook(prefix), nil
	}
	var (
		latest string
		best   int64 = -1
	)
	for _, o := range s.Orders {
		if o.TenantID != tenantID {
			continue
		}
		if seq, ok := model.OrderSequence(prefix, o.OrderNumber); ok && seq > best {
			best, latest = seq, o.OrderNumber
		}
	}
	return latest, nil
}

func (s *OrderRepositoryStub) ListItems(_ context.Context, orderID int64) ([]model.OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[orderID]
	if !ok {
		return nil, nil
	}
	return append([]model.OrderItem(nil), o.Items...), nil
}

func (s *OrderRepositoryStub) GetForUpdate(_ context.Context, tenantID string, id int64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LockCalls++
	o, ok := s.Orders[id]
	if !ok || o.TenantID != tenantID {
		return nil, domainErrors.ErrNotFound
	}
	return &model.Order{ID: o.ID, TenantID: o.TenantID, OrderNumber: o.OrderNumber, Status: o.Status, Notes: o.Notes}, nil
}

func (s *OrderRepositoryStub) UpdateStatus(_ context.Context, tenantID string, id int64, from, to model.OrderStatus, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateStatusErr != nil {
		return s.UpdateStatusErr
	}
	o, ok := s.Orders[id]
	if !ok || o.TenantID != tenantID {
		return domainErrors.ErrNotFound
	}
	if s.BeforeStatusUpdate != nil {
		s.BeforeStatusUpdate(o)
	}
	if o.Status != from {
		return &domainErrors.TransitionError{Entity: "order", From: string(o.Status), To: string(to)}
	}
	s.StatusUpdates = append(s.StatusUpdates, StatusUpdate{OrderID: id, Status: to, Notes: notes})
	o.Status = to
	o.Notes = notes
	return nil
}

func (s *OrderRepositoryStub) UpdatePaymentStatus(_ context.Context, tenantID string, id int64, status model.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok || o.TenantID != tenantID {
		return domainErrors.ErrNotFound
	}
	o.PaymentStatus = status
	return nil
}

func (s *OrderRepositoryStub) Totals(context.Context, string) (model.OrderTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AggregateCalls++
	return s.TotalsVal, s.AggregateErr
}

func (s *OrderRepositoryStub) CountByStatus(context.Context, string) ([]model.GroupCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AggregateCalls++
	return s.ByStatus, s.AggregateErr
}

func (s *OrderRepositoryStub) CountByPaymentStatus(context.Context, string) ([]model.GroupCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AggregateCalls++
	return s.ByPaymentStatus, s.AggregateErr
}

func (s *OrderRepositoryStub) TopCustomers(_ context.Context, _ string, limit int) ([]model.TopCustomer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AggregateCalls++
	out := s.TopCustomersVal
	if len(out) > limit {
		out = out[:limit]
	}
	return append([]model.TopCustomer(nil), out...), s.AggregateErr
}

func (s *OrderRepositoryStub) TopProducts(_ context.Context, _ string, limit int) ([]model.TopProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AggregateCalls++
	out := s.TopProductsVal
	if len(out) > limit {
		out = out[:limit]
	}
	return append([]model.TopProduct(nil), out...), s.AggregateErr
}

// sortedLocked returns orders newest first.
func (s *OrderRepositoryStub) sortedLocked() []*model.Order {
	out := make([]*model.Order, 0, len(s.Orders))
	for _, o := range s.Orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *OrderRepositoryStub) snapshot() (map[int64]model.Order, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]model.Order, len(s.Orders))
	for id, o := range s.Orders {
		out[id] = *o
	}
	return out, s.NextID
}

func (s *OrderRepositoryStub) restore(orders map[int64]model.Order, next int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Orders = make(map[int64]*model.Order, len(orders))
	for id, o := range orders {
		o := o
		s.Orders[id] = &o
	}
	s.NextID = next
}

// EmployeeRepositoryStub keeps employees in memory.
type EmployeeRepositoryStub struct {
	mu                sync.Mutex
	Employees         map[int64]*model.Employee
	ListByStatusCalls int
	Err               error
}

// Add stores employee.
func (s *EmployeeRepositoryStub) Add(e model.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Employees[e.ID] = &e
}

func (s *EmployeeRepositoryStub) GetByID(_ context.Context, tenantID string, id int64) (*model.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.Employees[id]
	if !ok || e.TenantID != tenantID {
		return nil, domainErrors.ErrNotFound
	}
	out := *e
	return &out, nil
}

func (s *EmployeeRepositoryStub) ListByStatus(_ context.Context, tenantID string, status model.EmployeeStatus) ([]model.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListByStatusCalls++
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Employee
	for _, e := range s.Employees {
		if e.TenantID == tenantID && e.Status == status {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *EmployeeRepositoryStub) TenantsWithStatus(_ context.Context, status model.EmployeeStatus) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	seen := map[string]bool{}
	var out []string
	for _, e := range s.Employees {
		if e.Status == status && !seen[e.TenantID] {
			seen[e.TenantID] = true
			out = append(out, e.TenantID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// PayrollRepositoryStub keeps payrolls in memory and enforces one payroll per employee and period.
type PayrollRepositoryStub struct {
	mu          sync.Mutex
	Payrolls    map[int64]*model.Payroll
	NextID      int64
	CreateCalls int
	// CreateErr fails Create for the given employee ids.
	CreateErr    map[int64]error
	AggregateErr error
}

func (s *PayrollRepositoryStub) Create(_ context.Context, payroll *model.Payroll) (*model.Payroll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if err := s.CreateErr[payroll.EmployeeID]; err != nil {
		return nil, err
	}
	for _, p := range s.Payrolls {
		if p.TenantID == payroll.TenantID && p.EmployeeID == payroll.EmployeeID && p.Period == payroll.Period {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	s.NextID++
	created := *payroll
	created.ID = s.NextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	s.Payrolls[created.ID] = &created
	out := created
	return &out, nil
}

func (s *PayrollRepositoryStub) GetByID(_ context.Context, tenantID string, id int64) (*model.Payroll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Payrolls[id]
	if !ok || p.TenantID != tenantID {
		return nil, domainErrors.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (s *PayrollRepositoryStub) Exists(_ context.Context, tenantID string, employeeID int64, period model.Period) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.Payrolls {
		if p.TenantID == tenantID && p.EmployeeID == employeeID && p.Period == period {
			return true, nil
		}
	}
	return false, nil
}

func (s *PayrollRepositoryStub) EmployeeIDsForPeriod(_ context.Context, tenantID string, period model.Period) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, p := range s.Payrolls {
		if p.TenantID == tenantID && p.Period == period {
			ids = append(ids, p.EmployeeID)
		}
	}
	return ids, nil
}

func (s *PayrollRepositoryStub) List(_ context.Context, tenantID string, filter model.PayrollFilter) ([]model.Payroll, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Payroll
	for _, p := range s.Payrolls {
		if p.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Period != "" && p.Period.String() != filter.Period {
			continue
		}
		if filter.EmployeeID != 0 && p.EmployeeID != filter.EmployeeID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (s *PayrollRepositoryStub) Update(_ context.Context, payroll *model.Payroll) (*model.Payroll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Payrolls[payroll.ID]
	if !ok || p.TenantID != payroll.TenantID || p.Status != model.PayrollStatusPending {
		return nil, domainErrors.ErrImmutable
	}
	p.SalaryInputs = payroll.SalaryInputs
	p.GrossSalary = payroll.GrossSalary
	p.TotalDeductions = payroll.TotalDeductions
	p.NetSalary = payroll.NetSalary
	p.Notes = payroll.Notes
	p.UpdatedAt = time.Now()
	out := *p
	return &out, nil
}

func (s *PayrollRepositoryStub) Transition(_ context.Context, tenantID string, id int64, from, to model.PayrollStatus, actor *int64, at time.Time) (*model.Payroll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Payrolls[id]
	if !ok || p.TenantID != tenantID || p.Status != from {
		return nil, &domainErrors.TransitionError{Entity: "payroll", From: string(from), To: string(to)}
	}
	p.Status = to
	switch to {
	case model.PayrollStatusProcessed:
		p.ProcessedAt = &at
		p.ProcessedBy = actor
	case model.PayrollStatusPaid:
		p.PaidAt = &at
	}
	out := *p
	return &out, nil
}

func (s *PayrollRepositoryStub) Delete(_ context.Context, tenantID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Payrolls[id]
	if !ok || p.TenantID != tenantID || p.Status != model.PayrollStatusPending {
		return domainErrors.ErrImmutable
	}
	delete(s.Payrolls, id)
	return nil
}

func (s *PayrollRepositoryStub) Totals(_ context.Context, tenantID string, period model.Period) (model.PayrollTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t model.PayrollTotals
	for _, p := range s.inPeriodLocked(tenantID, period) {
		t.Count++
		t.GrossSalary = t.GrossSalary.Add(p.GrossSalary)
		t.NetSalary = t.NetSalary.Add(p.NetSalary)
		t.TotalDeductions = t.TotalDeductions.Add(p.TotalDeductions)
	}
	return t, s.AggregateErr
}

func (s *PayrollRepositoryStub) CountByStatus(_ context.Context, tenantID string, period model.Period) ([]model.GroupCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := map[string]int64{}
	for _, p := range s.inPeriodLocked(tenantID, period) {
		counts[string(p.Status)]++
	}
	var out []model.GroupCount
	for k, v := range counts {
		out = append(out, model.GroupCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, s.AggregateErr
}

func (s *PayrollRepositoryStub) SumsByEmployee(_ context.Context, tenantID string, period model.Period) ([]model.EmployeePayrollSum, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sums := map[int64]*model.EmployeePayrollSum{}
	for _, p := range s.inPeriodLocked(tenantID, period) {
		sum, ok := sums[p.EmployeeID]
		if !ok {
			sum = &model.EmployeePayrollSum{EmployeeID: p.EmployeeID, GrossSalary: decimal.Zero, NetSalary: decimal.Zero}
			if p.Employee != nil {
				sum.Department = p.Employee.Department
			}
			sums[p.EmployeeID] = sum
		}
		sum.Count++
		sum.GrossSalary = sum.GrossSalary.Add(p.GrossSalary)
		sum.NetSalary = sum.NetSalary.Add(p.NetSalary)
	}
	var out []model.EmployeePayrollSum
	for _, v := range sums {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, s.AggregateErr
}

func (s *PayrollRepositoryStub) inPeriodLocked(tenantID string, period model.Period) []*model.Payroll {
	var out []*model.Payroll
	for _, p := range s.Payrolls {
		if p.TenantID == tenantID && p.Period == period {
			out = append(out, p)
		}
	}
	return out
}

func (s *PayrollRepositoryStub) snapshot() (map[int64]model.Payroll, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]model.Payroll, len(s.Payrolls))
	for id, p := range s.Payrolls {
		out[id] = *p
	}
	return out, s.NextID
}

func (s *PayrollRepositoryStub) restore(payrolls map[int64]model.Payroll, next int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Payrolls = make(map[int64]*model.Payroll, len(payrolls))
	for id, p := range payrolls {
		p := p
		s.Payrolls[id] = &p
	}
	s.NextID = next
}
