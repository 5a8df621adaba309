package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
	"github.com/polkiloo/erpcore/internal/server/http/dto"
)

// PayrollHandler manages payroll endpoints.
type PayrollHandler struct {
	facade PayrollFacade
}

// NewPayrollHandler constructs PayrollHandler.
func NewPayrollHandler(facade PayrollFacade) *PayrollHandler {
	return &PayrollHandler{facade: facade}
}

// Create handles POST /api/v1/payrolls.
func (h *PayrollHandler) Create(c *gin.Context) {
	var req dto.CreatePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "employee_id and period are required")
		return
	}
	payroll, err := h.facade.CreatePayroll(c.Request.Context(), CurrentPrincipal(c).TenantID, req.Input())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, dto.NewPayrollResponse(*payroll))
}

// Get handles GET /api/v1/payrolls/:id.
func (h *PayrollHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	payroll, err := h.facade.Payroll(c.Request.Context(), CurrentPrincipal(c).TenantID, id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewPayrollResponse(*payroll))
}

// List handles GET /api/v1/payrolls.
func (h *PayrollHandler) List(c *gin.Context) {
	page, ok := pageFromQuery(c)
	if !ok {
		return
	}
	employeeID, ok := queryInt64(c, "employee_id")
	if !ok {
		return
	}
	filter := model.PayrollFilter{
		EmployeeID: employeeID,
		Period:     c.Query("period"),
		Status:     model.PayrollStatus(c.Query("status")),
		Department: c.Query("department"),
		Page:       page,
	}
	payrolls, total, err := h.facade.Payrolls(c.Request.Context(), CurrentPrincipal(c).TenantID, filter)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.PageResponse[dto.PayrollResponse]{
		Items:    dto.NewPayrollResponses(payrolls),
		Total:    total,
		Page:     page.Number,
		PageSize: page.Size,
	})
}

// Update handles PATCH /api/v1/payrolls/:id.
func (h *PayrollHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.UpdatePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed payroll payload")
		return
	}
	payroll, err := h.facade.UpdatePayroll(c.Request.Context(), CurrentPrincipal(c).TenantID, id, req.Patch())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewPayrollResponse(*payroll))
}

// Delete handles DELETE /api/v1/payrolls/:id.
func (h *PayrollHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.facade.DeletePayroll(c.Request.Context(), CurrentPrincipal(c).TenantID, id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

// Process handles POST /api/v1/payrolls/:id/process.
func (h *PayrollHandler) Process(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	payroll, err := h.facade.ProcessPayroll(c.Request.Context(), CurrentPrincipal(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewPayrollResponse(*payroll))
}

// Pay handles POST /api/v1/payrolls/:id/pay.
func (h *PayrollHandler) Pay(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	payroll, err := h.facade.PayPayroll(c.Request.Context(), CurrentPrincipal(c).TenantID, id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewPayrollResponse(*payroll))
}

// Generate handles POST /api/v1/payrolls/generate. Partial failures still
// return the created payrolls, with 207 Multi-Status.
func (h *PayrollHandler) Generate(c *gin.Context) {
	var req dto.GeneratePayrollsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "period is required")
		return
	}
	period, err := model.ParsePeriod(req.Period)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	batch, err := h.facade.GeneratePayrolls(c.Request.Context(), CurrentPrincipal(c).TenantID, period)
	var batchErr *domainErrors.BatchError
	switch {
	case err == nil:
		respond(c, http.StatusCreated, dto.NewPayrollBatchResponse(*batch))
	case errors.As(err, &batchErr) && batch != nil:
		_ = c.Error(err)
		c.JSON(http.StatusMultiStatus, dto.Envelope{
			Success: false,
			Data:    dto.NewPayrollBatchResponse(*batch),
			Error:   err.Error(),
		})
	default:
		fail(c, err)
	}
}

// Stats handles GET /api/v1/payrolls/stats.
func (h *PayrollHandler) Stats(c *gin.Context) {
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	month, ok := queryInt(c, "month")
	if !ok {
		return
	}
	stats, err := h.facade.PayrollStats(c.Request.Context(), CurrentPrincipal(c).TenantID, year, month)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, dto.NewPayrollStatsResponse(*stats))
}
