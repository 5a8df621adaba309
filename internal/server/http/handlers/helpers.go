package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/erpcore/internal/domain/errors"
	"github.com/polkiloo/erpcore/internal/domain/model"
	pkgAuth "github.com/polkiloo/erpcore/internal/pkg/auth"
	"github.com/polkiloo/erpcore/internal/server/http/dto"
	"github.com/polkiloo/erpcore/internal/server/http/middleware"
)

// CurrentPrincipal extracts the authenticated caller from context.
func CurrentPrincipal(c *gin.Context) pkgAuth.Principal {
	p, _ := middleware.Principal(c)
	return p
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, dto.Envelope{Success: true, Data: data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, dto.Envelope{Error: msg})
}

// fail maps domain errors onto HTTP statuses.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.JSON(status, dto.Envelope{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrImmutable),
		errors.Is(err, domainErrors.ErrStockValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid "+key)
		return 0, false
	}
	return n, true
}

func queryInt64(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+key)
		return 0, false
	}
	return n, true
}

func pageFromQuery(c *gin.Context) (model.Page, bool) {
	number, ok := queryInt(c, "page")
	if !ok {
		return model.Page{}, false
	}
	size, ok := queryInt(c, "page_size")
	if !ok {
		return model.Page{}, false
	}
	return model.Page{Number: number, Size: size}.Normalize(), true
}
