package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/service"
)

// statusClientClosedRequest is the nginx convention for a request the client
// abandoned before the response was written.
const statusClientClosedRequest = 499

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

type PagedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields"`
}

var registerTagNames sync.Once

// useJSONFieldNames makes validator report json tag names (patient_name)
// rather than Go field names (PatientName).
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondValidation(c *gin.Context, fields []string) {
	c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
		Error:  "validation failed",
		Code:   "VALIDATION_ERROR",
		Fields: fields,
	})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		respondValidation(c, validErr.Fields)
		return
	}

	switch {
	case errors.Is(err, surgery.ErrSurgeryNotFound),
		errors.Is(err, surgery.ErrInvalidID):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: fmt.Sprintf("surgery with id %q not found", c.Param("id")),
			Code:  "NOT_FOUND",
		})

	case errors.Is(err, surgery.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "surgery store is temporarily unavailable",
			Code:  "STORE_UNAVAILABLE",
		})

	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(statusClientClosedRequest)

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// bindJSON decodes the body into obj; malformed JSON and binding-rule
// violations both answer 422.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	respondBindError(c, err)
	return false
}

// bindOptionalJSON is bindJSON for bodies that may be absent. An empty body,
// including a chunked one of unknown length, leaves obj untouched.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	err := c.ShouldBindJSON(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	respondBindError(c, err)
	return false
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, describeFieldError(fe))
		}
		respondValidation(c, fields)
		return
	}

	respondValidation(c, []string{"body: " + err.Error()})
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must not be empty"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}
