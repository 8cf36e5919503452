package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"OnDuty/pkg/errors"
)

// ErrorResponse is the envelope for failed requests.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse is the envelope for successful requests.
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

func errorToHTTPStatus(err error) int {
	def, ok := err.(errors.Definition)
	if !ok {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case "AUTH_RATE_LIMITED", "TOO_MANY_REQUESTS":
		return http.StatusTooManyRequests
	case "LOGIN_INVALID", "INVALID_EMPLOYEE_ID", "INVALID_REQUEST",
		"ALREADY_CLOCKED_IN", "NOT_CLOCKED_IN", "PUSH_ADDRESS_MISSING":
		return http.StatusBadRequest
	case "UNAUTHORIZED":
		return http.StatusUnauthorized
	case "ADMIN_ROLE_REQUIRED", "EMPLOYEE_INACTIVE":
		return http.StatusForbidden
	case "EMPLOYEE_NOT_FOUND", "SESSION_NOT_FOUND":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *app.RequestContext, err error, details map[string]interface{}) {
	detail := ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error(), Details: details}
	if def, ok := err.(errors.Definition); ok {
		detail.Code = def.Code
		detail.Message = def.Message
	}
	c.JSON(errorToHTTPStatus(err), ErrorResponse{Error: detail})
}

// Error writes the mapped status code and error envelope.
func Error(ctx context.Context, c *app.RequestContext, err error) {
	writeError(c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	writeError(c, err, details)
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}
