package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/Graphyte-Intelligence/internal/interfaces/http/middleware"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeAppError maps err to its HTTP status. Client errors keep their
// message; server errors are masked behind the code's default message.
func writeAppError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	msg := errors.DefaultMessageForCode(code)
	var ae *errors.AppError
	if status < http.StatusInternalServerError || code == errors.ErrCodeModelNotReady || code == errors.ErrCodeServiceUnavailable {
		if stderrors.As(err, &ae) && ae.Message != "" {
			msg = ae.Message
			if ae.Detail != "" {
				msg += ": " + ae.Detail
			}
		}
	}

	_ = c.Error(err)
	c.JSON(status, ErrorResponse{
		Code:      string(code),
		Message:   msg,
		RequestID: middleware.GetRequestID(c),
	})
}

// bindJSON decodes the body or writes a 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeAppError(c, errors.New(errors.ErrCodeBadRequest, "invalid request body").WithDetail(err.Error()))
		return false
	}
	return true
}

// queryInt reads a non-negative integer query parameter, def when absent.
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Newf(errors.ErrCodeValidation, "%s must be a non-negative integer, got %q", name, raw)
	}
	return n, nil
}

//Personal.AI order the ending
