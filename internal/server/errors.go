package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/estimate-parser/internal/common"
)

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError maps err onto a status and hides internal causes from the client.
func writeError(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	body := ErrorResponse{
		Code:      common.ErrorCode(err, "INTERNAL_ERROR"),
		Message:   "an internal error occurred",
		RequestID: common.RequestIDFromContext(c.Request.Context()),
	}
	if status < http.StatusInternalServerError {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			body.Message = appErr.Message
		} else {
			body.Message = err.Error()
		}
	}
	c.AbortWithStatusJSON(status, body)
}
