package response

import (
	"net/http"

	"busly/internal/shared/errs"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// Success writes a success envelope with the given payload.
func Success(c *gin.Context, code int, message string, data interface{}) {
	RespondJSON(c, "success", code, message, data, nil)
}

// Error translates a domain error into the standard envelope, using its
// machine-readable code and mapped HTTP status.
func Error(c *gin.Context, err error) {
	status := errs.HTTPStatus(err)
	c.JSON(status, StandardApiResponse{
		Status:     "error",
		StatusCode: status,
		Message:    err.Error(),
		Code:       errs.Code(err),
	})
}

// BadRequest writes a validation failure envelope.
func BadRequest(c *gin.Context, message string, details interface{}) {
	RespondJSON(c, "error", http.StatusBadRequest, message, nil, details)
}
