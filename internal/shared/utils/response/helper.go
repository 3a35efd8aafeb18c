package response

import (
	"net/http"

	"floorly/internal/shared/faults"

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

// RespondFault maps a typed fault onto the standard envelope, falling back to
// 500 for errors that carry no fault kind.
func RespondFault(c *gin.Context, err error) {
	code := faults.HTTPStatus(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = "internal server error"
	}
	RespondJSON(c, "error", code, message, nil, gin.H{"kind": string(faults.KindOf(err))})
}
