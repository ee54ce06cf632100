package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/citas-api/pkg/errors"
)

// ErrorCodeHeader carries the machine readable error code next to the text body.
const ErrorCodeHeader = "X-Error-Code"

// JSON sends the bare payload. The web client reads records and arrays
// directly, so no envelope is added.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, data)
}

// OK responds with HTTP 200 and a JSON payload.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Text responds with a plain text message.
func Text(c *gin.Context, status int, message string) {
	noStore(c)
	c.String(status, message)
}

// Error writes the error message as plain text with the code in a header.
// Errors carrying details (partial bulk results) are rendered as JSON instead.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.Header(ErrorCodeHeader, appErr.Code)
	if appErr.Details != nil {
		c.JSON(appErr.Status, appErr.Details)
		return
	}
	c.String(appErr.Status, appErr.Message)
}

// Binary sends a downloadable file.
func Binary(c *gin.Context, contentType, filename string, data []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
