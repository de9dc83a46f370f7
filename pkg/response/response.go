package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/csr-compliance-api/pkg/errors"
)

// Envelope is used for error bodies and auxiliary endpoints (imports, signed links).
type Envelope struct {
	Data  interface{}            `json:"data,omitempty"`
	Error *appErrors.Error       `json:"error,omitempty"`
	Meta  map[string]interface{} `json:"meta,omitempty"`
}

// MessageBody acknowledges a mutation. It is never a source of truth for the entity.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON sends the payload as-is. Compliance list endpoints use named top-level keys
// ({"requirements": [...]}) rather than the envelope.
func JSON(c *gin.Context, status int, payload interface{}) {
	noStore(c)
	c.JSON(status, payload)
}

// List writes {key: items}, substituting an empty array for nil.
func List[T any](c *gin.Context, key string, items []T) {
	if items == nil {
		items = []T{}
	}
	JSON(c, http.StatusOK, map[string][]T{key: items})
}

// Data wraps data in the envelope.
func Data(c *gin.Context, status int, data interface{}, meta ...map[string]interface{}) {
	envelope := Envelope{Data: data}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	JSON(c, status, envelope)
}

// Message acknowledges a mutation with HTTP 200.
func Message(c *gin.Context, message string) {
	JSON(c, http.StatusOK, MessageBody{Message: message})
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
