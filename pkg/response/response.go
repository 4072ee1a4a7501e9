// Package response carries the error contract shared by every endpoint.
// Success payloads are bare documented shapes; only errors are enveloped.
package response

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/profpocket/pocket-api/pkg/errors"
)

// Envelope wraps an error for the wire.
type Envelope struct {
	Error *appErrors.Error `json:"error,omitempty"`
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}
