// File: /utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

func SendValidationError(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Validation failed",
		Message: err,
		Code:    http.StatusBadRequest,
	})
}

// SendAppError writes err using the status mapped by StatusFor. Internal errors are
// logged and replaced by a generic message.
func SendAppError(c *gin.Context, err error) {
	status := StatusFor(err)
	switch status {
	case http.StatusBadRequest:
		SendValidationError(c, err.Error())
	case http.StatusInternalServerError:
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		c.JSON(status, ErrorResponse{
			Error:   "Internal server error",
			Message: "An unexpected error occurred",
			Code:    status,
		})
	default:
		SendError(c, status, err.Error())
	}
}
