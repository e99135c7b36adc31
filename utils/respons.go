package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondAppError writes err using its AppError kind. Anything else is an
// internal error: the cause is logged and the client gets a generic message.
func RespondAppError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = Internal("internal server error", err)
	}

	if appErr.Kind == KindInternal {
		ErrorLogger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(appErr.Err).Error(appErr.Message)
	}

	status := appErr.Status()
	c.JSON(status, JSONResponse{
		Status:  false,
		Message: appErr.Message,
	})
}

// AbortWithAppError is RespondAppError for middlewares.
func AbortWithAppError(c *gin.Context, err error) {
	RespondAppError(c, err)
	c.Abort()
}

var errNotFoundRoute = errors.New("route not found")

// NoRoute answers unknown paths with the standard envelope.
func NoRoute(c *gin.Context) {
	RespondError(c, http.StatusNotFound, errNotFoundRoute)
}
