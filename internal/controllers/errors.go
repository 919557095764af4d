package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/fitbit-gateway/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel adjusts the verbosity of handler error logging.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// errorMapping ties a domain error to its HTTP status and API error code.
// Order matters: the first match wins.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{models.ErrInvalidState, http.StatusBadRequest, models.ErrCodeInvalidState},
	{models.ErrTokenExchangeFailed, http.StatusBadRequest, models.ErrCodeTokenExchangeFailed},
	{models.ErrUserIDUnresolved, http.StatusBadGateway, models.ErrCodeUserIDUnresolved},
	{models.ErrRefreshFailed, http.StatusUnauthorized, models.ErrCodeRefreshFailed},
	{models.ErrUnauthorizedAPI, http.StatusUnauthorized, models.ErrUnauthorized},
	{models.ErrNoTokenStored, http.StatusBadRequest, models.ErrCodeNoTokenStored},
	{models.ErrNoDataForDate, http.StatusNotFound, models.ErrCodeNoDataForDate},
	{models.ErrUpstream, http.StatusBadGateway, models.ErrCodeUpstream},
}

// statusAndError converts err into the response status and body.
func statusAndError(err error) (int, models.APIError) {
	for _, m := range errorMapping {
		if !errors.Is(err, m.err) {
			continue
		}
		var upstream *models.UpstreamError
		if errors.As(err, &upstream) {
			return m.status, models.NewAPIError(m.code, m.err.Error(), map[string]interface{}{
				"upstream_status": upstream.Status,
				"upstream_body":   upstream.Body,
			})
		}
		return m.status, models.NewAPIError(m.code, err.Error())
	}
	return http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "internal server error")
}

// respondWithError writes err as an APIError and aborts the request
func respondWithError(c *gin.Context, err error) {
	status, apiErr := statusAndError(err)
	entry := log.WithError(err).WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"status": status,
		"code":   apiErr.Code,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, apiErr)
}
