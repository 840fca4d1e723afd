package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"arena/internal/middleware"
	"arena/internal/models"
)

// respondError traduit une erreur de service en réponse wire
func respondError(c *gin.Context, err error) {
	ae := models.AsArenaError(err)

	if ae.Status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"error":      err.Error(),
			"path":       c.Request.URL.Path,
			"request_id": c.GetString(middleware.ContextRequestID),
		}).Error("Request failed")
	}

	c.JSON(ae.Status, models.ErrorResponse{
		Error:     ae.Message,
		Code:      ae.Code,
		RequestID: c.GetString(middleware.ContextRequestID),
	})
}

// respondValidation répond 400 sur une erreur de binding
func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:     err.Error(),
		Code:      models.CodeValidation,
		RequestID: c.GetString(middleware.ContextRequestID),
	})
}
