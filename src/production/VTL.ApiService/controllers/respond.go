package controllers

import (
	"github.com/gin-gonic/gin"
	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"
)

// respondError converts any error into the structured failure envelope.
// Internal failures are logged in full and answered generically; the kind
// string is stable for clients, the message is for humans.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	apiErr := api_models.AsError(err)
	if apiErr.Kind == api_models.KindInternal {
		log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(apiErr.Kind.HTTPStatus(), gin.H{
		"success": false,
		"kind":    apiErr.Kind,
		"message": apiErr.Message,
	})
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
