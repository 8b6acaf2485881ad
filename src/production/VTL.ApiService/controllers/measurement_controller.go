package controllers

import (
	"net/http"
	"time"

	telemetry "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/telemetry"
	"gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/middleware"
	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"

	"github.com/gin-gonic/gin"
)

// MeasurementController handles ingestion and the two derived views. The
// ingestion route is device-authenticated, the queries are session
// authenticated; the two credential kinds never substitute for each other.
type MeasurementController struct {
	telemetry      *telemetry.Service
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewMeasurementController creates a new measurement controller
func NewMeasurementController(telemetry *telemetry.Service, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *MeasurementController {
	return &MeasurementController{
		telemetry:      telemetry,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the measurement routes with Gin
func (h *MeasurementController) RegisterRoutes(router *gin.Engine) {
	measurements := router.Group("/api/measurements")
	{
		measurements.POST("", h.authMiddleware.RequireDeviceKey(), h.Ingest)
		measurements.GET("/daily", h.authMiddleware.RequireSession(), h.Daily)
		measurements.GET("/weekly", h.authMiddleware.RequireSession(), h.Weekly)
	}
}

// IngestRequest is the wearable's reading payload. Heart rate and SpO2 are
// pointers so a missing field is distinguishable from a literal zero.
type IngestRequest struct {
	DeviceID  string     `json:"deviceId"`
	HeartRate *float64   `json:"heartRate"`
	SpO2      *float64   `json:"spo2"`
	Timestamp *time.Time `json:"timestamp"`
}

// Ingest stores one device reading
func (h *MeasurementController) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, api_models.Validation(err.Error()))
		return
	}

	if req.DeviceID == "" || req.HeartRate == nil || req.SpO2 == nil {
		respondError(c, h.logger, api_models.Validation("missing required fields: deviceId, heartRate, spo2"))
		return
	}

	at := time.Time{}
	if req.Timestamp != nil {
		at = *req.Timestamp
	}

	measurement, err := h.telemetry.Ingest(c.Request.Context(), req.DeviceID, *req.HeartRate, *req.SpO2, at)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, measurement)
}

// Daily returns one UTC calendar day of readings, oldest first
func (h *MeasurementController) Daily(c *gin.Context) {
	accountID, err := middleware.GetAccountFromGinContext(c)
	if err != nil {
		respondError(c, h.logger, api_models.Unauthenticated("Authentication required"))
		return
	}

	measurements, err := h.telemetry.Daily(c.Request.Context(), accountID, c.Query("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, measurements)
}

// Weekly returns the trailing-seven-day heart-rate summary
func (h *MeasurementController) Weekly(c *gin.Context) {
	accountID, err := middleware.GetAccountFromGinContext(c)
	if err != nil {
		respondError(c, h.logger, api_models.Unauthenticated("Authentication required"))
		return
	}

	summary, err := h.telemetry.Weekly(c.Request.Context(), accountID, time.Now())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, summary)
}
