package controllers

import (
	"net/http"

	service "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/auth"
	registry "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/registry"
	"gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/middleware"
	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"

	"github.com/gin-gonic/gin"
)

// AccountController handles profile, schedule and device lifecycle requests.
// Everything here requires a session; ownership of a device is re-checked by
// the registry on every mutating call.
type AccountController struct {
	accountService *service.AccountService
	registry       *registry.Service
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewAccountController creates a new account controller
func NewAccountController(accountService *service.AccountService, registry *registry.Service, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *AccountController {
	return &AccountController{
		accountService: accountService,
		registry:       registry,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the account routes with Gin
func (h *AccountController) RegisterRoutes(router *gin.Engine) {
	account := router.Group("/api/account", h.authMiddleware.RequireSession())
	{
		account.GET("/me", h.GetMe)
		account.PUT("/me", h.UpdateMe)
		account.PUT("/config", h.UpdateConfig)

		account.GET("/devices", h.ListDevices)
		account.POST("/devices", h.AddDevice)
		account.PATCH("/devices/:device_id", h.RenameDevice)
		account.DELETE("/devices/:device_id", h.RemoveDevice)
	}
}

// GetMe returns the authenticated account
func (h *AccountController) GetMe(c *gin.Context) {
	accountID, err := middleware.GetAccountFromGinContext(c)
	if err != nil {
		respondError(c, h.logger, api_models.Unauthenticated("Authentication required"))
		return
	}

	account, err := h.accountService.GetByID(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, account)
}

// UpdateMe updates display name and/or password
func (h *AccountController) UpdateMe(c *gin.Context) {
	accountID, err := middleware.GetAccountFromGinContext(c)
	if err != nil {
		respondError(c, h.logger, api_models.Unauthenticated("Authentication required"))
		return
	}

	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, api_models.Validation(err.Error()))
		return
	}

	account, err := h.accountService.UpdateProfile(c.Request.Context(), accountID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, account)
}

// UpdateConfig replaces the measurement schedule
func (h *AccountController) UpdateConfig(c *gin.Context) {
	accountID, err := middleware.GetAccountFromGinContext(c)
	if err != nil {
		respondError(c, h.logger, api_models.Unauthenticated("Authentication required"))
		return
	}

	var req service.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, api_models.Validation(err.Error()))
		return
	}

	config, err := h.accountService.UpdateConfig(c.Request.Context(), accountID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, config)
}

type AddDeviceRequest struct {
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
}

type RenameDeviceRequest struct {
	Name string `json:"name"`
}

// ListDevices returns the caller's devices
func (h *AccountController) ListDevices(c *gin.Context) {
	accountID, err := middleware.GetAccountFromGinContext(c)
	if err != nil {
		respondError(c, h.logger, api_models.Unauthenticated("Authentication required"))
		return
	}

	devices, err := h.registry.ListForAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, devices)
}

// AddDevice claims a physical device for the caller's account
func (h *AccountController) AddDevice(c *gin.Context) {
	accountID, err := middleware.GetAccountFromGinContext(c)
	if err != nil {
		respondError(c, h.logger, api_models.Unauthenticated("Authentication required"))
		return
	}

	var req AddDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, api_models.Validation(err.Error()))
		return
	}

	device, err := h.registry.Register(c.Request.Context(), accountID, req.DeviceID, req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, device)
}

// RenameDevice changes a device's friendly name
func (h *AccountController) RenameDevice(c *gin.Context) {
	accountID, err := middleware.GetAccountFromGinContext(c)
	if err != nil {
		respondError(c, h.logger, api_models.Unauthenticated("Authentication required"))
		return
	}

	var req RenameDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, api_models.Validation(err.Error()))
		return
	}

	device, err := h.registry.Rename(c.Request.Context(), accountID, c.Param("device_id"), req.Name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, device)
}

// RemoveDevice deletes a device and cascades its measurements
func (h *AccountController) RemoveDevice(c *gin.Context) {
	accountID, err := middleware.GetAccountFromGinContext(c)
	if err != nil {
		respondError(c, h.logger, api_models.Unauthenticated("Authentication required"))
		return
	}

	if err := h.registry.Remove(c.Request.Context(), accountID, c.Param("device_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{})
}
