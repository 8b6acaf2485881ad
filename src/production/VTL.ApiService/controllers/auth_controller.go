package controllers

import (
	"net/http"

	service "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/auth"
	logger "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Logger"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"

	"github.com/gin-gonic/gin"
)

// AuthController handles registration and login requests
type AuthController struct {
	authService *service.AuthService
	logger      *logger.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(authService *service.AuthService, logger *logger.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth routes with Gin
func (h *AuthController) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// Register handles account registration with the first device
func (h *AuthController) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, api_models.Validation(err.Error()))
		return
	}

	response, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, response)
}

// Login handles account login
func (h *AuthController) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, api_models.Validation(err.Error()))
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, response)
}
