package middleware

import (
	"errors"
	"net/http"
	"strings"

	jwt "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/jwt"
	interfaces "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Repository/Interfaces"

	"github.com/gin-gonic/gin"
)

// CallerKind tags how the current request was authenticated.
type CallerKind int

const (
	// CallerAccount is a web session resolved to a concrete account.
	CallerAccount CallerKind = iota
	// CallerDevice is a wearable that proved the shared device secret.
	// It carries no account identity; the payload's deviceId does.
	CallerDevice
)

// Caller is the authenticated identity of a request. Exactly one of the two
// variants applies; AccountID is only set for CallerAccount.
type Caller struct {
	Kind      CallerKind
	AccountID string
}

const callerContextKey = "caller"

// Config holds middleware configuration
type Config struct {
	// HTTP header names for credentials
	SessionTokenHeader string
	DeviceKeyHeader    string

	// Cookie name for the session token (optional alternative to the header)
	SessionTokenCookie string
}

// DefaultConfig returns a default middleware configuration
func DefaultConfig() Config {
	return Config{
		SessionTokenHeader: "Authorization",
		DeviceKeyHeader:    "X-Device-Key",
		SessionTokenCookie: "session_token",
	}
}

// AuthMiddleware gates handlers on one of the two credential kinds.
type AuthMiddleware struct {
	jwtService  *jwt.Service
	accountRepo interfaces.AccountRepository
	deviceKey   string
	config      Config
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *jwt.Service, accountRepo interfaces.AccountRepository, deviceKey string, config Config) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		accountRepo: accountRepo,
		deviceKey:   deviceKey,
		config:      config,
	}
}

// extractToken gets a token from either header or cookie
func extractToken(r *http.Request, headerName, cookieName string) string {
	token := r.Header.Get(headerName)
	if token != "" {
		// Handle Authorization: Bearer token format
		if strings.HasPrefix(token, "Bearer ") {
			return strings.TrimPrefix(token, "Bearer ")
		}
		return token
	}

	if cookieName != "" {
		cookie, err := r.Cookie(cookieName)
		if err == nil {
			return cookie.Value
		}
	}

	return ""
}

// RequireSession verifies a session token and resolves it to an account.
// A token whose subject no longer exists is reported to the caller as plain
// unauthenticated; the distinction only matters server-side.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := extractToken(c.Request, m.config.SessionTokenHeader, m.config.SessionTokenCookie)
		if sessionToken == "" {
			abortUnauthenticated(c, "Authentication required")
			return
		}

		claims, err := m.jwtService.ValidateSessionToken(sessionToken)
		if err != nil {
			abortUnauthenticated(c, "Invalid session token")
			return
		}

		account, err := m.accountRepo.GetByID(c.Request.Context(), claims.AccountID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "kind": "internal", "message": "server error"})
			c.Abort()
			return
		}
		if account == nil {
			abortUnauthenticated(c, "Invalid session token")
			return
		}

		c.Set(callerContextKey, Caller{Kind: CallerAccount, AccountID: account.AccountID})
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"success": false, "kind": "unauthenticated", "message": message})
	c.Abort()
}

// GetCallerFromGinContext retrieves the authenticated caller identity
func GetCallerFromGinContext(c *gin.Context) (Caller, error) {
	callerVal, exists := c.Get(callerContextKey)
	if !exists {
		return Caller{}, errors.New("caller not found in context")
	}

	caller, ok := callerVal.(Caller)
	if !ok {
		return Caller{}, errors.New("invalid caller format in context")
	}

	return caller, nil
}

// GetAccountFromGinContext retrieves the account ID of a session caller
func GetAccountFromGinContext(c *gin.Context) (string, error) {
	caller, err := GetCallerFromGinContext(c)
	if err != nil {
		return "", err
	}
	if caller.Kind != CallerAccount || caller.AccountID == "" {
		return "", errors.New("caller is not an account")
	}
	return caller.AccountID, nil
}
