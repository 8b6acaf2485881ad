package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	jwtservice "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/jwt"
	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAccountRepo struct {
	accounts map[string]*vtlmodels.Account
}

func (r *stubAccountRepo) Create(_ context.Context, account *vtlmodels.Account) (*vtlmodels.Account, error) {
	return account, nil
}

func (r *stubAccountRepo) GetByID(_ context.Context, accountID string) (*vtlmodels.Account, error) {
	return r.accounts[accountID], nil
}

func (r *stubAccountRepo) GetByEmail(_ context.Context, _ string) (*vtlmodels.Account, error) {
	return nil, nil
}

func (r *stubAccountRepo) Update(_ context.Context, _ *vtlmodels.Account) error {
	return nil
}

const testDeviceKey = "shared-wearable-secret"

func newTestRig(t *testing.T) (*AuthMiddleware, *jwtservice.Service, *stubAccountRepo) {
	t.Helper()
	jwtSvc := jwtservice.NewService(api_models.Config{
		SecretKey:            "test-secret",
		SessionTokenDuration: time.Hour,
		Issuer:               "vtl-api",
	})
	repo := &stubAccountRepo{accounts: map[string]*vtlmodels.Account{
		"acct-1": {AccountID: "acct-1", Email: "a@b.com"},
	}}
	return NewAuthMiddleware(jwtSvc, repo, testDeviceKey, DefaultConfig()), jwtSvc, repo
}

func sessionRouter(m *AuthMiddleware) *gin.Engine {
	router := gin.New()
	router.GET("/protected", m.RequireSession(), func(c *gin.Context) {
		accountID, err := GetAccountFromGinContext(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"account_id": accountID})
	})
	return router
}

func TestRequireSessionAcceptsBearerToken(t *testing.T) {
	m, jwtSvc, _ := newTestRig(t)
	router := sessionRouter(m)

	token, err := jwtSvc.GenerateSessionToken("acct-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "acct-1")
}

func TestRequireSessionAcceptsCookie(t *testing.T) {
	m, jwtSvc, _ := newTestRig(t)
	router := sessionRouter(m)

	token, err := jwtSvc.GenerateSessionToken("acct-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token.Token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSessionRejectsMissingToken(t *testing.T) {
	m, _, _ := newTestRig(t)
	router := sessionRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSessionRejectsTokenForDeletedAccount(t *testing.T) {
	m, jwtSvc, repo := newTestRig(t)
	router := sessionRouter(m)

	token, err := jwtSvc.GenerateSessionToken("acct-1")
	require.NoError(t, err)
	delete(repo.accounts, "acct-1")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Indistinguishable from a bad token on the wire.
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Invalid session token")
}

func TestRequireSessionRejectsForgedToken(t *testing.T) {
	m, _, _ := newTestRig(t)
	router := sessionRouter(m)

	forger := jwtservice.NewService(api_models.Config{
		SecretKey:            "attacker-secret",
		SessionTokenDuration: time.Hour,
		Issuer:               "vtl-api",
	})
	token, err := forger.GenerateSessionToken("acct-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func deviceRouter(m *AuthMiddleware) *gin.Engine {
	router := gin.New()
	router.POST("/ingest", m.RequireDeviceKey(), func(c *gin.Context) {
		caller, err := GetCallerFromGinContext(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"kind": int(caller.Kind)})
	})
	return router
}

func TestRequireDeviceKeyAcceptsSharedSecret(t *testing.T) {
	m, _, _ := newTestRig(t)
	router := deviceRouter(m)

	req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
	req.Header.Set("X-Device-Key", testDeviceKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireDeviceKeyRejectsWrongOrMissingSecret(t *testing.T) {
	m, _, _ := newTestRig(t)
	router := deviceRouter(m)

	for _, key := range []string{"", "wrong", testDeviceKey + "x"} {
		req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
		if key != "" {
			req.Header.Set("X-Device-Key", key)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "key %q must be rejected", key)
	}
}

func TestRequireDeviceKeyRejectsSessionToken(t *testing.T) {
	m, jwtSvc, _ := newTestRig(t)
	router := deviceRouter(m)

	// A valid session credential is the wrong kind for the ingestion gate.
	token, err := jwtSvc.GenerateSessionToken("acct-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
	req.Header.Set("Authorization", "Bearer "+token.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireDeviceKeyFailsClosedWhenUnconfigured(t *testing.T) {
	_, jwtSvc, repo := newTestRig(t)
	m := NewAuthMiddleware(jwtSvc, repo, "", DefaultConfig())
	router := deviceRouter(m)

	req := httptest.NewRequest(http.MethodPost, "/ingest", nil)
	req.Header.Set("X-Device-Key", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetAccountFromGinContextRejectsDeviceCaller(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(callerContextKey, Caller{Kind: CallerDevice})

	_, err := GetAccountFromGinContext(c)
	require.Error(t, err)
}
