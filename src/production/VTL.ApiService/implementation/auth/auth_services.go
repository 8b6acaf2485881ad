package auth

import (
	"context"
	"strings"

	jwt "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/jwt"
	registry "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.ApiService/implementation/registry"
	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"
	interfaces "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Repository/Interfaces"

	"golang.org/x/crypto/bcrypt"
)

// AuthService aggregates account registration and login
type AuthService struct {
	accountRepo       interfaces.AccountRepository
	registry          *registry.Service
	jwtService        *jwt.Service
	passwordMinLength int
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

// NewAuthService creates a new auth service
func NewAuthService(
	accountRepo interfaces.AccountRepository,
	registry *registry.Service,
	jwtService *jwt.Service,
	passwordMinLength int,
) *AuthService {
	return &AuthService{
		accountRepo:       accountRepo,
		registry:          registry,
		jwtService:        jwtService,
		passwordMinLength: passwordMinLength,
	}
}

// Register creates a new account and claims its first device. The device-id
// check runs before the account insert so a claimed device never leaves a
// half-registered account behind.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" || req.DeviceID == "" {
		return nil, api_models.Validation("email, password and deviceId are required")
	}
	if len(req.Password) < s.passwordMinLength {
		return nil, api_models.Validation("password is too short")
	}

	existing, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, api_models.Conflict("email already in use")
	}

	if _, err := s.registry.Resolve(ctx, req.DeviceID); err == nil {
		return nil, api_models.Conflict("device ID already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &vtlmodels.Account{
		Email:    req.Email,
		Password: string(hashedPassword),
		Name:     defaultName(req.Email),
		Config:   vtlmodels.DefaultMeasurementConfig(),
	}
	account, err = s.accountRepo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	if _, err := s.registry.Register(ctx, account.AccountID, req.DeviceID, "Initial Device"); err != nil {
		return nil, err
	}

	return s.tokenResponse(account)
}

// Login authenticates an account and mints a session token. Unknown email
// and wrong password collapse into the same answer.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, api_models.Validation("email and password are required")
	}

	account, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, api_models.Unauthenticated("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return nil, api_models.Unauthenticated("invalid credentials")
	}

	return s.tokenResponse(account)
}

func (s *AuthService) tokenResponse(account *vtlmodels.Account) (*AuthResponse, error) {
	token, err := s.jwtService.GenerateSessionToken(account.AccountID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		AccountID: account.AccountID,
		Email:     account.Email,
		Name:      account.Name,
	}, nil
}

func defaultName(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "New User"
}
