package auth

import (
	"context"

	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
	api_models "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models/api"
	interfaces "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Repository/Interfaces"

	"golang.org/x/crypto/bcrypt"
)

// AccountService handles profile and measurement-schedule updates
type AccountService struct {
	accountRepo       interfaces.AccountRepository
	passwordMinLength int
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type UpdateConfigRequest struct {
	FrequencyMinutes int    `json:"frequency"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
}

// NewAccountService creates a new account service
func NewAccountService(accountRepo interfaces.AccountRepository, passwordMinLength int) *AccountService {
	return &AccountService{
		accountRepo:       accountRepo,
		passwordMinLength: passwordMinLength,
	}
}

// GetByID retrieves an account
func (s *AccountService) GetByID(ctx context.Context, accountID string) (*vtlmodels.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, api_models.NotFound("account not found")
	}
	return account, nil
}

// UpdateProfile changes display name and/or password. Empty fields are left
// untouched.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, req UpdateProfileRequest) (*vtlmodels.Account, error) {
	account, err := s.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		account.Name = req.Name
	}
	if req.Password != "" {
		if len(req.Password) < s.passwordMinLength {
			return nil, api_models.Validation("password is too short")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		account.Password = string(hashed)
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateConfig replaces the measurement schedule. The schedule is stored for
// the wearable scheduler; the API does not act on it.
func (s *AccountService) UpdateConfig(ctx context.Context, accountID string, req UpdateConfigRequest) (*vtlmodels.MeasurementConfig, error) {
	if req.FrequencyMinutes <= 0 {
		return nil, api_models.Validation("frequency must be a positive number of minutes")
	}
	if req.StartTime == "" || req.EndTime == "" {
		return nil, api_models.Validation("startTime and endTime are required")
	}

	account, err := s.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	account.Config = vtlmodels.MeasurementConfig{
		FrequencyMinutes: req.FrequencyMinutes,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
	}

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	return &account.Config, nil
}
