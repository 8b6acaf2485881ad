package interfaces

import (
	"context"

	vtlmodels "gitlab.com/maplesense1/vtl.vitals_server/src/production/VTL.Models"
)

type AccountRepository interface {
	// Create account
	Create(ctx context.Context, account *vtlmodels.Account) (*vtlmodels.Account, error)

	// Read accounts. A missing account is (nil, nil), not an error.
	GetByID(ctx context.Context, accountID string) (*vtlmodels.Account, error)
	GetByEmail(ctx context.Context, email string) (*vtlmodels.Account, error)

	// Update account (name, password hash, measurement config)
	Update(ctx context.Context, account *vtlmodels.Account) error
}
