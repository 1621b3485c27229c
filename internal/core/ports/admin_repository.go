package ports

import (
	"context"

	"github.com/legacyvault/admin-trust/internal/core/domain"
)

// AdminRepository is the credential store contract. The trust core looks
// admins up and creates them; it never mutates credentials in place.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Admin, error)
	Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
}
