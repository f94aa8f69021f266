package ports

import (
	"context"

	"github.com/aretw0/remnawizard/pkg/domain"
)

// Provisioner is the external service that creates users.
// Errors carrying a structured payload from the service must be *domain.APIError.
type Provisioner interface {
	CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.UserRecord, error)
}
