package port

import (
	"context"

	"github.com/google/uuid"

	"tradeflow/internal/domain"
)

// UserRepository reads platform users. Users are managed by the external auth
// service; this service only looks them up.
type UserRepository interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// DriverRepository reads drivers.
type DriverRepository interface {
	GetByID(ctx context.Context, driverID uuid.UUID) (*domain.Driver, error)
	ListActive(ctx context.Context) ([]domain.Driver, error)
}
