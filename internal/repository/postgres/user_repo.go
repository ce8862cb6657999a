package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

type userRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new PostgreSQL-backed UserRepository.
func NewUserRepo(db *sqlx.DB) port.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	return &user, nil
}

type driverRepo struct {
	db *sqlx.DB
}

// NewDriverRepo creates a new PostgreSQL-backed DriverRepository.
func NewDriverRepo(db *sqlx.DB) port.DriverRepository {
	return &driverRepo{db: db}
}

func (r *driverRepo) GetByID(ctx context.Context, driverID uuid.UUID) (*domain.Driver, error) {
	var driver domain.Driver
	err := r.db.GetContext(ctx, &driver, "SELECT * FROM drivers WHERE id = $1", driverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDriverNotFound
		}
		return nil, fmt.Errorf("driverRepo.GetByID: %w", err)
	}
	return &driver, nil
}

func (r *driverRepo) ListActive(ctx context.Context) ([]domain.Driver, error) {
	drivers := []domain.Driver{}
	err := r.db.SelectContext(ctx, &drivers,
		"SELECT * FROM drivers WHERE is_active = TRUE ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("driverRepo.ListActive: %w", err)
	}
	return drivers, nil
}
