package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

type shipmentRepo struct {
	db *sqlx.DB
}

// NewShipmentRepo creates a new PostgreSQL-backed ShipmentRepository.
func NewShipmentRepo(db *sqlx.DB) port.ShipmentRepository {
	return &shipmentRepo{db: db}
}

func (r *shipmentRepo) Create(ctx context.Context, s *domain.Shipment) error {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = domain.ShipmentStatusDraft
	}
	if len(s.Metadata) == 0 {
		s.Metadata = json.RawMessage("{}")
	}

	query := `INSERT INTO shipments (
		id, supplier_id, forwarder_id, assigned_driver_id, status,
		origin, destination,
		gross_weight_kg, net_weight_kg, volume_cbm, total_packages,
		hs_code, goods_description,
		quote_amount, quote_status, quote_forwarder_id, quote_extra, quote_time,
		metadata, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7,
		$8, $9, $10, $11,
		$12, $13,
		$14, $15, $16, $17, $18,
		$19, $20, $21
	)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.SupplierID, s.ForwarderID, s.AssignedDriverID, s.Status,
		s.Origin, s.Destination,
		s.GrossWeightKg, s.NetWeightKg, s.VolumeCbm, s.TotalPackages,
		s.HSCode, s.GoodsDescription,
		s.QuoteAmount, s.QuoteStatus, s.QuoteForwarderID, s.QuoteExtra, s.QuoteTime,
		s.Metadata, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("shipmentRepo.Create: %w", err)
	}
	return nil
}

func (r *shipmentRepo) GetByID(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error) {
	var s domain.Shipment
	err := r.db.GetContext(ctx, &s, "SELECT * FROM shipments WHERE id = $1", shipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrShipmentNotFound
		}
		return nil, fmt.Errorf("shipmentRepo.GetByID: %w", err)
	}
	return &s, nil
}

func (r *shipmentRepo) Update(ctx context.Context, s *domain.Shipment) error {
	s.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE shipments SET
			forwarder_id = $1, assigned_driver_id = $2, status = $3,
			origin = $4, destination = $5,
			gross_weight_kg = $6, net_weight_kg = $7, volume_cbm = $8,
			total_packages = $9, hs_code = $10, goods_description = $11,
			quote_amount = $12, quote_status = $13, quote_forwarder_id = $14,
			quote_extra = $15, quote_time = $16,
			metadata = $17, updated_at = $18
		 WHERE id = $19`,
		s.ForwarderID, s.AssignedDriverID, s.Status,
		s.Origin, s.Destination,
		s.GrossWeightKg, s.NetWeightKg, s.VolumeCbm,
		s.TotalPackages, s.HSCode, s.GoodsDescription,
		s.QuoteAmount, s.QuoteStatus, s.QuoteForwarderID,
		s.QuoteExtra, s.QuoteTime,
		s.Metadata, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("shipmentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}

func (r *shipmentRepo) ListUnassigned(ctx context.Context) ([]domain.Shipment, error) {
	shipments := []domain.Shipment{}
	err := r.db.SelectContext(ctx, &shipments,
		"SELECT * FROM shipments WHERE forwarder_id IS NULL ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("shipmentRepo.ListUnassigned: %w", err)
	}
	return shipments, nil
}

func (r *shipmentRepo) ListByQuoteForwarder(ctx context.Context, forwarderID uuid.UUID) ([]domain.Shipment, error) {
	shipments := []domain.Shipment{}
	err := r.db.SelectContext(ctx, &shipments,
		"SELECT * FROM shipments WHERE quote_forwarder_id = $1 ORDER BY created_at DESC",
		forwarderID)
	if err != nil {
		return nil, fmt.Errorf("shipmentRepo.ListByQuoteForwarder: %w", err)
	}
	return shipments, nil
}

func (r *shipmentRepo) ListWonByForwarder(ctx context.Context, forwarderID uuid.UUID) ([]domain.Shipment, error) {
	shipments := []domain.Shipment{}
	err := r.db.SelectContext(ctx, &shipments,
		`SELECT * FROM shipments
		 WHERE status = $1 AND quote_status = $2
		   AND (forwarder_id = $3 OR quote_forwarder_id = $3)
		 ORDER BY created_at DESC`,
		domain.ShipmentStatusBooked, domain.QuoteStatusAccepted, forwarderID)
	if err != nil {
		return nil, fmt.Errorf("shipmentRepo.ListWonByForwarder: %w", err)
	}
	return shipments, nil
}

func (r *shipmentRepo) AssignDriver(ctx context.Context, shipmentID, driverID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE shipments SET assigned_driver_id = $1, updated_at = $2 WHERE id = $3",
		driverID, time.Now().UTC(), shipmentID)
	if err != nil {
		return fmt.Errorf("shipmentRepo.AssignDriver: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrShipmentNotFound
	}
	return nil
}
