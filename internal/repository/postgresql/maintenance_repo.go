package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
	"github.com/deaffx/mottu-yard-devops/internal/repository"
)

type pgMaintenanceRepository struct {
	db *sql.DB
}

func NewPgMaintenanceRepository(db *sql.DB) repository.MaintenanceRepository {
	return &pgMaintenanceRepository{db: db}
}

func (r *pgMaintenanceRepository) Create(ctx context.Context, rec *domain.MaintenanceRecord) (*domain.MaintenanceRecord, error) {
	query := `INSERT INTO maintenance_records (vehicle_id, description) VALUES ($1, $2)
	           RETURNING id, opened_at`
	err := r.db.QueryRowContext(ctx, query, rec.VehicleID, rec.Description).Scan(&rec.ID, &rec.OpenedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: vehicle %d", repository.ErrNotFound, rec.VehicleID)
		}
		return nil, fmt.Errorf("MaintenanceRepository.Create: %w", err)
	}
	return rec, nil
}

func (r *pgMaintenanceRepository) FindByVehicleID(ctx context.Context, vehicleID int) ([]domain.MaintenanceRecord, error) {
	query := `SELECT id, vehicle_id, description, opened_at, closed_at
	           FROM maintenance_records WHERE vehicle_id = $1 ORDER BY opened_at DESC`
	rows, err := r.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("MaintenanceRepository.FindByVehicleID: %w", err)
	}
	defer rows.Close()

	var records []domain.MaintenanceRecord
	for rows.Next() {
		var rec domain.MaintenanceRecord
		if err := rows.Scan(&rec.ID, &rec.VehicleID, &rec.Description, &rec.OpenedAt, &rec.ClosedAt); err != nil {
			return nil, fmt.Errorf("MaintenanceRepository.FindByVehicleID scan: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
