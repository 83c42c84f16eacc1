package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
	"github.com/deaffx/mottu-yard-devops/internal/repository"
)

type pgVehicleRepository struct {
	db *sql.DB
}

func NewPgVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &pgVehicleRepository{db: db}
}

// vehicleColumns is the select list shared by every read; vehicles are always
// returned with their lot resolved.
const vehicleColumns = `v.id, v.model, v.plate, v.brand, v.manufacture_year, v.color, v.mileage, v.status,
	l.id, l.name, l.address, l.max_capacity, l.created_at, l.updated_at,
	v.created_at, v.updated_at`

const vehicleFrom = ` FROM vehicles v JOIN lots l ON l.id = v.current_lot_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := row.Scan(
		&v.ID, &v.Model, &v.Plate, &v.Brand, &v.ManufactureYear, &v.Color, &v.Mileage, &v.Status,
		&v.CurrentLot.ID, &v.CurrentLot.Name, &v.CurrentLot.Address, &v.CurrentLot.MaxCapacity,
		&v.CurrentLot.CreatedAt, &v.CurrentLot.UpdatedAt,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *pgVehicleRepository) queryVehicles(ctx context.Context, query string, args ...interface{}) ([]domain.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

func (r *pgVehicleRepository) Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	query := `INSERT INTO vehicles (model, plate, brand, manufacture_year, color, mileage, status, current_lot_id)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		v.Model, v.Plate, v.Brand, v.ManufactureYear, v.Color, v.Mileage, v.Status, v.CurrentLot.ID,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: plate '%s'", repository.ErrDuplicateEntry, v.Plate)
		}
		return nil, fmt.Errorf("VehicleRepository.Create: %w", err)
	}
	return v, nil
}

func (r *pgVehicleRepository) Update(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	query := `UPDATE vehicles
	           SET model = $1, plate = $2, brand = $3, manufacture_year = $4, color = $5,
	               mileage = $6, status = $7, current_lot_id = $8, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $9
	           RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		v.Model, v.Plate, v.Brand, v.ManufactureYear, v.Color, v.Mileage, v.Status, v.CurrentLot.ID, v.ID,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: plate '%s'", repository.ErrDuplicateEntry, v.Plate)
		}
		return nil, fmt.Errorf("VehicleRepository.Update: %w", err)
	}
	return v, nil
}

func (r *pgVehicleRepository) FindByID(ctx context.Context, id int) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` WHERE v.id = $1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByID: %w", err)
	}
	return v, nil
}

func (r *pgVehicleRepository) FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` WHERE v.plate = $1`
	v, err := scanVehicle(r.db.QueryRowContext(ctx, query, plate))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByPlate: %w", err)
	}
	return v, nil
}

func (r *pgVehicleRepository) FindAll(ctx context.Context, offset, limit int) ([]domain.Vehicle, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehicles`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("VehicleRepository.FindAll count: %w", err)
	}
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` ORDER BY v.id OFFSET $1 LIMIT $2`
	vehicles, err := r.queryVehicles(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("VehicleRepository.FindAll: %w", err)
	}
	return vehicles, total, nil
}

func (r *pgVehicleRepository) FindAllUnpaged(ctx context.Context) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` ORDER BY v.id`
	vehicles, err := r.queryVehicles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindAllUnpaged: %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepository) FindByLotID(ctx context.Context, lotID int) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` WHERE v.current_lot_id = $1 ORDER BY v.id`
	vehicles, err := r.queryVehicles(ctx, query, lotID)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindByLotID: %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepository) FindByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` WHERE v.status = $1 ORDER BY v.id`
	vehicles, err := r.queryVehicles(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindByStatus: %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepository) FindByBrand(ctx context.Context, brand string) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` WHERE v.brand ILIKE '%' || $1 || '%' ORDER BY v.id`
	vehicles, err := r.queryVehicles(ctx, query, brand)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindByBrand: %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepository) FindByModel(ctx context.Context, model string) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` WHERE v.model ILIKE '%' || $1 || '%' ORDER BY v.id`
	vehicles, err := r.queryVehicles(ctx, query, model)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindByModel: %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepository) Search(ctx context.Context, term string, offset, limit int) ([]domain.Vehicle, int64, error) {
	where := ` WHERE v.model ILIKE '%' || $1 || '%' OR v.brand ILIKE '%' || $1 || '%' OR v.plate ILIKE '%' || $1 || '%'`

	var total int64
	countQuery := `SELECT COUNT(*)` + vehicleFrom + where
	if err := r.db.QueryRowContext(ctx, countQuery, term).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("VehicleRepository.Search count: %w", err)
	}

	query := `SELECT ` + vehicleColumns + vehicleFrom + where + ` ORDER BY v.id OFFSET $2 LIMIT $3`
	vehicles, err := r.queryVehicles(ctx, query, term, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("VehicleRepository.Search: %w", err)
	}
	return vehicles, total, nil
}

func (r *pgVehicleRepository) FindRecent(ctx context.Context, limit int) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + vehicleFrom + ` ORDER BY v.created_at DESC LIMIT $1`
	vehicles, err := r.queryVehicles(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindRecent: %w", err)
	}
	return vehicles, nil
}

func (r *pgVehicleRepository) CountByLotID(ctx context.Context, lotID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM vehicles WHERE current_lot_id = $1`
	if err := r.db.QueryRowContext(ctx, query, lotID).Scan(&count); err != nil {
		return 0, fmt.Errorf("VehicleRepository.CountByLotID: %w", err)
	}
	return count, nil
}

func (r *pgVehicleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehicles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("VehicleRepository.Count: %w", err)
	}
	return count, nil
}

func (r *pgVehicleRepository) CountByStatus(ctx context.Context, status domain.VehicleStatus) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM vehicles WHERE status = $1`
	if err := r.db.QueryRowContext(ctx, query, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("VehicleRepository.CountByStatus: %w", err)
	}
	return count, nil
}

func (r *pgVehicleRepository) DeleteByID(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: vehicle %d", repository.ErrReferenced, id)
		}
		return fmt.Errorf("VehicleRepository.DeleteByID: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("VehicleRepository.DeleteByID: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
