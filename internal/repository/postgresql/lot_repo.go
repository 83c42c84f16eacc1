package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
	"github.com/deaffx/mottu-yard-devops/internal/repository"
)

type pgLotRepository struct {
	db *sql.DB
}

func NewPgLotRepository(db *sql.DB) repository.LotRepository {
	return &pgLotRepository{db: db}
}

func (r *pgLotRepository) Create(ctx context.Context, lot *domain.Lot) (*domain.Lot, error) {
	query := `INSERT INTO lots (name, address, max_capacity) VALUES ($1, $2, $3)
	           RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, lot.Name, lot.Address, lot.MaxCapacity).
		Scan(&lot.ID, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: lot name '%s'", repository.ErrDuplicateEntry, lot.Name)
		}
		return nil, fmt.Errorf("LotRepository.Create: %w", err)
	}
	return lot, nil
}

func (r *pgLotRepository) Update(ctx context.Context, lot *domain.Lot) (*domain.Lot, error) {
	query := `UPDATE lots SET name = $1, address = $2, max_capacity = $3, updated_at = CURRENT_TIMESTAMP
	           WHERE id = $4 RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, lot.Name, lot.Address, lot.MaxCapacity, lot.ID).
		Scan(&lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: lot name '%s'", repository.ErrDuplicateEntry, lot.Name)
		}
		return nil, fmt.Errorf("LotRepository.Update: %w", err)
	}
	return lot, nil
}

func (r *pgLotRepository) FindByID(ctx context.Context, id int) (*domain.Lot, error) {
	lot := &domain.Lot{}
	query := `SELECT id, name, address, max_capacity, created_at, updated_at FROM lots WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&lot.ID, &lot.Name, &lot.Address, &lot.MaxCapacity, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("LotRepository.FindByID: %w", err)
	}
	return lot, nil
}

func (r *pgLotRepository) FindAll(ctx context.Context) ([]domain.Lot, error) {
	query := `SELECT id, name, address, max_capacity, created_at, updated_at FROM lots ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("LotRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var lots []domain.Lot
	for rows.Next() {
		var lot domain.Lot
		if err := rows.Scan(&lot.ID, &lot.Name, &lot.Address, &lot.MaxCapacity, &lot.CreatedAt, &lot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("LotRepository.FindAll scan: %w", err)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

func (r *pgLotRepository) DeleteByID(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lots WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: lot %d", repository.ErrReferenced, id)
		}
		return fmt.Errorf("LotRepository.DeleteByID: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("LotRepository.DeleteByID: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
