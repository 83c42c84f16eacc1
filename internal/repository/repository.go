package repository

import (
	"context"
	"errors"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")

// ErrReferenced is returned by DeleteByID when the row is still referenced by
// dependent records (restrictive foreign key).
var ErrReferenced = errors.New("record is referenced by dependent records")

type VehicleRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error)
	Update(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error)
	FindByID(ctx context.Context, id int) (*domain.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
	FindAll(ctx context.Context, offset, limit int) ([]domain.Vehicle, int64, error)
	FindAllUnpaged(ctx context.Context) ([]domain.Vehicle, error)
	FindByLotID(ctx context.Context, lotID int) ([]domain.Vehicle, error)
	FindByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.Vehicle, error)
	FindByBrand(ctx context.Context, brand string) ([]domain.Vehicle, error)
	FindByModel(ctx context.Context, model string) ([]domain.Vehicle, error)
	// Search matches the term as a case-insensitive substring of model, brand
	// or plate.
	Search(ctx context.Context, term string, offset, limit int) ([]domain.Vehicle, int64, error)
	FindRecent(ctx context.Context, limit int) ([]domain.Vehicle, error)
	CountByLotID(ctx context.Context, lotID int) (int, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.VehicleStatus) (int64, error)
	DeleteByID(ctx context.Context, id int) error
}

type LotRepository interface {
	Create(ctx context.Context, lot *domain.Lot) (*domain.Lot, error)
	Update(ctx context.Context, lot *domain.Lot) (*domain.Lot, error)
	FindByID(ctx context.Context, id int) (*domain.Lot, error)
	FindAll(ctx context.Context) ([]domain.Lot, error)
	DeleteByID(ctx context.Context, id int) error
}

type MaintenanceRepository interface {
	Create(ctx context.Context, rec *domain.MaintenanceRecord) (*domain.MaintenanceRecord, error)
	FindByVehicleID(ctx context.Context, vehicleID int) ([]domain.MaintenanceRecord, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}
