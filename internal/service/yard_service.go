package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
	"github.com/deaffx/mottu-yard-devops/internal/repository"

	"go.uber.org/zap"
	"gopkg.in/guregu/null.v4"
)

// OccupancyNotifier receives lot occupancy updates after vehicle mutations.
// The websocket manager implements it.
type OccupancyNotifier interface {
	BroadcastOccupancy(n domain.OccupancyNotification)
}

// YardService enforces the assignment rules: plate uniqueness, lot capacity
// and referential safety. It keeps no state of its own; every check reads the
// current store. Capacity is check-then-act without a transaction, so two
// concurrent assignments can both pass the check; the plate unique index is
// the only constraint the database closes atomically.
type YardService struct {
	vehicleRepo repository.VehicleRepository
	lotRepo     repository.LotRepository
	maintRepo   repository.MaintenanceRepository
	notifier    OccupancyNotifier
	log         *zap.SugaredLogger
}

func NewYardService(
	vehicleRepo repository.VehicleRepository,
	lotRepo repository.LotRepository,
	maintRepo repository.MaintenanceRepository,
	notifier OccupancyNotifier,
	log *zap.SugaredLogger,
) *YardService {
	return &YardService{
		vehicleRepo: vehicleRepo,
		lotRepo:     lotRepo,
		maintRepo:   maintRepo,
		notifier:    notifier,
		log:         log,
	}
}

// Occupancy counts the vehicles currently assigned to the lot. Always
// recomputed from the store, never cached.
func (s *YardService) Occupancy(ctx context.Context, lotID int) (int, error) {
	return s.vehicleRepo.CountByLotID(ctx, lotID)
}

// HasCapacity reports whether the lot can take one more vehicle, returning
// the current occupancy for error payloads.
func (s *YardService) HasCapacity(ctx context.Context, lot *domain.Lot) (bool, int, error) {
	occ, err := s.Occupancy(ctx, lot.ID)
	if err != nil {
		return false, 0, fmt.Errorf("computing occupancy for lot %d: %w", lot.ID, err)
	}
	return occ < lot.MaxCapacity, occ, nil
}

func (s *YardService) resolveLot(ctx context.Context, lotID int) (*domain.Lot, error) {
	lot, err := s.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: lot %d", repository.ErrNotFound, lotID)
		}
		return nil, fmt.Errorf("resolving lot %d: %w", lotID, err)
	}
	return lot, nil
}

// checkPlateFree rejects a plate held by any vehicle other than excludeID.
// Pass excludeID 0 for creations.
func (s *YardService) checkPlateFree(ctx context.Context, plate string, excludeID int) error {
	existing, err := s.vehicleRepo.FindByPlate(ctx, plate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("checking plate '%s': %w", plate, err)
	}
	if existing.ID != excludeID {
		return fmt.Errorf("%w: %s", ErrDuplicatePlate, plate)
	}
	return nil
}

func (s *YardService) checkCapacity(ctx context.Context, lot *domain.Lot) error {
	ok, occ, err := s.HasCapacity(ctx, lot)
	if err != nil {
		return err
	}
	if !ok {
		return &LotFullError{LotID: lot.ID, Occupancy: occ, Capacity: lot.MaxCapacity}
	}
	return nil
}

// CreateVehicle validates the candidate, resolves its lot, enforces plate
// uniqueness and lot capacity, then persists. All checks run before the
// write.
func (s *YardService) CreateVehicle(ctx context.Context, dto domain.VehicleDTO) (*domain.Vehicle, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	lot, err := s.resolveLot(ctx, dto.CurrentLotID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPlateFree(ctx, dto.Plate, 0); err != nil {
		return nil, err
	}
	if err := s.checkCapacity(ctx, lot); err != nil {
		return nil, err
	}

	v := &domain.Vehicle{
		Model:           dto.Model,
		Plate:           dto.Plate,
		Brand:           dto.Brand,
		ManufactureYear: dto.ManufactureYear,
		Color:           null.NewString(dto.Color, dto.Color != ""),
		Mileage:         dto.Mileage,
		Status:          dto.StatusOrDefault(),
		CurrentLot:      *lot,
	}
	created, err := s.vehicleRepo.Create(ctx, v)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// lost the race; the unique index is the backstop
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlate, dto.Plate)
		}
		return nil, err
	}
	s.log.Infow("vehicle created", "id", created.ID, "plate", created.Plate, "lot_id", lot.ID)
	s.notifyOccupancy(ctx, lot)
	return created, nil
}

// UpdateVehicle revalidates the record and persists it under the same id.
// Capacity is checked only when the assignment moves the vehicle to a
// different lot; re-saving into an unchanged, full lot is a valid no-op.
func (s *YardService) UpdateVehicle(ctx context.Context, id int, dto domain.VehicleDTO) (*domain.Vehicle, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	original, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: vehicle %d", repository.ErrNotFound, id)
		}
		return nil, fmt.Errorf("loading vehicle %d: %w", id, err)
	}
	lot, err := s.resolveLot(ctx, dto.CurrentLotID)
	if err != nil {
		return nil, err
	}
	if err := s.checkPlateFree(ctx, dto.Plate, id); err != nil {
		return nil, err
	}
	lotChanged := original.CurrentLot.ID != lot.ID
	if lotChanged {
		if err := s.checkCapacity(ctx, lot); err != nil {
			return nil, err
		}
	}

	v := &domain.Vehicle{
		ID:              id,
		Model:           dto.Model,
		Plate:           dto.Plate,
		Brand:           dto.Brand,
		ManufactureYear: dto.ManufactureYear,
		Color:           null.NewString(dto.Color, dto.Color != ""),
		Mileage:         dto.Mileage,
		Status:          dto.StatusOrDefault(),
		CurrentLot:      *lot,
		CreatedAt:       original.CreatedAt,
	}
	updated, err := s.vehicleRepo.Update(ctx, v)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlate, dto.Plate)
		}
		return nil, err
	}
	s.log.Infow("vehicle updated", "id", id, "plate", updated.Plate, "lot_id", lot.ID, "lot_changed", lotChanged)
	if lotChanged {
		s.notifyOccupancy(ctx, &original.CurrentLot)
	}
	s.notifyOccupancy(ctx, lot)
	return updated, nil
}

// MoveVehicle reassigns a vehicle to another lot, leaving every other field
// untouched. Used by gate ingestion.
func (s *YardService) MoveVehicle(ctx context.Context, id, lotID int) (*domain.Vehicle, error) {
	original, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: vehicle %d", repository.ErrNotFound, id)
		}
		return nil, fmt.Errorf("loading vehicle %d: %w", id, err)
	}
	lot, err := s.resolveLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if original.CurrentLot.ID == lot.ID {
		return original, nil
	}
	if err := s.checkCapacity(ctx, lot); err != nil {
		return nil, err
	}

	from := original.CurrentLot
	original.CurrentLot = *lot
	updated, err := s.vehicleRepo.Update(ctx, original)
	if err != nil {
		return nil, err
	}
	s.log.Infow("vehicle moved", "id", id, "plate", updated.Plate, "from_lot", from.ID, "to_lot", lot.ID)
	s.notifyOccupancy(ctx, &from)
	s.notifyOccupancy(ctx, lot)
	return updated, nil
}

// DeleteVehicle removes the record unless dependent records still reference
// it. Store failures are translated into user-facing business errors.
func (s *YardService) DeleteVehicle(ctx context.Context, id int) error {
	v, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: vehicle %d", repository.ErrNotFound, id)
		}
		return &BusinessError{Message: "could not delete the vehicle, try again", Err: err}
	}
	if err := s.vehicleRepo.DeleteByID(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrReferenced):
			return &BusinessError{
				Message: "cannot delete this vehicle: it is referenced by a maintenance record",
				Err:     err,
			}
		case errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("%w: vehicle %d", repository.ErrNotFound, id)
		default:
			return &BusinessError{Message: "could not delete the vehicle, try again", Err: err}
		}
	}
	s.log.Infow("vehicle deleted", "id", id, "plate", v.Plate)
	s.notifyOccupancy(ctx, &v.CurrentLot)
	return nil
}

// --- vehicle queries, pass-through to the store ---

func (s *YardService) GetVehicle(ctx context.Context, id int) (*domain.Vehicle, error) {
	return s.vehicleRepo.FindByID(ctx, id)
}

func (s *YardService) GetVehicleByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	return s.vehicleRepo.FindByPlate(ctx, plate)
}

func (s *YardService) ListVehicles(ctx context.Context, offset, limit int) ([]domain.Vehicle, int64, error) {
	return s.vehicleRepo.FindAll(ctx, offset, limit)
}

func (s *YardService) SearchVehicles(ctx context.Context, term string, offset, limit int) ([]domain.Vehicle, int64, error) {
	return s.vehicleRepo.Search(ctx, term, offset, limit)
}

func (s *YardService) VehiclesByLot(ctx context.Context, lotID int) ([]domain.Vehicle, error) {
	if _, err := s.resolveLot(ctx, lotID); err != nil {
		return nil, err
	}
	return s.vehicleRepo.FindByLotID(ctx, lotID)
}

func (s *YardService) VehiclesByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.Vehicle, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status '%s'", status)}
	}
	return s.vehicleRepo.FindByStatus(ctx, status)
}

func (s *YardService) VehiclesByBrand(ctx context.Context, brand string) ([]domain.Vehicle, error) {
	return s.vehicleRepo.FindByBrand(ctx, brand)
}

func (s *YardService) VehiclesByModel(ctx context.Context, model string) ([]domain.Vehicle, error) {
	return s.vehicleRepo.FindByModel(ctx, model)
}

func (s *YardService) RecentVehicles(ctx context.Context, limit int) ([]domain.Vehicle, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.vehicleRepo.FindRecent(ctx, limit)
}

func (s *YardService) CountVehicles(ctx context.Context) (int64, error) {
	return s.vehicleRepo.Count(ctx)
}

func (s *YardService) CountVehiclesByStatus(ctx context.Context, status domain.VehicleStatus) (int64, error) {
	if !status.Valid() {
		return 0, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status '%s'", status)}
	}
	return s.vehicleRepo.CountByStatus(ctx, status)
}

// --- lot operations ---

func (s *YardService) CreateLot(ctx context.Context, dto domain.LotDTO) (*domain.Lot, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	lot := &domain.Lot{Name: dto.Name, Address: dto.Address, MaxCapacity: dto.MaxCapacity}
	return s.lotRepo.Create(ctx, lot)
}

func (s *YardService) UpdateLot(ctx context.Context, id int, dto domain.LotDTO) (*domain.Lot, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	lot, err := s.lotRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	lot.Name = dto.Name
	lot.Address = dto.Address
	lot.MaxCapacity = dto.MaxCapacity
	return s.lotRepo.Update(ctx, lot)
}

// DeleteLot refuses to remove a lot while vehicles are assigned to it; the
// database foreign key is the backstop for the same rule.
func (s *YardService) DeleteLot(ctx context.Context, id int) error {
	vehicles, err := s.vehicleRepo.FindByLotID(ctx, id)
	if err != nil {
		return fmt.Errorf("checking vehicles of lot %d: %w", id, err)
	}
	if len(vehicles) > 0 {
		return &BusinessError{
			Message: fmt.Sprintf("cannot delete lot %d: %d vehicle(s) are still assigned to it", id, len(vehicles)),
		}
	}
	if err := s.lotRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReferenced) {
			return &BusinessError{Message: "cannot delete this lot: vehicles are still assigned to it", Err: err}
		}
		return err
	}
	return nil
}

func (s *YardService) GetLot(ctx context.Context, id int) (*domain.Lot, error) {
	return s.lotRepo.FindByID(ctx, id)
}

func (s *YardService) ListLots(ctx context.Context) ([]domain.Lot, error) {
	return s.lotRepo.FindAll(ctx)
}

func (s *YardService) ListLotsWithOccupancy(ctx context.Context) ([]domain.LotOccupancy, error) {
	lots, err := s.lotRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.LotOccupancy, 0, len(lots))
	for _, lot := range lots {
		occ, err := s.Occupancy(ctx, lot.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, domain.LotOccupancy{Lot: lot, Occupancy: occ})
	}
	return result, nil
}

// --- maintenance records ---

func (s *YardService) OpenMaintenance(ctx context.Context, vehicleID int, dto domain.MaintenanceRecordDTO) (*domain.MaintenanceRecord, error) {
	if _, err := s.vehicleRepo.FindByID(ctx, vehicleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: vehicle %d", repository.ErrNotFound, vehicleID)
		}
		return nil, err
	}
	rec := &domain.MaintenanceRecord{VehicleID: vehicleID, Description: dto.Description}
	return s.maintRepo.Create(ctx, rec)
}

func (s *YardService) MaintenanceByVehicle(ctx context.Context, vehicleID int) ([]domain.MaintenanceRecord, error) {
	return s.maintRepo.FindByVehicleID(ctx, vehicleID)
}

func (s *YardService) notifyOccupancy(ctx context.Context, lot *domain.Lot) {
	if s.notifier == nil {
		return
	}
	occ, err := s.Occupancy(ctx, lot.ID)
	if err != nil {
		s.log.Warnw("occupancy broadcast skipped", "lot_id", lot.ID, "error", err)
		return
	}
	s.notifier.BroadcastOccupancy(domain.OccupancyNotification{
		LotID:       lot.ID,
		Occupancy:   occ,
		MaxCapacity: lot.MaxCapacity,
		Timestamp:   time.Now().UTC(),
	})
}
