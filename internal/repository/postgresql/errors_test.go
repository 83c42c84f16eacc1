package postgresql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
	"github.com/deaffx/mottu-yard-devops/internal/repository"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failDriver fails every statement with stmtErr, standing in for the pgx
// stdlib driver surfacing a constraint violation.
var stmtErr error

type failDriver struct{}

func (failDriver) Open(string) (driver.Conn, error) { return failConn{}, nil }

type failConn struct{}

func (failConn) Prepare(string) (driver.Stmt, error) { return failStmt{}, nil }
func (failConn) Close() error                        { return nil }
func (failConn) Begin() (driver.Tx, error)           { return nil, errors.New("transactions unsupported") }

type failStmt struct{}

func (failStmt) Close() error                               { return nil }
func (failStmt) NumInput() int                              { return -1 }
func (failStmt) Exec([]driver.Value) (driver.Result, error) { return nil, stmtErr }
func (failStmt) Query([]driver.Value) (driver.Rows, error)  { return nil, stmtErr }

func init() {
	sql.Register("failpg", failDriver{})
}

func openFailing(t *testing.T, err error) *sql.DB {
	t.Helper()
	stmtErr = err
	db, openErr := sql.Open("failpg", "")
	require.NoError(t, openErr)
	t.Cleanup(func() { db.Close() })
	return db
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code, Message: "violates constraint", Severity: "ERROR"}
}

func TestDeleteVehicleMapsForeignKeyViolation(t *testing.T) {
	repo := NewPgVehicleRepository(openFailing(t, pgError(pgerrcode.ForeignKeyViolation)))

	err := repo.DeleteByID(context.Background(), 1)
	require.ErrorIs(t, err, repository.ErrReferenced)
}

func TestDeleteVehiclePassesThroughOtherErrors(t *testing.T) {
	repo := NewPgVehicleRepository(openFailing(t, errors.New("io timeout")))

	err := repo.DeleteByID(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrReferenced)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateVehicleMapsUniqueViolation(t *testing.T) {
	repo := NewPgVehicleRepository(openFailing(t, pgError(pgerrcode.UniqueViolation)))

	v := &domain.Vehicle{
		Model: "CG 160 Titan", Plate: "ABC1D23", Brand: "Honda",
		ManufactureYear: 2023, Status: domain.StatusPendingRegularization,
		CurrentLot: domain.Lot{ID: 1},
	}
	_, err := repo.Create(context.Background(), v)
	require.ErrorIs(t, err, repository.ErrDuplicateEntry)
	assert.Contains(t, err.Error(), "ABC1D23")
}

func TestUpdateVehicleMapsUniqueViolation(t *testing.T) {
	repo := NewPgVehicleRepository(openFailing(t, pgError(pgerrcode.UniqueViolation)))

	v := &domain.Vehicle{
		ID: 7, Model: "CG 160 Titan", Plate: "ABC1D23", Brand: "Honda",
		ManufactureYear: 2023, Status: domain.StatusPendingRegularization,
		CurrentLot: domain.Lot{ID: 1},
	}
	_, err := repo.Update(context.Background(), v)
	require.ErrorIs(t, err, repository.ErrDuplicateEntry)
}

func TestDeleteLotMapsForeignKeyViolation(t *testing.T) {
	repo := NewPgLotRepository(openFailing(t, pgError(pgerrcode.ForeignKeyViolation)))

	err := repo.DeleteByID(context.Background(), 1)
	require.ErrorIs(t, err, repository.ErrReferenced)
}

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	repo := NewPgUserRepository(openFailing(t, pgError(pgerrcode.UniqueViolation)))

	_, err := repo.Create(context.Background(), &domain.User{Username: "carla", Password: "hash", Role: "operator"})
	require.ErrorIs(t, err, repository.ErrDuplicateEntry)
}

func TestCreateMaintenanceMapsForeignKeyViolation(t *testing.T) {
	repo := NewPgMaintenanceRepository(openFailing(t, pgError(pgerrcode.ForeignKeyViolation)))

	_, err := repo.Create(context.Background(), &domain.MaintenanceRecord{VehicleID: 42, Description: "brakes"})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestViolationHelpers(t *testing.T) {
	unique := pgError(pgerrcode.UniqueViolation)
	fk := pgError(pgerrcode.ForeignKeyViolation)

	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", unique)))
	assert.False(t, isUniqueViolation(fk))
	assert.False(t, isUniqueViolation(errors.New("io timeout")))

	assert.True(t, isForeignKeyViolation(fk))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("wrapped: %w", fk)))
	assert.False(t, isForeignKeyViolation(unique))
	assert.False(t, isForeignKeyViolation(nil))
}
