package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPlate(t *testing.T) {
	valid := []string{"ABC1D23", "ABC1234", "XYZ9K99", "AAA0000"}
	for _, plate := range valid {
		assert.True(t, ValidPlate(plate), "expected %s to be valid", plate)
	}

	invalid := []string{"AB1234", "ABCD123", "abc1234", "ABC12345", "ABC1D2", "1BC1234", ""}
	for _, plate := range invalid {
		assert.False(t, ValidPlate(plate), "expected %s to be invalid", plate)
	}
}

func validDTO() VehicleDTO {
	return VehicleDTO{
		Model:           "CG 160 Titan",
		Plate:           "ABC1D23",
		Brand:           "Honda",
		ManufactureYear: 2023,
		Color:           "red",
		Mileage:         1200,
		CurrentLotID:    1,
	}
}

func TestVehicleDTOValidate(t *testing.T) {
	dto := validDTO()
	require.NoError(t, dto.Validate())

	cases := []struct {
		name   string
		mutate func(*VehicleDTO)
		field  string
	}{
		{"blank model", func(d *VehicleDTO) { d.Model = "  " }, "model"},
		{"model too long", func(d *VehicleDTO) { d.Model = strings.Repeat("x", 51) }, "model"},
		{"bad plate", func(d *VehicleDTO) { d.Plate = "ABCD123" }, "plate"},
		{"blank brand", func(d *VehicleDTO) { d.Brand = "" }, "brand"},
		{"brand too long", func(d *VehicleDTO) { d.Brand = strings.Repeat("x", 31) }, "brand"},
		{"zero year", func(d *VehicleDTO) { d.ManufactureYear = 0 }, "manufacture_year"},
		{"negative year", func(d *VehicleDTO) { d.ManufactureYear = -1 }, "manufacture_year"},
		{"color too long", func(d *VehicleDTO) { d.Color = strings.Repeat("x", 21) }, "color"},
		{"negative mileage", func(d *VehicleDTO) { d.Mileage = -1 }, "mileage"},
		{"unknown status", func(d *VehicleDTO) { d.Status = "SOLD" }, "status"},
		{"missing lot", func(d *VehicleDTO) { d.CurrentLotID = 0 }, "current_lot_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dto := validDTO()
			tc.mutate(&dto)
			err := dto.Validate()
			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestVehicleDTOValidateCountsCharacters(t *testing.T) {
	// limits count characters, not bytes; accented names must not be
	// rejected early
	dto := validDTO()
	dto.Brand = "Ciclomotores São João Ltda ABC" // 30 chars, 32 bytes
	require.NoError(t, dto.Validate())

	dto = validDTO()
	dto.Model = strings.Repeat("ã", 50)
	require.NoError(t, dto.Validate())

	dto.Model = strings.Repeat("ã", 51)
	var vErr *ValidationError
	require.ErrorAs(t, dto.Validate(), &vErr)
	assert.Equal(t, "model", vErr.Field)

	dto = validDTO()
	dto.Color = strings.Repeat("é", 20)
	require.NoError(t, dto.Validate())
}

func TestStatusOrDefault(t *testing.T) {
	dto := validDTO()
	assert.Equal(t, StatusPendingRegularization, dto.StatusOrDefault())

	dto.Status = string(StatusInWorkshop)
	assert.Equal(t, StatusInWorkshop, dto.StatusOrDefault())
}

func TestVehicleStatusValid(t *testing.T) {
	for _, s := range []VehicleStatus{StatusPendingRegularization, StatusPendingMaintenance, StatusInWorkshop, StatusAvailableForRent} {
		assert.True(t, s.Valid())
	}
	assert.False(t, VehicleStatus("SCRAPPED").Valid())
	assert.False(t, VehicleStatus("").Valid())
}
