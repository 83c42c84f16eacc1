package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLotDTOValidate(t *testing.T) {
	dto := LotDTO{Name: "Pátio Central", Address: "Av. Paulista 1000", MaxCapacity: 50}
	require.NoError(t, dto.Validate())

	cases := []struct {
		name   string
		mutate func(*LotDTO)
		field  string
	}{
		{"blank name", func(d *LotDTO) { d.Name = "" }, "name"},
		{"name too long", func(d *LotDTO) { d.Name = strings.Repeat("x", 101) }, "name"},
		{"zero capacity", func(d *LotDTO) { d.MaxCapacity = 0 }, "max_capacity"},
		{"negative capacity", func(d *LotDTO) { d.MaxCapacity = -5 }, "max_capacity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dto := LotDTO{Name: "Pátio Central", MaxCapacity: 50}
			tc.mutate(&dto)
			err := dto.Validate()
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}

	// the limit counts characters, not bytes
	dto = LotDTO{Name: strings.Repeat("ã", 100), MaxCapacity: 50}
	require.NoError(t, dto.Validate())
}
