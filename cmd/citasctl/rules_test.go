package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/citas-api/pkg/timespan"
)

func TestParseRules(t *testing.T) {
	input := `
reglas:
  - idPsicologo: 3
    desde: 2025-01-06
    hasta: 2025-03-28
    horaInicio: "09:00"
    horaFin: "12:00"
    dias: [lunes, miercoles]
  - idPsicologo: 4
    desde: 2025-01-06
    hasta: 2025-01-10
    horaInicio: "14:00"
    horaFin: "16:30"
`
	reqs, err := parseRules(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	assert.Equal(t, int64(3), reqs[0].PractitionerID)
	assert.Equal(t, "2025-03-28", reqs[0].To.String())
	assert.Equal(t, timespan.WeekdaysOf(time.Monday, time.Wednesday), reqs[0].Days)
	assert.Equal(t, timespan.AllWeekdays, reqs[1].Days)
	assert.Equal(t, "16:30", reqs[1].End.String())
}

func TestParseRulesErrors(t *testing.T) {
	cases := map[string]string{
		"unknown field": "reglas:\n  - idPsicologo: 3\n    color: azul\n",
		"bad date":      "reglas:\n  - idPsicologo: 3\n    desde: 06/01/2025\n",
		"bad weekday": "reglas:\n  - {idPsicologo: 3, desde: 2025-01-06, hasta: 2025-01-07, " +
			"horaInicio: \"09:00\", horaFin: \"10:00\", dias: [funday]}\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseRules(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}
