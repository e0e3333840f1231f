package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p9e.in/prodtrack/models"
)

func TestValidateAttendance(t *testing.T) {
	for _, status := range []models.AttendanceStatus{
		models.AttendancePresent,
		models.AttendanceAbsent,
		models.AttendanceLate,
		models.AttendanceEarlyLeave,
	} {
		assert.NoError(t, validateAttendance(status))
	}

	err := validateAttendance("VACATION")
	require.Error(t, err)
	assert.Equal(t, models.ErrKindInvalidInput, models.KindOf(err))
}

func TestHourlyPatchRecomputesTotal(t *testing.T) {
	entry := &models.ProductionEntry{}
	require.NoError(t, entry.SetHourlyData(map[string]int{
		"07:30-08:30": 4,
		"08:30-09:30": 6,
	}))
	require.Equal(t, 10, entry.TotalOutput)

	merged := models.MergeHourlyPatch(entry.GetHourlyData(), map[string]int{
		"08:30-09:30": 9,
	})
	require.NoError(t, entry.SetHourlyData(merged))

	assert.Equal(t, 13, entry.TotalOutput)
	assert.Equal(t, 4, entry.GetHourlyData()["07:30-08:30"])
	assert.Equal(t, 9, entry.GetHourlyData()["08:30-09:30"])
}
