package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetHourlyDataRecomputesTotal(t *testing.T) {
	entry := &ProductionEntry{}

	require.NoError(t, entry.SetHourlyData(map[string]int{
		"07:30-08:30": 4,
		"08:30-09:30": 6,
	}))
	assert.Equal(t, 10, entry.TotalOutput)

	got := entry.GetHourlyData()
	assert.Equal(t, 4, got["07:30-08:30"])
	assert.Equal(t, 6, got["08:30-09:30"])
}

func TestGetHourlyDataEmptyColumn(t *testing.T) {
	entry := &ProductionEntry{}
	got := entry.GetHourlyData()
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMergeHourlyPatch(t *testing.T) {
	existing := map[string]int{
		"07:30-08:30": 4,
		"08:30-09:30": 6,
	}
	patch := map[string]int{
		"08:30-09:30": 9,
		"09:30-10:30": 2,
	}

	merged := MergeHourlyPatch(existing, patch)

	assert.Equal(t, 4, merged["07:30-08:30"])
	assert.Equal(t, 9, merged["08:30-09:30"])
	assert.Equal(t, 2, merged["09:30-10:30"])
	// Inputs are never mutated.
	assert.Equal(t, 6, existing["08:30-09:30"])
}

func TestSameCombination(t *testing.T) {
	userID := uuid.New()
	bagID := uuid.New()
	colorID := uuid.New()
	processID := uuid.New()

	entry := &ProductionEntry{
		UserID:     userID,
		HandBagID:  bagID,
		BagColorID: colorID,
		ProcessID:  processID,
	}

	assert.True(t, entry.SameCombination(userID, bagID, colorID, processID))
	assert.False(t, entry.SameCombination(uuid.New(), bagID, colorID, processID))
	assert.False(t, entry.SameCombination(userID, bagID, uuid.New(), processID))
}

func TestIssuesRoundTrip(t *testing.T) {
	entry := &ProductionEntry{}
	want := []ProductionIssue{
		{Type: IssueWaitingMaterials, Hour: 2, Impact: 40, Description: "leather delivery late"},
		{Type: IssueQuality, Hour: 5, Impact: 10},
	}

	require.NoError(t, entry.SetIssues(want))
	assert.Equal(t, want, entry.GetIssues())
}

func TestValidateIssues(t *testing.T) {
	ok := []ProductionIssue{{Type: IssueLate, Hour: 0, Impact: 100}}
	assert.NoError(t, ValidateIssues(ok))

	badImpact := []ProductionIssue{{Type: IssueLate, Hour: 0, Impact: 101}}
	err := ValidateIssues(badImpact)
	require.Error(t, err)
	assert.Equal(t, ErrKindInvalidInput, KindOf(err))

	badHour := []ProductionIssue{{Type: IssueLate, Hour: -1, Impact: 10}}
	assert.Error(t, ValidateIssues(badHour))

	badType := []ProductionIssue{{Type: "BROKEN_NEEDLE", Hour: 1, Impact: 10}}
	assert.Error(t, ValidateIssues(badType))
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 150, RoundPercent(45, 30))
	assert.Equal(t, 200, RoundPercent(10, 5))
	assert.Equal(t, 0, RoundPercent(10, 0))
	assert.Equal(t, 0, RoundPercent(0, 10))
	assert.Equal(t, 67, RoundPercent(2, 3))
	assert.Equal(t, 33, RoundPercent(1, 3))
}
