package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p9e.in/prodtrack/models"
)

func teamReport(id uuid.UUID, code string, days map[string]int) *models.ProductionReport {
	report := &models.ProductionReport{
		Scope: models.ReportScope{Level: models.ScopeTeam, ID: id, Code: code, Name: "Team " + code},
	}
	for date, output := range days {
		report.ByDay = append(report.ByDay, models.DailyBreakdown{
			Date:       date,
			Output:     output,
			Planned:    output,
			Efficiency: 100,
		})
		report.Totals.TotalOutput += output
		report.Totals.TotalPlanned += output
	}
	report.Totals.Efficiency = models.RoundPercent(report.Totals.TotalOutput, report.Totals.TotalPlanned)
	return report
}

func TestPivotComparisonZeroFillsMissingDays(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	teamA := uuid.New()
	teamB := uuid.New()

	reports := []*models.ProductionReport{
		teamReport(teamA, "T1", map[string]int{"2026-03-01": 40, "2026-03-02": 50}),
		teamReport(teamB, "T2", map[string]int{"2026-03-02": 30}),
	}

	cmp := PivotComparison(models.ScopeTeam, from, to, reports)

	require.NotNil(t, cmp)
	assert.Equal(t, models.ScopeTeam, cmp.EntityType)
	require.Len(t, cmp.Entities, 2)

	// Entities sort by output descending.
	assert.Equal(t, "T1", cmp.Entities[0].Code)
	assert.Equal(t, 90, cmp.Entities[0].Output)
	assert.Equal(t, "T2", cmp.Entities[1].Code)

	// Every day of the range appears, absent entities zero-filled.
	require.Len(t, cmp.Daily, 3)
	assert.Equal(t, "2026-03-01", cmp.Daily[0].Key)
	assert.Equal(t, 40, cmp.Daily[0].Values[teamA].Output)
	assert.Equal(t, 0, cmp.Daily[0].Values[teamB].Output)
	assert.Equal(t, 40, cmp.Daily[0].Total)

	assert.Equal(t, "2026-03-02", cmp.Daily[1].Key)
	assert.Equal(t, 50, cmp.Daily[1].Values[teamA].Output)
	assert.Equal(t, 30, cmp.Daily[1].Values[teamB].Output)
	assert.Equal(t, 80, cmp.Daily[1].Total)

	assert.Equal(t, "2026-03-03", cmp.Daily[2].Key)
	assert.Equal(t, 0, cmp.Daily[2].Total)
	require.Contains(t, cmp.Daily[2].Values, teamA)
	require.Contains(t, cmp.Daily[2].Values, teamB)
}

func TestPivotComparisonProducts(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	teamA := uuid.New()
	teamB := uuid.New()
	bagID := uuid.New()
	otherBagID := uuid.New()

	reportA := teamReport(teamA, "T1", nil)
	reportA.ByProduct = []models.ProductBreakdown{
		{HandBagID: bagID, Code: "HB-A", Output: 25},
		{HandBagID: otherBagID, Code: "HB-B", Output: 5},
	}
	reportB := teamReport(teamB, "T2", nil)
	reportB.ByProduct = []models.ProductBreakdown{
		{HandBagID: bagID, Code: "HB-A", Output: 10},
	}

	cmp := PivotComparison(models.ScopeTeam, from, from, []*models.ProductionReport{reportA, reportB})

	require.Len(t, cmp.ByProduct, 2)
	assert.Equal(t, "HB-A", cmp.ByProduct[0].Label)
	assert.Equal(t, 35, cmp.ByProduct[0].Total)
	assert.Equal(t, 25, cmp.ByProduct[0].Values[teamA].Output)
	assert.Equal(t, 10, cmp.ByProduct[0].Values[teamB].Output)

	// HB-B exists only for team A; team B is zero-filled.
	assert.Equal(t, "HB-B", cmp.ByProduct[1].Label)
	assert.Equal(t, 0, cmp.ByProduct[1].Values[teamB].Output)
}

func TestCompareRejectsBadInput(t *testing.T) {
	engine := NewComparisonEngine()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	_, err := engine.Compare(models.ScopeFactory, []uuid.UUID{uuid.New(), uuid.New()}, from, to)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindInvalidInput, models.KindOf(err))

	_, err = engine.Compare(models.ScopeTeam, []uuid.UUID{uuid.New()}, from, to)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindInvalidInput, models.KindOf(err))

	dup := uuid.New()
	_, err = engine.Compare(models.ScopeTeam, []uuid.UUID{dup, dup}, from, to)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindInvalidInput, models.KindOf(err))

	_, err = engine.Compare(models.ScopeTeam, []uuid.UUID{uuid.New(), uuid.New()}, to, from)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindInvalidInput, models.KindOf(err))
}
