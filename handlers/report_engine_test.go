package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p9e.in/prodtrack/models"
)

func testScope() models.ReportScope {
	return models.ReportScope{
		Level: models.ScopeGroup,
		ID:    uuid.New(),
		Code:  "G1",
		Name:  "Group 1",
	}
}

func testEntry(t *testing.T, formID uuid.UUID, planned int, hourly map[string]int) models.ProductionEntry {
	t.Helper()
	entry := models.ProductionEntry{
		ID:               uuid.New(),
		FormID:           formID,
		UserID:           uuid.New(),
		HandBagID:        uuid.New(),
		BagColorID:       uuid.New(),
		ProcessID:        uuid.New(),
		PlannedOutput:    planned,
		AttendanceStatus: models.AttendancePresent,
		QualityScore:     100,
	}
	require.NoError(t, entry.SetHourlyData(hourly))
	return entry
}

func TestBuildTotalsEfficiency(t *testing.T) {
	formID := uuid.New()
	forms := []models.DigitalForm{{ID: formID}}
	entries := []models.ProductionEntry{
		testEntry(t, formID, 10, map[string]int{"07:30-08:30": 15}),
		testEntry(t, formID, 20, map[string]int{"07:30-08:30": 30}),
	}

	totals := BuildTotals(forms, entries)

	assert.Equal(t, 1, totals.FormCount)
	assert.Equal(t, 2, totals.EntryCount)
	assert.Equal(t, 45, totals.TotalOutput)
	assert.Equal(t, 30, totals.TotalPlanned)
	assert.Equal(t, 150, totals.Efficiency)
	assert.Equal(t, 100, totals.AverageQuality)
}

func TestBuildTotalsSingleEntry(t *testing.T) {
	formID := uuid.New()
	entries := []models.ProductionEntry{
		testEntry(t, formID, 5, map[string]int{"07:30-08:30": 10}),
	}

	totals := BuildTotals([]models.DigitalForm{{ID: formID}}, entries)

	assert.Equal(t, 10, totals.TotalOutput)
	assert.Equal(t, 5, totals.TotalPlanned)
	assert.Equal(t, 200, totals.Efficiency)
}

func TestBuildTotalsZeroPlanned(t *testing.T) {
	formID := uuid.New()
	entries := []models.ProductionEntry{
		testEntry(t, formID, 0, map[string]int{"07:30-08:30": 10}),
	}

	totals := BuildTotals([]models.DigitalForm{{ID: formID}}, entries)
	assert.Equal(t, 0, totals.Efficiency)
}

func TestBuildReportEmptyScope(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)

	report := BuildReport(testScope(), from, to, nil, nil, models.AllReportOptions())

	require.NotNil(t, report)
	assert.Equal(t, 0, report.Totals.FormCount)
	assert.Equal(t, 0, report.Totals.TotalOutput)
	assert.Equal(t, 0, report.Totals.Efficiency)
	assert.NotNil(t, report.ByProduct)
	assert.Empty(t, report.ByProduct)
	assert.NotNil(t, report.ByDay)
	assert.Empty(t, report.ByDay)
	assert.NotNil(t, report.Issues)
	assert.Empty(t, report.Issues)
	assert.Equal(t, 0, report.Attendance.PercentPresent)
}

func TestBuildAttendance(t *testing.T) {
	formID := uuid.New()
	present := testEntry(t, formID, 0, nil)
	late := testEntry(t, formID, 0, nil)
	late.AttendanceStatus = models.AttendanceLate
	absent := testEntry(t, formID, 0, nil)
	absent.AttendanceStatus = models.AttendanceAbsent

	summary := BuildAttendance([]models.ProductionEntry{present, late, absent, testEntry(t, formID, 0, nil)})

	assert.Equal(t, 2, summary.ByStatus[models.AttendancePresent])
	assert.Equal(t, 1, summary.ByStatus[models.AttendanceLate])
	assert.Equal(t, 1, summary.ByStatus[models.AttendanceAbsent])
	assert.Equal(t, 50, summary.PercentPresent)
}

func TestBuildProductBreakdown(t *testing.T) {
	formID := uuid.New()
	bagA := &models.HandBag{ID: uuid.New(), Code: "HB-A", Name: "Tote"}
	bagB := &models.HandBag{ID: uuid.New(), Code: "HB-B", Name: "Clutch"}

	e1 := testEntry(t, formID, 0, map[string]int{"07:30-08:30": 30})
	e1.HandBagID, e1.HandBag = bagA.ID, bagA
	e2 := testEntry(t, formID, 0, map[string]int{"07:30-08:30": 10})
	e2.HandBagID, e2.HandBag = bagB.ID, bagB
	e3 := testEntry(t, formID, 0, map[string]int{"07:30-08:30": 10})
	e3.HandBagID, e3.HandBag = bagA.ID, bagA

	rows := BuildProductBreakdown([]models.ProductionEntry{e1, e2, e3})

	require.Len(t, rows, 2)
	assert.Equal(t, "HB-A", rows[0].Code)
	assert.Equal(t, 40, rows[0].Output)
	assert.Equal(t, 2, rows[0].EntryCount)
	assert.Equal(t, 80, rows[0].Percent)
	assert.Equal(t, "HB-B", rows[1].Code)
	assert.Equal(t, 20, rows[1].Percent)
}

func TestBuildColorBreakdown(t *testing.T) {
	formID := uuid.New()
	black := &models.BagColor{ID: uuid.New(), Code: "BLACK", Name: "Black"}
	tan := &models.BagColor{ID: uuid.New(), Code: "TAN", Name: "Tan"}

	e1 := testEntry(t, formID, 0, map[string]int{"07:30-08:30": 25})
	e1.BagColorID, e1.BagColor = black.ID, black
	e2 := testEntry(t, formID, 0, map[string]int{"07:30-08:30": 10})
	e2.BagColorID, e2.BagColor = tan.ID, tan
	e3 := testEntry(t, formID, 0, map[string]int{"07:30-08:30": 15})
	e3.BagColorID, e3.BagColor = black.ID, black

	rows := BuildColorBreakdown([]models.ProductionEntry{e1, e2, e3})

	require.Len(t, rows, 2)
	assert.Equal(t, "BLACK", rows[0].Code)
	assert.Equal(t, 40, rows[0].Output)
	assert.Equal(t, 2, rows[0].EntryCount)
	assert.Equal(t, "TAN", rows[1].Code)
	assert.Equal(t, 10, rows[1].Output)
}

func TestBuildHourlyBreakdownAverageOverReportingEntries(t *testing.T) {
	formID := uuid.New()

	// One worker on a regular shift, one covering extended hours. The
	// extended slot's average must not be diluted by the regular worker.
	regular := testEntry(t, formID, 0, map[string]int{
		"07:30-08:30": 10,
	})
	extended := testEntry(t, formID, 0, map[string]int{
		"07:30-08:30": 20,
		"16:30-17:00": 6,
	})

	rows := BuildHourlyBreakdown([]models.ProductionEntry{regular, extended})

	require.Len(t, rows, 2)
	assert.Equal(t, "07:30-08:30", rows[0].Label)
	assert.Equal(t, 30, rows[0].Output)
	assert.Equal(t, 2, rows[0].EntryCount)
	assert.InDelta(t, 15.0, rows[0].Average, 0.001)

	assert.Equal(t, "16:30-17:00", rows[1].Label)
	assert.Equal(t, 6, rows[1].Output)
	assert.Equal(t, 1, rows[1].EntryCount)
	assert.InDelta(t, 6.0, rows[1].Average, 0.001)
}

func TestBuildHourlyBreakdownSlotOrdering(t *testing.T) {
	formID := uuid.New()
	entry := testEntry(t, formID, 0, map[string]int{
		"19:00-20:00": 1,
		"07:30-08:30": 2,
		"16:30-17:00": 3,
	})

	rows := BuildHourlyBreakdown([]models.ProductionEntry{entry})

	require.Len(t, rows, 3)
	assert.Equal(t, "07:30-08:30", rows[0].Label)
	assert.Equal(t, "16:30-17:00", rows[1].Label)
	assert.Equal(t, "19:00-20:00", rows[2].Label)
}

func TestBuildDailyBreakdown(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	formA := models.DigitalForm{ID: uuid.New(), Date: day1}
	formB := models.DigitalForm{ID: uuid.New(), Date: day1}
	formC := models.DigitalForm{ID: uuid.New(), Date: day2}

	entries := []models.ProductionEntry{
		testEntry(t, formA.ID, 10, map[string]int{"07:30-08:30": 8}),
		testEntry(t, formB.ID, 10, map[string]int{"07:30-08:30": 12}),
		testEntry(t, formC.ID, 10, map[string]int{"07:30-08:30": 5}),
	}

	rows := BuildDailyBreakdown([]models.DigitalForm{formA, formB, formC}, entries)

	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-01", rows[0].Date)
	assert.Equal(t, 2, rows[0].FormCount)
	assert.Equal(t, 2, rows[0].EntryCount)
	assert.Equal(t, 20, rows[0].Output)
	assert.Equal(t, 100, rows[0].Efficiency)

	assert.Equal(t, "2026-03-02", rows[1].Date)
	assert.Equal(t, 1, rows[1].FormCount)
	assert.Equal(t, 50, rows[1].Efficiency)
}

func TestBuildIssueSummary(t *testing.T) {
	formID := uuid.New()

	e1 := testEntry(t, formID, 0, nil)
	require.NoError(t, e1.SetIssues([]models.ProductionIssue{
		{Type: models.IssueWaitingMaterials, Hour: 1, Impact: 40},
		{Type: models.IssueQuality, Hour: 3, Impact: 10},
	}))
	e2 := testEntry(t, formID, 0, nil)
	require.NoError(t, e2.SetIssues([]models.ProductionIssue{
		{Type: models.IssueWaitingMaterials, Hour: 2, Impact: 20},
	}))

	rows := BuildIssueSummary([]models.ProductionEntry{e1, e2})

	require.Len(t, rows, 2)
	assert.Equal(t, models.IssueWaitingMaterials, rows[0].Type)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, 60, rows[0].TotalImpact)
	assert.Equal(t, models.IssueQuality, rows[1].Type)
	assert.Equal(t, 1, rows[1].Count)
}

func TestBuildChildSummaryRelativeEfficiency(t *testing.T) {
	formID := uuid.New()

	// Two workers produce 60 units: 30 per worker.
	worker1 := testEntry(t, formID, 0, map[string]int{"07:30-08:30": 40})
	worker2 := testEntry(t, formID, 0, map[string]int{"07:30-08:30": 20})
	entries := []models.ProductionEntry{worker1, worker2}

	// Parent averages 20 per worker; this child sits at 150%.
	row := BuildChildSummary(uuid.New(), models.ScopeGroup, "G1", "Group 1", entries, 20)

	assert.Equal(t, 2, row.EntryCount)
	assert.Equal(t, 2, row.WorkerCount)
	assert.Equal(t, 60, row.Output)
	assert.InDelta(t, 30.0, row.AvgPerWorker, 0.001)
	assert.Equal(t, 150, row.RelativeEfficiency)
}

func TestBuildChildSummaryEmpty(t *testing.T) {
	row := BuildChildSummary(uuid.New(), models.ScopeGroup, "G9", "Idle Group", nil, 20)

	assert.Equal(t, 0, row.WorkerCount)
	assert.Equal(t, 0, row.Output)
	assert.Equal(t, 0.0, row.AvgPerWorker)
	assert.Equal(t, 0, row.RelativeEfficiency)
}

func TestBuildReportHonorsOptions(t *testing.T) {
	formID := uuid.New()
	form := models.DigitalForm{ID: formID, Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	entries := []models.ProductionEntry{
		testEntry(t, formID, 10, map[string]int{"07:30-08:30": 8}),
	}

	opts := models.ReportOptions{IncludeDaily: true}
	report := BuildReport(testScope(), form.Date, form.Date, []models.DigitalForm{form}, entries, opts)

	assert.NotEmpty(t, report.ByDay)
	assert.Empty(t, report.ByProduct)
	assert.Empty(t, report.ByColor)
	assert.Empty(t, report.ByProcess)
	assert.Empty(t, report.ByHour)
	assert.Empty(t, report.Issues)
	// Totals are always computed regardless of options.
	assert.Equal(t, 8, report.Totals.TotalOutput)
}
