// models/report.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Report structures are derived on every query and never persisted.

// ScopeLevel identifies which organizational level a report covers.
type ScopeLevel string

const (
	ScopeFactory ScopeLevel = "factory"
	ScopeLine    ScopeLevel = "line"
	ScopeTeam    ScopeLevel = "team"
	ScopeGroup   ScopeLevel = "group"
)

// ReportScope names the unit a report was computed for.
type ReportScope struct {
	Level ScopeLevel `json:"level"`
	ID    uuid.UUID  `json:"id"`
	Code  string     `json:"code"`
	Name  string     `json:"name"`
}

// ReportTotals carries entry-level aggregates. Efficiency here is
// round(output / planned * 100) and must not be confused with the rollup-level
// RelativeEfficiency on ChildUnitSummary.
type ReportTotals struct {
	FormCount      int `json:"formCount"`
	EntryCount     int `json:"entryCount"`
	TotalOutput    int `json:"totalOutput"`
	TotalPlanned   int `json:"totalPlanned"`
	Efficiency     int `json:"efficiency"`
	AverageQuality int `json:"averageQuality"`
}

// AttendanceSummary is the distribution of attendance statuses.
type AttendanceSummary struct {
	ByStatus       map[AttendanceStatus]int `json:"byStatus"`
	PercentPresent int                      `json:"percentPresent"`
}

// ProductBreakdown is output grouped by handbag, sorted by output descending.
type ProductBreakdown struct {
	HandBagID  uuid.UUID `json:"handBagId"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	EntryCount int       `json:"entryCount"`
	Output     int       `json:"output"`
	Percent    int       `json:"percent"`
}

// ColorBreakdown is output grouped by bag color. Percentage-of-total is a
// product-breakdown concept and is not computed here.
type ColorBreakdown struct {
	BagColorID uuid.UUID `json:"bagColorId"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	EntryCount int       `json:"entryCount"`
	Output     int       `json:"output"`
}

// ProcessBreakdown is output grouped by process step.
type ProcessBreakdown struct {
	ProcessID  uuid.UUID `json:"processId"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	EntryCount int       `json:"entryCount"`
	Output     int       `json:"output"`
}

// HourlyBreakdown sums one slot label across entries. Average is taken over
// the entries that reported the slot, not over all entries.
type HourlyBreakdown struct {
	Label      string  `json:"label"`
	Output     int     `json:"output"`
	EntryCount int     `json:"entryCount"`
	Average    float64 `json:"average"`
}

// DailyBreakdown groups forms by calendar day, then aggregates their entries.
type DailyBreakdown struct {
	Date       string `json:"date"` // YYYY-MM-DD
	FormCount  int    `json:"formCount"`
	EntryCount int    `json:"entryCount"`
	Output     int    `json:"output"`
	Planned    int    `json:"planned"`
	Efficiency int    `json:"efficiency"`
}

// IssueSummary reports occurrence and summed impact per issue type.
type IssueSummary struct {
	Type        IssueType `json:"type"`
	Count       int       `json:"count"`
	TotalImpact int       `json:"totalImpact"`
}

// ChildUnitSummary is one rollup row per child unit. RelativeEfficiency is
// round(childAvgPerWorker / parentAvgPerWorker * 100) — a peer-relative
// measure, distinct from the plan-relative Efficiency on ReportTotals.
type ChildUnitSummary struct {
	UnitID             uuid.UUID  `json:"unitId"`
	Level              ScopeLevel `json:"level"`
	Code               string     `json:"code"`
	Name               string     `json:"name"`
	EntryCount         int        `json:"entryCount"`
	WorkerCount        int        `json:"workerCount"`
	Output             int        `json:"output"`
	AvgPerWorker       float64    `json:"avgPerWorker"`
	RelativeEfficiency int        `json:"relativeEfficiency"`
}

// ProductionReport is the full aggregated view for one scope and date range.
// Every field is populated even when no data exists: zero totals and empty
// lists, never nil.
type ProductionReport struct {
	Scope       ReportScope        `json:"scope"`
	DateFrom    time.Time          `json:"dateFrom"`
	DateTo      time.Time          `json:"dateTo"`
	Totals      ReportTotals       `json:"totals"`
	Attendance  AttendanceSummary  `json:"attendance"`
	ByProduct   []ProductBreakdown `json:"byProduct"`
	ByColor     []ColorBreakdown   `json:"byColor"`
	ByProcess   []ProcessBreakdown `json:"byProcess"`
	ByHour      []HourlyBreakdown  `json:"byHour"`
	ByDay       []DailyBreakdown   `json:"byDay"`
	Issues      []IssueSummary     `json:"issues"`
	Children    []ChildUnitSummary `json:"children"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// ReportOptions bound the cost of a report on large scopes: each optional
// breakdown is only computed when its flag is set.
type ReportOptions struct {
	IncludeProducts  bool `json:"includeProducts"`
	IncludeColors    bool `json:"includeColors"`
	IncludeProcesses bool `json:"includeProcesses"`
	IncludeHourly    bool `json:"includeHourly"`
	IncludeDaily     bool `json:"includeDaily"`
	IncludeIssues    bool `json:"includeIssues"`
	IncludeChildren  bool `json:"includeChildren"`
}

// AllReportOptions enables every breakdown.
func AllReportOptions() ReportOptions {
	return ReportOptions{
		IncludeProducts:  true,
		IncludeColors:    true,
		IncludeProcesses: true,
		IncludeHourly:    true,
		IncludeDaily:     true,
		IncludeIssues:    true,
		IncludeChildren:  true,
	}
}

// ComparisonValue is one entity's contribution at one axis point.
type ComparisonValue struct {
	Output     int `json:"output"`
	Planned    int `json:"planned"`
	Efficiency int `json:"efficiency"`
}

// ComparisonRow aligns every compared entity on one axis point. Entities with
// no data at the point appear with zero values rather than being omitted.
type ComparisonRow struct {
	Key    string                        `json:"key"`
	Label  string                        `json:"label,omitempty"`
	Total  int                           `json:"total"`
	Values map[uuid.UUID]ComparisonValue `json:"values"`
}

// ComparisonEntity is the per-entity summary row of a comparison.
type ComparisonEntity struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	FormCount      int       `json:"formCount"`
	EntryCount     int       `json:"entryCount"`
	Output         int       `json:"output"`
	Planned        int       `json:"planned"`
	Efficiency     int       `json:"efficiency"`
	AverageQuality int       `json:"averageQuality"`
}

// ComparisonReport aligns aggregated statistics from peer entities over the
// same date range and axes.
type ComparisonReport struct {
	EntityType  ScopeLevel         `json:"entityType"` // team or group
	DateFrom    time.Time          `json:"dateFrom"`
	DateTo      time.Time          `json:"dateTo"`
	Entities    []ComparisonEntity `json:"entities"`
	Daily       []ComparisonRow    `json:"daily"`
	ByProduct   []ComparisonRow    `json:"byProduct"`
	ByProcess   []ComparisonRow    `json:"byProcess"`
	GeneratedAt time.Time          `json:"generatedAt"`
}

// RoundPercent computes round(numerator / denominator * 100) with the
// zero-denominator contract used for every efficiency and percentage in reports.
func RoundPercent(numerator, denominator int) int {
	if denominator <= 0 {
		return 0
	}
	return int(float64(numerator)/float64(denominator)*100 + 0.5)
}
