package handlers

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"p9e.in/prodtrack/models"
)

// ComparisonEngine aligns aggregated reports from peer entities (teams or
// groups) over the same date range for side-by-side analysis.
type ComparisonEngine struct {
	reports *ProductionReportEngine
}

// NewComparisonEngine creates a comparison engine.
func NewComparisonEngine() *ComparisonEngine {
	return &ComparisonEngine{reports: NewProductionReportEngine()}
}

// Compare fetches one aggregated report per entity and pivots them into
// aligned series. Fewer than two entity ids is rejected before any fetch.
func (ce *ComparisonEngine) Compare(entityType models.ScopeLevel, ids []uuid.UUID, from, to time.Time) (*models.ComparisonReport, error) {
	if entityType != models.ScopeTeam && entityType != models.ScopeGroup {
		return nil, models.InvalidInputError("comparison supports team or group entities, got %q", entityType)
	}
	if len(ids) < 2 {
		return nil, models.InvalidInputError("comparison requires at least two entities, got %d", len(ids))
	}
	seen := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, models.InvalidInputError("duplicate entity id %s in comparison", id)
		}
		seen[id] = struct{}{}
	}
	if to.Before(from) {
		return nil, models.InvalidInputError("date range end precedes start")
	}

	opts := models.ReportOptions{
		IncludeProducts:  true,
		IncludeProcesses: true,
		IncludeDaily:     true,
	}

	// Per-entity reports are read-only over disjoint scopes; fetch them
	// concurrently and rely on sorting below for deterministic output.
	reports := make([]*models.ProductionReport, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			var err error
			switch entityType {
			case models.ScopeTeam:
				reports[i], err = ce.reports.ByTeam(id, from, to, opts)
			default:
				reports[i], err = ce.reports.ByGroup(id, from, to, opts)
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return PivotComparison(entityType, from, to, reports), nil
}

// PivotComparison merges per-entity reports into axis-aligned rows. Every
// axis point seen in any entity's report appears once, with absent entities
// zero-filled rather than omitted.
func PivotComparison(entityType models.ScopeLevel, from, to time.Time, reports []*models.ProductionReport) *models.ComparisonReport {
	cmp := &models.ComparisonReport{
		EntityType:  entityType,
		DateFrom:    from,
		DateTo:      to,
		Entities:    []models.ComparisonEntity{},
		Daily:       []models.ComparisonRow{},
		ByProduct:   []models.ComparisonRow{},
		ByProcess:   []models.ComparisonRow{},
		GeneratedAt: time.Now(),
	}

	entityIDs := make([]uuid.UUID, len(reports))
	for i, r := range reports {
		entityIDs[i] = r.Scope.ID
		cmp.Entities = append(cmp.Entities, models.ComparisonEntity{
			ID:             r.Scope.ID,
			Code:           r.Scope.Code,
			Name:           r.Scope.Name,
			FormCount:      r.Totals.FormCount,
			EntryCount:     r.Totals.EntryCount,
			Output:         r.Totals.TotalOutput,
			Planned:        r.Totals.TotalPlanned,
			Efficiency:     r.Totals.Efficiency,
			AverageQuality: r.Totals.AverageQuality,
		})
	}
	sort.Slice(cmp.Entities, func(i, j int) bool {
		if cmp.Entities[i].Output != cmp.Entities[j].Output {
			return cmp.Entities[i].Output > cmp.Entities[j].Output
		}
		return cmp.Entities[i].Code < cmp.Entities[j].Code
	})

	cmp.Daily = pivotDaily(from, to, entityIDs, reports)
	cmp.ByProduct = pivotProducts(entityIDs, reports)
	cmp.ByProcess = pivotProcesses(entityIDs, reports)

	return cmp
}

// pivotDaily emits one row per calendar day of the range so every compared
// entity shares the axis; days without data for an entity carry zeros.
func pivotDaily(from, to time.Time, entityIDs []uuid.UUID, reports []*models.ProductionReport) []models.ComparisonRow {
	dailyByEntity := make([]map[string]models.DailyBreakdown, len(reports))
	for i, r := range reports {
		dayMap := map[string]models.DailyBreakdown{}
		for _, d := range r.ByDay {
			dayMap[d.Date] = d
		}
		dailyByEntity[i] = dayMap
	}

	rows := []models.ComparisonRow{}
	for day := normalizeDate(from); !day.After(normalizeDate(to)); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		row := models.ComparisonRow{
			Key:    key,
			Values: map[uuid.UUID]models.ComparisonValue{},
		}
		for i, id := range entityIDs {
			value := models.ComparisonValue{}
			if d, ok := dailyByEntity[i][key]; ok {
				value = models.ComparisonValue{Output: d.Output, Planned: d.Planned, Efficiency: d.Efficiency}
			}
			row.Values[id] = value
			row.Total += value.Output
		}
		rows = append(rows, row)
	}

	// Date ascending is already guaranteed by iteration order.
	return rows
}

// dimensionPoint accumulates one axis point of a dimension series.
type dimensionPoint struct {
	label  string
	values map[uuid.UUID]models.ComparisonValue
	total  int
}

func pivotProducts(entityIDs []uuid.UUID, reports []*models.ProductionReport) []models.ComparisonRow {
	axis := map[uuid.UUID]*dimensionPoint{}

	for i, r := range reports {
		for _, p := range r.ByProduct {
			pt, ok := axis[p.HandBagID]
			if !ok {
				pt = &dimensionPoint{label: p.Code, values: map[uuid.UUID]models.ComparisonValue{}}
				axis[p.HandBagID] = pt
			}
			pt.values[entityIDs[i]] = models.ComparisonValue{Output: p.Output}
			pt.total += p.Output
		}
	}

	return finishDimensionRows(entityIDs, axis)
}

func pivotProcesses(entityIDs []uuid.UUID, reports []*models.ProductionReport) []models.ComparisonRow {
	axis := map[uuid.UUID]*dimensionPoint{}

	for i, r := range reports {
		for _, p := range r.ByProcess {
			pt, ok := axis[p.ProcessID]
			if !ok {
				pt = &dimensionPoint{label: p.Code, values: map[uuid.UUID]models.ComparisonValue{}}
				axis[p.ProcessID] = pt
			}
			pt.values[entityIDs[i]] = models.ComparisonValue{Output: p.Output}
			pt.total += p.Output
		}
	}

	return finishDimensionRows(entityIDs, axis)
}

// finishDimensionRows zero-fills absent entities and sorts by aggregate
// output descending, the natural order for dimension series.
func finishDimensionRows(entityIDs []uuid.UUID, axis map[uuid.UUID]*dimensionPoint) []models.ComparisonRow {
	rows := make([]models.ComparisonRow, 0, len(axis))
	for key, pt := range axis {
		row := models.ComparisonRow{
			Key:    key.String(),
			Label:  pt.label,
			Total:  pt.total,
			Values: map[uuid.UUID]models.ComparisonValue{},
		}
		for _, id := range entityIDs {
			if v, ok := pt.values[id]; ok {
				row.Values[id] = v
			} else {
				row.Values[id] = models.ComparisonValue{}
			}
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}
