package handlers

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"p9e.in/prodtrack/config"
	"p9e.in/prodtrack/models"
)

// ProductionReportEngine computes aggregated statistics over form entries at
// any organizational level. Reports are derived on every call and never
// persisted; an empty scope yields a zeroed report shape, not nil.
type ProductionReportEngine struct {
	db *gorm.DB
}

// NewProductionReportEngine creates a report engine on the global connection.
func NewProductionReportEngine() *ProductionReportEngine {
	return &ProductionReportEngine{db: config.DB}
}

// ByFactory aggregates every form in the factory over the date range.
func (re *ProductionReportEngine) ByFactory(id uuid.UUID, from, to time.Time, opts models.ReportOptions) (*models.ProductionReport, error) {
	return re.scopeReport(models.ScopeFactory, id, from, to, opts)
}

// ByLine aggregates one production line.
func (re *ProductionReportEngine) ByLine(id uuid.UUID, from, to time.Time, opts models.ReportOptions) (*models.ProductionReport, error) {
	return re.scopeReport(models.ScopeLine, id, from, to, opts)
}

// ByTeam aggregates one team.
func (re *ProductionReportEngine) ByTeam(id uuid.UUID, from, to time.Time, opts models.ReportOptions) (*models.ProductionReport, error) {
	return re.scopeReport(models.ScopeTeam, id, from, to, opts)
}

// ByGroup aggregates one group, the lowest unit above single workers.
func (re *ProductionReportEngine) ByGroup(id uuid.UUID, from, to time.Time, opts models.ReportOptions) (*models.ProductionReport, error) {
	return re.scopeReport(models.ScopeGroup, id, from, to, opts)
}

func (re *ProductionReportEngine) scopeReport(level models.ScopeLevel, id uuid.UUID, from, to time.Time, opts models.ReportOptions) (*models.ProductionReport, error) {
	if to.Before(from) {
		return nil, models.InvalidInputError("date range end precedes start")
	}

	scope, err := re.resolveScope(level, id)
	if err != nil {
		return nil, err
	}

	forms, err := re.fetchForms(level, id, from, to)
	if err != nil {
		return nil, err
	}
	entries, err := re.fetchEntries(formIDs(forms))
	if err != nil {
		return nil, err
	}

	report := BuildReport(scope, from, to, forms, entries, opts)

	if opts.IncludeChildren && level != models.ScopeGroup {
		children, err := re.buildChildSummaries(level, id, from, to, entries)
		if err != nil {
			return nil, err
		}
		report.Children = children
	}

	return report, nil
}

// BuildReport is the pure aggregation core: it consumes an already-fetched
// form and entry set and emits the full report shape. All breakdowns are
// O(n) over entries; ordering is deterministic regardless of input order.
func BuildReport(scope models.ReportScope, from, to time.Time, forms []models.DigitalForm, entries []models.ProductionEntry, opts models.ReportOptions) *models.ProductionReport {
	report := &models.ProductionReport{
		Scope:       scope,
		DateFrom:    from,
		DateTo:      to,
		ByProduct:   []models.ProductBreakdown{},
		ByColor:     []models.ColorBreakdown{},
		ByProcess:   []models.ProcessBreakdown{},
		ByHour:      []models.HourlyBreakdown{},
		ByDay:       []models.DailyBreakdown{},
		Issues:      []models.IssueSummary{},
		Children:    []models.ChildUnitSummary{},
		GeneratedAt: time.Now(),
	}

	report.Totals = BuildTotals(forms, entries)
	report.Attendance = BuildAttendance(entries)

	if opts.IncludeProducts {
		report.ByProduct = BuildProductBreakdown(entries)
	}
	if opts.IncludeColors {
		report.ByColor = BuildColorBreakdown(entries)
	}
	if opts.IncludeProcesses {
		report.ByProcess = BuildProcessBreakdown(entries)
	}
	if opts.IncludeHourly {
		report.ByHour = BuildHourlyBreakdown(entries)
	}
	if opts.IncludeDaily {
		report.ByDay = BuildDailyBreakdown(forms, entries)
	}
	if opts.IncludeIssues {
		report.Issues = BuildIssueSummary(entries)
	}

	return report
}

// BuildTotals computes the entry-level aggregate row. Efficiency is output
// relative to planned output, zero when nothing was planned.
func BuildTotals(forms []models.DigitalForm, entries []models.ProductionEntry) models.ReportTotals {
	totals := models.ReportTotals{
		FormCount:  len(forms),
		EntryCount: len(entries),
	}

	qualitySum := 0
	for _, e := range entries {
		totals.TotalOutput += e.TotalOutput
		totals.TotalPlanned += e.PlannedOutput
		qualitySum += e.QualityScore
	}

	totals.Efficiency = models.RoundPercent(totals.TotalOutput, totals.TotalPlanned)
	if len(entries) > 0 {
		totals.AverageQuality = int(float64(qualitySum)/float64(len(entries)) + 0.5)
	}

	return totals
}

// BuildAttendance counts entries per attendance status.
func BuildAttendance(entries []models.ProductionEntry) models.AttendanceSummary {
	summary := models.AttendanceSummary{ByStatus: map[models.AttendanceStatus]int{}}
	for _, e := range entries {
		summary.ByStatus[e.AttendanceStatus]++
	}
	summary.PercentPresent = models.RoundPercent(summary.ByStatus[models.AttendancePresent], len(entries))
	return summary
}

// BuildProductBreakdown groups output by handbag, descending by output.
// Percentage-of-total is computed for products only.
func BuildProductBreakdown(entries []models.ProductionEntry) []models.ProductBreakdown {
	type bucket struct {
		row models.ProductBreakdown
	}
	buckets := map[uuid.UUID]*bucket{}
	total := 0

	for _, e := range entries {
		b, ok := buckets[e.HandBagID]
		if !ok {
			b = &bucket{row: models.ProductBreakdown{HandBagID: e.HandBagID}}
			if e.HandBag != nil {
				b.row.Code = e.HandBag.Code
				b.row.Name = e.HandBag.Name
			}
			buckets[e.HandBagID] = b
		}
		b.row.EntryCount++
		b.row.Output += e.TotalOutput
		total += e.TotalOutput
	}

	rows := make([]models.ProductBreakdown, 0, len(buckets))
	for _, b := range buckets {
		b.row.Percent = models.RoundPercent(b.row.Output, total)
		rows = append(rows, b.row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Output != rows[j].Output {
			return rows[i].Output > rows[j].Output
		}
		return rows[i].Code < rows[j].Code
	})
	return rows
}

// BuildColorBreakdown groups output by bag color, descending by output.
func BuildColorBreakdown(entries []models.ProductionEntry) []models.ColorBreakdown {
	buckets := map[uuid.UUID]*models.ColorBreakdown{}
	for _, e := range entries {
		b, ok := buckets[e.BagColorID]
		if !ok {
			b = &models.ColorBreakdown{BagColorID: e.BagColorID}
			if e.BagColor != nil {
				b.Code = e.BagColor.Code
				b.Name = e.BagColor.Name
			}
			buckets[e.BagColorID] = b
		}
		b.EntryCount++
		b.Output += e.TotalOutput
	}

	rows := make([]models.ColorBreakdown, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Output != rows[j].Output {
			return rows[i].Output > rows[j].Output
		}
		return rows[i].Code < rows[j].Code
	})
	return rows
}

// BuildProcessBreakdown groups output by process step, descending by output.
func BuildProcessBreakdown(entries []models.ProductionEntry) []models.ProcessBreakdown {
	buckets := map[uuid.UUID]*models.ProcessBreakdown{}
	for _, e := range entries {
		b, ok := buckets[e.ProcessID]
		if !ok {
			b = &models.ProcessBreakdown{ProcessID: e.ProcessID}
			if e.Process != nil {
				b.Code = e.Process.Code
				b.Name = e.Process.Name
			}
			buckets[e.ProcessID] = b
		}
		b.EntryCount++
		b.Output += e.TotalOutput
	}

	rows := make([]models.ProcessBreakdown, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Output != rows[j].Output {
			return rows[i].Output > rows[j].Output
		}
		return rows[i].Code < rows[j].Code
	})
	return rows
}

// BuildHourlyBreakdown takes the union of all slot labels across entries.
// The average for a slot covers only the entries that reported the slot, so
// workers on shorter shifts never dilute it.
func BuildHourlyBreakdown(entries []models.ProductionEntry) []models.HourlyBreakdown {
	buckets := map[string]*models.HourlyBreakdown{}
	for _, e := range entries {
		for label, output := range e.GetHourlyData() {
			b, ok := buckets[label]
			if !ok {
				b = &models.HourlyBreakdown{Label: label}
				buckets[label] = b
			}
			b.Output += output
			b.EntryCount++
		}
	}

	rows := make([]models.HourlyBreakdown, 0, len(buckets))
	for _, b := range buckets {
		if b.EntryCount > 0 {
			b.Average = float64(b.Output) / float64(b.EntryCount)
		}
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool {
		oi, oj := models.SlotOrder(rows[i].Label), models.SlotOrder(rows[j].Label)
		if oi != oj {
			return oi < oj
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

// BuildDailyBreakdown groups forms by calendar day first, then aggregates the
// entries belonging to each day's forms. The two-step grouping matters: the
// date lives on the form, not the entry.
func BuildDailyBreakdown(forms []models.DigitalForm, entries []models.ProductionEntry) []models.DailyBreakdown {
	dayByForm := map[uuid.UUID]string{}
	buckets := map[string]*models.DailyBreakdown{}

	for _, f := range forms {
		key := f.DateKey()
		dayByForm[f.ID] = key
		b, ok := buckets[key]
		if !ok {
			b = &models.DailyBreakdown{Date: key}
			buckets[key] = b
		}
		b.FormCount++
	}

	for _, e := range entries {
		key, ok := dayByForm[e.FormID]
		if !ok {
			continue
		}
		b := buckets[key]
		b.EntryCount++
		b.Output += e.TotalOutput
		b.Planned += e.PlannedOutput
	}

	rows := make([]models.DailyBreakdown, 0, len(buckets))
	for _, b := range buckets {
		b.Efficiency = models.RoundPercent(b.Output, b.Planned)
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}

// BuildIssueSummary flattens all entry issues and groups them by type,
// descending by occurrence.
func BuildIssueSummary(entries []models.ProductionEntry) []models.IssueSummary {
	buckets := map[models.IssueType]*models.IssueSummary{}
	for _, e := range entries {
		for _, issue := range e.GetIssues() {
			b, ok := buckets[issue.Type]
			if !ok {
				b = &models.IssueSummary{Type: issue.Type}
				buckets[issue.Type] = b
			}
			b.Count++
			b.TotalImpact += issue.Impact
		}
	}

	rows := make([]models.IssueSummary, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Type < rows[j].Type
	})
	return rows
}

// childUnit is one child of the reported scope.
type childUnit struct {
	id    uuid.UUID
	level models.ScopeLevel
	code  string
	name  string
}

// buildChildSummaries produces one rollup row per child unit. Child entry
// sets address disjoint data, so they are fetched concurrently; rows are
// sorted afterwards so fetch order never affects output.
func (re *ProductionReportEngine) buildChildSummaries(parentLevel models.ScopeLevel, parentID uuid.UUID, from, to time.Time, parentEntries []models.ProductionEntry) ([]models.ChildUnitSummary, error) {
	children, err := re.listChildren(parentLevel, parentID)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return []models.ChildUnitSummary{}, nil
	}

	parentAvg := avgPerWorker(parentEntries)

	rows := make([]models.ChildUnitSummary, len(children))
	var g errgroup.Group
	for i, child := range children {
		i, child := i, child
		g.Go(func() error {
			forms, err := re.fetchForms(child.level, child.id, from, to)
			if err != nil {
				return err
			}
			entries, err := re.fetchEntries(formIDs(forms))
			if err != nil {
				return err
			}
			rows[i] = BuildChildSummary(child.id, child.level, child.code, child.name, entries, parentAvg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Output != rows[j].Output {
			return rows[i].Output > rows[j].Output
		}
		return rows[i].Code < rows[j].Code
	})
	return rows, nil
}

// BuildChildSummary computes one rollup row. RelativeEfficiency compares the
// child's average output per worker against the parent's average per worker —
// a peer-relative baseline, not the plan-relative entry efficiency.
func BuildChildSummary(id uuid.UUID, level models.ScopeLevel, code, name string, entries []models.ProductionEntry, parentAvgPerWorker float64) models.ChildUnitSummary {
	row := models.ChildUnitSummary{
		UnitID: id,
		Level:  level,
		Code:   code,
		Name:   name,
	}

	workers := map[uuid.UUID]struct{}{}
	for _, e := range entries {
		row.EntryCount++
		row.Output += e.TotalOutput
		workers[e.UserID] = struct{}{}
	}
	row.WorkerCount = len(workers)
	if row.WorkerCount > 0 {
		row.AvgPerWorker = float64(row.Output) / float64(row.WorkerCount)
	}
	if parentAvgPerWorker > 0 {
		row.RelativeEfficiency = int(row.AvgPerWorker/parentAvgPerWorker*100 + 0.5)
	}

	return row
}

func avgPerWorker(entries []models.ProductionEntry) float64 {
	workers := map[uuid.UUID]struct{}{}
	output := 0
	for _, e := range entries {
		workers[e.UserID] = struct{}{}
		output += e.TotalOutput
	}
	if len(workers) == 0 {
		return 0
	}
	return float64(output) / float64(len(workers))
}

func (re *ProductionReportEngine) listChildren(parentLevel models.ScopeLevel, parentID uuid.UUID) ([]childUnit, error) {
	var children []childUnit

	switch parentLevel {
	case models.ScopeFactory:
		var lines []models.Line
		if err := re.db.Where("factory_id = ?", parentID).Order("code ASC").Find(&lines).Error; err != nil {
			return nil, models.InternalError("failed to list lines", err)
		}
		for _, l := range lines {
			children = append(children, childUnit{id: l.ID, level: models.ScopeLine, code: l.Code, name: l.Name})
		}
	case models.ScopeLine:
		var teams []models.Team
		if err := re.db.Where("line_id = ?", parentID).Order("code ASC").Find(&teams).Error; err != nil {
			return nil, models.InternalError("failed to list teams", err)
		}
		for _, t := range teams {
			children = append(children, childUnit{id: t.ID, level: models.ScopeTeam, code: t.Code, name: t.Name})
		}
	case models.ScopeTeam:
		var groups []models.Group
		if err := re.db.Where("team_id = ?", parentID).Order("code ASC").Find(&groups).Error; err != nil {
			return nil, models.InternalError("failed to list groups", err)
		}
		for _, g := range groups {
			children = append(children, childUnit{id: g.ID, level: models.ScopeGroup, code: g.Code, name: g.Name})
		}
	}

	return children, nil
}

func (re *ProductionReportEngine) resolveScope(level models.ScopeLevel, id uuid.UUID) (models.ReportScope, error) {
	scope := models.ReportScope{Level: level, ID: id}

	var code, name string
	var err error
	switch level {
	case models.ScopeFactory:
		var f models.Factory
		err = re.db.First(&f, "id = ?", id).Error
		code, name = f.Code, f.Name
	case models.ScopeLine:
		var l models.Line
		err = re.db.First(&l, "id = ?", id).Error
		code, name = l.Code, l.Name
	case models.ScopeTeam:
		var t models.Team
		err = re.db.First(&t, "id = ?", id).Error
		code, name = t.Code, t.Name
	case models.ScopeGroup:
		var g models.Group
		err = re.db.First(&g, "id = ?", id).Error
		code, name = g.Code, g.Name
	default:
		return scope, models.InvalidInputError("unknown scope level %q", level)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return scope, models.NotFoundError("%s %s not found", level, id)
	}
	if err != nil {
		return scope, models.InternalError("failed to resolve scope", err)
	}

	scope.Code = code
	scope.Name = name
	return scope, nil
}

func (re *ProductionReportEngine) fetchForms(level models.ScopeLevel, id uuid.UUID, from, to time.Time) ([]models.DigitalForm, error) {
	column := map[models.ScopeLevel]string{
		models.ScopeFactory: "factory_id",
		models.ScopeLine:    "line_id",
		models.ScopeTeam:    "team_id",
		models.ScopeGroup:   "group_id",
	}[level]

	var forms []models.DigitalForm
	if err := re.db.
		Where(column+" = ?", id).
		Where("date >= ? AND date <= ?", normalizeDate(from), normalizeDate(to)).
		Order("date ASC, form_code ASC").
		Find(&forms).Error; err != nil {
		return nil, models.InternalError("failed to fetch forms", err)
	}
	return forms, nil
}

func (re *ProductionReportEngine) fetchEntries(ids []uuid.UUID) ([]models.ProductionEntry, error) {
	if len(ids) == 0 {
		return []models.ProductionEntry{}, nil
	}

	var entries []models.ProductionEntry
	if err := re.db.
		Preload("HandBag").Preload("BagColor").Preload("Process").
		Where("form_id IN ?", ids).
		Find(&entries).Error; err != nil {
		return nil, models.InternalError("failed to fetch entries", err)
	}
	return entries, nil
}

func formIDs(forms []models.DigitalForm) []uuid.UUID {
	ids := make([]uuid.UUID, len(forms))
	for i, f := range forms {
		ids[i] = f.ID
	}
	return ids
}
