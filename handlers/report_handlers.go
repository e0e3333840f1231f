package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/prodtrack/models"
	"p9e.in/prodtrack/pkg/reportcache"
)

// FactoryReport builds the aggregate report for a factory.
// GET /api/v1/reports/factory/{id}
func FactoryReport(w http.ResponseWriter, r *http.Request) {
	scopedReport(w, r, models.ScopeFactory)
}

// LineReport builds the aggregate report for a line.
// GET /api/v1/reports/line/{id}
func LineReport(w http.ResponseWriter, r *http.Request) {
	scopedReport(w, r, models.ScopeLine)
}

// TeamReport builds the aggregate report for a team.
// GET /api/v1/reports/team/{id}
func TeamReport(w http.ResponseWriter, r *http.Request) {
	scopedReport(w, r, models.ScopeTeam)
}

// GroupReport builds the aggregate report for a group.
// GET /api/v1/reports/group/{id}
func GroupReport(w http.ResponseWriter, r *http.Request) {
	scopedReport(w, r, models.ScopeGroup)
}

func scopedReport(w http.ResponseWriter, r *http.Request, level models.ScopeLevel) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		writeDomainError(w, models.InvalidInputError("invalid %s id %q", level, raw))
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	opts := parseReportOptions(r)

	key := reportcache.Key(reportcache.TagReports,
		string(level), id.String(), reportcache.FormatRange(from, to), optionsKey(opts))
	if cached, ok := reportCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	engine := NewProductionReportEngine()
	var report *models.ProductionReport
	switch level {
	case models.ScopeFactory:
		report, err = engine.ByFactory(id, from, to, opts)
	case models.ScopeLine:
		report, err = engine.ByLine(id, from, to, opts)
	case models.ScopeTeam:
		report, err = engine.ByTeam(id, from, to, opts)
	case models.ScopeGroup:
		report, err = engine.ByGroup(id, from, to, opts)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	reportCache.Set(key, report)
	writeJSON(w, http.StatusOK, report)
}

// CompareEntities pivots reports of several teams or groups side by side.
// GET /api/v1/reports/compare?entityType=team&ids=a,b&dateFrom=...&dateTo=...
func CompareEntities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var level models.ScopeLevel
	switch q.Get("entityType") {
	case "team":
		level = models.ScopeTeam
	case "group":
		level = models.ScopeGroup
	default:
		writeDomainError(w, models.InvalidInputError("entityType must be team or group"))
		return
	}

	var ids []uuid.UUID
	for _, raw := range strings.Split(q.Get("ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			writeDomainError(w, models.InvalidInputError("invalid id %q", raw))
			return
		}
		ids = append(ids, id)
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	key := reportcache.Key(reportcache.TagReports,
		"compare", string(level), strings.Join(idStrings(ids), "+"), reportcache.FormatRange(from, to))
	if cached, ok := reportCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	report, err := NewComparisonEngine().Compare(level, ids, from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	reportCache.Set(key, report)
	writeJSON(w, http.StatusOK, report)
}

func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from, err := time.Parse("2006-01-02", q.Get("dateFrom"))
	if err != nil {
		return time.Time{}, time.Time{}, models.InvalidInputError("dateFrom must be YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", q.Get("dateTo"))
	if err != nil {
		return time.Time{}, time.Time{}, models.InvalidInputError("dateTo must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, models.InvalidInputError("dateTo is before dateFrom")
	}
	return from, to, nil
}

// parseReportOptions reads include flags from the query string. With no
// flags present every breakdown is included.
func parseReportOptions(r *http.Request) models.ReportOptions {
	q := r.URL.Query()
	flags := []string{"products", "colors", "processes", "hourly", "daily", "issues", "children"}
	any := false
	for _, f := range flags {
		if q.Get(f) != "" {
			any = true
			break
		}
	}
	if !any {
		return models.AllReportOptions()
	}
	return models.ReportOptions{
		IncludeProducts:  q.Get("products") == "true",
		IncludeColors:    q.Get("colors") == "true",
		IncludeProcesses: q.Get("processes") == "true",
		IncludeHourly:    q.Get("hourly") == "true",
		IncludeDaily:     q.Get("daily") == "true",
		IncludeIssues:    q.Get("issues") == "true",
		IncludeChildren:  q.Get("children") == "true",
	}
}

func optionsKey(opts models.ReportOptions) string {
	return fmt.Sprintf("%t%t%t%t%t%t%t",
		opts.IncludeProducts, opts.IncludeColors, opts.IncludeProcesses,
		opts.IncludeHourly, opts.IncludeDaily, opts.IncludeIssues, opts.IncludeChildren)
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
