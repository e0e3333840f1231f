package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"p9e.in/prodtrack/models"
	"p9e.in/prodtrack/pkg/reportcache"
)

// reportCache is the process-wide read-through cache for report queries.
// Any write to forms or entries invalidates the whole reports tag.
var reportCache = reportcache.New()

func invalidateReports() {
	if n := reportCache.InvalidateTag(reportcache.TagReports); n > 0 {
		log.Printf("🧹 Invalidated %d cached reports", n)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeDomainError maps the error taxonomy onto transport status codes and
// always names the violated precondition in the body.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch models.KindOf(err) {
	case models.ErrKindNotFound:
		status = http.StatusNotFound
	case models.ErrKindPermissionDenied:
		status = http.StatusForbidden
	case models.ErrKindInvalidState:
		status = http.StatusConflict
	case models.ErrKindDuplicate:
		status = http.StatusConflict
	case models.ErrKindInvalidInput:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Printf("❌ Internal error: %v", err)
	}

	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"kind":  models.KindOf(err),
	})
}
