package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/prodtrack/middleware"
	"p9e.in/prodtrack/models"
)

// AddFormEntry appends a production entry to a draft form.
// POST /api/v1/forms/{id}/entries
func AddFormEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	formID, err := parseFormID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var in AddEntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := NewEntryManager().AddEntry(actor, formID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	invalidateReports()
	writeJSON(w, http.StatusCreated, entry)
}

// ListFormEntries returns all entries of a form.
// GET /api/v1/forms/{id}/entries
func ListFormEntries(w http.ResponseWriter, r *http.Request) {
	formID, err := parseFormID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	entries, err := NewEntryManager().ListEntries(formID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// UpdateFormEntry patches a draft entry, merging hourly data.
// PUT /api/v1/forms/{id}/entries/{entryId}
func UpdateFormEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	formID, entryID, err := parseEntryIDs(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var in UpdateEntryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := NewEntryManager().UpdateEntry(actor, formID, entryID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	invalidateReports()
	writeJSON(w, http.StatusOK, entry)
}

// ChangeEntryShift switches an entry between shift tiers, expanding
// or contracting its hourly slots.
// POST /api/v1/forms/{id}/entries/{entryId}/shift
func ChangeEntryShift(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	formID, entryID, err := parseEntryIDs(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var body struct {
		ShiftType models.ShiftType `json:"shiftType"`
		Force     bool             `json:"force"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, dropped, err := NewEntryManager().ChangeShift(actor, formID, entryID, body.ShiftType, body.Force)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	invalidateReports()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entry":        entry,
		"droppedSlots": dropped,
	})
}

// DeleteFormEntry removes an entry from a draft form.
// DELETE /api/v1/forms/{id}/entries/{entryId}
func DeleteFormEntry(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	formID, entryID, err := parseEntryIDs(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := NewEntryManager().DeleteEntry(actor, formID, entryID); err != nil {
		writeDomainError(w, err)
		return
	}

	invalidateReports()
	writeJSON(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}

func parseEntryIDs(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	formID, err := parseFormID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	raw := mux.Vars(r)["entryId"]
	entryID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, uuid.Nil, models.InvalidInputError("invalid entry id %q", raw)
	}
	return formID, entryID, nil
}
