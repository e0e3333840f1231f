package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/prodtrack/middleware"
	"p9e.in/prodtrack/models"
)

// CreateDigitalForm creates a new draft form.
// POST /api/v1/forms
func CreateDigitalForm(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var in CreateFormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	form, err := NewFormLifecycle().Create(actor, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	invalidateReports()
	writeJSON(w, http.StatusCreated, form)
}

// GetDigitalForm returns a form with its entries.
// GET /api/v1/forms/{id}
func GetDigitalForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseFormID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	form, err := NewFormLifecycle().Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// ListDigitalForms lists forms by condition and page.
// GET /api/v1/forms
func ListDigitalForms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ListFormsFilter{
		Status: models.RecordStatus(q.Get("status")),
	}
	if v := q.Get("factoryId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.FactoryID = &id
		}
	}
	if v := q.Get("lineId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.LineID = &id
		}
	}
	if v := q.Get("teamId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.TeamID = &id
		}
	}
	if v := q.Get("groupId"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			filter.GroupID = &id
		}
	}
	if v := q.Get("dateFrom"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := q.Get("dateTo"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.DateTo = &t
		}
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	forms, total, err := NewFormLifecycle().List(filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"forms": forms,
		"total": total,
		"page":  filter.Page,
	})
}

// UpdateDigitalForm patches a draft form.
// PUT /api/v1/forms/{id}
func UpdateDigitalForm(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	id, err := parseFormID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var in UpdateFormInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	form, err := NewFormLifecycle().Update(actor, id, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	invalidateReports()
	writeJSON(w, http.StatusOK, form)
}

// DeleteDigitalForm removes a draft form and its entries.
// DELETE /api/v1/forms/{id}
func DeleteDigitalForm(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	id, err := parseFormID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := NewFormLifecycle().Delete(actor, id); err != nil {
		writeDomainError(w, err)
		return
	}

	invalidateReports()
	writeJSON(w, http.StatusOK, map[string]string{"message": "form deleted"})
}

// SubmitDigitalForm moves a draft form to PENDING.
// POST /api/v1/forms/{id}/submit
func SubmitDigitalForm(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.CurrentUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	id, err := parseFormID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var body struct {
		ApprovalRequestID *string `json:"approvalRequestId"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body)
	}

	form, err := NewFormLifecycle().Submit(actor, id, body.ApprovalRequestID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	invalidateReports()
	writeJSON(w, http.StatusOK, form)
}

// ApproveDigitalForm confirms a pending form. Admin tier only.
// POST /api/v1/forms/{id}/approve
func ApproveDigitalForm(w http.ResponseWriter, r *http.Request) {
	resolveForm(w, r, true)
}

// RejectDigitalForm rejects a pending form. Admin tier only.
// POST /api/v1/forms/{id}/reject
func RejectDigitalForm(w http.ResponseWriter, r *http.Request) {
	resolveForm(w, r, false)
}

func resolveForm(w http.ResponseWriter, r *http.Request, approve bool) {
	actor, err := middleware.CurrentUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	id, err := parseFormID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	lifecycle := NewFormLifecycle()
	var form *models.DigitalForm
	if approve {
		form, err = lifecycle.Approve(actor, id)
	} else {
		form, err = lifecycle.Reject(actor, id)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	invalidateReports()
	writeJSON(w, http.StatusOK, form)
}

func parseFormID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.InvalidInputError("invalid form id %q", raw)
	}
	return id, nil
}
