package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/prodtrack/config"
	"p9e.in/prodtrack/models"
)

// ListFactories returns all active factories.
// GET /api/v1/catalog/factories
func ListFactories(w http.ResponseWriter, r *http.Request) {
	var factories []models.Factory
	if err := config.DB.Where("is_active = ?", true).Order("code").Find(&factories).Error; err != nil {
		writeDomainError(w, models.InternalError("failed to list factories", err))
		return
	}
	writeJSON(w, http.StatusOK, factories)
}

// ListLines returns the lines of a factory.
// GET /api/v1/catalog/factories/{id}/lines
func ListLines(w http.ResponseWriter, r *http.Request) {
	id, err := parseCatalogID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var lines []models.Line
	if err := config.DB.Where("factory_id = ? AND is_active = ?", id, true).
		Order("code").Find(&lines).Error; err != nil {
		writeDomainError(w, models.InternalError("failed to list lines", err))
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

// ListTeams returns the teams of a line.
// GET /api/v1/catalog/lines/{id}/teams
func ListTeams(w http.ResponseWriter, r *http.Request) {
	id, err := parseCatalogID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var teams []models.Team
	if err := config.DB.Where("line_id = ? AND is_active = ?", id, true).
		Order("code").Find(&teams).Error; err != nil {
		writeDomainError(w, models.InternalError("failed to list teams", err))
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// ListGroups returns the groups of a team.
// GET /api/v1/catalog/teams/{id}/groups
func ListGroups(w http.ResponseWriter, r *http.Request) {
	id, err := parseCatalogID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var groups []models.Group
	if err := config.DB.Where("team_id = ? AND is_active = ?", id, true).
		Order("code").Find(&groups).Error; err != nil {
		writeDomainError(w, models.InternalError("failed to list groups", err))
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// ListGroupWorkers returns the active workers assigned to a group.
// GET /api/v1/catalog/groups/{id}/workers
func ListGroupWorkers(w http.ResponseWriter, r *http.Request) {
	id, err := parseCatalogID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var workers []models.User
	if err := config.DB.Where("group_id = ? AND is_active = ?", id, true).
		Order("employee_code").Find(&workers).Error; err != nil {
		writeDomainError(w, models.InternalError("failed to list workers", err))
		return
	}
	writeJSON(w, http.StatusOK, workers)
}

// ListHandBags returns the product catalog with colors preloaded.
// GET /api/v1/catalog/handbags
func ListHandBags(w http.ResponseWriter, r *http.Request) {
	var bags []models.HandBag
	if err := config.DB.Preload("Colors").Where("is_active = ?", true).
		Order("code").Find(&bags).Error; err != nil {
		writeDomainError(w, models.InternalError("failed to list handbags", err))
		return
	}
	writeJSON(w, http.StatusOK, bags)
}

// ListProcesses returns the production process catalog.
// GET /api/v1/catalog/processes
func ListProcesses(w http.ResponseWriter, r *http.Request) {
	var processes []models.BagProcess
	if err := config.DB.Where("is_active = ?", true).Order("code").
		Find(&processes).Error; err != nil {
		writeDomainError(w, models.InternalError("failed to list processes", err))
		return
	}
	writeJSON(w, http.StatusOK, processes)
}

func parseCatalogID(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.InvalidInputError("invalid id %q", raw)
	}
	return id, nil
}
