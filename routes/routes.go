package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/prodtrack/handlers"
	"p9e.in/prodtrack/middleware"
	"p9e.in/prodtrack/models"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/health", handleHealth).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handleProfile).Methods("GET")

	registerFormRoutes(api)
	registerCatalogRoutes(api)
	RegisterReportRoutes(api)

	return r
}

func registerFormRoutes(api *mux.Router) {
	adminTier := []string{models.RoleAdmin, models.RoleSuperAdmin}

	api.HandleFunc("/forms", handlers.CreateDigitalForm).Methods("POST")
	api.HandleFunc("/forms", handlers.ListDigitalForms).Methods("GET")
	api.HandleFunc("/forms/{id}", handlers.GetDigitalForm).Methods("GET")
	api.HandleFunc("/forms/{id}", handlers.UpdateDigitalForm).Methods("PUT")
	api.HandleFunc("/forms/{id}", handlers.DeleteDigitalForm).Methods("DELETE")
	api.HandleFunc("/forms/{id}/submit", handlers.SubmitDigitalForm).Methods("POST")
	api.Handle("/forms/{id}/approve",
		middleware.RequireRole(adminTier, http.HandlerFunc(handlers.ApproveDigitalForm))).Methods("POST")
	api.Handle("/forms/{id}/reject",
		middleware.RequireRole(adminTier, http.HandlerFunc(handlers.RejectDigitalForm))).Methods("POST")

	api.HandleFunc("/forms/{id}/entries", handlers.AddFormEntry).Methods("POST")
	api.HandleFunc("/forms/{id}/entries", handlers.ListFormEntries).Methods("GET")
	api.HandleFunc("/forms/{id}/entries/{entryId}", handlers.UpdateFormEntry).Methods("PUT")
	api.HandleFunc("/forms/{id}/entries/{entryId}", handlers.DeleteFormEntry).Methods("DELETE")
	api.HandleFunc("/forms/{id}/entries/{entryId}/shift", handlers.ChangeEntryShift).Methods("POST")
}

func registerCatalogRoutes(api *mux.Router) {
	api.HandleFunc("/catalog/factories", handlers.ListFactories).Methods("GET")
	api.HandleFunc("/catalog/factories/{id}/lines", handlers.ListLines).Methods("GET")
	api.HandleFunc("/catalog/lines/{id}/teams", handlers.ListTeams).Methods("GET")
	api.HandleFunc("/catalog/teams/{id}/groups", handlers.ListGroups).Methods("GET")
	api.HandleFunc("/catalog/groups/{id}/workers", handlers.ListGroupWorkers).Methods("GET")
	api.HandleFunc("/catalog/handbags", handlers.ListHandBags).Methods("GET")
	api.HandleFunc("/catalog/processes", handlers.ListProcesses).Methods("GET")
}

// handleProfile returns the authenticated user's profile
func handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.CurrentUser(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"employeeCode": user.EmployeeCode,
		"role":         user.Role,
		"groupId":      user.GroupID,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
