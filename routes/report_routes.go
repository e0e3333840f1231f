package routes

import (
	"github.com/gorilla/mux"
	"p9e.in/prodtrack/handlers"
)

// RegisterReportRoutes sets up the aggregation and comparison endpoints
func RegisterReportRoutes(api *mux.Router) {
	reports := api.PathPrefix("/reports").Subrouter()

	reports.HandleFunc("/factory/{id}", handlers.FactoryReport).Methods("GET")
	reports.HandleFunc("/line/{id}", handlers.LineReport).Methods("GET")
	reports.HandleFunc("/team/{id}", handlers.TeamReport).Methods("GET")
	reports.HandleFunc("/group/{id}", handlers.GroupReport).Methods("GET")

	reports.HandleFunc("/compare", handlers.CompareEntities).Methods("GET")

	reports.HandleFunc("/{level}/{id}/export/excel", handlers.ExportReportToExcel).Methods("GET")
	reports.HandleFunc("/{level}/{id}/export/csv", handlers.ExportReportToCSV).Methods("GET")
}
