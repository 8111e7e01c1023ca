package api

import (
	"github.com/gorilla/mux"

	"github.com/garnizeh/talentflow/internal/service"
)

func SetupRoutes(svc *service.Service, version, buildTime string) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := NewSystemHandler(svc)
	jobsHandler := NewJobsHandler(svc)
	candidatesHandler := NewCandidatesHandler(svc)
	assessmentsHandler := NewAssessmentsHandler(svc)

	// System endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")

	r.HandleFunc("/dashboard/summary", jobsHandler.DashboardSummary).Methods("GET")

	// Jobs endpoints
	r.HandleFunc("/jobs", jobsHandler.ListJobs).Methods("GET")
	r.HandleFunc("/jobs", jobsHandler.CreateJob).Methods("POST")
	r.HandleFunc("/jobs/{id:[0-9]+}", jobsHandler.GetJob).Methods("GET")
	r.HandleFunc("/jobs/{id:[0-9]+}", jobsHandler.PatchJob).Methods("PATCH")
	r.HandleFunc("/jobs/{id:[0-9]+}", jobsHandler.DeleteJob).Methods("DELETE")
	r.HandleFunc("/jobs/{id:[0-9]+}/reorder", jobsHandler.ReorderJob).Methods("PATCH")

	// Candidates endpoints
	r.HandleFunc("/candidates", candidatesHandler.ListCandidates).Methods("GET")
	r.HandleFunc("/candidates", candidatesHandler.CreateCandidate).Methods("POST")
	r.HandleFunc("/candidates/{id:[0-9]+}", candidatesHandler.GetCandidate).Methods("GET")
	r.HandleFunc("/candidates/{id:[0-9]+}", candidatesHandler.PatchCandidate).Methods("PATCH")
	r.HandleFunc("/candidates/{id:[0-9]+}/timeline", candidatesHandler.Timeline).Methods("GET")
	r.HandleFunc("/candidates/{id:[0-9]+}/notes", candidatesHandler.Notes).Methods("GET")
	r.HandleFunc("/candidates/{id:[0-9]+}/notes", candidatesHandler.AddNote).Methods("POST")
	r.HandleFunc("/notes/{id:[0-9]+}", candidatesHandler.PatchNote).Methods("PATCH")
	r.HandleFunc("/notes/{id:[0-9]+}", candidatesHandler.DeleteNote).Methods("DELETE")

	// Assessments endpoints
	r.HandleFunc("/assessments/{jobId:[0-9]+}", assessmentsHandler.ForJob).Methods("GET")
	r.HandleFunc("/assessments/{jobId:[0-9]+}", assessmentsHandler.Save).Methods("PUT")
	r.HandleFunc("/assessments/{jobId:[0-9]+}/submit", assessmentsHandler.Submit).Methods("POST")
	r.HandleFunc("/assessments/{jobId:[0-9]+}/submissions", assessmentsHandler.Submissions).Methods("GET")
	r.HandleFunc("/assessment/{id:[0-9]+}", assessmentsHandler.Get).Methods("GET")
	r.HandleFunc("/assessment/{id:[0-9]+}", assessmentsHandler.Delete).Methods("DELETE")

	return r
}
