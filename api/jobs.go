package api

import (
	"net/http"

	"github.com/garnizeh/talentflow/internal/service"
)

type JobsHandler struct {
	svc *service.Service
}

func NewJobsHandler(svc *service.Service) *JobsHandler {
	return &JobsHandler{svc: svc}
}

func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.ListJobs(r.Context(), service.ListJobsParams{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Sort:     q.Get("sort"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "pageSize"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var in service.JobInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	j, err := h.svc.CreateJob(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, j, http.StatusCreated)
}

func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	j, err := h.svc.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, j, http.StatusOK)
}

func (h *JobsHandler) PatchJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var p service.JobPatch
	if err := decode(r, &p); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	j, err := h.svc.PatchJob(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, j, http.StatusOK)
}

func (h *JobsHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.svc.DeleteJob(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	FromOrder int `json:"fromOrder"`
	ToOrder   int `json:"toOrder"`
}

func (h *JobsHandler) ReorderJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	res, err := h.svc.ReorderJob(r.Context(), id, req.FromOrder, req.ToOrder)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

func (h *JobsHandler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.GetDashboardSummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, sum, http.StatusOK)
}
