package api

import (
	"net/http"

	"github.com/garnizeh/talentflow/internal/assessment"
	"github.com/garnizeh/talentflow/internal/service"
)

type AssessmentsHandler struct {
	svc *service.Service
}

func NewAssessmentsHandler(svc *service.Service) *AssessmentsHandler {
	return &AssessmentsHandler{svc: svc}
}

func (h *AssessmentsHandler) ForJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	list, err := h.svc.GetAssessmentsForJob(r.Context(), jobID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

// Save creates an assessment, or edits one in place when the body carries its id.
func (h *AssessmentsHandler) Save(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var d assessment.Draft
	if err := decode(r, &d); err != nil {
		badRequest(w, "invalid assessment payload")
		return
	}
	a, err := h.svc.SaveAssessment(r.Context(), jobID, d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, a, http.StatusOK)
}

func (h *AssessmentsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var in service.SubmissionInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	sub, err := h.svc.SubmitAssessment(r.Context(), jobID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, sub, http.StatusCreated)
}

func (h *AssessmentsHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	jobID, err := pathID(r, "jobId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	subs, err := h.svc.ListSubmissions(r.Context(), jobID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, itemsResponse{Items: subs}, http.StatusOK)
}

func (h *AssessmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	a, err := h.svc.GetAssessment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, a, http.StatusOK)
}

func (h *AssessmentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.svc.DeleteAssessment(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
