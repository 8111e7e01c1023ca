package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/garnizeh/talentflow/internal/service"
)

type CandidatesHandler struct {
	svc *service.Service
}

func NewCandidatesHandler(svc *service.Service) *CandidatesHandler {
	return &CandidatesHandler{svc: svc}
}

type itemsResponse struct {
	Items any `json:"items"`
}

func (h *CandidatesHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobID, _ := strconv.ParseInt(q.Get("jobId"), 10, 64)
	res, err := h.svc.ListCandidates(r.Context(), service.ListCandidatesParams{
		Search:   q.Get("search"),
		Stage:    q.Get("stage"),
		JobID:    jobID,
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

func (h *CandidatesHandler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	var in service.CandidateInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	c, err := h.svc.CreateCandidate(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, c, http.StatusCreated)
}

func (h *CandidatesHandler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := h.svc.GetCandidate(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, c, http.StatusOK)
}

// patchCandidateRequest keeps jobId raw so an explicit null can clear the
// reference while an absent key leaves it alone.
type patchCandidateRequest struct {
	Name  *string         `json:"name"`
	Email *string         `json:"email"`
	Stage *string         `json:"stage"`
	JobID json.RawMessage `json:"jobId"`
	Note  string          `json:"note"`
}

func (h *CandidatesHandler) PatchCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req patchCandidateRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	p := service.CandidatePatch{Name: req.Name, Email: req.Email, Stage: req.Stage, Note: req.Note}
	if len(req.JobID) > 0 {
		var jobID *int64
		if err := json.Unmarshal(req.JobID, &jobID); err != nil {
			badRequest(w, "jobId must be a number or null")
			return
		}
		if jobID == nil {
			jobID = new(int64)
		}
		p.JobID = jobID
	}

	c, err := h.svc.PatchCandidate(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, c, http.StatusOK)
}

func (h *CandidatesHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	items, err := h.svc.GetCandidateTimeline(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, itemsResponse{Items: items}, http.StatusOK)
}

func (h *CandidatesHandler) Notes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	items, err := h.svc.GetCandidateNotes(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, itemsResponse{Items: items}, http.StatusOK)
}

func (h *CandidatesHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var in service.NoteInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	n, err := h.svc.AddNote(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, n, http.StatusCreated)
}

func (h *CandidatesHandler) PatchNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var p service.NotePatch
	if err := decode(r, &p); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	n, err := h.svc.PatchNote(r.Context(), id, p)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, n, http.StatusOK)
}

func (h *CandidatesHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
