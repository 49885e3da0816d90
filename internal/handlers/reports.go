package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxReportWeeks = 52

func (h *Handler) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	weeks := parseInt(r.URL.Query().Get("weeks"), 4)
	if weeks > maxReportWeeks {
		respondError(w, http.StatusBadRequest, "too many weeks requested")
		return
	}
	report, err := h.reports.Weekly(r.Context(), weeks)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handler) EnqueueWeeklyReport(w http.ResponseWriter, r *http.Request) {
	weeks := parseInt(r.URL.Query().Get("weeks"), 4)
	if weeks > maxReportWeeks {
		respondError(w, http.StatusBadRequest, "too many weeks requested")
		return
	}
	jobID := h.runner.Enqueue(weeks)
	respondJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (h *Handler) GetReportJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, ok := h.runner.Get(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseInt(query.Get("limit"), 50)
	offset := (page - 1) * limit
	entries, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
