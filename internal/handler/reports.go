package handler

import (
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/progress"
)

// GetPerformanceReport 可选参数 month 形如 2026-02
func (h *Handler) GetPerformanceReport(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			h.errorResponse(w, r, "invalid month, expected YYYY-MM")
			return
		}
	}

	technicians, err := h.repository.GetAllTechnicians()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	jobs, err := h.repository.GetAllJobs()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	entries, err := h.repository.GetAllTimeEntries()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "performance report generated", progress.Performance(technicians, jobs, entries, month, h.policy))
}
