package handler

import "net/http"

func (h *Handler) GetAllJobReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.repository.GetAllJobReports()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "job reports retrieved", reports)
}
