package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

func (h *Handler) GetAllTechnicians(w http.ResponseWriter, r *http.Request) {
	technicians, err := h.repository.GetAllTechnicians()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "technicians retrieved", technicians)
}

func (h *Handler) CreateTechnician(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name" validate:"required,max=128"`
		EmployeeID string `json:"employeeID" validate:"required,max=64"`
		Department string `json:"department" validate:"max=128"`
		Status     string `json:"status" validate:"omitempty,oneof=active inactive"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	tech := &domain.Technician{
		Name:       req.Name,
		EmployeeID: req.EmployeeID,
		Department: req.Department,
		Status:     domain.TechnicianActive,
	}
	if req.Status != "" {
		tech.Status = domain.TechnicianStatus(req.Status)
	}

	if err := h.repository.CreateTechnician(tech); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "technicians_employee_id_key":
			h.errorResponse(w, r, "employee ID already exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "technician created", tech)
}

func (h *Handler) GetTechnician(w http.ResponseWriter, r *http.Request) {
	tech := r.Context().Value(TechnicianInfoCtxKey).(*domain.Technician)
	h.successResponse(w, r, "technician retrieved", tech)
}

func (h *Handler) UpdateTechnician(w http.ResponseWriter, r *http.Request) {
	tech := r.Context().Value(TechnicianInfoCtxKey).(*domain.Technician)

	var req struct {
		Name       *string `json:"name" validate:"omitempty,min=1,max=128"`
		EmployeeID *string `json:"employeeID" validate:"omitempty,min=1,max=64"`
		Department *string `json:"department" validate:"omitempty,max=128"`
		Status     *string `json:"status" validate:"omitempty,oneof=active inactive"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		tech.Name = *req.Name
	}
	if req.EmployeeID != nil {
		tech.EmployeeID = *req.EmployeeID
	}
	if req.Department != nil {
		tech.Department = *req.Department
	}
	if req.Status != nil {
		tech.Status = domain.TechnicianStatus(*req.Status)
	}

	if err := h.repository.UpdateTechnician(tech); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "technician was modified concurrently, please retry")
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "technicians_employee_id_key":
			h.errorResponse(w, r, "employee ID already exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "technician updated", tech)
}

// DeleteTechnician 会同时删除该技师的工时记录
func (h *Handler) DeleteTechnician(w http.ResponseWriter, r *http.Request) {
	tech := r.Context().Value(TechnicianInfoCtxKey).(*domain.Technician)

	entries, err := h.repository.GetTimeEntriesByTechnicianID(tech.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.DeleteTechnician(tech.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 被删除的工时记录所涉及的工单需要重新汇总
	recomputed := make(map[string]bool)
	for _, e := range entries {
		if recomputed[e.JobNumber] {
			continue
		}
		recomputed[e.JobNumber] = true

		if err := h.recomputeJob(e.JobNumber); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	h.successResponse(w, r, "technician deleted", nil)
}
