package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/hours"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/progress"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/utils"
)

// PreviewTimeEntry 只计算不保存，供前端在提交前展示
func (h *Handler) PreviewTimeEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date            string `json:"date" validate:"required"`
		StartTime       string `json:"startTime" validate:"required"`
		EndTime         string `json:"endTime" validate:"required"`
		FirstEntryOfDay *bool  `json:"firstEntryOfDay"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateShift(req.Date, req.StartTime, req.EndTime); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	first := true
	if req.FirstEntryOfDay != nil {
		first = *req.FirstEntryOfDay
	}

	b, err := h.policy.CalculateStrings(req.Date, req.StartTime, req.EndTime, first)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.successResponse(w, r, "time entry calculated", b)
}

type jobReportRequest struct {
	WorkCompleted         string  `json:"workCompleted" validate:"max=2000"`
	HasBottleneck         bool    `json:"hasBottleneck"`
	BottleneckCategory    *string `json:"bottleneckCategory"`
	BottleneckDescription *string `json:"bottleneckDescription" validate:"omitempty,max=2000"`
}

func (h *Handler) SubmitTimeEntry(w http.ResponseWriter, r *http.Request) {
	tech := r.Context().Value(CurrentTechnicianCtxKey).(*domain.Technician)

	var req struct {
		TimeEntry struct {
			Date      string `json:"date" validate:"required"`
			StartTime string `json:"startTime" validate:"required"`
			EndTime   string `json:"endTime" validate:"required"`
			JobNumber string `json:"jobNumber" validate:"required"`
			Notes     string `json:"notes" validate:"max=2000"`
		} `json:"timeEntry"`
		Report *jobReportRequest `json:"report"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	job, err := h.repository.GetJobByNumber(req.TimeEntry.JobNumber)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "job not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	assignment := job.Assignment(tech.ID)
	if assignment == nil {
		h.errorResponse(w, r, "job not found")
		return
	}
	if job.IsCompleted() {
		h.errorResponse(w, r, "job is already completed")
		return
	}
	if !assignment.Confirmed {
		h.errorResponse(w, r, "please confirm the job before logging hours")
		return
	}

	dayEntries, err := h.repository.GetTimeEntriesByTechnicianAndDate(tech.ID, req.TimeEntry.Date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	entry, clamped, err := utils.BuildTimeEntry(h.policy, h.capacity, tech, job, utils.TimeEntryInput{
		Date:      req.TimeEntry.Date,
		StartTime: req.TimeEntry.StartTime,
		EndTime:   req.TimeEntry.EndTime,
		Notes:     req.TimeEntry.Notes,
	}, dayEntries)
	if err != nil {
		switch {
		case errors.Is(err, hours.ErrInvalidDate),
			errors.Is(err, hours.ErrInvalidTime),
			errors.Is(err, hours.ErrZeroLengthShift),
			errors.Is(err, hours.ErrCapacityExceeded),
			errors.Is(err, utils.ErrDailyBudgetExhausted),
			errors.Is(err, utils.ErrDuplicateJobEntry):
			h.errorResponse(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// 只有填写了工作内容才生成报告
	var report *domain.JobReport
	if req.Report != nil && req.Report.WorkCompleted != "" {
		report = &domain.JobReport{
			JobNumber:             job.JobNumber,
			TechnicianID:          tech.ID,
			TechnicianName:        tech.Name,
			Date:                  entry.Date,
			WorkCompleted:         req.Report.WorkCompleted,
			HasBottleneck:         req.Report.HasBottleneck,
			BottleneckDescription: req.Report.BottleneckDescription,
		}
		if req.Report.HasBottleneck && req.Report.BottleneckCategory != nil {
			category := domain.BottleneckCategory(*req.Report.BottleneckCategory)
			report.BottleneckCategory = &category
		}
		if !report.HasBottleneck {
			report.BottleneckDescription = nil
		}
		if err := utils.ValidateJobReport(report); err != nil {
			h.errorResponse(w, r, err.Error())
			return
		}
		if report.HasBottleneck {
			job.BottleneckCount++
		}
	}

	jobEntries, err := h.repository.GetTimeEntriesByJobNumber(job.JobNumber)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	before := job.Status
	progress.Apply(job, append(jobEntries, entry))

	if err := h.repository.SubmitTimeEntry(entry, report, job); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "time_entries_technician_date_job_key":
			h.errorResponse(w, r, utils.ErrDuplicateJobEntry.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.notifyJobAlert(before, job)

	h.successResponse(w, r, "time entry submitted", map[string]any{
		"timeEntry": entry,
		"report":    report,
		"job":       job,
		"warnings":  clamped.Warnings,
	})
}

// GetTimeEntries 主管可以按技师或工单过滤，技师只能看到自己的记录
func (h *Handler) GetTimeEntries(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	var entries []*domain.TimeEntry
	var err error
	switch {
	case !session.IsSupervisor():
		entries, err = h.repository.GetTimeEntriesByTechnicianID(session.Subject)
	case r.URL.Query().Get("technicianID") != "":
		id, perr := strconv.ParseInt(r.URL.Query().Get("technicianID"), 10, 64)
		if perr != nil {
			h.errorResponse(w, r, "invalid technician ID")
			return
		}
		entries, err = h.repository.GetTimeEntriesByTechnicianID(id)
	case r.URL.Query().Get("jobNumber") != "":
		entries, err = h.repository.GetTimeEntriesByJobNumber(r.URL.Query().Get("jobNumber"))
	default:
		entries, err = h.repository.GetAllTimeEntries()
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "time entries retrieved", entries)
}

// DeleteTimeEntry 删除记录后重新汇总所属工单
func (h *Handler) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid time entry ID")
		return
	}

	entry, err := h.repository.GetTimeEntryByID(id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "time entry not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	job, err := h.repository.GetJobByNumber(entry.JobNumber)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		job = nil
	case err != nil:
		h.internalServerError(w, r, err)
		return
	default:
		jobEntries, err := h.repository.GetTimeEntriesByJobNumber(job.JobNumber)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		jobEntries = slices.DeleteFunc(jobEntries, func(e *domain.TimeEntry) bool { return e.ID == id })
		progress.Apply(job, jobEntries)
	}

	if err := h.repository.DeleteTimeEntry(id, job); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "time entry deleted", nil)
}
