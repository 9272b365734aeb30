package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/progress"
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/utils"
)

const jobConflictMessage = "job was modified concurrently, please retry"

// recomputeJob 根据工单现有的全部工时记录重新汇总，工单不存在时忽略
func (h *Handler) recomputeJob(jobNumber string) error {
	job, err := h.repository.GetJobByNumber(jobNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	entries, err := h.repository.GetTimeEntriesByJobNumber(jobNumber)
	if err != nil {
		return err
	}

	progress.Apply(job, entries)
	return h.repository.UpdateJobAggregates(job)
}

// loadActiveTechnician 用于分配或改派工单，技师必须存在且在职
func (h *Handler) loadActiveTechnician(id int64) (*domain.Technician, string, error) {
	tech, err := h.repository.GetTechnicianByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "technician " + strconv.FormatInt(id, 10) + " not found", nil
		}
		return nil, "", err
	}
	if !tech.IsActive() {
		return nil, "technician " + tech.Name + " is inactive", nil
	}
	return tech, "", nil
}

func (h *Handler) GetAllJobs(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)

	var jobs []*domain.Job
	var err error
	if session.IsSupervisor() {
		jobs, err = h.repository.GetAllJobs()
	} else {
		jobs, err = h.repository.GetJobsByTechnicianID(session.Subject)
	}
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "jobs retrieved", jobs)
}

func (h *Handler) GetAtRiskJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.repository.GetAllJobs()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "at-risk jobs retrieved", progress.AtRisk(jobs))
}

func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobNumber            string  `json:"jobNumber" validate:"required,max=64"`
		Description          string  `json:"description"`
		AllocatedHours       float64 `json:"allocatedHours" validate:"gte=0"`
		StartDate            *string `json:"startDate"`
		TargetCompletionDate *string `json:"targetCompletionDate"`
		AssignmentKind       string  `json:"assignmentKind" validate:"required,oneof=single multi"`
		Technicians          []struct {
			TechnicianID   int64   `json:"technicianID" validate:"required"`
			AllocatedHours float64 `json:"allocatedHours" validate:"gte=0"`
		} `json:"technicians" validate:"required,min=1,dive"`
		Subtasks []struct {
			Name           string  `json:"name" validate:"required,max=128"`
			AllocatedHours float64 `json:"allocatedHours" validate:"gte=0"`
		} `json:"subtasks" validate:"dive"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	job := &domain.Job{
		JobNumber:            req.JobNumber,
		Description:          req.Description,
		AllocatedHours:       req.AllocatedHours,
		Status:               domain.JobPendingConfirmation,
		StartDate:            req.StartDate,
		TargetCompletionDate: req.TargetCompletionDate,
		AssignmentKind:       domain.AssignmentKind(req.AssignmentKind),
		Technicians:          make([]domain.JobTechnician, 0, len(req.Technicians)),
		Subtasks:             make([]domain.Subtask, 0, len(req.Subtasks)),
		ReassignmentHistory:  make([]domain.ReassignmentRecord, 0),
	}

	for _, t := range req.Technicians {
		tech, msg, err := h.loadActiveTechnician(t.TechnicianID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if tech == nil {
			h.errorResponse(w, r, msg)
			return
		}

		jt := domain.JobTechnician{
			TechnicianID:   tech.ID,
			TechnicianName: tech.Name,
			AllocatedHours: t.AllocatedHours,
		}
		// 单人工单的技师默认承担全部工时
		if job.AssignmentKind == domain.AssignmentSingle && jt.AllocatedHours == 0 {
			jt.AllocatedHours = job.AllocatedHours
		}
		job.Technicians = append(job.Technicians, jt)
	}

	for _, st := range req.Subtasks {
		job.Subtasks = append(job.Subtasks, domain.Subtask{
			Name:                 st.Name,
			AllocatedHours:       st.AllocatedHours,
			ProgressByTechnician: make([]domain.SubtaskProgress, 0),
		})
	}

	if err := utils.ValidateAssignment(job.AssignmentKind, job.Technicians); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateJobDates(job.StartDate, job.TargetCompletionDate); err != nil {
		h.badRequest(w, r, err)
		return
	}

	progress.Refresh(job)

	if err := h.repository.CreateJob(job); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "jobs_job_number_key":
			h.errorResponse(w, r, "job number already exists")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "job created", job)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtxKey).(*domain.Job)
	h.successResponse(w, r, "job retrieved", job)
}

func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtxKey).(*domain.Job)

	var req struct {
		Description          *string  `json:"description"`
		AllocatedHours       *float64 `json:"allocatedHours" validate:"omitempty,gte=0"`
		StartDate            *string  `json:"startDate"`
		TargetCompletionDate *string  `json:"targetCompletionDate"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Description != nil {
		job.Description = *req.Description
	}
	if req.AllocatedHours != nil {
		job.AllocatedHours = *req.AllocatedHours
	}
	if req.StartDate != nil {
		job.StartDate = req.StartDate
	}
	if req.TargetCompletionDate != nil {
		job.TargetCompletionDate = req.TargetCompletionDate
	}

	if err := utils.ValidateJobDates(job.StartDate, job.TargetCompletionDate); err != nil {
		h.badRequest(w, r, err)
		return
	}

	before := job.Status
	progress.Refresh(job)

	if err := h.repository.UpdateJob(job); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, jobConflictMessage)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.notifyJobAlert(before, job)

	h.successResponse(w, r, "job updated", job)
}

func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtxKey).(*domain.Job)

	if err := h.repository.DeleteJob(job.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "job deleted", nil)
}

func (h *Handler) ConfirmJob(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtxKey).(*domain.Job)
	tech := r.Context().Value(CurrentTechnicianCtxKey).(*domain.Technician)

	if job.IsCompleted() {
		h.errorResponse(w, r, "job is already completed")
		return
	}

	assignment := job.Assignment(tech.ID)
	if assignment == nil {
		h.errorResponse(w, r, "you are not assigned to this job")
		return
	}
	if assignment.Confirmed {
		h.errorResponse(w, r, "job already confirmed")
		return
	}

	now := h.now()
	assignment.Confirmed = true
	assignment.ConfirmedAt = &now
	progress.Refresh(job)

	if err := h.repository.ConfirmJobAssignment(job, tech.ID, now); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "you are not assigned to this job")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "job confirmed", job)
}

// CompleteJob 主管或被分配的技师都可以将工单标记为完成
func (h *Handler) CompleteJob(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtxKey).(*domain.Job)

	if job.IsCompleted() {
		h.errorResponse(w, r, "job is already completed")
		return
	}

	progress.Complete(job, h.now())

	if err := h.repository.UpdateJob(job); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, jobConflictMessage)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "job completed", job)
}

func (h *Handler) ReassignJob(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtxKey).(*domain.Job)

	var req struct {
		FromTechnicianID int64  `json:"fromTechnicianID"`
		ToTechnicianID   int64  `json:"toTechnicianID" validate:"required"`
		Reason           string `json:"reason" validate:"max=1000"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if job.IsCompleted() {
		h.errorResponse(w, r, "job is already completed")
		return
	}

	// 单人工单可以省略原技师
	if req.FromTechnicianID == 0 && job.AssignmentKind == domain.AssignmentSingle && len(job.Technicians) == 1 {
		req.FromTechnicianID = job.Technicians[0].TechnicianID
	}

	from := job.Assignment(req.FromTechnicianID)
	if from == nil {
		h.errorResponse(w, r, "the technician being replaced is not assigned to this job")
		return
	}
	if job.IsAssignedTo(req.ToTechnicianID) {
		h.errorResponse(w, r, "the new technician is already assigned to this job")
		return
	}

	to, msg, err := h.loadActiveTechnician(req.ToTechnicianID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if to == nil {
		h.errorResponse(w, r, msg)
		return
	}

	record := &domain.ReassignmentRecord{
		FromTechnicianID:   from.TechnicianID,
		FromTechnicianName: from.TechnicianName,
		ToTechnicianID:     to.ID,
		ToTechnicianName:   to.Name,
		Reason:             req.Reason,
		ReassignedAt:       h.now(),
	}
	allocated := from.AllocatedHours

	// 新技师需要重新确认
	*from = domain.JobTechnician{
		TechnicianID:   to.ID,
		TechnicianName: to.Name,
		AllocatedHours: allocated,
	}
	job.ReassignmentHistory = append(job.ReassignmentHistory, *record)
	progress.Refresh(job)

	if err := h.repository.ReassignJob(job, record, allocated); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, jobConflictMessage)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.notifyReassignment(job, record)

	h.successResponse(w, r, "job reassigned", job)
}

// AddJobTechnician 向工单追加技师，单人工单会转换为多人工单
func (h *Handler) AddJobTechnician(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtxKey).(*domain.Job)

	var req struct {
		TechnicianID   int64   `json:"technicianID" validate:"required"`
		AllocatedHours float64 `json:"allocatedHours" validate:"gte=0"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if job.IsCompleted() {
		h.errorResponse(w, r, "job is already completed")
		return
	}
	if job.IsAssignedTo(req.TechnicianID) {
		h.errorResponse(w, r, "technician is already assigned to this job")
		return
	}

	tech, msg, err := h.loadActiveTechnician(req.TechnicianID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if tech == nil {
		h.errorResponse(w, r, msg)
		return
	}

	jt := domain.JobTechnician{
		TechnicianID:   tech.ID,
		TechnicianName: tech.Name,
		AllocatedHours: req.AllocatedHours,
	}
	job.AssignmentKind = domain.AssignmentMulti
	job.Technicians = append(job.Technicians, jt)
	progress.Refresh(job)

	if err := h.repository.AddJobTechnician(job, jt); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, jobConflictMessage)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "technician added to job", job)
}

func (h *Handler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtxKey).(*domain.Job)

	var req struct {
		Name           string  `json:"name" validate:"required,max=128"`
		AllocatedHours float64 `json:"allocatedHours" validate:"gte=0"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	job.Subtasks = append(job.Subtasks, domain.Subtask{
		Name:                 req.Name,
		AllocatedHours:       req.AllocatedHours,
		ProgressByTechnician: make([]domain.SubtaskProgress, 0),
	})
	progress.Refresh(job)

	if err := h.repository.CreateSubtask(job, &job.Subtasks[len(job.Subtasks)-1]); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "subtask created", job)
}

func (h *Handler) UpdateSubtaskProgress(w http.ResponseWriter, r *http.Request) {
	job := r.Context().Value(JobCtxKey).(*domain.Job)
	session := sessionFrom(r)

	subtaskID, err := strconv.ParseInt(chi.URLParam(r, "subtaskID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "invalid subtask ID")
		return
	}

	var req struct {
		ProgressPercentage *float64 `json:"progressPercentage" validate:"required,gte=0,lte=100"`
	}

	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if job.IsCompleted() {
		h.errorResponse(w, r, "job is already completed")
		return
	}

	st := job.Subtask(subtaskID)
	if st == nil {
		h.errorResponse(w, r, "subtask not found")
		return
	}

	p := domain.SubtaskProgress{
		TechnicianID:       session.Subject,
		ProgressPercentage: *req.ProgressPercentage,
	}
	updated := false
	for i := range st.ProgressByTechnician {
		if st.ProgressByTechnician[i].TechnicianID == p.TechnicianID {
			st.ProgressByTechnician[i] = p
			updated = true
		}
	}
	if !updated {
		st.ProgressByTechnician = append(st.ProgressByTechnician, p)
	}

	before := job.Status
	progress.Refresh(job)

	if err := h.repository.UpsertSubtaskProgress(job, subtaskID, p); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.notifyJobAlert(before, job)

	h.successResponse(w, r, "subtask progress updated", job)
}
