package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

const jobColumns = `
	j.id,
	j.job_number,
	j.description,
	j.allocated_hours,
	j.consumed_hours,
	j.remaining_hours,
	j.progress_percentage,
	j.status,
	j.bottleneck_count,
	to_char(j.start_date, 'YYYY-MM-DD'),
	to_char(j.target_completion_date, 'YYYY-MM-DD'),
	to_char(j.actual_completion_date, 'YYYY-MM-DD'),
	j.total_hours_utilized,
	j.assignment_kind,
	j.created_at,
	j.version
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(s rowScanner) (*domain.Job, error) {
	job := &domain.Job{
		Technicians:         make([]domain.JobTechnician, 0),
		Subtasks:            make([]domain.Subtask, 0),
		ReassignmentHistory: make([]domain.ReassignmentRecord, 0),
	}

	var startDate, targetDate, actualDate sql.NullString
	dst := []any{
		&job.ID,
		&job.JobNumber,
		&job.Description,
		&job.AllocatedHours,
		&job.ConsumedHours,
		&job.RemainingHours,
		&job.ProgressPercentage,
		&job.Status,
		&job.BottleneckCount,
		&startDate,
		&targetDate,
		&actualDate,
		&job.TotalHoursUtilized,
		&job.AssignmentKind,
		&job.CreatedAt,
		&job.Version,
	}
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}

	job.StartDate = nullableDate(startDate)
	job.TargetCompletionDate = nullableDate(targetDate)
	job.ActualCompletionDate = nullableDate(actualDate)

	return job, nil
}

func (r *Repository) queryJobs(ctx context.Context, query string, args ...any) ([]*domain.Job, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := loadJobDetails(ctx, r.dbpool, jobs); err != nil {
		return nil, err
	}

	return jobs, nil
}

// loadJobDetails 补全工单的技师分配、子任务和改派记录
func loadJobDetails(ctx context.Context, q querier, jobs []*domain.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	jobsMap := make(map[int64]*domain.Job, len(jobs))
	ids := make([]int64, 0, len(jobs))
	for _, job := range jobs {
		jobsMap[job.ID] = job
		ids = append(ids, job.ID)
	}

	// 技师分配
	query := `
		SELECT jt.job_id, jt.technician_id, t.name, jt.allocated_hours, jt.confirmed, jt.confirmed_at
		FROM job_technicians jt
		JOIN technicians t ON t.id = jt.technician_id
		WHERE jt.job_id = ANY($1)
		ORDER BY jt.job_id, t.name
	`
	rows, err := q.QueryContext(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var jobID int64
		var jt domain.JobTechnician
		var confirmedAt sql.NullTime
		if err := rows.Scan(&jobID, &jt.TechnicianID, &jt.TechnicianName, &jt.AllocatedHours, &jt.Confirmed, &confirmedAt); err != nil {
			return err
		}
		if confirmedAt.Valid {
			jt.ConfirmedAt = &confirmedAt.Time
		}
		jobsMap[jobID].Technicians = append(jobsMap[jobID].Technicians, jt)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// 子任务及每个技师的进度
	query = `
		SELECT s.job_id, s.id, s.name, s.allocated_hours, p.technician_id, p.progress_percentage
		FROM job_subtasks s
		LEFT JOIN job_subtask_progress p ON p.subtask_id = s.id
		WHERE s.job_id = ANY($1)
		ORDER BY s.job_id, s.id, p.technician_id
	`
	subtaskRows, err := q.QueryContext(ctx, query, ids)
	if err != nil {
		return err
	}
	defer subtaskRows.Close()

	for subtaskRows.Next() {
		var row struct {
			JobID              int64
			SubtaskID          int64
			Name               string
			AllocatedHours     float64
			TechnicianID       sql.NullInt64
			ProgressPercentage sql.NullFloat64
		}
		dst := []any{&row.JobID, &row.SubtaskID, &row.Name, &row.AllocatedHours, &row.TechnicianID, &row.ProgressPercentage}
		if err := subtaskRows.Scan(dst...); err != nil {
			return err
		}

		job := jobsMap[row.JobID]
		st := job.Subtask(row.SubtaskID)
		if st == nil {
			// 第一次查到这个子任务
			job.Subtasks = append(job.Subtasks, domain.Subtask{
				ID:                   row.SubtaskID,
				Name:                 row.Name,
				AllocatedHours:       row.AllocatedHours,
				ProgressByTechnician: make([]domain.SubtaskProgress, 0),
			})
			st = &job.Subtasks[len(job.Subtasks)-1]
		}

		// 还没有任何技师上报进度
		if !row.TechnicianID.Valid {
			continue
		}

		st.ProgressByTechnician = append(st.ProgressByTechnician, domain.SubtaskProgress{
			TechnicianID:       row.TechnicianID.Int64,
			ProgressPercentage: row.ProgressPercentage.Float64,
		})
	}
	if err := subtaskRows.Err(); err != nil {
		return err
	}

	// 改派记录
	query = `
		SELECT job_id, from_technician_id, from_technician_name, to_technician_id, to_technician_name, reason, reassigned_at
		FROM job_reassignments
		WHERE job_id = ANY($1)
		ORDER BY job_id, reassigned_at
	`
	historyRows, err := q.QueryContext(ctx, query, ids)
	if err != nil {
		return err
	}
	defer historyRows.Close()

	for historyRows.Next() {
		var jobID int64
		var rec domain.ReassignmentRecord
		dst := []any{&jobID, &rec.FromTechnicianID, &rec.FromTechnicianName, &rec.ToTechnicianID, &rec.ToTechnicianName, &rec.Reason, &rec.ReassignedAt}
		if err := historyRows.Scan(dst...); err != nil {
			return err
		}
		jobsMap[jobID].ReassignmentHistory = append(jobsMap[jobID].ReassignmentHistory, rec)
	}

	return historyRows.Err()
}

func (r *Repository) GetAllJobs() ([]*domain.Job, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + jobColumns + ` FROM jobs j ORDER BY j.created_at DESC`

	return r.queryJobs(ctx, query)
}

func (r *Repository) GetJobsByTechnicianID(technicianID int64) ([]*domain.Job, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT ` + jobColumns + ` FROM jobs j
		WHERE EXISTS (SELECT 1 FROM job_technicians jt WHERE jt.job_id = j.id AND jt.technician_id = $1)
		ORDER BY j.created_at DESC
	`

	return r.queryJobs(ctx, query, technicianID)
}

func (r *Repository) GetJobByNumber(jobNumber string) (*domain.Job, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE j.job_number = $1`

	job, err := scanJob(r.dbpool.QueryRowContext(ctx, query, jobNumber))
	if err != nil {
		return nil, err
	}

	if err := loadJobDetails(ctx, r.dbpool, []*domain.Job{job}); err != nil {
		return nil, err
	}

	return job, nil
}

func (r *Repository) CreateJob(job *domain.Job) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO jobs (
			job_number,
			description,
			allocated_hours,
			consumed_hours,
			remaining_hours,
			progress_percentage,
			status,
			start_date,
			target_completion_date,
			assignment_kind
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, version
	`
	params := []any{
		job.JobNumber,
		job.Description,
		job.AllocatedHours,
		job.ConsumedHours,
		job.RemainingHours,
		job.ProgressPercentage,
		job.Status,
		job.StartDate,
		job.TargetCompletionDate,
		job.AssignmentKind,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&job.ID, &job.CreatedAt, &job.Version); err != nil {
		return err
	}

	for _, jt := range job.Technicians {
		if err := insertJobTechnician(ctx, tx, job.ID, jt); err != nil {
			return err
		}
	}

	for i := range job.Subtasks {
		if err := insertSubtask(ctx, tx, job.ID, &job.Subtasks[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func insertJobTechnician(ctx context.Context, q querier, jobID int64, jt domain.JobTechnician) error {
	query := `
		INSERT INTO job_technicians (job_id, technician_id, allocated_hours, confirmed, confirmed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.ExecContext(ctx, query, jobID, jt.TechnicianID, jt.AllocatedHours, jt.Confirmed, jt.ConfirmedAt)
	return err
}

func insertSubtask(ctx context.Context, q querier, jobID int64, st *domain.Subtask) error {
	query := `
		INSERT INTO job_subtasks (job_id, name, allocated_hours)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := q.QueryRowContext(ctx, query, jobID, st.Name, st.AllocatedHours).Scan(&st.ID); err != nil {
		return err
	}
	if st.ProgressByTechnician == nil {
		st.ProgressByTechnician = make([]domain.SubtaskProgress, 0)
	}
	return nil
}

// updateJob 带版本检查地更新工单，版本不匹配时返回 sql.ErrNoRows
func updateJob(ctx context.Context, q querier, job *domain.Job) error {
	query := `
		UPDATE jobs
		SET
			description = $1,
			allocated_hours = $2,
			consumed_hours = $3,
			remaining_hours = $4,
			progress_percentage = $5,
			status = $6,
			bottleneck_count = $7,
			start_date = $8,
			target_completion_date = $9,
			actual_completion_date = $10,
			total_hours_utilized = $11,
			assignment_kind = $12,
			version = version + 1
		WHERE id = $13 AND version = $14
		RETURNING version
	`
	params := []any{
		job.Description,
		job.AllocatedHours,
		job.ConsumedHours,
		job.RemainingHours,
		job.ProgressPercentage,
		job.Status,
		job.BottleneckCount,
		job.StartDate,
		job.TargetCompletionDate,
		job.ActualCompletionDate,
		job.TotalHoursUtilized,
		job.AssignmentKind,
		job.ID,
		job.Version,
	}
	return q.QueryRowContext(ctx, query, params...).Scan(&job.Version)
}

// updateJobAggregates 写入由工时记录推导出的字段，不做版本检查，后写入者覆盖
func updateJobAggregates(ctx context.Context, q querier, job *domain.Job) error {
	query := `
		UPDATE jobs
		SET
			consumed_hours = $1,
			remaining_hours = $2,
			progress_percentage = $3,
			status = $4,
			bottleneck_count = $5,
			version = version + 1
		WHERE id = $6
		RETURNING version
	`
	params := []any{
		job.ConsumedHours,
		job.RemainingHours,
		job.ProgressPercentage,
		job.Status,
		job.BottleneckCount,
		job.ID,
	}
	return q.QueryRowContext(ctx, query, params...).Scan(&job.Version)
}

func (r *Repository) UpdateJob(job *domain.Job) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	return updateJob(ctx, r.dbpool, job)
}

// UpdateJobAggregates 在事务之外单独写入工单汇总，例如技师被删除导致工时记录级联删除之后
func (r *Repository) UpdateJobAggregates(job *domain.Job) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	return updateJobAggregates(ctx, r.dbpool, job)
}

func (r *Repository) DeleteJob(id int64) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		DELETE FROM jobs WHERE id = $1
	`

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

// ConfirmJobAssignment 记录技师确认接单，同时写入重新推导的工单状态
func (r *Repository) ConfirmJobAssignment(job *domain.Job, technicianID int64, confirmedAt time.Time) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE job_technicians
		SET confirmed = TRUE, confirmed_at = $1
		WHERE job_id = $2 AND technician_id = $3
	`
	result, err := tx.ExecContext(ctx, query, confirmedAt, job.ID, technicianID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}

	if err := updateJobAggregates(ctx, tx, job); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// AddJobTechnician 为工单新增一名技师，工单需要已经被转换为 multi
func (r *Repository) AddJobTechnician(job *domain.Job, jt domain.JobTechnician) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertJobTechnician(ctx, tx, job.ID, jt); err != nil {
		return err
	}

	if err := updateJob(ctx, tx, job); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// ReassignJob 用新技师替换原技师，并追加一条改派记录
func (r *Repository) ReassignJob(job *domain.Job, record *domain.ReassignmentRecord, allocatedHours float64) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `DELETE FROM job_technicians WHERE job_id = $1 AND technician_id = $2`
	if _, err := tx.ExecContext(ctx, query, job.ID, record.FromTechnicianID); err != nil {
		return err
	}

	jt := domain.JobTechnician{
		TechnicianID:   record.ToTechnicianID,
		AllocatedHours: allocatedHours,
	}
	if err := insertJobTechnician(ctx, tx, job.ID, jt); err != nil {
		return err
	}

	query = `
		INSERT INTO job_reassignments (
			job_id,
			from_technician_id,
			from_technician_name,
			to_technician_id,
			to_technician_name,
			reason,
			reassigned_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	params := []any{
		job.ID,
		record.FromTechnicianID,
		record.FromTechnicianName,
		record.ToTechnicianID,
		record.ToTechnicianName,
		record.Reason,
		record.ReassignedAt,
	}
	if _, err := tx.ExecContext(ctx, query, params...); err != nil {
		return err
	}

	if err := updateJob(ctx, tx, job); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateSubtask(job *domain.Job, st *domain.Subtask) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := insertSubtask(ctx, tx, job.ID, st); err != nil {
		return err
	}

	if err := updateJobAggregates(ctx, tx, job); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpsertSubtaskProgress 写入技师在子任务上的进度，并更新工单汇总
func (r *Repository) UpsertSubtaskProgress(job *domain.Job, subtaskID int64, p domain.SubtaskProgress) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO job_subtask_progress (subtask_id, technician_id, progress_percentage)
		VALUES ($1, $2, $3)
		ON CONFLICT (subtask_id, technician_id) DO UPDATE SET progress_percentage = EXCLUDED.progress_percentage
	`
	if _, err := tx.ExecContext(ctx, query, subtaskID, p.TechnicianID, p.ProgressPercentage); err != nil {
		return err
	}

	if err := updateJobAggregates(ctx, tx, job); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
