package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

const timeEntryColumns = `
	id,
	technician_id,
	technician_name,
	to_char(entry_date, 'YYYY-MM-DD'),
	day_of_week,
	start_time,
	end_time,
	job_number,
	total_worked_hours,
	hr_hours,
	productive_hours,
	overtime_hours,
	overtime_rate,
	weighted_overtime,
	notes,
	created_at
`

func (r *Repository) queryTimeEntries(ctx context.Context, query string, args ...any) ([]*domain.TimeEntry, error) {
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.TimeEntry, 0)
	for rows.Next() {
		e := &domain.TimeEntry{}
		dst := []any{
			&e.ID,
			&e.TechnicianID,
			&e.TechnicianName,
			&e.Date,
			&e.DayOfWeek,
			&e.StartTime,
			&e.EndTime,
			&e.JobNumber,
			&e.TotalWorkedHours,
			&e.HRHours,
			&e.ProductiveHours,
			&e.OvertimeHours,
			&e.OvertimeRate,
			&e.WeightedOvertime,
			&e.Notes,
			&e.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *Repository) GetAllTimeEntries() ([]*domain.TimeEntry, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries ORDER BY entry_date DESC, created_at DESC`

	return r.queryTimeEntries(ctx, query)
}

func (r *Repository) GetTimeEntriesByTechnicianID(technicianID int64) ([]*domain.TimeEntry, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT ` + timeEntryColumns + ` FROM time_entries
		WHERE technician_id = $1
		ORDER BY entry_date DESC, created_at DESC
	`

	return r.queryTimeEntries(ctx, query, technicianID)
}

func (r *Repository) GetTimeEntriesByJobNumber(jobNumber string) ([]*domain.TimeEntry, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT ` + timeEntryColumns + ` FROM time_entries
		WHERE job_number = $1
		ORDER BY entry_date, created_at
	`

	return r.queryTimeEntries(ctx, query, jobNumber)
}

// GetTimeEntriesByTechnicianAndDate 返回技师某一天的全部记录，用于判断是否为当天第一条以及当天剩余预算
func (r *Repository) GetTimeEntriesByTechnicianAndDate(technicianID int64, date string) ([]*domain.TimeEntry, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT ` + timeEntryColumns + ` FROM time_entries
		WHERE technician_id = $1 AND entry_date = $2
		ORDER BY created_at
	`

	return r.queryTimeEntries(ctx, query, technicianID, date)
}

func (r *Repository) GetTimeEntryByID(id int64) (*domain.TimeEntry, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = $1`

	e := &domain.TimeEntry{}
	dst := []any{
		&e.ID,
		&e.TechnicianID,
		&e.TechnicianName,
		&e.Date,
		&e.DayOfWeek,
		&e.StartTime,
		&e.EndTime,
		&e.JobNumber,
		&e.TotalWorkedHours,
		&e.HRHours,
		&e.ProductiveHours,
		&e.OvertimeHours,
		&e.OvertimeRate,
		&e.WeightedOvertime,
		&e.Notes,
		&e.CreatedAt,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return e, nil
}

// SubmitTimeEntry 在一个事务中写入工时记录、可选的工作报告以及工单的最新汇总
func (r *Repository) SubmitTimeEntry(entry *domain.TimeEntry, report *domain.JobReport, job *domain.Job) error {
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
		INSERT INTO time_entries (
			technician_id,
			technician_name,
			entry_date,
			day_of_week,
			start_time,
			end_time,
			job_number,
			total_worked_hours,
			hr_hours,
			productive_hours,
			overtime_hours,
			overtime_rate,
			weighted_overtime,
			notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`
	params := []any{
		entry.TechnicianID,
		entry.TechnicianName,
		entry.Date,
		entry.DayOfWeek,
		entry.StartTime,
		entry.EndTime,
		entry.JobNumber,
		entry.TotalWorkedHours,
		entry.HRHours,
		entry.ProductiveHours,
		entry.OvertimeHours,
		entry.OvertimeRate,
		entry.WeightedOvertime,
		entry.Notes,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return err
	}

	if report != nil {
		if err := insertJobReport(ctx, tx, report); err != nil {
			return err
		}
	}

	if job != nil {
		if err := updateJobAggregates(ctx, tx, job); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// DeleteTimeEntry 删除一条记录，job 不为空时同时写入重新计算后的工单汇总
func (r *Repository) DeleteTimeEntry(id int64, job *domain.Job) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `DELETE FROM time_entries WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	if job != nil {
		if err := updateJobAggregates(ctx, tx, job); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
