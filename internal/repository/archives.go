package repository

import (
	"encoding/json"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

const archiveColumns = `
	id,
	month_year,
	to_char(start_date, 'YYYY-MM-DD'),
	to_char(end_date, 'YYYY-MM-DD'),
	working_days,
	total_hr_hours,
	total_productive_hours,
	total_weighted_overtime,
	technicians_summary,
	archived_at
`

func scanArchive(s rowScanner) (*domain.MonthlyArchive, error) {
	a := &domain.MonthlyArchive{}
	var summary []byte
	dst := []any{
		&a.ID,
		&a.MonthYear,
		&a.StartDate,
		&a.EndDate,
		&a.WorkingDays,
		&a.TotalHRHours,
		&a.TotalProductiveHours,
		&a.TotalWeightedOvertime,
		&summary,
		&a.ArchivedAt,
	}
	if err := s.Scan(dst...); err != nil {
		return nil, err
	}

	a.TechniciansSummary = make([]domain.TechnicianArchiveSummary, 0)
	if err := json.Unmarshal(summary, &a.TechniciansSummary); err != nil {
		return nil, err
	}

	return a, nil
}

func (r *Repository) GetAllArchives() ([]*domain.MonthlyArchive, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + archiveColumns + ` FROM monthly_archives ORDER BY end_date DESC`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	archives := make([]*domain.MonthlyArchive, 0)
	for rows.Next() {
		a, err := scanArchive(rows)
		if err != nil {
			return nil, err
		}
		archives = append(archives, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return archives, nil
}

// GetLatestArchive 没有任何归档时返回 sql.ErrNoRows
func (r *Repository) GetLatestArchive() (*domain.MonthlyArchive, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT ` + archiveColumns + ` FROM monthly_archives ORDER BY end_date DESC, id DESC LIMIT 1`

	return scanArchive(r.dbpool.QueryRowContext(ctx, query))
}

// CreateArchive 保存归档并清空本周期的全部工时记录与工作报告，工单本身保留
func (r *Repository) CreateArchive(a *domain.MonthlyArchive) error {
	summary, err := json.Marshal(a.TechniciansSummary)
	if err != nil {
		return err
	}

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
		INSERT INTO monthly_archives (
			month_year,
			start_date,
			end_date,
			working_days,
			total_hr_hours,
			total_productive_hours,
			total_weighted_overtime,
			technicians_summary,
			archived_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	params := []any{
		a.MonthYear,
		a.StartDate,
		a.EndDate,
		a.WorkingDays,
		a.TotalHRHours,
		a.TotalProductiveHours,
		a.TotalWeightedOvertime,
		string(summary),
		a.ArchivedAt,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&a.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM time_entries`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM job_reports`); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
