package repository

import (
	"context"
	"database/sql"

	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

func insertJobReport(ctx context.Context, q querier, report *domain.JobReport) error {
	query := `
		INSERT INTO job_reports (
			job_number,
			technician_id,
			technician_name,
			report_date,
			work_completed,
			has_bottleneck,
			bottleneck_category,
			bottleneck_description
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	params := []any{
		report.JobNumber,
		report.TechnicianID,
		report.TechnicianName,
		report.Date,
		report.WorkCompleted,
		report.HasBottleneck,
		report.BottleneckCategory,
		report.BottleneckDescription,
	}
	return q.QueryRowContext(ctx, query, params...).Scan(&report.ID, &report.CreatedAt)
}

func (r *Repository) GetAllJobReports() ([]*domain.JobReport, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT
			id,
			job_number,
			technician_id,
			technician_name,
			to_char(report_date, 'YYYY-MM-DD'),
			work_completed,
			has_bottleneck,
			bottleneck_category,
			bottleneck_description,
			created_at
		FROM job_reports
		ORDER BY report_date DESC, created_at DESC
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]*domain.JobReport, 0)
	for rows.Next() {
		report := &domain.JobReport{}
		var category, description sql.NullString
		dst := []any{
			&report.ID,
			&report.JobNumber,
			&report.TechnicianID,
			&report.TechnicianName,
			&report.Date,
			&report.WorkCompleted,
			&report.HasBottleneck,
			&category,
			&description,
			&report.CreatedAt,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if category.Valid {
			c := domain.BottleneckCategory(category.String)
			report.BottleneckCategory = &c
		}
		if description.Valid {
			report.BottleneckDescription = &description.String
		}

		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reports, nil
}
