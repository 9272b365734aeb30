package repository

import (
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

func (r *Repository) CreateTechnician(tech *domain.Technician) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO technicians (name, employee_id, department, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	args := []any{tech.Name, tech.EmployeeID, tech.Department, tech.Status}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&tech.ID, &tech.CreatedAt, &tech.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllTechnicians() ([]*domain.Technician, error) {
	query := `
		SELECT id, name, employee_id, department, status, created_at, version
		FROM technicians
		ORDER BY name
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	technicians := make([]*domain.Technician, 0)
	for rows.Next() {
		tech := &domain.Technician{}
		dst := []any{&tech.ID, &tech.Name, &tech.EmployeeID, &tech.Department, &tech.Status, &tech.CreatedAt, &tech.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		technicians = append(technicians, tech)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return technicians, nil
}

func (r *Repository) GetTechnicianByID(id int64) (*domain.Technician, error) {
	query := `
		SELECT name, employee_id, department, status, created_at, version
		FROM technicians WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	tech := &domain.Technician{
		ID: id,
	}

	dst := []any{&tech.Name, &tech.EmployeeID, &tech.Department, &tech.Status, &tech.CreatedAt, &tech.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return tech, nil
}

func (r *Repository) GetTechnicianByEmployeeID(employeeID string) (*domain.Technician, error) {
	query := `
		SELECT id, name, department, status, created_at, version
		FROM technicians WHERE employee_id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	tech := &domain.Technician{
		EmployeeID: employeeID,
	}

	dst := []any{&tech.ID, &tech.Name, &tech.Department, &tech.Status, &tech.CreatedAt, &tech.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, employeeID).Scan(dst...); err != nil {
		return nil, err
	}

	return tech, nil
}

func (r *Repository) UpdateTechnician(tech *domain.Technician) error {
	query := `
		UPDATE technicians
		SET
			name = $1,
			employee_id = $2,
			department = $3,
			status = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING created_at, version
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	args := []any{tech.Name, tech.EmployeeID, tech.Department, tech.Status, tech.ID, tech.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&tech.CreatedAt, &tech.Version); err != nil {
		return err
	}

	return nil
}

// DeleteTechnician 同时删除该技师的工时记录、报告和工单分配（外键级联）
func (r *Repository) DeleteTechnician(id int64) error {
	query := `
		DELETE FROM technicians WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
