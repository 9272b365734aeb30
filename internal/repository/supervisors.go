package repository

import (
	"github.com/sysu-ecnc-dev/workshop-labour/backend/internal/domain"
)

func (r *Repository) CreateSupervisor(supervisor *domain.Supervisor) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO supervisors (username, code_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	args := []any{supervisor.Username, supervisor.CodeHash, supervisor.FullName}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&supervisor.ID, &supervisor.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSupervisorByUsername(username string) (*domain.Supervisor, error) {
	query := `
		SELECT id, code_hash, full_name, created_at
		FROM supervisors WHERE username = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	supervisor := &domain.Supervisor{
		Username: username,
	}

	dst := []any{&supervisor.ID, &supervisor.CodeHash, &supervisor.FullName, &supervisor.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}

	return supervisor, nil
}

func (r *Repository) GetSupervisorByID(id int64) (*domain.Supervisor, error) {
	query := `
		SELECT username, code_hash, full_name, created_at
		FROM supervisors WHERE id = $1
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	supervisor := &domain.Supervisor{
		ID: id,
	}

	dst := []any{&supervisor.Username, &supervisor.CodeHash, &supervisor.FullName, &supervisor.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return supervisor, nil
}
