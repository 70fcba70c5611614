package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/department"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

const departmentColumns = `id, name, code, description, is_active, created_at, updated_at`

func scanDepartment(row pgx.Row) (department.Department, error) {
	var d department.Department
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func departmentError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return department.ErrDepartmentNotFound
	case isUniqueViolation(err):
		return department.ErrDepartmentCodeExists
	case database.IsUnavailable(err):
		return err
	}
	return fmt.Errorf("failed to %s department: %w", op, err)
}

// Create implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Create(ctx context.Context, d department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO departments (name, code, description)
		VALUES ($1, $2, $3)
		RETURNING ` + departmentColumns

	created, err := scanDepartment(q.QueryRow(ctx, query, d.Name, d.Code, d.Description))
	if err != nil {
		return department.Department{}, departmentError("create", err)
	}
	return created, nil
}

// GetByID implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) GetByID(ctx context.Context, id int64) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + departmentColumns + ` FROM departments WHERE id = $1`
	d, err := scanDepartment(q.QueryRow(ctx, query, id))
	if err != nil {
		return department.Department{}, departmentError("get", err)
	}
	return d, nil
}

// ListActive implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) ListActive(ctx context.Context) ([]department.Department, error) {
	return r.list(ctx, `SELECT `+departmentColumns+` FROM departments WHERE is_active = TRUE ORDER BY id ASC`)
}

// ListAll implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) ListAll(ctx context.Context) ([]department.Department, error) {
	return r.list(ctx, `SELECT `+departmentColumns+` FROM departments ORDER BY id ASC`)
}

func (r *departmentRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	departments := []department.Department{}
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return departments, nil
}

// Update implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Update(ctx context.Context, req department.UpdateDepartmentRequest) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE departments
		SET name = $1, code = $2, description = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + departmentColumns

	d, err := scanDepartment(q.QueryRow(ctx, query, req.Name, req.Code, req.Description, req.ID))
	if err != nil {
		return department.Department{}, departmentError("update", err)
	}
	return d, nil
}

// SetActive implements department.DepartmentRepository. Positions are left untouched.
func (r *departmentRepositoryImpl) SetActive(ctx context.Context, id int64, active bool) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE departments SET is_active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + departmentColumns

	d, err := scanDepartment(q.QueryRow(ctx, query, active, id))
	if err != nil {
		return department.Department{}, departmentError("toggle", err)
	}
	return d, nil
}
