package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/position"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type positionRepositoryImpl struct {
	db *database.DB
}

func NewPositionRepository(db *database.DB) position.PositionRepository {
	return &positionRepositoryImpl{db: db}
}

const positionColumns = `id, department_id, title, level, description, is_active, created_at, updated_at`

func scanPosition(row pgx.Row) (position.Position, error) {
	var p position.Position
	var level string
	err := row.Scan(&p.ID, &p.DepartmentID, &p.Title, &level, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	p.Level = position.Level(level)
	return p, err
}

func positionError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return position.ErrPositionNotFound
	}
	if database.IsUnavailable(err) {
		return err
	}
	return fmt.Errorf("failed to %s position: %w", op, err)
}

// Create implements position.PositionRepository.
func (r *positionRepositoryImpl) Create(ctx context.Context, p position.Position) (position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO positions (department_id, title, level, description)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + positionColumns

	created, err := scanPosition(q.QueryRow(ctx, query, p.DepartmentID, p.Title, string(p.Level), p.Description))
	if err != nil {
		return position.Position{}, positionError("create", err)
	}
	return created, nil
}

// GetByID implements position.PositionRepository.
func (r *positionRepositoryImpl) GetByID(ctx context.Context, id int64) (position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = $1`
	p, err := scanPosition(q.QueryRow(ctx, query, id))
	if err != nil {
		return position.Position{}, positionError("get", err)
	}
	return p, nil
}

// ListAll implements position.PositionRepository.
func (r *positionRepositoryImpl) ListAll(ctx context.Context) ([]position.Position, error) {
	return r.list(ctx, `SELECT `+positionColumns+` FROM positions ORDER BY department_id ASC, id ASC`)
}

// ListActiveByDepartment implements position.PositionRepository.
func (r *positionRepositoryImpl) ListActiveByDepartment(ctx context.Context, departmentID int64) ([]position.Position, error) {
	return r.list(ctx, `SELECT `+positionColumns+` FROM positions
		WHERE department_id = $1 AND is_active = TRUE
		ORDER BY id ASC`, departmentID)
}

func (r *positionRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]position.Position, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get positions: %w", err)
	}
	defer rows.Close()

	positions := []position.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return positions, nil
}

// Update implements position.PositionRepository.
func (r *positionRepositoryImpl) Update(ctx context.Context, req position.UpdatePositionRequest) (position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE positions
		SET department_id = $1, title = $2, level = $3, description = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + positionColumns

	p, err := scanPosition(q.QueryRow(ctx, query, req.DepartmentID, req.Title, string(req.Level), req.Description, req.ID))
	if err != nil {
		return position.Position{}, positionError("update", err)
	}
	return p, nil
}

// SetActive implements position.PositionRepository.
func (r *positionRepositoryImpl) SetActive(ctx context.Context, id int64, active bool) (position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE positions SET is_active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + positionColumns

	p, err := scanPosition(q.QueryRow(ctx, query, active, id))
	if err != nil {
		return position.Position{}, positionError("toggle", err)
	}
	return p, nil
}
