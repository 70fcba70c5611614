package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/jobduty"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type jobDutyRepositoryImpl struct {
	db *database.DB
}

func NewJobDutyRepository(db *database.DB) jobduty.JobDutyRepository {
	return &jobDutyRepositoryImpl{db: db}
}

const jobDutyColumns = `id, position_id, code, title, description, category, sort_order, is_active, created_at, updated_at`

func scanJobDuty(row pgx.Row) (jobduty.JobDuty, error) {
	var d jobduty.JobDuty
	err := row.Scan(&d.ID, &d.PositionID, &d.Code, &d.Title, &d.Description, &d.Category,
		&d.SortOrder, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func jobDutyError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return jobduty.ErrJobDutyNotFound
	}
	if database.IsUnavailable(err) {
		return err
	}
	return fmt.Errorf("failed to %s job duty: %w", op, err)
}

// Create implements jobduty.JobDutyRepository.
func (r *jobDutyRepositoryImpl) Create(ctx context.Context, d jobduty.JobDuty) (jobduty.JobDuty, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO job_duties (position_id, code, title, description, category, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + jobDutyColumns

	created, err := scanJobDuty(q.QueryRow(ctx, query,
		d.PositionID, d.Code, d.Title, d.Description, d.Category, d.SortOrder))
	if err != nil {
		return jobduty.JobDuty{}, jobDutyError("create", err)
	}
	return created, nil
}

// GetByID implements jobduty.JobDutyRepository.
func (r *jobDutyRepositoryImpl) GetByID(ctx context.Context, id int64) (jobduty.JobDuty, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanJobDuty(q.QueryRow(ctx, `SELECT `+jobDutyColumns+` FROM job_duties WHERE id = $1`, id))
	if err != nil {
		return jobduty.JobDuty{}, jobDutyError("get", err)
	}
	return d, nil
}

// ListAll implements jobduty.JobDutyRepository.
func (r *jobDutyRepositoryImpl) ListAll(ctx context.Context) ([]jobduty.JobDuty, error) {
	return r.list(ctx, `SELECT `+jobDutyColumns+` FROM job_duties ORDER BY position_id ASC, sort_order ASC, id ASC`)
}

// ListActiveByPosition implements jobduty.JobDutyRepository.
func (r *jobDutyRepositoryImpl) ListActiveByPosition(ctx context.Context, positionID int64) ([]jobduty.JobDuty, error) {
	return r.list(ctx, `SELECT `+jobDutyColumns+` FROM job_duties
		WHERE position_id = $1 AND is_active = TRUE
		ORDER BY sort_order ASC, id ASC`, positionID)
}

func (r *jobDutyRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]jobduty.JobDuty, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get job duties: %w", err)
	}
	defer rows.Close()

	duties := []jobduty.JobDuty{}
	for rows.Next() {
		d, err := scanJobDuty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job duty: %w", err)
		}
		duties = append(duties, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return duties, nil
}

// Update implements jobduty.JobDutyRepository.
func (r *jobDutyRepositoryImpl) Update(ctx context.Context, req jobduty.UpdateJobDutyRequest) (jobduty.JobDuty, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE job_duties
		SET position_id = $1, code = $2, title = $3, description = $4, category = $5,
			sort_order = COALESCE($6, sort_order), updated_at = NOW()
		WHERE id = $7
		RETURNING ` + jobDutyColumns

	d, err := scanJobDuty(q.QueryRow(ctx, query,
		req.PositionID, req.Code, req.Title, req.Description, req.Category, req.SortOrder, req.ID))
	if err != nil {
		return jobduty.JobDuty{}, jobDutyError("update", err)
	}
	return d, nil
}

// SetActive implements jobduty.JobDutyRepository.
func (r *jobDutyRepositoryImpl) SetActive(ctx context.Context, id int64, active bool) (jobduty.JobDuty, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE job_duties SET is_active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + jobDutyColumns

	d, err := scanJobDuty(q.QueryRow(ctx, query, active, id))
	if err != nil {
		return jobduty.JobDuty{}, jobDutyError("toggle", err)
	}
	return d, nil
}
