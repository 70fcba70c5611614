package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/perfhub/perfhub-backend-go/internal/domain/kpi"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type kpiDefinitionRepositoryImpl struct {
	db *database.DB
}

func NewKpiDefinitionRepository(db *database.DB) kpi.DefinitionRepository {
	return &kpiDefinitionRepositoryImpl{db: db}
}

const kpiDefinitionColumns = `id, position_id, category, name, description, unit, calculation_method,
	weight, target_value, is_active, created_at, updated_at`

func scanKpiDefinition(row pgx.Row) (kpi.Definition, error) {
	var d kpi.Definition
	var target decimal.NullDecimal
	err := row.Scan(&d.ID, &d.PositionID, &d.Category, &d.Name, &d.Description, &d.Unit,
		&d.CalculationMethod, &d.Weight, &target, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	d.TargetValue = nullDecimalPtr(target)
	return d, err
}

func nullDecimalPtr(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	v := n.Decimal
	return &v
}

func kpiDefinitionError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return kpi.ErrDefinitionNotFound
	}
	if database.IsUnavailable(err) {
		return err
	}
	return fmt.Errorf("failed to %s kpi definition: %w", op, err)
}

// Create implements kpi.DefinitionRepository.
func (r *kpiDefinitionRepositoryImpl) Create(ctx context.Context, d kpi.Definition) (kpi.Definition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO kpi_definitions (position_id, category, name, description, unit,
			calculation_method, weight, target_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + kpiDefinitionColumns

	created, err := scanKpiDefinition(q.QueryRow(ctx, query,
		d.PositionID, d.Category, d.Name, d.Description, d.Unit,
		d.CalculationMethod, d.Weight, d.TargetValue))
	if err != nil {
		return kpi.Definition{}, kpiDefinitionError("create", err)
	}
	return created, nil
}

// GetByID implements kpi.DefinitionRepository.
func (r *kpiDefinitionRepositoryImpl) GetByID(ctx context.Context, id int64) (kpi.Definition, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanKpiDefinition(q.QueryRow(ctx, `SELECT `+kpiDefinitionColumns+` FROM kpi_definitions WHERE id = $1`, id))
	if err != nil {
		return kpi.Definition{}, kpiDefinitionError("get", err)
	}
	return d, nil
}

// ListActiveByPosition implements kpi.DefinitionRepository.
func (r *kpiDefinitionRepositoryImpl) ListActiveByPosition(ctx context.Context, positionID int64) ([]kpi.Definition, error) {
	return r.list(ctx, `SELECT `+kpiDefinitionColumns+` FROM kpi_definitions
		WHERE position_id = $1 AND is_active = TRUE
		ORDER BY category ASC, id ASC`, positionID)
}

// ListByPosition implements kpi.DefinitionRepository.
func (r *kpiDefinitionRepositoryImpl) ListByPosition(ctx context.Context, positionID int64) ([]kpi.Definition, error) {
	return r.list(ctx, `SELECT `+kpiDefinitionColumns+` FROM kpi_definitions
		WHERE position_id = $1
		ORDER BY category ASC, id ASC`, positionID)
}

func (r *kpiDefinitionRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]kpi.Definition, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list kpi definitions: %w", err)
	}
	defer rows.Close()

	defs := []kpi.Definition{}
	for rows.Next() {
		d, err := scanKpiDefinition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kpi definition: %w", err)
		}
		defs = append(defs, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return defs, nil
}

// Update implements kpi.DefinitionRepository.
func (r *kpiDefinitionRepositoryImpl) Update(ctx context.Context, d kpi.Definition) (kpi.Definition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE kpi_definitions
		SET category = $1, name = $2, description = $3, unit = $4, calculation_method = $5,
			weight = $6, target_value = $7, is_active = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + kpiDefinitionColumns

	updated, err := scanKpiDefinition(q.QueryRow(ctx, query,
		d.Category, d.Name, d.Description, d.Unit, d.CalculationMethod,
		d.Weight, d.TargetValue, d.IsActive, d.ID))
	if err != nil {
		return kpi.Definition{}, kpiDefinitionError("update", err)
	}
	return updated, nil
}
