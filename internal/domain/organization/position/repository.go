package position

import "context"

type PositionRepository interface {
	Create(ctx context.Context, p Position) (Position, error)
	GetByID(ctx context.Context, id int64) (Position, error)
	ListAll(ctx context.Context) ([]Position, error)
	ListActiveByDepartment(ctx context.Context, departmentID int64) ([]Position, error)
	Update(ctx context.Context, req UpdatePositionRequest) (Position, error)
	SetActive(ctx context.Context, id int64, active bool) (Position, error)
}
