package department

import "context"

type DepartmentRepository interface {
	Create(ctx context.Context, d Department) (Department, error)
	GetByID(ctx context.Context, id int64) (Department, error)
	ListActive(ctx context.Context) ([]Department, error)
	ListAll(ctx context.Context) ([]Department, error)
	Update(ctx context.Context, req UpdateDepartmentRequest) (Department, error)
	SetActive(ctx context.Context, id int64, active bool) (Department, error)
}
