package performance

import (
	"context"
	"io"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
)

type PerformanceService interface {
	ListMine(ctx context.Context, caller *user.User) ([]EvaluationResponse, error)
	Get(ctx context.Context, caller *user.User, id int64) (*EvaluationResponse, error)
	Create(ctx context.Context, caller *user.User, req CreateEvaluationRequest) (*EvaluationResponse, error)
	Update(ctx context.Context, caller *user.User, req UpdateEvaluationRequest) (*EvaluationResponse, error)
	// ExportPeriod writes an xlsx workbook of evaluations for the period.
	ExportPeriod(ctx context.Context, caller *user.User, period string, w io.Writer) (filename string, err error)
}

type CycleService interface {
	List(ctx context.Context, caller *user.User) ([]CycleResponse, error)
	GetActive(ctx context.Context, caller *user.User) (*CycleResponse, error)
	Create(ctx context.Context, caller *user.User, req CreateCycleRequest) (*CycleResponse, error)
	// Activate makes id the only active cycle.
	Activate(ctx context.Context, caller *user.User, id int64) (*CycleResponse, error)
}
