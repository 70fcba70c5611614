package performance

import (
	"context"

	"github.com/perfhub/perfhub-backend-go/internal/domain/performance"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
)

type cycleServiceImpl struct {
	cycleRepo performance.CycleRepository
	tx        database.TxRunner
}

func NewCycleService(cycleRepo performance.CycleRepository, tx database.TxRunner) performance.CycleService {
	return &cycleServiceImpl{cycleRepo: cycleRepo, tx: tx}
}

func (s *cycleServiceImpl) List(ctx context.Context, caller *user.User) ([]performance.CycleResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return nil, err
	}
	cycles, err := s.cycleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]performance.CycleResponse, 0, len(cycles))
	for _, c := range cycles {
		responses = append(responses, performance.ToCycleResponse(c))
	}
	return responses, nil
}

// GetActive is readable by everyone signed in.
func (s *cycleServiceImpl) GetActive(ctx context.Context, caller *user.User) (*performance.CycleResponse, error) {
	if err := user.RequireCaller(caller); err != nil {
		return nil, err
	}
	c, err := s.cycleRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	resp := performance.ToCycleResponse(c)
	return &resp, nil
}

func (s *cycleServiceImpl) Create(ctx context.Context, caller *user.User, req performance.CreateCycleRequest) (*performance.CycleResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return nil, err
	}
	start, end, err := req.Validate()
	if err != nil {
		return nil, err
	}

	var created performance.Cycle
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err = s.cycleRepo.Create(ctx, performance.Cycle{Name: req.Name, StartDate: start, EndDate: end})
		if err != nil || !req.Activate {
			return err
		}
		created, err = s.activate(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := performance.ToCycleResponse(created)
	return &resp, nil
}

func (s *cycleServiceImpl) activate(ctx context.Context, id int64) (performance.Cycle, error) {
	if err := s.cycleRepo.DeactivateAll(ctx, id); err != nil {
		return performance.Cycle{}, err
	}
	return s.cycleRepo.SetActive(ctx, id, true)
}

func (s *cycleServiceImpl) Activate(ctx context.Context, caller *user.User, id int64) (*performance.CycleResponse, error) {
	if err := user.RequireRole(caller, user.RolesOrgAdmin...); err != nil {
		return nil, err
	}

	var activated performance.Cycle
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.cycleRepo.GetByID(ctx, id); err != nil {
			return err
		}
		var err error
		activated, err = s.activate(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := performance.ToCycleResponse(activated)
	return &resp, nil
}
