package kpi

import (
	"context"

	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
)

type KpiService interface {
	ListMyDefinitions(ctx context.Context, caller *user.User) ([]DefinitionResponse, error)
	ListMyActuals(ctx context.Context, caller *user.User, period string) ([]ActualResponse, error)
	ListPending(ctx context.Context, caller *user.User) ([]ActualResponse, error)

	ListDefinitionsByPosition(ctx context.Context, caller *user.User, positionID int64) ([]DefinitionResponse, error)
	CreateDefinition(ctx context.Context, caller *user.User, req CreateDefinitionRequest) (*DefinitionResponse, error)
	UpdateDefinition(ctx context.Context, caller *user.User, req UpdateDefinitionRequest) (*DefinitionResponse, error)

	SubmitActual(ctx context.Context, caller *user.User, req SubmitActualRequest) (*ActualResponse, error)
	Approve(ctx context.Context, caller *user.User, actualID int64, req ReviewActualRequest) (*ActualResponse, error)
	Reject(ctx context.Context, caller *user.User, actualID int64, req ReviewActualRequest) (*ActualResponse, error)
}
