package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/perfhub/perfhub-backend-go/internal/domain/auth"
	"github.com/perfhub/perfhub-backend-go/internal/domain/kpi"
	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/department"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/jobduty"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/position"
	"github.com/perfhub/perfhub-backend-go/internal/domain/performance"
	"github.com/perfhub/perfhub-backend-go/internal/domain/task"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/domain/worklog"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/database"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/jwt"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
)

var (
	unauthorizedErrors = []error{
		user.ErrUnauthenticated,
		auth.ErrInvalidCredentials,
		auth.ErrInvalidToken,
		auth.ErrTokenRevoked,
		jwt.ErrInvalidClaims,
	}

	forbiddenErrors = []error{
		user.ErrForbidden,
		user.ErrUserInactive,
		user.ErrCannotDemoteSelf,
		user.ErrSelfReview,
		worklog.ErrNotLogOwner,
		task.ErrNotAssignee,
		task.ErrNotAssigner,
		kpi.ErrNotSameDepartment,
		performance.ErrNotSameDepartment,
	}

	notFoundErrors = []error{
		user.ErrUserNotFound,
		department.ErrDepartmentNotFound,
		position.ErrPositionNotFound,
		jobduty.ErrJobDutyNotFound,
		worklog.ErrWorkLogNotFound,
		worklog.ErrWorkItemNotFound,
		task.ErrTaskNotFound,
		task.ErrAssigneeNotFound,
		kpi.ErrDefinitionNotFound,
		kpi.ErrActualNotFound,
		performance.ErrEvaluationNotFound,
		performance.ErrEmployeeNotFound,
		performance.ErrCycleNotFound,
		performance.ErrNoActiveCycle,
		notification.ErrNotificationNotFound,
	}

	conflictErrors = []error{
		user.ErrUserEmailExists,
		department.ErrDepartmentCodeExists,
		worklog.ErrWorkLogExists,
		performance.ErrEvaluationExists,
		kpi.ErrActualLocked,
		performance.ErrActiveCycleConflict,
		task.ErrTaskChanged,
	}

	badRequestErrors = []error{
		user.ErrInvalidRole,
		user.ErrNoDepartment,
		auth.ErrOAuthDisabled,
		auth.ErrInvalidOAuthState,
		auth.ErrOAuthEmailMissing,
		worklog.ErrWorkLogNotEditable,
		worklog.ErrWorkLogNotSubmitted,
		worklog.ErrWorkLogEmpty,
		worklog.ErrItemsNotReviewed,
		task.ErrTaskNotOpen,
		task.ErrTaskNotCompleted,
		task.ErrCannotAssignToSelf,
		task.ErrDelayReasonRequired,
		kpi.ErrPositionNotAssigned,
		kpi.ErrDefinitionInactive,
		kpi.ErrDefinitionMismatch,
		kpi.ErrActualNotPending,
		performance.ErrEvaluationCompleted,
		performance.ErrAdjustmentReasonRequired,
		notification.ErrInvalidNotificationType,
	}
)

func matches(err error, targets []error) (error, bool) {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target, true
		}
	}
	return nil, false
}

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if target, ok := matches(err, unauthorizedErrors); ok {
		Unauthorized(w, target.Error())
		return
	}
	if target, ok := matches(err, forbiddenErrors); ok {
		Forbidden(w, target.Error())
		return
	}
	if target, ok := matches(err, notFoundErrors); ok {
		NotFound(w, target.Error())
		return
	}
	if target, ok := matches(err, conflictErrors); ok {
		Conflict(w, target.Error())
		return
	}
	if target, ok := matches(err, badRequestErrors); ok {
		BadRequest(w, target.Error(), nil)
		return
	}

	if database.IsUnavailable(err) {
		ServiceUnavailable(w, "Database is unavailable, please try again later")
		return
	}

	slog.Error("unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
