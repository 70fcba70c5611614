package performance

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/kpi"
	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/domain/performance"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEvaluationRepo struct {
	nextID int64
	rows   map[int64]performance.Evaluation
	users  *fakeUserRepo
}

func (r *fakeEvaluationRepo) Create(_ context.Context, e performance.Evaluation) (performance.Evaluation, error) {
	for _, existing := range r.rows {
		if existing.UserID == e.UserID && existing.Period == e.Period {
			return performance.Evaluation{}, performance.ErrEvaluationExists
		}
	}
	r.nextID++
	e.ID = r.nextID
	r.rows[e.ID] = e
	return e, nil
}

func (r *fakeEvaluationRepo) GetByID(_ context.Context, id int64) (performance.Evaluation, error) {
	e, ok := r.rows[id]
	if !ok {
		return performance.Evaluation{}, performance.ErrEvaluationNotFound
	}
	return e, nil
}

func (r *fakeEvaluationRepo) ListByUser(_ context.Context, userID int64) ([]performance.Evaluation, error) {
	result := []performance.Evaluation{}
	for _, e := range r.rows {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period > result[j].Period })
	return result, nil
}

func (r *fakeEvaluationRepo) ListByPeriod(_ context.Context, period string, departmentID *int64) ([]performance.EvaluationRow, error) {
	result := []performance.EvaluationRow{}
	for id := int64(1); id <= r.nextID; id++ {
		e, ok := r.rows[id]
		if !ok || e.Period != period {
			continue
		}
		u := r.users.users[e.UserID]
		if departmentID != nil && (u.DepartmentID == nil || *u.DepartmentID != *departmentID) {
			continue
		}
		result = append(result, performance.EvaluationRow{Evaluation: e, UserName: *u.Name, DepartmentName: "Sales"})
	}
	return result, nil
}

func (r *fakeEvaluationRepo) Update(_ context.Context, e performance.Evaluation) (performance.Evaluation, error) {
	if _, ok := r.rows[e.ID]; !ok {
		return performance.Evaluation{}, performance.ErrEvaluationNotFound
	}
	r.rows[e.ID] = e
	return e, nil
}

// fakeActualRepo only answers SumApprovedScore.
type fakeActualRepo struct {
	kpi.ActualRepository
	scores map[string]decimal.Decimal
}

func (r *fakeActualRepo) SumApprovedScore(_ context.Context, userID int64, period string) (*decimal.Decimal, error) {
	s, ok := r.scores[period]
	if !ok || userID != 1 {
		return nil, nil
	}
	return &s, nil
}

type fakeUserRepo struct {
	user.UserRepository
	users map[int64]user.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (n *fakeNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, req)
	return nil
}

func (n *fakeNotifier) SendNow(ctx context.Context, req notification.CreateNotificationRequest) (*notification.NotificationResponse, error) {
	_ = n.QueueNotification(ctx, req)
	return &notification.NotificationResponse{UserID: req.UserID, Type: req.Type}, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T { return &v }

type fixture struct {
	svc      performance.PerformanceService
	actuals  *fakeActualRepo
	notifier *fakeNotifier

	employee   *user.User
	supervisor *user.User
	outsider   *user.User
	chairman   *user.User
}

func newFixture() *fixture {
	sales, ops := int64(1), int64(2)
	f := &fixture{
		employee:   &user.User{ID: 1, Name: ptr("Alice"), Role: user.RoleEmployee, DepartmentID: &sales, IsActive: true},
		supervisor: &user.User{ID: 2, Name: ptr("Sam"), Role: user.RoleSupervisor, DepartmentID: &sales, IsActive: true},
		outsider:   &user.User{ID: 3, Name: ptr("Olga"), Role: user.RoleSupervisor, DepartmentID: &ops, IsActive: true},
		chairman:   &user.User{ID: 4, Name: ptr("Chen"), Role: user.RoleChairman, IsActive: true},
	}
	users := &fakeUserRepo{users: map[int64]user.User{
		9: {ID: 9, Name: ptr("Gone"), DepartmentID: &sales, IsActive: false},
	}}
	for _, u := range []*user.User{f.employee, f.supervisor, f.outsider, f.chairman} {
		users.users[u.ID] = *u
	}

	f.actuals = &fakeActualRepo{scores: map[string]decimal.Decimal{"2026-03": dec("82.5")}}
	f.notifier = &fakeNotifier{}
	f.svc = NewPerformanceService(
		&fakeEvaluationRepo{rows: map[int64]performance.Evaluation{}, users: users},
		f.actuals,
		users,
		f.notifier,
	)
	return f
}

func TestPerformanceService_CreateUsesKpiScore(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.supervisor, performance.CreateEvaluationRequest{
		UserID: f.employee.ID, Period: "2026-03", FinalScore: dec("82.5"),
	})
	require.NoError(t, err)
	require.NotNil(t, created.AutoCalculatedScore)
	assert.True(t, created.AutoCalculatedScore.Equal(dec("82.5")))
	assert.Equal(t, performance.StatusDraft, created.Status)
	assert.Equal(t, f.supervisor.ID, created.EvaluatedBy)
	assert.Empty(t, f.notifier.sent)

	_, err = f.svc.Create(ctx, f.supervisor, performance.CreateEvaluationRequest{
		UserID: f.employee.ID, Period: "2026-03", FinalScore: dec("82.5"),
	})
	assert.ErrorIs(t, err, performance.ErrEvaluationExists)
}

func TestPerformanceService_AdjustmentReason(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req := performance.CreateEvaluationRequest{UserID: f.employee.ID, Period: "2026-03", FinalScore: dec("90")}
	_, err := f.svc.Create(ctx, f.supervisor, req)
	assert.ErrorIs(t, err, performance.ErrAdjustmentReasonRequired)

	req.AdjustmentReason = ptr("   ")
	_, err = f.svc.Create(ctx, f.supervisor, req)
	assert.ErrorIs(t, err, performance.ErrAdjustmentReasonRequired)

	req.AdjustmentReason = ptr("led the spring launch")
	created, err := f.svc.Create(ctx, f.supervisor, req)
	require.NoError(t, err)
	assert.True(t, created.FinalScore.Equal(dec("90")))
}

func TestPerformanceService_NoKpiScoreNeedsNoReason(t *testing.T) {
	f := newFixture()

	created, err := f.svc.Create(context.Background(), f.supervisor, performance.CreateEvaluationRequest{
		UserID: f.employee.ID, Period: "2026-04", FinalScore: dec("70"),
	})
	require.NoError(t, err)
	assert.Nil(t, created.AutoCalculatedScore)
}

func TestPerformanceService_CompleteNotifiesInterview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	interview := time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC)

	created, err := f.svc.Create(ctx, f.supervisor, performance.CreateEvaluationRequest{
		UserID: f.employee.ID, Period: "2026-03", FinalScore: dec("82.5"), InterviewDate: &interview,
	})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)

	f.actuals.scores["2026-03"] = dec("85")
	_, err = f.svc.Update(ctx, f.supervisor, performance.UpdateEvaluationRequest{
		ID: created.ID, FinalScore: dec("82.5"), InterviewDate: &interview, Complete: true,
	})
	assert.ErrorIs(t, err, performance.ErrAdjustmentReasonRequired)

	completed, err := f.svc.Update(ctx, f.supervisor, performance.UpdateEvaluationRequest{
		ID: created.ID, FinalScore: dec("85"), InterviewDate: &interview, Complete: true,
	})
	require.NoError(t, err)
	assert.Equal(t, performance.StatusCompleted, completed.Status)
	assert.True(t, completed.AutoCalculatedScore.Equal(dec("85")))

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notification.TypePerformanceInterview, f.notifier.sent[0].Type)
	assert.Equal(t, f.employee.ID, f.notifier.sent[0].UserID)

	_, err = f.svc.Update(ctx, f.supervisor, performance.UpdateEvaluationRequest{ID: created.ID, FinalScore: dec("85")})
	assert.ErrorIs(t, err, performance.ErrEvaluationCompleted)
}

func TestPerformanceService_CompleteWithoutInterviewIsSilent(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), f.chairman, performance.CreateEvaluationRequest{
		UserID: f.employee.ID, Period: "2026-03", FinalScore: dec("82.5"), Complete: true,
	})
	require.NoError(t, err)
	assert.Empty(t, f.notifier.sent)
}

func TestPerformanceService_CreatePermissions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := func(userID int64) performance.CreateEvaluationRequest {
		return performance.CreateEvaluationRequest{UserID: userID, Period: "2026-04", FinalScore: dec("50")}
	}

	_, err := f.svc.Create(ctx, f.employee, req(f.supervisor.ID))
	assert.ErrorIs(t, err, user.ErrForbidden)

	_, err = f.svc.Create(ctx, f.outsider, req(f.employee.ID))
	assert.ErrorIs(t, err, performance.ErrNotSameDepartment)

	_, err = f.svc.Create(ctx, f.supervisor, req(9))
	assert.ErrorIs(t, err, performance.ErrEmployeeNotFound)

	_, err = f.svc.Create(ctx, f.supervisor, req(99))
	assert.ErrorIs(t, err, performance.ErrEmployeeNotFound)

	bad := req(f.employee.ID)
	bad.FinalScore = dec("101")
	_, err = f.svc.Create(ctx, f.supervisor, bad)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestPerformanceService_SupervisorCannotEvaluateSelf(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	req := performance.CreateEvaluationRequest{UserID: f.supervisor.ID, Period: "2026-04", FinalScore: dec("95")}

	_, err := f.svc.Create(ctx, f.supervisor, req)
	assert.ErrorIs(t, err, user.ErrSelfReview)

	created, err := f.svc.Create(ctx, f.chairman, req)
	require.NoError(t, err)
	assert.Equal(t, f.supervisor.ID, created.UserID)
	assert.Equal(t, f.chairman.ID, created.EvaluatedBy)
}

func TestPerformanceService_Visibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.supervisor, performance.CreateEvaluationRequest{
		UserID: f.employee.ID, Period: "2026-04", FinalScore: dec("60"),
	})
	require.NoError(t, err)

	for _, caller := range []*user.User{f.employee, f.supervisor, f.chairman} {
		_, err := f.svc.Get(ctx, caller, created.ID)
		assert.NoError(t, err, caller.ID)
	}
	_, err = f.svc.Get(ctx, f.outsider, created.ID)
	assert.ErrorIs(t, err, user.ErrForbidden)

	_, err = f.svc.Update(ctx, f.outsider, performance.UpdateEvaluationRequest{ID: created.ID, FinalScore: dec("60")})
	assert.ErrorIs(t, err, user.ErrForbidden)

	mine, err := f.svc.ListMine(ctx, f.employee)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	mine, err = f.svc.ListMine(ctx, f.outsider)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestPerformanceService_ExportPeriod(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.supervisor, performance.CreateEvaluationRequest{
		UserID: f.employee.ID, Period: "2026-03", FinalScore: dec("82.5"), Strengths: ptr("thorough"),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	name, err := f.svc.ExportPeriod(ctx, f.supervisor, "2026-03", &buf)
	require.NoError(t, err)
	assert.Equal(t, "performance-2026-03.xlsx", name)

	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("Evaluations")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Employee", rows[1][0])
	assert.Equal(t, "Alice", rows[2][0])
	assert.Equal(t, "82.50", rows[2][3])
	assert.Equal(t, "thorough", rows[2][6])

	buf.Reset()
	_, err = f.svc.ExportPeriod(ctx, f.outsider, "2026-03", &buf)
	require.NoError(t, err)
	wb2, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb2.Close()
	rows, err = wb2.GetRows("Evaluations")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = f.svc.ExportPeriod(ctx, f.supervisor, "2026/03", &bytes.Buffer{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.ExportPeriod(ctx, f.employee, "2026-03", &bytes.Buffer{})
	assert.ErrorIs(t, err, user.ErrForbidden)
}
