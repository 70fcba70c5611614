package task

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/domain/task"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeTaskRepo struct {
	nextID int64
	rows   map[int64]task.Task
	// beforeUpdate runs between the read and the write of Update.
	beforeUpdate func()
}

func (r *fakeTaskRepo) Create(_ context.Context, t task.Task) (task.Task, error) {
	r.nextID++
	t.ID = r.nextID
	t.Status = task.StatusAssigned
	t.CreatedAt = time.Now().Add(time.Duration(r.nextID) * time.Second)
	r.rows[t.ID] = t
	return t, nil
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id int64) (task.Task, error) {
	t, ok := r.rows[id]
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	return t, nil
}

func (r *fakeTaskRepo) GetByIDForUpdate(ctx context.Context, id int64) (task.Task, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTaskRepo) list(keep func(task.Task) bool) []task.Task {
	result := []task.Task{}
	for _, t := range r.rows {
		if keep(t) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (r *fakeTaskRepo) ListByAssignee(_ context.Context, userID int64) ([]task.Task, error) {
	return r.list(func(t task.Task) bool { return t.AssignedTo == userID }), nil
}

func (r *fakeTaskRepo) ListByAssigner(_ context.Context, userID int64) ([]task.Task, error) {
	return r.list(func(t task.Task) bool { return t.AssignedBy == userID }), nil
}

func (r *fakeTaskRepo) ListOverdue(_ context.Context, now time.Time) ([]task.Task, error) {
	return r.list(func(t task.Task) bool { return t.Overdue(now) }), nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t task.Task, from task.Status) (task.Task, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	stored, ok := r.rows[t.ID]
	if !ok {
		return task.Task{}, task.ErrTaskNotFound
	}
	if stored.Status != from {
		return task.Task{}, task.ErrTaskChanged
	}
	r.rows[t.ID] = t
	return t, nil
}

type fakeProgressRepo struct {
	nextID int64
	rows   []task.Progress
}

func (r *fakeProgressRepo) Create(_ context.Context, p task.Progress) (task.Progress, error) {
	r.nextID++
	p.ID = r.nextID
	r.rows = append(r.rows, p)
	return p, nil
}

func (r *fakeProgressRepo) ListByTask(_ context.Context, taskID int64) ([]task.Progress, error) {
	result := []task.Progress{}
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].TaskID == taskID {
			result = append(result, r.rows[i])
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	users map[int64]user.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByOpenID(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) Upsert(context.Context, user.UpsertUserParams) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (r *fakeUserRepo) Update(context.Context, user.UpdateUserRequest) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (r *fakeUserRepo) List(context.Context, user.ListUsersFilter) ([]user.User, error) {
	return []user.User{}, nil
}

type sentNotification struct {
	notification.CreateNotificationRequest
	at time.Time
}

// fakeNotifier records notifications and answers ExistsSince from them.
type fakeNotifier struct {
	mu   sync.Mutex
	now  func() time.Time
	sent []sentNotification
}

func (n *fakeNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{req, n.now()})
	return nil
}

func (n *fakeNotifier) SendNow(ctx context.Context, req notification.CreateNotificationRequest) (*notification.NotificationResponse, error) {
	_ = n.QueueNotification(ctx, req)
	return &notification.NotificationResponse{UserID: req.UserID, Type: req.Type}, nil
}

func (n *fakeNotifier) ExistsSince(_ context.Context, userID int64, t notification.NotificationType, relatedID *int64, since time.Time) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.sent {
		if s.UserID == userID && s.Type == t && s.RelatedID != nil && relatedID != nil && *s.RelatedID == *relatedID && !s.at.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (n *fakeNotifier) ofType(t notification.NotificationType) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var result []sentNotification
	for _, s := range n.sent {
		if s.Type == t {
			result = append(result, s)
		}
	}
	return result
}

type fixture struct {
	svc      *taskServiceImpl
	tasks    *fakeTaskRepo
	notifier *fakeNotifier
	clock    time.Time

	employee   *user.User
	supervisor *user.User
	other      *user.User
	chairman   *user.User
}

func newFixture() *fixture {
	f := &fixture{
		clock:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		employee:   &user.User{ID: 1, Role: user.RoleEmployee, IsActive: true},
		supervisor: &user.User{ID: 2, Role: user.RoleSupervisor, IsActive: true},
		other:      &user.User{ID: 3, Role: user.RoleSupervisor, IsActive: true},
		chairman:   &user.User{ID: 4, Role: user.RoleChairman, IsActive: true},
	}
	users := &fakeUserRepo{users: map[int64]user.User{
		5: {ID: 5, Role: user.RoleEmployee, IsActive: false},
	}}
	for _, u := range []*user.User{f.employee, f.supervisor, f.other, f.chairman} {
		users.users[u.ID] = *u
	}

	f.tasks = &fakeTaskRepo{rows: map[int64]task.Task{}}
	f.notifier = &fakeNotifier{now: func() time.Time { return f.clock }}
	f.svc = NewTaskService(f.tasks, &fakeProgressRepo{}, users, f.notifier, f.notifier, fakeTx{}, time.Hour).(*taskServiceImpl)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) assign(t *testing.T, due time.Time) *task.TaskResponse {
	t.Helper()
	created, err := f.svc.Create(context.Background(), f.supervisor, task.CreateTaskRequest{
		Title:                  "Prepare budget",
		Description:            "Draft the Q2 budget",
		AssignedTo:             f.employee.ID,
		PlannedCompletionDate:  due,
		CompletionRequirements: "Spreadsheet approved by finance",
	})
	require.NoError(t, err)
	return created
}

func TestTaskService_Lifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created := f.assign(t, f.clock.Add(72*time.Hour))
	assert.Equal(t, task.StatusAssigned, created.Status)
	assert.Equal(t, task.PriorityMedium, created.Priority)
	assert.Equal(t, []int64{}, created.RelatedDuties)
	assert.False(t, created.Overdue)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.employee.ID, f.notifier.sent[0].UserID)

	progress, err := f.svc.ReportProgress(ctx, f.employee, created.ID, task.ProgressRequest{ProgressPercentage: 40, ProgressNote: "halfway"})
	require.NoError(t, err)
	assert.Equal(t, 40, progress.ProgressPercentage)

	got, err := f.svc.Get(ctx, f.employee, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)

	completed, err := f.svc.Complete(ctx, f.employee, created.ID, task.CompleteRequest{CompletionReport: "done", SelfEvaluationScore: 4})
	require.NoError(t, err)
	assert.Equal(t, task.StatusCompleted, completed.Status)
	assert.Equal(t, 4, *completed.SelfEvaluationScore)

	_, err = f.svc.ReportProgress(ctx, f.employee, created.ID, task.ProgressRequest{ProgressPercentage: 100, ProgressNote: "late note"})
	assert.ErrorIs(t, err, task.ErrTaskNotOpen)

	closed, err := f.svc.Review(ctx, f.supervisor, created.ID, task.ReviewRequest{SupervisorEvaluationScore: 5, SupervisorEvaluationNote: "excellent"})
	require.NoError(t, err)
	assert.Equal(t, task.StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, f.clock, *closed.ClosedAt)

	_, err = f.svc.Review(ctx, f.supervisor, created.ID, task.ReviewRequest{SupervisorEvaluationScore: 5, SupervisorEvaluationNote: "again"})
	assert.ErrorIs(t, err, task.ErrTaskNotCompleted)
}

func TestTaskService_CreateRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	valid := func(to int64) task.CreateTaskRequest {
		return task.CreateTaskRequest{
			Title: "t", Description: "d", AssignedTo: to,
			PlannedCompletionDate: f.clock, CompletionRequirements: "r",
		}
	}

	_, err := f.svc.Create(ctx, f.employee, valid(f.supervisor.ID))
	assert.ErrorIs(t, err, user.ErrForbidden)

	_, err = f.svc.Create(ctx, f.supervisor, valid(f.supervisor.ID))
	assert.ErrorIs(t, err, task.ErrCannotAssignToSelf)

	_, err = f.svc.Create(ctx, f.supervisor, valid(99))
	assert.ErrorIs(t, err, task.ErrAssigneeNotFound)

	_, err = f.svc.Create(ctx, f.supervisor, valid(5))
	assert.ErrorIs(t, err, task.ErrAssigneeNotFound)

	req := valid(f.employee.ID)
	req.Priority = "urgent"
	_, err = f.svc.Create(ctx, f.supervisor, req)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.Create(ctx, f.chairman, valid(f.employee.ID))
	assert.NoError(t, err)
}

func TestTaskService_ProgressMovesDueDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.assign(t, f.clock.Add(24*time.Hour))
	later := f.clock.Add(7 * 24 * time.Hour)

	_, err := f.svc.ReportProgress(ctx, f.employee, created.ID, task.ProgressRequest{
		ProgressPercentage: 10, ProgressNote: "blocked", AdjustedCompletionDate: &later,
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	reason := "waiting on vendor"
	_, err = f.svc.ReportProgress(ctx, f.employee, created.ID, task.ProgressRequest{
		ProgressPercentage: 10, ProgressNote: "blocked", AdjustedCompletionDate: &later, DelayReason: &reason,
	})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.employee, created.ID)
	require.NoError(t, err)
	assert.Equal(t, later, got.PlannedCompletionDate)

	_, err = f.svc.ReportProgress(ctx, f.employee, created.ID, task.ProgressRequest{ProgressPercentage: 101, ProgressNote: "x"})
	assert.ErrorAs(t, err, &verrs)
}

func TestTaskService_ProgressNewestFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.assign(t, f.clock.Add(24*time.Hour))

	for _, pct := range []int{10, 50, 80} {
		_, err := f.svc.ReportProgress(ctx, f.employee, created.ID, task.ProgressRequest{ProgressPercentage: pct, ProgressNote: "update"})
		require.NoError(t, err)
	}

	progress, err := f.svc.ListProgress(ctx, f.supervisor, created.ID)
	require.NoError(t, err)
	require.Len(t, progress, 3)
	assert.Equal(t, 80, progress[0].ProgressPercentage)
	assert.Equal(t, 10, progress[2].ProgressPercentage)

	_, err = f.svc.ListProgress(ctx, f.other, created.ID)
	assert.ErrorIs(t, err, user.ErrForbidden)
}

func TestTaskService_OnlyAssigneeReports(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.assign(t, f.clock.Add(24*time.Hour))

	_, err := f.svc.ReportProgress(ctx, f.supervisor, created.ID, task.ProgressRequest{ProgressPercentage: 10, ProgressNote: "x"})
	assert.ErrorIs(t, err, task.ErrNotAssignee)

	_, err = f.svc.Complete(ctx, f.other, created.ID, task.CompleteRequest{CompletionReport: "x", SelfEvaluationScore: 3})
	assert.ErrorIs(t, err, task.ErrNotAssignee)
}

func TestTaskService_ReviewRequiresAssignerOrChairman(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.assign(t, f.clock.Add(24*time.Hour))
	_, err := f.svc.Complete(ctx, f.employee, created.ID, task.CompleteRequest{CompletionReport: "x", SelfEvaluationScore: 3})
	require.NoError(t, err)

	review := task.ReviewRequest{SupervisorEvaluationScore: 3, SupervisorEvaluationNote: "ok"}
	_, err = f.svc.Review(ctx, f.other, created.ID, review)
	assert.ErrorIs(t, err, task.ErrNotAssigner)

	_, err = f.svc.Review(ctx, f.employee, created.ID, review)
	assert.ErrorIs(t, err, user.ErrForbidden)

	_, err = f.svc.Review(ctx, f.chairman, created.ID, task.ReviewRequest{SupervisorEvaluationScore: 6, SupervisorEvaluationNote: "ok"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.Review(ctx, f.chairman, created.ID, review)
	assert.NoError(t, err)
}

func TestTaskService_Lists(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first := f.assign(t, f.clock.Add(24*time.Hour))
	second := f.assign(t, f.clock.Add(48*time.Hour))

	mine, err := f.svc.ListMine(ctx, f.employee)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)

	assigned, err := f.svc.ListAssignedByMe(ctx, f.supervisor)
	require.NoError(t, err)
	assert.Len(t, assigned, 2)

	_, err = f.svc.ListAssignedByMe(ctx, f.employee)
	assert.ErrorIs(t, err, user.ErrForbidden)

	_, err = f.svc.Complete(ctx, f.employee, first.ID, task.CompleteRequest{CompletionReport: "x", SelfEvaluationScore: 3})
	require.NoError(t, err)
	open, err := f.svc.MyOpenTasks(ctx, f.employee)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)
}

func TestTaskService_NotifyOverdue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	overdue := f.assign(t, f.clock.Add(-time.Hour))
	f.assign(t, f.clock.Add(48*time.Hour))
	finished := f.assign(t, f.clock.Add(-2*time.Hour))
	_, err := f.svc.Complete(ctx, f.employee, finished.ID, task.CompleteRequest{CompletionReport: "x", SelfEvaluationScore: 3})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, f.employee, overdue.ID)
	require.NoError(t, err)
	assert.True(t, got.Overdue)

	n, err := f.svc.NotifyOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	reminders := f.notifier.ofType(notification.TypeOverdueTask)
	require.Len(t, reminders, 1)
	assert.Equal(t, overdue.ID, *reminders[0].RelatedID)

	f.clock = f.clock.Add(30 * time.Minute)
	n, err = f.svc.NotifyOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.clock = f.clock.Add(2 * time.Hour)
	n, err = f.svc.NotifyOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTaskService_StaleWriteIsRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.assign(t, f.clock.Add(72*time.Hour))

	_, err := f.svc.ReportProgress(ctx, f.employee, created.ID, task.ProgressRequest{ProgressPercentage: 50, ProgressNote: "halfway"})
	require.NoError(t, err)

	sentBefore := len(f.notifier.sent)
	// Another request closes the task between our read and our write.
	f.tasks.beforeUpdate = func() {
		current := f.tasks.rows[created.ID]
		current.Status = task.StatusClosed
		f.tasks.rows[created.ID] = current
	}
	_, err = f.svc.Complete(ctx, f.employee, created.ID, task.CompleteRequest{CompletionReport: "done", SelfEvaluationScore: 4})
	assert.ErrorIs(t, err, task.ErrTaskChanged)

	stored := f.tasks.rows[created.ID]
	assert.Equal(t, task.StatusClosed, stored.Status)
	assert.Nil(t, stored.CompletionReport)
	assert.Len(t, f.notifier.sent, sentBefore)
}

func TestTaskService_ReviewRequiresUnchangedCompletion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.assign(t, f.clock.Add(72*time.Hour))

	_, err := f.svc.Complete(ctx, f.employee, created.ID, task.CompleteRequest{CompletionReport: "done", SelfEvaluationScore: 3})
	require.NoError(t, err)

	f.tasks.beforeUpdate = func() {
		current := f.tasks.rows[created.ID]
		current.Status = task.StatusInProgress
		f.tasks.rows[created.ID] = current
	}
	_, err = f.svc.Review(ctx, f.supervisor, created.ID, task.ReviewRequest{SupervisorEvaluationScore: 5, SupervisorEvaluationNote: "great"})
	assert.ErrorIs(t, err, task.ErrTaskChanged)
	assert.Nil(t, f.tasks.rows[created.ID].ClosedAt)
}
