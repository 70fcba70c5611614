package worklog

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/notification"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/domain/worklog"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeLogRepo struct {
	nextID int64
	rows   map[int64]worklog.WorkLog
	users  *fakeUserRepo
}

func (r *fakeLogRepo) Create(_ context.Context, l worklog.WorkLog) (worklog.WorkLog, error) {
	for _, existing := range r.rows {
		if existing.UserID == l.UserID && existing.Date.Equal(l.Date) {
			return worklog.WorkLog{}, worklog.ErrWorkLogExists
		}
	}
	r.nextID++
	l.ID = r.nextID
	l.Status = worklog.StatusDraft
	r.rows[l.ID] = l
	return l, nil
}

func (r *fakeLogRepo) GetByID(_ context.Context, id int64) (worklog.WorkLog, error) {
	l, ok := r.rows[id]
	if !ok {
		return worklog.WorkLog{}, worklog.ErrWorkLogNotFound
	}
	return l, nil
}

func (r *fakeLogRepo) ListByUser(_ context.Context, userID int64, _ worklog.ListWorkLogsFilter) ([]worklog.WorkLog, error) {
	result := []worklog.WorkLog{}
	for _, l := range r.rows {
		if l.UserID == userID {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (r *fakeLogRepo) ListSubmittedByDepartment(_ context.Context, departmentID int64) ([]worklog.WorkLog, error) {
	result := []worklog.WorkLog{}
	for _, l := range r.rows {
		author := r.users.users[l.UserID]
		if l.Status == worklog.StatusSubmitted && author.DepartmentID != nil && *author.DepartmentID == departmentID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (r *fakeLogRepo) UpdateStatus(_ context.Context, id int64, from, to worklog.Status, reviewerID *int64, at time.Time) (worklog.WorkLog, error) {
	l, ok := r.rows[id]
	if !ok || l.Status != from {
		if from == worklog.StatusDraft {
			return worklog.WorkLog{}, worklog.ErrWorkLogNotEditable
		}
		return worklog.WorkLog{}, worklog.ErrWorkLogNotSubmitted
	}
	l.Status = to
	switch to {
	case worklog.StatusSubmitted:
		l.SubmittedAt = &at
	case worklog.StatusReviewed:
		l.ReviewedAt = &at
		l.ReviewedBy = reviewerID
	}
	r.rows[id] = l
	return l, nil
}

func (r *fakeLogRepo) CountPendingReviewByDepartment(context.Context) ([]worklog.PendingReview, error) {
	return []worklog.PendingReview{}, nil
}

type fakeItemRepo struct {
	nextID int64
	rows   map[int64]worklog.WorkItem
}

func (r *fakeItemRepo) Create(_ context.Context, item worklog.WorkItem) (worklog.WorkItem, error) {
	r.nextID++
	item.ID = r.nextID
	r.rows[item.ID] = item
	return item, nil
}

func (r *fakeItemRepo) GetByID(_ context.Context, id int64) (worklog.WorkItem, error) {
	item, ok := r.rows[id]
	if !ok {
		return worklog.WorkItem{}, worklog.ErrWorkItemNotFound
	}
	return item, nil
}

func (r *fakeItemRepo) ListByLog(_ context.Context, workLogID int64) ([]worklog.WorkItem, error) {
	result := []worklog.WorkItem{}
	for _, item := range r.rows {
		if item.WorkLogID == workLogID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (r *fakeItemRepo) Update(_ context.Context, item worklog.WorkItem) (worklog.WorkItem, error) {
	existing, ok := r.rows[item.ID]
	if !ok {
		return worklog.WorkItem{}, worklog.ErrWorkItemNotFound
	}
	item.SupervisorEvaluation = existing.SupervisorEvaluation
	item.SupervisorEvaluationNote = existing.SupervisorEvaluationNote
	r.rows[item.ID] = item
	return item, nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return worklog.ErrWorkItemNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *fakeItemRepo) UpdateSupervisorEvaluation(_ context.Context, id int64, evaluation worklog.Alignment, note string) (worklog.WorkItem, error) {
	item, ok := r.rows[id]
	if !ok {
		return worklog.WorkItem{}, worklog.ErrWorkItemNotFound
	}
	item.SupervisorEvaluation = &evaluation
	item.SupervisorEvaluationNote = &note
	r.rows[id] = item
	return item, nil
}

func (r *fakeItemRepo) CountByLog(ctx context.Context, workLogID int64) (int64, error) {
	items, _ := r.ListByLog(ctx, workLogID)
	return int64(len(items)), nil
}

func (r *fakeItemRepo) CountUnreviewedByLog(ctx context.Context, workLogID int64) (int64, error) {
	items, _ := r.ListByLog(ctx, workLogID)
	var n int64
	for _, item := range items {
		if item.SupervisorEvaluation == nil {
			n++
		}
	}
	return n, nil
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

type fixture struct {
	svc      worklog.WorkLogService
	items    *fakeItemRepo
	notifier *fakeNotifier

	author     *user.User
	peer       *user.User
	supervisor *user.User
	outsider   *user.User
	chairman   *user.User
}

func ptr[T any](v T) *T { return &v }

func newFixture() *fixture {
	sales, ops := int64(1), int64(2)
	users := &fakeUserRepo{users: map[int64]user.User{}}
	f := &fixture{
		author:     &user.User{ID: 1, Role: user.RoleEmployee, DepartmentID: &sales, IsActive: true},
		peer:       &user.User{ID: 2, Role: user.RoleEmployee, DepartmentID: &sales, IsActive: true},
		supervisor: &user.User{ID: 3, Role: user.RoleSupervisor, DepartmentID: &sales, IsActive: true},
		outsider:   &user.User{ID: 4, Role: user.RoleSupervisor, DepartmentID: &ops, IsActive: true},
		chairman:   &user.User{ID: 5, Role: user.RoleChairman, IsActive: true},
	}
	for _, u := range []*user.User{f.author, f.peer, f.supervisor, f.outsider, f.chairman} {
		users.users[u.ID] = *u
	}

	f.items = &fakeItemRepo{rows: map[int64]worklog.WorkItem{}}
	f.notifier = &fakeNotifier{}
	f.svc = NewWorkLogService(
		&fakeLogRepo{rows: map[int64]worklog.WorkLog{}, users: users},
		f.items,
		users,
		f.notifier,
		fakeTx{},
	)
	return f
}

func itemRequest(name string) worklog.WorkItemRequest {
	return worklog.WorkItemRequest{WorkName: name, ExecutionResult: "done"}
}

func review() worklog.ReviewItemRequest {
	return worklog.ReviewItemRequest{SupervisorEvaluation: worklog.AlignmentFull, SupervisorEvaluationNote: "good"}
}

func (f *fixture) draftWithItem(t *testing.T) (*worklog.WorkLogResponse, *worklog.WorkItemResponse) {
	t.Helper()
	ctx := context.Background()
	l, err := f.svc.Create(ctx, f.author, worklog.CreateWorkLogRequest{Date: "2026-03-02"})
	require.NoError(t, err)
	item, err := f.svc.AddItem(ctx, f.author, l.ID, itemRequest("Quarterly report"))
	require.NoError(t, err)
	return l, item
}

func TestWorkLogService_Lifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, first := f.draftWithItem(t)
	assert.Equal(t, worklog.StatusDraft, l.Status)
	assert.Equal(t, "2026-03-02", l.Date)
	assert.Equal(t, 1, first.SortOrder)
	assert.Equal(t, []int64{}, first.RelatedDuties)

	second, err := f.svc.AddItem(ctx, f.author, l.ID, itemRequest("Client call"))
	require.NoError(t, err)
	assert.Equal(t, 2, second.SortOrder)

	submitted, err := f.svc.Submit(ctx, f.author, l.ID)
	require.NoError(t, err)
	assert.Equal(t, worklog.StatusSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	_, err = f.svc.CompleteReview(ctx, f.supervisor, l.ID)
	assert.ErrorIs(t, err, worklog.ErrItemsNotReviewed)

	for _, id := range []int64{first.ID, second.ID} {
		reviewed, err := f.svc.ReviewItem(ctx, f.supervisor, id, review())
		require.NoError(t, err)
		assert.Equal(t, worklog.AlignmentFull, *reviewed.SupervisorEvaluation)
	}

	done, err := f.svc.CompleteReview(ctx, f.supervisor, l.ID)
	require.NoError(t, err)
	assert.Equal(t, worklog.StatusReviewed, done.Status)
	require.NotNil(t, done.ReviewedBy)
	assert.Equal(t, f.supervisor.ID, *done.ReviewedBy)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, f.author.ID, f.notifier.sent[0].UserID)
	assert.Equal(t, l.ID, *f.notifier.sent[0].RelatedID)

	_, err = f.svc.CompleteReview(ctx, f.supervisor, l.ID)
	assert.ErrorIs(t, err, worklog.ErrWorkLogNotSubmitted)
}

func TestWorkLogService_DuplicateDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.author, worklog.CreateWorkLogRequest{Date: "2026-03-02"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.author, worklog.CreateWorkLogRequest{Date: "2026-03-02"})
	assert.ErrorIs(t, err, worklog.ErrWorkLogExists)

	_, err = f.svc.Create(ctx, f.peer, worklog.CreateWorkLogRequest{Date: "2026-03-02"})
	assert.NoError(t, err)
}

func TestWorkLogService_CreateValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, date := range []string{"", "02/03/2026"} {
		_, err := f.svc.Create(ctx, f.author, worklog.CreateWorkLogRequest{Date: date})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs, date)
	}

	_, err := f.svc.Create(ctx, nil, worklog.CreateWorkLogRequest{Date: "2026-03-02"})
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

func TestWorkLogService_SubmitEmptyLog(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, err := f.svc.Create(ctx, f.author, worklog.CreateWorkLogRequest{Date: "2026-03-02"})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, f.author, l.ID)
	assert.ErrorIs(t, err, worklog.ErrWorkLogEmpty)
}

func TestWorkLogService_ItemsFrozenAfterSubmit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, item := f.draftWithItem(t)
	_, err := f.svc.Submit(ctx, f.author, l.ID)
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, f.author, l.ID, itemRequest("late"))
	assert.ErrorIs(t, err, worklog.ErrWorkLogNotEditable)
	_, err = f.svc.UpdateItem(ctx, f.author, item.ID, itemRequest("changed"))
	assert.ErrorIs(t, err, worklog.ErrWorkLogNotEditable)
	assert.ErrorIs(t, f.svc.DeleteItem(ctx, f.author, item.ID), worklog.ErrWorkLogNotEditable)

	_, err = f.svc.Submit(ctx, f.author, l.ID)
	assert.ErrorIs(t, err, worklog.ErrWorkLogNotEditable)
}

func TestWorkLogService_OnlyOwnerEdits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, item := f.draftWithItem(t)

	_, err := f.svc.AddItem(ctx, f.peer, l.ID, itemRequest("intruder"))
	assert.ErrorIs(t, err, worklog.ErrNotLogOwner)
	_, err = f.svc.UpdateItem(ctx, f.supervisor, item.ID, itemRequest("changed"))
	assert.ErrorIs(t, err, worklog.ErrNotLogOwner)
	assert.ErrorIs(t, f.svc.DeleteItem(ctx, f.peer, item.ID), worklog.ErrNotLogOwner)
	_, err = f.svc.Submit(ctx, f.peer, l.ID)
	assert.ErrorIs(t, err, worklog.ErrNotLogOwner)
}

func TestWorkLogService_UpdateAndDeleteItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, item := f.draftWithItem(t)

	req := itemRequest("Renamed")
	req.RelatedDuties = []int64{7, 9}
	updated, err := f.svc.UpdateItem(ctx, f.author, item.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.WorkName)
	assert.Equal(t, []int64{7, 9}, updated.RelatedDuties)
	assert.Equal(t, item.SortOrder, updated.SortOrder)

	require.NoError(t, f.svc.DeleteItem(ctx, f.author, item.ID))
	items, err := f.svc.ListItems(ctx, f.author, l.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, f.svc.DeleteItem(ctx, f.author, item.ID), worklog.ErrWorkItemNotFound)
}

func TestWorkLogService_ItemValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, err := f.svc.Create(ctx, f.author, worklog.CreateWorkLogRequest{Date: "2026-03-02"})
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, f.author, l.ID, worklog.WorkItemRequest{WorkName: "no result"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	bad := worklog.Alignment("mostly")
	req := itemRequest("bad evaluation")
	req.SelfEvaluation = &bad
	_, err = f.svc.AddItem(ctx, f.author, l.ID, req)
	assert.ErrorAs(t, err, &verrs)
}

func TestWorkLogService_ExplicitSortOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, _ := f.draftWithItem(t)
	req := itemRequest("first thing")
	req.SortOrder = ptr(0)
	_, err := f.svc.AddItem(ctx, f.author, l.ID, req)
	require.NoError(t, err)

	detail, err := f.svc.Get(ctx, f.author, l.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "first thing", detail.Items[0].WorkName)
	assert.Equal(t, "Quarterly report", detail.Items[1].WorkName)
}

func TestWorkLogService_Visibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, _ := f.draftWithItem(t)

	tests := []struct {
		name   string
		caller *user.User
		err    error
	}{
		{"owner", f.author, nil},
		{"department supervisor", f.supervisor, nil},
		{"chairman", f.chairman, nil},
		{"peer", f.peer, user.ErrForbidden},
		{"other department supervisor", f.outsider, user.ErrForbidden},
		{"anonymous", nil, user.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Get(ctx, tt.caller, l.ID)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}

	_, err := f.svc.Get(ctx, f.author, 999)
	assert.ErrorIs(t, err, worklog.ErrWorkLogNotFound)
}

func TestWorkLogService_ReviewPermissions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, item := f.draftWithItem(t)

	_, err := f.svc.ReviewItem(ctx, f.supervisor, item.ID, review())
	assert.ErrorIs(t, err, worklog.ErrWorkLogNotSubmitted)

	_, err = f.svc.Submit(ctx, f.author, l.ID)
	require.NoError(t, err)

	_, err = f.svc.ReviewItem(ctx, f.peer, item.ID, review())
	assert.ErrorIs(t, err, user.ErrForbidden)
	_, err = f.svc.ReviewItem(ctx, f.outsider, item.ID, review())
	assert.ErrorIs(t, err, user.ErrForbidden)

	_, err = f.svc.ReviewItem(ctx, f.supervisor, item.ID, worklog.ReviewItemRequest{SupervisorEvaluation: worklog.AlignmentPartial})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.ReviewItem(ctx, f.chairman, item.ID, review())
	assert.NoError(t, err)
}

func TestWorkLogService_SupervisorCannotReviewOwnLog(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, err := f.svc.Create(ctx, f.supervisor, worklog.CreateWorkLogRequest{Date: "2026-03-03"})
	require.NoError(t, err)
	item, err := f.svc.AddItem(ctx, f.supervisor, l.ID, itemRequest("Team planning"))
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.supervisor, l.ID)
	require.NoError(t, err)

	_, err = f.svc.ReviewItem(ctx, f.supervisor, item.ID, review())
	assert.ErrorIs(t, err, user.ErrSelfReview)
	_, err = f.svc.CompleteReview(ctx, f.supervisor, l.ID)
	assert.ErrorIs(t, err, user.ErrSelfReview)

	_, err = f.svc.ReviewItem(ctx, f.chairman, item.ID, review())
	require.NoError(t, err)
	reviewed, err := f.svc.CompleteReview(ctx, f.chairman, l.ID)
	require.NoError(t, err)
	assert.Equal(t, worklog.StatusReviewed, reviewed.Status)
}

func TestWorkLogService_ListUnreviewed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	l, _ := f.draftWithItem(t)
	_, err := f.svc.Submit(ctx, f.author, l.ID)
	require.NoError(t, err)

	logs, err := f.svc.ListUnreviewed(ctx, f.supervisor)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, l.ID, logs[0].ID)

	logs, err = f.svc.ListUnreviewed(ctx, f.outsider)
	require.NoError(t, err)
	assert.Empty(t, logs)

	logs, err = f.svc.ListUnreviewed(ctx, f.chairman)
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)

	_, err = f.svc.ListUnreviewed(ctx, f.author)
	assert.ErrorIs(t, err, user.ErrForbidden)
}

func TestWorkLogService_ListMine(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for _, date := range []string{"2026-03-01", "2026-03-03", "2026-03-02"} {
		_, err := f.svc.Create(ctx, f.author, worklog.CreateWorkLogRequest{Date: date})
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, f.peer, worklog.CreateWorkLogRequest{Date: "2026-03-04"})
	require.NoError(t, err)

	logs, err := f.svc.ListMine(ctx, f.author, worklog.ListWorkLogsFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "2026-03-03", logs[0].Date)

	start := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.svc.ListMine(ctx, f.author, worklog.ListWorkLogsFilter{StartDate: &start, EndDate: &end})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}
