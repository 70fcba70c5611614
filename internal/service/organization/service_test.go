package organization

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/perfhub/perfhub-backend-go/internal/domain/organization"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/department"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/jobduty"
	"github.com/perfhub/perfhub-backend-go/internal/domain/organization/position"
	"github.com/perfhub/perfhub-backend-go/internal/domain/user"
	"github.com/perfhub/perfhub-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeDepartmentRepo struct {
	nextID int64
	rows   map[int64]department.Department
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{rows: map[int64]department.Department{}}
}

func (r *fakeDepartmentRepo) Create(_ context.Context, d department.Department) (department.Department, error) {
	for _, existing := range r.rows {
		if existing.Code == d.Code {
			return department.Department{}, department.ErrDepartmentCodeExists
		}
	}
	r.nextID++
	d.ID = r.nextID
	d.IsActive = true
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	r.rows[d.ID] = d
	return d, nil
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id int64) (department.Department, error) {
	d, ok := r.rows[id]
	if !ok {
		return department.Department{}, department.ErrDepartmentNotFound
	}
	return d, nil
}

func (r *fakeDepartmentRepo) list(activeOnly bool) []department.Department {
	result := []department.Department{}
	for _, d := range r.rows {
		if !activeOnly || d.IsActive {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (r *fakeDepartmentRepo) ListActive(context.Context) ([]department.Department, error) {
	return r.list(true), nil
}

func (r *fakeDepartmentRepo) ListAll(context.Context) ([]department.Department, error) {
	return r.list(false), nil
}

func (r *fakeDepartmentRepo) Update(_ context.Context, req department.UpdateDepartmentRequest) (department.Department, error) {
	d, ok := r.rows[req.ID]
	if !ok {
		return department.Department{}, department.ErrDepartmentNotFound
	}
	d.Name, d.Code, d.Description = req.Name, req.Code, req.Description
	r.rows[d.ID] = d
	return d, nil
}

func (r *fakeDepartmentRepo) SetActive(_ context.Context, id int64, active bool) (department.Department, error) {
	d, ok := r.rows[id]
	if !ok {
		return department.Department{}, department.ErrDepartmentNotFound
	}
	d.IsActive = active
	r.rows[id] = d
	return d, nil
}

type fakePositionRepo struct {
	nextID int64
	rows   map[int64]position.Position
}

func newFakePositionRepo() *fakePositionRepo {
	return &fakePositionRepo{rows: map[int64]position.Position{}}
}

func (r *fakePositionRepo) Create(_ context.Context, p position.Position) (position.Position, error) {
	r.nextID++
	p.ID = r.nextID
	p.IsActive = true
	r.rows[p.ID] = p
	return p, nil
}

func (r *fakePositionRepo) GetByID(_ context.Context, id int64) (position.Position, error) {
	p, ok := r.rows[id]
	if !ok {
		return position.Position{}, position.ErrPositionNotFound
	}
	return p, nil
}

func (r *fakePositionRepo) ListAll(context.Context) ([]position.Position, error) {
	result := []position.Position{}
	for _, p := range r.rows {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakePositionRepo) ListActiveByDepartment(_ context.Context, departmentID int64) ([]position.Position, error) {
	all, _ := r.ListAll(context.Background())
	result := []position.Position{}
	for _, p := range all {
		if p.DepartmentID == departmentID && p.IsActive {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakePositionRepo) Update(_ context.Context, req position.UpdatePositionRequest) (position.Position, error) {
	p, ok := r.rows[req.ID]
	if !ok {
		return position.Position{}, position.ErrPositionNotFound
	}
	p.DepartmentID, p.Title, p.Level, p.Description = req.DepartmentID, req.Title, req.Level, req.Description
	r.rows[p.ID] = p
	return p, nil
}

func (r *fakePositionRepo) SetActive(_ context.Context, id int64, active bool) (position.Position, error) {
	p, ok := r.rows[id]
	if !ok {
		return position.Position{}, position.ErrPositionNotFound
	}
	p.IsActive = active
	r.rows[id] = p
	return p, nil
}

type fakeJobDutyRepo struct {
	nextID int64
	rows   map[int64]jobduty.JobDuty
}

func newFakeJobDutyRepo() *fakeJobDutyRepo {
	return &fakeJobDutyRepo{rows: map[int64]jobduty.JobDuty{}}
}

func (r *fakeJobDutyRepo) Create(_ context.Context, d jobduty.JobDuty) (jobduty.JobDuty, error) {
	r.nextID++
	d.ID = r.nextID
	d.IsActive = true
	r.rows[d.ID] = d
	return d, nil
}

func (r *fakeJobDutyRepo) GetByID(_ context.Context, id int64) (jobduty.JobDuty, error) {
	d, ok := r.rows[id]
	if !ok {
		return jobduty.JobDuty{}, jobduty.ErrJobDutyNotFound
	}
	return d, nil
}

func (r *fakeJobDutyRepo) ListAll(context.Context) ([]jobduty.JobDuty, error) {
	result := []jobduty.JobDuty{}
	for _, d := range r.rows {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *fakeJobDutyRepo) ListActiveByPosition(_ context.Context, positionID int64) ([]jobduty.JobDuty, error) {
	result := []jobduty.JobDuty{}
	for _, d := range r.rows {
		if d.PositionID == positionID && d.IsActive {
			result = append(result, d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (r *fakeJobDutyRepo) Update(_ context.Context, req jobduty.UpdateJobDutyRequest) (jobduty.JobDuty, error) {
	d, ok := r.rows[req.ID]
	if !ok {
		return jobduty.JobDuty{}, jobduty.ErrJobDutyNotFound
	}
	d.Code, d.Title = req.Code, req.Title
	if req.SortOrder != nil {
		d.SortOrder = *req.SortOrder
	}
	r.rows[d.ID] = d
	return d, nil
}

func (r *fakeJobDutyRepo) SetActive(_ context.Context, id int64, active bool) (jobduty.JobDuty, error) {
	d, ok := r.rows[id]
	if !ok {
		return jobduty.JobDuty{}, jobduty.ErrJobDutyNotFound
	}
	d.IsActive = active
	r.rows[id] = d
	return d, nil
}

func newTestService() (OrganizationService, *fakeDepartmentRepo, *fakePositionRepo, *fakeJobDutyRepo) {
	departments := newFakeDepartmentRepo()
	positions := newFakePositionRepo()
	duties := newFakeJobDutyRepo()
	return NewOrganizationService(departments, positions, duties, fakeTx{}), departments, positions, duties
}

func caller(role user.Role) *user.User {
	return &user.User{ID: 1, OpenID: "test", Role: role, IsActive: true}
}

func TestCreateDepartment_ListedAsActive(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	created, err := svc.CreateDepartment(ctx, caller(user.RoleAdmin), department.CreateDepartmentRequest{
		Name: "Engineering",
		Code: " sn-north ",
	})
	require.NoError(t, err)
	assert.Equal(t, "sn-north", created.Code)
	assert.True(t, created.IsActive)

	list, err := svc.ListDepartments(ctx, caller(user.RoleEmployee))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "Engineering", list[0].Name)
	assert.Equal(t, "sn-north", list[0].Code)
	assert.True(t, list[0].IsActive)
}

func TestCreateDepartment_NameLimitCountsCharacters(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	name := strings.Repeat("研", 100)
	created, err := svc.CreateDepartment(ctx, caller(user.RoleAdmin), department.CreateDepartmentRequest{Name: name, Code: "研发"})
	require.NoError(t, err)
	assert.Equal(t, name, created.Name)

	_, err = svc.CreateDepartment(ctx, caller(user.RoleAdmin), department.CreateDepartmentRequest{Name: name + "研", Code: "RD2"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "name must not exceed 100 characters", verrs.ToMap()["name"])
}

func TestCreateDepartment_RoleGuard(t *testing.T) {
	ctx := context.Background()
	req := department.CreateDepartmentRequest{Name: "Sales", Code: "S"}

	tests := []struct {
		name    string
		caller  *user.User
		wantErr error
	}{
		{"anonymous", nil, user.ErrUnauthenticated},
		{"employee", caller(user.RoleEmployee), user.ErrForbidden},
		{"supervisor", caller(user.RoleSupervisor), user.ErrForbidden},
		{"admin", caller(user.RoleAdmin), nil},
		{"chairman", caller(user.RoleChairman), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := newTestService()
			_, err := svc.CreateDepartment(ctx, tt.caller, req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCreateDepartment_InactiveCallerIsUnauthenticated(t *testing.T) {
	svc, _, _, _ := newTestService()
	inactive := caller(user.RoleAdmin)
	inactive.IsActive = false

	_, err := svc.CreateDepartment(context.Background(), inactive, department.CreateDepartmentRequest{Name: "X", Code: "X"})
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

func TestCreateDepartment_Validation(t *testing.T) {
	svc, departments, _, _ := newTestService()

	_, err := svc.CreateDepartment(context.Background(), caller(user.RoleAdmin), department.CreateDepartmentRequest{Name: " ", Code: ""})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "name")
	assert.Contains(t, verrs.ToMap(), "code")
	assert.Empty(t, departments.rows)
}

func TestCreateDepartment_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	_, err := svc.CreateDepartment(ctx, caller(user.RoleAdmin), department.CreateDepartmentRequest{Name: "A", Code: "GM"})
	require.NoError(t, err)
	_, err = svc.CreateDepartment(ctx, caller(user.RoleAdmin), department.CreateDepartmentRequest{Name: "B", Code: " GM"})
	assert.ErrorIs(t, err, department.ErrDepartmentCodeExists)
}

func TestToggleDepartment_TwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()
	admin := caller(user.RoleChairman)

	created, err := svc.CreateDepartment(ctx, admin, department.CreateDepartmentRequest{Name: "Ops", Code: "O"})
	require.NoError(t, err)

	off, err := svc.ToggleDepartment(ctx, admin, created.ID, organization.ToggleActiveRequest{})
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	list, err := svc.ListDepartments(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, list)

	on, err := svc.ToggleDepartment(ctx, admin, created.ID, organization.ToggleActiveRequest{})
	require.NoError(t, err)
	assert.True(t, on.IsActive)
}

func TestToggleDepartment_ExplicitValueAndNoCascade(t *testing.T) {
	ctx := context.Background()
	svc, _, positions, _ := newTestService()
	admin := caller(user.RoleAdmin)

	dept, err := svc.CreateDepartment(ctx, admin, department.CreateDepartmentRequest{Name: "GM", Code: "GM"})
	require.NoError(t, err)
	pos, err := svc.CreatePosition(ctx, admin, position.CreatePositionRequest{
		DepartmentID: dept.ID, Title: "Manager", Level: position.LevelManager,
	})
	require.NoError(t, err)

	inactive := false
	got, err := svc.ToggleDepartment(ctx, admin, dept.ID, organization.ToggleActiveRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	got, err = svc.ToggleDepartment(ctx, admin, dept.ID, organization.ToggleActiveRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.True(t, positions.rows[pos.ID].IsActive)
}

func TestToggleDepartment_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.ToggleDepartment(context.Background(), caller(user.RoleAdmin), 99, organization.ToggleActiveRequest{})
	assert.ErrorIs(t, err, department.ErrDepartmentNotFound)
}

func TestCreatePosition_UnknownDepartment(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.CreatePosition(context.Background(), caller(user.RoleAdmin), position.CreatePositionRequest{
		DepartmentID: 42, Title: "Clerk", Level: position.LevelStaff,
	})
	assert.ErrorIs(t, err, department.ErrDepartmentNotFound)
}

func TestCreatePosition_InvalidLevel(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()
	admin := caller(user.RoleAdmin)

	dept, err := svc.CreateDepartment(ctx, admin, department.CreateDepartmentRequest{Name: "GM", Code: "GM"})
	require.NoError(t, err)

	_, err = svc.CreatePosition(ctx, admin, position.CreatePositionRequest{
		DepartmentID: dept.ID, Title: "Boss", Level: "emperor",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "level")
}

func TestListJobDutiesByPosition_ActiveAndSorted(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()
	admin := caller(user.RoleAdmin)

	dept, err := svc.CreateDepartment(ctx, admin, department.CreateDepartmentRequest{Name: "GM", Code: "GM"})
	require.NoError(t, err)
	pos, err := svc.CreatePosition(ctx, admin, position.CreatePositionRequest{
		DepartmentID: dept.ID, Title: "Manager", Level: position.LevelManager,
	})
	require.NoError(t, err)

	var ids []int64
	for _, order := range []int{3, 1, 2} {
		o := order
		d, err := svc.CreateJobDuty(ctx, admin, jobduty.CreateJobDutyRequest{
			PositionID: pos.ID, Code: "D", Title: "Duty", SortOrder: &o,
		})
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}

	inactive := false
	_, err = svc.ToggleJobDuty(ctx, admin, ids[2], organization.ToggleActiveRequest{IsActive: &inactive})
	require.NoError(t, err)

	duties, err := svc.ListJobDutiesByPosition(ctx, caller(user.RoleEmployee), pos.ID)
	require.NoError(t, err)
	require.Len(t, duties, 2)
	assert.Equal(t, 1, duties[0].SortOrder)
	assert.Equal(t, 3, duties[1].SortOrder)
	for _, d := range duties {
		assert.True(t, d.IsActive)
	}
}

func TestReads_RequireCaller(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.ListPositions(context.Background(), nil)
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
	_, err = svc.ListJobDuties(context.Background(), nil)
	assert.ErrorIs(t, err, user.ErrUnauthenticated)
}

func TestSeedReferenceData(t *testing.T) {
	ctx := context.Background()
	svc, departments, positions, duties := newTestService()

	result, err := svc.SeedReferenceData(ctx)
	require.NoError(t, err)
	assert.Equal(t, SeedResult{Departments: 12, Positions: 2, JobDuties: 7}, result)
	assert.Len(t, departments.rows, 12)
	assert.Len(t, positions.rows, 2)
	assert.Len(t, duties.rows, 7)

	again, err := svc.SeedReferenceData(ctx)
	require.NoError(t, err)
	assert.True(t, again.Skipped)
	assert.Len(t, departments.rows, 12)
}
