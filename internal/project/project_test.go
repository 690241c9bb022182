// AngelaMos | 2026
// project_test.go

package project

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carterperez-dev/projectboard/internal/core"
	"github.com/carterperez-dev/projectboard/internal/middleware"
	"github.com/carterperez-dev/projectboard/internal/policy"
	"github.com/carterperez-dev/projectboard/internal/user"
)

const (
	adminID   = "0b7e4a8e-0000-4000-8000-00000000000a"
	managerID = "0b7e4a8e-0000-4000-8000-00000000000b"
	userID    = "0b7e4a8e-0000-4000-8000-00000000000c"
	otherMgr  = "0b7e4a8e-0000-4000-8000-00000000000d"

	projectA = "0b7e4a8e-0000-4000-8000-0000000000a1"
	projectB = "0b7e4a8e-0000-4000-8000-0000000000b2"

	pathA = "/v1/projects/" + projectA
)

var (
	adminActor   = &policy.Actor{ID: adminID, Name: "Ada Admin", Role: policy.RoleAdmin}
	managerActor = &policy.Actor{ID: managerID, Name: "Max Manager", Role: policy.RoleManager}
	userActor    = &policy.Actor{ID: userID, Name: "Uma User", Role: policy.RoleUser}
)

type fakeUsers map[string]user.User

func (f fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &u, nil
}

func directory() fakeUsers {
	return fakeUsers{
		adminID:   {ID: adminID, FirstName: "Ada", LastName: "Admin", Role: policy.RoleAdmin},
		managerID: {ID: managerID, FirstName: "Max", LastName: "Manager", Role: policy.RoleManager},
		userID:    {ID: userID, FirstName: "Uma", LastName: "User", Role: policy.RoleUser},
		otherMgr:  {ID: otherMgr, FirstName: "Mia", LastName: "Manager", Role: policy.RoleManager},
	}
}

// memRepo keeps projects in memory. Ids are checked the way a uuid
// column checks them, so a malformed id fails rather than missing.
type memRepo struct {
	mu       sync.Mutex
	projects []Project
	stats    map[string]Stats
	writes   int
}

func newMemRepo(projects ...Project) *memRepo {
	return &memRepo{projects: projects, stats: map[string]Stats{}}
}

func checkUUID(id string) error {
	if core.IsUUID(id) {
		return nil
	}
	return &pgconn.PgError{
		Code:    "22P02",
		Message: "invalid input syntax for type uuid: \"" + id + "\"",
	}
}

func (m *memRepo) Create(_ context.Context, p *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.projects = append(m.projects, *p)
	m.writes++
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Project, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepo) List(context.Context) ([]Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Project(nil), m.projects...), nil
}

func (m *memRepo) Update(_ context.Context, p *Project) error {
	if err := checkUUID(p.ID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID == p.ID {
			m.projects[i] = *p
			m.writes++
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if err := checkUUID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.projects {
		if m.projects[i].ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			m.writes++
			return nil
		}
	}
	return core.ErrNotFound
}

func (m *memRepo) Stats(_ context.Context, id string) (Stats, error) {
	if err := checkUUID(id); err != nil {
		return Stats{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats[id], nil
}

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedProjects() []Project {
	return []Project{
		{ID: projectA, Name: "Website Redesign", ManagerID: managerID, Status: StatusInProgress,
			HoursConsumed: 45, StartDate: day("2025-01-15"), EndDate: day("2025-06-30"),
			AssigneeIDs: []string{userID}},
		{ID: projectB, Name: "Mobile App", ManagerID: otherMgr, Status: StatusPlanning,
			HoursConsumed: 15, StartDate: day("2025-02-01"), EndDate: day("2025-08-31"),
			AssigneeIDs: []string{}},
	}
}

func newRouter(svc *Service, actor *policy.Actor) http.Handler {
	h := NewHandler(svc, middleware.NewDenier("/dashboard", nil))
	authenticator := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), actor)))
		})
	}
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		h.RegisterRoutes(r, authenticator)
	})
	return r
}

func call(t *testing.T, h http.Handler, method, path string, body any, accept string) (*httptest.ResponseRecorder, core.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp core.Response
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func newProject(managerID string) CreateProjectRequest {
	return CreateProjectRequest{
		Name:        "Data Migration",
		Description: "Move legacy data",
		StartDate:   "2025-03-01",
		EndDate:     "2025-04-30",
		ManagerID:   managerID,
	}
}

func TestParseDateRange(t *testing.T) {
	_, _, err := ParseDateRange("2025-01-01", "2025-01-02")
	assert.NoError(t, err)

	_, _, err = ParseDateRange("2025-01-02", "2025-01-02")
	assert.ErrorIs(t, err, ErrInvalidDateRange)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, _, err = ParseDateRange("2025-02-01", "2025-01-01")
	assert.True(t, IsInvalidDateRange(err))

	_, _, err = ParseDateRange("01/02/2025", "2025-01-03")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.False(t, IsInvalidDateRange(err))
}

func TestStatsFinishRoundsProgress(t *testing.T) {
	assert.Equal(t, Stats{TotalTasks: 3, CompletedTasks: 1, ProgressPercent: 33, TotalHours: 45},
		Stats{TotalTasks: 3, CompletedTasks: 1}.Finish(45))
	assert.Equal(t, 67, Stats{TotalTasks: 3, CompletedTasks: 2}.Finish(0).ProgressPercent)
	assert.Equal(t, 0, Stats{}.Finish(10).ProgressPercent)
	assert.Equal(t, 100, Stats{TotalTasks: 2, CompletedTasks: 2}.Finish(0).ProgressPercent)
}

func TestCreateProjectAsUserIsDeniedWithoutWrite(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, directory(), policy.Policy{})

	_, err := svc.Create(context.Background(), userActor, newProject(managerID))
	assert.ErrorIs(t, err, policy.ErrInsufficientRole)

	rec, resp := call(t, newRouter(svc, userActor), http.MethodPost, "/v1/projects", newProject(managerID), "application/json")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/dashboard", resp.Error.Details["redirect_to"])

	rec, _ = call(t, newRouter(svc, userActor), http.MethodPost, "/v1/projects", newProject(managerID), "text/html")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	assert.Zero(t, repo.writes)
}

func TestCreateProjectRequiresManagerRole(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, directory(), policy.Policy{})

	_, err := svc.Create(context.Background(), adminActor, newProject(userID))
	assert.ErrorIs(t, err, policy.ErrInvalidAssignee)

	rec, resp := call(t, newRouter(svc, adminActor), http.MethodPost, "/v1/projects", newProject(userID), "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, middleware.CodeInvalidAssignee, resp.Error.Code)

	rec, _ = call(t, newRouter(svc, adminActor), http.MethodPost, "/v1/projects", newProject(adminID), "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	assert.Zero(t, repo.writes)
}

func TestCreateProjectDefaults(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, directory(), policy.Policy{})

	rec, resp := call(t, newRouter(svc, adminActor), http.MethodPost, "/v1/projects", newProject(managerID), "")
	require.Equal(t, http.StatusCreated, rec.Code)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "planning", data["status"])
	assert.EqualValues(t, 0, data["hours_consumed"])
	assert.Equal(t, "2025-03-01", data["start_date"])
	assert.Equal(t, "Max Manager", data["manager_name"])
	assert.Equal(t, 1, repo.writes)
}

func TestCreateProjectValidation(t *testing.T) {
	repo := newMemRepo()
	h := newRouter(NewService(repo, directory(), policy.Policy{}), adminActor)

	same := newProject(managerID)
	same.EndDate = same.StartDate
	rec, _ := call(t, h, http.MethodPost, "/v1/projects", same, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	badDate := newProject(managerID)
	badDate.StartDate = "March 1st"
	rec, _ = call(t, h, http.MethodPost, "/v1/projects", badDate, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unknown := newProject("0b7e4a8e-0000-4000-8000-0000000000ff")
	rec, resp := call(t, h, http.MethodPost, "/v1/projects", unknown, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "manager not found", resp.Error.Message)

	assert.Zero(t, repo.writes)
}

func TestGetProjectIncludesStats(t *testing.T) {
	repo := newMemRepo(seedProjects()...)
	repo.stats[projectA] = Stats{TotalTasks: 3, CompletedTasks: 2}
	svc := NewService(repo, directory(), policy.Policy{})

	p, stats, err := svc.Get(context.Background(), userActor, projectA)
	require.NoError(t, err)
	assert.Equal(t, projectA, p.ID)
	assert.Equal(t, Stats{TotalTasks: 3, CompletedTasks: 2, ProgressPercent: 67, TotalHours: 45}, stats)

	rec, _ := call(t, newRouter(svc, userActor), http.MethodGet, "/v1/projects/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUnfilteredShowsEverything(t *testing.T) {
	svc := NewService(newMemRepo(seedProjects()...), directory(), policy.Policy{})

	for _, a := range []*policy.Actor{adminActor, managerActor, userActor} {
		got, err := svc.List(context.Background(), a)
		require.NoError(t, err)
		assert.Len(t, got, 2, a.Role)
	}
}

func TestAssignedVisibility(t *testing.T) {
	svc := NewService(newMemRepo(seedProjects()...), directory(), policy.New(policy.VisibilityAssigned))
	ctx := context.Background()

	got, err := svc.List(ctx, managerActor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, projectA, got[0].ID)

	got, err = svc.List(ctx, userActor)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, _, err = svc.Get(ctx, managerActor, projectB)
	assert.ErrorIs(t, err, core.ErrNotFound)

	got, err = svc.List(ctx, adminActor)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpdateProject(t *testing.T) {
	repo := newMemRepo(seedProjects()...)
	svc := NewService(repo, directory(), policy.Policy{})
	ctx := context.Background()

	status := "completed"
	hours := 60
	_, err := svc.Update(ctx, managerActor, projectA, UpdateProjectRequest{Status: &status})
	assert.ErrorIs(t, err, policy.ErrInsufficientRole)
	assert.Zero(t, repo.writes)

	p, err := svc.Update(ctx, adminActor, projectA, UpdateProjectRequest{Status: &status, HoursConsumed: &hours})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)
	assert.Equal(t, 60, p.HoursConsumed)

	end := "2025-01-01"
	_, err = svc.Update(ctx, adminActor, projectA, UpdateProjectRequest{EndDate: &end})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	rec, _ := call(t, newRouter(svc, adminActor), http.MethodPatch, pathA,
		map[string]any{"status": "archived"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = call(t, newRouter(svc, adminActor), http.MethodPatch, pathA,
		map[string]any{"hours_consumed": -1}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteProject(t *testing.T) {
	repo := newMemRepo(seedProjects()...)
	svc := NewService(repo, directory(), policy.Policy{})

	rec, _ := call(t, newRouter(svc, managerActor), http.MethodDelete, pathA, nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = call(t, newRouter(svc, adminActor), http.MethodDelete, pathA, nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = call(t, newRouter(svc, adminActor), http.MethodGet, pathA, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMalformedProjectIDIsNotFound(t *testing.T) {
	repo := newMemRepo(seedProjects()...)
	h := newRouter(NewService(repo, directory(), policy.Policy{}), adminActor)

	status := "completed"
	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		var body any
		if method == http.MethodPatch {
			body = UpdateProjectRequest{Status: &status}
		}
		rec, resp := call(t, h, method, "/v1/projects/nope", body, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code, method)
	}

	rec, _ := call(t, newRouter(NewService(repo, directory(), policy.Policy{}), userActor),
		http.MethodDelete, "/v1/projects/nope", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Zero(t, repo.writes)
	assert.Len(t, repo.projects, 2)
}

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return rec
}

func TestWritesAreTraced(t *testing.T) {
	rec := recordSpans(t)
	svc := NewService(newMemRepo(seedProjects()...), directory(), policy.Policy{})
	ctx := context.Background()

	created, err := svc.Create(ctx, adminActor, newProject(managerID))
	require.NoError(t, err)

	status := "completed"
	_, err = svc.Update(ctx, managerActor, projectA, UpdateProjectRequest{Status: &status})
	require.ErrorIs(t, err, policy.ErrInsufficientRole)

	require.NoError(t, svc.Delete(ctx, adminActor, created.ID))

	spans := map[string]sdktrace.ReadOnlySpan{}
	for _, s := range rec.Ended() {
		spans[s.Name()] = s
	}
	require.Len(t, spans, 3)

	create := spans["project.Create"]
	assert.Equal(t, codes.Unset, create.Status().Code)
	assert.Contains(t, create.Attributes(), attribute.String("project.id", created.ID))

	update := spans["project.Update"]
	assert.Equal(t, codes.Error, update.Status().Code)
	require.NotEmpty(t, update.Events())
	assert.Equal(t, "exception", update.Events()[0].Name)

	assert.Equal(t, codes.Unset, spans["project.Delete"].Status().Code)
}
