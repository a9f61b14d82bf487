package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/asventura96/testcenter/internal/middleware"
	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/repository"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/sequence"
	"github.com/asventura96/testcenter/internal/service"
	"github.com/asventura96/testcenter/internal/utils"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "handler-secret"

// Stubs embed the service interface; calling a method a test did not
// override panics.
type stubCertifiers struct {
	service.CertifierService
	del func(ctx context.Context, id int) error
}

func (s *stubCertifiers) Delete(ctx context.Context, id int) error { return s.del(ctx, id) }

type stubCertifications struct {
	service.CertificationService
	create func(ctx context.Context, req model.CreateCertificationRequest) (*model.Certification, error)
	got    *model.CreateCertificationRequest
}

func (s *stubCertifications) Create(ctx context.Context, req model.CreateCertificationRequest) (*model.Certification, error) {
	s.got = &req
	return s.create(ctx, req)
}

func (s *stubCertifications) Delete(context.Context, string) error { return nil }

type stubClients struct{ service.ClientService }

func (stubClients) Delete(context.Context, int64) error { return nil }

type stubTestCenters struct{ service.TestCenterService }

func (stubTestCenters) Delete(context.Context, int) error { return nil }

type stubExams struct {
	service.ExamService
	getAll func(ctx context.Context, filter model.ExamFilter) ([]*model.Exam, *response.Pagination, error)
	del    func(ctx context.Context, id int) error
}

func (s *stubExams) GetAll(ctx context.Context, filter model.ExamFilter) ([]*model.Exam, *response.Pagination, error) {
	return s.getAll(ctx, filter)
}

func (s *stubExams) Delete(ctx context.Context, id int) error { return s.del(ctx, id) }

func (s *stubExams) Ticket(ctx context.Context, id int) ([]byte, string, error) {
	if id != 7 {
		return nil, "", service.ErrExamNotFound
	}
	return []byte("%PDF-1.3"), "ticket-7-CIS0001.pdf", nil
}

func (s *stubExams) VerifyCheckin(ctx context.Context, token string) (*model.CheckinResponse, error) {
	return &model.CheckinResponse{IsValid: false, Message: "Ticket not found."}, nil
}

type stubLimiter struct{ allowed bool }

func (s stubLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return s.allowed, time.Second, nil
}

type fixture struct {
	certifiers     *stubCertifiers
	certifications *stubCertifications
	exams          *stubExams
	limiter        middleware.Limiter
}

func newFixture() *fixture {
	return &fixture{
		certifiers: &stubCertifiers{del: func(context.Context, int) error { return nil }},
		certifications: &stubCertifications{create: func(_ context.Context, req model.CreateCertificationRequest) (*model.Certification, error) {
			return &model.Certification{ID: "CIS0001", CertifierID: req.CertifierID, Name: req.Name}, nil
		}},
		exams: &stubExams{
			getAll: func(context.Context, model.ExamFilter) ([]*model.Exam, *response.Pagination, error) {
				return []*model.Exam{}, &response.Pagination{Page: 1, PerPage: 20}, nil
			},
			del: func(context.Context, int) error { return nil },
		},
		limiter: stubLimiter{allowed: true},
	}
}

func (f *fixture) server() http.Handler {
	log := zap.NewNop()
	registry := service.NewDeleteRegistry(f.certifiers, f.certifications, stubClients{}, stubTestCenters{}, f.exams)
	h := Handlers{
		Auth:          NewAuthHandler(nil, log),
		Certifier:     NewCertifierHandler(f.certifiers, log),
		Certification: NewCertificationHandler(f.certifications, log),
		Client:        NewClientHandler(nil, log),
		TestCenter:    NewTestCenterHandler(nil, log),
		Exam:          NewExamHandler(f.exams, log),
		Record:        NewRecordHandler(registry, log),
	}
	return NewRouter(h, secret, f.limiter, nil, log).Setup()
}

func bearer(t *testing.T, role model.Role) string {
	t.Helper()
	pair, err := utils.GenerateTokenPair(model.JWTClaims{UserID: "u-1", Role: string(role)}, secret, 1, 2)
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func do(t *testing.T, srv http.Handler, method, target, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var out response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newFixture().server(), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	srv := newFixture().server()
	for _, target := range []string{"/api/v1/certifiers", "/api/v1/exams", "/api/v1/records"} {
		rec := do(t, srv, http.MethodGet, target, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestCreateCertificationAssignsID(t *testing.T) {
	f := newFixture()
	rec := do(t, f.server(), http.MethodPost, "/api/v1/certifications", bearer(t, model.RoleOperator),
		map[string]interface{}{"certifier_id": 3, "name": "  CCNA  ", "duration": 120})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "CIS0001", body.Data.(map[string]interface{})["id"])

	require.NotNil(t, f.certifications.got)
	assert.Equal(t, "CCNA", f.certifications.got.Name)
}

func TestCreateCertificationValidation(t *testing.T) {
	f := newFixture()
	rec := do(t, f.server(), http.MethodPost, "/api/v1/certifications", bearer(t, model.RoleOperator),
		map[string]interface{}{"duration": 120})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, f.certifications.got)

	errs := decodeBody(t, rec).Errors.(map[string]interface{})
	assert.Contains(t, errs, "certifier_id")
	assert.Contains(t, errs, "name")
}

func TestCreateCertificationErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&service.ReferenceError{Field: "certifier_id", Value: "9"}, http.StatusBadRequest},
		{fmt.Errorf("assign: %w", sequence.ErrOverflow), http.StatusUnprocessableEntity},
		{sequence.ErrConfiguration, http.StatusUnprocessableEntity},
		{sequence.ErrConcurrencyExhausted, http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			f := newFixture()
			f.certifications.create = func(context.Context, model.CreateCertificationRequest) (*model.Certification, error) {
				return nil, tc.err
			}
			rec := do(t, f.server(), http.MethodPost, "/api/v1/certifications", bearer(t, model.RoleOperator),
				map[string]interface{}{"certifier_id": 9, "name": "X"})
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestFailMapping(t *testing.T) {
	cases := map[error]int{
		service.ErrInvalidID:                          http.StatusBadRequest,
		service.ErrInvalidCredentials:                 http.StatusUnauthorized,
		service.ErrAccountDisabled:                    http.StatusForbidden,
		service.ErrCertifierNotFound:                  http.StatusNotFound,
		service.ErrUnknownKind:                        http.StatusNotFound,
		service.ErrCertificationInUse:                 http.StatusConflict,
		service.ErrAbbreviationTaken:                  http.StatusConflict,
		fmt.Errorf("x: %w", repository.ErrForeignKey): http.StatusConflict,
		fmt.Errorf("x: %w", repository.ErrDuplicate):  http.StatusConflict,
	}
	for err, want := range cases {
		rec := httptest.NewRecorder()
		fail(rec, zap.NewNop(), err)
		assert.Equal(t, want, rec.Code, err.Error())
	}
}

func TestRegisterIsAdminOnly(t *testing.T) {
	rec := do(t, newFixture().server(), http.MethodPost, "/api/v1/users", bearer(t, model.RoleOperator),
		map[string]string{"name": "Op", "email": "op@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	f := newFixture()
	f.limiter = stubLimiter{allowed: false}
	rec := do(t, f.server(), http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "a@b.c", "password": "x"})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestLoginLimitIgnoresSpoofedForwardingHeaders(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	f := newFixture()
	f.limiter = middleware.NewRedisLimiter(client, "login:", 2, time.Minute)
	srv := f.server()

	var codes []int
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":""}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "203.0.113.9:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{
		http.StatusBadRequest, http.StatusBadRequest,
		http.StatusTooManyRequests, http.StatusTooManyRequests,
		http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes)
}

func TestCheckinVerificationIsPublic(t *testing.T) {
	rec := do(t, newFixture().server(), http.MethodGet, "/api/v1/checkin/not-a-token", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec).Data.(map[string]interface{})["is_valid"])
}

func TestExamTicket(t *testing.T) {
	srv := newFixture().server()
	auth := bearer(t, model.RoleOperator)

	rec := do(t, srv, http.MethodGet, "/api/v1/exams/7/ticket", auth, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ticket-7-CIS0001.pdf")

	rec = do(t, srv, http.MethodGet, "/api/v1/exams/8/ticket", auth, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/api/v1/exams/abc/ticket", auth, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExamFilter(t *testing.T) {
	f := newFixture()
	var got model.ExamFilter
	f.exams.getAll = func(_ context.Context, filter model.ExamFilter) ([]*model.Exam, *response.Pagination, error) {
		got = filter
		return nil, &response.Pagination{}, nil
	}
	srv := f.server()
	auth := bearer(t, model.RoleOperator)

	rec := do(t, srv, http.MethodGet,
		"/api/v1/exams?certification_id=cis0001&client_uid=42&date_from=2024-03-01&date_to=2024-03-31&presence=true&page=2",
		auth, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "CIS0001", got.CertificationID)
	require.NotNil(t, got.ClientUID)
	assert.Equal(t, int64(42), *got.ClientUID)
	require.NotNil(t, got.DateTo)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), *got.DateTo)
	require.NotNil(t, got.Presence)
	assert.True(t, *got.Presence)
	assert.Equal(t, 2, got.Page)
	assert.Nil(t, got.TestCenterID)

	rec = do(t, srv, http.MethodGet, "/api/v1/exams?date_from=01/03/2024", auth, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordDelete(t *testing.T) {
	f := newFixture()
	f.certifiers.del = func(_ context.Context, id int) error {
		if id == 1 {
			return service.ErrCertifierInUse
		}
		return nil
	}
	srv := f.server()
	auth := bearer(t, model.RoleOperator)

	cases := []struct {
		target string
		want   int
	}{
		{"/api/v1/records/certifier/2", http.StatusOK},
		{"/api/v1/records/certifier/1", http.StatusConflict},
		{"/api/v1/records/exam/abc", http.StatusBadRequest},
		{"/api/v1/records/student/1", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := do(t, srv, http.MethodDelete, tc.target, auth, nil)
		assert.Equal(t, tc.want, rec.Code, tc.target)
	}
}

func TestParseListFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?search=+cisco+&idle=false&order_by=name&descending=1&page=x&per_page=50", nil)
	f := parseListFilter(req)

	assert.Equal(t, "cisco", f.Search)
	require.NotNil(t, f.Idle)
	assert.False(t, *f.Idle)
	assert.True(t, f.Descending)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 50, f.PerPage)

	f = parseListFilter(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, f.Idle)
	assert.Equal(t, model.DefaultPerPage, f.PerPage)
}
