package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/auth/jwt"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/config"
	"github.com/harambee/studentliving/internal/document"
	"github.com/harambee/studentliving/internal/lifecycle"
	"github.com/harambee/studentliving/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

var clock = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, uint, notify.Message, ...notify.Channel) (notify.Result, error) {
	return notify.Result{Persisted: true}, nil
}

type stubRenderer struct {
	mu  sync.Mutex
	err error
}

func (r *stubRenderer) Render(_ context.Context, kind document.Kind, id uint, _ any) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	return document.Key(kind, id), nil
}

type stubReader struct{}

func (stubReader) Open(_ context.Context, ref string) (*bytes.Reader, error) {
	return bytes.NewReader([]byte("<html>" + ref + "</html>")), nil
}

type server struct {
	t        *testing.T
	db       database.Database
	engine   *gin.Engine
	jwt      *jwt.Service
	renderer *stubRenderer
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSQLite(&config.DatabaseConfig{Type: "sqlite", DBName: filepath.Join(t.TempDir(), "api.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jwtService, err := jwt.NewService(config.JWTConfig{SecretKey: "a-test-secret-that-is-long-enough-for-hs256", Duration: time.Hour})
	require.NoError(t, err)

	renderer := &stubRenderer{}
	svc := lifecycle.New(zap.NewNop(), db, nopNotifier{}, renderer, lifecycle.WithClock(func() time.Time { return clock }))

	r := gin.New()
	RegisterRoutes(r, NewHandler(zap.NewNop(), svc, jwtService, stubReader{}), jwtService)
	return &server{t: t, db: db, engine: r, jwt: jwtService, renderer: renderer}
}

func (s *server) user(name string, role cnst.Role) (*database.User, string) {
	s.t.Helper()
	u := &database.User{Username: name, Email: name + "@example.com", Password: "x", FirstName: name, Role: role, IsActive: true}
	require.NoError(s.t, s.db.CreateUser(context.Background(), u))
	token, _, err := s.jwt.GenerateToken(u.ID, u.Role)
	require.NoError(s.t, err)
	return u, token
}

func (s *server) accommodation(name string, rooms int, admins ...*database.User) *database.Accommodation {
	s.t.Helper()
	acc := &database.Accommodation{Name: name, Address: "3 Main Rd", MonthlyRent: 4200, RoomsAvailable: rooms}
	require.NoError(s.t, s.db.CreateAccommodation(context.Background(), acc))
	for _, a := range admins {
		require.NoError(s.t, s.db.AssignAdmin(context.Background(), a.ID, acc.ID))
	}
	return acc
}

func (s *server) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	s := newServer(t)
	_, err := database.InitSuperAdmin(context.Background(), s.db, "root", "root@example.com", "secret123")
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/api/auth/login", gin.H{"username": "root", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, gjson.Get(w.Body.String(), "token").String())
	assert.Equal(t, "MasterAdmin", gjson.Get(w.Body.String(), "user.role").String())
	assert.False(t, gjson.Get(w.Body.String(), "user.password").Exists())

	w = s.do(http.MethodPost, "/api/auth/login", gin.H{"username": "root@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", gjson.Get(w.Body.String(), "error.kind").String())
}

func TestRegisterAndMe(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/api/auth/register", gin.H{
		"username": "thandi", "email": "thandi@example.com", "password": "secret123", "firstName": "Thandi",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Student", gjson.Get(w.Body.String(), "user.role").String())
	token := gjson.Get(w.Body.String(), "token").String()

	w = s.do(http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "thandi", gjson.Get(w.Body.String(), "username").String())

	w = s.do(http.MethodPost, "/api/auth/register", gin.H{"username": "x", "email": "not-an-email"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Len(t, gjson.Get(w.Body.String(), "error.details.violations").Array(), 2)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)
	for _, path := range []string{"/api/applications", "/api/leases", "/api/invoices", "/api/dashboard", "/api/notifications"} {
		w := s.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := s.do(http.MethodGet, "/api/leases", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPublicAccommodations(t *testing.T) {
	s := newServer(t)
	s.accommodation("Sunnyside", 2)
	full := s.accommodation("Full House", 0)

	w := s.do(http.MethodGet, "/api/accommodations", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, gjson.Parse(w.Body.String()).Array(), 1)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/accommodations/%d", full.ID), nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApplicationFlow(t *testing.T) {
	s := newServer(t)
	admin, adminToken := s.user("warden", cnst.RoleAdmin)
	_, outsiderToken := s.user("outsider", cnst.RoleAdmin)
	_, studentToken := s.user("sipho", cnst.RoleStudent)
	acc := s.accommodation("Sunnyside", 1, admin)

	w := s.do(http.MethodPost, "/api/applications", gin.H{"accommodationId": acc.ID, "moveInDate": "2024-07-01"}, studentToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "pending", gjson.Get(w.Body.String(), "entity.status").String())
	id := gjson.Get(w.Body.String(), "entity.id").Uint()
	approve := fmt.Sprintf("/api/applications/%d/approve", id)

	w = s.do(http.MethodPost, approve, nil, outsiderToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "authorization", gjson.Get(w.Body.String(), "error.kind").String())

	w = s.do(http.MethodPost, approve, nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", gjson.Get(w.Body.String(), "entity.status").String())

	w = s.do(http.MethodPost, approve, nil, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", gjson.Get(w.Body.String(), "error.kind").String())

	w = s.do(http.MethodGet, "/api/applications?status=approved", nil, studentToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, gjson.Parse(w.Body.String()).Array(), 1)

	w = s.do(http.MethodGet, "/api/applications?status=maybe", nil, studentToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSubmitApplicationValidation(t *testing.T) {
	s := newServer(t)
	_, studentToken := s.user("sipho", cnst.RoleStudent)

	w := s.do(http.MethodPost, "/api/applications", gin.H{"accommodationId": 999}, studentToken)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	violations := gjson.Get(w.Body.String(), "error.details.violations").Array()
	require.Len(t, violations, 2)
	assert.Equal(t, "move-in date is required", violations[0].String())

	w = s.do(http.MethodPost, "/api/applications", gin.H{"accommodationId": 1, "moveInDate": "01/07/2024"}, studentToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, "/api/applications/abc", nil, studentToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLeaseDocumentFailureKeepsLease(t *testing.T) {
	s := newServer(t)
	admin, adminToken := s.user("warden", cnst.RoleAdmin)
	student, studentToken := s.user("sipho", cnst.RoleStudent)
	acc := s.accommodation("Sunnyside", 2, admin)
	s.renderer.err = errors.New("renderer offline")

	w := s.do(http.MethodPost, "/api/leases", gin.H{
		"studentId": student.ID, "accommodationId": acc.ID,
		"startDate": "2024-07-01", "endDate": "2025-06-30", "monthlyRent": 4200,
	}, adminToken)
	require.Equal(t, http.StatusBadGateway, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Equal(t, "dependency_failure", gjson.Get(body, "error.kind").String())
	assert.True(t, gjson.Get(body, "error.details.committed").Bool())
	leaseID := gjson.Get(body, "entity.id").Uint()
	require.NotZero(t, leaseID)

	download := fmt.Sprintf("/api/documents/lease/%d", leaseID)
	w = s.do(http.MethodGet, download, nil, adminToken)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	s.renderer.err = nil
	w = s.do(http.MethodPost, download+"/regenerate", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, document.Key(document.KindLease, uint(leaseID)), gjson.Get(w.Body.String(), "entity.documentRef").String())

	w = s.do(http.MethodGet, download, nil, studentToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, document.ContentType(), w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), document.Key(document.KindLease, uint(leaseID)))

	w = s.do(http.MethodGet, "/api/documents/receipt/1", nil, adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestInvoiceEndpoints(t *testing.T) {
	s := newServer(t)
	admin, adminToken := s.user("warden", cnst.RoleAdmin)
	student, studentToken := s.user("sipho", cnst.RoleStudent)
	acc := s.accommodation("Sunnyside", 2, admin)

	w := s.do(http.MethodPost, "/api/leases", gin.H{
		"studentId": student.ID, "accommodationId": acc.ID,
		"startDate": "2024-05-01", "endDate": "2025-04-30", "monthlyRent": 4200,
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	leaseID := gjson.Get(w.Body.String(), "entity.id").Uint()

	w = s.do(http.MethodPost, fmt.Sprintf("/api/leases/%d/invoices", leaseID), gin.H{
		"amount": 4200, "dueDate": "2024-05-25", "description": "May rent",
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "overdue", gjson.Get(w.Body.String(), "entity.status").String())
	invoiceID := gjson.Get(w.Body.String(), "entity.id").Uint()

	w = s.do(http.MethodGet, "/api/invoices?status=overdue", nil, studentToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, gjson.Parse(w.Body.String()).Array(), 1)

	w = s.do(http.MethodGet, "/api/invoices/total-due", nil, studentToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 4200, gjson.Get(w.Body.String(), "totalDue").Float(), 0.001)

	status := fmt.Sprintf("/api/invoices/%d/status", invoiceID)
	w = s.do(http.MethodPut, status, gin.H{"status": "Paid"}, studentToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, status, gin.H{"status": "refunded"}, adminToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPut, status, gin.H{"status": "Paid"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "paid", gjson.Get(w.Body.String(), "entity.status").String())

	w = s.do(http.MethodPost, fmt.Sprintf("/api/invoices/%d/reminder", invoiceID), nil, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMaintenanceEndpoints(t *testing.T) {
	s := newServer(t)
	admin, adminToken := s.user("warden", cnst.RoleAdmin)
	student, studentToken := s.user("sipho", cnst.RoleStudent)
	acc := s.accommodation("Sunnyside", 2, admin)

	w := s.do(http.MethodPost, "/api/leases", gin.H{
		"studentId": student.ID, "accommodationId": acc.ID,
		"startDate": "2024-05-01", "endDate": "2025-04-30", "monthlyRent": 4200,
	}, adminToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/maintenance", gin.H{
		"accommodationId": acc.ID, "title": "Leaking tap", "description": "Kitchen tap drips", "priority": "HIGH",
	}, studentToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "high", gjson.Get(w.Body.String(), "entity.priority").String())
	id := gjson.Get(w.Body.String(), "entity.id").Uint()

	status := fmt.Sprintf("/api/maintenance/%d/status", id)
	w = s.do(http.MethodPut, status, gin.H{"status": "InProgress", "notes": "plumber booked"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "in_progress", gjson.Get(w.Body.String(), "entity.status").String())

	w = s.do(http.MethodPut, status, gin.H{"status": "completed"}, adminToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, status, gin.H{"status": "pending"}, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/maintenance?open=true", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, gjson.Parse(w.Body.String()).Array())
}

func TestNotifyStudentsEndpoint(t *testing.T) {
	s := newServer(t)
	_, rootToken := s.user("root", cnst.RoleMasterAdmin)
	_, adminToken := s.user("warden", cnst.RoleAdmin)
	s.user("sipho", cnst.RoleStudent)

	body := gin.H{"target": "all", "subject": "Water outage", "message": "Saturday 9am to noon", "channels": []string{"in_app"}}
	w := s.do(http.MethodPost, "/api/notifications/bulk", body, rootToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "succeeded").Int())

	w = s.do(http.MethodPost, "/api/notifications/bulk", body, adminToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	body["channels"] = []string{"pigeon"}
	w = s.do(http.MethodPost, "/api/notifications/bulk", body, rootToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body["target"] = "everyone"
	w = s.do(http.MethodPost, "/api/notifications/bulk", body, rootToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDashboardEndpoint(t *testing.T) {
	s := newServer(t)
	admin, adminToken := s.user("warden", cnst.RoleAdmin)
	s.accommodation("Sunnyside", 2, admin)
	s.accommodation("Elsewhere", 2)

	w := s.do(http.MethodGet, "/api/dashboard", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), gjson.Get(w.Body.String(), "accommodations").Int())
}
