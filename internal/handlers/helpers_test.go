package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/task_manager/internal/events"
	"github.com/Skotchmaster/task_manager/internal/handlers"
	"github.com/Skotchmaster/task_manager/internal/hash"
	"github.com/Skotchmaster/task_manager/internal/httpx"
	mw "github.com/Skotchmaster/task_manager/internal/middleware"
	"github.com/Skotchmaster/task_manager/internal/models"
	"github.com/Skotchmaster/task_manager/internal/repo"
	"github.com/Skotchmaster/task_manager/internal/service"
	"github.com/Skotchmaster/task_manager/internal/tokens"
	httpserver "github.com/Skotchmaster/task_manager/internal/transport/http"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Tokens *tokens.Manager
}

type envelope struct {
	StatusCode int                 `json:"statusCode"`
	Data       json.RawMessage     `json:"data"`
	Message    string              `json:"message"`
	Success    bool                `json:"success"`
	Errors     []map[string]string `json:"errors"`
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// Each pooled connection would get its own :memory: database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)
	repository := repo.New(db)

	tm := &tokens.Manager{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     time.Hour,
		RefreshTTL:    10 * time.Hour,
	}

	producer := &events.Producer{}

	e := echo.New()
	e.HTTPErrorHandler = httpx.ErrorHandler

	deps := httpserver.Deps{
		DB:          db,
		AuthHandler: &handlers.AuthHandler{Svc: &service.AuthService{Repo: repository, Tokens: tm, Producer: producer}},
		TaskHandler: &handlers.TaskHandler{Svc: &service.TaskService{Repo: repository, Producer: producer}},
		UserHandler: &handlers.UserHandler{Svc: &service.UserService{Repo: repository}},
		Auth:        mw.NewAuth(tm),
	}
	httpserver.Register(e, &deps)

	return &testEnv{T: t, E: e, DB: db, Tokens: tm}
}

func (env *testEnv) request(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func newRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func serve(env *testEnv, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder) envelope {
	var resp envelope
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// createUser writes a user straight into the store, bypassing the signup
// endpoint, so tests can mint admins.
func (env *testEnv) createUser(username, email, password, role string) *models.User {
	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: pwHash,
		Role:         role,
	}
	require.NoError(env.T, env.DB.Create(user).Error)
	return user
}

// accessCookie issues a valid access token for the user, the same way a
// login would place it.
func (env *testEnv) accessCookie(user *models.User) *http.Cookie {
	token, err := env.Tokens.IssueAccessToken(user.ID, user.Email, user.Role)
	require.NoError(env.T, err)
	return &http.Cookie{Name: "accessToken", Value: token}
}

func (env *testEnv) createTask(user *models.User, title, status, priority string, dueDate *time.Time) *models.Task {
	task := &models.Task{
		ID:       uuid.NewString(),
		Title:    title,
		Status:   status,
		Priority: priority,
		DueDate:  dueDate,
		UserID:   user.ID,
	}
	require.NoError(env.T, env.DB.Create(task).Error)
	return task
}
