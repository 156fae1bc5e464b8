package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hotel-ops/config"
	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/live"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/router"
	"github.com/yeremiapane/hotel-ops/services"
	"github.com/yeremiapane/hotel-ops/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPIN = "4321"

type testEnv struct {
	router *gin.Engine
	store  *database.GormStore
	audit  *services.AuditWriter
	hub    *live.Hub
	tokens *utils.TokenManager

	admin      *models.User
	staff      *models.User
	adminToken string
	staffToken string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	store := database.NewGormStore(db)

	cfg := &config.Config{
		HTTP: config.HTTPConfig{AllowedOrigins: []string{"*"}},
		Auth: config.AuthConfig{ViewPINs: []string{testPIN}},
		RateLimiter: config.RateLimiterConfig{
			RequestsPerSecond: 10000,
			Burst:             10000,
			LoginPerMinute:    10000,
			LoginBurst:        10000,
		},
	}

	tokens := utils.NewTokenManager("controller-test-secret", time.Hour, "hotel-ops")
	hub := live.NewHub()
	audit := services.NewAuditWriter(store, hub, nil, 64)
	audit.Start()

	env := &testEnv{
		router: router.SetupRouter(router.Dependencies{
			Config: cfg,
			Store:  store,
			Tokens: tokens,
			Audit:  audit,
			Hub:    hub,
		}),
		store:  store,
		audit:  audit,
		hub:    hub,
		tokens: tokens,
	}

	env.admin = env.createUser(t, "admin", "admin-pass", models.RoleAdmin)
	env.staff = env.createUser(t, "staff", "staff-pass", models.RoleStaff)
	env.adminToken = env.tokenFor(t, env.admin)
	env.staffToken = env.tokenFor(t, env.staff)

	t.Cleanup(func() {
		_ = audit.Stop(context.Background())
		_ = store.Close(context.Background())
	})
	return env
}

func (e *testEnv) createUser(t *testing.T, username, password, role string) *models.User {
	t.Helper()
	hashed, err := utils.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{Username: username, Password: hashed, Role: role}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) tokenFor(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := e.tokens.GenerateToken(u.ID, u.Username, u.Role)
	require.NoError(t, err)
	return tok
}

// do sends a JSON request. token may be empty.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return e.doWithHeaders(t, method, path, body, authHeader(token))
}

func (e *testEnv) doWithHeaders(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// logs waits for pending audit entries and returns them newest first.
func (e *testEnv) logs(t *testing.T, filter database.LogFilter) []models.Log {
	t.Helper()
	e.audit.Flush()
	logs, err := e.store.ListLogs(context.Background(), filter)
	require.NoError(t, err)
	return logs
}

func authHeader(token string) map[string]string {
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[utils.JSONResponse](t, w).Message
}
