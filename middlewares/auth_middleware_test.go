package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/utils"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, database.ErrNotFound
}

func setupGate(t *testing.T) (*gin.Engine, *utils.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	tokens := utils.NewTokenManager("gate-secret", time.Hour, "hotel-ops")
	users := fakeUsers{
		"admin-1": {ID: "admin-1", Username: "boss", Role: models.RoleAdmin},
		"staff-1": {ID: "staff-1", Username: "awed", Role: models.RoleStaff},
		// token still says admin, the store says otherwise
		"demoted": {ID: "demoted", Username: "old", Role: models.RoleStaff},
	}
	gate := NewGate(tokens, []string{"1234", "9876"}, users)

	r := gin.New()
	handler := func(c *gin.Context) {
		c.String(http.StatusOK, CurrentCapability(c).String())
	}
	r.GET("/view", gate.Require(CapabilityViewer), handler)
	r.GET("/staff", gate.Require(CapabilityStaff), handler)
	r.GET("/admin", gate.Require(CapabilityAdmin), handler)
	return r, tokens
}

func token(t *testing.T, tm *utils.TokenManager, id, role string) string {
	t.Helper()
	tok, err := tm.GenerateToken(id, id, role)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestGate(t *testing.T) {
	r, tm := setupGate(t)
	foreign := utils.NewTokenManager("other-secret", time.Hour, "hotel-ops")

	tests := []struct {
		name     string
		path     string
		bearer   string
		pin      string
		wantCode int
		wantBody string
	}{
		{name: "viewer with pin", path: "/view", pin: "1234", wantCode: 200, wantBody: "viewer"},
		{name: "viewer with rotated pin", path: "/view", pin: "9876", wantCode: 200, wantBody: "viewer"},
		{name: "viewer with token", path: "/view", bearer: token(t, tm, "staff-1", "staff"), wantCode: 200, wantBody: "staff"},
		{name: "viewer wrong pin", path: "/view", pin: "0000", wantCode: 401},
		{name: "viewer nothing", path: "/view", wantCode: 401},
		{name: "viewer bad token no pin", path: "/view", bearer: "garbage", wantCode: 401},
		{name: "viewer bad token good pin", path: "/view", bearer: "garbage", pin: "1234", wantCode: 401},
		{name: "viewer good token bad pin", path: "/view", bearer: token(t, tm, "staff-1", "staff"), pin: "0000", wantCode: 401},
		{name: "viewer good token good pin", path: "/view", bearer: token(t, tm, "admin-1", "admin"), pin: "1234", wantCode: 200, wantBody: "admin"},

		{name: "staff with token", path: "/staff", bearer: token(t, tm, "staff-1", "staff"), wantCode: 200, wantBody: "staff"},
		{name: "staff missing token", path: "/staff", wantCode: 401},
		{name: "staff pin is not enough", path: "/staff", pin: "1234", wantCode: 401},
		{name: "staff invalid token", path: "/staff", bearer: "garbage", wantCode: 403},
		{name: "staff foreign token", path: "/staff", bearer: token(t, foreign, "staff-1", "staff"), wantCode: 403},

		{name: "admin ok", path: "/admin", bearer: token(t, tm, "admin-1", "admin"), wantCode: 200, wantBody: "admin"},
		{name: "admin as staff", path: "/admin", bearer: token(t, tm, "staff-1", "staff"), wantCode: 403},
		{name: "admin demoted since login", path: "/admin", bearer: token(t, tm, "demoted", "admin"), wantCode: 403},
		{name: "admin deleted user", path: "/admin", bearer: token(t, tm, "ghost", "admin"), wantCode: 404},
		{name: "admin missing token", path: "/admin", wantCode: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tt.bearer)
			}
			if tt.pin != "" {
				req.Header.Set(HeaderViewPIN, tt.pin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"status":false`)
			}
		})
	}
}

func TestValidPINWithoutConfiguredPins(t *testing.T) {
	gate := NewGate(utils.NewTokenManager("s", time.Hour, ""), nil, fakeUsers{})
	assert.False(t, gate.ValidPIN(""))
	assert.False(t, gate.ValidPIN("1234"))
}
