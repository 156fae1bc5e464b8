package controllers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hotel-ops/models"
)

type logBody struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	Details     string `json:"details"`
	PerformedBy struct {
		Username string `json:"username"`
	} `json:"performedBy"`
	Timestamp time.Time `json:"timestamp"`
}

func seedLog(t *testing.T, env *testEnv, userID, action, details string, at time.Time) {
	t.Helper()
	require.NoError(t, env.store.CreateLog(context.Background(), &models.Log{
		Action:    action,
		UserID:    userID,
		Details:   details,
		CreatedAt: at,
	}))
}

func TestGetLogs(t *testing.T) {
	env := setupEnv(t)
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	seedLog(t, env, env.staff.ID, models.ActionCreate, "Added room 101", day)
	seedLog(t, env, env.admin.ID, models.ActionUpdate, "Updated room 101", day.Add(2*time.Hour))
	seedLog(t, env, env.staff.ID, models.ActionDelete, "Deleted room 101", day.Add(48*time.Hour))
	seedLog(t, env, "gone-user", models.ActionCreate, "Added room 102", day.Add(-48*time.Hour))

	get := func(query string) []logBody {
		t.Helper()
		w := env.do(t, http.MethodGet, "/api/logs"+query, env.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode[[]logBody](t, w)
	}
	details := func(logs []logBody) []string {
		out := make([]string, 0, len(logs))
		for _, l := range logs {
			out = append(out, l.Details)
		}
		return out
	}

	all := get("")
	require.Len(t, all, 4)
	assert.Equal(t, "Deleted room 101", all[0].Details)
	assert.Equal(t, "staff", all[0].PerformedBy.Username)
	assert.Equal(t, "System", all[3].PerformedBy.Username)
	assert.True(t, all[0].Timestamp.Equal(day.Add(48*time.Hour)))

	assert.Equal(t, []string{"Added room 101", "Added room 102"}, details(get("?action=create")))
	assert.Equal(t, []string{"Updated room 101"}, details(get("?user=ADM")))
	assert.Equal(t, []string{"Deleted room 101", "Added room 101"}, details(get("?user=staff")))
	assert.Empty(t, get("?user=nobody"))

	// endDate covers the whole day
	assert.Equal(t, []string{"Updated room 101", "Added room 101"},
		details(get("?startDate=2024-03-10&endDate=2024-03-10")))
	assert.Equal(t, []string{"Deleted room 101", "Updated room 101", "Added room 101"},
		details(get("?startDate=2024-03-10")))
	assert.Equal(t, []string{"Added room 102"}, details(get("?endDate=2024-03-09")))
	assert.Equal(t, []string{"Added room 101"},
		details(get("?action=create&user=staff&startDate=2024-03-10T00:00:00Z")))
}

func TestGetLogs_BadFilters(t *testing.T) {
	env := setupEnv(t)

	tests := []struct {
		query   string
		wantMsg string
	}{
		{"?action=archive", "action must be one of: create, update, delete"},
		{"?startDate=yesterday", "invalid startDate"},
		{"?endDate=10-03-2024", "invalid endDate"},
		{"?startDate=2024-03-11&endDate=2024-03-10", "startDate must not be after endDate"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/logs"+tt.query, env.adminToken, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, message(t, w))
		})
	}

	w := env.do(t, http.MethodGet, "/api/logs", env.staffToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
