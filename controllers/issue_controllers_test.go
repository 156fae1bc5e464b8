package controllers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/middlewares"
	"github.com/yeremiapane/hotel-ops/models"
)

type issueBody struct {
	models.Issue
	Room  string `json:"room"`
	Title string `json:"title"`
}

func issuesPath(roomID, titleID string) string {
	return "/api/rooms/" + roomID + "/titles/" + titleID + "/issues"
}

func createIssue(t *testing.T, env *testEnv, roomID, titleID, description string) issueBody {
	t.Helper()
	w := env.do(t, http.MethodPost, issuesPath(roomID, titleID), env.staffToken, map[string]string{"description": description})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[issueBody](t, w)
}

func TestCreateIssue(t *testing.T) {
	env := setupEnv(t)
	room := createRoom(t, env, "101", "Standard")
	title := createTitle(t, env, room.ID, "Plumbing")

	issue := createIssue(t, env, room.ID, title.ID, "Leaky faucet")
	assert.NotEmpty(t, issue.ID)
	assert.Equal(t, title.ID, issue.TitleID)
	assert.Equal(t, env.staff.ID, issue.CreatedBy)
	assert.Equal(t, "101", issue.Room)
	assert.Equal(t, "Plumbing", issue.Title)

	w := env.do(t, http.MethodPost, issuesPath(room.ID, title.ID), env.staffToken, map[string]string{"description": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "description is required", message(t, w))

	w = env.do(t, http.MethodPost, issuesPath(room.ID, "missing"), env.staffToken, map[string]string{"description": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Room or title not found", message(t, w))

	other := createRoom(t, env, "102", "Standard")
	w = env.do(t, http.MethodPost, issuesPath(other.ID, title.ID), env.staffToken, map[string]string{"description": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	logs := env.logs(t, database.LogFilter{Action: models.ActionCreate})
	assert.Equal(t, `Room 101: Created issue "Leaky faucet" under title "Plumbing"`, logs[1].Details)
}

func TestGetIssues(t *testing.T) {
	env := setupEnv(t)
	room := createRoom(t, env, "101", "Standard")
	title := createTitle(t, env, room.ID, "Plumbing")

	w := env.do(t, http.MethodGet, issuesPath(room.ID, title.ID), env.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	createIssue(t, env, room.ID, title.ID, "First")
	time.Sleep(5 * time.Millisecond)
	createIssue(t, env, room.ID, title.ID, "Second")

	w = env.do(t, http.MethodGet, issuesPath(room.ID, title.ID), env.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	issues := decode[[]models.Issue](t, w)
	require.Len(t, issues, 2)
	assert.Equal(t, "Second", issues[0].Description)
	assert.Equal(t, "First", issues[1].Description)

	// issue routes are staff only
	w = env.doWithHeaders(t, http.MethodGet, issuesPath(room.ID, title.ID), nil, map[string]string{middlewares.HeaderViewPIN: testPIN})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateIssue(t *testing.T) {
	env := setupEnv(t)
	room := createRoom(t, env, "101", "Standard")
	title := createTitle(t, env, room.ID, "Plumbing")
	issue := createIssue(t, env, room.ID, title.ID, "Leaky faucet")

	path := issuesPath(room.ID, title.ID) + "/" + issue.ID
	w := env.do(t, http.MethodPut, path, env.staffToken, map[string]string{"description": "Faucet replaced"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[issueBody](t, w)
	assert.Equal(t, "Faucet replaced", updated.Description)
	assert.Equal(t, issue.ID, updated.ID)
	assert.Equal(t, "101", updated.Room)
	assert.Equal(t, "Plumbing", updated.Title)

	stored, err := env.store.GetIssue(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Faucet replaced", stored.Description)

	logs := env.logs(t, database.LogFilter{Action: models.ActionUpdate})
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Details, `"Leaky faucet"`)
	assert.Contains(t, logs[0].Details, `"Faucet replaced"`)

	w = env.do(t, http.MethodPut, issuesPath(room.ID, title.ID)+"/missing", env.staffToken, map[string]string{"description": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Issue, room, or title not found", message(t, w))
}

func TestDeleteIssue(t *testing.T) {
	env := setupEnv(t)
	room := createRoom(t, env, "101", "Standard")
	title := createTitle(t, env, room.ID, "Plumbing")
	otherTitle := createTitle(t, env, room.ID, "Electrical")
	issue := createIssue(t, env, room.ID, title.ID, "Leaky faucet")

	// the issue is not filed under otherTitle
	w := env.do(t, http.MethodDelete, issuesPath(room.ID, otherTitle.ID)+"/"+issue.ID, env.staffToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, issuesPath(room.ID, title.ID)+"/"+issue.ID, env.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Issue deleted successfully", message(t, w))

	w = env.do(t, http.MethodDelete, issuesPath(room.ID, title.ID)+"/"+issue.ID, env.staffToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	logs := env.logs(t, database.LogFilter{Action: models.ActionDelete})
	require.Len(t, logs, 1)
	assert.Equal(t, `Room 101: Deleted issue "Leaky faucet" from title "Plumbing"`, logs[0].Details)
}
