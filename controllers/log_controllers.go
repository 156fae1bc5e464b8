package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/utils"
)

const systemUsername = "System"

type LogController struct {
	Store database.Store
}

func NewLogController(store database.Store) *LogController {
	return &LogController{Store: store}
}

type performer struct {
	Username string `json:"username"`
}

type logEntry struct {
	ID          string    `json:"id"`
	Action      string    `json:"action"`
	Details     string    `json:"details"`
	PerformedBy performer `json:"performedBy"`
	Timestamp   time.Time `json:"timestamp"`
}

// GetLogs -> audit trail, terbaru dulu. Filter: action, user, startDate, endDate.
func (lc *LogController) GetLogs(c *gin.Context) {
	filter, err := parseLogFilter(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	if user := strings.TrimSpace(c.Query("user")); user != "" {
		ids, err := lc.Store.FindUserIDs(ctx, user)
		if err != nil {
			utils.RespondInternal(c, err)
			return
		}
		filter.UserIDs = ids
	}

	logs, err := lc.Store.ListLogs(ctx, filter)
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}

	userIDs := make([]string, 0, len(logs))
	seen := make(map[string]bool, len(logs))
	for _, l := range logs {
		if l.UserID != "" && !seen[l.UserID] {
			seen[l.UserID] = true
			userIDs = append(userIDs, l.UserID)
		}
	}
	users, err := lc.Store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	out := make([]logEntry, 0, len(logs))
	for _, l := range logs {
		name, ok := names[l.UserID]
		if !ok {
			name = systemUsername
		}
		out = append(out, logEntry{
			ID:          l.ID,
			Action:      l.Action,
			Details:     l.Details,
			PerformedBy: performer{Username: name},
			Timestamp:   l.CreatedAt,
		})
	}
	utils.RespondJSON(c, http.StatusOK, out)
}

func parseLogFilter(c *gin.Context) (database.LogFilter, error) {
	var filter database.LogFilter

	if action := strings.TrimSpace(c.Query("action")); action != "" {
		if !models.ValidAction(action) {
			return filter, errors.New("action must be one of: create, update, delete")
		}
		filter.Action = action
	}

	if raw := strings.TrimSpace(c.Query("startDate")); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			return filter, errors.New("invalid startDate")
		}
		filter.From = &from
	}

	if raw := strings.TrimSpace(c.Query("endDate")); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			return filter, errors.New("invalid endDate")
		}
		to = endOfDay(to)
		filter.To = &to
	}

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return filter, errors.New("startDate must not be after endDate")
	}
	return filter, nil
}

// parseDate accepts YYYY-MM-DD (read as UTC) or RFC 3339.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// endOfDay moves t to 23:59:59.999 of the same day in t's location.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
