package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/services"
	"github.com/yeremiapane/hotel-ops/utils"
	"golang.org/x/sync/errgroup"
)

type IssueController struct {
	Store database.Store
	Audit services.Recorder
}

func NewIssueController(store database.Store, audit services.Recorder) *IssueController {
	return &IssueController{Store: store, Audit: audit}
}

type issueRequest struct {
	Description string `json:"description" binding:"required"`
}

// issueResponse is the issue plus the room number and category it was
// filed under.
type issueResponse struct {
	models.Issue
	Room  string `json:"room"`
	Title string `json:"title"`
}

type issueScope struct {
	room  *models.Room
	title *models.IssueTitle
	issue *models.Issue
}

// resolve loads the room, the title and, when withIssue is set, the issue
// concurrently. Any of them missing, or not nested under its parent, is
// reported as not found.
func (ic *IssueController) resolve(c *gin.Context, withIssue bool) (*issueScope, bool) {
	roomID, titleID, issueID := c.Param("roomId"), c.Param("titleId"), c.Param("issueId")
	scope := &issueScope{}

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		room, err := ic.Store.GetRoom(ctx, roomID)
		scope.room = room
		return err
	})
	g.Go(func() error {
		title, err := ic.Store.GetTitle(ctx, titleID)
		scope.title = title
		return err
	})
	if withIssue {
		g.Go(func() error {
			issue, err := ic.Store.GetIssue(ctx, issueID)
			scope.issue = issue
			return err
		})
	}

	err := g.Wait()
	if err == nil && scope.title.RoomID != scope.room.ID {
		err = database.ErrNotFound
	}
	if err == nil && withIssue && scope.issue.TitleID != scope.title.ID {
		err = database.ErrNotFound
	}
	if err != nil {
		msg := "Room or title not found"
		if withIssue {
			msg = "Issue, room, or title not found"
		}
		respondStoreError(c, err, msg)
		return nil, false
	}
	return scope, true
}

// GetIssues -> issue dalam satu kategori, terbaru dulu
func (ic *IssueController) GetIssues(c *gin.Context) {
	scope, ok := ic.resolve(c, false)
	if !ok {
		return
	}

	issues, err := ic.Store.ListIssues(c.Request.Context(), scope.title.ID)
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	utils.RespondJSON(c, http.StatusOK, issues)
}

func (ic *IssueController) CreateIssue(c *gin.Context) {
	var req issueRequest
	if !bindJSON(c, &req) {
		return
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("description is required"))
		return
	}

	scope, ok := ic.resolve(c, false)
	if !ok {
		return
	}

	issue := models.Issue{
		TitleID:     scope.title.ID,
		Description: description,
		CreatedBy:   actorID(c),
	}
	if err := ic.Store.CreateIssue(c.Request.Context(), &issue); err != nil {
		utils.RespondInternal(c, err)
		return
	}

	record(c, ic.Audit, models.Log{
		Action:   models.ActionCreate,
		Target:   models.TargetIssue,
		TargetID: issue.ID,
		RoomID:   scope.room.ID,
		Details: fmt.Sprintf("Room %s: Created issue %q under title %q",
			scope.room.Number, issue.Description, scope.title.Title),
	})

	utils.RespondJSON(c, http.StatusCreated, issueResponse{
		Issue: issue,
		Room:  scope.room.Number,
		Title: scope.title.Title,
	})
}

func (ic *IssueController) UpdateIssue(c *gin.Context) {
	var req issueRequest
	if !bindJSON(c, &req) {
		return
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("description is required"))
		return
	}

	scope, ok := ic.resolve(c, true)
	if !ok {
		return
	}

	before := scope.issue.Description
	updated := *scope.issue
	updated.Description = description
	if err := ic.Store.UpdateIssue(c.Request.Context(), &updated); err != nil {
		respondStoreError(c, err, "Issue, room, or title not found")
		return
	}

	record(c, ic.Audit, models.Log{
		Action:   models.ActionUpdate,
		Target:   models.TargetIssue,
		TargetID: updated.ID,
		RoomID:   scope.room.ID,
		Details: fmt.Sprintf("Room %s: Updated issue under %q from %q to %q",
			scope.room.Number, scope.title.Title, before, updated.Description),
	})

	utils.RespondJSON(c, http.StatusOK, issueResponse{
		Issue: updated,
		Room:  scope.room.Number,
		Title: scope.title.Title,
	})
}

func (ic *IssueController) DeleteIssue(c *gin.Context) {
	scope, ok := ic.resolve(c, true)
	if !ok {
		return
	}

	if err := ic.Store.DeleteIssue(c.Request.Context(), scope.issue.ID); err != nil {
		respondStoreError(c, err, "Issue, room, or title not found")
		return
	}

	record(c, ic.Audit, models.Log{
		Action:   models.ActionDelete,
		Target:   models.TargetIssue,
		TargetID: scope.issue.ID,
		RoomID:   scope.room.ID,
		Details: fmt.Sprintf("Room %s: Deleted issue %q from title %q",
			scope.room.Number, scope.issue.Description, scope.title.Title),
	})

	utils.RespondMessage(c, http.StatusOK, "Issue deleted successfully")
}
