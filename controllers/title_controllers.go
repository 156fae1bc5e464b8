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
)

// TitleController manages the issue categories of a room.
type TitleController struct {
	Store database.Store
	Audit services.Recorder
}

func NewTitleController(store database.Store, audit services.Recorder) *TitleController {
	return &TitleController{Store: store, Audit: audit}
}

type titleRequest struct {
	Title string `json:"title" binding:"required"`
}

// GetTitles -> kategori sebuah kamar lengkap dengan issue-nya
func (tc *TitleController) GetTitles(c *gin.Context) {
	ctx := c.Request.Context()
	room, err := tc.Store.GetRoom(ctx, c.Param("roomId"))
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}

	titles, err := tc.Store.ListTitles(ctx, room.ID)
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}
	if titles == nil {
		titles = []models.IssueTitle{}
	}
	utils.RespondJSON(c, http.StatusOK, titles)
}

func (tc *TitleController) CreateTitle(c *gin.Context) {
	var req titleRequest
	if !bindJSON(c, &req) {
		return
	}
	text := strings.TrimSpace(req.Title)
	if text == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}

	ctx := c.Request.Context()
	room, err := tc.Store.GetRoom(ctx, c.Param("roomId"))
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}

	title := models.IssueTitle{
		RoomID:    room.ID,
		Title:     text,
		CreatedBy: actorID(c),
	}
	if err := tc.Store.CreateTitle(ctx, &title); err != nil {
		utils.RespondInternal(c, err)
		return
	}

	record(c, tc.Audit, models.Log{
		Action:   models.ActionCreate,
		Target:   models.TargetCategory,
		TargetID: title.ID,
		RoomID:   room.ID,
		Details:  fmt.Sprintf("Room %s: Created category %q", room.Number, title.Title),
	})

	created, err := tc.Store.GetTitle(ctx, title.ID)
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}
	created.Issues = []models.Issue{}
	utils.RespondJSON(c, http.StatusCreated, created)
}

// UpdateTitle -> ganti nama kategori
func (tc *TitleController) UpdateTitle(c *gin.Context) {
	var req titleRequest
	if !bindJSON(c, &req) {
		return
	}
	text := strings.TrimSpace(req.Title)
	if text == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("title is required"))
		return
	}

	ctx := c.Request.Context()
	room, title, ok := tc.scope(c)
	if !ok {
		return
	}

	before := title.Title
	title.Title = text
	if err := tc.Store.UpdateTitle(ctx, title); err != nil {
		respondStoreError(c, err, "Title not found")
		return
	}

	record(c, tc.Audit, models.Log{
		Action:   models.ActionUpdate,
		Target:   models.TargetCategory,
		TargetID: title.ID,
		RoomID:   room.ID,
		Details:  fmt.Sprintf("Room %s: Renamed category %q to %q", room.Number, before, title.Title),
	})

	issues, err := tc.Store.ListIssues(ctx, title.ID)
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	title.Issues = issues
	utils.RespondJSON(c, http.StatusOK, title)
}

// DeleteTitle -> hapus kategori beserta issue-nya
func (tc *TitleController) DeleteTitle(c *gin.Context) {
	room, title, ok := tc.scope(c)
	if !ok {
		return
	}

	if err := tc.Store.DeleteTitle(c.Request.Context(), title.ID); err != nil {
		respondStoreError(c, err, "Title not found or does not belong to this room")
		return
	}

	record(c, tc.Audit, models.Log{
		Action:   models.ActionDelete,
		Target:   models.TargetCategory,
		TargetID: title.ID,
		RoomID:   room.ID,
		Details:  fmt.Sprintf("Room %s: Deleted category %q and its issues", room.Number, title.Title),
	})

	utils.RespondMessage(c, http.StatusOK, "Title and associated issues deleted successfully")
}

// scope loads the room and the title, which must belong to it.
func (tc *TitleController) scope(c *gin.Context) (*models.Room, *models.IssueTitle, bool) {
	ctx := c.Request.Context()
	title, err := tc.Store.GetTitle(ctx, c.Param("titleId"))
	if err == nil && title.RoomID != c.Param("roomId") {
		err = database.ErrNotFound
	}
	if err != nil {
		respondStoreError(c, err, "Title not found or does not belong to this room")
		return nil, nil, false
	}

	room, err := tc.Store.GetRoom(ctx, title.RoomID)
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return nil, nil, false
	}
	return room, title, true
}
