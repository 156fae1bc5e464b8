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

type RoomController struct {
	Store database.Store
	Audit services.Recorder
}

func NewRoomController(store database.Store, audit services.Recorder) *RoomController {
	return &RoomController{Store: store, Audit: audit}
}

type roomRequest struct {
	Number string `json:"number"`
	Type   string `json:"type"`
	Status string `json:"status" binding:"omitempty,roomstatus"`
}

// GetRooms -> semua kamar, urut nomor
func (rc *RoomController) GetRooms(c *gin.Context) {
	rooms, err := rc.Store.ListRooms(c.Request.Context())
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	utils.RespondJSON(c, http.StatusOK, rooms)
}

func (rc *RoomController) GetRoom(c *gin.Context) {
	room, err := rc.Store.GetRoom(c.Request.Context(), c.Param("roomId"))
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}
	utils.RespondJSON(c, http.StatusOK, room)
}

// CreateRoom -> tambah kamar baru. Tipe "Other" selalu bernomor OTHER.
func (rc *RoomController) CreateRoom(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Type = strings.TrimSpace(req.Type)
	if req.Type == "" || (strings.TrimSpace(req.Number) == "" && !models.IsOtherType(req.Type)) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Room number and type are required"))
		return
	}

	number, err := models.NormalizeRoomNumber(req.Number, req.Type)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := rc.Store.GetRoomByNumber(ctx, number); err == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Room number already exists"))
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		utils.RespondInternal(c, err)
		return
	}

	room := models.Room{
		Number: number,
		Type:   req.Type,
		Status: models.RoomStatusAvailable,
		Floor:  models.FloorOf(number),
	}
	if req.Status != "" {
		room.Status = req.Status
	}

	if err := rc.Store.CreateRoom(ctx, &room); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("Room number already exists"))
			return
		}
		utils.RespondInternal(c, err)
		return
	}

	record(c, rc.Audit, models.Log{
		Action:   models.ActionCreate,
		Target:   models.TargetRoom,
		TargetID: room.ID,
		RoomID:   room.ID,
		Details:  fmt.Sprintf("Added room %s", room.Number),
	})

	utils.InfoLogger.Printf("New room created: %s (type=%s)", room.Number, room.Type)
	utils.RespondJSON(c, http.StatusCreated, room)
}

func (rc *RoomController) UpdateRoom(c *gin.Context) {
	var req roomRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	room, err := rc.Store.GetRoom(ctx, c.Param("roomId"))
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}

	if t := strings.TrimSpace(req.Type); t != "" {
		room.Type = t
	}
	number, err := models.NormalizeRoomNumber(req.Number, room.Type)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if number != room.Number {
		if _, err := rc.Store.GetRoomByNumber(ctx, number); err == nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("Room number already exists"))
			return
		} else if !errors.Is(err, database.ErrNotFound) {
			utils.RespondInternal(c, err)
			return
		}
	}

	room.Number = number
	room.Floor = models.FloorOf(number)
	if req.Status != "" {
		room.Status = req.Status
	}

	if err := rc.Store.UpdateRoom(ctx, room); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("Room number already exists"))
			return
		}
		respondStoreError(c, err, "Room not found")
		return
	}

	record(c, rc.Audit, models.Log{
		Action:   models.ActionUpdate,
		Target:   models.TargetRoom,
		TargetID: room.ID,
		RoomID:   room.ID,
		Details:  fmt.Sprintf("Updated room %s", room.Number),
	})

	utils.RespondJSON(c, http.StatusOK, room)
}

// DeleteRoom -> hapus kamar beserta kategori dan issue di dalamnya
func (rc *RoomController) DeleteRoom(c *gin.Context) {
	ctx := c.Request.Context()
	room, err := rc.Store.GetRoom(ctx, c.Param("roomId"))
	if err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}

	if err := rc.Store.DeleteRoom(ctx, room.ID); err != nil {
		respondStoreError(c, err, "Room not found")
		return
	}

	record(c, rc.Audit, models.Log{
		Action:   models.ActionDelete,
		Target:   models.TargetRoom,
		TargetID: room.ID,
		RoomID:   room.ID,
		Details:  fmt.Sprintf("Deleted room %s", room.Number),
	})

	utils.InfoLogger.Printf("Room %s deleted", room.Number)
	utils.RespondMessage(c, http.StatusOK, "Room deleted successfully")
}
