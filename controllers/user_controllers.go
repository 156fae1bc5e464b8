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

type UserController struct {
	Store database.Store
	Audit services.Recorder
}

func NewUserController(store database.Store, audit services.Recorder) *UserController {
	return &UserController{Store: store, Audit: audit}
}

// GetAllUsers -> daftar user tanpa password
func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, err := uc.Store.ListUsers(c.Request.Context())
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	utils.RespondJSON(c, http.StatusOK, users)
}

func (uc *UserController) CreateUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role" binding:"required,userrole"`
	}
	if !bindJSON(c, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	ctx := c.Request.Context()
	if _, err := uc.Store.GetUserByUsername(ctx, req.Username); err == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Username already exists"))
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		utils.RespondInternal(c, err)
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}

	user := models.User{
		Username: req.Username,
		Password: hashed,
		Role:     req.Role,
	}
	if err := uc.Store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("Username already exists"))
			return
		}
		utils.RespondInternal(c, err)
		return
	}

	record(c, uc.Audit, models.Log{
		Action:   models.ActionCreate,
		Target:   models.TargetUser,
		TargetID: user.ID,
		Details:  fmt.Sprintf("Created user: %s with role: %s", user.Username, user.Role),
	})

	utils.InfoLogger.Printf("New user created: %s (role=%s)", user.Username, user.Role)
	utils.RespondJSON(c, http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    user,
	})
}

func (uc *UserController) UpdatePassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}

	ctx := c.Request.Context()
	user, err := uc.Store.GetUser(ctx, c.Param("id"))
	if err != nil {
		respondStoreError(c, err, "User not found")
		return
	}
	if err := uc.Store.UpdateUserPassword(ctx, user.ID, hashed); err != nil {
		respondStoreError(c, err, "User not found")
		return
	}

	record(c, uc.Audit, models.Log{
		Action:   models.ActionUpdate,
		Target:   models.TargetUser,
		TargetID: user.ID,
		Details:  fmt.Sprintf("Updated password for user: %s", user.Username),
	})

	utils.RespondMessage(c, http.StatusOK, "Password updated successfully")
}

func (uc *UserController) UpdateRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required,userrole"`
	}
	if !bindJSON(c, &req) {
		return
	}

	userID := c.Param("id")
	if userID == actorID(c) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Cannot change your own role"))
		return
	}

	ctx := c.Request.Context()
	user, err := uc.Store.GetUser(ctx, userID)
	if err != nil {
		respondStoreError(c, err, "User not found")
		return
	}
	if err := uc.Store.UpdateUserRole(ctx, user.ID, req.Role); err != nil {
		respondStoreError(c, err, "User not found")
		return
	}

	record(c, uc.Audit, models.Log{
		Action:   models.ActionUpdate,
		Target:   models.TargetUser,
		TargetID: user.ID,
		Details:  fmt.Sprintf("Updated role of %s from %s to %s", user.Username, user.Role, req.Role),
	})

	utils.RespondMessage(c, http.StatusOK, "Role updated successfully")
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == actorID(c) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("Cannot delete your own account"))
		return
	}

	ctx := c.Request.Context()
	user, err := uc.Store.GetUser(ctx, userID)
	if err != nil {
		respondStoreError(c, err, "User not found")
		return
	}
	if err := uc.Store.DeleteUser(ctx, user.ID); err != nil {
		respondStoreError(c, err, "User not found")
		return
	}

	record(c, uc.Audit, models.Log{
		Action:   models.ActionDelete,
		Target:   models.TargetUser,
		TargetID: user.ID,
		Details:  fmt.Sprintf("Deleted user: %s", user.Username),
	})

	utils.RespondMessage(c, http.StatusOK, "User deleted successfully")
}
