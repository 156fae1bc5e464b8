package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/utils"
)

type PINVerifier interface {
	ValidPIN(pin string) bool
}

type AuthController struct {
	Store  database.Store
	Tokens *utils.TokenManager
	PINs   PINVerifier
}

func NewAuthController(store database.Store, tokens *utils.TokenManager, pins PINVerifier) *AuthController {
	return &AuthController{Store: store, Tokens: tokens, PINs: pins}
}

// Login -> tukar username+password dengan token
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	user, err := ac.Store.GetUserByUsername(c.Request.Context(), input.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid credentials"))
			return
		}
		utils.RespondInternal(c, err)
		return
	}

	if !utils.CheckPassword(user.Password, input.Password) {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid credentials"))
		return
	}

	token, err := ac.Tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		utils.RespondInternal(c, err)
		return
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Username, user.Role)
	utils.RespondJSON(c, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

type pinRequest struct {
	PIN string `json:"pin"`
}

// VerifyPIN -> cek PIN tampilan publik
func (ac *AuthController) VerifyPIN(c *gin.Context) {
	var req pinRequest
	_ = c.ShouldBindJSON(&req)

	if !ac.PINs.ValidPIN(req.PIN) {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid PIN"))
		return
	}
	utils.RespondMessage(c, http.StatusOK, "PIN verified")
}

// PINLogin answers in the {success} shape the public view expects.
func (ac *AuthController) PINLogin(c *gin.Context) {
	var req pinRequest
	_ = c.ShouldBindJSON(&req)

	if !ac.PINs.ValidPIN(strings.TrimSpace(req.PIN)) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid PIN"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
