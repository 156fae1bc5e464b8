package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hotel-ops/database"
	"github.com/yeremiapane/hotel-ops/middlewares"
	"github.com/yeremiapane/hotel-ops/models"
	"github.com/yeremiapane/hotel-ops/services"
	"github.com/yeremiapane/hotel-ops/utils"
)

// respondStoreError maps store sentinels to 404 / 400 and anything else to
// a 500.
func respondStoreError(c *gin.Context, err error, notFound string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, errors.New(notFound))
	case errors.Is(err, database.ErrDuplicate):
		utils.RespondError(c, http.StatusBadRequest, errors.New("Duplicate record"))
	default:
		utils.RespondInternal(c, err)
	}
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New(utils.BindingMessage(err)))
		return false
	}
	return true
}

func actorID(c *gin.Context) string {
	if claims := middlewares.CurrentClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// record hands an audit entry for the calling user to the recorder.
func record(c *gin.Context, audit services.Recorder, entry models.Log) {
	entry.UserID = actorID(c)
	audit.Record(c.Request.Context(), entry)
}
