package utils

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/hotel-ops/models"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags used in request bindings:
// userrole, roomstatus and logaction.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin binding engine is not go-playground/validator")
			return
		}
		tags := map[string]func(string) bool{
			"userrole":   models.ValidRole,
			"roomstatus": models.ValidRoomStatus,
			"logaction":  models.ValidAction,
		}
		for tag, fn := range tags {
			fn := fn
			if e := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
				return fn(fl.Field().String())
			}); e != nil {
				err = e
				return
			}
		}
	})
	return err
}

// BindingMessage turns a binding error into a short client message such as
// "password is required".
func BindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "userrole":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s, %s", field, models.RoleAdmin, models.RoleStaff))
		case "roomstatus":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s, %s, %s", field,
				models.RoomStatusAvailable, models.RoomStatusOccupied, models.RoomStatusMaintenance))
		case "logaction":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s, %s, %s", field,
				models.ActionCreate, models.ActionUpdate, models.ActionDelete))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(msgs, "; ")
}
