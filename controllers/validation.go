// File: /controllers/validation.go
package controllers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"motofuel-api/middleware"
	"motofuel-api/models"
	"motofuel-api/services"
)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags used by request structs.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("fuelperiod", validateFuelPeriod)
			_ = v.RegisterValidation("tripstatus", validateTripStatus)
		}
	})
}

// validateFuelPeriod accepts 7d, 30d and 90d.
func validateFuelPeriod(fl validator.FieldLevel) bool {
	_, ok := models.PeriodWindows[fl.Field().String()]
	return ok
}

func validateTripStatus(fl validator.FieldLevel) bool {
	return models.TripStatus(fl.Field().String()).IsValid()
}

// currentActor reads the identity stored by middleware.AuthMiddleware.
func currentActor(c *gin.Context) services.Actor {
	return services.Actor{
		UserID:  c.GetString(middleware.ContextUserID),
		IsAdmin: c.GetBool(middleware.ContextIsAdmin),
	}
}

// bindOptionalJSON binds the body when one was sent.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}
