// File: /controllers/fuel_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"motofuel-api/services"
	"motofuel-api/utils"
)

// FuelController serves the reconciled fuel analytics views.
type FuelController struct {
	analytics *services.AnalyticsCache
}

func NewFuelController(analytics *services.AnalyticsCache) *FuelController {
	return &FuelController{analytics: analytics}
}

type FuelQuery struct {
	Period       string `form:"period" binding:"omitempty,fuelperiod"`
	MotorcycleID string `form:"motorcycle_id"`
	// Older clients send motorId.
	MotorID string `form:"motorId"`
}

func (fc *FuelController) params(c *gin.Context) (services.FuelQueryParams, bool) {
	var q FuelQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.SendValidationError(c, "period must be one of 7d, 30d, 90d")
		return services.FuelQueryParams{}, false
	}
	motorcycleID := q.MotorcycleID
	if motorcycleID == "" {
		motorcycleID = q.MotorID
	}
	return services.FuelQueryParams{
		UserID:       currentActor(c).UserID,
		Period:       q.Period,
		MotorcycleID: motorcycleID,
	}, true
}

func (fc *FuelController) GetCombined(c *gin.Context) {
	p, ok := fc.params(c)
	if !ok {
		return
	}
	data, err := fc.analytics.Combined(c.Request.Context(), p)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (fc *FuelController) GetEfficiency(c *gin.Context) {
	p, ok := fc.params(c)
	if !ok {
		return
	}
	data, err := fc.analytics.Efficiency(c.Request.Context(), p)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (fc *FuelController) GetCostAnalysis(c *gin.Context) {
	p, ok := fc.params(c)
	if !ok {
		return
	}
	data, err := fc.analytics.CostAnalysis(c.Request.Context(), p)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
