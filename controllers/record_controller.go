// File: /controllers/record_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"motofuel-api/services"
	"motofuel-api/utils"
)

type RecordController struct {
	records *services.FuelRecordService
}

func NewRecordController(records *services.FuelRecordService) *RecordController {
	return &RecordController{records: records}
}

func (rc *RecordController) CreateFuelLog(c *gin.Context) {
	var req services.CreateFuelLogInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	fuelLog, err := rc.records.CreateFuelLog(c.Request.Context(), currentActor(c), req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fuelLog)
}

func (rc *RecordController) CreateMaintenance(c *gin.Context) {
	var req services.CreateMaintenanceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	record, err := rc.records.CreateMaintenance(c.Request.Context(), currentActor(c), req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}
