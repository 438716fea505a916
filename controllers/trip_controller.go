// File: /controllers/trip_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"motofuel-api/models"
	"motofuel-api/services"
	"motofuel-api/utils"
)

type TripController struct {
	trips *services.TripService
}

func NewTripController(trips *services.TripService) *TripController {
	return &TripController{trips: trips}
}

type RoutePointRequest struct {
	Latitude  *float64   `json:"latitude" binding:"required"`
	Longitude *float64   `json:"longitude" binding:"required"`
	Altitude  *float64   `json:"altitude"`
	Speed     *float64   `json:"speed"`
	Timestamp *time.Time `json:"timestamp"`
}

type StartTripRequest struct {
	StartTime *time.Time `json:"start_time"`
}

type UpdateTripStatusRequest struct {
	Status     models.TripStatus  `json:"status" binding:"required,tripstatus"`
	StartTime  *time.Time         `json:"start_time"`
	EndTime    *time.Time         `json:"end_time"`
	FinalStats *models.FinalStats `json:"final_stats"`
	Reason     string             `json:"reason"`
}

type FailTripRequest struct {
	Reason string `json:"reason"`
}

func (tc *TripController) GetTrips(c *gin.Context) {
	status := models.TripStatus(c.Query("status"))

	trips, err := tc.trips.List(c.Request.Context(), currentActor(c), status)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

func (tc *TripController) GetTrip(c *gin.Context) {
	trip, err := tc.trips.Get(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (tc *TripController) CreateTrip(c *gin.Context) {
	var req services.CreateTripInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	trip, err := tc.trips.CreatePlanned(c.Request.Context(), currentActor(c), req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (tc *TripController) StartTrip(c *gin.Context) {
	var req StartTripRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	trip, err := tc.trips.Start(c.Request.Context(), currentActor(c), c.Param("id"), req.StartTime)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (tc *TripController) AddRoutePoint(c *gin.Context) {
	var req RoutePointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	point, err := tc.trips.AddRoutePoint(c.Request.Context(), currentActor(c), c.Param("id"), services.RoutePointInput{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Altitude:  req.Altitude,
		Speed:     req.Speed,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, point)
}

func (tc *TripController) AddReroute(c *gin.Context) {
	trip, err := tc.trips.AddReroute(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (tc *TripController) AddExpense(c *gin.Context) {
	var req services.ExpenseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	expense, err := tc.trips.AddExpense(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (tc *TripController) CompleteTrip(c *gin.Context) {
	var req services.CompleteTripInput
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	trip, err := tc.trips.Complete(c.Request.Context(), currentActor(c), c.Param("id"), req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (tc *TripController) CancelTrip(c *gin.Context) {
	trip, err := tc.trips.Cancel(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (tc *TripController) FailTrip(c *gin.Context) {
	var req FailTripRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	trip, err := tc.trips.Fail(c.Request.Context(), currentActor(c), c.Param("id"), req.Reason)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// UpdateTripStatus drives the lifecycle through a status field instead of the
// dedicated action routes.
func (tc *TripController) UpdateTripStatus(c *gin.Context) {
	var req UpdateTripStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	actor := currentActor(c)
	tripID := c.Param("id")

	var (
		trip *models.TripRecord
		err  error
	)
	switch req.Status {
	case models.TripStatusInProgress:
		trip, err = tc.trips.Start(ctx, actor, tripID, req.StartTime)
	case models.TripStatusCompleted:
		trip, err = tc.trips.Complete(ctx, actor, tripID, services.CompleteTripInput{EndTime: req.EndTime, Stats: req.FinalStats})
	case models.TripStatusCancelled:
		trip, err = tc.trips.Cancel(ctx, actor, tripID)
	case models.TripStatusFailed:
		trip, err = tc.trips.Fail(ctx, actor, tripID, req.Reason)
	default:
		err = utils.NewValidationError("status", "cannot move a trip back to "+string(req.Status))
	}
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}
