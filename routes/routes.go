// File: /routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"motofuel-api/controllers"
	"motofuel-api/metrics"
	"motofuel-api/middleware"
	"motofuel-api/services"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Trips     *services.TripService
	Records   *services.FuelRecordService
	Analytics *services.AnalyticsCache
}

func SetupRoutes(r *gin.Engine, svc Services, jwtSecret string) {
	controllers.RegisterValidators()

	tripController := controllers.NewTripController(svc.Trips)
	fuelController := controllers.NewFuelController(svc.Analytics)
	recordController := controllers.NewRecordController(svc.Records)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// API version 1
	v1 := r.Group("/api/v1")

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(jwtSecret))
	{
		trips := protected.Group("/trips")
		{
			trips.GET("", tripController.GetTrips)
			trips.POST("", tripController.CreateTrip)
			trips.GET("/:id", tripController.GetTrip)
			trips.PUT("/:id", tripController.UpdateTripStatus)
			trips.POST("/:id/start", tripController.StartTrip)
			trips.POST("/:id/route-points", tripController.AddRoutePoint)
			trips.POST("/:id/reroutes", tripController.AddReroute)
			trips.POST("/:id/expenses", tripController.AddExpense)
			trips.POST("/:id/complete", tripController.CompleteTrip)
			trips.POST("/:id/cancel", tripController.CancelTrip)
			trips.POST("/:id/fail", tripController.FailTrip)
		}

		protected.POST("/fuel-logs", recordController.CreateFuelLog)
		protected.POST("/maintenance", recordController.CreateMaintenance)

		fuel := protected.Group("/fuel")
		{
			fuel.GET("/combined", fuelController.GetCombined)
			fuel.GET("/efficiency", fuelController.GetEfficiency)
			fuel.GET("/cost-analysis", fuelController.GetCostAnalysis)
		}
	}
}

// SetupCORS allows browser clients from any origin to call the API with a
// bearer token.
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
