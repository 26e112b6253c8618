package routes

import (
	"salonbook-backend/config"
	"salonbook-backend/controllers"
	"salonbook-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.RegisterSalon)
		auth.POST("/register-customer", controllers.RegisterCustomer)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer-facing scheduling routes
		api.GET("/salons/:salonId/stylists/:employeeId/timeslots", controllers.ListTimeSlots)
		api.POST("/salons/:salonId/stylists/:employeeId/book", controllers.CreateBooking)

		bookings := api.Group("/bookings")
		{
			bookings.GET("", controllers.GetBookings)
			bookings.POST("/reschedule", controllers.RescheduleBooking)
			bookings.POST("/cancel", controllers.CancelBooking)
			bookings.POST("/complete-elapsed", controllers.CompleteElapsedBookings)
		}

		// Stylist recurring unavailability
		unavailability := api.Group("/unavailability")
		{
			unavailability.POST("", controllers.CreateUnavailability)
			unavailability.GET("", controllers.GetUnavailability)
			unavailability.DELETE("", controllers.DeleteUnavailability)
		}

		// Service routes
		services := api.Group("/services")
		{
			services.POST("", controllers.CreateService)
			services.GET("", controllers.GetServices)
			services.GET("/:id", controllers.GetService)
			services.PUT("/:id", controllers.UpdateService)
			services.DELETE("/:id", controllers.DeleteService)
		}

		// Salon opening hours
		hours := api.Group("/salon/hours")
		{
			hours.GET("", controllers.GetSalonHours)
			hours.PUT("", controllers.SetSalonHours)
			hours.DELETE("/:weekday", controllers.DeleteSalonHours)
		}

		employees := api.Group("/employees")
		{
			employees.GET("", controllers.GetEmployees)
			employees.POST("", controllers.AddEmployee)
			employees.PUT("/:id", controllers.UpdateEmployee)
			employees.DELETE("/:id", controllers.DeleteEmployee)
			employees.PUT("/:id/availability", controllers.SetEmployeeAvailability)
			employees.POST("/:id/services", controllers.LinkService)
			employees.DELETE("/:id/services/:serviceId", controllers.UnlinkService)
		}
	}

	return r
}
