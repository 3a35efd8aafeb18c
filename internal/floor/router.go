package floor

import (
	"github.com/gin-gonic/gin"
)

// SetupFloorRoutes configures all floor engine routes
func SetupFloorRoutes(rg *gin.RouterGroup, controller *Controller) {
	reservations := rg.Group("/reservations")
	{
		reservations.POST("", controller.CreateReservation)               // POST /api/v1/reservations
		reservations.GET("", controller.ListReservations)                 // GET /api/v1/reservations
		reservations.GET("/:id", controller.GetReservation)               // GET /api/v1/reservations/:id
		reservations.PATCH("/:id", controller.EditReservation)            // PATCH /api/v1/reservations/:id
		reservations.POST("/:id/commands", controller.TransitionReservation) // POST /api/v1/reservations/:id/commands
	}

	rg.POST("/assignments", controller.AssignTable) // POST /api/v1/assignments
	rg.POST("/walkins", controller.SeatWalkIn)      // POST /api/v1/walkins

	rg.GET("/floor", controller.FloorStatus) // GET /api/v1/floor

	tables := rg.Group("/tables")
	{
		tables.GET("/:id/status", controller.TableStatus)    // GET /api/v1/tables/:id/status
		tables.POST("/:id/block", controller.BlockTable)     // POST /api/v1/tables/:id/block
		tables.POST("/:id/unblock", controller.UnblockTable) // POST /api/v1/tables/:id/unblock
	}

	rg.POST("/groups", controller.CombineTables)         // POST /api/v1/groups
	rg.DELETE("/groups/:id", controller.UncombineTables) // DELETE /api/v1/groups/:id

	waitlist := rg.Group("/waitlist")
	{
		waitlist.POST("", controller.EnqueueWaitlist)          // POST /api/v1/waitlist
		waitlist.GET("", controller.ListWaitlist)              // GET /api/v1/waitlist
		waitlist.POST("/:id/notify", controller.NotifyWaitlist) // POST /api/v1/waitlist/:id/notify
		waitlist.POST("/:id/seat", controller.SeatWaitlist)     // POST /api/v1/waitlist/:id/seat
		waitlist.POST("/:id/leave", controller.LeaveWaitlist)   // POST /api/v1/waitlist/:id/leave
	}
}
