package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/citas-api/internal/middleware"
	"github.com/noah-isme/citas-api/internal/models"
)

// Routes groups the handlers mounted under /dates.
type Routes struct {
	Appointments *AppointmentHandler
	Availability *AvailabilityHandler
	Calendar     *CalendarHandler
	Tokens       middleware.TokenValidator
	// Throttle guards mutating routes. Nil disables it.
	Throttle gin.HandlerFunc
}

// Register mounts every booking route on parent at prefix + "/dates".
func (r Routes) Register(parent gin.IRouter, prefix string) {
	dates := parent.Group(prefix + "/dates")
	dates.Use(middleware.JWT(r.Tokens))

	throttle := r.Throttle
	if throttle == nil {
		throttle = func(c *gin.Context) { c.Next() }
	}

	student := string(models.RoleStudent)
	practitioner := string(models.RolePractitioner)
	admin := string(models.RoleAdmin)
	staff := middleware.RBAC(practitioner, admin)
	anyRole := middleware.RBAC(student, practitioner, admin)

	dates.POST("/agendar", throttle, anyRole, r.Appointments.Book)
	dates.GET("/todas", staff, r.Appointments.ListAll)
	dates.GET("/citas", anyRole, r.Appointments.ListForPractitioner)
	dates.GET("/citas/exportar", staff, r.Appointments.Export)
	dates.GET("/citas/:id", anyRole, r.Appointments.Get)
	dates.GET("/cliente/:id", middleware.RBAC(middleware.Self, practitioner, admin), r.Appointments.ListForClient)
	dates.PUT("/modificar/:id", throttle, anyRole, r.Appointments.Reschedule)
	dates.DELETE("/cancelar/:id", throttle, anyRole, r.Appointments.Cancel)

	dates.POST("/disponibilidad", throttle, staff, r.Availability.Create)
	dates.POST("/disponibilidades/masivas", throttle, staff, r.Availability.CreateBulk)
	dates.GET("/disponibilidades", anyRole, r.Availability.List)
	dates.GET("/disponibilidades/filtrar", anyRole, r.Availability.List)
	dates.GET("/disponibilidades/todas", anyRole, r.Availability.List)
	dates.GET("/disponibilidades/slots", anyRole, r.Calendar.Slots)
	dates.PUT("/disponibilidades/:id", throttle, staff, r.Availability.Update)
	dates.DELETE("/disponibilidades/:id", throttle, staff, r.Availability.Delete)

	dates.GET("/calendario", anyRole, r.Calendar.Calendar)
}
