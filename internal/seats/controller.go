package seats

import (
	"net/http"

	"busly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetOccupancy handles GET /schedules/:id/seats
func (c *Controller) GetOccupancy(ctx *gin.Context) {
	scheduleID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid schedule ID", nil, err.Error())
		return
	}

	occupancy, err := c.service.GetOccupancy(ctx.Request.Context(), scheduleID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat occupancy retrieved successfully", occupancy, nil)
}

// CheckIn handles POST /admin/seats/:id/check-in
func (c *Controller) CheckIn(ctx *gin.Context) {
	seatID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat ID", nil, err.Error())
		return
	}

	seat, err := c.service.GetSeat(ctx.Request.Context(), seatID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	if err := c.service.CheckInPassenger(ctx.Request.Context(), seat.ScheduleID, seatID); err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Passenger checked in", nil, nil)
}

// CheckOut handles POST /admin/seats/:id/check-out
func (c *Controller) CheckOut(ctx *gin.Context) {
	seatID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat ID", nil, err.Error())
		return
	}

	seat, err := c.service.GetSeat(ctx.Request.Context(), seatID)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	if err := c.service.CheckOutPassenger(ctx.Request.Context(), seat.ScheduleID, seatID); err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Passenger checked out", nil, nil)
}

// UpdateNote handles PATCH /admin/seats/:id/note
func (c *Controller) UpdateNote(ctx *gin.Context) {
	seatID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid seat ID", nil, err.Error())
		return
	}

	var req UpdateNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.service.UpdateNote(ctx.Request.Context(), seatID, req.Note); err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seat note updated", nil, nil)
}
