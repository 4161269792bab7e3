package schedules

import (
	"net/http"
	"strconv"

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

// CreateSchedule handles POST /admin/schedules
func (c *Controller) CreateSchedule(ctx *gin.Context) {
	var req CreateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if !req.ArrivalAt.After(req.DepartureAt) {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Arrival must be after departure", nil, nil)
		return
	}

	schedule, err := c.service.CreateSchedule(ctx.Request.Context(), &req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Schedule created successfully", schedule, nil)
}

// GetSchedule handles GET /schedules/:id
func (c *Controller) GetSchedule(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid schedule ID", nil, err.Error())
		return
	}

	schedule, err := c.service.GetSchedule(ctx.Request.Context(), id)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Schedule retrieved successfully", schedule, nil)
}

// UpdateSchedule handles PUT /admin/schedules/:id
func (c *Controller) UpdateSchedule(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid schedule ID", nil, err.Error())
		return
	}

	var req UpdateScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	schedule, err := c.service.UpdateSchedule(ctx.Request.Context(), id, &req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Schedule updated successfully", schedule, nil)
}

// ListSchedules handles GET /schedules
func (c *Controller) ListSchedules(ctx *gin.Context) {
	var query ScheduleListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	schedules, err := c.service.ListSchedules(ctx.Request.Context(), query)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Schedules retrieved successfully", schedules, nil)
}

// GetUpcoming handles GET /schedules/upcoming
func (c *Controller) GetUpcoming(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	schedules, err := c.service.GetUpcoming(ctx.Request.Context(), limit)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Upcoming schedules retrieved successfully", schedules, nil)
}
