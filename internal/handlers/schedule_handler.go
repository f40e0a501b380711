package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tutorlab/tutoring-service/internal/services"
	"github.com/tutorlab/tutoring-service/internal/utils"
)

type ScheduleHandler struct {
	BaseHandler
	schedules services.ScheduleService
}

func NewScheduleHandler(schedules services.ScheduleService, logger utils.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		BaseHandler: NewBaseHandler(logger),
		schedules:   schedules,
	}
}

// CreateSchedule books a lesson for a student.
// @Router /schedules [post]
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	h.LogRequest(c, "Creating schedule")

	var req services.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	schedule, err := h.schedules.Create(c.Request.Context(), CurrentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, schedule)
}

// ListSchedules returns lessons visible to the caller.
// @Router /schedules [get]
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	limit, offset := h.parsePagination(c)

	query := services.ScheduleListQuery{
		ActiveOnly: c.Query("active") == "true",
		Limit:      limit,
		Offset:     offset,
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid user_id parameter"})
			return
		}
		uid := uint(id)
		query.UserID = &uid
	}

	resp, err := h.schedules.List(c.Request.Context(), CurrentUser(c), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateSchedule moves a lesson to a new time.
// @Router /schedules/:id [put]
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	h.LogRequest(c, "Rescheduling lesson")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	req.ID = id

	schedule, err := h.schedules.Update(c.Request.Context(), CurrentUser(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedule)
}

// DeleteSchedule cancels a lesson.
// @Router /schedules/:id [delete]
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	h.LogRequest(c, "Deleting schedule")

	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.schedules.Delete(c.Request.Context(), CurrentUser(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Schedule deleted successfully"})
}
