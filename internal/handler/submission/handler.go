package submission

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath/scheduler-api/internal/handler"
	"github.com/brightpath/scheduler-api/internal/model"
	appointmentsvc "github.com/brightpath/scheduler-api/internal/service/appointment"
	submissionsvc "github.com/brightpath/scheduler-api/internal/service/submission"
)

type Handler struct {
	service      *submissionsvc.Service
	appointments *appointmentsvc.Service
}

func NewHandler(service *submissionsvc.Service, appointments *appointmentsvc.Service) *Handler {
	return &Handler{service: service, appointments: appointments}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	submissions := rg.Group("/submissions")
	{
		submissions.POST("", h.CreateSubmission)
		submissions.GET("", h.ListSubmissions)
		submissions.GET("/:id", h.GetSubmission)
		submissions.PATCH("/:id/status", h.UpdateSubmissionStatus)
		submissions.POST("/:id/schedule", h.ScheduleSubmission)
		submissions.DELETE("/:id", h.DeleteSubmission)
	}
}

func (h *Handler) CreateSubmission(c *gin.Context) {
	var req model.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	sub, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusCreated, sub)
}

func (h *Handler) GetSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid submission ID")
		return
	}

	sub, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, sub)
}

func (h *Handler) ListSubmissions(c *gin.Context) {
	subs, err := h.service.List(c.Request.Context(),
		model.SubmissionType(c.Query("type")),
		model.SubmissionStatus(c.Query("status")),
	)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, subs)
}

func (h *Handler) UpdateSubmissionStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid submission ID")
		return
	}

	var req model.UpdateSubmissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	sub, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, sub)
}

// ScheduleSubmission materializes an appointment from the submission and is
// the only route by which a submission becomes scheduled.
func (h *Handler) ScheduleSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid submission ID")
		return
	}

	subType := model.SubmissionType(c.Query("type"))
	if subType == "" {
		// look it up when the caller does not say
		sub, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			handler.Error(c, err)
			return
		}
		subType = sub.Type
	}

	var draft model.ScheduleSubmissionRequest
	if err := c.ShouldBindJSON(&draft); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}

	apt, err := h.appointments.ScheduleFromSubmission(c.Request.Context(), id, subType, &draft)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusCreated, apt)
}

func (h *Handler) DeleteSubmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.BadRequest(c, "invalid submission ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, gin.H{"deleted": id})
}
