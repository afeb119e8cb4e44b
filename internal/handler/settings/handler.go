package settings

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/brightpath/scheduler-api/internal/handler"
	"github.com/brightpath/scheduler-api/internal/model"
	"github.com/brightpath/scheduler-api/internal/repository"
	"github.com/brightpath/scheduler-api/internal/service/reminder"
)

// Handler exposes the runtime reminder settings so operators can adjust
// them without a redeploy. The worker reads them fresh on every scan.
type Handler struct {
	settings repository.SettingsRepository
}

func NewHandler(settings repository.SettingsRepository) *Handler {
	return &Handler{settings: settings}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/settings/reminders", h.GetReminderSettings)
	rg.PUT("/settings/reminders", h.UpdateReminderSettings)
}

func (h *Handler) GetReminderSettings(c *gin.Context) {
	cfg, err := reminder.LoadConfig(c.Request.Context(), h.settings)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, model.ReminderSettings{
		Enabled:       cfg.Enabled,
		LeadTimeHours: cfg.LeadTimeHours,
	})
}

func (h *Handler) UpdateReminderSettings(c *gin.Context) {
	var req model.ReminderSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err.Error())
		return
	}
	if req.LeadTimeHours == 0 {
		req.LeadTimeHours = model.DefaultLeadTimeHours
	}

	ctx := c.Request.Context()
	if err := h.settings.Set(ctx, model.SettingRemindersEnabled, strconv.FormatBool(req.Enabled)); err != nil {
		handler.Error(c, err)
		return
	}
	if err := h.settings.Set(ctx, model.SettingLeadTimeHours, strconv.Itoa(req.LeadTimeHours)); err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, req)
}
