package availability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"

	"github.com/brightpath/scheduler-api/internal/handler"
	"github.com/brightpath/scheduler-api/internal/model"
	"github.com/brightpath/scheduler-api/internal/service/appointment"
)

// Availability is recomputed per request but cached briefly; the slot list
// for a clinician's day rarely changes within seconds.
const cacheTTL = 30 * time.Second

type Handler struct {
	service *appointment.Service
	cache   *gocache.Cache
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{
		service: service,
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/clinicians/:clinician/availability", h.GetAvailability)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	clinician := c.Param("clinician")

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		handler.BadRequest(c, "invalid date, expected YYYY-MM-DD")
		return
	}

	slotMinutes := appointment.DefaultSlotMinutes
	if raw := c.Query("slot"); raw != "" {
		slotMinutes, err = strconv.Atoi(raw)
		if err != nil || slotMinutes <= 0 {
			handler.BadRequest(c, "invalid slot duration")
			return
		}
	}

	key := fmt.Sprintf("%s|%s|%d", clinician, date.Format("2006-01-02"), slotMinutes)
	if cached, found := h.cache.Get(key); found {
		handler.Success(c, http.StatusOK, cached.([]model.TimeSlot))
		return
	}

	slots, err := h.service.AvailableSlots(c.Request.Context(), clinician, date, slotMinutes)
	if err != nil {
		handler.Error(c, err)
		return
	}

	h.cache.Set(key, slots, gocache.DefaultExpiration)
	handler.Success(c, http.StatusOK, slots)
}
