package availability

import (
	"net/http"
	"time"

	"astrobooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const DateLayout = "2006-01-02"

type Handler struct {
	loc *time.Location
	now func() time.Time
}

func NewHandler(loc *time.Location, now func() time.Time) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Handler{loc: loc, now: now}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/availability/dates", h.ListDates)
	rg.GET("/availability/slots", h.ListSlots)
}

// ListDates godoc
// @Summary      Bookable dates
// @Description  Next 14 bookable dates within 21 days, Sundays excluded
// @Tags         Availability
// @Produce      json
// @Success      200 {object} DatesResponse
// @Router       /availability/dates [get]
func (h *Handler) ListDates(c *gin.Context) {
	dates := GenerateDates(h.now().In(h.loc), DefaultHorizonDays, DefaultMaxDates)
	out := make([]DateView, 0, len(dates))
	for _, d := range dates {
		out = append(out, DateView{Date: d.Format(DateLayout), Weekday: d.Format("Mon"), Day: d.Day(), Month: d.Format("Jan")})
	}
	response.Success(c, http.StatusOK, DatesResponse{Dates: out})
}

// ListSlots godoc
// @Summary      Daily time slots
// @Tags         Availability
// @Produce      json
// @Success      200 {object} SlotsResponse
// @Router       /availability/slots [get]
func (h *Handler) ListSlots(c *gin.Context) {
	response.Success(c, http.StatusOK, SlotsResponse{Slots: TimeSlots()})
}

type DateView struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Day     int    `json:"day"`
	Month   string `json:"month"`
}

type DatesResponse struct {
	Dates []DateView `json:"dates"`
}

type SlotsResponse struct {
	Slots []Slot `json:"slots"`
}
