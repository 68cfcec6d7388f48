package availability

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultHorizonDays = 21
	DefaultMaxDates    = 14

	slotLayout = "03:04 PM"
)

// Slot is a bookable time of day. Available is always true for now; the field
// exists so a slot can be blocked without changing the API.
type Slot struct {
	Label     string `json:"time"`
	Available bool   `json:"available"`
}

var slotLabels = []string{
	"10:00 AM",
	"11:00 AM",
	"12:00 PM",
	"02:00 PM",
	"03:00 PM",
	"04:00 PM",
	"05:00 PM",
	"06:00 PM",
	"07:00 PM",
	"08:00 PM",
}

// GenerateDates scans forward from the day after today and collects up to
// maxResults dates within horizonDays, skipping Sundays. Returned dates are
// midnight in today's location.
func GenerateDates(today time.Time, horizonDays, maxResults int) []time.Time {
	start := StartOfDay(today)
	dates := make([]time.Time, 0, maxResults)
	for i := 1; i <= horizonDays && len(dates) < maxResults; i++ {
		d := start.AddDate(0, 0, i)
		if d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// TimeSlots returns the fixed daily slot list in display order.
func TimeSlots() []Slot {
	slots := make([]Slot, 0, len(slotLabels))
	for _, l := range slotLabels {
		slots = append(slots, Slot{Label: l, Available: true})
	}
	return slots
}

// FindSlot looks up a slot by its label.
func FindSlot(label string) (Slot, bool) {
	for _, s := range TimeSlots() {
		if s.Label == label {
			return s, true
		}
	}
	return Slot{}, false
}

// IsOffered reports whether date is one of the dates GenerateDates would
// return for today with the default horizon.
func IsOffered(today, date time.Time) bool {
	day := StartOfDay(date.In(today.Location()))
	for _, d := range GenerateDates(today, DefaultHorizonDays, DefaultMaxDates) {
		if d.Equal(day) {
			return true
		}
	}
	return false
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseSlotLabel converts a 12-hour label such as "02:00 PM" to a 24-hour
// hour and minute. 12 AM is hour 0 and 12 PM stays 12.
func ParseSlotLabel(label string) (hour, minute int, err error) {
	clock, period, ok := strings.Cut(strings.TrimSpace(label), " ")
	if !ok {
		return 0, 0, fmt.Errorf("availability: invalid time label %q", label)
	}
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("availability: invalid time label %q: %w", label, err)
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("availability: time label %q out of range", label)
	}
	switch strings.ToUpper(period) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, 0, fmt.Errorf("availability: invalid period in %q", label)
	}
	return hour, minute, nil
}

// FormatSlotLabel is the inverse of ParseSlotLabel.
func FormatSlotLabel(hour, minute int) string {
	return time.Date(2000, time.January, 1, hour, minute, 0, 0, time.UTC).Format(slotLayout)
}
