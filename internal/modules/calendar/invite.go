package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"astrobooking/internal/domain"
	"astrobooking/internal/modules/availability"
)

const (
	// Placeholder is returned when the selection is not complete enough to
	// describe an event.
	Placeholder = "#"

	renderURL     = "https://calendar.google.com/calendar/render"
	compactLayout = "20060102T150405Z"
)

// Builder derives calendar invite links for confirmed bookings.
type Builder struct {
	Brand        string
	ServiceEmail string
	Location     *time.Location
}

// Window returns the event start and end for the selection.
func (b Builder) Window(sel domain.Selection) (start, end time.Time, ok bool) {
	if sel.Type == nil || sel.Date == nil || sel.Time == "" {
		return time.Time{}, time.Time{}, false
	}
	hour, minute, err := availability.ParseSlotLabel(sel.Time)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	loc := b.Location
	if loc == nil {
		loc = time.UTC
	}
	d := sel.Date.In(loc)
	start = time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
	return start, start.Add(sel.Type.Duration()), true
}

// InviteURL builds an event-creation deep link. It never fails: an incomplete
// selection yields Placeholder.
func (b Builder) InviteURL(sel domain.Selection) string {
	start, end, ok := b.Window(sel)
	if !ok {
		return Placeholder
	}

	attendees := []string{}
	if sel.Contact.Email != "" {
		attendees = append(attendees, sel.Contact.Email)
	}
	if b.ServiceEmail != "" {
		attendees = append(attendees, b.ServiceEmail)
	}

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", fmt.Sprintf("%s Consultation: %s", b.Brand, sel.Type.Name))
	q.Set("dates", start.UTC().Format(compactLayout)+"/"+end.UTC().Format(compactLayout))
	q.Set("details", details(sel))
	q.Set("add", strings.Join(attendees, ","))
	q.Set("sf", "true")
	return renderURL + "?" + q.Encode()
}

func details(sel domain.Selection) string {
	notes := sel.Contact.Notes
	if strings.TrimSpace(notes) == "" {
		notes = "General consultation"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Consultation Type: %s\n", sel.Type.Name)
	fmt.Fprintf(&sb, "Client: %s\n", sel.Contact.Name)
	fmt.Fprintf(&sb, "Email: %s\n", sel.Contact.Email)
	fmt.Fprintf(&sb, "Phone: %s\n", sel.Contact.Phone)
	if sel.Contact.PreferredLanguage != "" {
		fmt.Fprintf(&sb, "Language: %s\n", sel.Contact.PreferredLanguage)
	}
	fmt.Fprintf(&sb, "\nQuestions/Topics:\n%s\n\n", notes)
	fmt.Fprintf(&sb, "Duration: %d minutes\n", sel.Type.DurationMinutes)
	sb.WriteString("Payment: Completed")
	return sb.String()
}
