package domain

import "time"

// ConsultationType is an immutable catalog entry.
type ConsultationType struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceMajorUnits int64  `json:"price_major_units"`
}

func (t ConsultationType) Duration() time.Duration {
	return time.Duration(t.DurationMinutes) * time.Minute
}

// Contact holds the details entered on the last wizard stage. Only name, email
// and phone are required and only for presence.
type Contact struct {
	Name              string `json:"name" validate:"required"`
	Email             string `json:"email" validate:"required"`
	Phone             string `json:"phone" validate:"required"`
	PreferredLanguage string `json:"preferred_language"`
	Notes             string `json:"notes"`
}

// Selection is the booking choice accumulated across wizard stages.
type Selection struct {
	Type    *ConsultationType `json:"type,omitempty"`
	Date    *time.Time        `json:"date,omitempty"`
	Time    string            `json:"time,omitempty"`
	Contact Contact           `json:"contact"`
}

// Session carries the bearer credential issued by the external auth component.
type Session struct {
	Token string
}

func (s Session) Present() bool {
	return s.Token != ""
}
