package status

// Event is pushed to browsers watching a wizard session.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Payload   any    `json:"payload,omitempty"`
}

const (
	EventStageChanged   = "stage_changed"
	EventStatusShown    = "status_shown"
	EventStatusCleared  = "status_cleared"
	EventCheckoutOpened = "checkout_opened"
	EventLoadingChanged = "loading_changed"
)

// Publisher fans events out to the watchers of one session.
type Publisher interface {
	Publish(sessionID string, ev Event)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(string, Event) {}
