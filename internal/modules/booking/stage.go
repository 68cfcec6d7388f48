package booking

// Stage is the active step of the booking wizard.
type Stage int

const (
	StageChooseType Stage = iota
	StageChooseDate
	StageChooseTime
	StageEnterDetails
	StageConfirmed
)

var stageNames = [...]string{
	StageChooseType:   "choose_type",
	StageChooseDate:   "choose_date",
	StageChooseTime:   "choose_time",
	StageEnterDetails: "enter_details",
	StageConfirmed:    "confirmed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// previous is the stage one "back" step leads to. ok is false for stages
// without a back transition.
func (s Stage) previous() (Stage, bool) {
	switch s {
	case StageChooseDate, StageChooseTime, StageEnterDetails:
		return s - 1, true
	default:
		return s, false
	}
}
