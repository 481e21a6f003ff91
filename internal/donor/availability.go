package donor

// Status is a donor's chosen availability mode.
type Status string

const (
	StatusAvailableNow  Status = "available_now"
	StatusEmergencyOnly Status = "emergency_only"
	StatusNotAvailable  Status = "not_available"
)

// Statuses lists every availability mode.
var Statuses = []Status{StatusAvailableNow, StatusEmergencyOnly, StatusNotAvailable}

// ParseStatus validates a requested availability mode.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAvailableNow, StatusEmergencyOnly, StatusNotAvailable:
		return Status(s), nil
	case "":
		return "", FieldErrors{FieldAvailabilityStatus: MsgSelectAvailability}
	}
	return "", ErrUnknownStatus
}

// Discoverable reports whether a donor in this mode appears in search.
func (s Status) Discoverable() bool {
	return s == StatusAvailableNow || s == StatusEmergencyOnly
}

// RequiresEligibility reports whether entering this mode is refused while
// the donor is temporarily ineligible.
func (s Status) RequiresEligibility() bool {
	return s.Discoverable()
}

// State is the pair written to a donor record. Build it with StateFor so the
// discoverability flag can never disagree with the mode.
type State struct {
	Status    Status
	Available bool
}

// StateFor derives the discoverability flag from the mode.
func StateFor(s Status) State {
	return State{Status: s, Available: s.Discoverable()}
}

// BlockedError reports a refused transition along with the failing reasons.
// It matches ErrAvailabilityBlocked under errors.Is.
type BlockedError struct {
	Reasons []string
}

func (e *BlockedError) Error() string { return ErrAvailabilityBlocked.Error() }

func (e *BlockedError) Unwrap() error { return ErrAvailabilityBlocked }

// Transition moves a donor into the requested mode. Entering a discoverable
// mode is refused while the verdict blocks availability selection; leaving
// to not_available is always allowed.
func Transition(to Status, v Verdict) (State, error) {
	if to.RequiresEligibility() && v.BlocksAvailabilitySelection() {
		return State{}, &BlockedError{Reasons: v.Reasons}
	}
	return StateFor(to), nil
}

// ToggleStatus maps the binary quick switch onto the canonical modes.
func ToggleStatus(on bool) Status {
	if on {
		return StatusAvailableNow
	}
	return StatusNotAvailable
}
