package donor

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrDonationIntervalNotMet = errors.New("You are not eligible to donate blood again within 90 days of your last donation.")
	ErrAvailabilityBlocked    = errors.New("You are currently not eligible to donate. Please check back later.")
	ErrUnknownStatus          = errors.New("unknown availability status")
)

// Field names used as keys in FieldErrors. They match the JSON request fields.
const (
	FieldName               = "name"
	FieldPhone              = "phone"
	FieldCity               = "city"
	FieldBloodGroup         = "blood_group"
	FieldLocation           = "location"
	FieldConsent            = "consent"
	FieldLastDonationDate   = "last_donation_date"
	FieldAvailabilityStatus = "availability_status"
	FieldEligibility        = "eligibility"
	FieldEmail              = "email"
	FieldPassword           = "password"
)

// User-facing field messages.
const (
	MsgValidName            = "Valid name required"
	MsgValidPhone           = "Valid phone required (10 digits, starts with 6-9)"
	MsgValidCity            = "Valid city required"
	MsgSelectBloodGroup     = "Please select a blood group"
	MsgInvalidBloodGroup    = "Blood group must be one of A+, A-, B+, B-, AB+, AB-, O+, O-"
	MsgSelectLocation       = "Select location on map"
	MsgInvalidLocation      = "Location coordinates are out of range"
	MsgConsentRequired      = "You must consent to be contacted"
	MsgSelectLastDonation   = "Please select last donation date"
	MsgInvalidDate          = "Last donation date must be a valid date (YYYY-MM-DD)"
	MsgFutureDonationDate   = "Last donation date cannot be in the future"
	MsgSelectAvailability   = "Select an availability option"
	MsgUnknownAvailability  = "Unknown availability option"
	MsgUnknownEligibility   = "Unknown eligibility question"
)

// FieldErrors collects inline, per-field validation failures. A submission
// that produces any of them performs no remote call.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has an error.
func (e FieldErrors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Merge copies other into e, keeping existing entries.
func (e FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		e.Add(k, v)
	}
}

// Err returns nil when no field failed.
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
