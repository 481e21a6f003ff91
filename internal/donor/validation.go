package donor

import (
	"regexp"
	"strings"
)

var (
	phonePattern   = regexp.MustCompile(`^[6-9]\d{9}$`)
	lettersPattern = regexp.MustCompile(`^[a-zA-Z ]+$`)
)

// ValidPhone accepts a 10-digit mobile number whose first digit is 6-9.
func ValidPhone(v string) bool { return phonePattern.MatchString(v) }

// ValidName accepts letters and spaces with at least one letter. Surrounding
// whitespace is ignored.
func ValidName(v string) bool { return lettersOnly(v) }

// ValidCity follows the same rule as ValidName.
func ValidCity(v string) bool { return lettersOnly(v) }

func lettersOnly(v string) bool {
	return lettersPattern.MatchString(strings.TrimSpace(v))
}

// Location is a map coordinate picked by the donor.
type Location struct {
	Lat float64
	Lng float64
}

// Valid reports whether both coordinates are inside their ranges.
func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// Profile holds the contact attributes edited on the profile screen and at
// signup.
type Profile struct {
	Name       string
	Phone      string
	City       string
	BloodGroup string
}

// ValidateProfile checks every contact field and reports all failures at once.
func ValidateProfile(p Profile) FieldErrors {
	errs := FieldErrors{}
	if !ValidName(p.Name) {
		errs.Add(FieldName, MsgValidName)
	}
	if !ValidPhone(p.Phone) {
		errs.Add(FieldPhone, MsgValidPhone)
	}
	if !ValidCity(p.City) {
		errs.Add(FieldCity, MsgValidCity)
	}
	if _, err := ParseBloodGroup(p.BloodGroup); err != nil {
		errs.Merge(err.(FieldErrors))
	}
	return errs
}

// ValidateLocation requires a picked location inside coordinate ranges.
func ValidateLocation(loc *Location) FieldErrors {
	errs := FieldErrors{}
	switch {
	case loc == nil:
		errs.Add(FieldLocation, MsgSelectLocation)
	case !loc.Valid():
		errs.Add(FieldLocation, MsgInvalidLocation)
	}
	return errs
}
