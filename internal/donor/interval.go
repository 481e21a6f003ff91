package donor

import "time"

// MinDonationIntervalDays is the mandatory wait between whole-blood donations.
const MinDonationIntervalDays = 90

// DateLayout is the wire format of lastDonationDate.
const DateLayout = "2006-01-02"

// IntervalResult is the outcome of CheckInterval. DaysSince is nil for
// first-time donors.
type IntervalResult struct {
	OK        bool
	DaysSince *int
}

// DaysSince returns whole calendar days from last to today, comparing the
// calendar dates at UTC midnight so time of day and zone offsets do not
// shift the count.
func DaysSince(last, today time.Time) int {
	from := utcMidnight(last)
	to := utcMidnight(today)
	return int(to.Sub(from).Hours()) / 24
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDonationDate parses a YYYY-MM-DD date. An empty string yields nil.
func ParseDonationDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, FieldErrors{FieldLastDonationDate: MsgInvalidDate}
	}
	return &t, nil
}

// CheckInterval enforces the waiting period for returning donors. A missing
// or future date is a validation error; a date inside the window returns
// ErrDonationIntervalNotMet along with the computed day count.
func CheckInterval(hasDonatedBefore bool, last *time.Time, today time.Time) (IntervalResult, error) {
	if !hasDonatedBefore {
		return IntervalResult{OK: true}, nil
	}
	if last == nil {
		return IntervalResult{}, FieldErrors{FieldLastDonationDate: MsgSelectLastDonation}
	}

	days := DaysSince(*last, today)
	if days < 0 {
		return IntervalResult{}, FieldErrors{FieldLastDonationDate: MsgFutureDonationDate}
	}

	res := IntervalResult{OK: days >= MinDonationIntervalDays, DaysSince: &days}
	if !res.OK {
		return res, ErrDonationIntervalNotMet
	}
	return res, nil
}
