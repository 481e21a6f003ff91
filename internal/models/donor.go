package models

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"gorm.io/datatypes"
)

// Donor is the single donor record per registered user. Availability and
// AvailabilityStatus are only ever written together, derived from the status.
type Donor struct {
	UserID             string                                         `gorm:"type:uuid;primaryKey" json:"user_id"`
	Name               string                                         `gorm:"size:100;not null" json:"name"`
	Phone              string                                         `gorm:"size:10;not null" json:"phone"`
	City               string                                         `gorm:"size:100;not null" json:"city"`
	Email              string                                         `gorm:"size:255" json:"email"`
	BloodGroup         string                                         `gorm:"size:3;not null;index:idx_donors_search,priority:1" json:"blood_group"`
	Lat                *float64                                       `json:"lat"`
	Lng                *float64                                       `json:"lng"`
	Eligibility        datatypes.JSONType[donor.PersistedEligibility] `gorm:"type:jsonb" json:"eligibility"`
	HasDonatedBefore   bool                                           `json:"has_donated_before"`
	LastDonationDate   *time.Time                                     `gorm:"type:date" json:"last_donation_date"`
	Availability       bool                                           `gorm:"index:idx_donors_search,priority:2" json:"availability"`
	AvailabilityStatus string                                         `gorm:"size:20" json:"availability_status"`
	Consent            bool                                           `json:"consent"`
	CreatedAt          time.Time                                      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time                                      `json:"updated_at"`
}

// Location returns the picked map location, or nil when none is stored.
func (d *Donor) Location() *donor.Location {
	if d.Lat == nil || d.Lng == nil {
		return nil
	}
	return &donor.Location{Lat: *d.Lat, Lng: *d.Lng}
}

// SetLocation stores loc, clearing both coordinates when loc is nil.
func (d *Donor) SetLocation(loc *donor.Location) {
	if loc == nil {
		d.Lat, d.Lng = nil, nil
		return
	}
	lat, lng := loc.Lat, loc.Lng
	d.Lat, d.Lng = &lat, &lng
}

// SetState writes the availability pair.
func (d *Donor) SetState(s donor.State) {
	d.AvailabilityStatus = string(s.Status)
	d.Availability = s.Available
}

// Answers decodes the stored eligibility back into passing answers.
func (d *Donor) Answers() donor.Answers {
	return donor.AnswersFromPersisted(d.Eligibility.Data())
}

// Submitted reports whether the donor form was ever completed.
func (d *Donor) Submitted() bool { return d.AvailabilityStatus != "" }
