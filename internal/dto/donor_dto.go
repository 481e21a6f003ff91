package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/models"
)

// DonorSubmissionRequest is the donor form. Eligibility maps each question
// key to whether the box was checked.
type DonorSubmissionRequest struct {
	Eligibility        map[string]bool `json:"eligibility"`
	HasDonatedBefore   bool            `json:"has_donated_before"`
	LastDonationDate   string          `json:"last_donation_date"`
	AvailabilityStatus string          `json:"availability_status"`
	Lat                *float64        `json:"lat"`
	Lng                *float64        `json:"lng"`
	Consent            bool            `json:"consent"`
}

type AvailabilityRequest struct {
	AvailabilityStatus string `json:"availability_status"`
}

type ToggleRequest struct {
	Available bool `json:"available"`
}

// ProfileRequest is the full profile form. Omitted coordinates clear the
// stored location.
type ProfileRequest struct {
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	City         string   `json:"city"`
	BloodGroup   string   `json:"blood_group"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	Availability bool     `json:"availability"`
}

type DonorResponse struct {
	UserID             string                     `json:"user_id"`
	Name               string                     `json:"name"`
	Phone              string                     `json:"phone"`
	City               string                     `json:"city"`
	Email              string                     `json:"email"`
	BloodGroup         string                     `json:"blood_group"`
	Lat                *float64                   `json:"lat"`
	Lng                *float64                   `json:"lng"`
	Eligibility        donor.PersistedEligibility `json:"eligibility"`
	Verdict            donor.Verdict              `json:"verdict"`
	HasDonatedBefore   bool                       `json:"has_donated_before"`
	LastDonationDate   *string                    `json:"last_donation_date"`
	Availability       bool                       `json:"availability"`
	AvailabilityStatus string                     `json:"availability_status"`
	Consent            bool                       `json:"consent"`
	CreatedAt          time.Time                  `json:"created_at"`
	UpdatedAt          time.Time                  `json:"updated_at"`
}

func NewDonorResponse(d *models.Donor) DonorResponse {
	resp := DonorResponse{
		UserID:             d.UserID,
		Name:               d.Name,
		Phone:              d.Phone,
		City:               d.City,
		Email:              d.Email,
		BloodGroup:         d.BloodGroup,
		Lat:                d.Lat,
		Lng:                d.Lng,
		Eligibility:        d.Eligibility.Data(),
		Verdict:            donor.Evaluate(d.Answers()),
		HasDonatedBefore:   d.HasDonatedBefore,
		Availability:       d.Availability,
		AvailabilityStatus: d.AvailabilityStatus,
		Consent:            d.Consent,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
	if d.LastDonationDate != nil {
		s := d.LastDonationDate.Format(donor.DateLayout)
		resp.LastDonationDate = &s
	}
	return resp
}

// SearchResult is one public search hit. DistanceKm is set only when the
// search carried a reference point and the donor has a location.
type SearchResult struct {
	Name               string   `json:"name"`
	BloodGroup         string   `json:"blood_group"`
	City               string   `json:"city"`
	Phone              string   `json:"phone"`
	AvailabilityStatus string   `json:"availability_status"`
	Lat                *float64 `json:"lat"`
	Lng                *float64 `json:"lng"`
	DistanceKm         *float64 `json:"distance_km,omitempty"`
}

type SearchResponse struct {
	BloodGroup string         `json:"blood_group"`
	Count      int            `json:"count"`
	Donors     []SearchResult `json:"donors"`
}

type LiveCountResponse struct {
	BloodGroup string `json:"blood_group"`
	Count      int64  `json:"count"`
}

type EligibilityRulesResponse struct {
	Rules                   []donor.Rule `json:"rules"`
	MinDonationIntervalDays int          `json:"min_donation_interval_days"`
}
