package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/identity"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/models"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/repository"
	"gorm.io/datatypes"
)

var ErrLoginRequired = errors.New("Please login first")

// DonorStore is the persistence contract for donor records.
type DonorStore interface {
	Get(ctx context.Context, userID string) (*models.Donor, error)
	Upsert(ctx context.Context, d *models.Donor) error
	UpdateAvailability(ctx context.Context, userID string, s donor.State) error
	SearchDiscoverable(ctx context.Context, group donor.BloodGroup) ([]models.Donor, error)
	CountDiscoverable(ctx context.Context, group donor.BloodGroup) (int64, error)
}

// ChangeNotifier is told after every committed write that may change who is
// discoverable.
type ChangeNotifier interface {
	Notify(ctx context.Context, groups ...donor.BloodGroup)
}

type DonorService struct {
	store   DonorStore
	guard   SubmissionGuard
	feed    ChangeNotifier
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewDonorService(store DonorStore, guard SubmissionGuard, feed ChangeNotifier, m *metrics.Metrics) *DonorService {
	return &DonorService{
		store:   store,
		guard:   guard,
		feed:    feed,
		metrics: m,
		now:     time.Now,
	}
}

// Get returns the caller's own record.
func (s *DonorService) Get(ctx context.Context, id identity.Identity) (*models.Donor, error) {
	if id.Anonymous() {
		return nil, ErrLoginRequired
	}
	return s.store.Get(ctx, id.UserID)
}

// NewSkeletonDonor is the record written at signup: contact details only, no
// location, unanswered eligibility, not discoverable.
func NewSkeletonDonor(userID, email string, p donor.Profile) *models.Donor {
	return &models.Donor{
		UserID:      userID,
		Name:        p.Name,
		Phone:       p.Phone,
		City:        p.City,
		Email:       email,
		BloodGroup:  p.BloodGroup,
		Eligibility: datatypes.NewJSONType(donor.Answers{}.Persisted()),
	}
}

type submission struct {
	answers donor.Answers
	state   donor.State
	loc     *donor.Location
	last    *time.Time
}

// Submit processes the donor form. Validation, the interval guard and the
// availability transition all run before anything is read or written; an
// accepted submission is stored with one upsert.
func (s *DonorService) Submit(ctx context.Context, id identity.Identity, req *dto.DonorSubmissionRequest) (*models.Donor, error) {
	if id.Anonymous() {
		return nil, ErrLoginRequired
	}

	release, err := s.guard.Acquire(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, ErrSubmissionInFlight) {
			s.metrics.Submission(metrics.OutcomeInFlight)
		}
		return nil, err
	}
	defer release()

	sub, err := s.checkSubmission(req)
	if err != nil {
		s.metrics.Submission(rejectionOutcome(err))
		return nil, err
	}

	existing, err := s.store.Get(ctx, id.UserID)
	if err != nil {
		s.metrics.Submission(metrics.OutcomeError)
		return nil, fmt.Errorf("load donor: %w", err)
	}

	rec := *existing
	if id.Email != "" {
		rec.Email = id.Email
	}
	rec.SetLocation(sub.loc)
	rec.Eligibility = datatypes.NewJSONType(sub.answers.Persisted())
	rec.HasDonatedBefore = req.HasDonatedBefore
	rec.LastDonationDate = sub.last
	rec.SetState(sub.state)
	rec.Consent = req.Consent

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.Upsert(ctx, &rec); err != nil {
		s.metrics.Submission(metrics.OutcomeError)
		return nil, fmt.Errorf("save donor: %w", err)
	}

	s.metrics.Submission(metrics.OutcomeAccepted)
	s.metrics.AvailabilityChanged(rec.AvailabilityStatus)
	slog.Info("donor submission accepted", "user_id", id.UserID, "availability_status", rec.AvailabilityStatus)
	s.feed.Notify(context.WithoutCancel(ctx), donor.BloodGroup(rec.BloodGroup))
	return &rec, nil
}

func (s *DonorService) checkSubmission(req *dto.DonorSubmissionRequest) (*submission, error) {
	errs := donor.FieldErrors{}

	answers, err := donor.ParseAnswers(req.Eligibility)
	if err != nil {
		errs.Merge(asFieldErrors(err))
	}

	loc, locErrs := locationFromPair(req.Lat, req.Lng)
	if loc == nil && len(locErrs) == 0 {
		locErrs = donor.ValidateLocation(nil)
	}
	errs.Merge(locErrs)

	status, err := parseStatusField(req.AvailabilityStatus)
	if err != nil {
		errs.Merge(asFieldErrors(err))
	}

	if !req.Consent {
		errs.Add(donor.FieldConsent, donor.MsgConsentRequired)
	}

	var last *time.Time
	if req.HasDonatedBefore {
		last, err = donor.ParseDonationDate(req.LastDonationDate)
		switch {
		case err != nil:
			errs.Merge(asFieldErrors(err))
		case last == nil:
			errs.Add(donor.FieldLastDonationDate, donor.MsgSelectLastDonation)
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	if _, err := donor.CheckInterval(req.HasDonatedBefore, last, s.now()); err != nil {
		return nil, err
	}

	state, err := donor.Transition(status, donor.Evaluate(answers))
	if err != nil {
		return nil, err
	}

	return &submission{answers: answers, state: state, loc: loc, last: last}, nil
}

// SetAvailability changes only the availability pair. The verdict comes from
// the eligibility stored by the last submission.
func (s *DonorService) SetAvailability(ctx context.Context, id identity.Identity, req *dto.AvailabilityRequest) (*models.Donor, error) {
	if id.Anonymous() {
		return nil, ErrLoginRequired
	}
	status, err := parseStatusField(req.AvailabilityStatus)
	if err != nil {
		return nil, err
	}
	return s.setStatus(ctx, id, status)
}

// Toggle is the quick on/off switch. It goes through the same transition
// rules as every other availability change.
func (s *DonorService) Toggle(ctx context.Context, id identity.Identity, on bool) (*models.Donor, error) {
	if id.Anonymous() {
		return nil, ErrLoginRequired
	}
	return s.setStatus(ctx, id, donor.ToggleStatus(on))
}

func (s *DonorService) setStatus(ctx context.Context, id identity.Identity, status donor.Status) (*models.Donor, error) {
	rec, err := s.store.Get(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("load donor: %w", err)
	}

	state, err := donor.Transition(status, donor.Evaluate(rec.Answers()))
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateAvailability(ctx, id.UserID, state); err != nil {
		return nil, fmt.Errorf("update availability: %w", err)
	}
	rec.SetState(state)
	rec.UpdatedAt = s.now().UTC()

	s.metrics.AvailabilityChanged(string(state.Status))
	s.feed.Notify(context.WithoutCancel(ctx), donor.BloodGroup(rec.BloodGroup))
	return rec, nil
}

// SaveProfile replaces the whole record with the profile form applied. Fields
// the profile form does not own are carried over from the stored record.
func (s *DonorService) SaveProfile(ctx context.Context, id identity.Identity, req *dto.ProfileRequest) (*models.Donor, error) {
	if id.Anonymous() {
		return nil, ErrLoginRequired
	}

	profile := donor.Profile{
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		City:       strings.TrimSpace(req.City),
		BloodGroup: req.BloodGroup,
	}
	errs := donor.ValidateProfile(profile)
	loc, locErrs := locationFromPair(req.Lat, req.Lng)
	errs.Merge(locErrs)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	rec := models.Donor{
		UserID:      id.UserID,
		Eligibility: datatypes.NewJSONType(donor.Answers{}.Persisted()),
	}
	existing, err := s.store.Get(ctx, id.UserID)
	switch {
	case err == nil:
		rec = *existing
	case errors.Is(err, repository.ErrDonorNotFound):
	default:
		return nil, fmt.Errorf("load donor: %w", err)
	}
	prevGroup := donor.BloodGroup(rec.BloodGroup)

	state, err := profileState(&rec, req.Availability)
	if err != nil {
		return nil, err
	}

	rec.Name = profile.Name
	rec.Phone = profile.Phone
	rec.City = profile.City
	rec.BloodGroup = profile.BloodGroup
	if id.Email != "" {
		rec.Email = id.Email
	}
	rec.SetLocation(loc)
	rec.SetState(state)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.Upsert(ctx, &rec); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	groups := []donor.BloodGroup{donor.BloodGroup(rec.BloodGroup)}
	if prevGroup != "" && prevGroup != groups[0] {
		groups = append(groups, prevGroup)
	}
	s.feed.Notify(context.WithoutCancel(ctx), groups...)
	return &rec, nil
}

// profileState maps the profile's availability checkbox. A checked box keeps
// an already discoverable mode; otherwise it asks for available_now.
func profileState(rec *models.Donor, checked bool) (donor.State, error) {
	current := donor.Status(rec.AvailabilityStatus)
	switch {
	case checked && current.Discoverable():
		return donor.StateFor(current), nil
	case !checked && current == "":
		return donor.State{}, nil
	}
	return donor.Transition(donor.ToggleStatus(checked), donor.Evaluate(rec.Answers()))
}

// Search lists discoverable donors of the requested group in insertion
// order, or by distance when ref is set.
func (s *DonorService) Search(ctx context.Context, bloodGroup string, ref *donor.Location) ([]dto.SearchResult, error) {
	group, err := donor.ParseBloodGroup(bloodGroup)
	if err != nil {
		return nil, err
	}

	donors, err := s.store.SearchDiscoverable(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("search donors: %w", err)
	}
	s.metrics.Searched(string(group))

	results := make([]dto.SearchResult, 0, len(donors))
	for i := range donors {
		d := &donors[i]
		r := dto.SearchResult{
			Name:               d.Name,
			BloodGroup:         d.BloodGroup,
			City:               d.City,
			Phone:              d.Phone,
			AvailabilityStatus: d.AvailabilityStatus,
			Lat:                d.Lat,
			Lng:                d.Lng,
		}
		if loc := d.Location(); ref != nil && loc != nil {
			km := donor.HaversineKm(*ref, *loc)
			r.DistanceKm = &km
		}
		results = append(results, r)
	}

	if ref != nil {
		donor.SortByDistance(results, *ref, func(r dto.SearchResult) *donor.Location {
			if r.Lat == nil || r.Lng == nil {
				return nil
			}
			return &donor.Location{Lat: *r.Lat, Lng: *r.Lng}
		})
	}
	return results, nil
}

// ParseReference builds an optional search reference point. Both
// coordinates or neither must be supplied.
func ParseReference(lat, lng *float64) (*donor.Location, error) {
	loc, errs := locationFromPair(lat, lng)
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return loc, nil
}

func locationFromPair(lat, lng *float64) (*donor.Location, donor.FieldErrors) {
	if lat == nil && lng == nil {
		return nil, nil
	}
	if lat == nil || lng == nil {
		return nil, donor.FieldErrors{donor.FieldLocation: donor.MsgInvalidLocation}
	}
	loc := &donor.Location{Lat: *lat, Lng: *lng}
	if errs := donor.ValidateLocation(loc); len(errs) > 0 {
		return nil, errs
	}
	return loc, nil
}

func parseStatusField(v string) (donor.Status, error) {
	status, err := donor.ParseStatus(v)
	if errors.Is(err, donor.ErrUnknownStatus) {
		return "", donor.FieldErrors{donor.FieldAvailabilityStatus: donor.MsgUnknownAvailability}
	}
	return status, err
}

func asFieldErrors(err error) donor.FieldErrors {
	var fe donor.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return donor.FieldErrors{"_": err.Error()}
}

func rejectionOutcome(err error) string {
	switch {
	case errors.Is(err, donor.ErrDonationIntervalNotMet):
		return metrics.OutcomeIntervalRejected
	case errors.Is(err, donor.ErrAvailabilityBlocked):
		return metrics.OutcomeAvailabilityBlocked
	}
	return metrics.OutcomeValidationFailed
}
