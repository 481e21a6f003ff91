package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/models"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/repository"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	donors []models.Donor
}

func (s *memStore) Get(_ context.Context, userID string) (*models.Donor, error) {
	for i := range s.donors {
		if s.donors[i].UserID == userID {
			d := s.donors[i]
			return &d, nil
		}
	}
	return nil, repository.ErrDonorNotFound
}

func (s *memStore) Upsert(context.Context, *models.Donor) error { return nil }

func (s *memStore) UpdateAvailability(context.Context, string, donor.State) error { return nil }

func (s *memStore) SearchDiscoverable(_ context.Context, g donor.BloodGroup) ([]models.Donor, error) {
	var out []models.Donor
	for _, d := range s.donors {
		if d.BloodGroup == string(g) && d.Availability {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memStore) CountDiscoverable(ctx context.Context, g donor.BloodGroup) (int64, error) {
	out, err := s.SearchDiscoverable(ctx, g)
	return int64(len(out)), err
}

func newStore() *memStore {
	available := services.NewSkeletonDonor("u1", "", donor.Profile{Name: "Ravi", Phone: "9876543210", City: "Pune", BloodGroup: "O-"})
	available.SetState(donor.StateFor(donor.StatusAvailableNow))
	off := services.NewSkeletonDonor("u2", "", donor.Profile{Name: "Meera", Phone: "9876543211", City: "Pune", BloodGroup: "O-"})
	return &memStore{donors: []models.Donor{*available, *off}}
}

func decode(t *testing.T, body io.Reader, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		check  func(t *testing.T, body dto.ErrorResponse)
	}{
		{
			name:   "field errors",
			err:    donor.FieldErrors{donor.FieldPhone: donor.MsgValidPhone},
			status: fiber.StatusBadRequest,
			check: func(t *testing.T, body dto.ErrorResponse) {
				assert.Equal(t, donor.MsgValidPhone, body.Fields[donor.FieldPhone])
			},
		},
		{
			name:   "interval",
			err:    donor.ErrDonationIntervalNotMet,
			status: fiber.StatusUnprocessableEntity,
			check: func(t *testing.T, body dto.ErrorResponse) {
				assert.Contains(t, body.Fields, donor.FieldLastDonationDate)
			},
		},
		{
			name:   "blocked",
			err:    &donor.BlockedError{Reasons: []string{"Weight must be at least 50kg"}},
			status: fiber.StatusUnprocessableEntity,
			check: func(t *testing.T, body dto.ErrorResponse) {
				assert.Equal(t, []string{"Weight must be at least 50kg"}, body.Reasons)
				assert.Equal(t, donor.ErrAvailabilityBlocked.Error(), body.Message)
			},
		},
		{
			name:   "login required",
			err:    services.ErrLoginRequired,
			status: fiber.StatusUnauthorized,
			check: func(t *testing.T, body dto.ErrorResponse) {
				assert.Equal(t, "Please login first", body.Message)
			},
		},
		{name: "in flight", err: services.ErrSubmissionInFlight, status: fiber.StatusConflict},
		{name: "not found", err: fmt.Errorf("load donor: %w", repository.ErrDonorNotFound), status: fiber.StatusNotFound},
		{
			name:   "client went away",
			err:    fmt.Errorf("save donor: %w", context.Canceled),
			status: statusClientClosedRequest,
			check: func(t *testing.T, body dto.ErrorResponse) {
				assert.Equal(t, "Request cancelled", body.Message)
			},
		},
		{name: "deadline", err: context.DeadlineExceeded, status: statusClientClosedRequest},
		{
			name:   "remote failure",
			err:    errors.New("dial tcp: connection refused"),
			status: fiber.StatusInternalServerError,
			check: func(t *testing.T, body dto.ErrorResponse) {
				assert.Equal(t, msgSomethingWentWrong, body.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return respondError(c, "test", tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body dto.ErrorResponse
			decode(t, resp.Body, &body)
			assert.True(t, body.Error)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func newSearchApp() *fiber.App {
	store := newStore()
	m := metrics.Nop()
	svc := services.NewDonorService(store, services.NewMemoryGuard(), services.NewLiveFeed(store, nil, m), m)
	h := NewSearchHandler(svc, services.NewLiveFeed(store, nil, m))
	d := NewDonorHandler(svc)

	app := fiber.New()
	app.Get("/search", h.Search)
	app.Get("/live-count", h.LiveCount)
	app.Get("/live", h.UpgradeLive, h.Live())
	app.Get("/rules", d.EligibilityRules)
	app.Post("/submission", d.Submit)
	return app
}

func TestSearch(t *testing.T) {
	app := newSearchApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/search?blood_group=O-", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.SearchResponse
	decode(t, resp.Body, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Ravi", body.Donors[0].Name)
}

func TestSearch_BadQuery(t *testing.T) {
	app := newSearchApp()

	for _, target := range []string{"/search", "/search?blood_group=X", "/search?blood_group=O-&lat=abc&lng=1"} {
		resp, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestLiveCount(t *testing.T) {
	app := newSearchApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/live-count?blood_group=O-", nil))
	require.NoError(t, err)

	var body dto.LiveCountResponse
	decode(t, resp.Body, &body)
	assert.Equal(t, int64(1), body.Count)
}

func TestLive_RequiresUpgrade(t *testing.T) {
	resp, err := newSearchApp().Test(httptest.NewRequest("GET", "/live?blood_group=O-", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestEligibilityRules(t *testing.T) {
	resp, err := newSearchApp().Test(httptest.NewRequest("GET", "/rules", nil))
	require.NoError(t, err)

	var body struct {
		Rules   []map[string]string `json:"rules"`
		MinDays int                 `json:"min_donation_interval_days"`
	}
	decode(t, resp.Body, &body)
	assert.Len(t, body.Rules, len(donor.Rules))
	assert.Equal(t, "ageRange", body.Rules[0]["key"])
	assert.Equal(t, 90, body.MinDays)
}

func TestSubmit_WithoutIdentity(t *testing.T) {
	req := httptest.NewRequest("POST", "/submission", bytes.NewBufferString(`{"consent":true}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := newSearchApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAssistantChat(t *testing.T) {
	app := fiber.New()
	app.Post("/chat", NewAssistantHandler(services.NewAssistantService(nil, metrics.Nop())).Chat)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/chat", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		rec.Code = resp.StatusCode
		_, _ = io.Copy(rec.Body, resp.Body)
		return rec
	}

	assert.Equal(t, fiber.StatusBadRequest, post(`{"message":"   "}`).Code)

	rec := post(`{"message":"Is it safe to donate?"}`)
	require.Equal(t, fiber.StatusOK, rec.Code)
	var body dto.ChatResponse
	decode(t, rec.Body, &body)
	assert.Equal(t, services.SourceFAQ, body.Source)
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", NewHealthHandler(func() error { return nil }, nil).Check)
	app.Get("/down", NewHealthHandler(func() error { return errors.New("refused") }, nil).Check)

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	var body dto.HealthResponse
	decode(t, resp.Body, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "disabled", body.Redis)

	resp, err = app.Test(httptest.NewRequest("GET", "/down", nil))
	require.NoError(t, err)
	decode(t, resp.Body, &body)
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy: refused", body.DB)
}

func TestFileSafeGroup(t *testing.T) {
	assert.Equal(t, "AB-neg", fileSafeGroup("AB-"))
	assert.Equal(t, "O-pos", fileSafeGroup("O+"))
}
