package services

import (
	"context"
	"sync"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/models"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/repository"
)

// fakeStore keeps records in insertion order and counts every call.
type fakeStore struct {
	mu      sync.Mutex
	order   []string
	records map[string]models.Donor

	reads  int
	writes int
	err    error
}

func newFakeStore(donors ...*models.Donor) *fakeStore {
	s := &fakeStore{records: make(map[string]models.Donor)}
	for _, d := range donors {
		s.put(*d)
	}
	return s
}

func (s *fakeStore) put(d models.Donor) {
	if _, ok := s.records[d.UserID]; !ok {
		s.order = append(s.order, d.UserID)
	}
	s.records[d.UserID] = d
}

func (s *fakeStore) Get(ctx context.Context, userID string) (*models.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	d, ok := s.records[userID]
	if !ok {
		return nil, repository.ErrDonorNotFound
	}
	return &d, nil
}

func (s *fakeStore) Upsert(ctx context.Context, d *models.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.err != nil {
		return s.err
	}
	s.writes++
	s.put(*d)
	return nil
}

func (s *fakeStore) UpdateAvailability(ctx context.Context, userID string, st donor.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	d, ok := s.records[userID]
	if !ok {
		return repository.ErrDonorNotFound
	}
	s.writes++
	d.SetState(st)
	s.records[userID] = d
	return nil
}

func (s *fakeStore) SearchDiscoverable(_ context.Context, group donor.BloodGroup) ([]models.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Donor
	for _, id := range s.order {
		d := s.records[id]
		if d.BloodGroup == string(group) && d.Availability {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeStore) CountDiscoverable(ctx context.Context, group donor.BloodGroup) (int64, error) {
	donors, err := s.SearchDiscoverable(ctx, group)
	return int64(len(donors)), err
}

func (s *fakeStore) record(userID string) models.Donor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[userID]
}

func (s *fakeStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type fakeNotifier struct {
	mu     sync.Mutex
	groups []donor.BloodGroup
}

func (n *fakeNotifier) Notify(_ context.Context, groups ...donor.BloodGroup) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.groups = append(n.groups, groups...)
}

func (n *fakeNotifier) notified() []donor.BloodGroup {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]donor.BloodGroup(nil), n.groups...)
}

func floatPtr(v float64) *float64 { return &v }
