package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDonorNotFound = errors.New("donor record not found")

// upsertColumns are replaced wholesale on conflict. created_at is kept.
var upsertColumns = []string{
	"name", "phone", "city", "email", "blood_group", "lat", "lng",
	"eligibility", "has_donated_before", "last_donation_date",
	"availability", "availability_status", "consent", "updated_at",
}

// DonorRepository is the Postgres donor store.
type DonorRepository struct {
	db *gorm.DB
}

func NewDonorRepository(db *gorm.DB) *DonorRepository {
	return &DonorRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *DonorRepository) WithTx(tx *gorm.DB) *DonorRepository {
	return &DonorRepository{db: tx}
}

func (r *DonorRepository) Get(ctx context.Context, userID string) (*models.Donor, error) {
	var d models.Donor
	err := r.db.WithContext(ctx).First(&d, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDonorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new record and fails if one already exists.
func (r *DonorRepository) Create(ctx context.Context, d *models.Donor) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// Upsert writes the complete record in a single statement, replacing every
// stored field except created_at.
func (r *DonorRepository) Upsert(ctx context.Context, d *models.Donor) error {
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(d).Error
}

// UpdateAvailability writes the availability pair in one statement.
func (r *DonorRepository) UpdateAvailability(ctx context.Context, userID string, s donor.State) error {
	res := r.db.WithContext(ctx).Model(&models.Donor{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"availability_status": string(s.Status),
			"availability":        s.Available,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDonorNotFound
	}
	return nil
}

// SearchDiscoverable returns donors of group that are discoverable, oldest
// record first.
func (r *DonorRepository) SearchDiscoverable(ctx context.Context, group donor.BloodGroup) ([]models.Donor, error) {
	var donors []models.Donor
	err := r.db.WithContext(ctx).
		Where("blood_group = ? AND availability = ?", string(group), true).
		Order("created_at ASC").
		Find(&donors).Error
	return donors, err
}

// CountDiscoverable counts donors of group that are discoverable.
func (r *DonorRepository) CountDiscoverable(ctx context.Context, group donor.BloodGroup) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Donor{}).
		Where("blood_group = ? AND availability = ?", string(group), true).
		Count(&n).Error
	return n, err
}

// Delete removes the record for userID. Missing records are not an error.
func (r *DonorRepository) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Donor{}).Error
}
