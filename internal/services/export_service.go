package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Donors"

// DonorExportHeader is the first row of every export.
var DonorExportHeader = []string{
	"Name", "Blood Group", "City", "Phone", "Email",
	"Availability", "Last Donation", "Latitude", "Longitude", "Registered",
}

var exportColumnWidths = []float64{24, 12, 18, 14, 28, 16, 14, 12, 12, 20}

type DiscoverableLister interface {
	SearchDiscoverable(ctx context.Context, group donor.BloodGroup) ([]models.Donor, error)
}

// ExportService renders the discoverable donors of one blood group as an
// XLSX workbook for blood bank staff.
type ExportService struct {
	donors DiscoverableLister
}

func NewExportService(donors DiscoverableLister) *ExportService {
	return &ExportService{donors: donors}
}

func (s *ExportService) DiscoverableXLSX(ctx context.Context, bloodGroup string) ([]byte, error) {
	group, err := donor.ParseBloodGroup(bloodGroup)
	if err != nil {
		return nil, err
	}

	donors, err := s.donors.SearchDiscoverable(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("load donors: %w", err)
	}
	return renderDonorSheet(donors)
}

func renderDonorSheet(donors []models.Donor) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#B71C1C"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(DonorExportHeader))
	for i, h := range DonorExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(DonorExportHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, w := range exportColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(exportSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i := range donors {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := donorRow(&donors[i])
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func donorRow(d *models.Donor) []interface{} {
	row := []interface{}{
		d.Name, d.BloodGroup, d.City, d.Phone, d.Email,
		d.AvailabilityStatus, "", "", "", d.CreatedAt.UTC().Format("2006-01-02 15:04"),
	}
	if d.LastDonationDate != nil {
		row[6] = d.LastDonationDate.Format(donor.DateLayout)
	}
	if d.Lat != nil && d.Lng != nil {
		row[7] = *d.Lat
		row[8] = *d.Lng
	}
	return row
}
