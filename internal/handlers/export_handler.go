package handlers

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/identity"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/services"
	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	exports *services.ExportService
}

func NewExportHandler(exports *services.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func (h *ExportHandler) Donors(c *fiber.Ctx) error {
	group := c.Query("blood_group")
	data, err := h.exports.DiscoverableXLSX(c.UserContext(), group)
	if err != nil {
		return respondError(c, "donor_export", err)
	}

	name := fmt.Sprintf("donors-%s-%s.xlsx", fileSafeGroup(group), time.Now().UTC().Format("20060102"))
	slog.Info("donor export generated", "action", "donor_export", "user_id", identity.From(c).UserID, "blood_group", group, "bytes", len(data))

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(data)
}

// fileSafeGroup spells out the Rh sign, e.g. "AB-" becomes "AB-neg".
func fileSafeGroup(g string) string {
	switch {
	case strings.HasSuffix(g, "+"):
		return strings.TrimSuffix(g, "+") + "-pos"
	case strings.HasSuffix(g, "-"):
		return strings.TrimSuffix(g, "-") + "-neg"
	}
	return g
}
