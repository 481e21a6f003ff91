package handlers

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/donor"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bloodlink/internal/services"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const localsBloodGroup = "live_blood_group"

// SearchHandler serves the public search and the live donor counts.
type SearchHandler struct {
	donors *services.DonorService
	feed   *services.LiveFeed
}

func NewSearchHandler(donors *services.DonorService, feed *services.LiveFeed) *SearchHandler {
	return &SearchHandler{donors: donors, feed: feed}
}

func (h *SearchHandler) Search(c *fiber.Ctx) error {
	lat, err := optionalFloat(c.Query("lat"))
	if err != nil {
		return respondError(c, "donor_search", err)
	}
	lng, err := optionalFloat(c.Query("lng"))
	if err != nil {
		return respondError(c, "donor_search", err)
	}
	ref, err := services.ParseReference(lat, lng)
	if err != nil {
		return respondError(c, "donor_search", err)
	}

	results, err := h.donors.Search(c.UserContext(), c.Query("blood_group"), ref)
	if err != nil {
		return respondError(c, "donor_search", err)
	}

	return c.JSON(dto.SearchResponse{
		BloodGroup: c.Query("blood_group"),
		Count:      len(results),
		Donors:     results,
	})
}

func (h *SearchHandler) LiveCount(c *fiber.Ctx) error {
	group, err := donor.ParseBloodGroup(c.Query("blood_group"))
	if err != nil {
		return respondError(c, "live_count", err)
	}

	n, err := h.feed.Count(c.UserContext(), group)
	if err != nil {
		return respondError(c, "live_count", err)
	}
	return c.JSON(dto.LiveCountResponse{BloodGroup: string(group), Count: n})
}

// UpgradeLive validates the query before the websocket handshake so bad
// requests get a normal JSON error.
func (h *SearchHandler) UpgradeLive(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	group, err := donor.ParseBloodGroup(c.Query("blood_group"))
	if err != nil {
		return respondError(c, "live_stream", err)
	}
	c.Locals(localsBloodGroup, group)
	return c.Next()
}

// Live streams {"count": N} whenever the discoverable count of the group may
// have changed. The subscription is released when either side goes away.
func (h *SearchHandler) Live() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		group, _ := conn.Locals(localsBloodGroup).(donor.BloodGroup)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sub, err := h.feed.Subscribe(ctx, group)
		if err != nil {
			slog.Error("live subscribe failed", "action", "live_stream", "blood_group", string(group), "error", err)
			return
		}
		defer sub.Close()

		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-sub.Done():
				return
			case n := <-sub.C:
				if err := conn.WriteJSON(fiber.Map{"count": n}); err != nil {
					return
				}
			}
		}
	})
}

func optionalFloat(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, donor.FieldErrors{donor.FieldLocation: donor.MsgInvalidLocation}
	}
	return &f, nil
}
