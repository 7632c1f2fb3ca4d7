package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuehub/venuehub/internal/feed"
)

// FeedRunner runs the venue/event join. *feed.Service implements it.
type FeedRunner interface {
	Run(ctx context.Context) (feed.Result, error)
}

type EventsHandler struct {
	Feed FeedRunner
}

func NewEventsHandler(f FeedRunner) *EventsHandler { return &EventsHandler{Feed: f} }

// FetchEvents returns the venues that host at least three events, each with
// its events. X-Feed-Cache and X-Feed-Fetched-At tell the client how fresh the
// underlying feeds are.
func (h *EventsHandler) FetchEvents(c echo.Context) error {
	res, err := h.Feed.Run(c.Request().Context())
	if err != nil {
		var ff *feed.FetchFailure
		var pf *feed.ParseFailure
		switch {
		case errors.As(err, &ff):
			log.Printf("events: fetch failed: %v", ff)
		case errors.As(err, &pf):
			log.Printf("events: parse failed: %v", pf)
		default:
			log.Printf("events: %v", err)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to fetch events data"})
	}

	cacheState := "MISS"
	if res.FromCache {
		cacheState = "HIT"
	}
	c.Response().Header().Set("X-Feed-Cache", cacheState)
	c.Response().Header().Set("X-Feed-Fetched-At", res.FetchedAt.UTC().Format(time.RFC3339))

	groups := res.Groups
	if groups == nil {
		groups = []feed.VenueEventsGroup{}
	}
	return c.JSON(http.StatusOK, groups)
}
