package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/venuehub/venuehub/internal/model"
	"github.com/venuehub/venuehub/internal/queue"
	"github.com/venuehub/venuehub/internal/session"
)

// listLimit caps GET /api/locations.
const listLimit = 100

// LocationStore persists favorites. *repository.LocationRepo implements it.
type LocationStore interface {
	InsertMany(ctx context.Context, locs []model.Location) (int, error)
	List(ctx context.Context, limit int64) ([]model.Location, error)
}

// FavoritesNotifier announces saved favorites. *service.Publisher implements
// it.
type FavoritesNotifier interface {
	PublishFavoritesSaved(ctx context.Context, ev queue.FavoritesSavedEvent) error
}

type FavoritesHandler struct {
	Locations LocationStore
	Notifier  FavoritesNotifier // optional
	now       func() time.Time
}

func NewFavoritesHandler(locs LocationStore, n FavoritesNotifier) *FavoritesHandler {
	return &FavoritesHandler{Locations: locs, Notifier: n, now: time.Now}
}

// flexFloat accepts a JSON number, a numeric string, "" or null. The last two
// decode to no value.
type flexFloat struct{ v *float64 }

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		f.v = nil
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			f.v = nil
			return nil
		}
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("not a coordinate: %s", b)
	}
	f.v = &n
	return nil
}

type selectedVenue struct {
	VenueNameE string    `json:"venueNameE" validate:"required"`
	VenueNameC string    `json:"venueNameC"`
	Latitude   flexFloat `json:"latitude"`
	Longitude  flexFloat `json:"longitude"`
}

// inRange reports whether the given coordinates are on the globe. Missing
// coordinates are allowed.
func (v selectedVenue) inRange() bool {
	if lat := v.Latitude.v; lat != nil && (*lat < -90 || *lat > 90) {
		return false
	}
	if lon := v.Longitude.v; lon != nil && (*lon < -180 || *lon > 180) {
		return false
	}
	return true
}

type updateLocationReq struct {
	SelectedVenues []selectedVenue `json:"selectedVenues" validate:"required,min=1,dive"`
}

// UpdateLocation stores every selected venue as a favorite of the caller.
// Duplicates are stored again.
func (h *FavoritesHandler) UpdateLocation(c echo.Context) error {
	var req updateLocationReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	for i := range req.SelectedVenues {
		req.SelectedVenues[i].VenueNameE = strings.TrimSpace(req.SelectedVenues[i].VenueNameE)
		if !req.SelectedVenues[i].inRange() {
			return fail(c, http.StatusBadRequest, "Invalid request body")
		}
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	s, _ := session.FromContext(c)
	now := h.now().UTC()
	locs := make([]model.Location, 0, len(req.SelectedVenues))
	names := make([]string, 0, len(req.SelectedVenues))
	for _, v := range req.SelectedVenues {
		locs = append(locs, model.Location{
			NameE:     v.VenueNameE,
			NameC:     strings.TrimSpace(v.VenueNameC),
			Latitude:  v.Latitude.v,
			Longitude: v.Longitude.v,
			CreatedBy: s.UserID,
			CreatedAt: now,
		})
		names = append(names, v.VenueNameE)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	n, err := h.Locations.InsertMany(ctx, locs)
	if err != nil {
		log.Printf("favorites: insert for user %d: %v", s.UserID, err)
		return fail(c, http.StatusInternalServerError, "Failed to update venues")
	}

	h.notify(queue.FavoritesSavedEvent{
		UserID:   s.UserID,
		Username: s.Username,
		Count:    n,
		Venues:   names,
		SavedAt:  now.Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Successfully updated venues",
		"count":   n,
	})
}

// ListLocations returns the newest stored favorites.
func (h *FavoritesHandler) ListLocations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Locations.List(ctx, listLimit)
	if err != nil {
		log.Printf("favorites: list: %v", err)
		return fail(c, http.StatusInternalServerError, "Failed to load venues")
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// notify publishes in the background; the request never waits on the broker.
func (h *FavoritesHandler) notify(ev queue.FavoritesSavedEvent) {
	if h.Notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := h.Notifier.PublishFavoritesSaved(ctx, ev); err != nil {
			log.Printf("favorites: publish event: %v", err)
		}
	}()
}
