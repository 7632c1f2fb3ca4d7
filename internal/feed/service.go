package feed

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source downloads a feed body. *Fetcher is the production implementation.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options configures a Service. Cache is optional; when nil every run
// downloads both feeds.
type Options struct {
	VenuesURL string
	EventsURL string
	Cache     Cache
	CacheTTL  time.Duration
}

// Service runs the fetch → parse → join pipeline. It keeps no state between
// runs apart from the optional cache, so one Service serves concurrent
// requests.
type Service struct {
	source    Source
	venuesURL string
	eventsURL string
	cache     Cache
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewService wires a Service.
func NewService(src Source, opts Options) *Service {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		source:    src,
		venuesURL: opts.VenuesURL,
		eventsURL: opts.EventsURL,
		cache:     opts.Cache,
		cacheTTL:  ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type loaded struct {
	snap   Snapshot
	cached bool
}

// Run downloads both feeds concurrently, parses them and joins them. Any
// fetch or parse failure aborts the whole run; no partial result is returned.
func (s *Service) Run(ctx context.Context) (Result, error) {
	var venuesDoc, eventsDoc loaded

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		venuesDoc, err = s.load(gctx, s.venuesURL)
		return err
	})
	g.Go(func() error {
		var err error
		eventsDoc, err = s.load(gctx, s.eventsURL)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	venues, err := ParseVenues(s.venuesURL, venuesDoc.snap.Body)
	if err != nil {
		return Result{}, err
	}
	events, err := ParseEvents(s.eventsURL, eventsDoc.snap.Body)
	if err != nil {
		return Result{}, err
	}

	s.store(ctx, s.venuesURL, venuesDoc)
	s.store(ctx, s.eventsURL, eventsDoc)

	groups := Join(venues, events)
	log.Printf("feed: %d venues, %d events, %d venues with %d+ events", len(venues), len(events), len(groups), MinEventsPerVenue)

	fetchedAt := venuesDoc.snap.FetchedAt
	if eventsDoc.snap.FetchedAt.Before(fetchedAt) {
		fetchedAt = eventsDoc.snap.FetchedAt
	}
	return Result{
		Groups:    groups,
		FetchedAt: fetchedAt,
		FromCache: venuesDoc.cached || eventsDoc.cached,
	}, nil
}

// load returns a cached snapshot when one exists, otherwise downloads url.
// Cache errors are logged and treated as misses.
func (s *Service) load(ctx context.Context, url string) (loaded, error) {
	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx, url)
		if err != nil {
			log.Printf("feed: cache read %s failed: %v", url, err)
		} else if ok {
			return loaded{snap: snap, cached: true}, nil
		}
	}
	body, err := s.source.Fetch(ctx, url)
	if err != nil {
		return loaded{}, err
	}
	return loaded{snap: Snapshot{Body: body, FetchedAt: s.now()}}, nil
}

// store caches freshly downloaded snapshots. It runs only after both
// documents parsed, so a broken body is never cached.
func (s *Service) store(ctx context.Context, url string, l loaded) {
	if s.cache == nil || l.cached {
		return
	}
	if err := s.cache.Put(ctx, url, l.snap, s.cacheTTL); err != nil {
		log.Printf("feed: cache write %s failed: %v", url, err)
	}
}
