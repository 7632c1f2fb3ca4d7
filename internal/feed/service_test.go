package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const sampleVenues = `<venues>
<venue id="1"><venuec>甲</venuec><venuee>Alpha Hall</venuee><latitude>22.3</latitude><longitude>114.1</longitude></venue>
<venue id="2"><venuee>Beta Hall</venuee></venue>
</venues>`

const sampleEvents = `<events>
<event id="a"><venueid>1</venueid><titlee>One</titlee></event>
<event id="b"><venueid>1</venueid><titlee>Two</titlee></event>
<event id="c"><venueid>1</venueid><titlee>Three</titlee></event>
<event id="d"><venueid>2</venueid><titlee>Four</titlee></event>
</events>`

// feedServer serves the two documents and counts origin hits per path.
type feedServer struct {
	*httptest.Server
	venueHits atomic.Int32
	eventHits atomic.Int32
}

func newFeedServer(t *testing.T, venues, events http.HandlerFunc) *feedServer {
	t.Helper()
	fs := &feedServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/venues.xml", func(w http.ResponseWriter, r *http.Request) {
		fs.venueHits.Add(1)
		venues(w, r)
	})
	mux.HandleFunc("/events.xml", func(w http.ResponseWriter, r *http.Request) {
		fs.eventHits.Add(1)
		events(w, r)
	})
	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func xmlBody(doc string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = w.Write([]byte(doc))
	}
}

func status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(code), code)
	}
}

func newTestService(fs *feedServer, timeout time.Duration, cache Cache) *Service {
	return NewService(NewFetcher(timeout), Options{
		VenuesURL: fs.URL + "/venues.xml",
		EventsURL: fs.URL + "/events.xml",
		Cache:     cache,
		CacheTTL:  time.Minute,
	})
}

func TestRunJoinsFeeds(t *testing.T) {
	fs := newFeedServer(t, xmlBody(sampleVenues), xmlBody(sampleEvents))
	svc := newTestService(fs, time.Second, nil)

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(res.Groups))
	}
	g := res.Groups[0]
	if g.Venue.ID != "1" || g.Venue.NameE != "Alpha Hall" || len(g.Events) != 3 {
		t.Fatalf("unexpected group %+v", g)
	}
	if res.FromCache {
		t.Fatalf("FromCache should be false without a cache")
	}
	if res.FetchedAt.IsZero() {
		t.Fatalf("FetchedAt not set")
	}
}

func TestRunVenueFeedUnavailable(t *testing.T) {
	fs := newFeedServer(t, status(http.StatusServiceUnavailable), xmlBody(sampleEvents))
	svc := newTestService(fs, time.Second, nil)

	res, err := svc.Run(context.Background())
	var ff *FetchFailure
	if !errors.As(err, &ff) {
		t.Fatalf("want *FetchFailure, got %T (%v)", err, err)
	}
	if ff.Status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", ff.Status)
	}
	if len(res.Groups) != 0 {
		t.Fatalf("no groups expected on failure, got %d", len(res.Groups))
	}
}

func TestRunEventsNotFound(t *testing.T) {
	fs := newFeedServer(t, xmlBody(sampleVenues), status(http.StatusNotFound))
	svc := newTestService(fs, time.Second, nil)

	_, err := svc.Run(context.Background())
	var ff *FetchFailure
	if !errors.As(err, &ff) || ff.Status != http.StatusNotFound {
		t.Fatalf("want 404 FetchFailure, got %v", err)
	}
}

func TestRunTimeoutIsFetchFailure(t *testing.T) {
	slow := func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}
	fs := newFeedServer(t, slow, xmlBody(sampleEvents))
	svc := newTestService(fs, 50*time.Millisecond, nil)

	_, err := svc.Run(context.Background())
	var ff *FetchFailure
	if !errors.As(err, &ff) {
		t.Fatalf("want *FetchFailure, got %T (%v)", err, err)
	}
	if ff.Status != 0 || ff.Cause == nil {
		t.Fatalf("timeout should carry a cause and no status: %+v", ff)
	}
}

func TestRunMalformedEventsIsParseFailure(t *testing.T) {
	fs := newFeedServer(t, xmlBody(sampleVenues), xmlBody(`<events><event id="x">`))
	svc := newTestService(fs, time.Second, nil)

	_, err := svc.Run(context.Background())
	var pf *ParseFailure
	if !errors.As(err, &pf) {
		t.Fatalf("want *ParseFailure, got %T (%v)", err, err)
	}
}

func TestRunServesSecondCallFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	fs := newFeedServer(t, xmlBody(sampleVenues), xmlBody(sampleEvents))
	svc := newTestService(fs, time.Second, NewRedisCache(rdb, "test"))

	first, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if fs.venueHits.Load() != 1 || fs.eventHits.Load() != 1 {
		t.Fatalf("origin hits venues=%d events=%d, want 1 each", fs.venueHits.Load(), fs.eventHits.Load())
	}
	if first.FromCache || !second.FromCache {
		t.Fatalf("FromCache first=%v second=%v", first.FromCache, second.FromCache)
	}
	if len(second.Groups) != 1 || len(second.Groups[0].Events) != 3 {
		t.Fatalf("cached result differs: %+v", second.Groups)
	}
	if !second.FetchedAt.Equal(first.FetchedAt) {
		t.Fatalf("FetchedAt changed: %v vs %v", first.FetchedAt, second.FetchedAt)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("third Run: %v", err)
	}
	if fs.venueHits.Load() != 2 {
		t.Fatalf("expired cache should refetch, venue hits = %d", fs.venueHits.Load())
	}
}

func TestRunCacheUnavailableFallsBackToOrigin(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	fs := newFeedServer(t, xmlBody(sampleVenues), xmlBody(sampleEvents))
	svc := newTestService(fs, time.Second, NewRedisCache(rdb, "test"))

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run with unreachable cache: %v", err)
	}
	if len(res.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(res.Groups))
	}
	if res.FromCache {
		t.Fatalf("FromCache should be false when the cache is down")
	}
	if fs.venueHits.Load() != 1 || fs.eventHits.Load() != 1 {
		t.Fatalf("origin hits venues=%d events=%d, want 1 each", fs.venueHits.Load(), fs.eventHits.Load())
	}
}

func TestRunDoesNotCacheBrokenDocuments(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	fs := newFeedServer(t, xmlBody(sampleVenues), xmlBody(`<events><oops`))
	svc := newTestService(fs, time.Second, NewRedisCache(rdb, "test"))

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected parse failure")
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("nothing should be cached, found %v", keys)
	}
}

func TestSnapshotEncoding(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 42, time.UTC)
	got, ok := decodeSnapshot(encodeSnapshot(Snapshot{Body: []byte("<venues/>"), FetchedAt: at}))
	if !ok || string(got.Body) != "<venues/>" || !got.FetchedAt.Equal(at) {
		t.Fatalf("round trip failed: %+v ok=%v", got, ok)
	}
	if _, ok := decodeSnapshot([]byte{1, 2}); ok {
		t.Fatal("short payload must not decode")
	}
}
