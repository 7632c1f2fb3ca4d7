package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var testSecret = []byte("test-secret")

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "sess", ttl), mr
}

func TestRedisStoreTouchExtendsTTL(t *testing.T) {
	store, mr := newRedisStore(t, 5*time.Minute)
	ctx := context.Background()

	if err := store.Create(ctx, Session{ID: "abc", UserID: 7, Username: "amy", Role: "user"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	mr.FastForward(4 * time.Minute)
	got, err := store.Touch(ctx, "abc")
	if err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if got.ID != "abc" || got.UserID != 7 || got.Username != "amy" {
		t.Fatalf("unexpected session %+v", got)
	}
	// 4m + 4m is past the first expiry but inside the rolled one.
	mr.FastForward(4 * time.Minute)
	if _, err := store.Touch(ctx, "abc"); err != nil {
		t.Fatalf("Touch after roll: %v", err)
	}
	mr.FastForward(6 * time.Minute)
	if _, err := store.Touch(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after idle expiry", err)
	}
}

func TestRedisStoreKeysAreHashed(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	if err := store.Create(context.Background(), Session{ID: "raw-id"}); err != nil {
		t.Fatal(err)
	}
	for _, k := range mr.Keys() {
		if strings.Contains(k, "raw-id") {
			t.Fatalf("raw id leaked into key %q", k)
		}
	}
}

func TestRedisStoreDestroy(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	ctx := context.Background()
	_ = store.Create(ctx, Session{ID: "abc"})
	if err := store.Destroy(ctx, "abc"); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := store.Touch(ctx, "abc"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	_ = m.Create(ctx, Session{ID: "x", Username: "bo"})
	now = now.Add(50 * time.Second)
	if _, err := m.Touch(ctx, "x"); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	now = now.Add(50 * time.Second)
	if _, err := m.Touch(ctx, "x"); err != nil {
		t.Fatalf("Touch after roll: %v", err)
	}
	now = now.Add(61 * time.Second)
	if _, err := m.Touch(ctx, "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCookieRejectsTamperedSignature(t *testing.T) {
	k := NewCookies(CookieOptions{Secret: testSecret})
	signed, err := k.Sign("abc")
	if err != nil {
		t.Fatal(err)
	}
	if id, err := k.Verify(signed); err != nil || id != "abc" {
		t.Fatalf("Verify = %q, %v", id, err)
	}

	other := NewCookies(CookieOptions{Secret: []byte("another-secret")})
	if _, err := other.Verify(signed); !errors.Is(err, ErrInvalidCookie) {
		t.Fatalf("foreign signature accepted: %v", err)
	}
	forged, _ := k.Sign("zzz")
	tampered := signed[:strings.LastIndex(signed, ".")] + forged[strings.LastIndex(forged, "."):]
	if _, err := k.Verify(tampered); !errors.Is(err, ErrInvalidCookie) {
		t.Fatalf("tampered signature accepted: %v", err)
	}
	if _, err := k.Verify("not-a-token"); !errors.Is(err, ErrInvalidCookie) {
		t.Fatalf("garbage accepted: %v", err)
	}
}

func TestCookieAttributes(t *testing.T) {
	k := NewCookies(CookieOptions{Name: "vh", Secret: testSecret, TTL: 5 * time.Minute, Secure: true})

	rec := httptest.NewRecorder()
	if err := k.Write(rec, "abc", false); err != nil {
		t.Fatal(err)
	}
	c := rec.Result().Cookies()[0]
	if c.Name != "vh" || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode || c.MaxAge != 0 {
		t.Fatalf("unexpected session cookie %+v", c)
	}

	rec = httptest.NewRecorder()
	_ = k.Write(rec, "abc", true)
	if c := rec.Result().Cookies()[0]; c.MaxAge != 300 {
		t.Fatalf("remember-me MaxAge = %d, want 300", c.MaxAge)
	}
}

func TestManagerLifecycle(t *testing.T) {
	cookies := NewCookies(CookieOptions{Secret: testSecret})
	mgr := NewManager(NewMemoryStore(time.Minute), cookies)
	ctx := context.Background()

	rec := httptest.NewRecorder()
	started, err := mgr.Start(ctx, rec, Session{UserID: 1, Username: "amy", Role: "admin"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	issued := rec.Result().Cookies()
	if len(issued) != 1 {
		t.Fatalf("want one cookie, got %d", len(issued))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(issued[0])
	got, err := mgr.Load(ctx, httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != started.ID || got.Role != "admin" {
		t.Fatalf("loaded %+v, started %+v", got, started)
	}

	rec = httptest.NewRecorder()
	if err := mgr.End(ctx, rec, req); err != nil {
		t.Fatalf("End: %v", err)
	}
	if c := rec.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
		t.Fatalf("logout should expire the cookie, got %+v", c)
	}
	if _, err := mgr.Load(ctx, httptest.NewRecorder(), req); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after End", err)
	}
}

func TestManagerLoadWithoutCookie(t *testing.T) {
	mgr := NewManager(NewMemoryStore(time.Minute), NewCookies(CookieOptions{Secret: testSecret}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := mgr.Load(context.Background(), httptest.NewRecorder(), req); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
