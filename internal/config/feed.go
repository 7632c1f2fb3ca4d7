package config

import "time"

// FeedConfig locates the two open-data feeds and controls the optional Redis
// snapshot cache. The cache is off unless FEED_CACHE_ENABLED is set and a
// Redis client is available.
type FeedConfig struct {
	VenuesURL    string
	EventsURL    string
	Timeout      time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
	CachePrefix  string
}

const (
	defaultVenuesURL = "https://www.lcsd.gov.hk/datagovhk/event/venues.xml"
	defaultEventsURL = "https://www.lcsd.gov.hk/datagovhk/event/events.xml"
)

func LoadFeedConfig() FeedConfig {
	cfg := FeedConfig{
		VenuesURL:    envStr("FEED_VENUES_URL", defaultVenuesURL),
		EventsURL:    envStr("FEED_EVENTS_URL", defaultEventsURL),
		Timeout:      envDur("FEED_TIMEOUT", 10*time.Second),
		CacheEnabled: envBool("FEED_CACHE_ENABLED", false),
		CacheTTL:     envDur("FEED_CACHE_TTL", 10*time.Minute),
		CachePrefix:  envStr("FEED_CACHE_PREFIX", "feed"),
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return cfg
}
