package config

// Config is the full lectern configuration.
type Config struct {
	Server   ServerCfg   `mapstructure:"server" yaml:"server"`
	Browsing BrowsingCfg `mapstructure:"browsing" yaml:"browsing"`
	Origin   OriginCfg   `mapstructure:"origin" yaml:"origin"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// BrowsingCfg tunes the lazy-loading core.
type BrowsingCfg struct {
	// Buffer is the number of extra pages materialized on each side of
	// the visible range.
	Buffer int `mapstructure:"buffer" yaml:"buffer"`

	// DebounceMS delays viewport recomputation after a scroll event.
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms"`

	// PrefetchConcurrency bounds in-flight resource fetches per
	// browsing session.
	PrefetchConcurrency int `mapstructure:"prefetch_concurrency" yaml:"prefetch_concurrency"`

	// CacheFailures memoizes failed resource fetches instead of
	// allowing retries. Off by default; see resource.CacheConfig.
	CacheFailures bool `mapstructure:"cache_failures" yaml:"cache_failures"`

	// FallbackAspectRatio (height over width) sizes placeholders until
	// a document's native ratio is discovered. Zero means the built-in
	// A-series default.
	FallbackAspectRatio float64 `mapstructure:"fallback_aspect_ratio" yaml:"fallback_aspect_ratio"`
}

// OriginCfg configures an optional remote origin that page resources
// are proxied from when they are not present in the local library.
type OriginCfg struct {
	// URL of the origin server. Empty disables proxying.
	URL string `mapstructure:"url" yaml:"url"`

	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`

	// ProbeAttempts bounds the startup reachability probe.
	ProbeAttempts int `mapstructure:"probe_attempts" yaml:"probe_attempts"`
}
