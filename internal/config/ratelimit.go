package config

import "time"

// RateLimitConfig drives the token-bucket limiter mounted on /api.  The
// bucket holds MaxRequests tokens and refills one token every
// Window/MaxRequests, so a client sustaining the limit gets MaxRequests
// requests per Window.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	Window         time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
	window := envDur("RATE_LIMIT_WINDOW", time.Duration(envInt("RATE_LIMIT_WINDOW_MS", 900000))*time.Millisecond)
	def := RateLimitConfig{
		Enabled:      envBool("RATE_LIMIT_ENABLED", true),
		Capacity:     envInt("RATE_LIMIT_MAX_REQUESTS", 100),
		RefillTokens: envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		Window:       window,
		TTL:          envDur("RATE_LIMIT_TTL", window),
		KeyStrategy:  envStr("RATE_LIMIT_KEY_STRATEGY", "ip"),
		Prefix:       envStr("RATE_LIMIT_PREFIX", "rl"),
		Debug:        envBool("RATE_LIMIT_DEBUG", false),
	}
	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.Window <= 0 {
		def.Window = 15 * time.Minute
	}
	def.RefillInterval = time.Duration(int64(def.Window) * int64(def.RefillTokens) / int64(def.Capacity))
	if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		def.RefillTokens = 1
		def.RefillInterval = every
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

// PerSecond is the sustained request rate, used by the in-process limiter.
func (c RateLimitConfig) PerSecond() float64 {
	return float64(c.RefillTokens) / c.RefillInterval.Seconds()
}
