package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"magic-encyclopedia/backend/pkg/config"
)

// SpeechEntry is a cached synthesized utterance. Encoding mirrors the
// provider result tag so playback can route it without re-synthesizing.
type SpeechEntry struct {
	Encoding   string `json:"encoding"`
	Data       []byte `json:"data"`
	SampleRate int    `json:"sample_rate"`
}

// SpeechCache stores synthesized speech keyed by utterance fingerprint
type SpeechCache interface {
	Get(ctx context.Context, key string) (*SpeechEntry, bool)
	Set(ctx context.Context, key string, entry *SpeechEntry)
}

// Key builds a stable cache key from the parts that determine an utterance:
// provider, voice, language and the spoken text.
func Key(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return "speech:" + hex.EncodeToString(h[:])
}

// New picks a cache backend from configuration: redis when an address is
// configured, otherwise the in-process cache. A disabled cache returns nil
// and callers skip caching entirely.
func New(cfg *config.Config) SpeechCache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.RedisAddr != "" {
		return NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.TTL)
	}
	return NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxItems)
}

// nowFunc is swapped in tests
var nowFunc = time.Now
