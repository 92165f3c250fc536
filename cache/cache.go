package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"ewintr.nl/ytsum/metrics"
	"ewintr.nl/ytsum/model"
)

// Transcripts is a 2-tier transcript cache: in-memory first, Redis
// second when configured. The memory tier is lost on restart.
type Transcripts struct {
	mem             sync.Map // key → *entry
	rdb             *redis.Client
	ttl             time.Duration
	cleanupInterval time.Duration
	logger          *slog.Logger
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// NewTranscripts sets up the cache. An empty redisURL disables the
// second tier, an unreachable Redis only logs a warning.
func NewTranscripts(redisURL string, ttl time.Duration, logger *slog.Logger) *Transcripts {
	c := &Transcripts{
		ttl:             ttl,
		cleanupInterval: 5 * time.Minute,
		logger:          logger,
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Warn("cache: invalid redis url, second tier disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn("cache: redis unreachable, second tier disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				logger.Info("cache: redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	go c.cleanupLoop()

	return c
}

func cacheKey(videoID, language string) string {
	hash := sha256.Sum256([]byte(videoID + "|" + language))
	return fmt.Sprintf("ts:%x", hash[:12])
}

func (c *Transcripts) Get(ctx context.Context, videoID, language string) ([]model.TranscriptSnippet, bool) {
	key := cacheKey(videoID, language)

	if val, ok := c.mem.Load(key); ok {
		e := val.(*entry)
		if time.Now().Before(e.expiresAt) {
			var snippets []model.TranscriptSnippet
			if json.Unmarshal(e.data, &snippets) == nil {
				metrics.IncrCacheHits()
				return snippets, true
			}
		}
		c.mem.Delete(key)
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var snippets []model.TranscriptSnippet
			if json.Unmarshal(data, &snippets) == nil {
				metrics.IncrCacheHits()
				c.mem.Store(key, &entry{data: data, expiresAt: time.Now().Add(c.ttl)})
				return snippets, true
			}
		}
	}

	metrics.IncrCacheMisses()
	return nil, false
}

func (c *Transcripts) Set(ctx context.Context, videoID, language string, snippets []model.TranscriptSnippet) {
	data, err := json.Marshal(snippets)
	if err != nil {
		return
	}
	key := cacheKey(videoID, language)

	c.mem.Store(key, &entry{data: data, expiresAt: time.Now().Add(c.ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Debug("cache: redis set failed", slog.Any("error", err))
		}
	}
}

func (c *Transcripts) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mem.Range(func(key, val any) bool {
			if e, ok := val.(*entry); ok && now.After(e.expiresAt) {
				c.mem.Delete(key)
			}
			return true
		})
	}
}
