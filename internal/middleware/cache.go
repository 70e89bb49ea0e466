package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const metaKey = "responseMeta"

// ResponseMeta annotates every response envelope with processing time and,
// when a handler reports one, a cache hit flag.
func ResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(metaKey, map[string]interface{}{})
		c.Next()
		if meta := Meta(c); meta != nil {
			if _, done := meta["processing_time_ms"]; !done {
				meta["processing_time_ms"] = time.Since(start).Milliseconds()
			}
		}
	}
}

// MarkCacheHit records whether the response was served from cache.
func MarkCacheHit(c *gin.Context, hit bool) {
	if meta := Meta(c); meta != nil {
		meta["cache_hit"] = hit
	}
}

// Meta returns the metadata map for the current request, or nil when the
// ResponseMeta middleware is not installed.
func Meta(c *gin.Context) map[string]interface{} {
	value, exists := c.Get(metaKey)
	if !exists {
		return nil
	}
	meta, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	return meta
}
