package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"equiptrack/store"
)

// TouchLastSeen stamps last_seen_at at most once per throttle window,
// using a Redis SetNX gate so hot users don't hammer the row.
func TouchLastSeen(st store.Store, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("userID")
		if !ok {
			c.Next()
			return
		}
		uid, _ := v.(string)
		if uid == "" {
			c.Next()
			return
		}

		key := "eqt:lastseen:" + uid
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = st.TouchUserSeen(c, uid) // best effort, never blocks the request
		}
		c.Next()
	}
}
