package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"tiendapos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Check pings one dependency for /health.
type Check func(ctx context.Context) error

func DBCheck(db *gorm.DB) Check {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func RedisCheck(rdb *redis.Client) Check {
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}

// Health runs every check under a 3s budget and reports dead-letter depth
// when rdb is reachable. Any failing check turns the response into a 503.
// Error messages stay in the logs; the body only says "error".
func Health(checks map[string]Check, rdb *redis.Client) gin.HandlerFunc {
	nombres := make([]string, 0, len(checks))
	for n := range checks {
		nombres = append(nombres, n)
	}
	sort.Strings(nombres)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		estado := make(map[string]string, len(checks))
		ok := true
		for _, n := range nombres {
			if err := checks[n](ctx); err != nil {
				_ = c.Error(err)
				estado[n] = "error"
				ok = false
				continue
			}
			estado[n] = "connected"
		}

		body := gin.H{"ok": ok, "checks": estado}
		if rdb != nil {
			if lens, err := worker.DLQLengths(ctx, rdb); err == nil {
				body["dlq"] = lens
			}
		}

		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	}
}
