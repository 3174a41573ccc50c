package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"heirloom.backend/internal/interfaces/http/response"
	"heirloom.backend/pkg/logger"
	"heirloom.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the key while the request runs
	LockDuration = 30 * time.Second
	// RetentionDuration is how long a finished response is replayed
	RetentionDuration = 24 * time.Hour

	idempotencyProcessing = "processing"
	codeIdempotencyBusy   = "ERR_IDEMPOTENCY_CONFLICT"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
	redisReady = func() bool { return redis.GetClient() != nil }
)

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the first successful response for a repeated
// Idempotency-Key of the same user. Without Redis it is a pass-through.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || !redisReady() {
			c.Next()
			return
		}

		userID, _ := GetUserID(c)
		storageKey := "idempotency:" + userID.String() + ":" + c.FullPath() + ":" + key
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == idempotencyProcessing:
			response.ErrorWithError(c, http.StatusConflict, codeIdempotencyBusy, "Request already in progress")
			return
		case err == nil:
			var cached cachedResponse
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr != nil {
				logger.Warn(ctx, "Dropping unreadable idempotency entry", zap.String("key", storageKey), zap.Error(jsonErr))
				_ = redisDel(ctx, storageKey)
				break
			}
			c.Header("X-Idempotency-Hit", "true")
			c.Data(cached.Status, "application/json; charset=utf-8", cached.Body)
			c.Abort()
			return
		case !errors.Is(err, goredis.Nil):
			// Redis trouble must not block the request
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, idempotencyProcessing, LockDuration)
		if err != nil || !acquired {
			response.ErrorWithError(c, http.StatusConflict, codeIdempotencyBusy, "Request in progress")
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			// allow a retry
			_ = redisDel(ctx, storageKey)
			return
		}
		var body json.RawMessage
		if w.body.Len() > 0 {
			body = w.body.Bytes()
		}
		payload, err := json.Marshal(cachedResponse{Status: status, Body: body})
		if err != nil {
			_ = redisDel(ctx, storageKey)
			return
		}
		_ = redisSet(ctx, storageKey, string(payload), RetentionDuration)
	}
}
