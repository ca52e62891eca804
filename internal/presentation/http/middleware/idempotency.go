package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/domain/repository"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/response"
	"github.com/sangkips/velo-register/pkg/apperror"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the HTTP header for idempotency keys
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Repo   repository.IdempotencyRepository
	TTL    time.Duration
	Logger *zap.Logger
}

// responseWriter wraps gin.ResponseWriter to capture the response body
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST the register already
// sent with the same key. A double-tapped checkout button therefore yields
// the first sale's result instead of a second order. Only 2xx responses are
// stored, so a failed attempt can be retried with its key. Reusing a key with
// a different body is rejected.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	logger := zap.NewNop()
	if config.Logger != nil {
		logger = config.Logger.Named("idempotency")
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		operatorID, ok := operatorFrom(c)
		if !ok {
			c.Next()
			return
		}

		hash, err := hashBody(c)
		if err != nil {
			response.BadRequest(c, "Unreadable request body")
			c.Abort()
			return
		}

		existing, err := config.Repo.GetByKey(c.Request.Context(), key, operatorID)
		if err != nil {
			logger.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if existing != nil && !existing.IsExpired() {
			if existing.RequestHash != hash {
				response.Error(c, &apperror.AppError{
					Code:    http.StatusConflict,
					Kind:    apperror.KindConflict,
					Message: "Idempotency key already used for another request",
				})
				c.Abort()
				return
			}
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		blw := &responseWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		ikey := &entity.IdempotencyKey{
			Key:          key,
			OperatorID:   operatorID,
			Endpoint:     c.Request.Method + " " + c.FullPath(),
			RequestHash:  hash,
			ResponseCode: status,
			ResponseBody: blw.body.String(),
			ExpiresAt:    time.Now().Add(config.TTL),
		}
		if err := config.Repo.Save(c.Request.Context(), ikey); err != nil {
			logger.Warn("failed to store idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
}

func operatorFrom(c *gin.Context) (int64, bool) {
	v, exists := c.Get("operator_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id != 0
}

// hashBody digests the request body and puts it back for the handler
func hashBody(c *gin.Context) (string, error) {
	if c.Request.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if len(body) == 0 {
		return "", nil
	}
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}
