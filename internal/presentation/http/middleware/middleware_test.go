package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]*entity.IdempotencyKey
}

func (m *memoryIdempotency) GetByKey(_ context.Context, key string, operatorID int64) (*entity.IdempotencyKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, ok := m.keys[key]
	if !ok || k.OperatorID != operatorID {
		return nil, nil
	}
	return k, nil
}

func (m *memoryIdempotency) Save(_ context.Context, ikey *entity.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[ikey.Key] = ikey
	return nil
}

func (m *memoryIdempotency) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, nil }

func withOperator(id int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("operator_id", id)
		c.Next()
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIdempotency_ReplaysSuccessfulCheckout(t *testing.T) {
	repo := &memoryIdempotency{keys: map[string]*entity.IdempotencyKey{}}
	calls := 0

	r := gin.New()
	r.Use(withOperator(7), Idempotency(IdempotencyConfig{Repo: repo, TTL: time.Hour}))
	r.POST("/checkout", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"order_id": 901})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.Header.Set(IdempotencyKeyHeader, "sale-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	second := send()

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
}

func TestIdempotency_FailuresCanBeRetried(t *testing.T) {
	repo := &memoryIdempotency{keys: map[string]*entity.IdempotencyKey{}}
	calls := 0

	r := gin.New()
	r.Use(withOperator(7), Idempotency(IdempotencyConfig{Repo: repo}))
	r.POST("/checkout", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusBadGateway, gin.H{"success": false})
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.Header.Set(IdempotencyKeyHeader, "sale-2")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)
	assert.Empty(t, repo.keys)
}

func TestIdempotency_RejectsKeyReuseWithOtherBody(t *testing.T) {
	repo := &memoryIdempotency{keys: map[string]*entity.IdempotencyKey{}}
	calls := 0

	r := gin.New()
	r.Use(withOperator(7), Idempotency(IdempotencyConfig{Repo: repo}))
	r.POST("/checkout", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"order_id": 901})
	})

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
		req.Header.Set(IdempotencyKeyHeader, "sale-3")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, send(`{"supports_local_download":true}`).Code)
	w := send(`{"supports_local_download":false}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"conflict"`)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_OtherOperatorsKeysAreIndependent(t *testing.T) {
	repo := &memoryIdempotency{keys: map[string]*entity.IdempotencyKey{}}
	calls := 0
	handler := func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{})
	}

	for _, op := range []int64{7, 8} {
		r := gin.New()
		r.Use(withOperator(op), Idempotency(IdempotencyConfig{Repo: repo}))
		r.POST("/checkout", handler)
		req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
		req.Header.Set(IdempotencyKeyHeader, "shared")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)
}

func TestRateLimiter_PerOperator(t *testing.T) {
	rl := NewOperatorRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2, EntryTTL: time.Minute})

	hit := func(op int64) int {
		r := gin.New()
		r.Use(withOperator(op), rl.Middleware())
		r.GET("/cart", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit(1))
	assert.Equal(t, http.StatusOK, hit(1))
	assert.Equal(t, http.StatusTooManyRequests, hit(1))
	assert.Equal(t, http.StatusOK, hit(2), "operators do not share a budget")
	assert.Equal(t, 2, rl.Active())

	rl.now = func() time.Time { return time.Now().Add(time.Hour) }
	rl.cleanup()
	assert.Equal(t, 0, rl.Active())
}

func TestAuthMiddleware_SetsOperator(t *testing.T) {
	jwtManager := utils.NewJWTManager("secret", 0)
	token, err := jwtManager.GenerateAccessToken(42, "paul", time.Hour)
	require.NoError(t, err)

	var got int64
	r := gin.New()
	r.Use(AuthMiddleware(registrar{jwtManager}))
	r.GET("/me", func(c *gin.Context) {
		got, _ = operatorFrom(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), got)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type registrar struct {
	jwt *utils.JWTManager
}

func (r registrar) Put(raw string) (*utils.OperatorClaims, error) {
	return r.jwt.ValidateAccessToken(raw)
}
