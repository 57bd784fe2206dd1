package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/logger"
	"github.com/sblmetalroofing-oss/Rprime-sub003/internal/ratelimit"
)

type errorEnvelope struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
	} `json:"error"`
}

func newOrgRouter(extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Logger(logger.New("test")), Organization())
	router.Use(extra...)
	router.POST("/quotes/generate", func(c *gin.Context) {
		c.String(http.StatusOK, GetOrganizationID(c))
	})
	return router
}

func TestOrganization(t *testing.T) {
	t.Run("stores trimmed organization id", func(t *testing.T) {
		router := newOrgRouter()
		req := httptest.NewRequest(http.MethodPost, "/quotes/generate", nil)
		req.Header.Set(OrganizationIDHeader, "  org-42 ")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "org-42", w.Body.String())
	})

	t.Run("rejects missing header", func(t *testing.T) {
		router := newOrgRouter()
		req := httptest.NewRequest(http.MethodPost, "/quotes/generate", nil)
		req.Header.Set(RequestIDHeader, "req-1")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var body errorEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "BAD_REQUEST", body.Error.Code)
		assert.Contains(t, body.Error.Message, OrganizationIDHeader)
		assert.Equal(t, "req-1", body.Error.RequestID)
	})

	t.Run("GetOrganizationID returns empty string if not set", func(t *testing.T) {
		c := &gin.Context{}
		assert.Empty(t, GetOrganizationID(c))
	})
}

func TestRateLimit(t *testing.T) {
	send := func(router *gin.Engine, org string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/quotes/generate", nil)
		req.Header.Set(OrganizationIDHeader, org)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("rejects requests over the limit", func(t *testing.T) {
		router := newOrgRouter(RateLimit(ratelimit.NewLimiter(2, time.Minute)))

		first := send(router, "org-1")
		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "2", first.Header().Get(RateLimitLimitHeader))
		assert.Equal(t, "1", first.Header().Get(RateLimitRemainingHeader))
		assert.NotEmpty(t, first.Header().Get(RateLimitResetHeader))

		assert.Equal(t, http.StatusOK, send(router, "org-1").Code)

		third := send(router, "org-1")
		require.Equal(t, http.StatusTooManyRequests, third.Code)
		assert.Equal(t, "0", third.Header().Get(RateLimitRemainingHeader))
		retryAfter, err := strconv.Atoi(third.Header().Get("Retry-After"))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, retryAfter, 1)
		assert.LessOrEqual(t, retryAfter, 60)

		var body errorEnvelope
		require.NoError(t, json.Unmarshal(third.Body.Bytes(), &body))
		assert.Equal(t, "RATE_LIMITED", body.Error.Code)
	})

	t.Run("counts organizations separately", func(t *testing.T) {
		router := newOrgRouter(RateLimit(ratelimit.NewLimiter(1, time.Minute)))

		assert.Equal(t, http.StatusOK, send(router, "org-a").Code)
		assert.Equal(t, http.StatusOK, send(router, "org-b").Code)
		assert.Equal(t, http.StatusTooManyRequests, send(router, "org-a").Code)
	})
}
