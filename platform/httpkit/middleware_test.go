package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func rateLimitedEngine(limiter *IPRateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/approve/:token", limiter.RateLimit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func postAs(engine *gin.Engine, remoteAddr string) int {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/approve/some-token", nil)
	req.RemoteAddr = remoteAddr
	engine.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimit_RejectsPastBurst(t *testing.T) {
	// Zero refill rate so the burst is all a client ever gets.
	engine := rateLimitedEngine(NewIPRateLimiter(rate.Limit(0), 3, nil))

	for i := 0; i < 3; i++ {
		if code := postAs(engine, "203.0.113.7:4000"); code != http.StatusOK {
			t.Fatalf("request %d within burst got %d", i+1, code)
		}
	}
	if code := postAs(engine, "203.0.113.7:4000"); code != http.StatusTooManyRequests {
		t.Fatalf("request past burst got %d, want 429", code)
	}
}

func TestRateLimit_TracksClientsSeparately(t *testing.T) {
	engine := rateLimitedEngine(NewIPRateLimiter(rate.Limit(0), 1, nil))

	if code := postAs(engine, "203.0.113.7:4000"); code != http.StatusOK {
		t.Fatalf("first client's first request got %d", code)
	}
	if code := postAs(engine, "203.0.113.7:4000"); code != http.StatusTooManyRequests {
		t.Fatalf("first client's second request got %d, want 429", code)
	}
	if code := postAs(engine, "198.51.100.9:4000"); code != http.StatusOK {
		t.Fatalf("an exhausted bucket must not throttle other clients, got %d", code)
	}
}
