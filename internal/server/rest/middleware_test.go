package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderIdentity(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{value: "1", want: 1},
		{value: " 42 ", want: 42},
		{value: "", wantErr: true},
		{value: "abc", wantErr: true},
		{value: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(common.UserIDHeaderName, tt.value)
			got, err := NewHeaderIdentity().Resolve(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidIdentityClaim)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type staticIdentity int64

func (s staticIdentity) Resolve(*http.Request) (int64, error) { return int64(s), nil }

func TestCustomIdentityResolver(t *testing.T) {
	items := seededItems()
	s := newTestServer(testDeps{items: items}, func(o *Options) { o.Identity = staticIdentity(2) })

	rec := do(t, s.Handler(), http.MethodGet, "/api/items/2", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(testDeps{})

	rec := do(t, s.Handler(), http.MethodGet, "/health", "", map[string]string{common.RequestIDHeaderName: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(common.RequestIDHeaderName))

	rec = do(t, s.Handler(), http.MethodGet, "/health", "", nil)
	assert.Len(t, rec.Header().Get(common.RequestIDHeaderName), 36)
}

func TestCORS(t *testing.T) {
	s := newTestServer(testDeps{}, func(o *Options) { o.CORSOrigins = []string{"http://localhost:4200"} })

	rec := do(t, s.Handler(), http.MethodOptions, "/api/items", "", map[string]string{
		"Origin":                        "http://localhost:4200",
		"Access-Control-Request-Method": "POST",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:4200", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), common.UserIDHeaderName)

	rec = do(t, s.Handler(), http.MethodGet, "/health", "", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthRateLimit(t *testing.T) {
	metrics := NewMetrics()
	s := newTestServer(testDeps{}, func(o *Options) {
		o.AuthRatePerMin = 1
		o.AuthRateBurst = 2
		o.Metrics = metrics
	})

	body := `{"username":"alice","password":"pw"}`
	for i := 0; i < 2; i++ {
		rec := do(t, s.Handler(), http.MethodPost, "/api/auth/login", body, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, s.Handler(), http.MethodPost, "/api/auth/login", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.rateLimitHits.WithLabelValues("/api/auth/login")))

	// Item routes are not limited.
	rec = do(t, s.Handler(), http.MethodGet, "/api/items", "", asUser("1"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIPRateLimiter(t *testing.T) {
	assert.Nil(t, newIPRateLimiter(0, 5))

	l := newIPRateLimiter(60, 1)
	now := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"), "buckets are per key")

	now = now.Add(time.Second)
	assert.True(t, l.allow("10.0.0.1"), "token refills after a second")

	now = now.Add(time.Hour)
	l.allow("10.0.0.3")
	assert.Len(t, l.buckets, 1, "idle buckets are swept")
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := NewMetrics()
	s := newTestServer(testDeps{items: seededItems()}, func(o *Options) { o.Metrics = metrics })

	do(t, s.Handler(), http.MethodGet, "/api/items/1", "", asUser("1"))
	metrics.ObserveRecommenderCall("success")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestTotal.WithLabelValues("GET", "/api/items/{id}", "200")))

	rec := do(t, s.Handler(), http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "fintrack_api_http_requests_total")
	assert.Contains(t, body, "fintrack_api_http_request_duration_seconds")
	assert.Contains(t, body, `fintrack_recommender_calls_total{outcome="success"} 1`)
}

func TestHealth(t *testing.T) {
	s := newTestServer(testDeps{}, func(o *Options) {
		o.HealthChecks = []HealthCheck{
			{Name: "database", Critical: true, Check: func(context.Context) error { return nil }},
			{Name: "recommender", Check: func(context.Context) error { return errors.New("down") }},
		}
	})
	rec := do(t, s.Handler(), http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["uptime"])
	assert.Equal(t, map[string]any{"database": "ok", "recommender": "unavailable"}, body["checks"])

	s = newTestServer(testDeps{}, func(o *Options) {
		o.HealthChecks = []HealthCheck{
			{Name: "database", Critical: true, Check: func(context.Context) error { return errors.New("down") }},
		}
	})
	rec = do(t, s.Handler(), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decodeBody(t, rec)["status"])
}

func TestServe_StopsOnCancel(t *testing.T) {
	s := newTestServer(testDeps{})

	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, listen) }()

	url := "http://" + listen.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServe_DrainsInFlightRequestOnCancel(t *testing.T) {
	recs := &fakeRecommendations{
		out:     &models.Recommendation{Text: "Spend less on coffee", GeneratedAt: "2026-10-17T10:00:00"},
		delay:   300 * time.Millisecond,
		started: make(chan struct{}),
	}
	s := newTestServer(testDeps{recs: recs}, func(o *Options) { o.ShutdownTimeout = 3 * time.Second })

	listen, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, listen) }()

	type result struct {
		status int
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		req, _ := http.NewRequest(http.MethodGet, "http://"+listen.Addr().String()+"/api/items/recommendation", nil)
		req.Header.Set(common.UserIDHeaderName, "1")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			resCh <- result{err: err}
			return
		}
		resp.Body.Close()
		resCh <- result{status: resp.StatusCode}
	}()

	select {
	case <-recs.started:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the handler")
	}
	cancel()

	select {
	case res := <-resCh:
		require.NoError(t, res.err)
		assert.Equal(t, http.StatusOK, res.status)
	case <-time.After(3 * time.Second):
		t.Fatal("in-flight request did not complete")
	}

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_BadAddress(t *testing.T) {
	s := newTestServer(testDeps{}, func(o *Options) { o.Address = "256.0.0.1:bad" })
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "listen") || strings.Contains(err.Error(), "address"))
}
