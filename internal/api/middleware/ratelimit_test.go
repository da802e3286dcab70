package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/tasks-api/internal/mocks"
	"github.com/phrazzld/tasks-api/internal/ratelimit"
)

type countingObserver struct{ n int }

func (o *countingObserver) RateLimited() { o.n++ }

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name          string
		limiter       *mocks.MockLimiter
		expectedCode  int
		expectedRetry string
		expectedHits  int
	}{
		{
			name: "under quota",
			limiter: &mocks.MockLimiter{Result: ratelimit.Result{
				Allowed: true, Limit: 100, Remaining: 99, ResetAfter: 15 * time.Minute,
			}},
			expectedCode: http.StatusOK,
		},
		{
			name: "over quota",
			limiter: &mocks.MockLimiter{Result: ratelimit.Result{
				Allowed: false, Limit: 100, Remaining: 0, ResetAfter: 1500 * time.Millisecond,
			}},
			expectedCode:  http.StatusTooManyRequests,
			expectedRetry: "2",
			expectedHits:  1,
		},
		{
			name:         "limiter failure lets the request through",
			limiter:      &mocks.MockLimiter{Err: assert.AnError},
			expectedCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observer := &countingObserver{}
			h := RateLimit(tt.limiter, observer, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.7:51234"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Equal(t, tt.expectedRetry, rec.Header().Get("Retry-After"))
			assert.Equal(t, tt.expectedHits, observer.n)
			assert.Equal(t, []string{"203.0.113.7"}, tt.limiter.Keys)
		})
	}
}

func TestRateLimitWithMemoryLimiter(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Policy{Requests: 2, Window: time.Minute})
	h := RateLimit(limiter, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
