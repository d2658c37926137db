// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sleepRecorder collects the delays a policy asks for instead of waiting.
type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) { s.delays = append(s.delays, d) }

func testPolicy(rec *sleepRecorder) RetryPolicy {
	p := DefaultPolicy()
	p.Sleep = rec.sleep
	return p
}

func TestDoImmediateSuccess(t *testing.T) {
	rec := &sleepRecorder{}
	calls := 0
	err := testPolicy(rec).Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestDoRateLimitBackoffDoubles(t *testing.T) {
	rec := &sleepRecorder{}
	calls := 0
	err := testPolicy(rec).Do(context.Background(), func() error {
		calls++
		return &RateLimitError{Status: 429}
	})
	require.Error(t, err)
	assert.True(t, IsRateLimit(err))
	assert.Equal(t, 3, calls)
	// 2s after the first failure, 4s after the second, none after the last.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
}

func TestDoTransientFixedDelay(t *testing.T) {
	rec := &sleepRecorder{}
	calls := 0
	err := testPolicy(rec).Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("connection reset")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, rec.delays)
}

func TestDoMalformedAbortsImmediately(t *testing.T) {
	rec := &sleepRecorder{}
	calls := 0
	err := testPolicy(rec).Do(context.Background(), func() error {
		calls++
		return &MalformedResponseError{Reason: "truncated JSON"}
	})
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestDoWrappedTaxonomyErrorsClassify(t *testing.T) {
	rec := &sleepRecorder{}
	calls := 0
	err := testPolicy(rec).Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("fetching page: %w", &RateLimitError{Status: 429})
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
}

func TestDoContextCancelledDuringBackoff(t *testing.T) {
	p := DefaultPolicy()
	p.RateLimitBase = 500 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Do(ctx, func() error {
		return &RateLimitError{Status: 429}
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoZeroValuePolicyUsesDefaults(t *testing.T) {
	var p RetryPolicy
	p.Sleep = func(time.Duration) {}
	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return fmt.Errorf("transient")
	})
	require.Error(t, err)
	assert.Equal(t, DefaultMaxAttempts, calls)
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		status        int
		wantNil       bool
		wantRateLimit bool
	}{
		{http.StatusOK, true, false},
		{http.StatusTooManyRequests, false, true},
		{http.StatusInternalServerError, false, false},
		{http.StatusForbidden, false, false},
	}
	for _, tt := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		resp, err := ts.Client().Get(ts.URL)
		require.NoError(t, err)
		got := CheckStatus(resp)
		resp.Body.Close()
		ts.Close()

		if tt.wantNil {
			assert.NoError(t, got)
			continue
		}
		require.Error(t, got, "HTTP %d", tt.status)
		assert.Equal(t, tt.wantRateLimit, IsRateLimit(got), "HTTP %d", tt.status)
	}
}
