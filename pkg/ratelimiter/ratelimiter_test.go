package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"talib.app/backend/pkg/apperror"
)

func TestLimiter_NilAllowsEverything(t *testing.T) {
	var l *Limiter
	assert.NoError(t, l.Allow(context.Background(), uuid.New(), "report", time.Minute))
	assert.NoError(t, l.Release(context.Background(), uuid.New(), "report"))

	l = New(nil)
	for i := 0; i < 3; i++ {
		assert.NoError(t, l.Allow(context.Background(), uuid.New(), "listing", time.Minute))
	}
}

func TestRateLimitError_MapsToTooManyRequests(t *testing.T) {
	err := error(&RateLimitError{Message: "slow down", RetryAfter: 30 * time.Second})
	assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))
	assert.Equal(t, 429, apperror.MapErrorToStatus(err))
	assert.Equal(t, "slow down", err.Error())
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("0190f5d2-6b1c-7c2e-9a57-3f0e2b1c4d5e")
	assert.Equal(t, "rate_limit:user:0190f5d2-6b1c-7c2e-9a57-3f0e2b1c4d5e:report", key(id, "report"))
}
