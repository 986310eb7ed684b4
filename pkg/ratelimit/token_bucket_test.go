package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_Allow(t *testing.T) {
	tb := NewTokenBucket(60, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "桶内有令牌时应放行")
	}
	assert.False(t, tb.Allow(), "令牌耗尽后应拒绝")
}

func TestTokenBucket_DefaultCapacity(t *testing.T) {
	tb := NewTokenBucket(10, 0)
	assert.InDelta(t, 5.0, tb.capacity, 0.001, "未指定容量时取配额的一半")

	tb = NewTokenBucket(1, 0)
	assert.InDelta(t, 1.0, tb.capacity, 0.001, "容量至少为1")
}

func TestTokenBucket_WaitCancelled(t *testing.T) {
	tb := NewTokenBucket(6, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled, "上下文取消时Wait应立即返回")
}

func TestTokenBucket_RetryWithBackoff(t *testing.T) {
	tb := NewTokenBucket(600, 10).WithRetryPolicy(time.Millisecond, 3)

	calls := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "瞬时故障应重试至成功")
}

func TestTokenBucket_RetryNonRetryable(t *testing.T) {
	tb := NewTokenBucket(600, 10).WithRetryPolicy(time.Millisecond, 3)

	calls := 0
	err := tb.RetryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("535 authentication failed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "不可重试的错误应直接返回")
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.True(t, isRetryableError(errors.New("read: connection reset by peer")))
	assert.True(t, isRetryableError(errors.New("451 temporary local problem, try again")))
	assert.False(t, isRetryableError(errors.New("550 mailbox unavailable")))
}
