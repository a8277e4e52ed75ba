package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWaiter struct {
	waits []time.Duration
}

func (r *recordingWaiter) wait(ctx context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return ctx.Err()
}

func stubWait(t *testing.T) *recordingWaiter {
	recorder := &recordingWaiter{}
	original := wait
	wait = recorder.wait
	t.Cleanup(func() { wait = original })
	return recorder
}

func TestRetry_Success(t *testing.T) {
	var calls int
	attempts, err := Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, Limit(5))

	require.NoError(t, err)
	assert.EqualValues(t, 3, attempts)
}

func TestRetry_StrategiesCombine(t *testing.T) {
	waiter := stubWait(t)

	retriable := errors.New("retriable")
	r := NewRetrier(
		Limit(3),
		RetriableErrors(retriable),
		Backoff(ExponentialDelay(100*time.Millisecond, 2), time.Second),
	)

	attempts, err := r.Retry(context.Background(), func() error { return errors.New("fatal") })
	assert.EqualError(t, err, "fatal")
	assert.EqualValues(t, 1, attempts)
	assert.Empty(t, waiter.waits)

	attempts, err = r.Retry(context.Background(), func() error { return errors.Wrap(retriable, "call") })
	assert.True(t, errors.Is(err, retriable))
	assert.EqualValues(t, 3, attempts)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, waiter.waits)
}

func TestRetry_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	attempts, err := Retry(ctx, func() error {
		calls++
		return nil
	})
	assert.Equal(t, context.Canceled, err)
	assert.Zero(t, attempts)
	assert.Zero(t, calls)
}

func TestRetry_CanceledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	attempts, err := Retry(ctx, func() error {
		return errors.New("unavailable")
	}, Backoff(ConstantDelay(time.Minute), time.Minute))

	assert.Equal(t, context.DeadlineExceeded, err)
	assert.EqualValues(t, 1, attempts)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRetry_RealWait(t *testing.T) {
	start := time.Now()
	attempts, err := Retry(context.Background(), func() error {
		return errors.New("unavailable")
	}, Limit(2), Backoff(ConstantDelay(50*time.Millisecond), time.Second))

	assert.Error(t, err)
	assert.EqualValues(t, 2, attempts)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
