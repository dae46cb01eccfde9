package vision

import (
	"context"
	"testing"
	"time"

	"recipe-finder/internal/core/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingLabeler 直到 release 關閉才回傳
type blockingLabeler struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingLabeler) DetectLabels(ctx context.Context, image []byte) ([]recipe.Label, error) {
	b.started <- struct{}{}
	<-b.release
	return []recipe.Label{{Name: "egg", Confidence: 90}}, nil
}

func TestQueuedLabelerRejectsWhenFull(t *testing.T) {
	inner := &blockingLabeler{started: make(chan struct{}, 4), release: make(chan struct{})}
	q := NewQueuedLabeler(inner, 1, 0).(*QueuedLabeler)

	done := make(chan error, 1)
	go func() {
		_, err := q.DetectLabels(context.Background(), nil)
		done <- err
	}()
	<-inner.started

	_, err := q.DetectLabels(context.Background(), nil)
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.NotErrorIs(t, err, ErrUnavailable)

	close(inner.release)
	require.NoError(t, <-done)
	assert.Equal(t, int64(1), q.Status().Processed)
	assert.Equal(t, 0, q.Status().InFlight)
}

func TestQueuedLabelerWaitsForSlot(t *testing.T) {
	inner := &blockingLabeler{started: make(chan struct{}, 4), release: make(chan struct{})}
	q := NewQueuedLabeler(inner, 1, 1).(*QueuedLabeler)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := q.DetectLabels(context.Background(), nil)
			results <- err
		}()
	}
	<-inner.started
	assert.Eventually(t, func() bool { return q.Status().Waiting == 1 }, time.Second, 5*time.Millisecond)

	close(inner.release)
	require.NoError(t, <-results)
	require.NoError(t, <-results)
	assert.Equal(t, int64(2), q.Status().Processed)
}

func TestQueuedLabelerHonoursContext(t *testing.T) {
	inner := &blockingLabeler{started: make(chan struct{}, 4), release: make(chan struct{})}
	q := NewQueuedLabeler(inner, 1, 5)
	defer close(inner.release)

	go func() { _, _ = q.DetectLabels(context.Background(), nil) }()
	<-inner.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := q.DetectLabels(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewQueuedLabelerUnlimited(t *testing.T) {
	fake := &fakeLabeler{}
	assert.Same(t, Labeler(fake), NewQueuedLabeler(fake, 0, 0))
}
