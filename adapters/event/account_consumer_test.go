package event

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hurmain7/devconnect/internal/application/service"
	postUC "github.com/hurmain7/devconnect/internal/application/usecase/post"
	"github.com/hurmain7/devconnect/pkg/logger"
)

// queueReader hands out queued messages, then calls drained and blocks until
// the context ends.
type queueReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	fetched   []int64
	committed []int64
	drained   func()
}

func (r *queueReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.fetched = append(r.fetched, msg.Offset)
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	if r.drained != nil {
		r.drained()
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *queueReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

// flakyPosts fails the first failures calls to DeleteByUser.
type flakyPosts struct {
	mu       sync.Mutex
	failures int
	calls    int
	byUser   map[uuid.UUID]int64
}

func (p *flakyPosts) DeleteByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failures {
		return 0, errors.New("connection refused")
	}
	n := p.byUser[userID]
	delete(p.byUser, userID)
	return n, nil
}

func accountDeleted(t *testing.T, offset int64, userID uuid.UUID) kafka.Message {
	t.Helper()
	body, err := json.Marshal(service.Event{EventType: service.EventAccountDeleted, UserID: userID, OccurredAt: time.Now().UTC()})
	require.NoError(t, err)
	return kafka.Message{Topic: TopicAccountEvents, Offset: offset, Key: []byte(userID.String()), Value: body}
}

func newTestConsumer(r MessageReader, posts *flakyPosts) *AccountEventConsumer {
	c := NewAccountEventConsumer(r, postUC.NewPurgeUserPostsUseCase(posts, logger.NewNop()), logger.NewNop())
	c.backoff = time.Millisecond
	c.maxAttempts = 3
	return c
}

func TestAccountEventConsumer_RetriesFailedPurge(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID := uuid.New()
	posts := &flakyPosts{failures: 1, byUser: map[uuid.UUID]int64{userID: 4}}
	reader := &queueReader{queue: []kafka.Message{accountDeleted(t, 7, userID)}, drained: cancel}

	require.NoError(t, newTestConsumer(reader, posts).Run(ctx))

	assert.Equal(t, 2, posts.calls)
	assert.NotContains(t, posts.byUser, userID)
	assert.Equal(t, []int64{7}, reader.committed)
}

func TestAccountEventConsumer_StopsWithoutCommitWhenRetriesRunOut(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	first, second := uuid.New(), uuid.New()
	posts := &flakyPosts{failures: 100, byUser: map[uuid.UUID]int64{first: 1, second: 1}}
	reader := &queueReader{queue: []kafka.Message{
		accountDeleted(t, 1, first),
		accountDeleted(t, 2, second),
	}}

	err := newTestConsumer(reader, posts).Run(ctx)
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")

	assert.Equal(t, 3, posts.calls)
	assert.Empty(t, reader.committed)
	assert.Equal(t, []int64{1}, reader.fetched, "later messages must not be fetched past a failed one")
	assert.Len(t, posts.byUser, 2)
}

func TestAccountEventConsumer_SkipsUndecodablePayload(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	userID := uuid.New()
	posts := &flakyPosts{byUser: map[uuid.UUID]int64{userID: 2}}
	reader := &queueReader{
		queue: []kafka.Message{
			{Topic: TopicAccountEvents, Offset: 1, Value: []byte("{not json")},
			accountDeleted(t, 2, userID),
		},
		drained: cancel,
	}

	require.NoError(t, newTestConsumer(reader, posts).Run(ctx))

	assert.Equal(t, []int64{1, 2}, reader.committed)
	assert.NotContains(t, posts.byUser, userID)
}

func TestAccountEventConsumer_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	posts := &flakyPosts{failures: 100, byUser: map[uuid.UUID]int64{}}
	reader := &queueReader{queue: []kafka.Message{accountDeleted(t, 1, uuid.New())}}
	c := newTestConsumer(reader, posts)
	c.backoff = time.Hour

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		posts.mu.Lock()
		defer posts.mu.Unlock()
		return posts.calls == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
	assert.Empty(t, reader.committed)
}
