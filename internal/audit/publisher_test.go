package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "hackportal/pkg/domain"
	"hackportal/pkg/platform/middleware/metadata"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recordingSink) Emit(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestPublisherStampsTimestamp(t *testing.T) {
	sink := &recordingSink{}
	p := NewPublisher(sink)
	fixed := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	p.clock = func() time.Time { return fixed }

	ctx := metadata.WithClientIP(context.Background(), "10.1.2.3")
	require.NoError(t, p.Emit(ctx, Event{Action: ActionProjectCreated}))
	require.Len(t, sink.events, 1)
	assert.Equal(t, fixed, sink.events[0].Timestamp)
	assert.Equal(t, "10.1.2.3", sink.events[0].ClientIP)
}

func TestFanoutJoinsErrors(t *testing.T) {
	ok := &recordingSink{}
	failing := &recordingSink{err: errors.New("broker down")}

	err := Fanout{failing, ok}.Emit(context.Background(), Event{Action: ActionAdminGranted})
	require.Error(t, err)
	assert.Equal(t, 1, ok.count(), "healthy sinks still receive the event")
}

func TestLogSinkWritesAction(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))
	projectID := id.NewProjectID()

	require.NoError(t, sink.Emit(context.Background(), Event{
		Action:    ActionRegistrationCreated,
		ProjectID: projectID,
		RequestID: "req-1",
	}))
	assert.Contains(t, buf.String(), `"action":"registration_created"`)
	assert.Contains(t, buf.String(), projectID.String())
}

func TestEventKeyPrefersProject(t *testing.T) {
	projectID, userID, actor := id.NewProjectID(), id.NewUserID(), id.NewUserID()
	assert.Equal(t, projectID.String(), Event{ProjectID: projectID, UserID: userID, ActorID: actor}.Key())
	assert.Equal(t, userID.String(), Event{UserID: userID, ActorID: actor}.Key())
	assert.Equal(t, actor.String(), Event{ActorID: actor}.Key())
}

func TestWorkerDeliversAndFlushes(t *testing.T) {
	sink := &recordingSink{err: errors.New("ignored")}
	w := NewWorker(sink, 8, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	for range 3 {
		require.NoError(t, w.Emit(context.Background(), Event{Action: ActionProjectUpdated}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return sink.count() == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWorkerDropsWhenQueueFull(t *testing.T) {
	sink := &recordingSink{}
	w := NewWorker(sink, 1, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	require.NoError(t, w.Emit(context.Background(), Event{Action: ActionProjectCreated}))
	require.NoError(t, w.Emit(context.Background(), Event{Action: ActionProjectDeleted}), "dropping is not an error")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = w.Run(ctx)
	assert.Equal(t, 1, sink.count())
}
