package worker

import (
	"context"
	"errors"
	"testing"

	"commerce-sync-service/internal/core/domain"
	"commerce-sync-service/internal/core/ports"
	"commerce-sync-service/internal/core/ports/mocks"
	"commerce-sync-service/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestProcessor(t *testing.T, ctrl *gomock.Controller, deadLetter ports.DeadLetterSink) (*Processor, *mocks.MockEventDispatcher, *mocks.MockDedupStore) {
	t.Helper()
	dispatcher := mocks.NewMockEventDispatcher(ctrl)
	store := mocks.NewMockDedupStore(ctrl)
	dedup := service.NewDeduplicator(store, 0, zerolog.Nop())

	p := NewProcessor(dispatcher, dedup, deadLetter, 8, 1, zerolog.Nop())
	return p, dispatcher, store
}

func TestProcessor_SuccessCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, dispatcher, store := newTestProcessor(t, ctrl, nil)
	event := &domain.Event{ID: "evt-1", EventType: "order.created"}

	dispatcher.EXPECT().Dispatch(gomock.Any(), event).Return(nil)
	store.EXPECT().Commit(gomock.Any(), "evt-1").Return(nil)

	require.NoError(t, p.Enqueue(event))
	p.Start(context.Background())
	p.Stop() // drains the queue before returning
}

func TestProcessor_HandlerFailureReleasesClaim(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, dispatcher, store := newTestProcessor(t, ctrl, nil)
	event := &domain.Event{ID: "evt-1", EventType: "order.created"}

	dispatcher.EXPECT().Dispatch(gomock.Any(), event).Return(errors.New("handler exploded"))
	store.EXPECT().Release(gomock.Any(), "evt-1").Return(nil)

	require.NoError(t, p.Enqueue(event))
	p.Start(context.Background())
	p.Stop()
}

func TestProcessor_HandlerFailureDeadLetters(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	deadLetter := mocks.NewMockDeadLetterSink(ctrl)
	p, dispatcher, store := newTestProcessor(t, ctrl, deadLetter)
	event := &domain.Event{ID: "evt-1", EventType: "purchase.confirmed"}

	cause := errors.New("handler exploded")
	dispatcher.EXPECT().Dispatch(gomock.Any(), event).Return(cause)
	deadLetter.EXPECT().Publish(gomock.Any(), event, cause).Return(nil)
	store.EXPECT().Release(gomock.Any(), "evt-1").Return(nil)

	require.NoError(t, p.Enqueue(event))
	p.Start(context.Background())
	p.Stop()
}

func TestProcessor_DeadLetterFailureStillReleases(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	deadLetter := mocks.NewMockDeadLetterSink(ctrl)
	p, dispatcher, store := newTestProcessor(t, ctrl, deadLetter)
	event := &domain.Event{ID: "evt-1", EventType: "purchase.confirmed"}

	cause := errors.New("handler exploded")
	dispatcher.EXPECT().Dispatch(gomock.Any(), event).Return(cause)
	deadLetter.EXPECT().Publish(gomock.Any(), event, cause).Return(errors.New("broker down"))
	store.EXPECT().Release(gomock.Any(), "evt-1").Return(nil)

	require.NoError(t, p.Enqueue(event))
	p.Start(context.Background())
	p.Stop()
}

func TestProcessor_CommitFailureLeavesClaimPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, dispatcher, store := newTestProcessor(t, ctrl, nil)
	event := &domain.Event{ID: "evt-1", EventType: "order.created"}

	dispatcher.EXPECT().Dispatch(gomock.Any(), event).Return(nil)
	// No Release expected: the pending claim expires via its lease
	store.EXPECT().Commit(gomock.Any(), "evt-1").Return(errors.New("connection reset"))

	require.NoError(t, p.Enqueue(event))
	p.Start(context.Background())
	p.Stop()
}

func TestProcessor_EnqueueFullQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := mocks.NewMockEventDispatcher(ctrl)
	store := mocks.NewMockDedupStore(ctrl)
	dedup := service.NewDeduplicator(store, 0, zerolog.Nop())

	// Capacity 1, workers never started: second enqueue must not block
	p := NewProcessor(dispatcher, dedup, nil, 1, 1, zerolog.Nop())

	require.NoError(t, p.Enqueue(&domain.Event{ID: "evt-1"}))
	err := p.Enqueue(&domain.Event{ID: "evt-2"})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestProcessor_DrainsQueueOnStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p, dispatcher, store := newTestProcessor(t, ctrl, nil)

	const n = 5
	for i := 0; i < n; i++ {
		event := &domain.Event{ID: string(rune('a' + i)), EventType: "order.created"}
		dispatcher.EXPECT().Dispatch(gomock.Any(), event).Return(nil)
		store.EXPECT().Commit(gomock.Any(), event.ID).Return(nil)
		require.NoError(t, p.Enqueue(event))
	}

	p.Start(context.Background())
	p.Stop() // all five must have been handled when this returns
}
