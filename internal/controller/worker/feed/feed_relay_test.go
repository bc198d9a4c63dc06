package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Moderator/internal/entity"
	"github.com/andreyxaxa/Image-Moderator/internal/testsupport"
	"github.com/google/uuid"
)

type fakeFeedRepo struct {
	pending    []*entity.FeedEvent
	dispatched []int64
}

func (f *fakeFeedRepo) GetUndispatched(_ context.Context, limit int) ([]*entity.FeedEvent, error) {
	if limit > len(f.pending) {
		limit = len(f.pending)
	}

	return f.pending[:limit], nil
}

func (f *fakeFeedRepo) MarkDispatchedBatch(_ context.Context, seqs []int64) error {
	f.dispatched = append(f.dispatched, seqs...)

	return nil
}

func (f *fakeFeedRepo) DeleteDispatched(_ context.Context) (int64, error) {
	return 0, nil
}

type fakeNotifier struct {
	handled []int64
	failSeq int64
}

func (f *fakeNotifier) HandleFeedEvent(_ context.Context, event *entity.FeedEvent) error {
	if event.Seq == f.failSeq {
		return errors.New("smtp unavailable")
	}
	f.handled = append(f.handled, event.Seq)

	return nil
}

func feedEvent(seq int64) *entity.FeedEvent {
	return &entity.FeedEvent{
		Seq:        seq,
		EventID:    uuid.New(),
		RecordID:   "sunset.png",
		Kind:       entity.FeedModify,
		OccurredAt: time.Now(),
	}
}

func TestProcessFeedBatchHandlesInOrder(t *testing.T) {
	feedRepo := &fakeFeedRepo{pending: []*entity.FeedEvent{feedEvent(1), feedEvent(2), feedEvent(3)}}
	notifier := &fakeNotifier{}

	relay := New(feedRepo, notifier, testsupport.NopLogger{}, time.Second, time.Hour, time.Second, 100)
	relay.processFeedBatch(context.Background())

	for i, seq := range notifier.handled {
		if seq != int64(i+1) {
			t.Fatalf("events handled out of order: %v", notifier.handled)
		}
	}
	if len(feedRepo.dispatched) != 3 {
		t.Fatalf("expected 3 events marked dispatched, got %d", len(feedRepo.dispatched))
	}
}

func TestProcessFeedBatchMarksFailedEventsDispatched(t *testing.T) {
	feedRepo := &fakeFeedRepo{pending: []*entity.FeedEvent{feedEvent(1), feedEvent(2)}}
	notifier := &fakeNotifier{failSeq: 1}

	relay := New(feedRepo, notifier, testsupport.NopLogger{}, time.Second, time.Hour, time.Second, 100)
	relay.processFeedBatch(context.Background())

	// a failed notification is logged, never replayed
	if len(feedRepo.dispatched) != 2 {
		t.Fatalf("expected both events marked dispatched, got %v", feedRepo.dispatched)
	}
	if len(notifier.handled) != 1 || notifier.handled[0] != 2 {
		t.Fatalf("expected only seq 2 handled, got %v", notifier.handled)
	}
}

func TestProcessFeedBatchRespectsBatchSize(t *testing.T) {
	feedRepo := &fakeFeedRepo{pending: []*entity.FeedEvent{feedEvent(1), feedEvent(2), feedEvent(3)}}
	notifier := &fakeNotifier{}

	relay := New(feedRepo, notifier, testsupport.NopLogger{}, time.Second, time.Hour, time.Second, 2)
	relay.processFeedBatch(context.Background())

	if len(notifier.handled) != 2 {
		t.Fatalf("expected 2 events handled, got %d", len(notifier.handled))
	}
}
