package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Image-Moderator/internal/repo"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
)

// FeedRelay polls the record change feed in sequence order and hands each
// event to the notifier. Events are marked dispatched whether or not the
// notification went out: losing a mail is acceptable, replaying feed history
// is not.
type FeedRelay struct {
	feedRepo repo.FeedRepo
	notify   usecase.NotifyUseCase
	logger   logger.Interface

	pollInterval        time.Duration
	cleanupInterval     time.Duration
	processBatchTimeout time.Duration
	batchSize           int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	feedRepo repo.FeedRepo,
	notify usecase.NotifyUseCase,
	l logger.Interface,
	pollInterval time.Duration,
	cleanupInterval time.Duration,
	processBatchTimeout time.Duration,
	batchSize int,
) *FeedRelay {
	return &FeedRelay{
		feedRepo:            feedRepo,
		notify:              notify,
		logger:              l,
		pollInterval:        pollInterval,
		cleanupInterval:     cleanupInterval,
		processBatchTimeout: processBatchTimeout,
		batchSize:           batchSize,
	}
}

func (r *FeedRelay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("FeedRelay - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// 1. feed polling worker
	r.worker(r.pollInterval, func() {
		batchCtx, batchCancel := context.WithTimeout(r.ctx, r.processBatchTimeout)
		r.processFeedBatch(batchCtx)
		batchCancel()
	})

	// 2. cleanup worker for dispatched feed rows
	r.worker(r.cleanupInterval, func() {
		count, err := r.feedRepo.DeleteDispatched(r.ctx)
		if err != nil {
			r.logger.Error(err, "FeedRelay - Start - worker - r.feedRepo.DeleteDispatched")

			return
		}

		if count > 0 {
			r.logger.Info("feed - deleted dispatched events, count = %d", count)
		}
	})

	return nil
}

func (r *FeedRelay) processFeedBatch(ctx context.Context) {
	events, err := r.feedRepo.GetUndispatched(ctx, r.batchSize)
	if err != nil {
		r.logger.Error(err, "FeedRelay - processFeedBatch - r.feedRepo.GetUndispatched")

		return
	}
	if len(events) == 0 {
		return
	}

	// sequential, in seq order - per-record order is the feed's contract
	seqs := make([]int64, 0, len(events))
	for _, event := range events {
		if err := r.notify.HandleFeedEvent(ctx, event); err != nil {
			r.logger.Error(err, "FeedRelay - processFeedBatch - r.notify.HandleFeedEvent - event %s", event.EventID)
		}

		seqs = append(seqs, event.Seq)
	}

	if err := r.feedRepo.MarkDispatchedBatch(ctx, seqs); err != nil {
		r.logger.Error(err, "FeedRelay - processFeedBatch - r.feedRepo.MarkDispatchedBatch")
	}
}

func (r *FeedRelay) worker(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

func (r *FeedRelay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
