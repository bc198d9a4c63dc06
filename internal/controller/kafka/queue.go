package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Image-Moderator/internal/dto"
	infrakafka "github.com/andreyxaxa/Image-Moderator/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Image-Moderator/internal/usecase"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// delay before the next read after a broker error, so a dead broker does not
// hot-spin the worker loop
const _readBackoff = time.Second

type (
	// EventSource is the consumer side the controllers read from.
	EventSource interface {
		ReadEvent(ctx context.Context) (kafka.Message, error)
		CommitEvents(ctx context.Context, events ...kafka.Message) error
		Close() error
	}

	// EventForwarder republishes a consumed message onto another topic,
	// preserving its headers.
	EventForwarder interface {
		Forward(ctx context.Context, topic string, event kafka.Message, extra map[string]string) error
	}
)

type hop int

const (
	hopNone hop = iota
	hopRequeue
	hopDeadLetter
)

// QueueController drives the validator from the work queue topic. It gathers
// small batches, runs the validator per message, and turns the per-message
// outcomes into commit / redeliver / dead-letter decisions. One
// permanently-invalid message never blocks its batch siblings.
type QueueController struct {
	ingest usecase.IngestUseCase
	ec     EventSource
	ep     EventForwarder
	logger logger.Interface

	queueTopic string
	dlqTopic   string

	batchSize      int
	batchWait      time.Duration
	maxDeliveries  int
	processTimeout time.Duration
	commitTimeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	ingest usecase.IngestUseCase,
	ec EventSource,
	ep EventForwarder,
	l logger.Interface,
	queueTopic string,
	dlqTopic string,
	batchSize int,
	batchWait time.Duration,
	maxDeliveries int,
	processTimeout time.Duration,
	commitTimeout time.Duration,
) *QueueController {
	return &QueueController{
		ingest:         ingest,
		ec:             ec,
		ep:             ep,
		logger:         l,
		queueTopic:     queueTopic,
		dlqTopic:       dlqTopic,
		batchSize:      batchSize,
		batchWait:      batchWait,
		maxDeliveries:  maxDeliveries,
		processTimeout: processTimeout,
		commitTimeout:  commitTimeout,
	}
}

func (c *QueueController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("QueueController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				batch := c.readBatch()
				if len(batch) == 0 {
					continue
				}

				c.processBatch(c.ctx, batch)
			}
		}
	}()

	return nil
}

// readBatch blocks for the first message, then fills up to batchSize within
// the batch wait window.
func (c *QueueController) readBatch() []kafka.Message {
	first, err := c.ec.ReadEvent(c.ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Error(err, "QueueController - readBatch - c.ec.ReadEvent")
			time.Sleep(_readBackoff)
		}
		return nil
	}

	batch := []kafka.Message{first}

	waitCtx, waitCancel := context.WithTimeout(c.ctx, c.batchWait)
	defer waitCancel()

	for len(batch) < c.batchSize {
		event, err := c.ec.ReadEvent(waitCtx)
		if err != nil {
			break
		}

		batch = append(batch, event)
	}

	return batch
}

func (c *QueueController) processBatch(ctx context.Context, batch []kafka.Message) {
	forwardFailed := false

	for _, event := range batch {
		processCtx, processCancel := context.WithTimeout(ctx, c.processTimeout)
		outcome := c.ingest.ProcessNotification(processCtx, event.Value)
		processCancel()

		if err := c.dispatchOutcome(ctx, event, outcome); err != nil {
			c.logger.Error(err, "QueueController - processBatch - c.dispatchOutcome")

			forwardFailed = true
		}
	}

	// a message whose republish failed must stay on the queue topic: leaving
	// the offsets uncommitted makes the broker redeliver the batch, and record
	// creation is idempotent under replay
	if forwardFailed {
		c.logger.Warn("QueueController - processBatch - forward failed, batch left uncommitted for redelivery")

		return
	}

	commitCtx, commitCancel := context.WithTimeout(ctx, c.commitTimeout)
	defer commitCancel()

	if err := c.ec.CommitEvents(commitCtx, batch...); err != nil {
		c.logger.Error(err, "QueueController - processBatch - c.ec.CommitEvents")
	}
}

func (c *QueueController) dispatchOutcome(ctx context.Context, event kafka.Message, outcome dto.Outcome) error {
	attempts := infrakafka.DeliveryAttempts(event)

	switch nextHop(outcome, attempts, c.maxDeliveries) {
	case hopNone:
		return nil

	case hopRequeue:
		c.logger.Error(outcome.Err, "QueueController - dispatchOutcome - delivery %d failed, requeueing", attempts)

		publishCtx, publishCancel := context.WithTimeout(ctx, c.commitTimeout)
		defer publishCancel()

		extra := map[string]string{
			infrakafka.DeliveryAttemptsHeader: strconv.Itoa(attempts + 1),
		}
		if err := c.ep.Forward(publishCtx, c.queueTopic, event, extra); err != nil {
			return fmt.Errorf("QueueController - dispatchOutcome - c.ep.Forward(queue): %w", err)
		}

	case hopDeadLetter:
		c.logger.Warn("QueueController - dispatchOutcome - dead-lettering message after %d deliveries: %v", attempts, outcome.Err)

		publishCtx, publishCancel := context.WithTimeout(ctx, c.commitTimeout)
		defer publishCancel()

		if err := c.ep.Forward(publishCtx, c.dlqTopic, event, nil); err != nil {
			return fmt.Errorf("QueueController - dispatchOutcome - c.ep.Forward(dlq): %w", err)
		}
	}

	return nil
}

// nextHop maps a per-message outcome onto the redrive policy: applied and
// skipped messages stay committed, retryable ones requeue until the delivery
// budget is spent, then dead-letter.
func nextHop(outcome dto.Outcome, attempts, maxDeliveries int) hop {
	if outcome.Kind != dto.OutcomeRetryable {
		return hopNone
	}

	if attempts >= maxDeliveries {
		return hopDeadLetter
	}

	return hopRequeue
}

func (c *QueueController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		c.ec.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
