package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type MessageHandler interface {
	Handle(ctx context.Context, event kafka.Message) error
}

// PushController delivers messages one at a time to a handler with
// drop-on-failure semantics: handler errors are logged and the message is
// committed anyway, because redelivery has no corrective value for the
// consumers behind it.
type PushController struct {
	name    string
	handler MessageHandler
	ec      EventSource
	logger  logger.Interface

	processTimeout time.Duration
	commitTimeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func NewPush(
	name string,
	handler MessageHandler,
	ec EventSource,
	l logger.Interface,
	processTimeout time.Duration,
	commitTimeout time.Duration,
) *PushController {
	return &PushController{
		name:           name,
		handler:        handler,
		ec:             ec,
		logger:         l,
		processTimeout: processTimeout,
		commitTimeout:  commitTimeout,
	}
}

func (c *PushController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("PushController - Start - %s already started", c.name)
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
				event, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						c.logger.Error(err, "PushController - %s - c.ec.ReadEvent", c.name)
						time.Sleep(_readBackoff)
					}
					continue
				}

				c.handle(event)

				commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
				err = c.ec.CommitEvents(commitCtx, event)
				commitCancel()
				if err != nil {
					c.logger.Error(err, "PushController - %s - c.ec.CommitEvents", c.name)
				}
			}
		}
	}()

	return nil
}

func (c *PushController) handle(event kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(fmt.Errorf("panic %v", r), "PushController - %s - handle - panic", c.name)
		}
	}()

	processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
	defer processCancel()

	if err := c.handler.Handle(processCtx, event); err != nil {
		// drop: malformed input or a missing record will not be fixed by redelivery
		c.logger.Error(err, "PushController - %s - c.handler.Handle, message dropped", c.name)
	}
}

func (c *PushController) Shutdown(ctx context.Context) error {
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
