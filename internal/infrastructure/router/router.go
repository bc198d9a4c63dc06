// Package router implements content-based dispatch: one inbound topic fanned
// out to independently-configured subscriptions, each declaring an exact-match
// filter policy over message attributes.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	infrakafka "github.com/andreyxaxa/Image-Moderator/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Image-Moderator/pkg/logger"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

// Subscription is one fan-out destination. A message matches when every
// policy key is present in its attributes with an allow-listed value; an
// empty policy matches everything, including messages with no attributes.
type Subscription struct {
	Name         string
	Topic        string
	FilterPolicy map[string][]string
}

func (s Subscription) Matches(attrs map[string]string) bool {
	for key, allowed := range s.FilterPolicy {
		value, ok := attrs[key]
		if !ok {
			return false
		}

		match := false
		for _, candidate := range allowed {
			if candidate == value {
				match = true

				break
			}
		}

		if !match {
			return false
		}
	}

	return true
}

type Router struct {
	ec     *infrakafka.EventConsumer
	ep     *infrakafka.EventProducer
	subs   []Subscription
	logger logger.Interface

	deliverTimeout time.Duration
	commitTimeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	ec *infrakafka.EventConsumer,
	ep *infrakafka.EventProducer,
	subs []Subscription,
	l logger.Interface,
	deliverTimeout time.Duration,
	commitTimeout time.Duration,
) *Router {
	return &Router{
		ec:             ec,
		ep:             ep,
		subs:           subs,
		logger:         l,
		deliverTimeout: deliverTimeout,
		commitTimeout:  commitTimeout,
	}
}

func (r *Router) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("Router - Start - router already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		for {
			select {
			case <-r.ctx.Done():
				return
			default:
				event, err := r.ec.ReadEvent(r.ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						r.logger.Error(err, "Router - Start - r.ec.ReadEvent")
					}
					continue
				}

				r.dispatch(event)

				commitCtx, commitCancel := context.WithTimeout(r.ctx, r.commitTimeout)
				err = r.ec.CommitEvents(commitCtx, event)
				commitCancel()
				if err != nil {
					r.logger.Error(err, "Router - Start - r.ec.CommitEvents")
				}
			}
		}
	}()

	return nil
}

// dispatch delivers the event to every matching subscription in parallel.
// Deliveries are independent: one failed subscription is logged and does not
// block its siblings.
func (r *Router) dispatch(event kafka.Message) {
	attrs := infrakafka.AttributesFromHeaders(event.Headers)

	deliverCtx, deliverCancel := context.WithTimeout(r.ctx, r.deliverTimeout)
	defer deliverCancel()

	eg, egCtx := errgroup.WithContext(deliverCtx)

	for _, sub := range r.subs {
		if !sub.Matches(attrs) {
			continue
		}

		sub := sub

		eg.Go(func() error {
			err := r.ep.Publish(egCtx, sub.Topic, event.Key, event.Value, attrs)
			if err != nil {
				r.logger.Error(err, "Router - dispatch - r.ep.Publish - subscription %s", sub.Name)
			}

			// delivery failures are per-subscription, never batch-fatal
			return nil
		})
	}

	_ = eg.Wait()
}

func (r *Router) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		r.ec.Close()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return nil
	}
}
