package broker

import (
	"context"
	"sync"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"
)

const (
	defaultSlowSubscriberTimeout = 100 * time.Millisecond
	defaultBufferSize            = 50
)

type Hub[T any] struct {
	topics                *haxmap.Map[string, *Topic[T]]
	slowSubscriberTimeout time.Duration
	bufferSize            int
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		topics:                haxmap.New[string, *Topic[T]](),
		slowSubscriberTimeout: defaultSlowSubscriberTimeout,
		bufferSize:            defaultBufferSize,
	}
}

// WithSlowSubscriberTimeout configures how long Publish waits on a full subscriber.
func (h *Hub[T]) WithSlowSubscriberTimeout(timeout time.Duration) *Hub[T] {
	h.slowSubscriberTimeout = timeout
	return h
}

func (h *Hub[T]) WithBufferSize(size int) *Hub[T] {
	if size > 0 {
		h.bufferSize = size
	}
	return h
}

// Topic returns the topic named id, creating it on first use.
func (h *Hub[T]) Topic(id string) *Topic[T] {
	topic, _ := h.topics.GetOrCompute(id, func() *Topic[T] {
		return &Topic[T]{
			id:            id,
			hub:           h,
			subscriptions: haxmap.New[string, *Subscription[T]](),
		}
	})
	return topic
}

// Publish delivers value to topic id when it has subscribers. A topic nobody follows is
// left uncreated and the value is dropped.
func (h *Hub[T]) Publish(ctx context.Context, id string, value T) error {
	topic, ok := h.topics.Get(id)
	if !ok {
		return nil
	}
	return topic.Publish(ctx, value)
}

// Subscribers reports the live subscription count for id.
func (h *Hub[T]) Subscribers(id string) int {
	topic, ok := h.topics.Get(id)
	if !ok {
		return 0
	}
	return int(topic.subscriptions.Len())
}

type Topic[T any] struct {
	id            string
	hub           *Hub[T]
	subscriptions *haxmap.Map[string, *Subscription[T]]
}

func (t *Topic[T]) ID() string { return t.id }

// Publish delivers value to every live subscription. It returns ctx.Err() if the context
// ends part way through.
func (t *Topic[T]) Publish(ctx context.Context, value T) error {
	var stopped bool
	t.subscriptions.ForEach(func(_ string, sub *Subscription[T]) bool {
		if sub == nil {
			return true
		}
		select {
		case <-ctx.Done():
			stopped = true
			return false
		case <-sub.ctx.Done():
			sub.Unsubscribe()
			return true
		default:
		}

		timer := time.NewTimer(t.hub.slowSubscriberTimeout)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			stopped = true
			return false
		case <-sub.ctx.Done():
			sub.Unsubscribe()
		case <-sub.done:
		case sub.channel <- value:
		case <-timer.C:
			sub.Unsubscribe()
		}
		return true
	})
	if stopped {
		return ctx.Err()
	}
	return nil
}

// Subscribe registers a new subscription that lives until Unsubscribe or until ctx ends.
func (t *Topic[T]) Subscribe(ctx context.Context) *Subscription[T] {
	id := uuid.Must(uuid.NewV7()).String()
	sub := &Subscription[T]{
		id:      id,
		ctx:     ctx,
		channel: make(chan T, t.hub.bufferSize),
		done:    make(chan struct{}),
		onClose: func() {
			t.subscriptions.Del(id)
			if t.subscriptions.Len() == 0 {
				t.hub.topics.Del(t.id)
			}
		},
	}
	t.subscriptions.Set(id, sub)
	return sub
}

type Subscription[T any] struct {
	id        string
	ctx       context.Context
	channel   chan T
	done      chan struct{}
	closeOnce sync.Once
	onClose   func()
}

func (s *Subscription[T]) ID() string {
	return s.id
}

// C exposes the buffered values. The channel is never closed; use Done to observe release.
func (s *Subscription[T]) C() <-chan T {
	return s.channel
}

func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// TryReceive returns a pending value without blocking.
func (s *Subscription[T]) TryReceive() (T, bool) {
	select {
	case v := <-s.channel:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Unsubscribe releases the subscription. It is safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	s.closeOnce.Do(func() {
		if s.onClose != nil {
			s.onClose()
		}
		close(s.done)
	})
}
