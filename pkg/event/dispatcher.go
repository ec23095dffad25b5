// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package event

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DispatcherConfig sizes the worker pool.
type DispatcherConfig struct {
	Workers        int
	QueueSize      int
	HandlerTimeout time.Duration
	EnqueueTimeout time.Duration
}

func (c *DispatcherConfig) setDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = 10 * time.Second
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 5 * time.Second
	}
}

// Dispatcher delivers published events to subscribers on a worker pool.
// Events of one user always land on the same worker, so a user's events
// are handled in publish order.
type Dispatcher struct {
	cfg DispatcherConfig

	mu       sync.RWMutex
	handlers map[Kind][]Handler
	all      []Handler

	queues   []chan Event
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool

	// pubMu orders Publish against Stop: once stopped is set no event
	// enters a queue, so everything queued is drained by the workers.
	pubMu   sync.RWMutex
	stopped bool
}

// NewDispatcher creates a dispatcher. Call Start before publishing.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	cfg.setDefaults()

	queues := make([]chan Event, cfg.Workers)
	for i := range queues {
		queues[i] = make(chan Event, cfg.QueueSize)
	}

	return &Dispatcher{
		cfg:      cfg,
		handlers: make(map[Kind][]Handler),
		queues:   queues,
		stopChan: make(chan struct{}),
	}
}

// Subscribe registers h for events of kind.
func (d *Dispatcher) Subscribe(kind Kind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], h)
}

// SubscribeAll registers h for every event.
func (d *Dispatcher) SubscribeAll(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.all = append(d.all, h)
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	for i := range d.queues {
		d.wg.Add(1)
		go d.worker(i)
	}
	logrus.Infof("event dispatcher started with %d workers", len(d.queues))
}

// Stop drains queued events and waits for the workers, or until ctx ends.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.pubMu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.stopChan)
	}
	d.pubMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logrus.Info("event dispatcher stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event dispatcher stop: %w", ctx.Err())
	}
}

// Publish queues events for delivery. Events published after Stop, or that
// cannot be queued within the enqueue timeout, are dropped and logged.
func (d *Dispatcher) Publish(ctx context.Context, events ...Event) {
	d.pubMu.RLock()
	defer d.pubMu.RUnlock()

	if d.stopped {
		for _, e := range events {
			logrus.Warnf("dropping event %s (%s) for user %s: dispatcher stopped", e.ID, e.Kind, e.UserID)
		}
		return
	}

	for _, e := range events {
		queue := d.queues[d.shard(e.UserID)]

		select {
		case queue <- e:
			logrus.Debugf("event %s (%s) queued for user %s", e.ID, e.Kind, e.UserID)
		case <-time.After(d.cfg.EnqueueTimeout):
			logrus.Errorf("dropping event %s (%s) for user %s: queue full", e.ID, e.Kind, e.UserID)
		}
	}
}

func (d *Dispatcher) shard(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.queues)))
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	queue := d.queues[id]

	for {
		select {
		case e := <-queue:
			d.deliver(e)
		case <-d.stopChan:
			// Drain what was queued before stop
			for {
				select {
				case e := <-queue:
					d.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(e Event) {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.handlers[e.Kind])+len(d.all))
	handlers = append(handlers, d.handlers[e.Kind]...)
	handlers = append(handlers, d.all...)
	d.mu.RUnlock()

	for _, h := range handlers {
		d.invoke(h, e)
	}
}

func (d *Dispatcher) invoke(h Handler, e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.HandlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("event handler panicked on %s (%s): %v", e.ID, e.Kind, r)
		}
	}()

	if err := h(ctx, e); err != nil {
		logrus.Errorf("event handler failed on %s (%s) for user %s: %v", e.ID, e.Kind, e.UserID, err)
	}
}
