// Package notification delivers customer notifications off the request path.
package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pharmacy/backend/internal/application/notification"
	"github.com/pharmacy/backend/internal/domain/identity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender delivers a single message to the customer
type Sender interface {
	Send(ctx context.Context, msg notification.Message) error
}

// RecipientResolver turns a customer id into a deliverable address
type RecipientResolver interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// DispatcherConfig holds configuration for the dispatcher
type DispatcherConfig struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
}

// DefaultDispatcherConfig returns default configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		QueueSize:   256,
		Workers:     2,
		SendTimeout: 10 * time.Second,
	}
}

// Dispatcher queues messages and delivers them on background workers.
// Notifications are best-effort: a full queue drops the message with a log
// line rather than blocking the request that produced it.
type Dispatcher struct {
	sender   Sender
	resolver RecipientResolver
	config   DispatcherConfig
	logger   *zap.Logger

	queue     chan notification.Message
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

var _ notification.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher and starts its workers. The resolver
// may be nil, in which case messages go out with whatever recipient they
// already carry.
func NewDispatcher(sender Sender, resolver RecipientResolver, config DispatcherConfig, logger *zap.Logger) *Dispatcher {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultDispatcherConfig().QueueSize
	}
	if config.Workers <= 0 {
		config.Workers = DefaultDispatcherConfig().Workers
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = DefaultDispatcherConfig().SendTimeout
	}

	d := &Dispatcher{
		sender:   sender,
		resolver: resolver,
		config:   config,
		logger:   logger,
		queue:    make(chan notification.Message, config.QueueSize),
	}

	for i := 0; i < config.Workers; i++ {
		d.wg.Add(1)
		go d.workerLoop()
	}

	logger.Info("notification dispatcher started",
		zap.Int("queue_size", config.QueueSize),
		zap.Int("workers", config.Workers))
	return d
}

// Notify enqueues a message for delivery. Never blocks: a full queue or a
// closed dispatcher drops the message with a warning.
func (d *Dispatcher) Notify(ctx context.Context, msg notification.Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("notification dropped, dispatcher closed",
			zap.String("subject", msg.Subject))
		return nil
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		d.logger.Warn("notification dropped, queue full",
			zap.String("subject", msg.Subject))
		return nil
	}
}

// Close stops accepting messages and waits for queued ones to be delivered
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		close(d.queue)
		d.wg.Wait()
		d.logger.Info("notification dispatcher stopped")
	})
}

func (d *Dispatcher) workerLoop() {
	defer d.wg.Done()

	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.config.SendTimeout)
		if err := d.deliver(ctx, msg); err != nil {
			d.logger.Error("notification delivery failed",
				zap.String("subject", msg.Subject),
				zap.Error(err))
		}
		cancel()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, msg notification.Message) error {
	if msg.Recipient == "" && d.resolver != nil && msg.CustomerID != uuid.Nil {
		user, err := d.resolver.FindByID(ctx, msg.CustomerID)
		if err != nil {
			return fmt.Errorf("resolve recipient %s: %w", msg.CustomerID, err)
		}
		msg.Recipient = user.Email
	}
	return d.sender.Send(ctx, msg)
}
