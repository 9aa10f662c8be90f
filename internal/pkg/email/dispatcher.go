package email

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Message is a queued notification email addressed by user ID.
type Message struct {
	UserID   int64
	Subject  string
	HTMLBody string
}

// RecipientResolver maps a user ID onto an email address.
type RecipientResolver interface {
	GetUserEmail(ctx context.Context, userID int64) (string, error)
}

// DispatcherConfig tunes the worker pool.
type DispatcherConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
	Backoff     time.Duration
	SendTimeout time.Duration
}

// Dispatcher delivers emails on background workers with bounded retries.
// Failures are logged and never reach the code that enqueued the message.
type Dispatcher struct {
	cfg      DispatcherConfig
	sender   Sender
	resolver RecipientResolver
	logger   zerolog.Logger

	queue chan Message
	quit  chan struct{}
	wg    sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool
}

// NewDispatcher creates a dispatcher; call Start to launch the workers.
func NewDispatcher(cfg DispatcherConfig, sender Sender, resolver RecipientResolver, logger zerolog.Logger) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	return &Dispatcher{
		cfg:      cfg,
		sender:   sender,
		resolver: resolver,
		logger:   logger.With().Str("component", "email_dispatcher").Logger(),
		queue:    make(chan Message, cfg.QueueSize),
		quit:     make(chan struct{}),
	}
}

// Start launches the worker goroutines. Calling it twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.logger.Info().Int("workers", d.cfg.Workers).Msg("Email dispatcher started")
}

// Enqueue hands a message to the workers without blocking. It reports false when the
// queue is full or the dispatcher is stopped; the message is then dropped and logged.
func (d *Dispatcher) Enqueue(msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn().Int64("userID", msg.UserID).Msg("Email dispatcher stopped, dropping message")
		return false
	}

	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Error().Int64("userID", msg.UserID).Str("subject", msg.Subject).Msg("Email queue full, dropping message")
		return false
	}
}

// Stop stops accepting messages and waits for queued ones to drain or ctx to expire.
// Pending retry backoffs are cut short.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	close(d.quit)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info().Msg("Email dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.SendTimeout)
	defer cancel()

	to, err := d.resolver.GetUserEmail(ctx, msg.UserID)
	if err != nil {
		d.logger.Error().Err(err).Int64("userID", msg.UserID).Msg("Cannot resolve email recipient")
		return
	}

	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		err = d.sender.Send(ctx, to, msg.Subject, msg.HTMLBody)
		if err == nil {
			d.logger.Debug().Int64("userID", msg.UserID).Int("attempt", attempt).Msg("Email sent")
			return
		}

		d.logger.Warn().Err(err).Int64("userID", msg.UserID).Int("attempt", attempt).Msg("Email send failed")
		if attempt == d.cfg.MaxAttempts {
			break
		}

		select {
		case <-time.After(d.cfg.Backoff * time.Duration(attempt)):
		case <-d.quit:
			d.logger.Error().Int64("userID", msg.UserID).Msg("Shutting down, giving up on email retries")
			return
		}
	}

	d.logger.Error().Err(err).Int64("userID", msg.UserID).Int("attempts", d.cfg.MaxAttempts).Msg("Email delivery failed")
}
