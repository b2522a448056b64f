package mail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/martijn/jobboard/internal/core/service"
	"github.com/rs/zerolog"
)

// ErrQueueFull is returned when the delivery queue cannot take more mail.
var ErrQueueFull = errors.New("mail queue full")

// ErrStopped is returned after Stop has been called.
var ErrStopped = errors.New("mail queue stopped")

const DefaultQueueSize = 64

// sendTimeout bounds one delivery attempt by the worker.
const sendTimeout = 30 * time.Second

type message struct {
	email string
	link  string
}

// AsyncMailer queues reset links and delivers them from a background worker
// through another Mailer, so request handlers never wait on the transport.
type AsyncMailer struct {
	next   service.Mailer
	logger zerolog.Logger
	queue  chan message

	mu      sync.RWMutex
	started bool
	stopped bool
	done    chan struct{}
	once    sync.Once
}

func NewAsyncMailer(next service.Mailer, queueSize int, logger zerolog.Logger) *AsyncMailer {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &AsyncMailer{
		next:   next,
		logger: logger,
		queue:  make(chan message, queueSize),
		done:   make(chan struct{}),
	}
}

// Start launches the delivery worker. Calling it more than once has no
// effect.
func (m *AsyncMailer) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started || m.stopped {
		return
	}
	m.started = true
	go m.run()
}

// Stop refuses new mail, delivers what is already queued and waits for the
// worker to finish. Without a running worker the queue is drained inline.
func (m *AsyncMailer) Stop() {
	m.once.Do(func() {
		m.mu.Lock()
		m.stopped = true
		close(m.queue)
		started := m.started
		m.mu.Unlock()

		if !started {
			m.run()
		}
	})
	<-m.done
}

func (m *AsyncMailer) Deliver(ctx context.Context, email, resetLink string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.stopped {
		return ErrStopped
	}

	select {
	case m.queue <- message{email: email, link: resetLink}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (m *AsyncMailer) run() {
	defer close(m.done)

	for msg := range m.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := m.next.Deliver(ctx, msg.email, msg.link); err != nil {
			m.logger.Error().Err(err).Str("to", msg.email).Msg("failed to deliver reset mail")
		}
		cancel()
	}
}
