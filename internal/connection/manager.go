package connection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/platform/logger"

	"github.com/sirupsen/logrus"
)

// Operation is the connect function driven by the manager.  It is expected
// to perform one full connection attempt and report the outcome.
type Operation func(ctx context.Context) error

// Status is the connection state exposed for health reporting.
type Status struct {
	Connected   bool `json:"connected"`
	Attempts    int  `json:"attempts"`
	MaxAttempts int  `json:"max_attempts"`
}

// Manager drives an arbitrary connect operation with a bounded number of
// retries without blocking the caller.  A service startup sequence hands its
// first error prone upstream call to AttemptConnection and carries on; the
// manager reports the retry budget through Status so health endpoints can
// surface it.  Once the attempts are exhausted the manager stays idle until
// the owning component invokes it again or corrects the state through
// MarkAsConnected / MarkAsDisconnected.
type Manager struct {
	name         string
	initialDelay time.Duration
	retryDelay   time.Duration
	maxAttempts  int

	lock      sync.Mutex
	connected bool
	attempts  int
}

func NewManager(name string, initialDelay time.Duration, retryDelay time.Duration, maxAttempts int) *Manager {
	return &Manager{
		name:         name,
		initialDelay: initialDelay,
		retryDelay:   retryDelay,
		maxAttempts:  maxAttempts,
	}
}

// AttemptConnection runs the operation in the background with bounded
// retries.  It never blocks and never panics the caller.
func (m *Manager) AttemptConnection(ctx context.Context, op Operation) {
	go m.runAttempts(ctx, op)
}

func (m *Manager) runAttempts(ctx context.Context, op Operation) {

	log := logger.Log.WithFields(logrus.Fields{"connection": m.name})

	// Give the upstream dependency a chance to come up before the first attempt
	if sleepInterrupted(ctx, m.initialDelay) {
		return
	}

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {

		m.recordAttempt(attempt)
		connectionAttemptCounter.WithLabelValues(m.name).Inc()

		log.Debugf("Connection attempt %d/%d", attempt, m.maxAttempts)

		err := invoke(ctx, op)
		if err == nil {
			m.MarkAsConnected()
			log.Infof("Connection established (attempt %d)", attempt)
			return
		}

		log.WithFields(logrus.Fields{"error": err}).Warnf("Connection attempt %d/%d failed", attempt, m.maxAttempts)

		if attempt < m.maxAttempts {
			if sleepInterrupted(ctx, m.retryDelay) {
				return
			}
		}
	}

	m.MarkAsDisconnected()
	connectionExhaustedCounter.WithLabelValues(m.name).Inc()
	log.Errorf("Unable to connect after %d attempts.  Continuing with reduced functionality.", m.maxAttempts)
}

// invoke shields the retry loop from a panicking operation
func invoke(ctx context.Context, op Operation) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connect operation panicked: %v", r)
		}
	}()

	return op(ctx)
}

func sleepInterrupted(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return true
	case <-time.After(d):
		return false
	}
}

func (m *Manager) recordAttempt(attempt int) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.attempts = attempt
}

func (m *Manager) IsConnected() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.connected
}

func (m *Manager) Attempts() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.attempts
}

// MarkAsConnected records an out of band connection success
func (m *Manager) MarkAsConnected() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.connected = true
}

// MarkAsDisconnected records an out of band connection failure
func (m *Manager) MarkAsDisconnected() {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.connected = false
}

// Status returns the connection state for health reporting
func (m *Manager) Status() Status {
	m.lock.Lock()
	defer m.lock.Unlock()
	return Status{
		Connected:   m.connected,
		Attempts:    m.attempts,
		MaxAttempts: m.maxAttempts,
	}
}
