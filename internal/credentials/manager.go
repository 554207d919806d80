package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/connection"
	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"

	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
)

// AcquireFunc performs one credential acquisition against the identity service.
type AcquireFunc func(ctx context.Context) (domain.Credential, error)

// Manager owns the service credential used for all upstream calls.  The
// initial acquisition runs through a bounded retry connection manager so
// service startup never blocks on the identity service.  A long period
// renewal timer refreshes the credential; a failed renewal is logged and the
// previously stored credential stays in effect until the next renewal
// succeeds.  There is no local expiry clock.
type Manager struct {
	acquire         AcquireFunc
	renewalInterval time.Duration
	connectionMgr   *connection.Manager

	lock       sync.Mutex
	credential *domain.Credential

	acquired    chan struct{}
	acquireOnce sync.Once

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewManager(acquire AcquireFunc, renewalInterval time.Duration, connectionMgr *connection.Manager) *Manager {
	return &Manager{
		acquire:         acquire,
		renewalInterval: renewalInterval,
		connectionMgr:   connectionMgr,
		acquired:        make(chan struct{}),
		stopChan:        make(chan struct{}),
	}
}

// Start launches the initial acquisition in the background and arms the
// renewal timer.  It never blocks.
func (m *Manager) Start(ctx context.Context) {
	logger.Log.Info("Starting the credential lifecycle manager")

	m.connectionMgr.AttemptConnection(ctx, func(ctx context.Context) error {
		return m.refresh(ctx)
	})

	go m.renewalLoop(ctx)
}

// Stop halts the renewal timer
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *Manager) renewalLoop(ctx context.Context) {
	ticker := time.NewTicker(m.renewalInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopChan:
			logger.Log.Info("Credential lifecycle manager stopped")
			return
		case <-ticker.C:
			logger.Log.Info("Renewing the service credential")
			if err := m.refresh(ctx); err != nil {
				// The previously stored credential remains in effect
				// until the next renewal succeeds
				logger.LogError("Credential renewal failed", err)
			}
		}
	}
}

func (m *Manager) refresh(ctx context.Context) error {
	credential, err := m.acquire(ctx)
	if err != nil {
		return err
	}

	m.store(credential)
	logCredentialClaims(credential)

	return nil
}

func (m *Manager) store(credential domain.Credential) {
	m.lock.Lock()
	m.credential = &credential
	m.lock.Unlock()

	m.acquireOnce.Do(func() {
		close(m.acquired)
	})
}

// GetCredential returns the stored credential.  It never blocks on a fetch;
// when no credential is available it triggers a best effort background
// acquisition and reports absence immediately.
func (m *Manager) GetCredential() (domain.Credential, bool) {
	m.lock.Lock()
	credential := m.credential
	m.lock.Unlock()

	if credential == nil {
		logger.Log.Warn("No service credential available.  Triggering a background acquisition.")
		go func() {
			if err := m.refresh(context.Background()); err != nil {
				logger.LogError("Background credential acquisition failed", err)
			}
		}()
		return domain.Credential{}, false
	}

	return *credential, true
}

func (m *Manager) HasValidCredential() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.credential != nil
}

// ForceRefresh runs one acquisition attempt and stores the credential on success
func (m *Manager) ForceRefresh(ctx context.Context) error {
	logger.Log.Info("Forcing a credential refresh")
	return m.refresh(ctx)
}

// AwaitCredential blocks until a credential has been acquired at least once,
// the timeout elapses or the context is cancelled.  It reports whether a
// credential is available.
func (m *Manager) AwaitCredential(ctx context.Context, timeout time.Duration) bool {
	if m.HasValidCredential() {
		return true
	}

	select {
	case <-m.acquired:
		return true
	case <-time.After(timeout):
		return false
	case <-ctx.Done():
		return false
	}
}

// logCredentialClaims surfaces the token lifetime in the logs.  The claims
// are not verified and not used for anything other than logging.
func logCredentialClaims(credential domain.Credential) {
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}

	if _, _, err := parser.ParseUnverified(credential.Token, claims); err != nil {
		logger.Log.Debug("Service credential acquired (opaque token)")
		return
	}

	fields := logrus.Fields{"issued_at": credential.IssuedAt}
	if exp, ok := claims["exp"].(float64); ok {
		fields["expires_at"] = time.Unix(int64(exp), 0).UTC()
	}

	logger.Log.WithFields(fields).Debug("Service credential acquired")
}
