package credentials

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/connection"
	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
)

func init() {
	logger.InitLogger()
}

func newTestConnectionManager() *connection.Manager {
	return connection.NewManager("credential-test", 1*time.Millisecond, 1*time.Millisecond, 3)
}

type scriptedAcquirer struct {
	calls   int32
	results []func() (domain.Credential, error)
}

func (sa *scriptedAcquirer) acquire(ctx context.Context) (domain.Credential, error) {
	call := int(atomic.AddInt32(&sa.calls, 1)) - 1
	if call >= len(sa.results) {
		call = len(sa.results) - 1
	}
	return sa.results[call]()
}

func credentialResult(token string) func() (domain.Credential, error) {
	return func() (domain.Credential, error) {
		return domain.Credential{Token: token, IssuedAt: time.Now()}, nil
	}
}

func errorResult() (domain.Credential, error) {
	return domain.Credential{}, errors.New("identity service unavailable")
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(1 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for the credential manager to settle")
}

func TestStartAcquiresInitialCredential(t *testing.T) {
	acquirer := &scriptedAcquirer{results: []func() (domain.Credential, error){credentialResult("token-1")}}

	m := NewManager(acquirer.acquire, time.Hour, newTestConnectionManager())
	m.Start(context.Background())
	defer m.Stop()

	waitFor(t, m.HasValidCredential)

	credential, ok := m.GetCredential()
	if !ok {
		t.Fatal("Expected a credential to be available")
	}
	if credential.Token != "token-1" {
		t.Fatalf("Unexpected credential token: %s", credential.Token)
	}
}

func TestStartDoesNotBlockOnUnavailableIdentityService(t *testing.T) {
	acquirer := &scriptedAcquirer{results: []func() (domain.Credential, error){errorResult}}

	m := NewManager(acquirer.acquire, time.Hour, newTestConnectionManager())

	start := time.Now()
	m.Start(context.Background())
	defer m.Stop()

	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("Start blocked for %s", elapsed)
	}

	if m.HasValidCredential() {
		t.Fatal("Expected no credential after failed acquisition")
	}
}

func TestFailedRenewalKeepsStoredCredential(t *testing.T) {
	acquirer := &scriptedAcquirer{results: []func() (domain.Credential, error){
		credentialResult("token-1"),
		errorResult,
	}}

	m := NewManager(acquirer.acquire, time.Hour, newTestConnectionManager())
	m.Start(context.Background())
	defer m.Stop()

	waitFor(t, m.HasValidCredential)

	if err := m.ForceRefresh(context.Background()); err == nil {
		t.Fatal("Expected the forced renewal to fail")
	}

	credential, ok := m.GetCredential()
	if !ok {
		t.Fatal("Expected the stale credential to remain in effect")
	}
	if credential.Token != "token-1" {
		t.Fatalf("Expected the prior credential to be served, got %s", credential.Token)
	}
}

func TestForceRefreshReplacesCredential(t *testing.T) {
	acquirer := &scriptedAcquirer{results: []func() (domain.Credential, error){
		credentialResult("token-1"),
		credentialResult("token-2"),
	}}

	m := NewManager(acquirer.acquire, time.Hour, newTestConnectionManager())
	m.Start(context.Background())
	defer m.Stop()

	waitFor(t, m.HasValidCredential)

	if err := m.ForceRefresh(context.Background()); err != nil {
		t.Fatalf("Unexpected forced refresh error: %v", err)
	}

	credential, _ := m.GetCredential()
	if credential.Token != "token-2" {
		t.Fatalf("Expected the refreshed credential, got %s", credential.Token)
	}
}

func TestGetCredentialTriggersBackgroundAcquisition(t *testing.T) {
	acquirer := &scriptedAcquirer{results: []func() (domain.Credential, error){credentialResult("token-1")}}

	m := NewManager(acquirer.acquire, time.Hour, newTestConnectionManager())

	_, ok := m.GetCredential()
	if ok {
		t.Fatal("Expected no credential on the calling path")
	}

	// The absent credential read fires a best effort acquisition
	waitFor(t, m.HasValidCredential)
}

func TestAwaitCredentialSignaledOnAcquisition(t *testing.T) {
	acquirer := &scriptedAcquirer{results: []func() (domain.Credential, error){credentialResult("token-1")}}

	m := NewManager(acquirer.acquire, time.Hour, newTestConnectionManager())
	m.Start(context.Background())
	defer m.Stop()

	if !m.AwaitCredential(context.Background(), 5*time.Second) {
		t.Fatal("Expected the credential wait to be signaled")
	}
}

func TestAwaitCredentialTimesOut(t *testing.T) {
	acquirer := &scriptedAcquirer{results: []func() (domain.Credential, error){errorResult}}

	m := NewManager(acquirer.acquire, time.Hour, newTestConnectionManager())

	start := time.Now()
	if m.AwaitCredential(context.Background(), 20*time.Millisecond) {
		t.Fatal("Expected the credential wait to time out")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("The wait returned before the timeout elapsed: %s", elapsed)
	}
}
