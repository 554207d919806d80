package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/connection"
	"github.com/marketpulse/reporting-gateway/internal/credentials"
	"github.com/marketpulse/reporting-gateway/internal/domain"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
)

func init() {
	logger.InitLogger()
}

func testConnectionManager(name string) *connection.Manager {
	return connection.NewManager(name, time.Millisecond, time.Millisecond, 1)
}

func credentialManagerWithToken(t *testing.T, token string) *credentials.Manager {
	t.Helper()

	manager := credentials.NewManager(func(ctx context.Context) (domain.Credential, error) {
		return domain.Credential{Token: token, IssuedAt: time.Now()}, nil
	}, time.Hour, testConnectionManager("identity"))

	if err := manager.ForceRefresh(context.Background()); err != nil {
		t.Fatal("unable to seed the credential manager", err)
	}

	return manager
}

func credentialManagerWithoutToken() *credentials.Manager {
	return credentials.NewManager(func(ctx context.Context) (domain.Credential, error) {
		return domain.Credential{}, errors.New("identity service unavailable")
	}, time.Hour, testConnectionManager("identity"))
}

func TestRunOncePassesCredentialToThePass(t *testing.T) {

	var receivedToken atomic.Value

	run := func(ctx context.Context, token string) error {
		receivedToken.Store(token)
		return nil
	}

	job := NewJob("inventory_sync", time.Hour, run, credentialManagerWithToken(t, "token-abc"), testConnectionManager("inventory"), nil)

	job.RunOnce(context.Background())

	if receivedToken.Load() != "token-abc" {
		t.Errorf("expected the stored credential to reach the pass, got %v", receivedToken.Load())
	}
}

func TestRunOnceSkipsSilentlyWithoutCredential(t *testing.T) {

	var runs atomic.Int32

	run := func(ctx context.Context, token string) error {
		runs.Add(1)
		return nil
	}

	job := NewJob("inventory_sync", time.Hour, run, credentialManagerWithoutToken(), testConnectionManager("inventory"), nil)

	job.RunOnce(context.Background())

	if runs.Load() != 0 {
		t.Errorf("expected the pass to be skipped without a credential, got %d runs", runs.Load())
	}
}

func TestRunOnceSkipsWhileAPassIsInFlight(t *testing.T) {

	var runs atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	run := func(ctx context.Context, token string) error {
		runs.Add(1)
		close(started)
		<-release
		return nil
	}

	job := NewJob("settlement_analysis", time.Hour, run, credentialManagerWithToken(t, "token"), testConnectionManager("orders"), nil)

	go job.RunOnce(context.Background())

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("the first pass never started")
	}

	job.RunOnce(context.Background())
	close(release)

	if runs.Load() != 1 {
		t.Errorf("expected the overlapping pass to be skipped, got %d runs", runs.Load())
	}
}

func TestStartRunsAnInitialPass(t *testing.T) {

	ran := make(chan struct{})

	run := func(ctx context.Context, token string) error {
		close(ran)
		return nil
	}

	job := NewJob("roster_sync", time.Hour, run, credentialManagerWithToken(t, "token"), testConnectionManager("auth"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job.Start(ctx)

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("the initial pass never ran")
	}
}

func TestInitialPassRetriesUntilTheCredentialArrives(t *testing.T) {

	ran := make(chan string, 1)
	var acquisitions atomic.Int32

	run := func(ctx context.Context, token string) error {
		ran <- token
		return nil
	}

	// The first acquisition fails, so the initial connection attempt finds
	// no credential.  A later attempt on the retry schedule must still land
	// the pass.
	credentialManager := credentials.NewManager(func(ctx context.Context) (domain.Credential, error) {
		if acquisitions.Add(1) == 1 {
			return domain.Credential{}, errors.New("identity service unavailable")
		}
		return domain.Credential{Token: "late-token", IssuedAt: time.Now()}, nil
	}, time.Hour, testConnectionManager("identity"))

	connectionManager := connection.NewManager("inventory", time.Millisecond, 50*time.Millisecond, 3)

	job := NewJob("inventory_sync", time.Hour, run, credentialManager, connectionManager, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job.Start(ctx)

	select {
	case token := <-ran:
		if token != "late-token" {
			t.Errorf("expected the late credential to reach the pass, got %s", token)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("the initial pass never ran within the retry schedule")
	}
}

func TestStartupWaitHoldsInitialPassForCredential(t *testing.T) {

	ran := make(chan string, 1)

	run := func(ctx context.Context, token string) error {
		ran <- token
		return nil
	}

	credentialManager := credentials.NewManager(func(ctx context.Context) (domain.Credential, error) {
		return domain.Credential{Token: "late-token", IssuedAt: time.Now()}, nil
	}, time.Hour, testConnectionManager("identity"))

	job := NewJob("roster_sync", time.Hour, run, credentialManager, testConnectionManager("auth"), nil).
		WithStartupCredentialWait(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job.Start(ctx)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = credentialManager.ForceRefresh(context.Background())
	}()

	select {
	case token := <-ran:
		if token != "late-token" {
			t.Errorf("expected the late credential to reach the pass, got %s", token)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("the initial pass never ran after the credential arrived")
	}
}

func TestSuccessfulPassMarksTheConnectionConnected(t *testing.T) {

	run := func(ctx context.Context, token string) error {
		return nil
	}

	connectionManager := testConnectionManager("orders")

	job := NewJob("settlement_analysis", time.Hour, run, credentialManagerWithToken(t, "token"), connectionManager, nil)

	job.RunOnce(context.Background())

	if !job.ConnectionStatus().Connected {
		t.Error("expected a finished pass to mark the connection connected")
	}
}

func TestRunOnceRecoversAfterAFailedPass(t *testing.T) {

	var runs atomic.Int32

	run := func(ctx context.Context, token string) error {
		if runs.Add(1) == 1 {
			return errors.New("upstream unavailable")
		}
		return nil
	}

	job := NewJob("inventory_sync", time.Hour, run, credentialManagerWithToken(t, "token"), testConnectionManager("inventory"), nil)

	job.RunOnce(context.Background())
	job.RunOnce(context.Background())

	if runs.Load() != 2 {
		t.Errorf("expected the job to keep running after a failed pass, got %d runs", runs.Load())
	}
}
