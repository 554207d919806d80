package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/marketpulse/reporting-gateway/internal/connection"
	"github.com/marketpulse/reporting-gateway/internal/credentials"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
	"github.com/marketpulse/reporting-gateway/internal/platform/utils"
	"github.com/marketpulse/reporting-gateway/internal/sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RunFunc is one scheduled pass.  The token is the current service to
// service credential.
type RunFunc func(ctx context.Context, token string) error

// Job periodically runs a sync pass against an upstream service.
//
// Each pass is gated two ways: a pass is skipped silently when no credential
// is available yet, and skipped when the previous pass is still in flight so
// a slow upstream never stacks concurrent passes onto the same target
// records.
type Job struct {
	name        string
	interval    time.Duration
	run         RunFunc
	credentials *credentials.Manager
	connection  *connection.Manager
	events      *sync.EventPublisher

	// startupWait bounds an optional wait for the first credential before
	// the initial pass.  Zero disables the wait.
	startupWait time.Duration

	inFlight atomic.Bool
}

func NewJob(name string, interval time.Duration, run RunFunc, credentialManager *credentials.Manager, connectionManager *connection.Manager, events *sync.EventPublisher) *Job {
	return &Job{
		name:        name,
		interval:    interval,
		run:         run,
		credentials: credentialManager,
		connection:  connectionManager,
		events:      events,
	}
}

// WithStartupCredentialWait makes the initial pass wait up to timeout for a
// credential instead of skipping straight away.
func (j *Job) WithStartupCredentialWait(timeout time.Duration) *Job {
	j.startupWait = timeout
	return j
}

func (j *Job) Name() string {
	return j.name
}

func (j *Job) ConnectionStatus() connection.Status {
	return j.connection.Status()
}

// Start launches the scheduling loop.  It returns immediately.
func (j *Job) Start(ctx context.Context) {

	logger.Log.WithFields(logrus.Fields{"job": j.name, "interval": j.interval}).Info("Starting scheduled job")

	go j.schedulingLoop(ctx)
}

func (j *Job) schedulingLoop(ctx context.Context) {

	if j.startupWait > 0 {
		if !j.credentials.AwaitCredential(ctx, j.startupWait) {
			logger.Log.WithFields(logrus.Fields{"job": j.name}).Warn("No credential arrived before the initial pass")
		}
	}

	// The initial pass is the connect operation.  A failure, including a
	// credential that has not arrived yet, is retried on the bounded
	// schedule instead of waiting a full interval.
	j.connection.AttemptConnection(ctx, j.initialPass)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce(ctx)
		case <-ctx.Done():
			logger.Log.WithFields(logrus.Fields{"job": j.name}).Info("Stopping scheduled job")
			return
		}
	}
}

// initialPass runs one pass and propagates every failure so the bounded
// retry keeps driving it until the first pass lands.
func (j *Job) initialPass(ctx context.Context) error {

	if j.inFlight.CompareAndSwap(false, true) != true {
		return errors.New("a pass is already in flight")
	}
	defer j.inFlight.Store(false)

	credential, available := j.credentials.GetCredential()
	if !available {
		return errors.New("no service credential available yet")
	}

	return j.executePass(ctx, credential.Token)
}

// RunOnce executes a single pass, honoring the credential and in-flight
// gates.  It is also the entry point for operator triggered runs.
func (j *Job) RunOnce(ctx context.Context) {

	if j.inFlight.CompareAndSwap(false, true) != true {
		logger.Log.WithFields(logrus.Fields{"job": j.name}).Warn("Previous pass still in flight.  Skipping this pass.")
		jobRunCounter.WithLabelValues(j.name, "skipped_in_flight").Inc()
		return
	}
	defer j.inFlight.Store(false)

	credential, available := j.credentials.GetCredential()
	if !available {
		logger.Log.WithFields(logrus.Fields{"job": j.name}).Debug("No credential available yet.  Skipping this pass.")
		jobRunCounter.WithLabelValues(j.name, "skipped_no_credential").Inc()
		return
	}

	j.executePass(ctx, credential.Token)
}

func (j *Job) executePass(ctx context.Context, token string) error {

	runID := uuid.NewString()
	startedAt := time.Now()

	log := logger.Log.WithFields(logrus.Fields{"job": j.name, "run_id": runID})
	log.Info("Starting pass")

	err := j.run(ctx, token)

	event := sync.SyncEvent{
		Job:         j.name,
		RunID:       runID,
		Host:        utils.GetHostname(),
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Outcome:     sync.EventOutcomeCompleted,
	}

	if err != nil {
		log.WithFields(logrus.Fields{"error": err}).Error("Pass failed")
		jobRunCounter.WithLabelValues(j.name, "failed").Inc()
		event.Outcome = sync.EventOutcomeFailed
		event.Detail = err.Error()
	} else {
		log.Info("Pass finished")
		jobRunCounter.WithLabelValues(j.name, "completed").Inc()

		// A finished pass proves the upstream is reachable, even when the
		// startup attempts were exhausted earlier.
		j.connection.MarkAsConnected()
	}

	j.events.Publish(ctx, event)

	return err
}
