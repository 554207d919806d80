package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/marketpulse/reporting-gateway/internal/config"
	"github.com/marketpulse/reporting-gateway/internal/credentials"
	"github.com/marketpulse/reporting-gateway/internal/middlewares"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
	"github.com/marketpulse/reporting-gateway/internal/scheduler"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ManagementServer exposes operator endpoints for triggering sync passes and
// credential refreshes.  All routes sit behind pre-shared key auth.
type ManagementServer struct {
	router      *mux.Router
	config      *config.Config
	jobs        map[string]*scheduler.Job
	credentials *credentials.Manager
}

func NewManagementServer(r *mux.Router, cfg *config.Config, jobs map[string]*scheduler.Job, credentialManager *credentials.Manager) *ManagementServer {
	return &ManagementServer{
		router:      r,
		config:      cfg,
		jobs:        jobs,
		credentials: credentialManager,
	}
}

func (s *ManagementServer) Routes() {
	mmw := &middlewares.MetricsMiddleware{}
	amw := &middlewares.AuthMiddleware{Secrets: s.config.ServiceToServiceCredentials}

	securedSubRouter := s.router.PathPrefix(s.config.UrlBasePath).Subrouter()
	securedSubRouter.Use(middlewares.RequestID,
		logger.AccessLoggerMiddleware,
		mmw.RecordHTTPMetrics,
		amw.Authenticate)

	securedSubRouter.HandleFunc("/sync/{job}", s.handleSyncTrigger()).Methods(http.MethodPost)
	securedSubRouter.HandleFunc("/credential/refresh", s.handleCredentialRefresh()).Methods(http.MethodPost)
	securedSubRouter.HandleFunc("/status", s.handleStatus()).Methods(http.MethodGet)
}

type syncTriggerResponse struct {
	Job       string `json:"job"`
	Triggered bool   `json:"triggered"`
}

func (s *ManagementServer) handleSyncTrigger() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		principal, _ := middlewares.GetPrincipal(req.Context())
		requestId := middlewares.GetRequestID(req.Context())
		jobName := mux.Vars(req)["job"]

		logger := logger.Log.WithFields(logrus.Fields{
			"client_id":  principal.GetClientID(),
			"request_id": requestId})

		if err := validator.New().Var(jobName, "required,max=64"); err != nil {
			errorResponse := errorResponse{Title: "Invalid job name",
				Status: http.StatusBadRequest,
				Detail: err.Error()}
			writeJSONResponse(w, errorResponse.Status, errorResponse)
			return
		}

		job, ok := s.jobs[jobName]
		if !ok {
			errMsg := fmt.Sprintf("No job found with name (%s)", jobName)
			logger.Info(errMsg)
			errorResponse := errorResponse{Title: errMsg,
				Status: http.StatusNotFound,
				Detail: errMsg}
			writeJSONResponse(w, errorResponse.Status, errorResponse)
			return
		}

		logger.Infof("Operator triggered a %s pass", jobName)

		// The request context dies as soon as the 202 is written; the
		// triggered pass has to outlive it.
		go job.RunOnce(context.WithoutCancel(req.Context()))

		writeJSONResponse(w, http.StatusAccepted, syncTriggerResponse{Job: jobName, Triggered: true})
	}
}

func (s *ManagementServer) handleCredentialRefresh() http.HandlerFunc {

	return func(w http.ResponseWriter, req *http.Request) {

		principal, _ := middlewares.GetPrincipal(req.Context())
		requestId := middlewares.GetRequestID(req.Context())

		logger := logger.Log.WithFields(logrus.Fields{
			"client_id":  principal.GetClientID(),
			"request_id": requestId})

		logger.Info("Operator triggered a credential refresh")

		if err := s.credentials.ForceRefresh(req.Context()); err != nil {
			errorResponse := errorResponse{Title: "Credential refresh failed",
				Status: http.StatusBadGateway,
				Detail: err.Error()}
			writeJSONResponse(w, errorResponse.Status, errorResponse)
			return
		}

		writeJSONResponse(w, http.StatusOK, struct{}{})
	}
}

func (s *ManagementServer) handleStatus() http.HandlerFunc {

	type jobStatus struct {
		Job         string `json:"job"`
		Connected   bool   `json:"connected"`
		Attempts    int    `json:"attempts"`
		MaxAttempts int    `json:"max_attempts"`
	}

	type response struct {
		CredentialAvailable bool        `json:"credential_available"`
		Jobs                []jobStatus `json:"jobs"`
	}

	return func(w http.ResponseWriter, req *http.Request) {

		statuses := make([]jobStatus, 0, len(s.jobs))

		for name, job := range s.jobs {
			status := job.ConnectionStatus()
			statuses = append(statuses, jobStatus{
				Job:         name,
				Connected:   status.Connected,
				Attempts:    status.Attempts,
				MaxAttempts: status.MaxAttempts,
			})
		}

		writeJSONResponse(w, http.StatusOK, response{
			CredentialAvailable: s.credentials.HasValidCredential(),
			Jobs:                statuses,
		})
	}
}
