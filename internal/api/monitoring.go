package api

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/marketpulse/reporting-gateway/internal/config"
	"github.com/marketpulse/reporting-gateway/internal/credentials"
	"github.com/marketpulse/reporting-gateway/internal/platform/logger"
	"github.com/marketpulse/reporting-gateway/internal/scheduler"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MonitoringServer struct {
	router      *mux.Router
	config      *config.Config
	jobs        []*scheduler.Job
	credentials *credentials.Manager
}

func NewMonitoringServer(r *mux.Router, cfg *config.Config, jobs []*scheduler.Job, credentialManager *credentials.Manager) *MonitoringServer {
	return &MonitoringServer{
		router:      r,
		config:      cfg,
		jobs:        jobs,
		credentials: credentialManager,
	}
}

func (s *MonitoringServer) Routes() {
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/liveness", s.handleLiveness()).Methods(http.MethodGet)
	s.router.HandleFunc("/readiness", s.handleReadiness()).Methods(http.MethodGet)
	s.router.HandleFunc("/connection-status", s.handleConnectionStatus()).Methods(http.MethodGet)

	if s.config.Profile {
		logger.Log.Warn("WARNING: Enabling the profiler endpoint!!")
		s.router.PathPrefix("/debug").Handler(http.DefaultServeMux)
	}
}

func (s *MonitoringServer) handleLiveness() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func (s *MonitoringServer) handleReadiness() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func (s *MonitoringServer) handleConnectionStatus() http.HandlerFunc {

	type jobConnectionStatus struct {
		Job         string `json:"job"`
		Connected   bool   `json:"connected"`
		Attempts    int    `json:"attempts"`
		MaxAttempts int    `json:"max_attempts"`
	}

	type response struct {
		CredentialAvailable bool                  `json:"credential_available"`
		Connections         []jobConnectionStatus `json:"connections"`
	}

	return func(w http.ResponseWriter, req *http.Request) {

		connections := make([]jobConnectionStatus, len(s.jobs))

		for i, job := range s.jobs {
			status := job.ConnectionStatus()
			connections[i] = jobConnectionStatus{
				Job:         job.Name(),
				Connected:   status.Connected,
				Attempts:    status.Attempts,
				MaxAttempts: status.MaxAttempts,
			}
		}

		credentialAvailable := false
		if s.credentials != nil {
			credentialAvailable = s.credentials.HasValidCredential()
		}

		writeJSONResponse(w, http.StatusOK, response{
			CredentialAvailable: credentialAvailable,
			Connections:         connections,
		})
	}
}
