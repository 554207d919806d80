// Package upstream holds the HTTP clients for the independently owned
// services this gateway aggregates.  Every call maps a transport error or a
// non 2xx response to a plain error; the callers treat all failures
// uniformly when deciding to retry or skip.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

func getJSON(ctx context.Context, client *http.Client, service string, url string, token string, target interface{}) error {

	callDurationTimer := prometheus.NewTimer(upstreamRequestDuration.WithLabelValues(service))
	defer callDurationTimer.ObserveDuration()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		upstreamRequestFailureCounter.WithLabelValues(service).Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamRequestFailureCounter.WithLabelValues(service).Inc()
		return fmt.Errorf("%s request failed: %s returned status %d", service, url, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(target)
}

func postJSON(ctx context.Context, client *http.Client, service string, url string, payload interface{}, target interface{}) error {

	callDurationTimer := prometheus.NewTimer(upstreamRequestDuration.WithLabelValues(service))
	defer callDurationTimer.ObserveDuration()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		upstreamRequestFailureCounter.WithLabelValues(service).Inc()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamRequestFailureCounter.WithLabelValues(service).Inc()
		return fmt.Errorf("%s request failed: %s returned status %d", service, url, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(target)
}
