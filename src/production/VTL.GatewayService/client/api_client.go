package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"time"
)

// permanentError marks a failure that will not improve on resend, such as a
// rejected payload. It is reported but never retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// CircuitBreakerState represents the state of the circuit breaker
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreaker protects the API service from a stampede of retries while
// it is down
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	state        CircuitBreakerState
	failureCount int
	lastFailTime time.Time
	mutex        sync.RWMutex
}

// APIClient forwards wearable readings to the API service's ingestion
// endpoint, authenticating with the shared device key
type APIClient struct {
	baseURL        string
	httpClient     *http.Client
	deviceKey      string
	circuitBreaker *CircuitBreaker
	maxRetries     int
	retryDelay     time.Duration
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, deviceKey string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		deviceKey: deviceKey,
		circuitBreaker: &CircuitBreaker{
			maxFailures:  5,
			resetTimeout: 30 * time.Second,
			state:        StateClosed,
		},
		maxRetries: 3,
		retryDelay: 1 * time.Second,
	}
}

// MeasurementRequest is the reading payload posted to the API service
type MeasurementRequest struct {
	DeviceID  string     `json:"deviceId"`
	HeartRate float64    `json:"heartRate"`
	SpO2      float64    `json:"spo2"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Circuit breaker methods
func (cb *CircuitBreaker) canExecute() bool {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()

	switch cb.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		return time.Since(cb.lastFailTime) > cb.resetTimeout
	default:
		return false
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failureCount = 0
	cb.state = StateClosed
}

func (cb *CircuitBreaker) onFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failureCount++
	cb.lastFailTime = time.Now()

	if cb.failureCount >= cb.maxFailures {
		cb.state = StateOpen
	}
}

// Status reports the circuit breaker state for health checks
func (cb *CircuitBreaker) Status() (string, int) {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()

	state := "closed"
	switch cb.state {
	case StateOpen:
		state = "open"
	case StateHalfOpen:
		state = "half-open"
	}
	return state, cb.failureCount
}

// retryWithBackoff executes a function with exponential backoff retry logic
func (c *APIClient) retryWithBackoff(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if !c.circuitBreaker.canExecute() {
			return fmt.Errorf("circuit breaker is open")
		}

		err := operation()
		if err == nil {
			c.circuitBreaker.onSuccess()
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			c.circuitBreaker.onSuccess()
			return perm.err
		}

		lastErr = err
		c.circuitBreaker.onFailure()

		if attempt == c.maxRetries {
			break
		}

		delay := time.Duration(float64(c.retryDelay) * math.Pow(2, float64(attempt)))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// PostMeasurement forwards one reading to the ingestion endpoint. A 4xx
// answer is not retried: the payload will not get better on resend.
func (c *APIClient) PostMeasurement(ctx context.Context, req MeasurementRequest) error {
	return c.retryWithBackoff(ctx, func() error {
		resp, err := c.makeRequest(ctx, http.MethodPost, "/api/measurements", req)
		if err != nil {
			return fmt.Errorf("failed to post measurement: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusCreated {
			return nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return &permanentError{err: fmt.Errorf("API rejected measurement with status %d: %s", resp.StatusCode, string(body))}
		}
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	})
}

// Health checks the API service's health endpoint
func (c *APIClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// GetCircuitBreakerStatus returns circuit breaker state for health reporting
func (c *APIClient) GetCircuitBreakerStatus() map[string]interface{} {
	state, failures := c.circuitBreaker.Status()
	return map[string]interface{}{
		"state":         state,
		"failure_count": failures,
	}
}

func (c *APIClient) makeRequest(ctx context.Context, method, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Device-Key", c.deviceKey)

	return c.httpClient.Do(req)
}
