// Package health blocks until the primary service reports itself healthy.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultAttempts and DefaultInterval give a two minute ceiling.
	DefaultAttempts = 120
	DefaultInterval = time.Second

	requestTimeout = 5 * time.Second
)

// ErrStartupTimeout is returned when every attempt failed to observe a healthy status.
var ErrStartupTimeout = errors.New("startup took too long")

// Status is the body of the /health endpoint.
type Status struct {
	Healthy bool `json:"status"`
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Gate polls URL until it answers {"status": true}.
type Gate struct {
	URL      string
	Attempts int
	Interval time.Duration
	Client   *http.Client
	Sleep    SleepFunc
	Logger   *log.Logger
}

// NewGate returns a Gate for url with the default retry policy.
func NewGate(url string, logger *log.Logger) *Gate {
	return &Gate{
		URL:      url,
		Attempts: DefaultAttempts,
		Interval: DefaultInterval,
		Client:   &http.Client{Timeout: requestTimeout},
		Sleep:    sleepContext,
		Logger:   logger,
	}
}

// Wait polls until the service is healthy, the attempts run out
// (ErrStartupTimeout) or ctx is cancelled (ctx.Err()).
// Transport errors, undecodable bodies and a false status are all retried.
func (g *Gate) Wait(ctx context.Context) error {
	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	sleep := g.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	logger := g.Logger
	if logger == nil {
		logger = log.Default()
	}

	// A URL that cannot form a request will never succeed.
	if _, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL, nil); err != nil {
		return fmt.Errorf("health check request: %w", err)
	}

	for attempt := 1; attempt <= g.Attempts; attempt++ {
		healthy, err := g.poll(ctx, client)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if healthy {
			logger.Debug("service healthy", "url", g.URL, "attempt", attempt)
			return nil
		}
		if err != nil {
			logger.Debug("health check failed", "url", g.URL, "attempt", attempt, "err", err)
		}

		if attempt == g.Attempts {
			break
		}
		if err := sleep(ctx, g.Interval); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: %s not healthy after %d attempts", ErrStartupTimeout, g.URL, g.Attempts)
}

func (g *Gate) poll(ctx context.Context, client *http.Client) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL, nil)
	if err != nil {
		return false, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("decode health status: %w", err)
	}
	return status.Healthy, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
