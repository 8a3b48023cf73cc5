// Copyright 2025 The actor-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package supervisor

import (
	"context"
	"log"
	"time"

	"github.com/turtacn/actor-go/pkg/monitoring"
)

// HealthConfig controls periodic child health checking.
type HealthConfig struct {
	// CheckInterval is the period between check rounds.
	CheckInterval time.Duration
	// CheckTimeout bounds one health check; exceeding it counts as Failed.
	CheckTimeout time.Duration
	// FailureThreshold is the number of consecutive Failed results that
	// triggers a restart. Degraded results do not count; a Healthy result
	// resets the counter.
	FailureThreshold int
}

// DefaultHealthConfig checks every 30s with a 5s timeout and a threshold of
// 3 consecutive failures.
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		CheckInterval:    30 * time.Second,
		CheckTimeout:     5 * time.Second,
		FailureThreshold: 3,
	}
}

func (c HealthConfig) withDefaults() HealthConfig {
	d := DefaultHealthConfig()
	if c.CheckInterval <= 0 {
		c.CheckInterval = d.CheckInterval
	}
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = d.CheckTimeout
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	return c
}

// EnableHealthChecks turns on health monitoring with cfg. It does not start
// the background monitor; see StartHealthMonitor.
func (s *Supervisor) EnableHealthChecks(cfg HealthConfig) {
	cfg = cfg.withDefaults()
	s.healthMu.Lock()
	s.healthCfg = &cfg
	s.healthMu.Unlock()
}

// DisableHealthChecks turns health monitoring off and stops the background
// monitor if it is running.
func (s *Supervisor) DisableHealthChecks() {
	s.StopHealthMonitor()
	s.healthMu.Lock()
	s.healthCfg = nil
	s.healthMu.Unlock()
}

// IsHealthMonitoringEnabled reports whether a health configuration is set.
func (s *Supervisor) IsHealthMonitoringEnabled() bool {
	s.healthMu.Lock()
	defer s.healthMu.Unlock()
	return s.healthCfg != nil
}

// CheckChildHealth runs one health check against a running child and applies
// the threshold rules: enough consecutive failures restart the child through
// the normal failure path.
func (s *Supervisor) CheckChildHealth(ctx context.Context, id string) (ChildHealth, error) {
	s.healthMu.Lock()
	cfgp := s.healthCfg
	s.healthMu.Unlock()
	if cfgp == nil {
		return ChildHealth{}, ErrHealthMonitoringDisabled
	}
	cfg := *cfgp

	h, err := s.handle(id)
	if err != nil {
		return ChildHealth{}, err
	}

	h.mu.Lock()
	child := h.child
	running := h.state.IsRunning()
	h.mu.Unlock()
	if !running || child == nil {
		return Failed("child is not running"), nil
	}

	result := runHealthCheck(ctx, child, cfg.CheckTimeout)
	s.applyHealthResult(ctx, id, h, result, cfg)
	return result, nil
}

// StartHealthMonitor launches the background check loop. The loop runs until
// StopHealthMonitor or Shutdown.
func (s *Supervisor) StartHealthMonitor() error {
	s.healthMu.Lock()
	if s.healthCfg == nil {
		s.healthMu.Unlock()
		return ErrHealthMonitoringDisabled
	}
	if s.healthStop != nil {
		s.healthMu.Unlock()
		return ErrHealthMonitorRunning
	}
	cfg := *s.healthCfg
	stop := make(chan struct{})
	s.healthStop = stop
	s.healthMu.Unlock()

	go s.healthLoop(cfg, stop)
	log.Printf("Health monitor started (interval %v, threshold %d)", cfg.CheckInterval, cfg.FailureThreshold)
	return nil
}

// StopHealthMonitor stops the background loop. Idempotent.
func (s *Supervisor) StopHealthMonitor() {
	s.healthMu.Lock()
	stop := s.healthStop
	s.healthStop = nil
	s.healthMu.Unlock()
	if stop != nil {
		close(stop)
	}
}

func (s *Supervisor) healthLoop(cfg HealthConfig, stop chan struct{}) {
	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			for _, id := range s.ChildIDs() {
				if _, err := s.CheckChildHealth(context.Background(), id); err != nil && !IsNotFound(err) {
					log.Printf("Health check of child %s errored: %v", id, err)
				}
			}
		}
	}
}

func (s *Supervisor) applyHealthResult(ctx context.Context, id string, h *childHandle, result ChildHealth, cfg HealthConfig) {
	h.mu.Lock()
	h.health = result
	restart := false
	switch result.Status {
	case HealthHealthy:
		h.failures = 0
	case HealthDegraded:
		// Recorded but not counted toward the threshold.
		log.Printf("Child %s degraded: %s", id, result.Reason)
	case HealthFailed:
		h.failures++
		s.event(monitoring.SupervisionEvent{Kind: monitoring.HealthCheckFailed, ChildID: id, Error: result.Reason})
		if h.failures >= cfg.FailureThreshold {
			h.failures = 0
			restart = true
		}
	}
	h.mu.Unlock()

	if restart {
		log.Printf("Child %s failed %d consecutive health checks, restarting", id, cfg.FailureThreshold)
		if err := s.HandleChildFailure(ctx, id, errHealthThreshold); err != nil {
			log.Printf("Health-triggered restart of child %s failed: %v", id, err)
		}
	}
}

var errHealthThreshold = errorString("health check failure threshold reached")

type errorString string

func (e errorString) Error() string { return string(e) }

// runHealthCheck bounds one check; a timeout is a Failed result, and the
// check goroutine is abandoned rather than killed.
func runHealthCheck(ctx context.Context, child Child, timeout time.Duration) ChildHealth {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan ChildHealth, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Failed("health check panicked")
			}
		}()
		done <- child.HealthCheck(tctx)
	}()

	select {
	case result := <-done:
		return result
	case <-tctx.Done():
		return Failed("health check timed out")
	}
}
