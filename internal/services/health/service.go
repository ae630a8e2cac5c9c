package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Check tests one dependency.
type Check func(ctx context.Context) error

// Service runs readiness checks against registered dependencies.
type Service struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{checks: make(map[string]Check), timeout: 3 * time.Second}
}

// Register adds a named readiness check.
func (s *Service) Register(name string, check Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = check
}

// Status returns the liveness payload.
func (s *Service) Status() map[string]bool {
	return map[string]bool{"ok": true}
}

// Ready runs every check concurrently and reports failures by name.
func (s *Service) Ready(ctx context.Context) (bool, map[string]string) {
	s.mu.RLock()
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	checks := make([]Check, len(names))
	for i, name := range names {
		checks[i] = s.checks[name]
	}
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]string, len(names))
	var wg sync.WaitGroup
	for i := range checks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := checks[i](ctx); err != nil {
				results[i] = err.Error()
			} else {
				results[i] = "ok"
			}
		}(i)
	}
	wg.Wait()

	ok := true
	out := make(map[string]string, len(names))
	for i, name := range names {
		out[name] = results[i]
		if results[i] != "ok" {
			ok = false
		}
	}
	return ok, out
}
