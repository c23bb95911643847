package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mobile-next/droidinput/utils"
)

// ShutdownHook collects cleanup steps for SIGINT/SIGTERM. Steps run in
// reverse registration order so later resources are released first.
type ShutdownHook struct {
	mu    sync.Mutex
	steps []shutdownStep
}

type shutdownStep struct {
	name string
	fn   func(ctx context.Context) error
}

// NewShutdownHook creates an empty hook.
func NewShutdownHook() *ShutdownHook {
	return &ShutdownHook{}
}

// Register adds a named cleanup step.
func (s *ShutdownHook) Register(name string, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, shutdownStep{name: name, fn: fn})
	utils.Verbose("Registered shutdown step: %s", name)
}

// Run executes every step, newest first, and forgets them. A failing step
// does not stop the ones after it.
func (s *ShutdownHook) Run(ctx context.Context) error {
	s.mu.Lock()
	steps := s.steps
	s.steps = nil
	s.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		utils.Verbose("Running shutdown step: %s", step.name)
		if err := step.fn(ctx); err != nil {
			utils.Warn("Shutdown step %s failed: %v", step.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	return errors.Join(errs...)
}

// Len returns the number of pending steps.
func (s *ShutdownHook) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}
