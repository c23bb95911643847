package commands

import (
	"fmt"

	"github.com/mobile-next/droidinput/bridge"
	"github.com/mobile-next/droidinput/config"
	"github.com/mobile-next/droidinput/devices"
	"github.com/mobile-next/droidinput/executor"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// NewRunner returns the command runner for the configured execution mode.
func NewRunner(cfg config.Config) (executor.Runner, error) {
	switch cfg.Mode {
	case config.ModeSu, "":
		return executor.SuRunner(cfg.SuBinary), nil
	case config.ModeAdb:
		return executor.AdbRunner(cfg.Serial), nil
	default:
		return nil, fmt.Errorf("unsupported execution mode: %s", cfg.Mode)
	}
}

// NewBridge builds an attached bridge for the configured device. Gestures
// share one single-flight executor; global actions and clipboard use the
// runner directly.
func NewBridge(cfg config.Config, opts ...bridge.Option) (*bridge.Bridge, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runner, err := NewRunner(cfg)
	if err != nil {
		return nil, err
	}

	deviceID := cfg.Serial
	if deviceID == "" {
		deviceID = "local"
	}

	exec := executor.New(runner, executor.WithTimeout(cfg.CommandTimeout))
	b := bridge.New(exec, opts...)
	b.Attach(devices.NewAndroidDevice(deviceID, runner))

	if err := b.SetScale(cfg.Scale); err != nil {
		b.Detach()
		return nil, err
	}

	return b, nil
}
