package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mobile-next/droidinput/bridge"
	"github.com/mobile-next/droidinput/commands"
	"github.com/mobile-next/droidinput/utils"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// methods returns a map of method names to handler functions
// This is used by both the HTTP and WebSocket transports
func (s *Server) methods() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"pointer_event":   s.handlePointerEvent,
		"key_event":       s.handleKeyEvent,
		"cut_text":        s.handleCutText,
		"set_scaling":     s.handleSetScaling,
		"status":          s.handleStatus,
		"server.shutdown": s.handleShutdown,
	}
}

// Execute dispatches a method call using the registry
// This is the main entry point for embedded clients
func (s *Server) Execute(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	handler, exists := s.methods()[method]
	if !exists {
		return nil, fmt.Errorf("method not found: %s", method)
	}

	return handler(ctx, params)
}

func decodeParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return fmt.Errorf("invalid parameters: params are required")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("invalid parameters: %v", err)
	}
	return nil
}

func responseResult(response *commands.CommandResponse) (interface{}, error) {
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	if response.Data == nil {
		return okResponse, nil
	}
	return response.Data, nil
}

func (s *Server) handlePointerEvent(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.PointerRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	s.eventMu.Lock()
	defer s.eventMu.Unlock()
	return responseResult(commands.PointerCommand(ctx, s.bridge, req))
}

func (s *Server) handleKeyEvent(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.KeyRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	s.eventMu.Lock()
	defer s.eventMu.Unlock()
	return responseResult(commands.KeyCommand(ctx, s.bridge, req))
}

func (s *Server) handleCutText(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.CutTextRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	s.eventMu.Lock()
	defer s.eventMu.Unlock()
	return responseResult(commands.CutTextCommand(ctx, s.bridge, req))
}

func (s *Server) handleSetScaling(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.ScaleRequest
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}

	return responseResult(commands.ScaleCommand(s.bridge, req))
}

type statusResult struct {
	bridge.Status
	OrientationWorkaround bool `json:"orientationWorkaround"`
}

func (s *Server) handleStatus(ctx context.Context, params json.RawMessage) (interface{}, error) {
	s.eventMu.Lock()
	defer s.eventMu.Unlock()

	return statusResult{
		Status:                s.bridge.Status(),
		OrientationWorkaround: s.opts.Toggle.Enabled(),
	}, nil
}

func (s *Server) handleShutdown(ctx context.Context, params json.RawMessage) (interface{}, error) {
	utils.Info("Shutdown requested over JSON-RPC")
	s.Shutdown()
	return okResponse, nil
}
