package commands

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/mobile-next/droidinput/bridge"
)

// PointerRequest represents one raw pointer event
type PointerRequest struct {
	ButtonMask uint8 `json:"buttonMask"`
	X          int   `json:"x"`
	Y          int   `json:"y"`
}

// KeyRequest represents one raw key event
type KeyRequest struct {
	Down   bool   `json:"down"`
	Keysym uint32 `json:"keysym"`
}

// CutTextRequest represents a clipboard update from the client
type CutTextRequest struct {
	Text string `json:"text"`
}

// ScaleRequest represents the parameters for a scaling change
type ScaleRequest struct {
	Factor float64 `json:"factor"`
}

// TapRequest represents the parameters for a tap command
type TapRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LongPressRequest represents the parameters for a long press command
type LongPressRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SwipeRequest represents the parameters for a swipe command
type SwipeRequest struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// PointerCommand forwards a raw pointer event to the bridge
func PointerCommand(ctx context.Context, b *bridge.Bridge, req PointerRequest) *CommandResponse {
	if err := b.OnPointerEvent(ctx, req.ButtonMask, req.X, req.Y); err != nil {
		return NewErrorResponse(fmt.Errorf("pointer event failed: %w", err))
	}

	return NewSuccessResponse(nil)
}

// KeyCommand forwards a raw key event to the bridge
func KeyCommand(ctx context.Context, b *bridge.Bridge, req KeyRequest) *CommandResponse {
	if err := b.OnKeyEvent(ctx, req.Down, req.Keysym); err != nil {
		return NewErrorResponse(fmt.Errorf("key event failed: %w", err))
	}

	return NewSuccessResponse(nil)
}

// CutTextCommand copies text to the device clipboard
func CutTextCommand(ctx context.Context, b *bridge.Bridge, req CutTextRequest) *CommandResponse {
	if err := b.OnCutText(ctx, req.Text); err != nil {
		return NewErrorResponse(fmt.Errorf("cut text failed: %w", err))
	}

	return NewSuccessResponse(nil)
}

// ScaleCommand changes the coordinate scale factor
func ScaleCommand(b *bridge.Bridge, req ScaleRequest) *CommandResponse {
	if err := b.SetScale(req.Factor); err != nil {
		return NewErrorResponse(fmt.Errorf("set scaling failed: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"ok":    true,
		"scale": b.Scale(),
	})
}

// StatusCommand reports the bridge state
func StatusCommand(b *bridge.Bridge) *CommandResponse {
	return NewSuccessResponse(b.Status())
}

// TapCommand presses and releases the primary button at one point
func TapCommand(ctx context.Context, b *bridge.Bridge, req TapRequest) *CommandResponse {
	if req.X < 0 || req.Y < 0 {
		return NewErrorResponse(fmt.Errorf("x and y coordinates must be non-negative, got x=%d, y=%d", req.X, req.Y))
	}

	events := []PointerRequest{
		{ButtonMask: bridge.ButtonPrimary, X: req.X, Y: req.Y},
		{ButtonMask: 0, X: req.X, Y: req.Y},
	}
	if err := sendPointerEvents(ctx, b, events); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to tap: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Tapped at (%d,%d)", req.X, req.Y),
	})
}

// LongPressCommand presses the secondary button at one point
func LongPressCommand(ctx context.Context, b *bridge.Bridge, req LongPressRequest) *CommandResponse {
	if req.X < 0 || req.Y < 0 {
		return NewErrorResponse(fmt.Errorf("x and y coordinates must be non-negative, got x=%d, y=%d", req.X, req.Y))
	}

	events := []PointerRequest{
		{ButtonMask: bridge.ButtonSecondary, X: req.X, Y: req.Y},
		{ButtonMask: 0, X: req.X, Y: req.Y},
	}
	if err := sendPointerEvents(ctx, b, events); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to long press: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Long pressed at (%d,%d)", req.X, req.Y),
	})
}

// KeyPressCommand holds the given keys down in order, then releases them in
// reverse order, the way a user presses a chord.
func KeyPressCommand(ctx context.Context, b *bridge.Bridge, keysyms []uint32) *CommandResponse {
	if len(keysyms) == 0 {
		return NewErrorResponse(fmt.Errorf("at least one key is required"))
	}

	var err error
	for _, keysym := range keysyms {
		if err = b.OnKeyEvent(ctx, true, keysym); err != nil {
			break
		}
	}
	// release everything even after a failure so no modifier stays stuck
	for i := len(keysyms) - 1; i >= 0; i-- {
		if upErr := b.OnKeyEvent(ctx, false, keysyms[i]); upErr != nil && err == nil {
			err = upErr
		}
	}
	if err != nil {
		return NewErrorResponse(fmt.Errorf("failed to press keys: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Pressed %d key(s)", len(keysyms)),
	})
}

// ToggleCounter records Ctrl-Alt-Del toggles for one-shot commands, which
// have no running server to hold the orientation workaround flag.
type ToggleCounter struct {
	n atomic.Int32
}

// Flip is the bridge toggle handler.
func (c *ToggleCounter) Flip() {
	c.n.Add(1)
}

func (c *ToggleCounter) Count() int {
	return int(c.n.Load())
}

// AddToggleReport notes fired toggles on a successful response. The flag
// only lives in a running server, so the response says so.
func AddToggleReport(response *CommandResponse, toggles int) *CommandResponse {
	if toggles == 0 || response.Status != "ok" {
		return response
	}

	data, ok := response.Data.(map[string]interface{})
	if !ok {
		data = map[string]interface{}{}
	}
	data["orientationWorkaroundToggles"] = toggles
	data["note"] = "the orientation workaround flag is kept by 'server start'; this command does not persist it"
	response.Data = data
	return response
}

// swipeSteps is how many intermediate move events a synthetic swipe has
const swipeSteps = 8

// SwipeCommand drags the primary button from one point to another
func SwipeCommand(ctx context.Context, b *bridge.Bridge, req SwipeRequest) *CommandResponse {
	events := []PointerRequest{{ButtonMask: bridge.ButtonPrimary, X: req.X1, Y: req.Y1}}
	for i := 1; i < swipeSteps; i++ {
		events = append(events, PointerRequest{
			ButtonMask: bridge.ButtonPrimary,
			X:          req.X1 + (req.X2-req.X1)*i/swipeSteps,
			Y:          req.Y1 + (req.Y2-req.Y1)*i/swipeSteps,
		})
	}
	events = append(events, PointerRequest{ButtonMask: 0, X: req.X2, Y: req.Y2})

	if err := sendPointerEvents(ctx, b, events); err != nil {
		return NewErrorResponse(fmt.Errorf("failed to swipe: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Swiped from (%d,%d) to (%d,%d)", req.X1, req.Y1, req.X2, req.Y2),
	})
}

func sendPointerEvents(ctx context.Context, b *bridge.Bridge, events []PointerRequest) error {
	for _, ev := range events {
		if err := b.OnPointerEvent(ctx, ev.ButtonMask, ev.X, ev.Y); err != nil {
			return err
		}
	}
	return nil
}
