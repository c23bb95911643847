// Package bridge turns remote pointer, key and clipboard events into
// gestures and system actions on an attached platform.
//
// Event methods (OnPointerEvent, OnKeyEvent, OnCutText, Status) must be
// called from one goroutine at a time. Attach, Detach and SetScale may be
// called from anywhere.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/mobile-next/droidinput/executor"
	"github.com/mobile-next/droidinput/gesture"
	"github.com/mobile-next/droidinput/keys"
	"github.com/mobile-next/droidinput/utils"
)

// RFB pointer button mask bits.
const (
	ButtonPrimary   uint8 = 1 << 0
	ButtonSecondary uint8 = 1 << 2
	ButtonWheelUp   uint8 = 1 << 3
	ButtonWheelDown uint8 = 1 << 4
)

var (
	ErrNotAttached  = errors.New("bridge is not attached to a platform")
	ErrInvalidScale = errors.New("scale factor must be a positive finite number")
)

// Status is a snapshot of the bridge state.
type Status struct {
	Attached     bool    `json:"attached"`
	Scale        float64 `json:"scale"`
	ButtonDown   bool    `json:"buttonDown"`
	GestureOpen  bool    `json:"gestureOpen"`
	ExecutorBusy bool    `json:"executorBusy"`
}

type attachment struct {
	platform Platform
}

// Bridge owns the gesture translator, the key combo tracker and the command
// executor for one remote session.
type Bridge struct {
	translator *gesture.Translator
	keys       *keys.Tracker
	executor   *executor.Executor
	dispatcher GestureDispatcher
	onToggle   func()

	attached   atomic.Pointer[attachment]
	scaleBits  atomic.Uint64
	buttonDown bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithGestureDispatcher replaces the default `input` command dispatcher.
func WithGestureDispatcher(d GestureDispatcher) Option {
	return func(b *Bridge) {
		b.dispatcher = d
	}
}

// WithToggleHandler sets what Ctrl-Alt-Del does.
func WithToggleHandler(fn func()) Option {
	return func(b *Bridge) {
		b.onToggle = fn
	}
}

// WithCombos replaces the default key combos.
func WithCombos(combos ...keys.Combo) Option {
	return func(b *Bridge) {
		b.keys = keys.NewTracker(combos...)
	}
}

// New creates a detached bridge with a scale factor of 1.
func New(exec *executor.Executor, opts ...Option) *Bridge {
	b := &Bridge{
		translator: gesture.NewTranslator(),
		keys:       keys.NewTracker(),
		executor:   exec,
	}
	b.dispatcher = &CommandDispatcher{Executor: exec}
	b.scaleBits.Store(math.Float64bits(1.0))

	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach connects the bridge to its platform. Attaching again replaces the
// previous platform.
func (b *Bridge) Attach(p Platform) {
	b.attached.Store(&attachment{platform: p})
	utils.Info("Input bridge attached")
}

// Detach disconnects the platform. Subsequent events fail with ErrNotAttached.
func (b *Bridge) Detach() {
	if b.attached.Swap(nil) != nil {
		utils.Info("Input bridge detached")
	}
}

func (b *Bridge) Attached() bool {
	return b.attached.Load() != nil
}

func (b *Bridge) Executor() *executor.Executor {
	return b.executor
}

func (b *Bridge) platform() (Platform, error) {
	a := b.attached.Load()
	if a == nil {
		return nil, ErrNotAttached
	}
	return a.platform, nil
}

// Scale returns the divisor applied to incoming coordinates.
func (b *Bridge) Scale() float64 {
	return math.Float64frombits(b.scaleBits.Load())
}

// SetScale sets the divisor applied to incoming coordinates.
func (b *Bridge) SetScale(factor float64) error {
	if !b.Attached() {
		utils.Warn("setScale: %v", ErrNotAttached)
		return ErrNotAttached
	}
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		utils.Warn("setScale: rejected %v: %v", factor, ErrInvalidScale)
		return fmt.Errorf("%w: got %v", ErrInvalidScale, factor)
	}

	b.scaleBits.Store(math.Float64bits(factor))
	utils.Verbose("Scale factor set to %v", factor)
	return nil
}

// OnPointerEvent handles one RFB pointer event.
func (b *Bridge) OnPointerEvent(ctx context.Context, buttonMask uint8, x, y int) error {
	p, err := b.platform()
	if err != nil {
		utils.Warn("onPointerEvent: %v", err)
		return err
	}

	scale := b.Scale()
	fx := float64(x) / scale
	fy := float64(y) / scale

	var errs []error
	primary := buttonMask&ButtonPrimary != 0

	switch {
	case primary && !b.buttonDown:
		b.buttonDown = true
		errs = append(errs, b.translator.Down(fx, fy))
	case primary && b.buttonDown:
		errs = append(errs, b.translator.Move(fx, fy))
	case !primary && b.buttonDown:
		b.buttonDown = false
		intent, err := b.translator.Up(fx, fy)
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, b.dispatch(ctx, intent))
		}
	}

	if buttonMask&ButtonSecondary != 0 {
		errs = append(errs, b.dispatch(ctx, b.translator.LongPress(fx, fy)))
	}

	if buttonMask&(ButtonWheelUp|ButtonWheelDown) != 0 {
		height, err := p.DisplayHeight(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("display height: %w", err))
		} else {
			amount := float64(height / 2)
			if buttonMask&ButtonWheelUp != 0 {
				errs = append(errs, b.dispatch(ctx, b.translator.Scroll(fx, fy, -amount)))
			}
			if buttonMask&ButtonWheelDown != 0 {
				errs = append(errs, b.dispatch(ctx, b.translator.Scroll(fx, fy, amount)))
			}
		}
	}

	if err := errors.Join(errs...); err != nil {
		utils.Warn("onPointerEvent: mask=%#x x=%d y=%d: %v", buttonMask, x, y, err)
		return err
	}
	return nil
}

// dispatch sends an intent to the dispatcher. An intent rejected because
// another command is still running is dropped without error.
func (b *Bridge) dispatch(ctx context.Context, intent gesture.Intent) error {
	utils.Verbose("Dispatching %s", intent)

	err := b.dispatcher.Dispatch(ctx, intent)
	if errors.Is(err, executor.ErrBusy) {
		utils.Verbose("Dropped %s: %v", intent, err)
		return nil
	}
	return err
}

// OnKeyEvent handles one RFB key event.
func (b *Bridge) OnKeyEvent(ctx context.Context, down bool, keysym uint32) error {
	utils.Verbose("onKeyEvent: keysym %#x down %v", keysym, down)

	p, err := b.platform()
	if err != nil {
		utils.Warn("onKeyEvent: %v", err)
		return err
	}

	var errs []error
	for _, action := range b.keys.OnKey(keysym, down) {
		utils.Info("onKeyEvent: got %s", b.keys.ComboName(action))

		switch action {
		case keys.ActionToggleOrientationWorkaround:
			if b.onToggle != nil {
				b.onToggle()
			}
		case keys.ActionRecents:
			errs = append(errs, p.PerformGlobalAction(ctx, GlobalActionRecents))
		case keys.ActionHome:
			errs = append(errs, p.PerformGlobalAction(ctx, GlobalActionHome))
		case keys.ActionBack:
			errs = append(errs, p.PerformGlobalAction(ctx, GlobalActionBack))
		}
	}

	if err := errors.Join(errs...); err != nil {
		utils.Warn("onKeyEvent: %v", err)
		return err
	}
	return nil
}

// OnCutText copies text to the platform clipboard as-is.
func (b *Bridge) OnCutText(ctx context.Context, text string) error {
	utils.Verbose("onCutText: %d bytes", len(text))

	p, err := b.platform()
	if err != nil {
		utils.Warn("onCutText: %v", err)
		return err
	}

	if err := p.SetClipboardText(ctx, text); err != nil {
		utils.Warn("onCutText: %v", err)
		return err
	}
	return nil
}

// Status returns a snapshot of the bridge state.
func (b *Bridge) Status() Status {
	return Status{
		Attached:     b.Attached(),
		Scale:        b.Scale(),
		ButtonDown:   b.buttonDown,
		GestureOpen:  b.translator.InProgress(),
		ExecutorBusy: b.executor != nil && b.executor.Busy(),
	}
}
