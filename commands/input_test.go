package commands

import (
	"context"
	"sync"
	"testing"

	"github.com/mobile-next/droidinput/bridge"
	"github.com/mobile-next/droidinput/config"
	"github.com/mobile-next/droidinput/executor"
	"github.com/mobile-next/droidinput/keys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlatform struct {
	mu        sync.Mutex
	actions   []bridge.GlobalAction
	clipboard string
}

func (p *stubPlatform) PerformGlobalAction(ctx context.Context, action bridge.GlobalAction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, action)
	return nil
}

func (p *stubPlatform) SetClipboardText(ctx context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clipboard = text
	return nil
}

func (p *stubPlatform) DisplayHeight(ctx context.Context) (int, error) {
	return 1000, nil
}

func newCommandBridge(t *testing.T) (*bridge.Bridge, *stubPlatform, *[][]string) {
	t.Helper()
	var mu sync.Mutex
	var calls [][]string
	runner := executor.RunnerFunc(func(ctx context.Context, argv []string) (int, []byte, error) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, argv)
		return 0, nil, nil
	})

	b := bridge.New(executor.New(runner))
	p := &stubPlatform{}
	b.Attach(p)
	return b, p, &calls
}

func TestTapCommand(t *testing.T) {
	b, _, calls := newCommandBridge(t)

	resp := TapCommand(context.Background(), b, TapRequest{X: 100, Y: 200})
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, [][]string{{"input", "tap", "100", "200"}}, *calls)
}

func TestTapCommand_NegativeCoordinates(t *testing.T) {
	b, _, calls := newCommandBridge(t)

	resp := TapCommand(context.Background(), b, TapRequest{X: -1, Y: 5})
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, "non-negative")
	assert.Empty(t, *calls)
}

func TestSwipeCommand(t *testing.T) {
	b, _, calls := newCommandBridge(t)

	resp := SwipeCommand(context.Background(), b, SwipeRequest{X1: 100, Y1: 800, X2: 100, Y2: 200})
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, [][]string{{"input", "swipe", "100", "800", "100", "200", "100"}}, *calls)
	assert.False(t, b.Status().GestureOpen)
}

func TestLongPressCommand(t *testing.T) {
	b, _, calls := newCommandBridge(t)

	resp := LongPressCommand(context.Background(), b, LongPressRequest{X: 5, Y: 6})
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, [][]string{{"input", "swipe", "5", "6", "5", "6", "2000"}}, *calls)
}

func TestKeyCommand(t *testing.T) {
	b, p, _ := newCommandBridge(t)

	resp := KeyCommand(context.Background(), b, KeyRequest{Down: true, Keysym: keys.KeysymHome})
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []bridge.GlobalAction{bridge.GlobalActionHome}, p.actions)
}

func TestKeyPressCommand_Chord(t *testing.T) {
	b, p, _ := newCommandBridge(t)

	resp := KeyPressCommand(context.Background(), b, []uint32{keys.KeysymControlL, keys.KeysymShiftL, keys.KeysymEscape})
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []bridge.GlobalAction{bridge.GlobalActionRecents, bridge.GlobalActionBack}, p.actions)

	// a second chord fires again, so every key was released
	p.actions = nil
	resp = KeyPressCommand(context.Background(), b, []uint32{keys.KeysymControlL, keys.KeysymShiftL, keys.KeysymEscape})
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []bridge.GlobalAction{bridge.GlobalActionRecents, bridge.GlobalActionBack}, p.actions)
}

func TestKeyPressCommand_ReportsToggle(t *testing.T) {
	runner := executor.RunnerFunc(func(ctx context.Context, argv []string) (int, []byte, error) {
		return 0, nil, nil
	})
	counter := &ToggleCounter{}
	b := bridge.New(executor.New(runner), bridge.WithToggleHandler(counter.Flip))
	b.Attach(&stubPlatform{})

	resp := KeyPressCommand(context.Background(), b, []uint32{keys.KeysymControlL, keys.KeysymAltL, keys.KeysymDelete})
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, counter.Count())

	resp = AddToggleReport(resp, counter.Count())
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, 1, data["orientationWorkaroundToggles"])
	assert.Contains(t, data["note"], "server start")
}

func TestAddToggleReport_NoToggle(t *testing.T) {
	resp := AddToggleReport(NewSuccessResponse(nil), 0)
	assert.Nil(t, resp.Data)

	failed := AddToggleReport(NewErrorResponse(assert.AnError), 2)
	assert.Nil(t, failed.Data)
}

func TestKeyPressCommand_NoKeys(t *testing.T) {
	b, _, _ := newCommandBridge(t)

	resp := KeyPressCommand(context.Background(), b, nil)
	assert.Equal(t, "error", resp.Status)
}

func TestCutTextCommand(t *testing.T) {
	b, p, _ := newCommandBridge(t)

	resp := CutTextCommand(context.Background(), b, CutTextRequest{Text: "copied"})
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "copied", p.clipboard)
}

func TestScaleCommand(t *testing.T) {
	b, _, _ := newCommandBridge(t)

	resp := ScaleCommand(b, ScaleRequest{Factor: 2})
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2.0, b.Scale())

	resp = ScaleCommand(b, ScaleRequest{Factor: 0})
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2.0, b.Scale())
}

func TestPointerCommand_NotAttached(t *testing.T) {
	b, _, _ := newCommandBridge(t)
	b.Detach()

	resp := PointerCommand(context.Background(), b, PointerRequest{ButtonMask: 1})
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Error, bridge.ErrNotAttached.Error())
}

func TestStatusCommand(t *testing.T) {
	b, _, _ := newCommandBridge(t)

	resp := StatusCommand(b)
	require.Equal(t, "ok", resp.Status)
	status, ok := resp.Data.(bridge.Status)
	require.True(t, ok)
	assert.True(t, status.Attached)
	assert.Equal(t, 1.0, status.Scale)
}

func TestNewRunner(t *testing.T) {
	su, err := NewRunner(config.Config{Mode: config.ModeSu, SuBinary: "su"})
	require.NoError(t, err)
	assert.Equal(t, []string{"su", "-c", "input tap 1 2"}, su.(*executor.ExecRunner).CommandLine([]string{"input", "tap", "1", "2"}))

	adb, err := NewRunner(config.Config{Mode: config.ModeAdb, Serial: "emulator-5554"})
	require.NoError(t, err)
	assert.Equal(t, []string{"adb", "-s", "emulator-5554", "shell", "wm size"}, adb.(*executor.ExecRunner).CommandLine([]string{"wm", "size"}))

	_, err = NewRunner(config.Config{Mode: "ssh"})
	assert.Error(t, err)
}

func TestNewBridge(t *testing.T) {
	cfg := config.Default()
	cfg.Scale = 2

	b, err := NewBridge(cfg)
	require.NoError(t, err)
	assert.True(t, b.Attached())
	assert.Equal(t, 2.0, b.Scale())

	cfg.Scale = 0
	_, err = NewBridge(cfg)
	assert.Error(t, err)
}
