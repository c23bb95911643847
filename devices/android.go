package devices

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/mobile-next/droidinput/bridge"
	"github.com/mobile-next/droidinput/executor"
)

// Android key codes used for global actions.
const (
	KeycodeHome      = 3
	KeycodeBack      = 4
	KeycodeAppSwitch = 187
)

var globalActionKeycodes = map[bridge.GlobalAction]int{
	bridge.GlobalActionHome:    KeycodeHome,
	bridge.GlobalActionBack:    KeycodeBack,
	bridge.GlobalActionRecents: KeycodeAppSwitch,
}

// AndroidDevice is the bridge platform for one Android device. Commands go
// straight to its runner, not through the gesture executor.
type AndroidDevice struct {
	id     string
	name   string
	runner executor.Runner
}

// NewAndroidDevice creates a device that runs shell commands with runner.
// id is used as the display geometry cache key.
func NewAndroidDevice(id string, runner executor.Runner) *AndroidDevice {
	return &AndroidDevice{id: id, name: id, runner: runner}
}

func (d *AndroidDevice) ID() string {
	return d.id
}

func (d *AndroidDevice) Name() string {
	return d.name
}

func (d *AndroidDevice) Platform() string {
	return "android"
}

func (d *AndroidDevice) DeviceType() string {
	if strings.HasPrefix(d.id, "emulator-") {
		return "emulator"
	} else {
		return "real"
	}
}

func (d *AndroidDevice) runShell(ctx context.Context, argv ...string) ([]byte, error) {
	exitCode, output, err := d.runner.Run(ctx, argv)
	if err != nil {
		return output, err
	}
	if exitCode != 0 {
		return output, fmt.Errorf("%s exited with status %d: %s", argv[0], exitCode, strings.TrimSpace(string(output)))
	}
	return output, nil
}

// PerformGlobalAction sends the key event for a navigation action.
func (d *AndroidDevice) PerformGlobalAction(ctx context.Context, action bridge.GlobalAction) error {
	keycode, exists := globalActionKeycodes[action]
	if !exists {
		return fmt.Errorf("AndroidDevice: unsupported global action: %s", action)
	}

	output, err := d.runShell(ctx, "input", "keyevent", strconv.Itoa(keycode))
	if err != nil {
		return fmt.Errorf("AndroidDevice: failed to perform %s: %v\nOutput: %s", action, err, string(output))
	}

	return nil
}

// SetClipboardText replaces the primary clip.
func (d *AndroidDevice) SetClipboardText(ctx context.Context, text string) error {
	output, err := d.runShell(ctx, "cmd", "clipboard", "set-primary-clip", text)
	if err != nil {
		return fmt.Errorf("AndroidDevice: failed to set clipboard: %v\nOutput: %s", err, string(output))
	}

	return nil
}

// DisplayHeight returns the current display height in pixels.
func (d *AndroidDevice) DisplayHeight(ctx context.Context) (int, error) {
	size, err := d.ScreenSize(ctx)
	if err != nil {
		return 0, err
	}
	return size.Height, nil
}

// ScreenSize returns the effective display size, using the cache when fresh.
func (d *AndroidDevice) ScreenSize(ctx context.Context) (ScreenSize, error) {
	if size, ok := displayCache.Get(d.id); ok {
		return size, nil
	}

	output, err := d.runShell(ctx, "wm", "size")
	if err != nil {
		return ScreenSize{}, fmt.Errorf("AndroidDevice: failed to query display size: %v", err)
	}

	size, err := parseWmSize(string(output))
	if err != nil {
		return ScreenSize{}, err
	}

	displayCache.Add(d.id, size)
	return size, nil
}

var wmSizeRe = regexp.MustCompile(`(Physical|Override) size:\s*(\d+)x(\d+)`)

// parseWmSize parses `wm size` output. An override size wins over the
// physical size.
func parseWmSize(output string) (ScreenSize, error) {
	var size ScreenSize
	found := false

	for _, m := range wmSizeRe.FindAllStringSubmatch(output, -1) {
		width, _ := strconv.Atoi(m[2])
		height, _ := strconv.Atoi(m[3])
		if m[1] == "Override" || !found {
			size = ScreenSize{Width: width, Height: height}
			found = true
		}
	}

	if !found {
		return ScreenSize{}, fmt.Errorf("unexpected wm size output: %q", strings.TrimSpace(output))
	}
	return size, nil
}

func parseAdbDevicesOutput(output string) []DeviceInfo {
	var devices []DeviceInfo

	lines := strings.Split(output, "\n")
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		parts := strings.Fields(line)
		if len(parts) >= 2 {
			deviceID := parts[0]
			d := DeviceInfo{ID: deviceID, Name: deviceID, Platform: "android", Type: "real", State: parts[1]}
			if strings.HasPrefix(deviceID, "emulator-") {
				d.Type = "emulator"
			}
			devices = append(devices, d)
		}
	}

	return devices
}

func getAndroidDeviceName(deviceID string) string {
	modelCmd := exec.Command("adb", "-s", deviceID, "shell", "getprop", "ro.product.model")
	modelOutput, err := modelCmd.CombinedOutput()
	if err == nil && len(modelOutput) > 0 {
		return strings.TrimSpace(string(modelOutput))
	}

	return deviceID
}

// GetAndroidDevices lists devices visible to adb. Offline and unauthorized
// devices are skipped when onlineOnly is set.
func GetAndroidDevices(onlineOnly bool) ([]DeviceInfo, error) {
	command := exec.Command("adb", "devices")
	output, err := command.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to run 'adb devices': %v", err)
	}

	devices := make([]DeviceInfo, 0)
	for _, d := range parseAdbDevicesOutput(string(output)) {
		if d.State != StateOnline {
			if onlineOnly {
				continue
			}
		} else {
			// getprop only answers on online devices
			d.Name = getAndroidDeviceName(d.ID)
		}
		devices = append(devices, d)
	}
	return devices, nil
}
