package devices

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// display size changes on rotation, so cached sizes expire
	displayCacheSize = 16
	displayCacheTTL  = 30 * time.Second
)

var displayCache = expirable.NewLRU[string, ScreenSize](displayCacheSize, nil, displayCacheTTL)

// InvalidateDisplayCache forgets the cached size of a device.
func InvalidateDisplayCache(deviceID string) {
	displayCache.Remove(deviceID)
}

// DeviceInfo represents the JSON-friendly device information
type DeviceInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Type     string `json:"type"`
	State    string `json:"state"`
}

// StateOnline is the adb state of a device that accepts shell commands.
const StateOnline = "device"

type ScreenSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
