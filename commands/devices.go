package commands

import (
	"github.com/mobile-next/droidinput/devices"
)

// DevicesCommand lists Android devices visible to adb
func DevicesCommand(onlineOnly bool) *CommandResponse {
	deviceInfoList, err := devices.GetAndroidDevices(onlineOnly)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"devices": deviceInfoList,
	})
}
