package joystick

import (
	"fmt"

	"github.com/karalabe/hid"
)

// HID generic desktop usages that identify game controllers.
const (
	usagePageGenericDesktop = 0x01
	usageJoystick           = 0x04
	usageGamepad            = 0x05
	usageMultiAxis          = 0x08
)

// HIDDevice is a game controller as seen by the raw HID layer.
type HIDDevice struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
	Interface    int
}

func (d HIDDevice) String() string {
	return fmt.Sprintf("%04x:%04x %s %s (%s)", d.VendorID, d.ProductID, d.Manufacturer, d.Product, d.Path)
}

// ListHID returns HID game controllers. It is empty when the binary was
// built without cgo.
func ListHID() []HIDDevice {
	if !hid.Supported() {
		return nil
	}
	return gameControllers(hid.Enumerate(0, 0))
}

func gameControllers(infos []hid.DeviceInfo) []HIDDevice {
	var out []HIDDevice
	for _, info := range infos {
		if info.UsagePage != usagePageGenericDesktop {
			continue
		}
		switch info.Usage {
		case usageJoystick, usageGamepad, usageMultiAxis:
		default:
			continue
		}
		out = append(out, HIDDevice{
			Path:         info.Path,
			VendorID:     info.VendorID,
			ProductID:    info.ProductID,
			Manufacturer: info.Manufacturer,
			Product:      info.Product,
			Interface:    info.Interface,
		})
	}
	return out
}
