//go:build !linux

package joystick

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
)

// Evdev is only backed by a real input layer on Linux.
type Evdev struct {
	Pattern string
	Log     zerolog.Logger
}

func (e *Evdev) Enumerate() ([]DeviceInfo, error) {
	return nil, fmt.Errorf("%w: joystick input is not supported on %s", ErrSubsystemInit, runtime.GOOS)
}

func (e *Evdev) Open(DeviceInfo) (Source, error) {
	return nil, fmt.Errorf("%w: joystick input is not supported on %s", ErrSubsystemInit, runtime.GOOS)
}
