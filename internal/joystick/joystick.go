// Package joystick finds joystick-class input devices and turns their button
// activity into Events.
package joystick

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/nealhardesty/j2m/internal/config"
)

var (
	ErrSubsystemInit = errors.New("error initializing joystick subsystem")
	ErrNoDevices     = errors.New("no joysticks detected")
	ErrDeviceIndex   = errors.New("invalid joystick index")
	ErrButtonIndex   = errors.New("invalid button index")
)

// DeviceInfo describes one detected joystick.
type DeviceInfo struct {
	Index       int
	Name        string
	ButtonCount int
	Path        string
	Vendor      uint16
	Product     uint16

	codes []int // evdev key code for each button index
}

type EventKind int

const (
	ButtonDown EventKind = iota
	ButtonUp
	Quit
)

func (k EventKind) String() string {
	switch k {
	case ButtonDown:
		return "button-down"
	case ButtonUp:
		return "button-up"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a button transition or the end of the device stream.
type Event struct {
	Kind   EventKind
	Button int
	Time   time.Time
}

// Source delivers events from one opened device. The channel is closed after
// the device goes away or Close is called.
type Source interface {
	Events() <-chan Event
	Close() error
}

// Subsystem is the OS input layer: it lists devices and opens one of them.
type Subsystem interface {
	Enumerate() ([]DeviceInfo, error)
	Open(DeviceInfo) (Source, error)
}

// Detect enumerates devices through sub and logs what it found.
func Detect(log zerolog.Logger, sub Subsystem) ([]DeviceInfo, error) {
	devices, err := sub.Enumerate()
	if err != nil {
		log.Error().Msgf("Error initializing or logging joysticks: %v", err)
		return nil, err
	}
	if len(devices) == 0 {
		log.Info().Msg("No joysticks detected.")
		return nil, ErrNoDevices
	}

	log.Info().Msgf("%d joystick(s) detected:", len(devices))
	for _, d := range devices {
		log.Info().Msgf("Joystick %d: %s with %d button(s)", d.Index, d.Name, d.ButtonCount)
	}
	return devices, nil
}

// Validate checks the configured device and button against what is attached.
func Validate(s config.Settings, devices []DeviceInfo) error {
	if s.Device >= len(devices) {
		return fmt.Errorf("%w in config: %d. Only %d device(s) detected",
			ErrDeviceIndex, s.Device, len(devices))
	}
	d := devices[s.Device]
	if s.Button >= d.ButtonCount {
		return fmt.Errorf("%w in config for device %d: %d. This joystick has %d buttons",
			ErrButtonIndex, s.Device, s.Button, d.ButtonCount)
	}
	return nil
}

// linux/input-event-codes.h
const (
	evKey = 0x01
	evAbs = 0x03

	absX     = 0x00
	absY     = 0x01
	absRX    = 0x03
	absBrake = 0x0a

	btn1        = 0x101
	btnJoystick = 0x120
	btnTrigger  = 0x120
	btnA        = 0x130
	keyMax      = 0x2ff

	valueRelease = 0
	valuePress   = 1
)

// buttonCodes orders a device's key codes the way SDL numbers joystick
// buttons: BTN_JOYSTICK..KEY_MAX first, then 0..BTN_JOYSTICK.
func buttonCodes(keys []int) []int {
	var high, low []int
	for _, c := range keys {
		switch {
		case c >= btnJoystick && c <= keyMax:
			high = append(high, c)
		case c >= 0 && c < btnJoystick:
			low = append(low, c)
		}
	}
	sort.Ints(high)
	sort.Ints(low)
	return append(high, low...)
}

// isJoystick applies SDL's device class rule: an X/Y pair with a trigger,
// south face or BTN_1 button, or any of ABS_RX..ABS_BRAKE.
func isJoystick(caps map[int][]int) bool {
	abs := make(map[int]bool, len(caps[evAbs]))
	for _, c := range caps[evAbs] {
		if c >= absRX && c <= absBrake {
			return true
		}
		abs[c] = true
	}
	if !abs[absX] || !abs[absY] {
		return false
	}
	for _, c := range caps[evKey] {
		if c == btnTrigger || c == btnA || c == btn1 {
			return true
		}
	}
	return false
}

func codeIndex(codes []int) map[uint16]int {
	m := make(map[uint16]int, len(codes))
	for i, c := range codes {
		m[uint16(c)] = i
	}
	return m
}

// translate maps a raw input event to a button Event. Autorepeat and
// non-key events are dropped.
func translate(index map[uint16]int, typ, code uint16, value int32, at time.Time) (Event, bool) {
	if typ != evKey {
		return Event{}, false
	}
	button, ok := index[code]
	if !ok {
		return Event{}, false
	}
	switch value {
	case valuePress:
		return Event{Kind: ButtonDown, Button: button, Time: at}, true
	case valueRelease:
		return Event{Kind: ButtonUp, Button: button, Time: at}, true
	default:
		return Event{}, false
	}
}
