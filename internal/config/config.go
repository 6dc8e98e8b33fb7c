package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/ini.v1"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "config.ini"

var (
	ErrConfigMissing = errors.New("configuration file not found or invalid")
	ErrKeyMissing    = errors.New("missing configuration key")
	ErrValueInvalid  = errors.New("invalid value in configuration")
)

// Settings is the validated, immutable configuration of one run.
type Settings struct {
	Device     int
	Button     int
	CenterX    float64
	CenterY    float64
	Key        string // optional key tapped after each recenter
	ExitOnQuit bool
}

// optional keys; the required numbers are parsed as decimal by Load
type joystickSection struct {
	ExitOnQuit bool `ini:"exit_on_quit"`
}

type keyboardSection struct {
	Key string `ini:"key"`
}

type schema struct {
	Joystick joystickSection `ini:"Joystick"`
	Keyboard keyboardSection `ini:"Keyboard"`
}

type field struct {
	section, key string
	format       *regexp.Regexp
}

var (
	decimalInt   = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalFloat = regexp.MustCompile(`^[+-]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

var required = []field{
	{"Joystick", "device", decimalInt},
	{"Joystick", "button", decimalInt},
	{"Mouse", "center_x", decimalFloat},
	{"Mouse", "center_y", decimalFloat},
}

// Load reads path and returns validated settings.
func Load(path string) (Settings, error) {
	if path == "" {
		path = DefaultFile
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:        true,
		AllowNonUniqueSections: true,
	}, path)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: %s: %v", ErrConfigMissing, path, err)
	}

	seen := make(map[string]bool)
	for _, sec := range f.Sections() {
		if seen[sec.Name()] {
			return Settings{}, fmt.Errorf("%w: %s: section %q already exists", ErrConfigMissing, path, sec.Name())
		}
		seen[sec.Name()] = true
	}

	values := make([]string, len(required))
	for i, r := range required {
		sec, err := f.GetSection(r.section)
		if err != nil || !sec.HasKey(r.key) {
			return Settings{}, fmt.Errorf("%w: '%s.%s'", ErrKeyMissing, r.section, r.key)
		}
		v := sec.Key(r.key).String()
		if !r.format.MatchString(v) {
			return Settings{}, fmt.Errorf("%w: %s.%s = %q is not a decimal number", ErrValueInvalid, r.section, r.key, v)
		}
		values[i] = v
	}

	var s schema
	if err := f.StrictMapTo(&s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrValueInvalid, err)
	}

	settings := Settings{Key: s.Keyboard.Key, ExitOnQuit: s.Joystick.ExitOnQuit}
	if settings.Device, err = strconv.Atoi(values[0]); err != nil {
		return Settings{}, fmt.Errorf("%w: device: %v", ErrValueInvalid, err)
	}
	if settings.Button, err = strconv.Atoi(values[1]); err != nil {
		return Settings{}, fmt.Errorf("%w: button: %v", ErrValueInvalid, err)
	}
	if settings.CenterX, err = strconv.ParseFloat(values[2], 64); err != nil {
		return Settings{}, fmt.Errorf("%w: center_x: %v", ErrValueInvalid, err)
	}
	if settings.CenterY, err = strconv.ParseFloat(values[3], 64); err != nil {
		return Settings{}, fmt.Errorf("%w: center_y: %v", ErrValueInvalid, err)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks the ranges of every field that has one.
func (s Settings) Validate() error {
	if s.Device < 0 {
		return fmt.Errorf("%w: device must be >= 0, got %d", ErrValueInvalid, s.Device)
	}
	if s.Button < 0 {
		return fmt.Errorf("%w: button must be >= 0, got %d", ErrValueInvalid, s.Button)
	}
	// written as a negated range so NaN is rejected too
	if !(s.CenterX >= 0 && s.CenterX <= 1) || !(s.CenterY >= 0 && s.CenterY <= 1) {
		return fmt.Errorf("%w: center_x and center_y must be between 0.0 and 1.0 (got %g, %g)",
			ErrValueInvalid, s.CenterX, s.CenterY)
	}
	return nil
}
