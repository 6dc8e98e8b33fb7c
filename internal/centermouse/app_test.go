package centermouse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nealhardesty/j2m/internal/config"
	"github.com/nealhardesty/j2m/internal/cursor"
	"github.com/nealhardesty/j2m/internal/joystick"
	"github.com/nealhardesty/j2m/internal/keyboard"
)

type fakeSubsystem struct {
	devices    []joystick.DeviceInfo
	src        *fakeSource
	enumerated int
	opened     []string
}

func (f *fakeSubsystem) Enumerate() ([]joystick.DeviceInfo, error) {
	f.enumerated++
	return f.devices, nil
}

func (f *fakeSubsystem) Open(d joystick.DeviceInfo) (joystick.Source, error) {
	f.opened = append(f.opened, d.Name)
	return f.src, nil
}

type fakeScreen struct {
	moves []cursor.Point
}

func (s *fakeScreen) Size() (int, int) { return 1920, 1080 }
func (s *fakeScreen) Move(x, y int)    { s.moves = append(s.moves, cursor.Point{X: x, Y: y}) }

func configFile(t *testing.T, device, button int, cx, cy, extra string) string {
	t.Helper()
	body := "[Joystick]\n" +
		"device = " + strconv.Itoa(device) + " ; stick\n" +
		"button = " + strconv.Itoa(button) + "\n" +
		"[Mouse]\n" +
		"center_x = " + cx + "\n" +
		"center_y = " + cy + "\n" + extra
	path := filepath.Join(t.TempDir(), config.DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func twoSticks() []joystick.DeviceInfo {
	return []joystick.DeviceInfo{
		{Index: 0, Name: "stick", ButtonCount: 3},
		{Index: 1, Name: "throttle", ButtonCount: 8},
	}
}

func TestRun_InvalidCenterFailsBeforeEnumeration(t *testing.T) {
	sub := &fakeSubsystem{devices: twoSticks()}
	err := Run(context.Background(), Options{
		ConfigPath: configFile(t, 0, 0, "1.5", "0.5", ""),
		Subsystem:  sub,
		Log:        zerolog.Nop(),
	})

	require.ErrorIs(t, err, config.ErrValueInvalid)
	assert.Zero(t, sub.enumerated)
}

func TestRun_UnknownKeyFailsBeforeEnumeration(t *testing.T) {
	sub := &fakeSubsystem{devices: twoSticks()}
	err := Run(context.Background(), Options{
		ConfigPath: configFile(t, 0, 0, "0.5", "0.5", "[Keyboard]\nkey = f99\n"),
		Subsystem:  sub,
		Log:        zerolog.Nop(),
	})

	require.ErrorIs(t, err, config.ErrValueInvalid)
	assert.Zero(t, sub.enumerated)
}

func TestRun_NoDevices(t *testing.T) {
	var buf bytes.Buffer
	err := Run(context.Background(), Options{
		ConfigPath: configFile(t, 0, 0, "0.5", "0.5", ""),
		Subsystem:  &fakeSubsystem{},
		Log:        zerolog.New(&buf),
	})

	require.ErrorIs(t, err, joystick.ErrNoDevices)
	assert.Contains(t, buf.String(), "No joysticks detected.")
}

func TestRun_DeviceIndexInvalid(t *testing.T) {
	err := Run(context.Background(), Options{
		ConfigPath: configFile(t, 2, 0, "0.5", "0.5", ""),
		Subsystem:  &fakeSubsystem{devices: twoSticks()},
		Log:        zerolog.Nop(),
	})
	assert.ErrorIs(t, err, joystick.ErrDeviceIndex)
}

func TestRun_ButtonIndexInvalid(t *testing.T) {
	err := Run(context.Background(), Options{
		ConfigPath: configFile(t, 0, 5, "0.5", "0.5", ""),
		Subsystem:  &fakeSubsystem{devices: twoSticks()},
		Log:        zerolog.Nop(),
	})
	assert.ErrorIs(t, err, joystick.ErrButtonIndex)
}

func TestRun_RecentersAndShutsDown(t *testing.T) {
	var buf bytes.Buffer
	src := newFakeSource(up(4), up(2))
	sub := &fakeSubsystem{devices: twoSticks(), src: src}
	screen := &fakeScreen{}
	tap := &fakeTapper{}
	var gotKey keyboard.Key

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Run(ctx, Options{
		ConfigPath: configFile(t, 1, 4, "0.5", "0.5", "[Keyboard]\nkey = ctrl+home\n"),
		Subsystem:  sub,
		Screen:     screen,
		NewKeyboard: func(k keyboard.Key) (Tapper, error) {
			gotKey = k
			return tap, nil
		},
		Interval: 5 * time.Millisecond,
		Pause:    time.Millisecond,
		Log:      zerolog.New(&buf),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"throttle"}, sub.opened)
	assert.Equal(t, []cursor.Point{{X: 0, Y: 0}, {X: 960, Y: 540}}, screen.moves)
	assert.Equal(t, 1, tap.taps)
	assert.True(t, gotKey.Ctrl)
	assert.True(t, src.isClosed())

	out := buf.String()
	assert.Contains(t, out, "Joystick initialized: throttle")
	assert.Contains(t, out, "Button 4 released!")
	assert.NotContains(t, out, "Button 2 released!")
	assert.Contains(t, out, "Joystick subsystem exited cleanly.")
}

func TestRun_UnexpectedErrorClosesDevice(t *testing.T) {
	src := newFakeSource(up(0))
	sub := &fakeSubsystem{devices: twoSticks(), src: src}

	err := Run(context.Background(), Options{
		ConfigPath: configFile(t, 0, 0, "0.5", "0.5", ""),
		Subsystem:  sub,
		Screen:     nil, // Center on a nil Screen panics inside the loop
		Interval:   5 * time.Millisecond,
		Log:        zerolog.Nop(),
	})

	require.ErrorIs(t, err, ErrUnexpected)
	assert.True(t, src.isClosed())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"clean stop", nil, 0},
		{"unexpected", ErrUnexpected, 0},
		{"wrapped unexpected", fmt.Errorf("%w: display went away", ErrUnexpected), 0},
		{"missing config", fmt.Errorf("%w: config.ini", config.ErrConfigMissing), 1},
		{"bad value", config.ErrValueInvalid, 1},
		{"no joysticks", joystick.ErrNoDevices, 1},
		{"device index", fmt.Errorf("%w in config: 4", joystick.ErrDeviceIndex), 1},
		{"keyboard init", errors.New("uinput unavailable"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitCode_FromRun(t *testing.T) {
	sub := &fakeSubsystem{}
	err := Run(context.Background(), Options{
		ConfigPath: configFile(t, 0, 0, "0.5", "0.5", ""),
		Subsystem:  sub,
		Log:        zerolog.Nop(),
	})
	assert.Equal(t, 1, ExitCode(err))
}
