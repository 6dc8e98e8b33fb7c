// Package centermouse wires configuration, the joystick and the cursor into
// the recenter loop.
package centermouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nealhardesty/j2m/internal/config"
	"github.com/nealhardesty/j2m/internal/cursor"
	"github.com/nealhardesty/j2m/internal/joystick"
	"github.com/nealhardesty/j2m/internal/keyboard"
)

// Options carries the platform bindings so they can be swapped in tests.
type Options struct {
	ConfigPath  string
	Subsystem   joystick.Subsystem
	Screen      cursor.Screen
	NewKeyboard func(keyboard.Key) (Tapper, error)
	Interval    time.Duration // poll interval, defaults to DefaultInterval
	Pause       time.Duration // origin pause, defaults to cursor.DefaultPause
	Log         zerolog.Logger
}

// Run loads and validates the configuration, opens the configured joystick
// and blocks in the event loop until ctx is cancelled. Startup failures are
// logged and returned; an error wrapping ErrUnexpected means the loop failed
// after startup.
func Run(ctx context.Context, opts Options) error {
	log := opts.Log

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Error().Msg(err.Error())
		return err
	}

	var key keyboard.Key
	if settings.Key != "" {
		key, err = keyboard.ParseKey(settings.Key)
		if err != nil {
			err = fmt.Errorf("%w: Keyboard.key: %v", config.ErrValueInvalid, err)
			log.Error().Msg(err.Error())
			return err
		}
	}

	devices, err := joystick.Detect(log, opts.Subsystem)
	if err != nil {
		if errors.Is(err, joystick.ErrNoDevices) {
			log.Info().Msg("Exiting: No joysticks available.")
		}
		return err
	}

	if err := joystick.Validate(settings, devices); err != nil {
		log.Error().Msg(err.Error())
		return err
	}

	var tapper Tapper
	if settings.Key != "" && opts.NewKeyboard != nil {
		tapper, err = opts.NewKeyboard(key)
		if err != nil {
			log.Error().Err(err).Msg("keyboard initialization failed")
			return err
		}
	}

	device := devices[settings.Device]
	src, err := opts.Subsystem.Open(device)
	if err != nil {
		log.Error().Msgf("Error initializing or logging joysticks: %v", err)
		return err
	}
	defer func() {
		src.Close()
		log.Info().Msg("Joystick subsystem exited cleanly.")
	}()
	log.Info().Msgf("Joystick initialized: %s", device.Name)

	pause := opts.Pause
	if pause == 0 {
		pause = cursor.DefaultPause
	}

	loop := &Loop{
		Source:     src,
		Cursor:     cursor.NewController(opts.Screen, pause, log),
		Keyboard:   tapper,
		Button:     settings.Button,
		CenterX:    settings.CenterX,
		CenterY:    settings.CenterY,
		ExitOnQuit: settings.ExitOnQuit,
		Interval:   opts.Interval,
		Log:        log,
	}
	if err := loop.Run(ctx); err != nil {
		log.Error().Err(err).Msg("loop stopped")
		return err
	}
	return nil
}

// ExitCode maps the result of Run to the process exit status. Only startup
// failures are non-zero; a loop that stopped on ErrUnexpected exits 0.
func ExitCode(err error) int {
	if err == nil || errors.Is(err, ErrUnexpected) {
		return 0
	}
	return 1
}
