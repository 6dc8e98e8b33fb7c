package centermouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nealhardesty/j2m/internal/cursor"
	"github.com/nealhardesty/j2m/internal/joystick"
)

// DefaultInterval is the sleep after each drain of the event queue.
const DefaultInterval = 100 * time.Millisecond

var ErrUnexpected = errors.New("an unexpected error occurred")

// Centerer moves the cursor to a fractional screen position.
type Centerer interface {
	Center(ctx context.Context, fx, fy float64) (cursor.Point, error)
}

// Tapper sends the optional key press that follows a recenter.
type Tapper interface {
	Tap() error
}

// Loop watches one button and recenters the mouse whenever it is released.
type Loop struct {
	Source     joystick.Source
	Cursor     Centerer
	Keyboard   Tapper // nil disables the key tap
	Button     int
	CenterX    float64
	CenterY    float64
	ExitOnQuit bool
	Interval   time.Duration
	Log        zerolog.Logger

	events <-chan joystick.Event
	after  func(time.Duration) <-chan time.Time
}

// Run polls until ctx is cancelled, or until a quit event arrives and
// ExitOnQuit is set. A panic in an iteration is returned as ErrUnexpected.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	l.events = l.Source.Events()
	if l.after == nil {
		l.after = time.After
	}

	l.Log.Info().Msgf("Monitoring button index: %d", l.Button)
	l.Log.Info().Msg("Listening to Events now:")

	for {
		quit, err := l.pump(ctx)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}

		// the full interval starts after the pass, however long it took
		select {
		case <-ctx.Done():
			return nil
		case <-l.after(interval):
		}
	}
}

// pump handles every event already queued without blocking.
func (l *Loop) pump(ctx context.Context) (quit bool, err error) {
	for {
		select {
		case ev, ok := <-l.events:
			if !ok {
				// stream ended; keep ticking until cancelled
				l.events = nil
				return false, nil
			}
			stop, err := l.handle(ctx, ev)
			if err != nil || stop {
				return stop, err
			}
		default:
			return false, nil
		}
	}
}

func (l *Loop) handle(ctx context.Context, ev joystick.Event) (bool, error) {
	switch ev.Kind {
	case joystick.ButtonUp:
		if ev.Button != l.Button {
			return false, nil
		}
		l.Log.Info().Msgf("Button %d released!", ev.Button)
		if _, err := l.Cursor.Center(ctx, l.CenterX, l.CenterY); err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return false, fmt.Errorf("%w: %v", ErrUnexpected, err)
		}
		if l.Keyboard != nil {
			if err := l.Keyboard.Tap(); err != nil {
				l.Log.Warn().Err(err).Msg("key tap failed")
			}
		}
	case joystick.Quit:
		l.Log.Info().Msg("Quit event received.")
		return l.ExitOnQuit, nil
	}
	return false, nil
}
