package cursor

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
)

// DefaultPause separates the jump to the origin from the jump to the target.
const DefaultPause = 50 * time.Millisecond

// Screen is the display the cursor lives on.
type Screen interface {
	Size() (width, height int)
	Move(x, y int)
}

type Point struct {
	X, Y int
}

// Target converts fractional coordinates into pixels on a width x height screen.
func Target(width, height int, fx, fy float64) Point {
	return Point{
		X: int(math.Round(float64(width) * fx)),
		Y: int(math.Round(float64(height) * fy)),
	}
}

type Controller struct {
	screen Screen
	pause  time.Duration
	log    zerolog.Logger
}

func NewController(screen Screen, pause time.Duration, log zerolog.Logger) *Controller {
	return &Controller{screen: screen, pause: pause, log: log}
}

// Center moves the cursor to (0,0), waits, then moves it to the fractional
// target. It returns early with ctx's error if cancelled during the pause.
func (c *Controller) Center(ctx context.Context, fx, fy float64) (Point, error) {
	w, h := c.screen.Size()
	target := Target(w, h, fx, fy)

	c.screen.Move(0, 0)
	c.log.Info().Msg("Mouse moved to initial position: (0, 0)")

	if c.pause > 0 {
		t := time.NewTimer(c.pause)
		select {
		case <-ctx.Done():
			t.Stop()
			return Point{}, ctx.Err()
		case <-t.C:
		}
	}

	c.screen.Move(target.X, target.Y)
	c.log.Info().Msgf("Mouse moved to second position: (%d, %d)", target.X, target.Y)
	return target, nil
}
