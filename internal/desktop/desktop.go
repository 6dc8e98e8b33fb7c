// Package desktop binds the cursor controller to the local display (cgo).
package desktop

import "github.com/go-vgo/robotgo"

// Screen is the primary display of the local session.
type Screen struct{}

func (Screen) Size() (int, int) { return robotgo.GetScreenSize() }

func (Screen) Move(x, y int) { robotgo.Move(x, y) }
