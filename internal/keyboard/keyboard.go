// Package keyboard taps a configured key through a virtual keyboard.
package keyboard

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/micmonay/keybd_event"
)

var ErrUnknownKey = errors.New("unknown key")

// Key is a key code plus the modifiers held while it is tapped.
type Key struct {
	Name  string
	Code  int
	Ctrl  bool
	Shift bool
	Alt   bool
}

var keyCodes = map[string]int{
	"f1": keybd_event.VK_F1, "f2": keybd_event.VK_F2, "f3": keybd_event.VK_F3,
	"f4": keybd_event.VK_F4, "f5": keybd_event.VK_F5, "f6": keybd_event.VK_F6,
	"f7": keybd_event.VK_F7, "f8": keybd_event.VK_F8, "f9": keybd_event.VK_F9,
	"f10": keybd_event.VK_F10, "f11": keybd_event.VK_F11, "f12": keybd_event.VK_F12,

	"home": keybd_event.VK_HOME, "end": keybd_event.VK_END,
	"space": keybd_event.VK_SPACE, "enter": keybd_event.VK_ENTER, "tab": keybd_event.VK_TAB,
	"up": keybd_event.VK_UP, "down": keybd_event.VK_DOWN,
	"left": keybd_event.VK_LEFT, "right": keybd_event.VK_RIGHT,

	"a": keybd_event.VK_A, "b": keybd_event.VK_B, "c": keybd_event.VK_C, "d": keybd_event.VK_D,
	"e": keybd_event.VK_E, "f": keybd_event.VK_F, "g": keybd_event.VK_G, "h": keybd_event.VK_H,
	"i": keybd_event.VK_I, "j": keybd_event.VK_J, "k": keybd_event.VK_K, "l": keybd_event.VK_L,
	"m": keybd_event.VK_M, "n": keybd_event.VK_N, "o": keybd_event.VK_O, "p": keybd_event.VK_P,
	"q": keybd_event.VK_Q, "r": keybd_event.VK_R, "s": keybd_event.VK_S, "t": keybd_event.VK_T,
	"u": keybd_event.VK_U, "v": keybd_event.VK_V, "w": keybd_event.VK_W, "x": keybd_event.VK_X,
	"y": keybd_event.VK_Y, "z": keybd_event.VK_Z,
}

// ParseKey reads names like "f12", "ctrl+home" or "Shift+Alt+c".
func ParseKey(s string) (Key, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	k := Key{Name: strings.TrimSpace(s)}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i < len(parts)-1 {
			switch p {
			case "ctrl", "control":
				k.Ctrl = true
			case "shift":
				k.Shift = true
			case "alt":
				k.Alt = true
			default:
				return Key{}, fmt.Errorf("%w: modifier %q in %q", ErrUnknownKey, p, s)
			}
			continue
		}
		code, ok := keyCodes[p]
		if !ok {
			return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, s)
		}
		k.Code = code
	}
	return k, nil
}

// Keyboard presses and releases one key on every Tap.
type Keyboard struct {
	kb  keybd_event.KeyBonding
	key Key
}

// New creates the virtual keyboard. On Linux the uinput device needs a moment
// before the desktop picks it up.
func New(key Key) (*Keyboard, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keyboard: %w", err)
	}
	if runtime.GOOS == "linux" {
		time.Sleep(2 * time.Second)
	}

	kb.SetKeys(key.Code)
	kb.HasCTRL(key.Ctrl)
	kb.HasSHIFT(key.Shift)
	kb.HasALT(key.Alt)
	return &Keyboard{kb: kb, key: key}, nil
}

func (k *Keyboard) Tap() error {
	if err := k.kb.Launching(); err != nil {
		return fmt.Errorf("tap %s: %w", k.key.Name, err)
	}
	return nil
}

func (k *Keyboard) String() string { return k.key.Name }
