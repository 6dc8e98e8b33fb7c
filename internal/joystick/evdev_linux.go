//go:build linux

package joystick

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/rs/zerolog"
)

const defaultPattern = "/dev/input/event*"

// Evdev reads joysticks through the Linux event interface.
type Evdev struct {
	Pattern string // glob of device nodes, defaults to /dev/input/event*
	Log     zerolog.Logger
}

func (e *Evdev) pattern() string {
	if e.Pattern == "" {
		return defaultPattern
	}
	return e.Pattern
}

// Enumerate lists joystick-class devices ordered by their event node number.
func (e *Evdev) Enumerate() ([]DeviceInfo, error) {
	devs, err := evdev.ListInputDevices(e.pattern())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubsystemInit, err)
	}

	var found []DeviceInfo
	for _, d := range devs {
		caps := flatten(d.Capabilities)
		if d.File != nil {
			d.File.Close()
		}
		if !isJoystick(caps) {
			continue
		}
		codes := buttonCodes(caps[evKey])
		found = append(found, DeviceInfo{
			Name:        d.Name,
			ButtonCount: len(codes),
			Path:        d.Fn,
			Vendor:      d.Vendor,
			Product:     d.Product,
			codes:       codes,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return nodeNumber(found[i].Path) < nodeNumber(found[j].Path)
	})
	for i := range found {
		found[i].Index = i
	}
	return found, nil
}

// Open starts reading button events from the device.
func (e *Evdev) Open(info DeviceInfo) (Source, error) {
	dev, err := evdev.Open(info.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrSubsystemInit, info.Path, err)
	}

	codes := info.codes
	if codes == nil {
		codes = buttonCodes(flatten(dev.Capabilities)[evKey])
	}

	s := &evdevSource{
		dev:    dev,
		index:  codeIndex(codes),
		events: make(chan Event, 64),
		done:   make(chan struct{}),
		log:    e.Log.With().Str("device", info.Path).Logger(),
	}
	go s.read()
	return s, nil
}

func flatten(caps map[evdev.CapabilityType][]evdev.CapabilityCode) map[int][]int {
	out := make(map[int][]int, len(caps))
	for t, codes := range caps {
		for _, c := range codes {
			out[t.Type] = append(out[t.Type], c.Code)
		}
	}
	return out
}

// nodeNumber extracts 12 from /dev/input/event12.
func nodeNumber(path string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(path), "event"))
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}

type evdevSource struct {
	dev    *evdev.InputDevice
	index  map[uint16]int
	events chan Event
	done   chan struct{}
	once   sync.Once
	log    zerolog.Logger
}

func (s *evdevSource) Events() <-chan Event { return s.events }

func (s *evdevSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.dev.File.Close()
	})
	return err
}

func (s *evdevSource) read() {
	defer close(s.events)
	for {
		evs, err := s.dev.Read()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			s.log.Debug().Err(err).Msg("joystick read stopped")
			s.send(Event{Kind: Quit, Time: time.Now()})
			return
		}
		for _, ev := range evs {
			at := time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond))
			if e, ok := translate(s.index, ev.Type, ev.Code, ev.Value, at); ok {
				if !s.send(e) {
					return
				}
			}
		}
	}
}

func (s *evdevSource) send(e Event) bool {
	select {
	case s.events <- e:
		return true
	case <-s.done:
		return false
	}
}
