//go:build windows || linux || darwin

// Package system registers hotkeys with the operating system through
// golang.design/x/hotkey. OS hotkeys are one non-modifier key plus any
// modifiers; chords outside that shape are rejected with
// hotkey.ErrUnsupportedChord. On macOS the caller must run on the main
// thread (see golang.design/x/hotkey/mainthread).
package system

import (
	"fmt"
	"sync"

	xhotkey "golang.design/x/hotkey"
	"go.uber.org/zap"

	"github.com/Guliveer/lafms/internal/hotkey"
)

// Facility is a hotkey.Facility backed by OS hotkey registration.
type Facility struct {
	logger *zap.Logger

	mu   sync.Mutex
	regs map[string]*registration
}

type registration struct {
	hk   *xhotkey.Hotkey
	done chan struct{}
}

var _ hotkey.Facility = (*Facility)(nil)

// New creates an OS hotkey facility.
func New(logger *zap.Logger) *Facility {
	return &Facility{
		logger: logger.Named("system-hotkey"),
		regs:   make(map[string]*registration),
	}
}

// Register registers the chord identified by id with the OS.
func (f *Facility) Register(id string, callback func()) error {
	chord := hotkey.ParseChord(id)
	mods, key, err := translate(chord)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregisterLocked(chord.ID())

	hk := xhotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register %s: %w", chord.ID(), err)
	}
	reg := &registration{hk: hk, done: make(chan struct{})}
	f.regs[chord.ID()] = reg
	go f.listen(chord.ID(), reg, callback)

	f.logger.Debug("Registered OS hotkey", zap.String("chord", chord.ID()))
	return nil
}

// Unregister releases the chord identified by id.
func (f *Facility) Unregister(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unregisterLocked(hotkey.ParseChord(id).ID())
}

// Close releases every registered hotkey.
func (f *Facility) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.regs {
		_ = f.unregisterLocked(id)
	}
}

func (f *Facility) unregisterLocked(id string) error {
	reg, ok := f.regs[id]
	if !ok {
		return nil
	}
	delete(f.regs, id)
	close(reg.done)
	if err := reg.hk.Unregister(); err != nil {
		return fmt.Errorf("unregister %s: %w", id, err)
	}
	return nil
}

func (f *Facility) listen(id string, reg *registration, callback func()) {
	for {
		select {
		case <-reg.done:
			return
		case _, ok := <-reg.hk.Keydown():
			if !ok {
				return
			}
			f.logger.Debug("OS hotkey pressed", zap.String("chord", id))
			go callback()
		}
	}
}

// translate splits a chord into OS modifiers and exactly one key.
func translate(chord hotkey.Chord) ([]xhotkey.Modifier, xhotkey.Key, error) {
	var (
		mods   []xhotkey.Modifier
		key    xhotkey.Key
		hasKey bool
	)
	for _, name := range chord.Keys() {
		if class := modifierClass(name); class != "" {
			mod, ok := modifierMap[class]
			if !ok {
				return nil, 0, fmt.Errorf("%s: modifier %q: %w", chord.ID(), name, hotkey.ErrUnsupportedChord)
			}
			mods = append(mods, mod)
			continue
		}
		k, ok := keyMap[name]
		if !ok || hasKey {
			return nil, 0, fmt.Errorf("%s: key %q: %w", chord.ID(), name, hotkey.ErrUnsupportedChord)
		}
		key, hasKey = k, true
	}
	if !hasKey {
		return nil, 0, fmt.Errorf("%s: no non-modifier key: %w", chord.ID(), hotkey.ErrUnsupportedChord)
	}
	return mods, key, nil
}

func modifierClass(name string) string {
	switch name {
	case "ctrl", "lctrl", "rctrl", "control", "left ctrl", "right ctrl", "left control", "right control":
		return "ctrl"
	case "alt", "lalt", "ralt", "left alt", "right alt", "option", "altgr":
		return "alt"
	case "shift", "lshift", "rshift", "left shift", "right shift":
		return "shift"
	case "windows", "win", "left windows", "right windows", "cmd", "lcmd", "rcmd", "command", "super":
		return "super"
	}
	return ""
}

var keyMap = map[string]xhotkey.Key{
	"a": xhotkey.KeyA, "b": xhotkey.KeyB, "c": xhotkey.KeyC, "d": xhotkey.KeyD,
	"e": xhotkey.KeyE, "f": xhotkey.KeyF, "g": xhotkey.KeyG, "h": xhotkey.KeyH,
	"i": xhotkey.KeyI, "j": xhotkey.KeyJ, "k": xhotkey.KeyK, "l": xhotkey.KeyL,
	"m": xhotkey.KeyM, "n": xhotkey.KeyN, "o": xhotkey.KeyO, "p": xhotkey.KeyP,
	"q": xhotkey.KeyQ, "r": xhotkey.KeyR, "s": xhotkey.KeyS, "t": xhotkey.KeyT,
	"u": xhotkey.KeyU, "v": xhotkey.KeyV, "w": xhotkey.KeyW, "x": xhotkey.KeyX,
	"y": xhotkey.KeyY, "z": xhotkey.KeyZ,
	"0": xhotkey.Key0, "1": xhotkey.Key1, "2": xhotkey.Key2, "3": xhotkey.Key3,
	"4": xhotkey.Key4, "5": xhotkey.Key5, "6": xhotkey.Key6, "7": xhotkey.Key7,
	"8": xhotkey.Key8, "9": xhotkey.Key9,
	"space": xhotkey.KeySpace, " ": xhotkey.KeySpace,
	"f1": xhotkey.KeyF1, "f2": xhotkey.KeyF2, "f3": xhotkey.KeyF3, "f4": xhotkey.KeyF4,
	"f5": xhotkey.KeyF5, "f6": xhotkey.KeyF6, "f7": xhotkey.KeyF7, "f8": xhotkey.KeyF8,
	"f9": xhotkey.KeyF9, "f10": xhotkey.KeyF10, "f11": xhotkey.KeyF11, "f12": xhotkey.KeyF12,
}
