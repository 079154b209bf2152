package hotkey

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Guliveer/lafms/internal/display"
	"github.com/Guliveer/lafms/internal/input"
	"github.com/Guliveer/lafms/internal/input/inputtest"
	"github.com/Guliveer/lafms/internal/task"
)

type captureFixture struct {
	src      *inputtest.Source
	matcher  *Matcher
	registry *Registry
	capturer *Capturer
	rec      *display.Recorder
	fired    chan struct{}
	toggled  chan struct{}
	outcomes []Outcome
}

func newCaptureFixture(t *testing.T) *captureFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	fx := &captureFixture{
		src:     inputtest.NewSource(),
		matcher: NewMatcher(logger),
		rec:     display.NewRecorder(),
		fired:   make(chan struct{}, 10),
		toggled: make(chan struct{}, 10),
	}
	if err := fx.src.Hook(fx.matcher); err != nil {
		t.Fatal(err)
	}
	fx.registry = NewRegistry(fx.matcher, fx.rec, logger)
	fx.registry.Define(SlotManual, func() { fx.fired <- struct{}{} })
	fx.registry.Define(SlotAutoToggle, func() { fx.toggled <- struct{}{} })
	fx.capturer = NewCapturer(fx.src, fx.registry, &task.Guard{}, fx.rec, logger)
	fx.capturer.OnDone(func(o Outcome) { fx.outcomes = append(fx.outcomes, o) })
	return fx
}

func (fx *captureFixture) lastOutcome(t *testing.T) Outcome {
	t.Helper()
	if len(fx.outcomes) == 0 {
		t.Fatal("no capture outcome")
	}
	return fx.outcomes[len(fx.outcomes)-1]
}

func TestCaptureCommitsOnLastRelease(t *testing.T) {
	fx := newCaptureFixture(t)
	if !fx.capturer.Rebind(SlotManual) {
		t.Fatal("Rebind returned false")
	}
	if slot, ok := fx.capturer.Active(); !ok || slot != SlotManual {
		t.Fatalf("Active() = (%q, %v), want (manual, true)", slot, ok)
	}

	fx.src.Play(inputtest.Down("A"), inputtest.Down("B"), inputtest.Up("A"))
	if len(fx.outcomes) != 0 {
		t.Fatal("committed while a key was still held")
	}
	fx.src.Play(inputtest.Up("B"))

	o := fx.lastOutcome(t)
	if o.State != Committed || o.Chord.ID() != "a+b" {
		t.Errorf("outcome = %v %s, want committed a+b", o.State, o.Chord)
	}
	if _, ok := fx.capturer.Active(); ok {
		t.Error("session still active after commit")
	}
	if got := fx.rec.LastLabel(string(SlotManual)); got != "a+b" {
		t.Errorf("label = %q, want a+b", got)
	}

	// The committed chord now triggers the slot, pressed in any order.
	fx.src.Play(inputtest.Press("b", "a")...)
	waitSignal(t, fx.fired)
}

func TestCaptureReleaseOrderDoesNotMatter(t *testing.T) {
	tests := []struct {
		name    string
		release []string
	}{
		{"press order", []string{"shift", "k"}},
		{"reverse order", []string{"k", "shift"}},
	}
	ids := make(map[string]string)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newCaptureFixture(t)
			fx.capturer.Rebind(SlotManual)
			fx.src.Play(inputtest.Down("shift"), inputtest.Down("k"))
			for _, key := range tt.release {
				fx.src.Play(inputtest.Up(key))
			}
			o := fx.lastOutcome(t)
			if o.State != Committed {
				t.Fatalf("state = %v, want committed", o.State)
			}
			ids[tt.name] = o.Chord.ID()
		})
	}
	if ids["press order"] != "shift+k" || ids["reverse order"] != ids["press order"] {
		t.Errorf("chord IDs = %v, want shift+k for both release orders", ids)
	}
}

func TestCaptureHoldsInputExclusively(t *testing.T) {
	fx := newCaptureFixture(t)
	if err := fx.registry.Bind(SlotAutoToggle, NewChord("f2")); err != nil {
		t.Fatal(err)
	}

	fx.capturer.Rebind(SlotManual)
	fx.src.Play(inputtest.Press("f2")...)
	expectNoSignal(t, fx.toggled)

	if c, _ := fx.registry.Chord(SlotManual); c.ID() != "f2" {
		t.Errorf("manual = %s, want f2", c)
	}
	if c, _ := fx.registry.Chord(SlotAutoToggle); !c.IsEmpty() {
		t.Errorf("auto-toggle = %s, want unbound after the chord moved", c)
	}

	// Matching resumes once the session is over.
	fx.src.Play(inputtest.Press("f2")...)
	waitSignal(t, fx.fired)
	expectNoSignal(t, fx.toggled)
}

func TestCaptureSuspendsSlotCallbacks(t *testing.T) {
	f := newRecordingFacility()
	logger := zaptest.NewLogger(t)
	src := inputtest.NewSource()
	registry := NewRegistry(f, nil, logger)
	toggles := 0
	registry.Define(SlotManual, func() {})
	registry.Define(SlotAutoToggle, func() { toggles++ })
	_ = registry.Bind(SlotAutoToggle, NewChord("f2"))
	capturer := NewCapturer(src, registry, &task.Guard{}, nil, logger)

	capturer.Rebind(SlotManual)
	f.fire("f2")
	if toggles != 0 {
		t.Errorf("auto-toggle fired %d times during capture, want 0", toggles)
	}

	src.Play(inputtest.Click())
	f.fire("f2")
	if toggles != 1 {
		t.Errorf("auto-toggle fired %d times after capture, want 1", toggles)
	}
}

func TestCapturePublishesLabelAsKeysArrive(t *testing.T) {
	fx := newCaptureFixture(t)
	fx.capturer.Rebind(SlotManual)
	fx.src.Play(inputtest.Down("ctrl"), inputtest.Down("s"), inputtest.Up("s"), inputtest.Up("ctrl"))

	want := []string{UnboundLabel, UnboundLabel, PromptLabel, "ctrl", "ctrl+s", "ctrl+s"}
	got := fx.rec.Labels(string(SlotManual))
	if len(got) != len(want) {
		t.Fatalf("labels = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCaptureMouseClickCancels(t *testing.T) {
	for _, click := range []input.Event{inputtest.Click(), inputtest.DoubleClick()} {
		t.Run(click.Kind.String(), func(t *testing.T) {
			fx := newCaptureFixture(t)
			_ = fx.registry.Bind(SlotManual, NewChord("f9"))

			fx.capturer.Rebind(SlotManual)
			fx.src.Play(inputtest.Down("x"), click)

			o := fx.lastOutcome(t)
			if o.State != Cancelled {
				t.Errorf("state = %v, want cancelled", o.State)
			}
			if c, _ := fx.registry.Chord(SlotManual); !c.IsEmpty() {
				t.Errorf("slot bound to %s after cancel", c)
			}
			if got := fx.matcher.Registered(); len(got) != 0 {
				t.Errorf("registered chords = %v, want none", got)
			}
			if got := fx.rec.LastLabel(string(SlotManual)); got != UnboundLabel {
				t.Errorf("label = %q, want %q", got, UnboundLabel)
			}
			if fx.src.Hooked() != 1 {
				t.Errorf("hooked handlers = %d, want only the matcher", fx.src.Hooked())
			}
		})
	}
}

func TestCaptureSecondRebindIsNoop(t *testing.T) {
	fx := newCaptureFixture(t)
	_ = fx.registry.Bind(SlotAutoToggle, NewChord("f2"))

	if !fx.capturer.Rebind(SlotManual) {
		t.Fatal("first Rebind returned false")
	}
	if fx.capturer.Rebind(SlotAutoToggle) {
		t.Error("second Rebind returned true")
	}
	if c, _ := fx.registry.Chord(SlotAutoToggle); c.ID() != "f2" {
		t.Errorf("second slot changed to %s", c)
	}
	if slot, _ := fx.capturer.Active(); slot != SlotManual {
		t.Errorf("active slot = %q, want manual", slot)
	}

	fx.src.Play(inputtest.Press("g")...)
	if !fx.capturer.Rebind(SlotAutoToggle) {
		t.Error("Rebind after commit returned false")
	}
}

func TestCaptureUnregistersPreviousChordOnEntry(t *testing.T) {
	fx := newCaptureFixture(t)
	_ = fx.registry.Bind(SlotManual, NewChord("f9"))

	fx.capturer.Rebind(SlotManual)
	if got := fx.matcher.Registered(); len(got) != 0 {
		t.Errorf("registered during capture = %v, want none", got)
	}
	fx.src.Play(inputtest.Press("f9")...)
	expectNoSignal(t, fx.fired)
	if o := fx.lastOutcome(t); o.Chord.ID() != "f9" {
		t.Errorf("committed %s, want f9", o.Chord)
	}
}

func TestCaptureIgnoresInvalidKeysAndForeignReleases(t *testing.T) {
	fx := newCaptureFixture(t)
	fx.capturer.Rebind(SlotManual)

	// A release of a key held before the session and invalid keys change
	// nothing.
	fx.src.Play(inputtest.Up("z"), inputtest.Down("+"), inputtest.Up("+"))
	if len(fx.outcomes) != 0 {
		t.Fatal("session finished on ignored input")
	}

	fx.src.Play(inputtest.Down("q"), inputtest.Down("q"), inputtest.Up("q"))
	if o := fx.lastOutcome(t); o.State != Committed || o.Chord.ID() != "q" {
		t.Errorf("outcome = %v %s, want committed q", o.State, o.Chord)
	}
}

func TestCaptureRebindUnknownSlot(t *testing.T) {
	fx := newCaptureFixture(t)
	if fx.capturer.Rebind("missing") {
		t.Error("Rebind(missing) returned true")
	}
	if fx.capturer.Rebind(SlotManual) != true {
		t.Error("guard leaked by unknown-slot rebind")
	}
}

func TestCaptureCloseCancelsSession(t *testing.T) {
	fx := newCaptureFixture(t)
	fx.capturer.Rebind(SlotManual)
	fx.src.Play(inputtest.Down("a"))

	fx.capturer.Close()
	fx.capturer.Close()

	if o := fx.lastOutcome(t); o.State != Cancelled {
		t.Errorf("state = %v, want cancelled", o.State)
	}
	if fx.src.Hooked() != 1 {
		t.Errorf("hooked handlers = %d, want only the matcher", fx.src.Hooked())
	}
	fx.src.Play(inputtest.Up("a"))
	if len(fx.outcomes) != 1 {
		t.Errorf("outcomes = %d, want 1", len(fx.outcomes))
	}
}
