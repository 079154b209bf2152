package hotkey

import (
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Guliveer/lafms/internal/display"
)

func newTestRegistry(t *testing.T) (*Registry, *recordingFacility, *display.Recorder) {
	t.Helper()
	f := newRecordingFacility()
	rec := display.NewRecorder()
	r := NewRegistry(f, rec, zaptest.NewLogger(t))
	return r, f, rec
}

func TestRegistryBindRegistersCallback(t *testing.T) {
	r, f, rec := newTestRegistry(t)
	calls := 0
	r.Define(SlotManual, func() { calls++ })

	if got := rec.LastLabel(string(SlotManual)); got != UnboundLabel {
		t.Errorf("label after Define = %q, want %q", got, UnboundLabel)
	}
	if err := r.Bind(SlotManual, NewChord("f9")); err != nil {
		t.Fatal(err)
	}
	f.fire("f9")
	if calls != 1 {
		t.Errorf("callback calls = %d, want 1", calls)
	}
	if got := rec.LastLabel(string(SlotManual)); got != "f9" {
		t.Errorf("label = %q, want f9", got)
	}
	if c, _ := r.Chord(SlotManual); c.ID() != "f9" {
		t.Errorf("Chord() = %s, want f9", c)
	}
}

func TestRegistryRebindReplacesOldChord(t *testing.T) {
	r, f, _ := newTestRegistry(t)
	r.Define(SlotManual, func() {})
	_ = r.Bind(SlotManual, NewChord("f9"))
	_ = r.Bind(SlotManual, NewChord("f10"))

	if f.has("f9") {
		t.Error("old chord still registered")
	}
	if !f.has("f10") {
		t.Error("new chord not registered")
	}
}

func TestRegistryChordMovesBetweenSlots(t *testing.T) {
	r, f, rec := newTestRegistry(t)
	var got []SlotID
	r.Define(SlotManual, func() { got = append(got, SlotManual) })
	r.Define(SlotAutoToggle, func() { got = append(got, SlotAutoToggle) })

	_ = r.Bind(SlotManual, NewChord("ctrl", "m"))
	_ = r.Bind(SlotAutoToggle, NewChord("m", "ctrl"))

	if c, _ := r.Chord(SlotManual); !c.IsEmpty() {
		t.Errorf("manual slot still bound to %s", c)
	}
	if got := rec.LastLabel(string(SlotManual)); got != UnboundLabel {
		t.Errorf("manual label = %q, want %q", got, UnboundLabel)
	}
	f.fire("ctrl+m")
	if len(got) != 1 || got[0] != SlotAutoToggle {
		t.Errorf("fired slots = %v, want [auto-toggle]", got)
	}
}

func TestRegistryUnknownSlot(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	if err := r.Bind("nope", NewChord("a")); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("Bind(unknown) error = %v, want ErrUnknownSlot", err)
	}
}

func TestRegistryRegistrationFailureLeavesSlotUnbound(t *testing.T) {
	r, f, rec := newTestRegistry(t)
	f.failOn = "a+b"
	r.Define(SlotManual, func() {})

	err := r.Bind(SlotManual, NewChord("a", "b"))
	if !errors.Is(err, ErrUnsupportedChord) {
		t.Fatalf("Bind error = %v, want ErrUnsupportedChord", err)
	}
	if c, _ := r.Chord(SlotManual); !c.IsEmpty() {
		t.Errorf("slot bound to %s after failure", c)
	}
	if got := rec.LastLabel(string(SlotManual)); got != UnboundLabel {
		t.Errorf("label = %q, want %q", got, UnboundLabel)
	}
}

func TestRegistryOnChange(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	r.Define(SlotManual, func() {})
	var seen []string
	r.OnChange(func(id SlotID, c Chord) {
		seen = append(seen, string(id)+"="+Label(c))
	})

	_ = r.Bind(SlotManual, NewChord("f1"))
	_ = r.Unbind(SlotManual)

	want := []string{"manual=f1", "manual=unbound"}
	if len(seen) != len(want) {
		t.Fatalf("changes = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("change[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestRegistryCloseUnregistersAll(t *testing.T) {
	r, f, _ := newTestRegistry(t)
	r.Define(SlotManual, func() {})
	r.Define(SlotAutoToggle, func() {})
	_ = r.Bind(SlotManual, NewChord("f1"))
	_ = r.Bind(SlotAutoToggle, NewChord("f2"))

	r.Close()
	r.Close()

	if n := f.count(); n != 0 {
		t.Errorf("%d chords still registered after Close", n)
	}
	if c, _ := r.Chord(SlotManual); c.ID() != "f1" {
		t.Errorf("Chord after Close = %s, want f1", c)
	}
	if err := r.Bind(SlotManual, NewChord("f3")); err == nil {
		t.Error("Bind after Close succeeded")
	}
}

func TestRegistrySuspendSilencesCallbacks(t *testing.T) {
	r, f, _ := newTestRegistry(t)
	calls := 0
	r.Define(SlotManual, func() { calls++ })
	_ = r.Bind(SlotManual, NewChord("f9"))

	r.Suspend()
	f.fire("f9")
	if calls != 0 {
		t.Errorf("callback calls while suspended = %d, want 0", calls)
	}
	if !f.has("f9") {
		t.Error("chord unregistered by Suspend")
	}

	r.Resume()
	f.fire("f9")
	if calls != 1 {
		t.Errorf("callback calls after Resume = %d, want 1", calls)
	}
}

func TestRegistryRedefineKeepsChord(t *testing.T) {
	r, f, _ := newTestRegistry(t)
	first, second := 0, 0
	r.Define(SlotManual, func() { first++ })
	_ = r.Bind(SlotManual, NewChord("f9"))
	r.Define(SlotManual, func() { second++ })

	f.fire("f9")
	if first != 0 || second != 1 {
		t.Errorf("calls = (%d, %d), want (0, 1)", first, second)
	}
}

func TestRegistrySlotsInDefinitionOrder(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	r.Define(SlotAutoToggle, func() {})
	r.Define(SlotManual, func() {})
	r.Define(SlotAutoToggle, func() {})

	got := r.Slots()
	if len(got) != 2 || got[0] != SlotAutoToggle || got[1] != SlotManual {
		t.Errorf("Slots() = %v, want [auto-toggle manual]", got)
	}
}
