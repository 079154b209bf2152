package hotkey

import (
	"sync"
	"testing"
	"time"
)

// recordingFacility records registrations and lets tests fire them.
type recordingFacility struct {
	mu         sync.Mutex
	registered map[string]func()
	calls      []string
	failOn     string
}

func newRecordingFacility() *recordingFacility {
	return &recordingFacility{registered: make(map[string]func())}
}

func (f *recordingFacility) Register(id string, cb func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "register "+id)
	if id == f.failOn {
		return ErrUnsupportedChord
	}
	f.registered[id] = cb
	return nil
}

func (f *recordingFacility) Unregister(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "unregister "+id)
	delete(f.registered, id)
	return nil
}

func (f *recordingFacility) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.registered[id]
	return ok
}

func (f *recordingFacility) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.registered)
}

func (f *recordingFacility) fire(id string) {
	f.mu.Lock()
	cb := f.registered[id]
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
}

func expectNoSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("unexpected callback")
	case <-time.After(50 * time.Millisecond):
	}
}
