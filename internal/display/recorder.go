package display

import (
	"sync"
	"time"
)

// ProgressUpdate is one recorded Progress call.
type ProgressUpdate struct {
	Fraction  float64
	Remaining time.Duration
}

// Recorder is a Sink that remembers every update. It is meant for tests.
type Recorder struct {
	mu       sync.Mutex
	progress []ProgressUpdate
	labels   map[string][]string
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{labels: make(map[string][]string)}
}

func (r *Recorder) Progress(fraction float64, remaining time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, ProgressUpdate{Fraction: fraction, Remaining: remaining})
}

func (r *Recorder) ChordLabel(slot, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels[slot] = append(r.labels[slot], label)
}

// ProgressUpdates returns a copy of the recorded progress updates.
func (r *Recorder) ProgressUpdates() []ProgressUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ProgressUpdate, len(r.progress))
	copy(out, r.progress)
	return out
}

// Labels returns every label published for slot, oldest first.
func (r *Recorder) Labels(slot string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.labels[slot]))
	copy(out, r.labels[slot])
	return out
}

// LastLabel returns the most recent label for slot, or "".
func (r *Recorder) LastLabel(slot string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.labels[slot]
	if len(l) == 0 {
		return ""
	}
	return l[len(l)-1]
}
