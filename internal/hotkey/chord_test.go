package hotkey

import "testing"

func TestChordID(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"B", "a"}, "a+b"},
		{[]string{"a", "b"}, "a+b"},
		{[]string{"s", "shift", "ctrl"}, "ctrl+shift+s"},
		{[]string{"left windows", "alt", "f4"}, "alt+left windows+f4"},
		{[]string{"a", "A", "a"}, "a"},
		{[]string{"a", "+", "ä", "b"}, "a+b"},
	}
	for _, tt := range tests {
		if got := NewChord(tt.names...).ID(); got != tt.want {
			t.Errorf("NewChord(%q).ID() = %q, want %q", tt.names, got, tt.want)
		}
	}
}

func TestChordOrderIndependent(t *testing.T) {
	ab := NewChord("a", "b")
	ba := NewChord("b", "a")
	if !ab.Equal(ba) {
		t.Errorf("%s != %s", ab, ba)
	}
}

func TestParseChord(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"ctrl+shift+s", "ctrl+shift+s"},
		{"S+CTRL", "ctrl+s"},
		{"a++b", "a+b"},
		{"space", "space"},
	}
	for _, tt := range tests {
		if got := ParseChord(tt.id).ID(); got != tt.want {
			t.Errorf("ParseChord(%q).ID() = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestChordAdd(t *testing.T) {
	var c Chord
	if !c.IsEmpty() {
		t.Fatal("zero chord not empty")
	}
	if !c.Add("X") {
		t.Error("Add(X) = false, want true")
	}
	if c.Add("x") {
		t.Error("Add(x) twice = true, want false")
	}
	if c.Add("?") {
		t.Error("Add(?) = true, want false")
	}
	if c.Len() != 1 || !c.Has("x") {
		t.Errorf("chord = %s, want x", c)
	}
}

func TestLabel(t *testing.T) {
	if got := Label(Chord{}); got != UnboundLabel {
		t.Errorf("Label(empty) = %q, want %q", got, UnboundLabel)
	}
	if got := Label(NewChord("ctrl", "q")); got != "ctrl+q" {
		t.Errorf("Label(ctrl+q) = %q, want %q", got, "ctrl+q")
	}
}
