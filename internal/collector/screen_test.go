package collector

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Guliveer/lafms/internal/archive"
)

func newFakeScreen(t *testing.T, region Region) (*ScreenCollector, *archive.Archive, *image.Rectangle) {
	t.Helper()
	a, err := archive.New(t.TempDir(), 0, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	var captured image.Rectangle
	c := NewScreenCollector(region, a)
	c.displays = func() int { return 1 }
	c.bounds = func(int) image.Rectangle { return image.Rect(0, 0, 64, 32) }
	c.capture = func(r image.Rectangle) (*image.RGBA, error) {
		captured = r
		img := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		img.Set(0, 0, color.RGBA{R: 255, A: 255})
		return img, nil
	}
	return c, a, &captured
}

func TestScreenCollectorWholeDisplay(t *testing.T) {
	c, a, captured := newFakeScreen(t, Region{})
	run := &Run{ID: "run1"}

	if err := c.Collect(context.Background(), run); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if *captured != image.Rect(0, 0, 64, 32) {
		t.Errorf("captured %v, want display bounds", *captured)
	}
	if len(run.Artifacts) != 1 || a.Count() != 1 {
		t.Fatalf("artifacts = %v, archive count = %d", run.Artifacts, a.Count())
	}

	f, err := os.Open(run.Artifacts[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("artifact is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Errorf("image size = %v, want 64x32", img.Bounds())
	}
}

func TestScreenCollectorRegion(t *testing.T) {
	c, _, captured := newFakeScreen(t, Region{X: 10, Y: 20, Width: 30, Height: 5})
	if err := c.Collect(context.Background(), &Run{ID: "r"}); err != nil {
		t.Fatal(err)
	}
	if want := image.Rect(10, 20, 40, 25); *captured != want {
		t.Errorf("captured %v, want %v", *captured, want)
	}
}

func TestScreenCollectorNoDisplay(t *testing.T) {
	c, a, _ := newFakeScreen(t, Region{})
	c.displays = func() int { return 0 }
	if c.IsAvailable() {
		t.Error("IsAvailable() = true with no display")
	}
	if err := c.Collect(context.Background(), &Run{ID: "r"}); err == nil {
		t.Error("Collect() succeeded with no display")
	}
	if a.Count() != 0 {
		t.Errorf("archive count = %d, want 0", a.Count())
	}
}
