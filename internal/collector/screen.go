// Screen collector: captures the market window region with kbinani/screenshot.
package collector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/kbinani/screenshot"
)

// Region is a screen rectangle in virtual-desktop coordinates. A zero width or
// height selects the whole primary display.
type Region struct {
	X, Y, Width, Height int
}

// Store persists an artifact for a run and returns its path.
type Store interface {
	Store(runID, name string, write func(io.Writer) error) (string, error)
}

// ScreenCollector captures a screen region as a PNG artifact.
type ScreenCollector struct {
	region   Region
	store    Store
	displays func() int
	bounds   func(int) image.Rectangle
	capture  func(image.Rectangle) (*image.RGBA, error)
}

// NewScreenCollector creates a screen capture step writing into store.
func NewScreenCollector(region Region, store Store) *ScreenCollector {
	return &ScreenCollector{
		region:   region,
		store:    store,
		displays: screenshot.NumActiveDisplays,
		bounds:   screenshot.GetDisplayBounds,
		capture:  screenshot.CaptureRect,
	}
}

// Name returns the collector identifier.
func (c *ScreenCollector) Name() string { return "screen" }

// Collect captures the region and stores it as <runID>-market.png.
func (c *ScreenCollector) Collect(ctx context.Context, run *Run) error {
	rect, err := c.rect()
	if err != nil {
		return err
	}
	img, err := c.capture(rect)
	if err != nil {
		return fmt.Errorf("capture %v: %w", rect, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := c.store.Store(run.ID, "market.png", func(w io.Writer) error {
		return png.Encode(w, img)
	})
	if err != nil {
		return err
	}
	run.Artifacts = append(run.Artifacts, path)
	return nil
}

func (c *ScreenCollector) rect() (image.Rectangle, error) {
	if c.displays() == 0 {
		return image.Rectangle{}, errors.New("no active display")
	}
	if c.region.Width <= 0 || c.region.Height <= 0 {
		return c.bounds(0), nil
	}
	r := c.region
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height), nil
}

// IsAvailable returns true when at least one display is active.
func (c *ScreenCollector) IsAvailable() bool { return c.displays() > 0 }
