package app

import (
	"go.uber.org/zap"

	"github.com/Guliveer/lafms/internal/archive"
	"github.com/Guliveer/lafms/internal/collector"
	"github.com/Guliveer/lafms/internal/config"
)

// NewPipeline builds the collection pipeline described by cfg: the game
// process gate, the screen capture into the archive, and the OCR command.
// Steps that are not configured are skipped.
func NewPipeline(cfg *config.Config, logger *zap.Logger) (*collector.Registry, *archive.Archive, error) {
	arch, err := archive.New(cfg.Archive.Dir, cfg.Archive.MaxSizeMB, logger)
	if err != nil {
		return nil, nil, err
	}

	c := cfg.Collection
	registry := collector.NewRegistry(logger)
	registry.Register(collector.NewGameProcessCollector(c.GameProcess, logger))
	registry.Register(collector.NewScreenCollector(collector.Region{
		X:      c.Region.X,
		Y:      c.Region.Y,
		Width:  c.Region.Width,
		Height: c.Region.Height,
	}, arch))
	registry.Register(collector.NewCommandCollector(c.OCRCommand, logger))
	return registry, arch, nil
}
