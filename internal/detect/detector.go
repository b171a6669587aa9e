package detect

import (
	"log"

	"github.com/ivlev/screencam/internal/config"
	"github.com/ivlev/screencam/internal/events"
	"github.com/ivlev/screencam/internal/timeline"
)

// Detect analyzes a recording's input telemetry and proposes zoom blocks.
// It is pure and never fails: missing or unusable input yields an empty
// result. Detection is click-driven; a recording without clicks produces
// nothing.
func Detect(rec *events.Recording, cfg config.DetectConfig) []timeline.ZoomBlock {
	if rec == nil || len(rec.Clicks) == 0 {
		log.Printf("[!] Zoom detection skipped: no click events in recording")
		return nil
	}

	w, h := rec.Dims()
	if w <= 0 || h <= 0 {
		log.Printf("[!] Zoom detection skipped: recording has no screen dimensions")
		return nil
	}

	clickClusters := clusterClicks(rec, cfg)
	bursts := detectTypingBursts(rec, cfg)
	stops := detectScrollStops(rec, cfg)

	points := scoreActions(rec, clickClusters, bursts, stops, cfg)
	if len(points) == 0 {
		return nil
	}

	clusters := clusterActions(points, w, h, cfg)
	clusters = capClusterFrequency(clusters, rec.DurationMs, cfg.MaxZoomsPerMinute)

	blocks := make([]timeline.ZoomBlock, 0, len(clusters))
	for _, c := range clusters {
		blocks = append(blocks, buildBlock(rec, c, w, h, cfg))
	}

	return EnforceMinimumGap(blocks, cfg.MinZoomGapMs)
}
