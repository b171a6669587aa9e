package detect

import (
	"math"

	"github.com/ivlev/screencam/internal/config"
	"github.com/ivlev/screencam/internal/events"
)

// hoverRadius is the normalized distance around the click position that
// counts as "hovering" when classifying deliberate clicks.
const hoverRadius = 0.05

// hoverRatio is the share of pre-click samples that must sit inside
// hoverRadius for a click to count as deliberate.
const hoverRatio = 0.7

// clickCluster groups click events inside a moving temporal+spatial window.
// The centroid is the arithmetic mean of the member positions.
type clickCluster struct {
	clicks     []events.ClickEvent
	sumX, sumY float64
	deliberate bool // true if any member click was deliberate
}

func (c *clickCluster) add(click events.ClickEvent, deliberate bool) {
	c.clicks = append(c.clicks, click)
	c.sumX += click.X
	c.sumY += click.Y
	if deliberate {
		c.deliberate = true
	}
}

func (c *clickCluster) centroid() (float64, float64) {
	n := float64(len(c.clicks))
	return c.sumX / n, c.sumY / n
}

func (c *clickCluster) first() events.ClickEvent { return c.clicks[0] }
func (c *clickCluster) last() events.ClickEvent  { return c.clicks[len(c.clicks)-1] }

// normDist is the Euclidean distance between two pixel points after
// normalizing each axis by the screen dimensions.
func normDist(x1, y1, x2, y2, w, h float64) float64 {
	if w <= 0 || h <= 0 {
		return 0
	}
	dx := (x1 - x2) / w
	dy := (y1 - y2) / h
	return math.Sqrt(dx*dx + dy*dy)
}

// clusterClicks groups the recording's clicks into clusters. A click joins
// the current cluster only when it is close in time to the previous click
// and close in space to the running centroid; otherwise it starts a new one.
func clusterClicks(rec *events.Recording, cfg config.DetectConfig) []clickCluster {
	w, h := rec.Dims()

	var clusters []clickCluster
	var current *clickCluster

	for _, click := range rec.Clicks {
		deliberate := isDeliberateClick(rec, click, w, h, cfg)

		if current != nil {
			cx, cy := current.centroid()
			dt := click.TimeMs - current.last().TimeMs
			if dt <= cfg.ClickClusterWindowMs && normDist(click.X, click.Y, cx, cy, w, h) <= cfg.ClusterSpatialThreshold {
				current.add(click, deliberate)
				continue
			}
			clusters = append(clusters, *current)
		}

		current = &clickCluster{}
		current.add(click, deliberate)
	}
	if current != nil {
		clusters = append(clusters, *current)
	}

	return clusters
}

// isDeliberateClick reports whether the click was preceded by a quiet hover:
// little mouse travel in the pause window and most samples of the hover
// window sitting within hoverRadius of the click point.
func isDeliberateClick(rec *events.Recording, click events.ClickEvent, w, h float64, cfg config.DetectConfig) bool {
	pause := rec.MovesBetween(click.TimeMs-cfg.DeliberatePauseMs, click.TimeMs)

	travel := 0.0
	for i := 1; i < len(pause); i++ {
		dx := pause[i].X - pause[i-1].X
		dy := pause[i].Y - pause[i-1].Y
		travel += math.Sqrt(dx*dx + dy*dy)
	}
	if travel >= cfg.DeliberateActivityThreshold {
		return false
	}

	hover := rec.MovesBetween(click.TimeMs-cfg.HoverBeforeClickMs, click.TimeMs)
	if len(hover) == 0 {
		// No samples means the cursor was parked; the pause check above
		// already passed, so treat this as hovering.
		return true
	}

	near := 0
	for _, m := range hover {
		if normDist(m.X, m.Y, click.X, click.Y, w, h) <= hoverRadius {
			near++
		}
	}
	return float64(near)/float64(len(hover)) >= hoverRatio
}

// typingBurst is a run of keystrokes with no gap longer than the burst window.
type typingBurst struct {
	startMs float64
	endMs   float64
	count   int
}

// detectTypingBursts merges consecutive keystrokes into bursts and keeps
// only those with enough keys to matter.
func detectTypingBursts(rec *events.Recording, cfg config.DetectConfig) []typingBurst {
	var bursts []typingBurst
	var current *typingBurst

	for _, key := range rec.Keys {
		if current != nil && key.TimeMs-current.endMs <= cfg.TypingBurstWindowMs {
			current.endMs = key.TimeMs
			current.count++
			continue
		}
		if current != nil && current.count >= cfg.MinKeysInBurst {
			bursts = append(bursts, *current)
		}
		current = &typingBurst{startMs: key.TimeMs, endMs: key.TimeMs, count: 1}
	}
	if current != nil && current.count >= cfg.MinKeysInBurst {
		bursts = append(bursts, *current)
	}

	return bursts
}

// scrollStop marks the moment a sustained scroll came to rest.
type scrollStop struct {
	timeMs   float64
	x, y     float64
	distance float64
}

// detectScrollStops accumulates scroll distance and emits a stop whenever a
// gap longer than the stop gap follows enough accumulated travel.
func detectScrollStops(rec *events.Recording, cfg config.DetectConfig) []scrollStop {
	var stops []scrollStop

	accum := 0.0
	var last events.ScrollEvent
	haveLast := false

	flush := func() {
		if haveLast && accum > cfg.ScrollStopMinDistance {
			stops = append(stops, scrollStop{timeMs: last.TimeMs, x: last.X, y: last.Y, distance: accum})
		}
		accum = 0
	}

	for _, s := range rec.Scrolls {
		if haveLast && s.TimeMs-last.TimeMs > cfg.ScrollStopGapMs {
			flush()
		}
		accum += math.Abs(s.DeltaX) + math.Abs(s.DeltaY)
		last = s
		haveLast = true
	}
	flush()

	return stops
}
