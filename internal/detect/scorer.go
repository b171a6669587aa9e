package detect

import (
	"sort"

	"github.com/ivlev/screencam/internal/config"
	"github.com/ivlev/screencam/internal/events"
)

// Base scores and additive bonuses for action point importance. The result
// is always clamped to 1.
const (
	clickBase           = 0.5
	deliberateBonus     = 0.25
	multiClickBonus     = 0.05 // per click beyond the first
	typingBase          = 0.45
	firstBurstBonus     = 0.15
	longTypingBonus     = 0.1
	longTypingKeys      = 8
	scrollBase          = 0.35
	largeScrollBonus    = 0.15
	largeScrollDistance = 400
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// scoreActions converts clustered input activity into importance-weighted
// action points, drops the ones below the importance threshold and returns
// them sorted by timestamp.
func scoreActions(rec *events.Recording, clusters []clickCluster, bursts []typingBurst, stops []scrollStop, cfg config.DetectConfig) []ActionPoint {
	var points []ActionPoint

	for _, c := range clusters {
		// A cluster yields a point only when it is big enough or deliberate.
		if len(c.clicks) < cfg.MinClicksToTrigger && !c.deliberate {
			continue
		}

		ctx := ContextDeliberateClick
		if len(c.clicks) >= cfg.MinClicksToTrigger {
			ctx = ContextClickCluster
		}

		importance := clickBase + multiClickBonus*float64(len(c.clicks)-1)
		if c.deliberate {
			importance += deliberateBonus
		}

		cx, cy := c.centroid()
		points = append(points, ActionPoint{
			TimeMs:     c.first().TimeMs,
			X:          cx,
			Y:          cy,
			Context:    ctx,
			Importance: clamp01(importance),
			DurationMs: c.last().TimeMs - c.first().TimeMs,
			Deliberate: c.deliberate,
		})
	}

	for i, b := range bursts {
		importance := typingBase
		if i == 0 {
			importance += firstBurstBonus
		}
		if b.count >= longTypingKeys {
			importance += longTypingBonus
		}

		// Keyboard events carry no position; anchor the point at the cursor.
		x, y, ok := rec.CursorAt(b.startMs)
		if !ok {
			w, h := rec.Dims()
			x, y = w/2, h/2
		}

		points = append(points, ActionPoint{
			TimeMs:     b.startMs,
			X:          x,
			Y:          y,
			Context:    ContextTyping,
			Importance: clamp01(importance),
			DurationMs: b.endMs - b.startMs,
		})
	}

	for _, s := range stops {
		importance := scrollBase
		if s.distance > largeScrollDistance {
			importance += largeScrollBonus
		}

		points = append(points, ActionPoint{
			TimeMs:     s.timeMs,
			X:          s.x,
			Y:          s.y,
			Context:    ContextScrollStop,
			Importance: clamp01(importance),
		})
	}

	filtered := points[:0]
	for _, p := range points {
		if p.Importance >= cfg.MinImportanceThreshold {
			filtered = append(filtered, p)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].TimeMs < filtered[j].TimeMs })
	return filtered
}
