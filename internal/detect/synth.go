package detect

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/ivlev/screencam/internal/config"
	"github.com/ivlev/screencam/internal/events"
	"github.com/ivlev/screencam/internal/timeline"
)

// actionClusterSpatialThreshold is the normalized distance from a cluster's
// center within which a new action point may join it.
const actionClusterSpatialThreshold = 0.25

// Hold extension caps and windows.
const (
	holdLookaheadMs     = 10000
	keyExtensionCapMs   = 8000
	keyExtensionTailMs  = 1500
	mouseExtensionCapMs = 6000
	mousePresenceMin    = 20
	mousePresenceRadius = 0.15
)

// actionCluster groups action points that are close in time and space.
// Its center is always the primary point's position, never an average, so
// distinct UI targets are not blended together.
type actionCluster struct {
	points  []ActionPoint
	primary ActionPoint
}

func (c *actionCluster) last() ActionPoint { return c.points[len(c.points)-1] }

// betterPrimary reports whether candidate should replace current as the
// cluster's primary: strictly greater importance wins, equal importance
// goes to the earlier point.
func betterPrimary(candidate, current ActionPoint) bool {
	if candidate.Importance != current.Importance {
		return candidate.Importance > current.Importance
	}
	return candidate.TimeMs < current.TimeMs
}

// clusterActions folds sorted action points into camera-intent clusters. A
// point joins the most recent eligible cluster, scanning backwards.
func clusterActions(points []ActionPoint, w, h float64, cfg config.DetectConfig) []actionCluster {
	var clusters []actionCluster

	for _, p := range points {
		joined := false
		for i := len(clusters) - 1; i >= 0; i-- {
			c := &clusters[i]
			// Clusters interleave spatially, so an older cluster can still hold
			// the most recent point. Check them all instead of stopping early.
			if p.TimeMs-c.last().TimeMs > cfg.ActionClusterWindowMs {
				continue
			}
			if normDist(p.X, p.Y, c.primary.X, c.primary.Y, w, h) < actionClusterSpatialThreshold {
				c.points = append(c.points, p)
				if betterPrimary(p, c.primary) {
					c.primary = p
				}
				joined = true
				break
			}
		}
		if !joined {
			clusters = append(clusters, actionCluster{points: []ActionPoint{p}, primary: p})
		}
	}

	return clusters
}

// capClusterFrequency keeps at most ceil(duration/60000 × maxPerMinute)
// clusters, preferring the most important ones, then restores chronological
// order.
func capClusterFrequency(clusters []actionCluster, durationMs float64, maxPerMinute float64) []actionCluster {
	maxZooms := int(math.Ceil(durationMs / 60000.0 * maxPerMinute))
	if maxZooms <= 0 {
		// A zero-length recording (or a zero cap) allows no zooms at all.
		return nil
	}
	if len(clusters) <= maxZooms {
		return clusters
	}

	byImportance := make([]actionCluster, len(clusters))
	copy(byImportance, clusters)
	sort.SliceStable(byImportance, func(i, j int) bool {
		return byImportance[i].primary.Importance > byImportance[j].primary.Importance
	})

	kept := byImportance[:maxZooms]
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].primary.TimeMs < kept[j].primary.TimeMs })
	return kept
}

// scaleRangeFor selects the scale preset for the primary action's context.
func scaleRangeFor(ctx Context, cfg config.DetectConfig) config.ScaleRange {
	switch ctx {
	case ContextTyping:
		return cfg.ScaleTyping
	case ContextDeliberateClick:
		return cfg.ScaleDeliberateClick
	case ContextScrollStop:
		return cfg.ScaleScrollStop
	default:
		return cfg.ScaleClickCluster
	}
}

// blockScale interpolates the scale inside the context range by how far the
// importance sits above the detection threshold, rounded to one decimal.
func blockScale(importance float64, rng config.ScaleRange, cfg config.DetectConfig) float64 {
	span := 1.0 - cfg.MinImportanceThreshold
	t := 0.0
	if span > 0 {
		t = clamp01((importance - cfg.MinImportanceThreshold) / span)
	}
	scale := rng.Min + (rng.Max-rng.Min)*t
	return math.Round(scale*10) / 10
}

// holdDuration starts from the base hold and extends it while the user keeps
// typing or keeps the mouse parked near the cluster center. Follow-up
// activity is looked for within the window anchored at the cluster's first
// point; the extension itself is measured from the primary, where the block
// anchors.
func holdDuration(rec *events.Recording, c actionCluster, w, h float64, cfg config.DetectConfig) float64 {
	hold := cfg.BaseHoldMs
	focus := c.primary.TimeMs
	windowStart := c.points[0].TimeMs

	keys := rec.KeysBetween(windowStart, windowStart+holdLookaheadMs)
	if len(keys) >= 4 {
		extended := keys[len(keys)-1].TimeMs + keyExtensionTailMs - focus
		capped := cfg.BaseHoldMs + keyExtensionCapMs
		if extended > capped {
			extended = capped
		}
		if extended > hold {
			hold = extended
		}
		return hold
	}

	moves := rec.MovesBetween(windowStart, windowStart+holdLookaheadMs)
	near := 0
	lastNear := focus
	for _, m := range moves {
		if normDist(m.X, m.Y, c.primary.X, c.primary.Y, w, h) <= mousePresenceRadius {
			near++
			lastNear = m.TimeMs
		}
	}
	if near > mousePresenceMin && near > 2*len(keys) {
		extended := lastNear - focus
		capped := cfg.BaseHoldMs + mouseExtensionCapMs
		if extended > capped {
			extended = capped
		}
		if extended > hold {
			hold = extended
		}
	}

	return hold
}

// buildBlock turns one surviving cluster into a concrete zoom block,
// anchoring the window so the primary action lands inside the intro ramp and
// shifting the whole window earlier when it would overrun the end guard.
func buildBlock(rec *events.Recording, c actionCluster, w, h float64, cfg config.DetectConfig) timeline.ZoomBlock {
	rng := scaleRangeFor(c.primary.Context, cfg)
	scale := blockScale(c.primary.Importance, rng, cfg)
	hold := holdDuration(rec, c, w, h, cfg)

	anticipation := cfg.AnticipationMs
	if anticipation > cfg.IntroMs {
		anticipation = cfg.IntroMs
	}

	start := c.primary.TimeMs - anticipation
	if start < 0 {
		start = 0
	}
	end := start + cfg.IntroMs + hold + cfg.OutroMs

	// Shift the window earlier rather than truncating it when it would run
	// past the end guard. If it still cannot fit, use the full span.
	limit := rec.DurationMs - cfg.EndGuardMs
	if limit > 0 && end > limit {
		shift := end - limit
		start -= shift
		end = limit
		if start < 0 {
			start = 0
		}
	}
	if end <= start {
		end = rec.DurationMs
	}

	return timeline.ZoomBlock{
		ID:         uuid.NewString(),
		Origin:     timeline.OriginAuto,
		StartMs:    start,
		EndMs:      end,
		Scale:      scale,
		Target:     timeline.Point{X: c.primary.X, Y: c.primary.Y},
		ScreenW:    w,
		ScreenH:    h,
		IntroMs:    cfg.IntroMs,
		OutroMs:    cfg.OutroMs,
		Importance: c.primary.Importance,
	}
}

// EnforceMinimumGap drops blocks that start too soon after the previous
// accepted block, unless the newcomer zooms harder, in which case it
// replaces the previous block instead.
func EnforceMinimumGap(blocks []timeline.ZoomBlock, minGapMs float64) []timeline.ZoomBlock {
	if len(blocks) == 0 {
		return blocks
	}

	sorted := make([]timeline.ZoomBlock, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartMs < sorted[j].StartMs })

	accepted := sorted[:1]
	for _, candidate := range sorted[1:] {
		prev := &accepted[len(accepted)-1]
		if candidate.StartMs-prev.EndMs < minGapMs {
			if candidate.Scale > prev.Scale {
				*prev = candidate
			}
			continue
		}
		accepted = append(accepted, candidate)
	}

	return accepted
}
