package camera

import (
	"math"
	"sort"

	"github.com/ivlev/screencam/internal/events"
)

// CursorSettings describes the active cursor effect. The camera engine uses
// it only to size the visibility margins around the cursor hotspot.
type CursorSettings struct {
	Style string  // "arrow", "pointer", "ibeam", "crosshair"
	Scale float64 // rendered size multiplier, 1.0 = native
}

type glyphShape struct {
	w, h       float64 // base rendered size in px
	hotX, hotY float64 // hotspot as a fraction of the glyph box
}

var glyphShapes = map[string]glyphShape{
	"arrow":     {w: 24, h: 24, hotX: 0.2, hotY: 0.1},
	"pointer":   {w: 28, h: 28, hotX: 0.35, hotY: 0.1},
	"ibeam":     {w: 20, h: 26, hotX: 0.5, hotY: 0.5},
	"crosshair": {w: 26, h: 26, hotX: 0.5, hotY: 0.5},
}

// cursorMargins is the normalized extent of the cursor glyph around its
// hotspot, per edge.
type cursorMargins struct {
	left, right float64
	top, bottom float64
}

// margins computes the normalized glyph extents for the given screen size.
func (cs *CursorSettings) margins(w, h float64) cursorMargins {
	shape, ok := glyphShapes[cs.Style]
	if !ok {
		shape = glyphShapes["arrow"]
	}

	scale := cs.Scale
	if scale <= 0 {
		scale = 1
	}

	gw := shape.w * scale
	gh := shape.h * scale

	if w <= 0 || h <= 0 {
		return cursorMargins{}
	}
	return cursorMargins{
		left:   gw * shape.hotX / w,
		right:  gw * (1 - shape.hotX) / w,
		top:    gh * shape.hotY / h,
		bottom: gh * (1 - shape.hotY) / h,
	}
}

// stoppedSince reports how long the cursor has been effectively stationary
// at time tMs and where it is resting. A trail segment counts as stationary
// when it travels less than jitterPx or slower than stopSpeed px/sec.
// Computed purely from the trail so it behaves identically in deterministic
// and interactive evaluation.
func stoppedSince(rec *events.Recording, tMs, stopSpeed, jitterPx float64) (sinceMs float64, at SourcePoint, ok bool) {
	moves := rec.Moves
	if len(moves) == 0 {
		return 0, SourcePoint{}, false
	}

	idx := sort.Search(len(moves), func(i int) bool { return moves[i].TimeMs > tMs }) - 1
	if idx < 0 {
		return 0, SourcePoint{}, false
	}

	// The gap between the last sample and tMs is implicit stillness.
	stopStart := moves[idx].TimeMs
	if stopStart > tMs {
		stopStart = tMs
	}

	for i := idx; i >= 1; i-- {
		dt := moves[i].TimeMs - moves[i-1].TimeMs
		dx := moves[i].X - moves[i-1].X
		dy := moves[i].Y - moves[i-1].Y
		dist := math.Sqrt(dx*dx + dy*dy)

		if dist >= jitterPx {
			speed := math.Inf(1)
			if dt > 0 {
				speed = dist / dt * 1000
			}
			if speed > stopSpeed {
				break
			}
		}
		stopStart = moves[i-1].TimeMs
	}

	return tMs - stopStart, SourcePoint{X: moves[idx].X, Y: moves[idx].Y}, true
}
