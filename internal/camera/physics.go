package camera

import (
	"math"

	"github.com/ivlev/screencam/internal/config"
	"github.com/ivlev/screencam/internal/events"
	"github.com/ivlev/screencam/internal/timeline"
)

// stopHysteresis widens the stop threshold while frozen so the camera does
// not flicker between frozen and following on cursor jitter.
const stopHysteresis = 1.5

// snapEpsilon is the normalized distance below which smoothing snaps to the
// target instead of interpolating forever.
const snapEpsilon = 1e-4

// PhysicsState is the carry-over between successive per-frame calls. The
// caller owns it; ComputeCameraState returns an updated copy. A fresh state
// (or deterministic mode) starts centered with no history.
type PhysicsState struct {
	Center   NormPoint
	Velocity NormPoint // reserved, currently always zero

	LastTimeMs   float64
	LastSourceMs float64

	// Cursor-stop bookkeeping
	Frozen       bool
	StoppedAtMs  float64
	FrozenTarget NormPoint
}

// NewPhysicsState returns the deterministic initial state: centered, with no
// call history. Callers reset to this whenever they detect a seek themselves
// or switch to export mode.
func NewPhysicsState() PhysicsState {
	return PhysicsState{
		Center:       NormPoint{X: 0.5, Y: 0.5},
		LastTimeMs:   -1,
		LastSourceMs: -1,
	}
}

// Input carries everything one camera computation needs.
type Input struct {
	Blocks      []timeline.ZoomBlock
	Annotations []timeline.Annotation
	Recording   *events.Recording

	TimelineMs float64
	SourceMs   float64

	Physics       PhysicsState
	Deterministic bool

	OutputAspect float64          // output w/h; 0 keeps the source aspect
	Cursor       *CursorSettings // nil when no cursor effect is active

	Config config.CameraConfig
}

// Output is the camera framing for one instant.
type Output struct {
	Block   *timeline.ZoomBlock // active block, points into Input.Blocks; nil outside blocks
	Scale   float64
	Center  NormPoint
	Physics PhysicsState
}

// ComputeCameraState computes the virtual camera's center and scale for one
// timeline instant. It never fails: missing inputs degrade to a centered,
// unzoomed frame.
func ComputeCameraState(in Input) Output {
	cfg := in.Config
	st := in.Physics
	if st.LastTimeMs == 0 && st.LastSourceMs == 0 && st.Center == (NormPoint{}) {
		// Zero-value state from a caller that did not call NewPhysicsState.
		st = NewPhysicsState()
	}

	var w, h float64
	if in.Recording != nil {
		w, h = in.Recording.Dims()
	}

	// 1. Active block at this instant.
	block := activeBlockAt(in.Blocks, in.TimelineMs, cfg.BlockEpsilonMs)

	// 2. Target scale with intro/outro easing.
	scale, introBlend := easedScale(block, in.TimelineMs, cfg)

	// 3. Visible half-window at this scale.
	halfX, halfY := halfWindow(scale, w, h, in.OutputAspect)

	// 4.-7. Follow target.
	target, stopped, st2 := resolveTarget(in, block, st, scale, halfX, halfY, introBlend, w, h)
	st = st2

	// 8. Update policy: deterministic snap, seek snap, or smoothing.
	if in.Deterministic {
		st.Center = target
	} else if st.LastTimeMs < 0 || in.TimelineMs < st.LastTimeMs || in.TimelineMs-st.LastTimeMs > cfg.SeekThresholdMs {
		// A jump in timeline time means the user scrubbed; snapping avoids a
		// visible fly-in.
		st.Center = target
	} else {
		st.Center = smoothTowards(st, target, in, block, cfg)
	}
	st.LastTimeMs = in.TimelineMs
	st.LastSourceMs = in.SourceMs

	// 9. Keep the whole cursor glyph visible while actively following it.
	if in.Cursor != nil && !stopped && followStrategy(block) == timeline.FollowCursor && in.Recording != nil {
		if cx, cy, ok := in.Recording.CursorAt(in.SourceMs); ok {
			st.Center = projectForVisibility(st.Center, SourcePoint{X: cx, Y: cy}.Norm(w, h), in.Cursor.margins(w, h), halfX, halfY)
		}
	}

	// 10. Final clamp into content bounds plus overscan.
	st.Center = clampCenter(st.Center, halfX, halfY, cfg.Overscan)

	return Output{
		Block:   block,
		Scale:   scale,
		Center:  st.Center,
		Physics: st,
	}
}

// activeBlockAt finds the block containing tMs, or failing that the block
// whose boundary lies within epsilon, to tolerate frame-time rounding.
func activeBlockAt(blocks []timeline.ZoomBlock, tMs, epsMs float64) *timeline.ZoomBlock {
	for i := range blocks {
		if blocks[i].Contains(tMs) {
			return &blocks[i]
		}
	}

	var nearest *timeline.ZoomBlock
	best := epsMs
	for i := range blocks {
		b := &blocks[i]
		for _, edge := range [2]float64{b.StartMs, b.EndMs} {
			d := math.Abs(tMs - edge)
			if d <= best {
				best = d
				nearest = b
			}
		}
	}
	return nearest
}

// easedScale returns the scale at tMs and the intro blend factor (eased,
// 1 once the intro has completed).
func easedScale(block *timeline.ZoomBlock, tMs float64, cfg config.CameraConfig) (float64, float64) {
	if block == nil {
		return 1, 0
	}

	target := block.Scale
	if block.AutoScale {
		target = fillScale(cfg.Overscan)
	}
	if target < 1 {
		target = 1
	}

	switch {
	case block.IntroMs > 0 && tMs < block.StartMs+block.IntroMs:
		blend := EaseInOutCubic(clamp01((tMs - block.StartMs) / block.IntroMs))
		return Lerp(1, target, blend), blend
	case block.OutroMs > 0 && tMs > block.EndMs-block.OutroMs:
		blend := EaseInOutCubic(clamp01((block.EndMs - tMs) / block.OutroMs))
		return Lerp(1, target, blend), 1
	default:
		return target, 1
	}
}

// halfWindow is the visible half-extent of the source in normalized units,
// adjusted when the output aspect differs from the source aspect.
func halfWindow(scale, w, h, outputAspect float64) (float64, float64) {
	halfX := 0.5 / scale
	halfY := 0.5 / scale

	if outputAspect > 0 && w > 0 && h > 0 {
		factor := outputAspect / (w / h)
		if factor < 1 {
			halfX *= factor
		} else if factor > 1 {
			halfY /= factor
		}
	}
	return halfX, halfY
}

func followStrategy(block *timeline.ZoomBlock) string {
	if block == nil || block.FollowStrategy == "" {
		return timeline.FollowCursor
	}
	return block.FollowStrategy
}

// resolveTarget runs steps 4-7: raw follow position, cursor-stop freezing,
// dead-zone re-centering and the intro blend from the pre-zoom center.
func resolveTarget(in Input, block *timeline.ZoomBlock, st PhysicsState, scale, halfX, halfY, introBlend, w, h float64) (NormPoint, bool, PhysicsState) {
	cfg := in.Config
	center := NormPoint{X: 0.5, Y: 0.5}

	if block == nil || scale <= 1 {
		st.Frozen = false
		st.StoppedAtMs = 0
		return center, false, st
	}

	// 4. Raw follow position.
	follow := blockTargetNorm(block, w, h)
	strategy := followStrategy(block)
	switch strategy {
	case timeline.FollowCenter:
		follow = center
	case timeline.FollowCursor:
		if in.Recording != nil {
			if cx, cy, ok := in.Recording.CursorAt(in.SourceMs); ok {
				follow = SourcePoint{X: cx, Y: cy}.Norm(w, h)
			}
		}
	}
	follow.X = clamp(follow.X, -cfg.Overscan, 1+cfg.Overscan)
	follow.Y = clamp(follow.Y, -cfg.Overscan, 1+cfg.Overscan)

	// 5. Cursor-stop freezing with hysteresis.
	stopped := false
	if strategy == timeline.FollowCursor && in.Recording != nil && scale >= cfg.MinFreezeScale {
		threshold := cfg.StopSpeedPxPerSec
		if st.Frozen && !in.Deterministic {
			threshold *= stopHysteresis
		}
		jitter := cfg.JitterPx
		if block.MouseIdlePx > 0 {
			jitter = block.MouseIdlePx
		}

		since, at, ok := stoppedSince(in.Recording, in.SourceMs, threshold, jitter)
		if ok && since >= cfg.DwellMs {
			stopped = true
			frozenAt := at.Norm(w, h)
			if in.Deterministic || !st.Frozen {
				st.FrozenTarget = frozenAt
				st.StoppedAtMs = in.SourceMs - since
			}
			st.Frozen = true
			follow = st.FrozenTarget
		} else {
			st.Frozen = false
			st.StoppedAtMs = 0
		}
	} else {
		st.Frozen = false
		st.StoppedAtMs = 0
	}

	// 6. Dead zone: only re-center once the cursor leaves the rectangle
	// around the current center. Skipped in deterministic mode, which has no
	// meaningful "current" center.
	target := follow
	if strategy == timeline.FollowCursor && !in.Deterministic {
		target = applyDeadZone(st.Center, follow, halfX*cfg.DeadZoneFrac, halfY*cfg.DeadZoneFrac)
	}

	// 7. Blend from the pre-zoom center while the intro ramp is running.
	if introBlend < 1 {
		target.X = Lerp(center.X, target.X, introBlend)
		target.Y = Lerp(center.Y, target.Y, introBlend)
	}

	return target, stopped, st
}

func blockTargetNorm(block *timeline.ZoomBlock, w, h float64) NormPoint {
	bw, bh := block.ScreenW, block.ScreenH
	if bw <= 0 || bh <= 0 {
		bw, bh = w, h
	}
	return SourcePoint{X: block.Target.X, Y: block.Target.Y}.Norm(bw, bh)
}

// applyDeadZone moves the center just enough to bring the cursor back to the
// dead-zone edge, and not at all while the cursor stays inside it.
func applyDeadZone(center, cursor NormPoint, deadX, deadY float64) NormPoint {
	target := center

	dx := cursor.X - center.X
	if dx > deadX {
		target.X = cursor.X - deadX
	} else if dx < -deadX {
		target.X = cursor.X + deadX
	}

	dy := cursor.Y - center.Y
	if dy > deadY {
		target.Y = cursor.Y - deadY
	} else if dy < -deadY {
		target.Y = cursor.Y + deadY
	}

	return target
}

// smoothTowards applies exponential smoothing toward the target, with the
// time constant stretched by the playback rate and tripled while frozen.
func smoothTowards(st PhysicsState, target NormPoint, in Input, block *timeline.ZoomBlock, cfg config.CameraConfig) NormPoint {
	dt := (in.TimelineMs - st.LastTimeMs) / 1000
	if dt <= 0 {
		return target
	}

	smoothing := cfg.DefaultSmoothing
	if block != nil && block.Smoothing > 0 {
		smoothing = block.Smoothing
	}
	if boost := smoothingBoostAt(in.Annotations, in.TimelineMs); boost > smoothing {
		smoothing = boost
	}

	// Estimated playback rate from how fast source time advances relative to
	// timeline time.
	rate := 1.0
	if st.LastSourceMs >= 0 {
		tDelta := in.TimelineMs - st.LastTimeMs
		sDelta := in.SourceMs - st.LastSourceMs
		if tDelta > 0 {
			rate = clamp(sDelta/tDelta, 0.5, 3)
		}
	}

	tau := Lerp(cfg.MinTauSec, cfg.MaxTauSec, clamp01(smoothing/100)) / rate
	if st.Frozen {
		tau *= 3 // slower, steadier hold while the cursor rests
	}

	alpha := 1 - math.Exp(-dt/tau)
	next := NormPoint{
		X: Lerp(st.Center.X, target.X, alpha),
		Y: Lerp(st.Center.Y, target.Y, alpha),
	}

	if math.Abs(next.X-target.X) < snapEpsilon && math.Abs(next.Y-target.Y) < snapEpsilon {
		return target
	}
	return next
}

// smoothingBoostAt returns the strongest cinematic-scroll smoothing boost
// active at tMs.
func smoothingBoostAt(annotations []timeline.Annotation, tMs float64) float64 {
	boost := 0.0
	for _, a := range annotations {
		if a.Kind != timeline.AnnotationCinematicScroll {
			continue
		}
		if tMs >= a.StartMs && tMs < a.EndMs && a.SmoothingBoost > boost {
			boost = a.SmoothingBoost
		}
	}
	return boost
}

// projectForVisibility shifts the center so the entire cursor glyph stays
// inside the visible window. When the constraints cannot be satisfied (glyph
// larger than the window) the center is left for the ordinary clamp.
func projectForVisibility(center, cursor NormPoint, m cursorMargins, halfX, halfY float64) NormPoint {
	loX := cursor.X + m.right - halfX
	hiX := cursor.X - m.left + halfX
	if loX <= hiX {
		center.X = clamp(center.X, loX, hiX)
	}

	loY := cursor.Y + m.bottom - halfY
	hiY := cursor.Y - m.top + halfY
	if loY <= hiY {
		center.Y = clamp(center.Y, loY, hiY)
	}

	return center
}
