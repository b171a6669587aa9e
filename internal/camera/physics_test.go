package camera

import (
	"math"
	"testing"

	"github.com/ivlev/screencam/internal/config"
	"github.com/ivlev/screencam/internal/events"
	"github.com/ivlev/screencam/internal/timeline"
)

func testRecording() *events.Recording {
	rec := &events.Recording{
		ID:         "rec-cam",
		Width:      1600,
		Height:     900,
		DurationMs: 20000,
	}
	// A cursor that sweeps toward the center, then rests there.
	for ts := 0.0; ts <= 2000; ts += 50 {
		rec.Moves = append(rec.Moves, events.MouseEvent{
			TimeMs: ts,
			X:      100 + (800-100)*ts/2000,
			Y:      100 + (450-100)*ts/2000,
		})
	}
	for ts := 2050.0; ts <= 20000; ts += 100 {
		rec.Moves = append(rec.Moves, events.MouseEvent{TimeMs: ts, X: 800, Y: 450})
	}
	return rec
}

func targetBlock(start, end float64) timeline.ZoomBlock {
	return timeline.ZoomBlock{
		ID:             "blk-1",
		Origin:         timeline.OriginAuto,
		StartMs:        start,
		EndMs:          end,
		Scale:          2.0,
		Target:         timeline.Point{X: 400, Y: 225},
		ScreenW:        1600,
		ScreenH:        900,
		IntroMs:        800,
		OutroMs:        800,
		FollowStrategy: timeline.FollowTarget,
	}
}

func TestEmptyInputDefaults(t *testing.T) {
	out := ComputeCameraState(Input{Config: config.DefaultCameraConfig()})

	if out.Scale != 1.0 {
		t.Errorf("Expected scale 1.0 with no input, got %f", out.Scale)
	}
	if out.Center.X != 0.5 || out.Center.Y != 0.5 {
		t.Errorf("Expected center (0.5, 0.5), got (%f, %f)", out.Center.X, out.Center.Y)
	}
	if out.Block != nil {
		t.Error("Expected no active block")
	}
}

func TestDeterministicRepeatable(t *testing.T) {
	rec := testRecording()
	blocks := []timeline.ZoomBlock{targetBlock(1000, 6000)}

	states := []PhysicsState{
		NewPhysicsState(),
		{Center: NormPoint{X: 0.9, Y: 0.1}, LastTimeMs: 3000, LastSourceMs: 3000, Frozen: true},
	}

	var first Output
	for i, st := range states {
		out := ComputeCameraState(Input{
			Blocks:        blocks,
			Recording:     rec,
			TimelineMs:    3000,
			SourceMs:      3000,
			Physics:       st,
			Deterministic: true,
			Config:        config.DefaultCameraConfig(),
		})
		if i == 0 {
			first = out
			continue
		}
		if out.Center != first.Center || out.Scale != first.Scale {
			t.Errorf("Deterministic output depends on prior state: (%f,%f)x%f vs (%f,%f)x%f",
				out.Center.X, out.Center.Y, out.Scale, first.Center.X, first.Center.Y, first.Scale)
		}
	}
}

func TestIntroOutroEasing(t *testing.T) {
	rec := testRecording()
	blocks := []timeline.ZoomBlock{targetBlock(1000, 6000)}
	cfg := config.DefaultCameraConfig()

	at := func(tMs float64) Output {
		return ComputeCameraState(Input{
			Blocks:        blocks,
			Recording:     rec,
			TimelineMs:    tMs,
			SourceMs:      tMs,
			Physics:       NewPhysicsState(),
			Deterministic: true,
			Config:        cfg,
		})
	}

	if s := at(1000).Scale; s != 1.0 {
		t.Errorf("Expected scale 1.0 at block start, got %f", s)
	}
	if s := at(3000).Scale; s != 2.0 {
		t.Errorf("Expected full scale 2.0 mid-block, got %f", s)
	}
	mid := at(1400).Scale
	if mid <= 1.0 || mid >= 2.0 {
		t.Errorf("Expected intermediate scale inside intro, got %f", mid)
	}
	outro := at(5700).Scale
	if outro <= 1.0 || outro >= 2.0 {
		t.Errorf("Expected intermediate scale inside outro, got %f", outro)
	}
	if s := at(8000).Scale; s != 1.0 {
		t.Errorf("Expected scale 1.0 outside blocks, got %f", s)
	}
}

func TestSeekSnap(t *testing.T) {
	rec := testRecording()
	blocks := []timeline.ZoomBlock{targetBlock(9000, 14000)}
	cfg := config.DefaultCameraConfig()

	st := NewPhysicsState()
	out := ComputeCameraState(Input{
		Blocks: blocks, Recording: rec,
		TimelineMs: 1000, SourceMs: 1000,
		Physics: st, Config: cfg,
	})
	st = out.Physics

	// A jump far beyond the seek threshold must snap, leaving no
	// interpolation residue.
	out = ComputeCameraState(Input{
		Blocks: blocks, Recording: rec,
		TimelineMs: 11000, SourceMs: 11000,
		Physics: st, Config: cfg,
	})

	want := NormPoint{X: 0.25, Y: 0.25}
	if out.Center != want {
		t.Errorf("Expected exact snap to (%f, %f), got (%f, %f)",
			want.X, want.Y, out.Center.X, out.Center.Y)
	}
	if out.Physics.Center != want {
		t.Error("Physics state should carry the snapped center")
	}
}

func TestBoundedness(t *testing.T) {
	rec := testRecording()
	// Cursor-follow block with the cursor near content edges.
	block := targetBlock(1000, 12000)
	block.FollowStrategy = timeline.FollowCursor
	blocks := []timeline.ZoomBlock{block}
	cfg := config.DefaultCameraConfig()

	st := NewPhysicsState()
	for tMs := 0.0; tMs <= 20000; tMs += 40 {
		out := ComputeCameraState(Input{
			Blocks: blocks, Recording: rec,
			TimelineMs: tMs, SourceMs: tMs,
			Physics: st, Config: cfg,
		})
		st = out.Physics

		if out.Scale < 1.0 {
			t.Fatalf("Scale %f below 1 at t=%.0f", out.Scale, tMs)
		}
		if out.Center.X < -cfg.Overscan || out.Center.X > 1+cfg.Overscan ||
			out.Center.Y < -cfg.Overscan || out.Center.Y > 1+cfg.Overscan {
			t.Fatalf("Center (%f, %f) outside overscan bounds at t=%.0f",
				out.Center.X, out.Center.Y, tMs)
		}
	}
}

func TestCursorStopFreeze(t *testing.T) {
	rec := testRecording()
	block := targetBlock(1000, 12000)
	block.FollowStrategy = timeline.FollowCursor
	blocks := []timeline.ZoomBlock{block}
	cfg := config.DefaultCameraConfig()

	// The cursor has been parked at (800, 450) since t=2050; by t=5000 it is
	// far past the dwell requirement.
	out := ComputeCameraState(Input{
		Blocks: blocks, Recording: rec,
		TimelineMs: 5000, SourceMs: 5000,
		Physics: NewPhysicsState(), Deterministic: true,
		Config: cfg,
	})

	if !out.Physics.Frozen {
		t.Fatal("Expected the follow target to freeze on a resting cursor")
	}
	want := SourcePoint{X: 800, Y: 450}.Norm(1600, 900)
	if math.Abs(out.Physics.FrozenTarget.X-want.X) > 1e-9 ||
		math.Abs(out.Physics.FrozenTarget.Y-want.Y) > 1e-9 {
		t.Errorf("Expected frozen target (%f, %f), got (%f, %f)",
			want.X, want.Y, out.Physics.FrozenTarget.X, out.Physics.FrozenTarget.Y)
	}
}

func TestVisibilityProjection(t *testing.T) {
	rec := &events.Recording{
		Width:      1600,
		Height:     900,
		DurationMs: 20000,
	}
	// A cursor moving briskly near the bottom-right corner so it never
	// freezes.
	for ts := 0.0; ts <= 20000; ts += 50 {
		rec.Moves = append(rec.Moves, events.MouseEvent{
			TimeMs: ts,
			X:      1450 + 50*math.Sin(ts/200),
			Y:      780 + 30*math.Cos(ts/200),
		})
	}

	block := targetBlock(1000, 12000)
	block.FollowStrategy = timeline.FollowCursor
	blocks := []timeline.ZoomBlock{block}
	cfg := config.DefaultCameraConfig()
	cursor := &CursorSettings{Style: "arrow", Scale: 2}
	margins := cursor.margins(1600, 900)

	for tMs := 3000.0; tMs <= 10000; tMs += 500 {
		out := ComputeCameraState(Input{
			Blocks: blocks, Recording: rec,
			TimelineMs: tMs, SourceMs: tMs,
			Physics: NewPhysicsState(), Deterministic: true,
			Cursor: cursor, Config: cfg,
		})

		cx, cy, _ := rec.CursorAt(tMs)
		cur := SourcePoint{X: cx, Y: cy}.Norm(1600, 900)
		halfX, halfY := halfWindow(out.Scale, 1600, 900, 0)

		const tol = 1e-9
		if cur.X+margins.right > out.Center.X+halfX+tol ||
			cur.X-margins.left < out.Center.X-halfX-tol {
			t.Errorf("t=%.0f: cursor glyph escapes horizontally (cursor %.4f, center %.4f, half %.4f)",
				tMs, cur.X, out.Center.X, halfX)
		}
		if cur.Y+margins.bottom > out.Center.Y+halfY+tol ||
			cur.Y-margins.top < out.Center.Y-halfY-tol {
			t.Errorf("t=%.0f: cursor glyph escapes vertically (cursor %.4f, center %.4f, half %.4f)",
				tMs, cur.Y, out.Center.Y, halfY)
		}
	}
}

func TestDeadZoneHoldsCenter(t *testing.T) {
	rec := &events.Recording{
		Width:      1600,
		Height:     900,
		DurationMs: 20000,
	}
	// Fast jitter around the screen center, well inside the dead zone, then
	// the cursor parks outside it.
	for i := 0; i <= 160; i++ {
		x := 740.0
		if i%2 == 1 {
			x = 860
		}
		rec.Moves = append(rec.Moves, events.MouseEvent{TimeMs: float64(i) * 50, X: x, Y: 450})
	}
	for ts := 8050.0; ts <= 20000; ts += 50 {
		rec.Moves = append(rec.Moves, events.MouseEvent{TimeMs: ts, X: 1200, Y: 450})
	}

	block := targetBlock(500, 20000)
	block.FollowStrategy = timeline.FollowCursor
	blocks := []timeline.ZoomBlock{block}
	cfg := config.DefaultCameraConfig()

	step := func(st PhysicsState, tMs float64) Output {
		return ComputeCameraState(Input{
			Blocks: blocks, Recording: rec,
			TimelineMs: tMs, SourceMs: tMs,
			Physics: st, Config: cfg,
		})
	}

	// Inside the dead zone the center must not move at all.
	st := NewPhysicsState()
	for tMs := 600.0; tMs <= 7500; tMs += 16 {
		out := step(st, tMs)
		st = out.Physics
		if out.Center != (NormPoint{X: 0.5, Y: 0.5}) {
			t.Fatalf("t=%.0f: center drifted to (%f, %f) on in-zone jitter",
				tMs, out.Center.X, out.Center.Y)
		}
	}

	// Once the cursor leaves the zone the camera re-centers just far enough
	// to put the cursor back on the zone edge.
	var center NormPoint
	for tMs := 7516.0; tMs <= 17000; tMs += 16 {
		out := step(st, tMs)
		st = out.Physics
		center = out.Center
	}

	halfX, _ := halfWindow(2.0, 1600, 900, 0)
	edge := 1200.0/1600 - halfX*cfg.DeadZoneFrac
	if math.Abs(center.X-edge) > 1e-6 {
		t.Errorf("Expected center at the dead-zone edge %.4f, got %.4f", edge, center.X)
	}
	if math.Abs(center.Y-0.5) > 1e-9 {
		t.Errorf("Expected vertical center to hold 0.5, got %f", center.Y)
	}
}

func TestFreezeHysteresis(t *testing.T) {
	rec := &events.Recording{
		Width:      1600,
		Height:     900,
		DurationMs: 20000,
	}
	// Parked, then a slow drift: faster than the stop threshold but slower
	// than the widened release threshold.
	for ts := 0.0; ts <= 4000; ts += 100 {
		rec.Moves = append(rec.Moves, events.MouseEvent{TimeMs: ts, X: 800, Y: 450})
	}
	for ts := 4100.0; ts <= 14000; ts += 100 {
		rec.Moves = append(rec.Moves, events.MouseEvent{TimeMs: ts, X: 800 + (ts-4000)*0.05, Y: 450})
	}

	block := targetBlock(500, 20000)
	block.FollowStrategy = timeline.FollowCursor
	blocks := []timeline.ZoomBlock{block}
	cfg := config.DefaultCameraConfig()

	st := NewPhysicsState()
	var out Output
	for tMs := 1000.0; tMs <= 13500; tMs += 100 {
		out = ComputeCameraState(Input{
			Blocks: blocks, Recording: rec,
			TimelineMs: tMs, SourceMs: tMs,
			Physics: st, Config: cfg,
		})
		st = out.Physics

		if tMs == 4000 && !st.Frozen {
			t.Fatal("Expected the camera to freeze on the parked cursor")
		}
	}

	// 50 px/s sits between the 40 px/s stop threshold and its widened
	// release band, so the freeze must hold through the whole drift.
	if !out.Physics.Frozen {
		t.Error("Expected the freeze to survive a drift below the release threshold")
	}
	want := SourcePoint{X: 800, Y: 450}.Norm(1600, 900)
	if out.Physics.FrozenTarget != want {
		t.Errorf("Expected the frozen target to stay at the park point (%f, %f), got (%f, %f)",
			want.X, want.Y, out.Physics.FrozenTarget.X, out.Physics.FrozenTarget.Y)
	}
	if math.Abs(out.Center.X-0.5) > 1e-9 || math.Abs(out.Center.Y-0.5) > 1e-9 {
		t.Errorf("Expected the camera to hold the park point, got (%f, %f)",
			out.Center.X, out.Center.Y)
	}

	// Without carried freeze state the same drift is plain movement: the
	// widened threshold only applies while already frozen.
	det := ComputeCameraState(Input{
		Blocks: blocks, Recording: rec,
		TimelineMs: 13000, SourceMs: 13000,
		Physics: NewPhysicsState(), Deterministic: true,
		Config: cfg,
	})
	if det.Physics.Frozen {
		t.Error("Expected no freeze for the drifting cursor without hysteresis")
	}
}

func TestBlockEpsilonMatching(t *testing.T) {
	rec := testRecording()
	blocks := []timeline.ZoomBlock{targetBlock(1000, 6000)}
	cfg := config.DefaultCameraConfig()

	// Just past the end, within one frame of rounding slack.
	out := ComputeCameraState(Input{
		Blocks: blocks, Recording: rec,
		TimelineMs: 6010, SourceMs: 6010,
		Physics: NewPhysicsState(), Deterministic: true,
		Config: cfg,
	})
	if out.Block == nil {
		t.Error("Expected the boundary epsilon to match the block just past its end")
	}

	// Far outside any block.
	out = ComputeCameraState(Input{
		Blocks: blocks, Recording: rec,
		TimelineMs: 8000, SourceMs: 8000,
		Physics: NewPhysicsState(), Deterministic: true,
		Config: cfg,
	})
	if out.Block != nil {
		t.Error("Expected no block far outside the range")
	}
}

func TestSmoothingConverges(t *testing.T) {
	rec := testRecording()
	blocks := []timeline.ZoomBlock{targetBlock(1000, 12000)}
	cfg := config.DefaultCameraConfig()

	st := NewPhysicsState()
	var center NormPoint
	// Continuous playback at 60fps through the steady phase of the block.
	for tMs := 2000.0; tMs <= 9000; tMs += 16.7 {
		out := ComputeCameraState(Input{
			Blocks: blocks, Recording: rec,
			TimelineMs: tMs, SourceMs: tMs,
			Physics: st, Config: cfg,
		})
		st = out.Physics
		center = out.Center
	}

	// After seconds of steady target the camera must have converged.
	want := NormPoint{X: 0.25, Y: 0.25}
	if math.Abs(center.X-want.X) > 0.01 || math.Abs(center.Y-want.Y) > 0.01 {
		t.Errorf("Expected convergence near (%f, %f), got (%f, %f)",
			want.X, want.Y, center.X, center.Y)
	}
}
