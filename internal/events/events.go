package events

import "sort"

// MouseEvent is a sampled cursor position from the recorder.
type MouseEvent struct {
	TimeMs  float64 `json:"timeMs"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	ScreenW float64 `json:"screenW,omitempty"`
	ScreenH float64 `json:"screenH,omitempty"`
}

// ClickEvent is a mouse button press in source pixel coordinates.
type ClickEvent struct {
	TimeMs  float64 `json:"timeMs"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Button  string  `json:"button,omitempty"`
	ScreenW float64 `json:"screenW,omitempty"`
	ScreenH float64 `json:"screenH,omitempty"`
}

// KeyEvent is a single keystroke. Key codes are opaque to the engine.
type KeyEvent struct {
	TimeMs float64 `json:"timeMs"`
	Key    string  `json:"key,omitempty"`
}

// ScrollEvent is a wheel/trackpad scroll step at the cursor position.
type ScrollEvent struct {
	TimeMs float64 `json:"timeMs"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaX float64 `json:"deltaX"`
	DeltaY float64 `json:"deltaY"`
}

// Recording bundles the raw input telemetry captured alongside a screen
// recording. Events are immutable once loaded; timestamps are milliseconds,
// monotonic within the recording.
type Recording struct {
	ID         string        `json:"id"`
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	DurationMs float64       `json:"durationMs"`
	Moves      []MouseEvent  `json:"moves,omitempty"`
	Clicks     []ClickEvent  `json:"clicks,omitempty"`
	Keys       []KeyEvent    `json:"keys,omitempty"`
	Scrolls    []ScrollEvent `json:"scrolls,omitempty"`
}

// Dims returns the capture dimensions, preferring per-event screen info
// when the recording-level dimensions are missing.
func (r *Recording) Dims() (float64, float64) {
	if r.Width > 0 && r.Height > 0 {
		return r.Width, r.Height
	}
	for _, c := range r.Clicks {
		if c.ScreenW > 0 && c.ScreenH > 0 {
			return c.ScreenW, c.ScreenH
		}
	}
	for _, m := range r.Moves {
		if m.ScreenW > 0 && m.ScreenH > 0 {
			return m.ScreenW, m.ScreenH
		}
	}
	return 0, 0
}

// SortEvents orders every event slice by timestamp. Loaders call this once
// so the detection and camera code can assume chronological order.
func (r *Recording) SortEvents() {
	sort.SliceStable(r.Moves, func(i, j int) bool { return r.Moves[i].TimeMs < r.Moves[j].TimeMs })
	sort.SliceStable(r.Clicks, func(i, j int) bool { return r.Clicks[i].TimeMs < r.Clicks[j].TimeMs })
	sort.SliceStable(r.Keys, func(i, j int) bool { return r.Keys[i].TimeMs < r.Keys[j].TimeMs })
	sort.SliceStable(r.Scrolls, func(i, j int) bool { return r.Scrolls[i].TimeMs < r.Scrolls[j].TimeMs })
}

// CursorAt returns the interpolated cursor position at the given time.
// Before the first sample it returns the first sample, after the last the
// last one. ok is false when the recording has no mouse trail at all.
func (r *Recording) CursorAt(tMs float64) (x, y float64, ok bool) {
	moves := r.Moves
	if len(moves) == 0 {
		return 0, 0, false
	}
	if tMs <= moves[0].TimeMs {
		return moves[0].X, moves[0].Y, true
	}
	if tMs >= moves[len(moves)-1].TimeMs {
		last := moves[len(moves)-1]
		return last.X, last.Y, true
	}

	// Binary search for the first sample at or after tMs.
	idx := sort.Search(len(moves), func(i int) bool { return moves[i].TimeMs >= tMs })
	prev, next := moves[idx-1], moves[idx]

	span := next.TimeMs - prev.TimeMs
	if span <= 0 {
		return next.X, next.Y, true
	}
	t := (tMs - prev.TimeMs) / span
	return prev.X + (next.X-prev.X)*t, prev.Y + (next.Y-prev.Y)*t, true
}

// MovesBetween returns the mouse samples with fromMs <= t < toMs.
func (r *Recording) MovesBetween(fromMs, toMs float64) []MouseEvent {
	lo := sort.Search(len(r.Moves), func(i int) bool { return r.Moves[i].TimeMs >= fromMs })
	hi := sort.Search(len(r.Moves), func(i int) bool { return r.Moves[i].TimeMs >= toMs })
	return r.Moves[lo:hi]
}

// KeysBetween returns the keystrokes with fromMs <= t < toMs.
func (r *Recording) KeysBetween(fromMs, toMs float64) []KeyEvent {
	lo := sort.Search(len(r.Keys), func(i int) bool { return r.Keys[i].TimeMs >= fromMs })
	hi := sort.Search(len(r.Keys), func(i int) bool { return r.Keys[i].TimeMs >= toMs })
	return r.Keys[lo:hi]
}
