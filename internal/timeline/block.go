package timeline

// Block origin values.
const (
	OriginAuto   = "auto"
	OriginManual = "manual"
)

// Follow strategies for the camera while a block is active.
const (
	FollowCursor = "cursor" // track the live cursor (default)
	FollowTarget = "target" // lock onto the baked target point
	FollowCenter = "center" // lock onto the screen center
)

// Point is a position in source pixel space.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ZoomBlock is a persisted, time-ranged camera directive: what to zoom to,
// how much, and for how long. Created by detection or manually by the user;
// the camera engine treats it as read-only.
type ZoomBlock struct {
	ID     string `yaml:"id"`
	Origin string `yaml:"origin"` // "auto" or "manual"

	StartMs float64 `yaml:"startMs"`
	EndMs   float64 `yaml:"endMs"`
	Scale   float64 `yaml:"scale"`

	// Target point in source pixel space plus the screen dimensions it was
	// computed against, so it survives resolution changes.
	Target  Point   `yaml:"target"`
	ScreenW float64 `yaml:"screenW"`
	ScreenH float64 `yaml:"screenH"`

	IntroMs float64 `yaml:"introMs"`
	OutroMs float64 `yaml:"outroMs"`

	Smoothing      float64 `yaml:"smoothing,omitempty"`      // 0-100, 0 = use engine default
	FollowStrategy string  `yaml:"followStrategy,omitempty"` // empty = FollowCursor
	AutoScale      bool    `yaml:"autoScale,omitempty"`      // derive a fill scale from overscan
	MouseIdlePx    float64 `yaml:"mouseIdlePx,omitempty"`

	Importance float64 `yaml:"importance,omitempty"`
}

// Contains reports whether tMs falls inside the block's active range.
func (b *ZoomBlock) Contains(tMs float64) bool {
	return tMs >= b.StartMs && tMs < b.EndMs
}

// Annotation is a non-zoom effect the camera engine consumes. The only kind
// it reacts to is the "cinematic scroll" smoothing boost.
type Annotation struct {
	Kind           string  `yaml:"kind"`
	StartMs        float64 `yaml:"startMs"`
	EndMs          float64 `yaml:"endMs"`
	SmoothingBoost float64 `yaml:"smoothingBoost,omitempty"` // 0-100
}

// AnnotationCinematicScroll boosts camera smoothing while scrolling.
const AnnotationCinematicScroll = "cinematicScroll"
