package renderer

import (
	"fmt"
	"os"
	"strings"

	"github.com/ivlev/screencam/internal/camera"
	"github.com/ivlev/screencam/internal/config"
	"github.com/ivlev/screencam/internal/events"
	"github.com/ivlev/screencam/internal/timeline"
)

// PathSample is one frame of the exported camera path.
type PathSample struct {
	Frame   int
	TimeMs  float64
	CenterX float64
	CenterY float64
	Scale   float64
}

// SamplePath evaluates the camera once per output frame in deterministic
// mode, so repeated exports of the same project produce identical paths.
func SamplePath(rec *events.Recording, scenario *timeline.Scenario, cfg config.CameraConfig, fps int, cursor *camera.CursorSettings) []PathSample {
	if rec == nil || rec.DurationMs <= 0 || fps <= 0 {
		return nil
	}

	frameMs := 1000.0 / float64(fps)
	frameCount := int(rec.DurationMs/frameMs) + 1

	var blocks []timeline.ZoomBlock
	var annotations []timeline.Annotation
	if scenario != nil {
		blocks = scenario.Blocks
		annotations = scenario.Annotations
	}

	samples := make([]PathSample, 0, frameCount)
	state := camera.NewPhysicsState()

	for frame := 0; frame < frameCount; frame++ {
		tMs := float64(frame) * frameMs

		out := camera.ComputeCameraState(camera.Input{
			Blocks:        blocks,
			Annotations:   annotations,
			Recording:     rec,
			TimelineMs:    tMs,
			SourceMs:      tMs,
			Physics:       state,
			Deterministic: true,
			Cursor:        cursor,
			Config:        cfg,
		})
		state = out.Physics

		samples = append(samples, PathSample{
			Frame:   frame,
			TimeMs:  tMs,
			CenterX: out.Center.X,
			CenterY: out.Center.Y,
			Scale:   out.Scale,
		})
	}

	return samples
}

// WritePathCSV writes the sampled path in the frame,time_ms,cx,cy,scale
// format the compositing layer consumes.
func WritePathCSV(samples []PathSample, path string) error {
	var b strings.Builder
	b.WriteString("frame,time_ms,center_x,center_y,scale\n")
	for _, s := range samples {
		fmt.Fprintf(&b, "%d,%.3f,%.6f,%.6f,%.3f\n", s.Frame, s.TimeMs, s.CenterX, s.CenterY, s.Scale)
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}
