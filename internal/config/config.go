package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScaleRange bounds the zoom scale chosen for one action context.
type ScaleRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// DetectConfig holds every tunable of the zoom detection pipeline.
type DetectConfig struct {
	// Click clustering
	ClickClusterWindowMs    float64 `yaml:"clickClusterWindowMs"`
	ClusterSpatialThreshold float64 `yaml:"clusterSpatialThreshold"` // normalized distance
	MinClicksToTrigger      int     `yaml:"minClicksToTrigger"`

	// Deliberate single-click classification
	DeliberatePauseMs           float64 `yaml:"deliberatePauseMs"`
	DeliberateActivityThreshold float64 `yaml:"deliberateActivityThreshold"` // px of travel inside the pause window
	HoverBeforeClickMs          float64 `yaml:"hoverBeforeClickMs"`

	// Typing bursts
	TypingBurstWindowMs float64 `yaml:"typingBurstWindowMs"`
	MinKeysInBurst      int     `yaml:"minKeysInBurst"`

	// Scroll stops
	ScrollStopGapMs       float64 `yaml:"scrollStopGapMs"`
	ScrollStopMinDistance float64 `yaml:"scrollStopMinDistance"`

	// Scoring
	MinImportanceThreshold float64 `yaml:"minImportanceThreshold"`

	// Action clustering and zoom synthesis
	ActionClusterWindowMs float64 `yaml:"actionClusterWindowMs"`
	MaxZoomsPerMinute     float64 `yaml:"maxZoomsPerMinute"`
	MinZoomGapMs          float64 `yaml:"minZoomGapMs"`
	IntroMs               float64 `yaml:"introMs"`
	OutroMs               float64 `yaml:"outroMs"`
	AnticipationMs        float64 `yaml:"anticipationMs"`
	BaseHoldMs            float64 `yaml:"baseHoldMs"`
	EndGuardMs            float64 `yaml:"endGuardMs"`

	ScaleTyping          ScaleRange `yaml:"scaleTyping"`
	ScaleDeliberateClick ScaleRange `yaml:"scaleDeliberateClick"`
	ScaleClickCluster    ScaleRange `yaml:"scaleClickCluster"`
	ScaleScrollStop      ScaleRange `yaml:"scaleScrollStop"`
}

// DefaultDetectConfig returns the tuning used when no tuning file is given.
func DefaultDetectConfig() DetectConfig {
	return DetectConfig{
		ClickClusterWindowMs:    1000,
		ClusterSpatialThreshold: 0.1,
		MinClicksToTrigger:      2,

		DeliberatePauseMs:           2000,
		DeliberateActivityThreshold: 60,
		HoverBeforeClickMs:          1500,

		TypingBurstWindowMs: 2000,
		MinKeysInBurst:      3,

		ScrollStopGapMs:       500,
		ScrollStopMinDistance: 100,

		MinImportanceThreshold: 0.3,

		ActionClusterWindowMs: 4000,
		MaxZoomsPerMinute:     4,
		MinZoomGapMs:          2000,
		IntroMs:               800,
		OutroMs:               1000,
		AnticipationMs:        400,
		BaseHoldMs:            1500,
		EndGuardMs:            500,

		ScaleTyping:          ScaleRange{Min: 1.2, Max: 1.5},
		ScaleDeliberateClick: ScaleRange{Min: 1.5, Max: 2.0},
		ScaleClickCluster:    ScaleRange{Min: 1.4, Max: 1.8},
		ScaleScrollStop:      ScaleRange{Min: 1.3, Max: 1.6},
	}
}

// CameraConfig holds every tunable of the camera physics engine.
type CameraConfig struct {
	Overscan     float64 `yaml:"overscan"`     // extra normalized margin past [0,1]
	DeadZoneFrac float64 `yaml:"deadZoneFrac"` // dead zone half-size as a fraction of the half-window

	// Cursor-stop detection
	StopSpeedPxPerSec float64 `yaml:"stopSpeedPxPerSec"`
	JitterPx          float64 `yaml:"jitterPx"`
	DwellMs           float64 `yaml:"dwellMs"`
	MinFreezeScale    float64 `yaml:"minFreezeScale"`

	// Smoothing / update policy
	SeekThresholdMs  float64 `yaml:"seekThresholdMs"`
	DefaultSmoothing float64 `yaml:"defaultSmoothing"` // 0-100
	MinTauSec        float64 `yaml:"minTauSec"`
	MaxTauSec        float64 `yaml:"maxTauSec"`

	// Tolerance when matching a timestamp against block boundaries
	BlockEpsilonMs float64 `yaml:"blockEpsilonMs"`
}

// DefaultCameraConfig returns the camera tuning used when no tuning file is given.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Overscan:     0.05,
		DeadZoneFrac: 0.35,

		StopSpeedPxPerSec: 40,
		JitterPx:          3,
		DwellMs:           300,
		MinFreezeScale:    1.25,

		SeekThresholdMs:  400,
		DefaultSmoothing: 50,
		MinTauSec:        0.08,
		MaxTauSec:        0.5,

		BlockEpsilonMs: 17, // one frame at 60 fps
	}
}

// Tuning is the optional YAML tuning file overriding the built-in defaults.
type Tuning struct {
	Detect DetectConfig `yaml:"detect"`
	Camera CameraConfig `yaml:"camera"`
}

// DefaultTuning returns a Tuning populated with all defaults.
func DefaultTuning() Tuning {
	return Tuning{
		Detect: DefaultDetectConfig(),
		Camera: DefaultCameraConfig(),
	}
}

// LoadTuning reads a tuning file. Fields absent from the file keep their
// default values.
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return tuning, fmt.Errorf("failed to read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return tuning, fmt.Errorf("failed to parse tuning file: %w", err)
	}
	return tuning, nil
}
