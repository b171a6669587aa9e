package timeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario is the on-disk form of a recording's camera directives.
type Scenario struct {
	Version     string       `yaml:"version"`
	Recording   string       `yaml:"recording"`
	Blocks      []ZoomBlock  `yaml:"blocks"`
	Annotations []Annotation `yaml:"annotations,omitempty"`
}

// WriteScenario writes a scenario to a YAML file.
func WriteScenario(scenario *Scenario, path string) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadScenario reads a scenario from a YAML file.
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// GenerateScenarioPath creates a timestamped scenario filename for a recording.
func GenerateScenarioPath(recordingID string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join("output", "scenarios", fmt.Sprintf("zoom_%s_%s.yaml", recordingID, timestamp))
}

// FindLatestScenario finds the most recent scenario file in the given directory.
func FindLatestScenario(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read scenarios directory: %w", err)
	}

	var scenarios []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".yaml") {
			scenarios = append(scenarios, filepath.Join(dir, entry.Name()))
		}
	}

	if len(scenarios) == 0 {
		return "", fmt.Errorf("no scenario files found in %s", dir)
	}

	// Sort by modification time (newest first)
	sort.Slice(scenarios, func(i, j int) bool {
		infoI, _ := os.Stat(scenarios[i])
		infoJ, _ := os.Stat(scenarios[j])
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return scenarios[0], nil
}
