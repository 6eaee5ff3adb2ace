package process

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/loykin/hourgate/internal/detector"
)

// Spec describes one managed application. Specs are fixed at configuration
// time and never mutated while the scheduler runs.
type Spec struct {
	Name       string `json:"name"`       // logical name, also used in log lines and metrics
	Executable string `json:"executable"` // process image base name; defaults to Name
	LaunchPath string `json:"launch_path"`
	Detect     string `json:"detect,omitempty"` // optional check command; exit 0 means running
}

// ExecutableName returns the process image name used for lookups and termination.
func (s Spec) ExecutableName() string {
	if s.Executable != "" {
		return s.Executable
	}
	return s.Name
}

// Detector returns the running-state check for this spec.
func (s Spec) Detector() detector.Detector {
	if strings.TrimSpace(s.Detect) != "" {
		return detector.CommandDetector{Command: s.Detect}
	}
	return detector.NameDetector{Name: s.ExecutableName()}
}

// Resolve returns a copy with a relative LaunchPath anchored at baseDir.
func (s Spec) Resolve(baseDir string) Spec {
	if s.LaunchPath != "" && baseDir != "" && !filepath.IsAbs(s.LaunchPath) {
		s.LaunchPath = filepath.Join(baseDir, s.LaunchPath)
	}
	return s
}

// Validate checks basic invariants of the spec.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("process requires a name")
	}
	if strings.TrimSpace(s.LaunchPath) == "" {
		return fmt.Errorf("process %s requires a launch path", s.Name)
	}
	if strings.ContainsAny(s.ExecutableName(), `"'/\`) {
		return fmt.Errorf("process %s: executable name %q must be a bare image name", s.Name, s.ExecutableName())
	}
	return nil
}
