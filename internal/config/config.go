// Package config loads scene manifests: a YAML file naming the program to
// visualize, its scripted inputs, and the pacing and limits of the run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pyviz/internal/limits"
)

// DefaultSpeedMS is the pause between steps in theater mode.
const DefaultSpeedMS = 600

type Scene struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"` // path to the program, relative to the manifest
	Code   string `yaml:"code"`   // inline program, alternative to Source

	Inputs []string `yaml:"inputs"`

	SpeedMS    int   `yaml:"speed_ms"`
	MaxSteps   int64 `yaml:"max_steps"`
	DeadlineMS int64 `yaml:"deadline_ms"`

	dir string
}

func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Scene{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	if s.Source == "" && s.Code == "" {
		return nil, fmt.Errorf("%s: scene needs either source or code", path)
	}
	if s.Source != "" && s.Code != "" {
		return nil, fmt.Errorf("%s: scene cannot have both source and code", path)
	}
	if s.SpeedMS <= 0 {
		s.SpeedMS = DefaultSpeedMS
	}
	if s.MaxSteps <= 0 {
		s.MaxSteps = limits.DefaultMaxSteps
	}
	return s, nil
}

// Program returns the scene's source text, reading the source file when
// the program is not inline.
func (s *Scene) Program() (string, error) {
	if s.Code != "" {
		return s.Code, nil
	}
	path := s.Source
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Budget builds the step budget for this scene, deadline included.
func (s *Scene) Budget() *limits.Budget {
	b := limits.NewBudget(s.MaxSteps)
	if s.DeadlineMS > 0 {
		b.WithDeadline(time.Now().Add(time.Duration(s.DeadlineMS) * time.Millisecond))
	}
	return b
}

// Speed is the step interval for paced playback.
func (s *Scene) Speed() time.Duration {
	return time.Duration(s.SpeedMS) * time.Millisecond
}
