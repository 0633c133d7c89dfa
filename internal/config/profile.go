package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Percentage base modes accepted in a profile.
const (
	BaseModeReference = "reference"
	BaseModeSampled   = "sampled"
)

// Profile holds analyzer tuning loaded from a YAML file. Keys absent from
// the file keep the values from DefaultProfile.
type Profile struct {
	// SampleStride is the distance between sampled pixels.
	SampleStride int `yaml:"sample_stride"`

	// BaseMode selects the percentage denominator: reference | sampled.
	BaseMode string `yaml:"base_mode"`

	// IncludeColorProfile attaches channel statistics to every report.
	IncludeColorProfile bool `yaml:"include_color_profile"`

	Thresholds ThresholdProfile `yaml:"thresholds"`
}

// ThresholdProfile mirrors the color band thresholds, all in 0-255.
type ThresholdProfile struct {
	GreenMin       int `yaml:"green_min"`
	YellowMinRed   int `yaml:"yellow_min_red"`
	YellowMinGreen int `yaml:"yellow_min_green"`
	YellowMaxBlue  int `yaml:"yellow_max_blue"`
	BrownMinRed    int `yaml:"brown_min_red"`
	BrownMaxRed    int `yaml:"brown_max_red"`
	BrownMaxBlue   int `yaml:"brown_max_blue"`
}

// DefaultProfile returns the built-in tuning.
func DefaultProfile() Profile {
	return Profile{
		SampleStride: 4,
		BaseMode:     BaseModeReference,
		Thresholds: ThresholdProfile{
			GreenMin:       50,
			YellowMinRed:   150,
			YellowMinGreen: 150,
			YellowMaxBlue:  100,
			BrownMinRed:    100,
			BrownMaxRed:    200,
			BrownMaxBlue:   100,
		},
	}
}

// LoadProfile reads and validates the profile at path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %q: %w", path, err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes YAML over the defaults and validates the result.
func ParseProfile(data []byte) (*Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks stride, base mode and threshold ranges.
func (p *Profile) Validate() error {
	if p.SampleStride < 1 || p.SampleStride > 64 {
		return fmt.Errorf("profile: sample_stride must be in [1,64] (got %d)", p.SampleStride)
	}
	switch p.BaseMode {
	case BaseModeReference, BaseModeSampled:
	default:
		return fmt.Errorf("profile: base_mode must be %q or %q (got %q)", BaseModeReference, BaseModeSampled, p.BaseMode)
	}

	t := p.Thresholds
	named := map[string]int{
		"green_min":        t.GreenMin,
		"yellow_min_red":   t.YellowMinRed,
		"yellow_min_green": t.YellowMinGreen,
		"yellow_max_blue":  t.YellowMaxBlue,
		"brown_min_red":    t.BrownMinRed,
		"brown_max_red":    t.BrownMaxRed,
		"brown_max_blue":   t.BrownMaxBlue,
	}
	for name, v := range named {
		if v < 0 || v > 255 {
			return fmt.Errorf("profile: thresholds.%s must be in [0,255] (got %d)", name, v)
		}
	}
	if t.BrownMinRed >= t.BrownMaxRed {
		return fmt.Errorf("profile: thresholds.brown_min_red (%d) must be below brown_max_red (%d)", t.BrownMinRed, t.BrownMaxRed)
	}
	return nil
}
