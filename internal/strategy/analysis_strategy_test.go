package strategy

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"go-plant-inspector/internal/analyzer"
	"go-plant-inspector/internal/config"
	apperrors "go-plant-inspector/internal/errors"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	a, err := analyzer.NewPlantAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	return NewRegistry(a)
}

// greenImage is a w x h image of (0,200,0)
func greenImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 200, 0, 255})
		}
	}
	return img
}

func TestRegistry_Names(t *testing.T) {
	r := newRegistry(t)
	want := []string{"corrected", "full", "profile", "reference"}
	got := r.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPresetOptions(t *testing.T) {
	r := newRegistry(t)
	base := analyzer.DefaultOptions().WithStride(7).WithColorProfile()

	tests := []struct {
		name   string
		stride int
		mode   analyzer.BaseMode
	}{
		{Reference, 4, analyzer.BaseReference},
		{Corrected, 4, analyzer.BaseSampled},
		{FullScan, 1, analyzer.BaseSampled},
		{Profile, 7, analyzer.BaseReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := r.Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			opts := s.Options(base)
			if opts.SampleStride != tt.stride || opts.BaseMode != tt.mode {
				t.Errorf("Expected stride %d mode %s, got %d %s", tt.stride, tt.mode, opts.SampleStride, opts.BaseMode)
			}
			if !opts.IncludeColorProfile {
				t.Error("Expected base toggles to be kept")
			}
		})
	}
}

func TestStrategies_Analyze(t *testing.T) {
	r := newRegistry(t)

	// 5 pixels: the quarter base overflows, the sampled base does not.
	img := greenImage(5, 1)

	tests := []struct {
		name     string
		coverage float64
		score    int
	}{
		{Reference, 160, 100},
		{Corrected, 100, 78},
		{FullScan, 100, 78},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := r.Lookup(tt.name)
			result, err := s.Analyze(img, analyzer.DefaultOptions())
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result.Metrics.GreenCoverage != tt.coverage || result.Metrics.HealthScore != tt.score {
				t.Errorf("Expected coverage %v score %d, got %+v", tt.coverage, tt.score, result.Metrics)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	r := newRegistry(t)

	tests := []struct {
		name       string
		suggestion string
	}{
		{"refrence", "reference"},
		{"corected", "corrected"},
		{"ful", "full"},
		{"quantum", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Lookup(tt.name)
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if got := r.Suggest(tt.name); got != tt.suggestion {
				t.Errorf("Expected suggestion %q, got %q", tt.suggestion, got)
			}
			if tt.suggestion != "" && !strings.Contains(err.Error(), "did you mean \""+tt.suggestion+"\"") {
				t.Errorf("Expected suggestion in error, got %v", err)
			}
		})
	}
}

func TestOptionsFromProfile(t *testing.T) {
	p := config.DefaultProfile()
	if got := OptionsFromProfile(p); got != analyzer.DefaultOptions() {
		t.Errorf("Expected default profile to match default options, got %+v", got)
	}

	p.BaseMode = config.BaseModeSampled
	p.SampleStride = 2
	p.Thresholds.GreenMin = 70
	p.IncludeColorProfile = true

	opts := OptionsFromProfile(p)
	if opts.BaseMode != analyzer.BaseSampled || opts.SampleStride != 2 {
		t.Errorf("Unexpected sampling %+v", opts)
	}
	if opts.Thresholds.GreenMin != 70 || !opts.IncludeColorProfile {
		t.Errorf("Unexpected thresholds or toggles %+v", opts)
	}
}
