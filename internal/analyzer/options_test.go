package analyzer

import (
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.SampleStride != 4 {
		t.Errorf("Expected SampleStride 4, got %d", opts.SampleStride)
	}
	if opts.BaseMode != BaseReference {
		t.Errorf("Expected reference base, got %q", opts.BaseMode)
	}
	if opts.Thresholds != DefaultThresholds() {
		t.Errorf("Expected default thresholds, got %+v", opts.Thresholds)
	}
	if opts.IncludeColorProfile {
		t.Error("Expected color profile to be off by default")
	}
}

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()

	want := ColorThresholds{
		GreenMin:       50,
		YellowMinRed:   150,
		YellowMinGreen: 150,
		YellowMaxBlue:  100,
		BrownMinRed:    100,
		BrownMaxRed:    200,
		BrownMaxBlue:   100,
	}
	if th != want {
		t.Errorf("Expected %+v, got %+v", want, th)
	}
}

func TestCorrectedOptions(t *testing.T) {
	opts := CorrectedOptions()

	if opts.BaseMode != BaseSampled {
		t.Errorf("Expected sampled base, got %q", opts.BaseMode)
	}
	if opts.SampleStride != DefaultSampleStride {
		t.Errorf("Expected stride %d, got %d", DefaultSampleStride, opts.SampleStride)
	}
}

func TestFullScanOptions(t *testing.T) {
	opts := FullScanOptions()

	if opts.SampleStride != 1 {
		t.Errorf("Expected stride 1, got %d", opts.SampleStride)
	}
	if opts.BaseMode != BaseSampled {
		t.Errorf("Expected sampled base, got %q", opts.BaseMode)
	}
}

func TestOptionsBuilders(t *testing.T) {
	custom := DefaultThresholds()
	custom.GreenMin = 80

	opts := DefaultOptions().
		WithBaseMode(BaseSampled).
		WithStride(2).
		WithThresholds(custom).
		WithColorProfile()

	if opts.BaseMode != BaseSampled {
		t.Errorf("Expected sampled base, got %q", opts.BaseMode)
	}
	if opts.SampleStride != 2 {
		t.Errorf("Expected stride 2, got %d", opts.SampleStride)
	}
	if opts.Thresholds.GreenMin != 80 {
		t.Errorf("Expected GreenMin 80, got %d", opts.Thresholds.GreenMin)
	}
	if !opts.IncludeColorProfile {
		t.Error("Expected color profile to be enabled")
	}
}

func TestOptionsBuilders_DoNotMutateReceiver(t *testing.T) {
	base := DefaultOptions()
	_ = base.WithStride(8).WithBaseMode(BaseSampled)

	if base.SampleStride != DefaultSampleStride || base.BaseMode != BaseReference {
		t.Errorf("Builder modified the original options: %+v", base)
	}
}

func TestNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   AnalysisOptions
		want AnalysisOptions
	}{
		{
			name: "zero value",
			in:   AnalysisOptions{},
			want: DefaultOptions(),
		},
		{
			name: "negative stride",
			in:   AnalysisOptions{SampleStride: -3, BaseMode: BaseSampled},
			want: CorrectedOptions(),
		},
		{
			name: "unknown base mode",
			in:   AnalysisOptions{SampleStride: 2, BaseMode: "bogus"},
			want: DefaultOptions().WithStride(2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.normalized(); got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
