package analyzer

// BaseMode selects the denominator used for area percentages
type BaseMode string

const (
	// BaseReference divides by totalPixels/stride as a fraction. It matches
	// the visited count when the pixel count is a multiple of the stride and
	// undercounts it otherwise, so tiny photos can report more than 100%.
	// Kept for parity with existing scores.
	BaseReference BaseMode = "reference"

	// BaseSampled divides by the number of pixels actually visited.
	BaseSampled BaseMode = "sampled"
)

// DefaultSampleStride samples every 4th pixel (16 bytes)
const DefaultSampleStride = 4

// ColorThresholds are the channel bounds for each color band, in 0-255.
//
//	green:  g > r && g > b && g > GreenMin
//	yellow: r > YellowMinRed && g > YellowMinGreen && b < YellowMaxBlue
//	brown:  BrownMinRed < r < BrownMaxRed && g < r && b < BrownMaxBlue
type ColorThresholds struct {
	GreenMin       int
	YellowMinRed   int
	YellowMinGreen int
	YellowMaxBlue  int
	BrownMinRed    int
	BrownMaxRed    int
	BrownMaxBlue   int
}

// DefaultThresholds returns the standard band thresholds
func DefaultThresholds() ColorThresholds {
	return ColorThresholds{
		GreenMin:       50,
		YellowMinRed:   150,
		YellowMinGreen: 150,
		YellowMaxBlue:  100,
		BrownMinRed:    100,
		BrownMaxRed:    200,
		BrownMaxBlue:   100,
	}
}

// AnalysisOptions configures a single analysis call
type AnalysisOptions struct {
	// Sampling
	SampleStride int
	BaseMode     BaseMode

	Thresholds ColorThresholds

	// Feature toggles
	IncludeColorProfile bool
	SkipPhotoValidation bool
}

// DefaultOptions reproduces the reference scoring exactly
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		SampleStride: DefaultSampleStride,
		BaseMode:     BaseReference,
		Thresholds:   DefaultThresholds(),
	}
}

// CorrectedOptions keeps the stride but computes percentages against the
// pixels that were really sampled
func CorrectedOptions() AnalysisOptions {
	opts := DefaultOptions()
	opts.BaseMode = BaseSampled
	return opts
}

// FullScanOptions visits every pixel
func FullScanOptions() AnalysisOptions {
	opts := CorrectedOptions()
	opts.SampleStride = 1
	return opts
}

// WithBaseMode returns options using the given percentage base
func (opts AnalysisOptions) WithBaseMode(mode BaseMode) AnalysisOptions {
	opts.BaseMode = mode
	return opts
}

// WithStride returns options sampling every n-th pixel
func (opts AnalysisOptions) WithStride(n int) AnalysisOptions {
	opts.SampleStride = n
	return opts
}

// WithThresholds replaces the band thresholds
func (opts AnalysisOptions) WithThresholds(t ColorThresholds) AnalysisOptions {
	opts.Thresholds = t
	return opts
}

// WithColorProfile enables channel statistics in the result
func (opts AnalysisOptions) WithColorProfile() AnalysisOptions {
	opts.IncludeColorProfile = true
	return opts
}

// normalized fills zero values with defaults
func (opts AnalysisOptions) normalized() AnalysisOptions {
	if opts.SampleStride <= 0 {
		opts.SampleStride = DefaultSampleStride
	}
	if opts.BaseMode != BaseSampled {
		opts.BaseMode = BaseReference
	}
	if opts.Thresholds == (ColorThresholds{}) {
		opts.Thresholds = DefaultThresholds()
	}
	return opts
}
