package validation

// PhotoThresholds defines when a photo is considered unreliable for scoring
type PhotoThresholds struct {
	// Fewer sampled pixels than this make percentages jumpy
	MinSampledPixels int

	// Average Rec. 601 luminance (0-255) below which colors wash out to black
	MinLuminance float64

	// Average luminance above which the photo is likely blown out
	MaxLuminance float64
}

// DefaultPhotoThresholds returns the default photo thresholds
func DefaultPhotoThresholds() PhotoThresholds {
	return PhotoThresholds{
		MinSampledPixels: 64,
		MinLuminance:     30.0,
		MaxLuminance:     235.0,
	}
}

// PhotoMetrics is what the validator needs to know about a sampled photo
type PhotoMetrics struct {
	Width         int
	Height        int
	SampledPixels int
	AvgLuminance  float64
	GreenCoverage float64
}

// PhotoIssue represents a photo validation finding
type PhotoIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// PhotoValidator flags photos whose score should be taken with care.
// It never rejects a photo; structural problems are the analyzer's job.
type PhotoValidator struct {
	thresholds PhotoThresholds
}

// NewPhotoValidator creates a photo validator with default thresholds
func NewPhotoValidator() *PhotoValidator {
	return &PhotoValidator{
		thresholds: DefaultPhotoThresholds(),
	}
}

// NewPhotoValidatorWithThresholds creates a photo validator with custom thresholds
func NewPhotoValidatorWithThresholds(thresholds PhotoThresholds) *PhotoValidator {
	return &PhotoValidator{
		thresholds: thresholds,
	}
}

// Validate returns the issues found for the photo, in a fixed order
func (pv *PhotoValidator) Validate(metrics PhotoMetrics) []PhotoIssue {
	var issues []PhotoIssue

	// 1. Sample size
	if metrics.SampledPixels < pv.thresholds.MinSampledPixels {
		issues = append(issues, PhotoIssue{
			Type:        "low_resolution",
			Message:     "Photo is very small. Results may be unreliable; use a larger photo.",
			Severity:    "warning",
			ActualValue: float64(metrics.SampledPixels),
			Threshold:   float64(pv.thresholds.MinSampledPixels),
		})
	}

	// 2. Exposure
	if metrics.AvgLuminance < pv.thresholds.MinLuminance {
		issues = append(issues, PhotoIssue{
			Type:        "too_dark",
			Message:     "Photo is too dark. Take the photo in more light.",
			Severity:    "warning",
			ActualValue: metrics.AvgLuminance,
			Threshold:   pv.thresholds.MinLuminance,
		})
	} else if metrics.AvgLuminance > pv.thresholds.MaxLuminance {
		issues = append(issues, PhotoIssue{
			Type:        "too_bright",
			Message:     "Photo is too bright. Avoid strong sunlight or flash.",
			Severity:    "warning",
			ActualValue: metrics.AvgLuminance,
			Threshold:   pv.thresholds.MaxLuminance,
		})
	}

	// 3. Overlapping bands or a fractional base on tiny photos
	if metrics.GreenCoverage > 100 {
		issues = append(issues, PhotoIssue{
			Type:        "coverage_overflow",
			Message:     "Green coverage exceeds 100%. Percentages are estimates on very small photos.",
			Severity:    "info",
			ActualValue: metrics.GreenCoverage,
			Threshold:   100,
		})
	}

	return issues
}

// ConvertIssuesToMessages converts issues to plain messages
func (pv *PhotoValidator) ConvertIssuesToMessages(issues []PhotoIssue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}
