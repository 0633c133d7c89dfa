package analyzer

import (
	"fmt"
	"image"
	"time"

	apperrors "go-plant-inspector/internal/errors"
	"go-plant-inspector/pkg/validation"
)

// coreAnalyzer implements PlantAnalyzer and orchestrates all components
type coreAnalyzer struct {
	classifier        PixelClassifier
	metricsCalculator MetricsCalculator
	photoValidator    *validation.PhotoValidator
}

// NewPlantAnalyzer creates a new plant analyzer with all components
func NewPlantAnalyzer() (PlantAnalyzer, error) {
	return &coreAnalyzer{
		classifier:        NewPixelClassifier(),
		metricsCalculator: NewMetricsCalculator(),
		photoValidator:    validation.NewPhotoValidator(),
	}, nil
}

// Analyze classifies sampled pixels and derives health metrics.
func (ca *coreAnalyzer) Analyze(buf ImageBuffer, options AnalysisOptions) (result AnalysisResult, err error) {
	start := time.Now()
	options = options.normalized()

	if err := buf.Validate(); err != nil {
		return AnalysisResult{}, apperrors.NewAnalysisError("invalid image buffer", err)
	}

	// Any panic while walking pixels fails the whole call.
	defer func() {
		if r := recover(); r != nil {
			result = AnalysisResult{}
			err = apperrors.NewAnalysisError("pixel processing failed", fmt.Errorf("%v", r))
		}
	}()

	counts := ca.classifier.Classify(buf, options)
	base := ca.metricsCalculator.PercentageBase(buf, counts, options)
	metrics := ca.metricsCalculator.CalculateHealthMetrics(counts, base)

	result = AnalysisResult{
		Timestamp:     start,
		Metrics:       metrics,
		SampledPixels: counts.SampledPixels,
		BaseMode:      string(options.BaseMode),
	}

	if options.IncludeColorProfile {
		profile := ca.metricsCalculator.CalculateColorProfile(buf, options.SampleStride)
		result.ColorProfile = &profile
	}

	if !options.SkipPhotoValidation {
		var avgLum float64
		if counts.SampledPixels > 0 {
			avgLum = counts.LuminanceSum / float64(counts.SampledPixels)
		}
		issues := ca.photoValidator.Validate(validation.PhotoMetrics{
			Width:         buf.Width,
			Height:        buf.Height,
			SampledPixels: counts.SampledPixels,
			AvgLuminance:  avgLum,
			GreenCoverage: metrics.GreenCoverage,
		})
		result.Warnings = ca.photoValidator.ConvertIssuesToMessages(issues)
	}

	result.ProcessingTimeSec = time.Since(start).Seconds()
	return result, nil
}

// AnalyzeImage converts a decoded image and analyzes it
func (ca *coreAnalyzer) AnalyzeImage(img image.Image, options AnalysisOptions) (AnalysisResult, error) {
	if img == nil {
		return AnalysisResult{}, apperrors.NewAnalysisError("no image to analyze", ErrEmptyImage)
	}
	return ca.Analyze(BufferFromImage(img), options)
}

// Close releases analyzer resources
func (ca *coreAnalyzer) Close() error {
	return nil
}
