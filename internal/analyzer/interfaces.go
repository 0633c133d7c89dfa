package analyzer

import "image"

// PlantAnalyzer turns a photo into health metrics
type PlantAnalyzer interface {
	// Analyze classifies a decoded RGBA buffer. It either returns a full
	// result or an AnalysisError, never a partial result.
	Analyze(buf ImageBuffer, options AnalysisOptions) (AnalysisResult, error)

	// AnalyzeImage converts img to an ImageBuffer and analyzes it
	AnalyzeImage(img image.Image, options AnalysisOptions) (AnalysisResult, error)

	// Lifecycle management
	Close() error
}

// PixelClassifier samples pixels and counts color bands
type PixelClassifier interface {
	Classify(buf ImageBuffer, options AnalysisOptions) ColorCounts
}

// MetricsCalculator derives percentages, scores and channel statistics
type MetricsCalculator interface {
	PercentageBase(buf ImageBuffer, counts ColorCounts, options AnalysisOptions) float64
	CalculateHealthMetrics(counts ColorCounts, base float64) HealthMetrics
	CalculateColorProfile(buf ImageBuffer, stride int) ColorProfile
}
