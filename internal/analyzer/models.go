package analyzer

import (
	"go-plant-inspector/pkg/models"
)

// Shared result types live in pkg/models so transport and service can use
// them without importing the analyzer.
type (
	AnalysisResult = models.AnalysisResult
	HealthMetrics  = models.HealthMetrics
	ColorProfile   = models.ColorProfile
)

// ImageBuffer is a decoded photo: Width x Height pixels stored as
// R,G,B,A bytes in row-major order. Analysis never modifies Pix.
type ImageBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// ColorCounts accumulates classification results over the sampled pixels
// of a single analysis call.
type ColorCounts struct {
	SampledPixels     int
	GreenPixels       int
	GreenIntensitySum int
	YellowPixels      int
	BrownPixels       int
	LuminanceSum      float64
}
