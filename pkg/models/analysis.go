package models

import "time"

// HealthMetrics is the numeric outcome of one pixel health analysis.
// Area percentages are not clamped; only HealthScore is bounded to 0-100.
type HealthMetrics struct {
	HealthScore        int     `json:"health_score"`
	GreenCoverage      float64 `json:"green_coverage"`
	GreenIntensity     int     `json:"green_intensity"`
	YellowAreas        float64 `json:"yellow_areas"`
	BrownAreas         float64 `json:"brown_areas"`
	TotalDiscoloration float64 `json:"total_discoloration"`
}

// ColorProfile summarizes the sampled pixels per channel (R, G, B).
type ColorProfile struct {
	SampledPixels int        `json:"sampled_pixels"`
	ChannelMeans  [3]float64 `json:"channel_means"`
	ChannelStdDev [3]float64 `json:"channel_std_devs"`
	AvgLuminance  float64    `json:"average_luminance"`
}

// AnalysisResult is what the analyzer produces for a single image
type AnalysisResult struct {
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`

	Metrics       HealthMetrics `json:"metrics"`
	SampledPixels int           `json:"sampled_pixels"`
	BaseMode      string        `json:"base_mode"`

	// Optional channel statistics
	ColorProfile *ColorProfile `json:"color_profile,omitempty"`

	// Photo validation warnings; they never change the score
	Warnings []string `json:"warnings,omitempty"`
}

// HealthStatus is the band a health score falls into
type HealthStatus string

const (
	StatusHealthy        HealthStatus = "Healthy"
	StatusModerate       HealthStatus = "Moderate"
	StatusNeedsAttention HealthStatus = "Needs Attention"
)

// HealthReport is the final, fully resolved output for the caller.
type HealthReport struct {
	HealthScore     int           `json:"health_score"`
	Status          HealthStatus  `json:"status"`
	StatusColor     string        `json:"status_color"`
	StatusIcon      string        `json:"status_icon"`
	Metrics         HealthMetrics `json:"metrics"`
	Recommendations []string      `json:"recommendations"`

	ColorProfile *ColorProfile `json:"color_profile,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`

	Source            string  `json:"source,omitempty"`
	Strategy          string  `json:"strategy,omitempty"`
	Timestamp         string  `json:"timestamp,omitempty"`
	ProcessingTimeSec float64 `json:"processing_time_sec,omitempty"`

	ImageMetadata *ImageMetadata `json:"image_metadata,omitempty"`
}

// ImageMetadata contains metadata about an acquired photo
type ImageMetadata struct {
	ContentType   string `json:"content_type,omitempty"`
	ContentLength int64  `json:"content_length,omitempty"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format,omitempty"`
}
