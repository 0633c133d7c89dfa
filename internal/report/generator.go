package report

import (
	"go-plant-inspector/pkg/models"
)

// Status colors and icon tokens rendered by clients
const (
	ColorHealthy        = "#4caf50"
	ColorModerate       = "#ff9800"
	ColorNeedsAttention = "#f44336"

	IconHealthy  = "healthy"
	IconWarning  = "warning"
	IconCritical = "critical"
)

// Band boundaries on the 0-100 health score
const (
	HealthyAbove  = 70
	ModerateAbove = 40
)

// Recommendation texts, emitted in this order when their rule applies
const (
	RecHealthy     = "Your plant appears healthy! Continue current care routine."
	RecWatering    = "Check your watering schedule - ensure proper drainage"
	RecFertilizer  = "Consider using plant-appropriate fertilizer"
	RecYellowing   = "Yellowing may indicate overwatering or nutrient deficiency"
	RecBrowning    = "Browning could mean too much direct sunlight or under-watering"
	RecCloserPhoto = "For better analysis, take a closer photo focused on the plant"
	RecNoIssues    = "No specific issues detected. Maintain regular plant care."
)

// Rule thresholds on the area percentages
const (
	yellowingAbove   = 10.0
	browningAbove    = 5.0
	lowCoverageBelow = 30.0
)

// Generator turns health metrics into a user-facing report
type Generator interface {
	Generate(metrics models.HealthMetrics) models.HealthReport
}

type generator struct{}

// NewGenerator creates a report generator
func NewGenerator() Generator {
	return generator{}
}

// Generate is pure: the same metrics always give the same report
func (generator) Generate(metrics models.HealthMetrics) models.HealthReport {
	status, color, icon := Classify(metrics.HealthScore)
	return models.HealthReport{
		HealthScore:     metrics.HealthScore,
		Status:          status,
		StatusColor:     color,
		StatusIcon:      icon,
		Metrics:         metrics,
		Recommendations: Recommendations(metrics),
	}
}

// Classify maps a score to its status band, color and icon token
func Classify(score int) (models.HealthStatus, string, string) {
	switch {
	case score > HealthyAbove:
		return models.StatusHealthy, ColorHealthy, IconHealthy
	case score > ModerateAbove:
		return models.StatusModerate, ColorModerate, IconWarning
	default:
		return models.StatusNeedsAttention, ColorNeedsAttention, IconCritical
	}
}

// Recommendations applies the care rules in order. The result is never empty.
func Recommendations(metrics models.HealthMetrics) []string {
	var recs []string

	if metrics.HealthScore > HealthyAbove {
		recs = append(recs, RecHealthy)
	} else {
		recs = append(recs, RecWatering, RecFertilizer)
	}

	if metrics.YellowAreas > yellowingAbove {
		recs = append(recs, RecYellowing)
	}
	if metrics.BrownAreas > browningAbove {
		recs = append(recs, RecBrowning)
	}
	if metrics.GreenCoverage < lowCoverageBelow {
		recs = append(recs, RecCloserPhoto)
	}

	if len(recs) == 0 {
		recs = append(recs, RecNoIssues)
	}
	return recs
}
