package report

import (
	"reflect"
	"testing"

	"go-plant-inspector/pkg/models"
)

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		score  int
		status models.HealthStatus
		color  string
		icon   string
	}{
		{100, models.StatusHealthy, ColorHealthy, IconHealthy},
		{71, models.StatusHealthy, ColorHealthy, IconHealthy},
		{70, models.StatusModerate, ColorModerate, IconWarning},
		{41, models.StatusModerate, ColorModerate, IconWarning},
		{40, models.StatusNeedsAttention, ColorNeedsAttention, IconCritical},
		{0, models.StatusNeedsAttention, ColorNeedsAttention, IconCritical},
	}

	for _, tt := range tests {
		status, color, icon := Classify(tt.score)
		if status != tt.status || color != tt.color || icon != tt.icon {
			t.Errorf("score %d: got (%s, %s, %s), want (%s, %s, %s)",
				tt.score, status, color, icon, tt.status, tt.color, tt.icon)
		}
	}
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name    string
		metrics models.HealthMetrics
		want    []string
	}{
		{
			name:    "healthy plant",
			metrics: models.HealthMetrics{HealthScore: 85, GreenCoverage: 95},
			want:    []string{RecHealthy},
		},
		{
			name:    "score at healthy boundary is not healthy",
			metrics: models.HealthMetrics{HealthScore: 70, GreenCoverage: 90},
			want:    []string{RecWatering, RecFertilizer},
		},
		{
			name:    "all rules fire in order",
			metrics: models.HealthMetrics{HealthScore: 10, GreenCoverage: 12, YellowAreas: 25, BrownAreas: 8},
			want:    []string{RecWatering, RecFertilizer, RecYellowing, RecBrowning, RecCloserPhoto},
		},
		{
			name:    "thresholds are strict",
			metrics: models.HealthMetrics{HealthScore: 75, GreenCoverage: 30, YellowAreas: 10, BrownAreas: 5},
			want:    []string{RecHealthy},
		},
		{
			name:    "healthy score with browning",
			metrics: models.HealthMetrics{HealthScore: 90, GreenCoverage: 110, BrownAreas: 5.01},
			want:    []string{RecHealthy, RecBrowning},
		},
		{
			name:    "all black photo",
			metrics: models.HealthMetrics{},
			want:    []string{RecWatering, RecFertilizer, RecCloserPhoto},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommendations(tt.metrics)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecommendations_NeverEmpty(t *testing.T) {
	for score := 0; score <= 100; score++ {
		for _, cov := range []float64{0, 29.99, 30, 100, 160} {
			recs := Recommendations(models.HealthMetrics{HealthScore: score, GreenCoverage: cov})
			if len(recs) == 0 {
				t.Fatalf("score %d coverage %v: expected at least one recommendation", score, cov)
			}
		}
	}
}

func TestGenerate(t *testing.T) {
	g := NewGenerator()
	metrics := models.HealthMetrics{
		HealthScore:        78,
		GreenCoverage:      100,
		GreenIntensity:     200,
		TotalDiscoloration: 0,
	}

	r := g.Generate(metrics)

	if r.HealthScore != 78 {
		t.Errorf("Expected score 78, got %d", r.HealthScore)
	}
	if r.Status != models.StatusHealthy || r.StatusColor != ColorHealthy || r.StatusIcon != IconHealthy {
		t.Errorf("Unexpected status %s/%s/%s", r.Status, r.StatusColor, r.StatusIcon)
	}
	if r.Metrics != metrics {
		t.Errorf("Expected metrics to be carried through, got %+v", r.Metrics)
	}
	if !reflect.DeepEqual(r.Recommendations, []string{RecHealthy}) {
		t.Errorf("Unexpected recommendations %q", r.Recommendations)
	}

	if again := g.Generate(metrics); !reflect.DeepEqual(again, r) {
		t.Error("Expected Generate to be deterministic")
	}
}
