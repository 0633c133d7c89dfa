package analyzer

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// metricsCalculator implements MetricsCalculator
type metricsCalculator struct {
	slicePool sync.Pool
}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{
		slicePool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 1024)
			},
		},
	}
}

// PercentageBase returns the denominator for area percentages; see BaseMode.
func (mc *metricsCalculator) PercentageBase(buf ImageBuffer, counts ColorCounts, options AnalysisOptions) float64 {
	options = options.normalized()
	if options.BaseMode == BaseSampled {
		return float64(counts.SampledPixels)
	}
	return float64(buf.TotalPixels()) / float64(options.SampleStride)
}

// CalculateHealthMetrics converts band counts into percentages and the
// 0-100 health score. Only the score is clamped.
func (mc *metricsCalculator) CalculateHealthMetrics(counts ColorCounts, base float64) HealthMetrics {
	if base <= 0 {
		return HealthMetrics{}
	}

	greenPct := float64(counts.GreenPixels) / base * 100
	yellowPct := float64(counts.YellowPixels) / base * 100
	brownPct := float64(counts.BrownPixels) / base * 100

	// A zero green count would divide by zero; 1 keeps the average at 0.
	avgGreenIntensity := float64(counts.GreenIntensitySum) / float64(max(counts.GreenPixels, 1))

	score := int(math.Round(greenPct * avgGreenIntensity / 255))

	return HealthMetrics{
		HealthScore:        clamp(score, 0, 100),
		GreenCoverage:      round2(greenPct),
		GreenIntensity:     int(math.Round(avgGreenIntensity)),
		YellowAreas:        round2(yellowPct),
		BrownAreas:         round2(brownPct),
		TotalDiscoloration: round2(yellowPct + brownPct),
	}
}

// CalculateColorProfile computes per-channel mean and standard deviation
// over the pixels visited with the given stride
func (mc *metricsCalculator) CalculateColorProfile(buf ImageBuffer, stride int) ColorProfile {
	if stride <= 0 {
		stride = DefaultSampleStride
	}
	step := stride * 4
	n := (len(buf.Pix) + step - 1) / step
	if n == 0 {
		return ColorProfile{}
	}

	var channels [3][]float64
	for c := range channels {
		s := mc.slicePool.Get().([]float64)[:0]
		if cap(s) < n {
			s = make([]float64, 0, n)
		}
		channels[c] = s
	}
	defer func() {
		for c := range channels {
			mc.slicePool.Put(channels[c][:0])
		}
	}()

	var lumSum float64
	for i := 0; i+2 < len(buf.Pix); i += step {
		r, g, b := buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2]
		channels[0] = append(channels[0], float64(r))
		channels[1] = append(channels[1], float64(g))
		channels[2] = append(channels[2], float64(b))
		lumSum += luminance(int(r), int(g), int(b))
	}

	profile := ColorProfile{SampledPixels: len(channels[0])}
	if profile.SampledPixels == 0 {
		return profile
	}
	for c := range channels {
		mean, std := stat.MeanStdDev(channels[c], nil)
		if math.IsNaN(std) {
			// Single sample has no spread.
			std = 0
		}
		profile.ChannelMeans[c] = round2(mean)
		profile.ChannelStdDev[c] = round2(std)
	}
	profile.AvgLuminance = round2(lumSum / float64(profile.SampledPixels))
	return profile
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
