package analyzer

// pixelClassifier implements PixelClassifier
type pixelClassifier struct{}

// NewPixelClassifier creates a new pixel classifier
func NewPixelClassifier() PixelClassifier {
	return &pixelClassifier{}
}

// Classify walks the byte buffer from the first pixel with a fixed stride
// and counts each sampled pixel into every band it matches. Bands are
// evaluated independently, so one pixel may land in more than one.
func (pc *pixelClassifier) Classify(buf ImageBuffer, options AnalysisOptions) ColorCounts {
	options = options.normalized()
	t := options.Thresholds
	step := options.SampleStride * 4

	var counts ColorCounts
	pix := buf.Pix
	for i := 0; i+2 < len(pix); i += step {
		r, g, b := int(pix[i]), int(pix[i+1]), int(pix[i+2])
		counts.SampledPixels++
		counts.LuminanceSum += luminance(r, g, b)

		if t.isGreen(r, g, b) {
			counts.GreenPixels++
			counts.GreenIntensitySum += g
		}
		if t.isYellow(r, g, b) {
			counts.YellowPixels++
		}
		if t.isBrown(r, g, b) {
			counts.BrownPixels++
		}
	}
	return counts
}

func (t ColorThresholds) isGreen(r, g, b int) bool {
	return g > r && g > b && g > t.GreenMin
}

func (t ColorThresholds) isYellow(r, g, b int) bool {
	return r > t.YellowMinRed && g > t.YellowMinGreen && b < t.YellowMaxBlue
}

func (t ColorThresholds) isBrown(r, g, b int) bool {
	return r > t.BrownMinRed && r < t.BrownMaxRed && g < r && b < t.BrownMaxBlue
}

// luminance uses Rec. 601 weights, result in 0-255
func luminance(r, g, b int) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
