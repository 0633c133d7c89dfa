package strategy

import (
	"fmt"
	"image"
	"sort"

	"github.com/arbovm/levenshtein"

	"go-plant-inspector/internal/analyzer"
	"go-plant-inspector/internal/config"
	apperrors "go-plant-inspector/internal/errors"
)

// Strategy names accepted by Lookup
const (
	Reference = "reference"
	Corrected = "corrected"
	FullScan  = "full"
	Profile   = "profile"
)

// AnalysisStrategy decides how pixels are sampled and which base the
// percentages use. Thresholds always come from the caller's base options.
type AnalysisStrategy interface {
	Analyze(img image.Image, base analyzer.AnalysisOptions) (analyzer.AnalysisResult, error)
	Options(base analyzer.AnalysisOptions) analyzer.AnalysisOptions
	GetStrategyName() string
}

// presetStrategy pins stride and base mode
type presetStrategy struct {
	name     string
	analyzer analyzer.PlantAnalyzer
	stride   int
	baseMode analyzer.BaseMode
}

// NewReferenceStrategy samples every 4th pixel against the quarter base
func NewReferenceStrategy(a analyzer.PlantAnalyzer) AnalysisStrategy {
	return &presetStrategy{name: Reference, analyzer: a, stride: analyzer.DefaultSampleStride, baseMode: analyzer.BaseReference}
}

// NewCorrectedStrategy samples every 4th pixel against the visited count
func NewCorrectedStrategy(a analyzer.PlantAnalyzer) AnalysisStrategy {
	return &presetStrategy{name: Corrected, analyzer: a, stride: analyzer.DefaultSampleStride, baseMode: analyzer.BaseSampled}
}

// NewFullScanStrategy visits every pixel
func NewFullScanStrategy(a analyzer.PlantAnalyzer) AnalysisStrategy {
	return &presetStrategy{name: FullScan, analyzer: a, stride: 1, baseMode: analyzer.BaseSampled}
}

func (s *presetStrategy) Options(base analyzer.AnalysisOptions) analyzer.AnalysisOptions {
	return base.WithStride(s.stride).WithBaseMode(s.baseMode)
}

func (s *presetStrategy) Analyze(img image.Image, base analyzer.AnalysisOptions) (analyzer.AnalysisResult, error) {
	return s.analyzer.AnalyzeImage(img, s.Options(base))
}

func (s *presetStrategy) GetStrategyName() string {
	return s.name
}

// profileStrategy uses the loaded profile unchanged
type profileStrategy struct {
	analyzer analyzer.PlantAnalyzer
}

// NewProfileStrategy uses stride and base mode from the analyzer profile
func NewProfileStrategy(a analyzer.PlantAnalyzer) AnalysisStrategy {
	return &profileStrategy{analyzer: a}
}

func (s *profileStrategy) Options(base analyzer.AnalysisOptions) analyzer.AnalysisOptions {
	return base
}

func (s *profileStrategy) Analyze(img image.Image, base analyzer.AnalysisOptions) (analyzer.AnalysisResult, error) {
	return s.analyzer.AnalyzeImage(img, base)
}

func (s *profileStrategy) GetStrategyName() string {
	return Profile
}

// Registry holds the available strategies by name
type Registry struct {
	strategies map[string]AnalysisStrategy
}

// NewRegistry registers every built-in strategy on top of a
func NewRegistry(a analyzer.PlantAnalyzer) *Registry {
	r := &Registry{strategies: make(map[string]AnalysisStrategy)}
	for _, s := range []AnalysisStrategy{
		NewReferenceStrategy(a),
		NewCorrectedStrategy(a),
		NewFullScanStrategy(a),
		NewProfileStrategy(a),
	} {
		r.strategies[s.GetStrategyName()] = s
	}
	return r
}

// Names lists the registered strategy names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named strategy. Unknown names produce a validation
// error suggesting the closest registered name.
func (r *Registry) Lookup(name string) (AnalysisStrategy, error) {
	if s, ok := r.strategies[name]; ok {
		return s, nil
	}

	msg := fmt.Sprintf("Unknown strategy %q", name)
	if suggestion := r.Suggest(name); suggestion != "" {
		msg = fmt.Sprintf("%s, did you mean %q?", msg, suggestion)
	}
	appErr := apperrors.NewValidationError(msg, nil)
	appErr.Details = fmt.Sprintf("available strategies: %v", r.Names())
	return nil, appErr
}

// maxSuggestionDistance bounds how different a typo may be from a real name
const maxSuggestionDistance = 3

// Suggest returns the registered name nearest to name, or "" if none is close
func (r *Registry) Suggest(name string) string {
	best, bestDist := "", maxSuggestionDistance+1
	for _, candidate := range r.Names() {
		if d := levenshtein.Distance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// OptionsFromProfile converts a loaded profile into analysis options
func OptionsFromProfile(p config.Profile) analyzer.AnalysisOptions {
	mode := analyzer.BaseReference
	if p.BaseMode == config.BaseModeSampled {
		mode = analyzer.BaseSampled
	}
	t := p.Thresholds
	return analyzer.AnalysisOptions{
		SampleStride: p.SampleStride,
		BaseMode:     mode,
		Thresholds: analyzer.ColorThresholds{
			GreenMin:       t.GreenMin,
			YellowMinRed:   t.YellowMinRed,
			YellowMinGreen: t.YellowMinGreen,
			YellowMaxBlue:  t.YellowMaxBlue,
			BrownMinRed:    t.BrownMinRed,
			BrownMaxRed:    t.BrownMaxRed,
			BrownMaxBlue:   t.BrownMaxBlue,
		},
		IncludeColorProfile: p.IncludeColorProfile,
	}
}
