// Package explain computes per-feature impact attributions for the anomaly
// model's output on a sampled sub-frame, plus a short human-readable summary.
package explain

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/avlogix/flightscope/internal/domain/aircraft"
	"github.com/avlogix/flightscope/internal/ml/model"
	"github.com/avlogix/flightscope/internal/telemetry"
)

// FallbackText is returned whenever attribution cannot be computed.
const FallbackText = "Unable to generate explanation"

const topFeatureCount = 5

// FeatureImpact describes one feature's influence on the anomaly score.
type FeatureImpact struct {
	Feature      string  `json:"feature"`
	Importance   float64 `json:"importance"`
	AverageValue float64 `json:"average_value"`
	Impact       string  `json:"impact"` // "positive" pushes toward anomaly
	AircraftType string  `json:"aircraft_class"`
}

// Bundle is the full attribution result for one analysis.
type Bundle struct {
	TopFeatures     []FeatureImpact `json:"top_features"`
	OverallImpact   float64         `json:"overall_impact"`
	SampleSize      int             `json:"sample_size"`
	AircraftType    string          `json:"aircraft_class"`
	ExplanationText string          `json:"explanation_text"`
}

func emptyBundle(class aircraft.Class) *Bundle {
	return &Bundle{
		TopFeatures:     []FeatureImpact{},
		AircraftType:    class.String(),
		ExplanationText: FallbackText,
	}
}

// Explainer computes attributions against the shared model artifacts.
// Per-class state is memoized for the process lifetime; artifacts are small,
// so there is no eviction.
type Explainer struct {
	registry   *model.Registry
	sampleSize int
	seed       int64

	mu    sync.Mutex
	cache map[aircraft.Class]*classExplainer
}

type classExplainer struct {
	model    *model.AnomalyModel
	features []string
}

// NewExplainer builds an explainer over the registry's models.
func NewExplainer(registry *model.Registry, sampleSize int, seed int64) *Explainer {
	return &Explainer{
		registry:   registry,
		sampleSize: sampleSize,
		seed:       seed,
		cache:      make(map[aircraft.Class]*classExplainer),
	}
}

func (e *Explainer) forClass(class aircraft.Class) (*classExplainer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ce, ok := e.cache[class]; ok {
		return ce, nil
	}
	m, err := e.registry.ForClass(class.ModelClass())
	if err != nil {
		return nil, err
	}
	ce := &classExplainer{model: m, features: m.FeatureNames()}
	e.cache[class] = ce
	return ce, nil
}

// Explain attributes the model's output over up to sampleSize rows of the
// frame. On any internal failure it degrades to an empty bundle with the
// fallback text; it never propagates an error.
func (e *Explainer) Explain(ctx context.Context, frame *telemetry.Frame, class aircraft.Class) (bundle *Bundle) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("class", class.String()).
				Msg("Attribution failed, returning empty bundle")
			bundle = emptyBundle(class)
		}
	}()

	if frame == nil || frame.Len() == 0 {
		return emptyBundle(class)
	}

	ce, err := e.forClass(class)
	if err != nil {
		log.Warn().Err(err).Str("class", class.String()).Msg("No model for attribution")
		return emptyBundle(class)
	}

	n := e.sampleSize
	if frame.Len() < n {
		n = frame.Len()
	}
	rows := rand.New(rand.NewSource(e.seed)).Perm(frame.Len())[:n]
	matrix := frame.Project(ce.features)

	dims := len(ce.features)
	meanAbs := make([]float64, dims)
	meanSigned := make([]float64, dims)
	avgValue := make([]float64, dims)

	for k, i := range rows {
		// Cancellation is checked per sample block.
		if k%32 == 0 {
			if ctx.Err() != nil {
				return emptyBundle(class)
			}
		}
		contrib, _, err := ce.model.Contributions(matrix[i])
		if err != nil {
			log.Warn().Err(err).Str("class", class.String()).Msg("Attribution unavailable")
			return emptyBundle(class)
		}
		for j := 0; j < dims; j++ {
			meanAbs[j] += math.Abs(contrib[j])
			meanSigned[j] += contrib[j]
			avgValue[j] += matrix[i][j]
		}
	}
	for j := 0; j < dims; j++ {
		meanAbs[j] /= float64(n)
		meanSigned[j] /= float64(n)
		avgValue[j] /= float64(n)
	}

	order := make([]int, dims)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return meanAbs[order[a]] > meanAbs[order[b]]
	})

	top := topFeatureCount
	if dims < top {
		top = dims
	}
	overall := 0.0
	impacts := make([]FeatureImpact, 0, top)
	for _, j := range order[:top] {
		impact := "positive"
		if meanSigned[j] < 0 {
			impact = "negative"
		}
		impacts = append(impacts, FeatureImpact{
			Feature:      ce.features[j],
			Importance:   meanAbs[j],
			AverageValue: avgValue[j],
			Impact:       impact,
			AircraftType: class.String(),
		})
		overall += meanAbs[j]
	}

	return &Bundle{
		TopFeatures:     impacts,
		OverallImpact:   overall,
		SampleSize:      n,
		AircraftType:    class.String(),
		ExplanationText: explanationText(impacts, class),
	}
}

// phrase table keyed on feature-name substrings; at most three phrases are
// composed into the summary.
var phrases = []struct {
	substring string
	text      map[aircraft.Class]string
	fallback  string
}{
	{"airspeed", map[aircraft.Class]string{
		aircraft.FixedWing: "airspeed deviations dominate the anomaly signal",
		aircraft.VTOL:      "airspeed behavior during transition drives the score",
	}, "airspeed variation influences the assessment"},
	{"motor", map[aircraft.Class]string{
		aircraft.FixedWing:  "engine RPM behavior is a primary factor",
		aircraft.Multirotor: "motor RPM balance is a primary factor",
		aircraft.VTOL:       "lift and cruise motor behavior is a primary factor",
	}, "motor performance influences the assessment"},
	{"vibration", nil, "vibration levels contribute to the anomaly score"},
	{"battery", nil, "battery voltage trends affect the risk assessment"},
	{"altitude", nil, "altitude profile shifts the model output"},
	{"gps", nil, "GPS quality affects sample reliability"},
	{"pitch", nil, "attitude excursions contribute to the score"},
	{"roll", nil, "attitude excursions contribute to the score"},
}

func explanationText(impacts []FeatureImpact, class aircraft.Class) string {
	var parts []string
	seen := map[string]bool{}
	for _, fi := range impacts {
		if len(parts) == 3 {
			break
		}
		for _, p := range phrases {
			if !strings.Contains(fi.Feature, p.substring) {
				continue
			}
			text := p.fallback
			if classText, ok := p.text[class]; ok {
				text = classText
			}
			if !seen[text] {
				seen[text] = true
				parts = append(parts, text)
			}
			break
		}
	}
	if len(parts) == 0 {
		return "Model attribution did not isolate a dominant flight parameter"
	}
	return "Analysis of the " + class.String() + " flight log: " + strings.Join(parts, "; ") + "."
}
