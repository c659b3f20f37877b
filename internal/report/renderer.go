// Package report turns an analysis outcome into the human-readable report
// stored alongside it. An external renderer (an LLM service or similar) can
// be plugged in behind a circuit breaker; the built-in template renderer is
// always available as the fallback.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/avlogix/flightscope/internal/pipeline"
)

// Renderer produces the report text for one analysis outcome.
type Renderer interface {
	Render(ctx context.Context, outcome *pipeline.Outcome) (string, error)
}

const reportTemplate = `FLIGHT ANALYSIS REPORT
======================

Aircraft type: {{.AircraftType}} (confidence {{printf "%.2f" .AircraftConfidence}})
Risk score: {{printf "%.3f" .RiskScore}} ({{.RiskLevel}})
Samples analyzed: {{.TotalSamples}}

{{if .Anomalies -}}
Anomaly events ({{len .Anomalies}} total, top {{len .DisplayEvents}} shown):
{{range .DisplayEvents}}  [{{.Severity}}] t={{printf "%.1f" .Timestamp}}s risk={{printf "%.3f" .RiskScore}} {{.Description}}
{{end}}
{{- else -}}
No anomaly events detected.
{{end}}
{{if .Phases -}}
Flight phases:
{{range .Phases}}  {{.Name}}: {{printf "%.1f" .Value}}
{{end}}
{{- end}}
{{- if .Explanation}}
Attribution: {{.Explanation}}
{{- end}}`

type templateData struct {
	*pipeline.Result
	DisplayEvents interface{}
	Phases        []namedValue
	Explanation   string
}

type namedValue struct {
	Name  string
	Value float64
}

// TemplateRenderer is the deterministic built-in renderer.
type TemplateRenderer struct {
	tmpl            *template.Template
	displayEventCap int
}

func NewTemplateRenderer(displayEventCap int) *TemplateRenderer {
	return &TemplateRenderer{
		tmpl:            template.Must(template.New("report").Parse(reportTemplate)),
		displayEventCap: displayEventCap,
	}
}

func (r *TemplateRenderer) Render(_ context.Context, outcome *pipeline.Outcome) (string, error) {
	if outcome == nil || outcome.Result == nil {
		return "", fmt.Errorf("render: nil outcome")
	}
	res := outcome.Result

	phases := make([]namedValue, 0, len(res.FlightPhases))
	for name, v := range res.FlightPhases {
		phases = append(phases, namedValue{Name: name, Value: v})
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i].Name < phases[j].Name })

	explanation := ""
	if outcome.Attribution != nil {
		explanation = outcome.Attribution.ExplanationText
	}

	var b strings.Builder
	err := r.tmpl.Execute(&b, templateData{
		Result:        res,
		DisplayEvents: res.DisplayAnomalies(r.displayEventCap),
		Phases:        phases,
		Explanation:   explanation,
	})
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return b.String(), nil
}

// BreakerRenderer wraps a primary renderer in a circuit breaker and falls
// back to the template renderer when the primary fails or the breaker is
// open. Render never returns an error.
type BreakerRenderer struct {
	primary  Renderer
	fallback *TemplateRenderer
	breaker  *gobreaker.CircuitBreaker
}

func NewBreakerRenderer(primary Renderer, fallback *TemplateRenderer) *BreakerRenderer {
	settings := gobreaker.Settings{
		Name:        "report-renderer",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("renderer breaker state change")
		},
	}
	return &BreakerRenderer{
		primary:  primary,
		fallback: fallback,
		breaker:  gobreaker.NewCircuitBreaker(settings),
	}
}

func (r *BreakerRenderer) Render(ctx context.Context, outcome *pipeline.Outcome) (string, error) {
	if r.primary != nil {
		out, err := r.breaker.Execute(func() (interface{}, error) {
			return r.primary.Render(ctx, outcome)
		})
		if err == nil {
			return out.(string), nil
		}
		log.Warn().Err(err).Msg("primary renderer failed, using template fallback")
	}
	return r.fallback.Render(ctx, outcome)
}
