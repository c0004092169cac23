package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/lognormal"
	"github.com/alexanderramin/mediantree/internal/rollup"
)

// DefaultLevels are the confidence levels reported when none are requested.
var DefaultLevels = []float64{domain.ConfidenceP70, domain.ConfidenceP95, domain.ConfidenceP99}

type estimateService struct {
	levels   []float64
	observer UseCaseObserver
}

// NewEstimateService creates an EstimateService. Empty levels fall back to
// DefaultLevels.
func NewEstimateService(levels []float64, observers ...UseCaseObserver) EstimateService {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	return &estimateService{levels: levels, observer: useCaseObserverOrNoop(observers)}
}

func (s *estimateService) Estimate(ctx context.Context, hours float64, levels ...float64) (*EstimateReport, error) {
	if len(levels) == 0 {
		levels = s.levels
	}
	times, err := lognormal.Levels(hours, levels...)
	if err != nil {
		return nil, err
	}
	report := &EstimateReport{Median: hours, Levels: make([]EstimateLevel, len(levels))}
	for i, p := range levels {
		report.Levels[i] = EstimateLevel{Confidence: p, Hours: times[i]}
	}
	return report, nil
}

func (s *estimateService) CertaintyAt(ctx context.Context, hours, at float64) (float64, error) {
	return lognormal.Certainty(at, hours)
}

func (s *estimateService) Recompute(ctx context.Context, g *domain.Graph) (mr *MutationResult, err error) {
	done := observe(ctx, s.observer, "recompute", map[string]any{"nodes": len(g.Nodes), "edges": len(g.Edges)})
	defer func() { done(err) }()

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	res, rerr := rollup.RecomputeHierarchy(g)
	if res == nil {
		return nil, rerr
	}
	return &MutationResult{Graph: g, Changed: res.Changed, Skipped: res.Skipped, Anomaly: rerr}, nil
}
