package rollup

import (
	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/alexanderramin/mediantree/internal/lognormal"
)

// RecomputeHierarchy runs the aggregator and then refreshes the estimate of
// every node the aggregator evaluated. Callers invoke it once per mutation,
// and must not start another mutation until it returns.
func RecomputeHierarchy(g *domain.Graph, changed ...string) (*Result, error) {
	res, err := Recompute(g, changed...)
	if res == nil {
		return nil, err
	}
	byID := make(map[string]*domain.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}
	for _, id := range res.Evaluated {
		if n := byID[id]; n != nil {
			n.Estimate = lognormal.ForHours(n.EffortHours)
		}
	}
	return res, err
}
