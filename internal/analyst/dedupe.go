package analyst

import (
	"context"

	"golang.org/x/sync/singleflight"

	"citypulse/internal/pulse"
)

type deduplicated struct {
	Analyst
	routes singleflight.Group
}

// Deduplicate wraps a so that concurrent AnalyzeRoutes calls for the same
// search share one model call. Each caller gets its own deep copy of the
// result. The shared call is detached from the callers' cancellation and is
// bounded by the wrapped analyst's own timeout; a caller whose context ends
// stops waiting without failing the others.
func Deduplicate(a Analyst) Analyst {
	return &deduplicated{Analyst: a}
}

func (d *deduplicated) AnalyzeRoutes(ctx context.Context, from, to string) (*pulse.RouteAnalysis, error) {
	detached := context.WithoutCancel(ctx)
	ch := d.routes.DoChan(pulse.SearchKey(from, to), func() (any, error) {
		return d.Analyst.AnalyzeRoutes(detached, from, to)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared, _ := res.Val.(*pulse.RouteAnalysis)
		if shared.Empty() {
			return nil, ErrEmptyResponse
		}
		return cloneAnalysis(shared), nil
	}
}

func cloneAnalysis(a *pulse.RouteAnalysis) *pulse.RouteAnalysis {
	out := &pulse.RouteAnalysis{Routes: make([]pulse.Route, len(a.Routes))}
	for i, r := range a.Routes {
		if r.Incidents != nil {
			r.Incidents = append([]pulse.Incident(nil), r.Incidents...)
		}
		out.Routes[i] = r
	}
	return out
}
