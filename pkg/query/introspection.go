package query

import (
	"strings"

	"github.com/aretw0/introspection"
)

// PipelineState exposes internal state for observability.
type PipelineState struct {
	Query        string `json:"query"`
	AppliedQuery string `json:"applied_query"`
	Scope        string `json:"scope"`
	DateFilter   string `json:"date_filter"`
	Searching    bool   `json:"searching"`
	Running      bool   `json:"running"`
	Generation   uint64 `json:"generation"`
	Subscribers  int    `json:"subscribers"`
	Searches     int    `json:"searches"`
	Emissions    int    `json:"emissions"`
	Cached       int    `json:"cached"`
	Closed       bool   `json:"closed"`
}

// State implements introspection.Introspectable.
func (p *Pipeline) State() any {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PipelineState{
		Query:        p.query,
		AppliedQuery: p.applied,
		Scope:        p.scope.String(),
		DateFilter:   p.dateFilter.String(),
		Searching:    strings.TrimSpace(p.query) != "",
		Running:      p.running,
		Generation:   p.gen,
		Subscribers:  len(p.subs),
		Searches:     p.queries,
		Emissions:    p.emissions,
		Cached:       len(p.value),
		Closed:       p.closed,
	}
}

// ComponentType implements introspection.Component.
func (p *Pipeline) ComponentType() string {
	return "query-pipeline"
}

var _ introspection.Introspectable = (*Pipeline)(nil)
var _ introspection.Component = (*Pipeline)(nil)
