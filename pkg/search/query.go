package search

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/clinsight/trial-search/pkg/trials"
)

// Upstream query parameter names for the v2 studies endpoint.
const (
	paramIntervention  = "query.intr"
	paramCondition     = "query.cond"
	paramTerm          = "query.term"
	paramOverallStatus = "filter.overallStatus"
)

// BuildQuery translates search filters into upstream query parameters,
// omitting any parameter whose source field is unset. Enumerated values
// are assumed pre-validated by the caller; an empty SearchParams yields
// an empty mapping.
func BuildQuery(params trials.SearchParams) url.Values {
	query := url.Values{}

	if params.Compound != "" {
		query.Set(paramIntervention, params.Compound)
	}

	if params.Condition != "" {
		query.Set(paramCondition, params.Condition)
	}

	if len(params.Phases) > 0 {
		query.Set(paramTerm, phaseTerm(params.Phases))
	}

	if len(params.Statuses) > 0 {
		// Multiple statuses are comma-separated.
		query.Set(paramOverallStatus, strings.Join(params.Statuses, ","))
	}

	return query
}

// phaseTerm builds the AREA[Phase] filter expression.
// Multiple phases combine with OR: AREA[Phase](PHASE2 OR PHASE3).
func phaseTerm(phases []string) string {
	if len(phases) == 1 {
		return fmt.Sprintf("AREA[Phase]%s", phases[0])
	}
	return fmt.Sprintf("AREA[Phase](%s)", strings.Join(phases, " OR "))
}
