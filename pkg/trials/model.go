// Package trials defines the domain model for clinical trial searches:
// search parameters, the flattened Trial record, and search results.
package trials

// Trial is one clinical study flattened from the upstream record.
// Instances are built once from an API response and never mutated.
type Trial struct {
	NCTID         string   `json:"nct_id"`
	Title         string   `json:"title"`
	Phase         string   `json:"phase"`
	Status        string   `json:"status"`
	Sponsor       string   `json:"sponsor"`
	Conditions    []string `json:"conditions"`
	Interventions []string `json:"interventions"`
}

// SearchParams holds the user-supplied search filters. All fields are
// optional; the routing layer requires at least one to be set.
type SearchParams struct {
	Compound  string   `json:"compound,omitempty"`
	Condition string   `json:"condition,omitempty"`
	Phases    []string `json:"phases,omitempty"`
	Statuses  []string `json:"statuses,omitempty"`
}

// IsZero reports whether no filter is set at all.
func (p SearchParams) IsZero() bool {
	return p.Compound == "" && p.Condition == "" &&
		len(p.Phases) == 0 && len(p.Statuses) == 0
}

// SearchResult is the outcome of one search: the fetched trials in
// upstream page order, the upstream-reported total for the query, and
// whether the fetch stopped at the result cap before pagination ended.
type SearchResult struct {
	Trials     []Trial `json:"trials"`
	TotalCount int     `json:"total_count"`
	Truncated  bool    `json:"truncated"`
}

// Option is one selectable value with its display label, used to render
// the search form and to echo selections back in results.
type Option struct {
	Value string
	Label string
}

// ValidPhases are the trial phase values accepted by the upstream API.
var ValidPhases = []Option{
	{"EARLY_PHASE1", "Early Phase 1"},
	{"PHASE1", "Phase 1"},
	{"PHASE2", "Phase 2"},
	{"PHASE3", "Phase 3"},
	{"PHASE4", "Phase 4"},
}

// ValidStatuses are the overall status values accepted by the upstream API.
var ValidStatuses = []Option{
	{"RECRUITING", "Recruiting"},
	{"NOT_YET_RECRUITING", "Not Yet Recruiting"},
	{"ACTIVE_NOT_RECRUITING", "Active, Not Recruiting"},
	{"COMPLETED", "Completed"},
	{"ENROLLING_BY_INVITATION", "Enrolling by Invitation"},
	{"SUSPENDED", "Suspended"},
	{"TERMINATED", "Terminated"},
	{"WITHDRAWN", "Withdrawn"},
}

// IsValidPhase reports whether v is a known phase value.
func IsValidPhase(v string) bool {
	for _, o := range ValidPhases {
		if o.Value == v {
			return true
		}
	}
	return false
}

// IsValidStatus reports whether v is a known overall status value.
func IsValidStatus(v string) bool {
	for _, o := range ValidStatuses {
		if o.Value == v {
			return true
		}
	}
	return false
}
