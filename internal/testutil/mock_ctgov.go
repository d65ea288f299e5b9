// Package testutil provides testing utilities for the trial search service.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Study is a minimal upstream study record builder for fixtures.
type Study struct {
	NCTID         string
	Title         string
	Phases        []string
	Status        string
	Sponsor       string
	Conditions    []string
	Interventions []string
}

// MarshalJSON renders the record in the nested upstream wire shape.
func (s Study) MarshalJSON() ([]byte, error) {
	interventions := make([]map[string]string, 0, len(s.Interventions))
	for _, name := range s.Interventions {
		interventions = append(interventions, map[string]string{"name": name})
	}

	record := map[string]any{
		"protocolSection": map[string]any{
			"identificationModule": map[string]any{
				"nctId":      s.NCTID,
				"briefTitle": s.Title,
			},
			"statusModule": map[string]any{
				"overallStatus": s.Status,
			},
			"designModule": map[string]any{
				"phases": s.Phases,
			},
			"sponsorCollaboratorsModule": map[string]any{
				"leadSponsor": map[string]any{"name": s.Sponsor},
			},
			"conditionsModule": map[string]any{
				"conditions": s.Conditions,
			},
			"armsInterventionsModule": map[string]any{
				"interventions": interventions,
			},
		},
	}

	return json.Marshal(record)
}

// Page is one page of a scripted upstream response sequence.
type Page struct {
	Studies    []Study
	TotalCount int
}

// MockCTGov is a configurable mock ClinicalTrials.gov server. It serves
// a scripted page sequence keyed by pageToken, or a fixed error.
type MockCTGov struct {
	server *httptest.Server

	mu          sync.Mutex
	pages       []Page
	failStatus  int
	failBody    string
	failOnPage  int
	requests    int
	lastQueries []map[string]string
}

// NewMockCTGov creates a mock upstream serving the given page sequence.
// Page N links to page N+1 via nextPageToken; the last page omits it.
func NewMockCTGov(pages ...Page) *MockCTGov {
	mock := &MockCTGov{
		pages:      pages,
		failOnPage: -1,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL, usable as the client base URL.
func (m *MockCTGov) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCTGov) Close() {
	m.server.Close()
}

// FailWith makes every request answer with the given status and body.
func (m *MockCTGov) FailWith(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
	m.failBody = body
	m.failOnPage = -1
}

// FailOnPage makes only the request for the given zero-based page fail.
func (m *MockCTGov) FailOnPage(pageIndex, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
	m.failOnPage = pageIndex
}

// RequestCount returns the number of requests received.
func (m *MockCTGov) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

// LastQuery returns the query parameters of the most recent request,
// or nil if no request was made.
func (m *MockCTGov) LastQuery() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.lastQueries) == 0 {
		return nil
	}
	return m.lastQueries[len(m.lastQueries)-1]
}

func (m *MockCTGov) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests++

	query := map[string]string{}
	for key := range r.URL.Query() {
		query[key] = r.URL.Query().Get(key)
	}
	m.lastQueries = append(m.lastQueries, query)

	pageIndex := 0
	if token := r.URL.Query().Get("pageToken"); token != "" {
		fmt.Sscanf(token, "page-%d", &pageIndex)
	}

	failStatus := 0
	if m.failStatus != 0 && (m.failOnPage < 0 || m.failOnPage == pageIndex) {
		failStatus = m.failStatus
	}
	failBody := m.failBody

	var body map[string]any
	if failStatus == 0 && pageIndex < len(m.pages) {
		p := m.pages[pageIndex]
		body = map[string]any{
			"studies":    p.Studies,
			"totalCount": p.TotalCount,
		}
		if pageIndex+1 < len(m.pages) {
			body["nextPageToken"] = fmt.Sprintf("page-%d", pageIndex+1)
		}
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if failStatus != 0 {
		w.WriteHeader(failStatus)
		if failBody == "" {
			failBody = `{"message": "upstream error"}`
		}
		w.Write([]byte(failBody))
		return
	}

	if body == nil {
		// Past the scripted sequence: empty last page.
		body = map[string]any{"studies": []Study{}, "totalCount": 0}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}

// NewStudies builds n sequential studies with predictable NCT IDs,
// NCT00000001 onward, for pagination fixtures.
func NewStudies(n, offset int) []Study {
	studies := make([]Study, 0, n)
	for i := 0; i < n; i++ {
		id := offset + i + 1
		studies = append(studies, Study{
			NCTID:         fmt.Sprintf("NCT%08d", id),
			Title:         fmt.Sprintf("Study %d", id),
			Phases:        []string{"PHASE2"},
			Status:        "RECRUITING",
			Sponsor:       "Test Sponsor",
			Conditions:    []string{"Melanoma"},
			Interventions: []string{"Pembrolizumab"},
		})
	}
	return studies
}
