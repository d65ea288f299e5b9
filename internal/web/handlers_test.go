package web

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/emicklei/go-restful/v3"

	"github.com/clinsight/trial-search/pkg/trials"
)

// stubSearcher returns a canned result or error and records the params
// it was called with.
type stubSearcher struct {
	result *trials.SearchResult
	err    error
	params trials.SearchParams
	calls  int
}

func (s *stubSearcher) Search(ctx context.Context, params trials.SearchParams) (*trials.SearchResult, error) {
	s.calls++
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func setupContainer(searcher Searcher) *restful.Container {
	container := restful.NewContainer()
	RegisterRoutes(container, NewHandler(searcher))
	return container
}

func sampleResult() *trials.SearchResult {
	return &trials.SearchResult{
		Trials: []trials.Trial{
			{
				NCTID:         "NCT01234567",
				Title:         "A Study of Pembrolizumab",
				Phase:         "PHASE2",
				Status:        "RECRUITING",
				Sponsor:       "Merck",
				Conditions:    []string{"Melanoma", "Skin Cancer"},
				Interventions: []string{"Pembrolizumab"},
			},
			{
				NCTID:         "NCT07654321",
				Title:         "Observational Follow-up",
				Phase:         "N/A",
				Status:        "COMPLETED",
				Sponsor:       "NCI",
				Conditions:    []string{},
				Interventions: []string{},
			},
		},
		TotalCount: 2,
		Truncated:  false,
	}
}

func TestHealth(t *testing.T) {
	container := setupContainer(&stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	var response HealthResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("Status = %q, want %q", response.Status, "ok")
	}
}

func TestIndex_RendersForm(t *testing.T) {
	container := setupContainer(&stubSearcher{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	body := recorder.Body.String()
	for _, want := range []string{
		`name="compound"`,
		`name="condition"`,
		`value="PHASE1"`,
		`value="RECRUITING"`,
		"Early Phase 1",
		"Enrolling by Invitation",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("form missing %q", want)
		}
	}
}

func TestSearch_RequiresCriterion(t *testing.T) {
	searcher := &stubSearcher{}
	container := setupContainer(searcher)

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "Please enter at least one search criterion.") {
		t.Error("missing criterion warning not rendered")
	}
	if searcher.calls != 0 {
		t.Errorf("searcher called %d times, want 0", searcher.calls)
	}
}

func TestSearch_RendersResults(t *testing.T) {
	searcher := &stubSearcher{result: sampleResult()}
	container := setupContainer(searcher)

	req := httptest.NewRequest(http.MethodGet, "/search?compound=pembrolizumab&phases=PHASE2&statuses=RECRUITING", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}

	want := trials.SearchParams{
		Compound: "pembrolizumab",
		Phases:   []string{"PHASE2"},
		Statuses: []string{"RECRUITING"},
	}
	if !reflect.DeepEqual(searcher.params, want) {
		t.Errorf("searcher params = %+v, want %+v", searcher.params, want)
	}

	body := recorder.Body.String()
	for _, wantFragment := range []string{
		"NCT01234567",
		"A Study of Pembrolizumab",
		"Melanoma; Skin Cancer",
		"NCT07654321",
		"2 matching trials",
	} {
		if !strings.Contains(body, wantFragment) {
			t.Errorf("results missing %q", wantFragment)
		}
	}

	if strings.Contains(body, "Results were truncated") {
		t.Error("truncation notice rendered for untruncated result")
	}
}

func TestSearch_DropsUnknownEnumValues(t *testing.T) {
	searcher := &stubSearcher{result: sampleResult()}
	container := setupContainer(searcher)

	req := httptest.NewRequest(http.MethodGet, "/search?condition=melanoma&phases=PHASE99&statuses=BOGUS", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if searcher.params.Phases != nil || searcher.params.Statuses != nil {
		t.Errorf("unknown enum values passed through: %+v", searcher.params)
	}
	if searcher.params.Condition != "melanoma" {
		t.Errorf("Condition = %q, want %q", searcher.params.Condition, "melanoma")
	}
}

func TestSearch_TruncationNotice(t *testing.T) {
	result := sampleResult()
	result.Truncated = true
	result.TotalCount = 1200
	container := setupContainer(&stubSearcher{result: result})

	req := httptest.NewRequest(http.MethodGet, "/search?condition=cancer", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if !strings.Contains(recorder.Body.String(), "Results were truncated") {
		t.Error("truncation notice not rendered")
	}
}

func TestSearch_UpstreamFailure(t *testing.T) {
	container := setupContainer(&stubSearcher{err: errors.New("upstream unavailable")})

	req := httptest.NewRequest(http.MethodGet, "/search?condition=melanoma", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (form re-rendered)", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "Error fetching results") {
		t.Error("error flash not rendered")
	}
}

func TestExport_CSV(t *testing.T) {
	container := setupContainer(&stubSearcher{result: sampleResult()})

	req := httptest.NewRequest(http.MethodGet, "/export?compound=pembrolizumab", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("Content-Type = %q, want %q", got, "text/csv")
	}
	if got := recorder.Header().Get("Content-Disposition"); !strings.Contains(got, "clinical_trials.csv") {
		t.Errorf("Content-Disposition = %q, want attachment filename", got)
	}

	records, err := csv.NewReader(recorder.Body).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}

	wantHeader := []string{"NCT ID", "Title", "Phase", "Status", "Sponsor", "Conditions", "Interventions"}
	if !reflect.DeepEqual(records[0], wantHeader) {
		t.Errorf("header = %v, want %v", records[0], wantHeader)
	}
	if len(records) != 3 {
		t.Fatalf("CSV rows = %d, want 3 (header + 2 trials)", len(records))
	}
	if records[1][0] != "NCT01234567" || records[1][5] != "Melanoma; Skin Cancer" {
		t.Errorf("first data row = %v", records[1])
	}
}

func TestExport_UpstreamFailure(t *testing.T) {
	container := setupContainer(&stubSearcher{err: errors.New("upstream unavailable")})

	req := httptest.NewRequest(http.MethodGet, "/export?condition=melanoma", nil)
	recorder := httptest.NewRecorder()
	container.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", recorder.Code)
	}
}
