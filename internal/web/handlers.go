// Package web serves the HTML search front-end: the search form,
// the results table, and CSV export.
package web

import (
	"context"
	"embed"
	"encoding/csv"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/clinsight/trial-search/pkg/trials"
)

//go:embed templates/*.html
var templateFS embed.FS

// Searcher runs a trial search. *search.Service satisfies it.
type Searcher interface {
	Search(ctx context.Context, params trials.SearchParams) (*trials.SearchResult, error)
}

// Handler serves the search front-end routes.
type Handler struct {
	searcher  Searcher
	templates *template.Template
	logger    zerolog.Logger
}

// NewHandler creates the front-end handler.
func NewHandler(searcher Searcher) *Handler {
	funcs := template.FuncMap{
		"join": strings.Join,
	}

	return &Handler{
		searcher:  searcher,
		templates: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
		logger:    log.With().Str("component", "web").Logger(),
	}
}

// formData is the template payload for the search form.
type formData struct {
	Phases     []trials.Option
	Statuses   []trials.Option
	Params     trials.SearchParams
	Flash      string
	FlashClass string
}

// resultsData is the template payload for the results table.
type resultsData struct {
	Trials      []trials.Trial
	TotalCount  int
	Truncated   bool
	Params      trials.SearchParams
	ExportQuery template.URL
}

// Index handles GET / and renders the search form.
func (h *Handler) Index(req *restful.Request, resp *restful.Response) {
	h.renderForm(resp, formData{
		Phases:   trials.ValidPhases,
		Statuses: trials.ValidStatuses,
	})
}

// Search handles GET /search: validates that at least one criterion is
// set, runs the search, and renders the results table.
func (h *Handler) Search(req *restful.Request, resp *restful.Response) {
	params := parseParams(req)

	if params.IsZero() {
		h.renderForm(resp, formData{
			Phases:     trials.ValidPhases,
			Statuses:   trials.ValidStatuses,
			Flash:      "Please enter at least one search criterion.",
			FlashClass: "warning",
		})
		return
	}

	result, err := h.searcher.Search(req.Request.Context(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("Search failed")
		h.renderForm(resp, formData{
			Phases:     trials.ValidPhases,
			Statuses:   trials.ValidStatuses,
			Params:     params,
			Flash:      "Error fetching results: " + err.Error(),
			FlashClass: "danger",
		})
		return
	}

	resp.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(resp, "results.html", resultsData{
		Trials:      result.Trials,
		TotalCount:  result.TotalCount,
		Truncated:   result.Truncated,
		Params:      params,
		ExportQuery: template.URL(exportQuery(params).Encode()),
	}); err != nil {
		h.logger.Error().Err(err).Msg("Render results failed")
	}
}

// Export handles GET /export: runs the same search and streams the
// results as a CSV attachment.
func (h *Handler) Export(req *restful.Request, resp *restful.Response) {
	params := parseParams(req)

	result, err := h.searcher.Search(req.Request.Context(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("Export search failed")
		resp.WriteError(http.StatusBadGateway, err)
		return
	}

	resp.Header().Set("Content-Type", "text/csv")
	resp.Header().Set("Content-Disposition", `attachment; filename=clinical_trials.csv`)

	writer := csv.NewWriter(resp)
	writer.Write([]string{
		"NCT ID", "Title", "Phase", "Status", "Sponsor", "Conditions", "Interventions",
	})
	for _, trial := range result.Trials {
		writer.Write([]string{
			trial.NCTID,
			trial.Title,
			trial.Phase,
			trial.Status,
			trial.Sponsor,
			strings.Join(trial.Conditions, "; "),
			strings.Join(trial.Interventions, "; "),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		h.logger.Error().Err(err).Msg("CSV write failed")
	}
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// Health handles GET /healthz.
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndJson(http.StatusOK, HealthResponse{Status: "ok"}, restful.MIME_JSON)
}

func (h *Handler) renderForm(resp *restful.Response, data formData) {
	resp.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(resp, "search.html", data); err != nil {
		h.logger.Error().Err(err).Msg("Render form failed")
	}
}

// parseParams extracts search filters from the request query.
// Unknown phase or status values are dropped.
func parseParams(req *restful.Request) trials.SearchParams {
	query := req.Request.URL.Query()

	var phases []string
	for _, v := range query["phases"] {
		if trials.IsValidPhase(v) {
			phases = append(phases, v)
		}
	}

	var statuses []string
	for _, v := range query["statuses"] {
		if trials.IsValidStatus(v) {
			statuses = append(statuses, v)
		}
	}

	return trials.SearchParams{
		Compound:  strings.TrimSpace(query.Get("compound")),
		Condition: strings.TrimSpace(query.Get("condition")),
		Phases:    phases,
		Statuses:  statuses,
	}
}

// exportQuery rebuilds the request query for the CSV export link.
func exportQuery(params trials.SearchParams) url.Values {
	query := url.Values{}
	if params.Compound != "" {
		query.Set("compound", params.Compound)
	}
	if params.Condition != "" {
		query.Set("condition", params.Condition)
	}
	for _, p := range params.Phases {
		query.Add("phases", p)
	}
	for _, s := range params.Statuses {
		query.Add("statuses", s)
	}
	return query
}
