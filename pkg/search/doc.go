// Package search implements clinical trial search against the
// ClinicalTrials.gov v2 API: building upstream query parameters from
// search filters, paginating through result pages up to a fixed cap,
// and flattening each study record into the domain Trial shape.
//
// The fetch loop is strictly sequential. Each Search call is
// independent and holds no state between calls; any upstream failure
// aborts the whole search with no partial result.
package search
